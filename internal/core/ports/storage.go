package ports

// Log persists history records for replay at startup.
type Log interface {
	Append(input string) error
	Replay(callback func(input string)) error
	Close() error
}
