package models

import "fmt"

// Entry is one actionable suggestion: the label the menu renders and the
// command line executed when the user selects it.
type Entry struct {
	Title  string
	Action string
}

func (e Entry) String() string {
	return fmt.Sprintf("Entry: %s -> %s", e.Title, e.Action)
}

// Answer is the result of a knowledge-lookup query. Either field may be
// empty; both empty means the service had nothing to say.
type Answer struct {
	Text string
	URL  string
}

// AppEntry is a desktop application resolved from the application registry.
type AppEntry struct {
	Name string
	Icon string
	Exec string
}

// MatchKind classifies a filesystem search hit for action selection.
type MatchKind int

const (
	MatchDir MatchKind = iota
	MatchText
	MatchBinary
)

// Match is a single filesystem search hit.
type Match struct {
	Path string
	Kind MatchKind
}
