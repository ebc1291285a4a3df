// Package storage persists the input history as an append-only file, one
// record per line. A file lock keeps a second daemon instance from
// interleaving writes into the same log.
package storage

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// ErrLocked reports that another instance holds the history log.
var ErrLocked = errors.New("history log is locked by another instance")

type Log struct {
	file *os.File
	lock *flock.Flock
	mu   sync.Mutex
	done chan struct{}
}

func NewLog(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, ErrLocked
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		lock.Unlock()
		return nil, err
	}

	l := &Log{
		file: f,
		lock: lock,
		done: make(chan struct{}),
	}

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-l.done:
				return
			case <-ticker.C:
				l.mu.Lock()
				l.file.Sync()
				l.mu.Unlock()
			}
		}
	}()

	return l, nil
}

// Append writes one input record at the end of the log.
func (l *Log) Append(input string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.file.Seek(0, io.SeekEnd); err != nil {
		return err
	}
	_, err := l.file.WriteString(input + "\n")
	return err
}

// Replay feeds every record to the callback in write order.
func (l *Log) Replay(callback func(input string)) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := l.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	scanner := bufio.NewScanner(l.file)
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			callback(line)
		}
	}
	return scanner.Err()
}

func (l *Log) Close() error {
	close(l.done)

	l.mu.Lock()
	defer l.mu.Unlock()

	l.file.Sync()
	err := l.file.Close()
	if unlockErr := l.lock.Unlock(); err == nil {
		err = unlockErr
	}
	return err
}
