// Package buffer holds the shared result buffer one input cycle writes its
// suggestions into. The synchronous pipeline and the background workers all
// mutate it; every operation is generation-tagged so a writer that survived
// its own cycle cannot touch a newer one.
package buffer

import (
	"sync"

	"beacon/internal/core/models"
	"beacon/pkg/menu"
)

// MaxSerialized caps the serialized size of one snapshot. A write that would
// push the buffer past the cap is dropped whole; entries already present are
// never truncated.
const MaxSerialized = 100 * 1024

type Buffer struct {
	mu      sync.Mutex
	gen     uint64
	entries []models.Entry
	size    int
}

func New() *Buffer {
	return &Buffer{}
}

// Reset discards all entries and makes gen the active generation. Writes
// tagged with any other generation are ignored from this point on.
func (b *Buffer) Reset(gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.gen = gen
	b.entries = b.entries[:0]
	b.size = 0
}

// Generation returns the currently active generation.
func (b *Buffer) Generation() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gen
}

// Append sanitizes e and inserts it before the trailing default pair once
// two or more entries exist, otherwise at the end. It reports whether the
// entry was accepted.
func (b *Buffer) Append(gen uint64, e models.Entry) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, n, ok := b.admit(gen, e)
	if !ok {
		return false
	}
	if len(b.entries) < 2 {
		b.entries = append(b.entries, e)
	} else {
		at := len(b.entries) - 2
		b.entries = append(b.entries, models.Entry{})
		copy(b.entries[at+1:], b.entries[at:])
		b.entries[at] = e
	}
	b.size += n
	return true
}

// Prepend sanitizes e and inserts it at position 0, ahead of everything,
// including entries added by the pipeline in the same cycle.
func (b *Buffer) Prepend(gen uint64, e models.Entry) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, n, ok := b.admit(gen, e)
	if !ok {
		return false
	}
	b.entries = append([]models.Entry{e}, b.entries...)
	b.size += n
	return true
}

// admit sanitizes an entry and checks the generation tag and the size cap.
// Callers hold b.mu.
func (b *Buffer) admit(gen uint64, e models.Entry) (models.Entry, int, bool) {
	if gen != b.gen {
		return e, 0, false
	}
	e.Title = menu.Escape(e.Title)
	e.Action = menu.Escape(e.Action)
	n := len(menu.Encode(e))
	if b.size+n > MaxSerialized {
		return e, 0, false
	}
	return e, n, true
}

// Serialize returns the wire form of the current contents. It reports false
// when gen is no longer the active generation, so a stale flush becomes a
// no-op instead of re-emitting a newer cycle's snapshot.
func (b *Buffer) Serialize(gen uint64) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if gen != b.gen {
		return "", false
	}
	var out []byte
	for _, e := range b.entries {
		out = append(out, menu.Encode(e)...)
	}
	return string(out), true
}

// Snapshot returns a copy of the current entries, in order.
func (b *Buffer) Snapshot() []models.Entry {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]models.Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Len returns the current entry count.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}
