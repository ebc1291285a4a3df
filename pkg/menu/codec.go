package menu

import (
	"fmt"
	"strings"

	"beacon/internal/core/models"
)

// Escape makes a string safe for the menu wire format: the three reserved
// characters are backslash-escaped and embedded newlines become spaces.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '{', '}', '|':
			b.WriteByte('\\')
			b.WriteRune(r)
		case '\n':
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Encode returns the wire form of a single entry. Title and Action must
// already be escaped; the buffer escapes on insertion.
func Encode(e models.Entry) string {
	return "{" + e.Title + "|" + e.Action + "}"
}

// Decode parses a serialized snapshot back into its entries, reversing
// Escape. Newline folding is lossy and is not reversed.
func Decode(line string) ([]models.Entry, error) {
	var entries []models.Entry
	i := 0
	for i < len(line) {
		if line[i] != '{' {
			return nil, fmt.Errorf("menu: expected '{' at offset %d", i)
		}
		i++
		title, next, err := scanField(line, i, '|')
		if err != nil {
			return nil, err
		}
		action, end, err := scanField(line, next, '}')
		if err != nil {
			return nil, err
		}
		entries = append(entries, models.Entry{Title: title, Action: action})
		i = end
	}
	return entries, nil
}

// scanField reads up to an unescaped terminator, unescaping as it goes, and
// returns the field plus the offset just past the terminator.
func scanField(line string, start int, term byte) (string, int, error) {
	var b strings.Builder
	for i := start; i < len(line); i++ {
		c := line[i]
		switch c {
		case '\\':
			if i+1 >= len(line) {
				return "", 0, fmt.Errorf("menu: dangling escape at offset %d", i)
			}
			i++
			b.WriteByte(line[i])
		case term:
			return b.String(), i + 1, nil
		case '{', '}', '|':
			return "", 0, fmt.Errorf("menu: unescaped %q at offset %d", c, i)
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, fmt.Errorf("menu: missing %q terminator", term)
}
