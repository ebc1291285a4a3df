package menu

import (
	"bufio"
	"io"
	"sync"
)

// Writer emits serialized suggestion snapshots, one per line, flushing after
// every line so the front-end renders without buffering delay. It is safe
// for concurrent use: the pipeline and the workers share one Writer.
type Writer struct {
	mu sync.Mutex
	wr *bufio.Writer
}

func NewWriter(wr io.Writer) *Writer {
	return &Writer{wr: bufio.NewWriter(wr)}
}

// WriteLine writes one snapshot payload followed by the line terminator and
// forces it out immediately.
func (w *Writer) WriteLine(payload string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.wr.WriteString(payload); err != nil {
		return err
	}
	if err := w.wr.WriteByte('\n'); err != nil {
		return err
	}
	return w.wr.Flush()
}
