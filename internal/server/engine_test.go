package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"beacon/internal/buffer"
	"beacon/internal/config"
	"beacon/internal/core/models"
	"beacon/internal/core/ports"
	"beacon/internal/handlers"
	"beacon/internal/metrics"
	"beacon/internal/resolver"
	"beacon/pkg/menu"
)

type stubCompleter struct {
	names []string
}

func (s *stubCompleter) Complete(context.Context, string) ([]string, error) {
	return s.names, nil
}

type stubApps map[string]models.AppEntry

func (s stubApps) Lookup(cmd string) (models.AppEntry, bool) {
	app, ok := s[cmd]
	return app, ok
}

type stubSearcher struct {
	matches []models.Match
	started chan string
}

func (s *stubSearcher) Search(ctx context.Context, pattern string, limit int) ([]models.Match, error) {
	if s.started != nil {
		s.started <- pattern
	}
	return s.matches, nil
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

// countingWriter collects output and closes ready once target protocol lines
// have been written, so a test can hold the input stream open until a
// background worker's flush has landed.
type countingWriter struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	lines  int
	target int
	ready  chan struct{}
}

func newCountingWriter(target int) *countingWriter {
	return &countingWriter{target: target, ready: make(chan struct{})}
}

func (w *countingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	n, err := w.buf.Write(p)
	w.lines += bytes.Count(p, []byte("\n"))
	if w.ready != nil && w.lines >= w.target {
		close(w.ready)
		w.ready = nil
	}
	return n, err
}

func (w *countingWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

// gatedReader serves its wrapped input, then delays EOF until wait fires.
type gatedReader struct {
	in   io.Reader
	wait <-chan struct{}
}

func (r *gatedReader) Read(p []byte) (int, error) {
	n, err := r.in.Read(p)
	if err == io.EOF {
		select {
		case <-r.wait:
		case <-time.After(5 * time.Second):
		}
	}
	return n, err
}

func testStore() *config.Store {
	cfg := config.Default()
	cfg.Terminal.Command = "urxvt -e"
	cfg.Search.Delay = 0
	cfg.Lookup.Delay = 0
	cfg.Eval.Enabled = false
	return config.NewStore(cfg)
}

func newEngine(conf *config.Store, out *menu.Writer, completer *stubCompleter, apps stubApps, searcher *stubSearcher) *Engine {
	m := metrics.NewMetrics()
	buf := buffer.New()
	pipeline := resolver.New(conf, completer, apps, handlers.NewTable(conf), nil, nil, m, zap.NewNop())
	var se ports.Searcher
	if searcher != nil {
		se = searcher
	}
	return New(conf, buf, out, pipeline, se, nil, nil, m, zap.NewNop())
}

func TestRunEmitsSnapshotPerLine(t *testing.T) {
	var out bytes.Buffer
	conf := testStore()
	e := newEngine(conf, menu.NewWriter(&out), &stubCompleter{}, stubApps{}, nil)

	err := e.Run(context.Background(), strings.NewReader("ls\n"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 1)

	entries, err := menu.Decode(lines[0])
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "execute 'ls'", entries[0].Title)
	assert.Equal(t, "ls", entries[0].Action)
	assert.Equal(t, "run 'ls' in a shell", entries[1].Title)
}

func TestRunEmptyLineClearsMenu(t *testing.T) {
	var out bytes.Buffer
	e := newEngine(testStore(), menu.NewWriter(&out), &stubCompleter{}, stubApps{}, nil)

	err := e.Run(context.Background(), strings.NewReader("ls\n\n"))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.NotEmpty(t, lines[0])
	assert.Empty(t, lines[1])
}

func TestRunNoWorkersForEmptyLine(t *testing.T) {
	var out bytes.Buffer
	started := make(chan string, 4)
	searcher := &stubSearcher{started: started}
	e := newEngine(testStore(), menu.NewWriter(&out), &stubCompleter{}, stubApps{}, searcher)

	err := e.Run(context.Background(), strings.NewReader("\n\n"))
	require.NoError(t, err)

	close(started)
	assert.Empty(t, started)
}

func TestRunWorkerResultsAppendToSnapshot(t *testing.T) {
	// One line from the pipeline flush, one from the worker flush. The input
	// stream stays open until both have been written.
	out := newCountingWriter(2)
	searcher := &stubSearcher{matches: []models.Match{
		{Path: "/home/u/notes.txt", Kind: models.MatchText},
	}}
	e := newEngine(testStore(), menu.NewWriter(out), &stubCompleter{}, stubApps{}, searcher)

	in := &gatedReader{in: strings.NewReader("notes.txt\n"), wait: out.ready}
	err := e.Run(context.Background(), in)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)

	entries, err := menu.Decode(lines[1])
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "/home/u/notes.txt", entries[0].Title)
	assert.Equal(t, "execute 'notes.txt'", entries[1].Title)
}

func TestRunCandidatesInSnapshot(t *testing.T) {
	var out bytes.Buffer
	completer := &stubCompleter{names: []string{"firefox"}}
	apps := stubApps{"firefox": {Name: "Firefox", Exec: "/usr/lib/firefox/firefox"}}
	e := newEngine(testStore(), menu.NewWriter(&out), completer, apps, nil)

	err := e.Run(context.Background(), strings.NewReader("fire\n"))
	require.NoError(t, err)

	entries, err := menu.Decode(strings.TrimSuffix(out.String(), "\n"))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "firefox", entries[0].Title)
	assert.Equal(t, "/usr/lib/firefox/firefox", entries[0].Action)
}

func TestRunGenerationAdvancesPerLine(t *testing.T) {
	var out bytes.Buffer
	e := newEngine(testStore(), menu.NewWriter(&out), &stubCompleter{}, stubApps{}, nil)

	err := e.Run(context.Background(), strings.NewReader("a\nb\nc\n"))
	require.NoError(t, err)
	assert.Equal(t, uint64(3), e.Generation())
	assert.Equal(t, StateIdle, e.State())
}

func TestRunStopsOnWriteFailure(t *testing.T) {
	e := newEngine(testStore(), menu.NewWriter(failingWriter{}), &stubCompleter{}, stubApps{}, nil)

	err := e.Run(context.Background(), strings.NewReader("ls\nnever-reached\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pipe")
}

func TestRunHonorsContextCancel(t *testing.T) {
	var out bytes.Buffer
	e := newEngine(testStore(), menu.NewWriter(&out), &stubCompleter{}, stubApps{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx, strings.NewReader("a\nb\n")) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
