// Package worker runs the background enrichment tasks of one input cycle:
// a filesystem search and a knowledge lookup, each behind a short debounce
// delay. Starting a new cycle cancels the previous generation's context;
// buffer writes and flushes are generation-checked, so cancellation never
// needs to wait for a worker to actually die.
package worker

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"beacon/internal/buffer"
	"beacon/internal/config"
	"beacon/internal/core/models"
	"beacon/internal/core/ports"
	"beacon/internal/metrics"
	"beacon/internal/util"
)

// FlushFunc writes the buffer snapshot of a generation to the menu stream.
type FlushFunc func(gen uint64)

type Supervisor struct {
	conf     *config.Store
	searcher ports.Searcher
	lookup   ports.Lookup
	buf      *buffer.Buffer
	flush    FlushFunc
	metrics  *metrics.Metrics
	logger   *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	group  *errgroup.Group
}

func NewSupervisor(
	conf *config.Store,
	searcher ports.Searcher,
	lookup ports.Lookup,
	buf *buffer.Buffer,
	flush FlushFunc,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Supervisor {
	return &Supervisor{
		conf:     conf,
		searcher: searcher,
		lookup:   lookup,
		buf:      buf,
		flush:    flush,
		metrics:  m,
		logger:   logger,
	}
}

// CancelPrevious stops the prior generation's workers. It does not wait for
// them: any write they still attempt carries a stale generation tag and is
// dropped by the buffer.
func (s *Supervisor) CancelPrevious() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Spawn starts the search and lookup workers for gen. Each worker appends
// its findings and flushes once on completion, independently of the other.
func (s *Supervisor) Spawn(parent context.Context, gen uint64, input string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	s.cancel = cancel

	g, ctx := errgroup.WithContext(ctx)
	s.group = g
	if s.searcher != nil {
		g.Go(func() error {
			s.runSearch(ctx, gen, input)
			return nil
		})
	}
	if s.lookup != nil {
		g.Go(func() error {
			s.runLookup(ctx, gen, input)
			return nil
		})
	}
}

// Shutdown cancels the current generation and waits for its workers.
func (s *Supervisor) Shutdown() {
	s.mu.Lock()
	cancel, group := s.cancel, s.group
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if group != nil {
		group.Wait()
	}
}

// sleep waits out the debounce delay, reporting false when the cycle was
// cancelled first. The delay is what keeps fast typing from fanning out one
// search and one lookup per keystroke.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Supervisor) runSearch(ctx context.Context, gen uint64, input string) {
	cfg := s.conf.Current()
	if !sleep(ctx, cfg.Search.Delay) {
		s.metrics.IncrWorkerCancelled()
		return
	}

	matches, err := s.searcher.Search(ctx, input, cfg.Search.MaxMatches)
	if err != nil {
		if ctx.Err() != nil {
			s.metrics.IncrWorkerCancelled()
		} else {
			s.logger.Debug("search failed", zap.String("input", input), zap.Error(err))
			s.metrics.IncrWorkerDone()
		}
		return
	}
	if len(matches) == 0 {
		s.metrics.IncrWorkerDone()
		return
	}

	for _, m := range matches {
		s.buf.Append(gen, models.Entry{
			Title:  m.Path,
			Action: openAction(cfg, m),
		})
	}
	s.flush(gen)
	s.metrics.IncrWorkerDone()
}

func (s *Supervisor) runLookup(ctx context.Context, gen uint64, input string) {
	cfg := s.conf.Current()
	if !sleep(ctx, cfg.Lookup.Delay) {
		s.metrics.IncrWorkerCancelled()
		return
	}

	answer, found, err := s.lookup.Query(ctx, input)
	if err != nil {
		if ctx.Err() != nil {
			s.metrics.IncrWorkerCancelled()
		} else {
			s.logger.Debug("lookup failed", zap.String("input", input), zap.Error(err))
			s.metrics.IncrWorkerDone()
		}
		return
	}
	if !found {
		s.metrics.IncrWorkerDone()
		return
	}

	var entry models.Entry
	switch {
	case answer.Text != "" && answer.URL != "":
		entry = models.Entry{Title: answer.Text, Action: cfg.Lookup.Opener + " " + answer.URL}
	case answer.Text != "":
		entry = models.Entry{Title: answer.Text}
	default:
		entry = models.Entry{Title: answer.URL, Action: cfg.Lookup.Opener + " " + answer.URL}
	}
	s.buf.Append(gen, entry)
	s.flush(gen)
	s.metrics.IncrWorkerDone()
}

// openAction builds the terminal command for a search hit: directories are
// entered, text files are edited, anything else falls back to its parent
// directory.
func openAction(cfg *config.Config, m models.Match) string {
	switch m.Kind {
	case models.MatchText:
		return fmt.Sprintf("%s %s %s", cfg.Terminal.Command, cfg.Terminal.Editor, util.QuoteArg(m.Path))
	default:
		dir := m.Path
		if m.Kind == models.MatchBinary {
			dir = filepath.Dir(m.Path)
		}
		script := fmt.Sprintf("cd %s; exec %s", util.QuoteArg(dir), cfg.Terminal.Shell)
		return fmt.Sprintf("%s %s -c %s", cfg.Terminal.Command, cfg.Terminal.Shell, util.QuoteArg(script))
	}
}
