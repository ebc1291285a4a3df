// Package server drives the suggestion engine: one cycle per input line,
// cancel-and-restart. Each cycle clears the shared buffer, cancels the
// previous generation's workers, runs the synchronous resolver pipeline,
// flushes, and spawns fresh workers that flush again as they finish.
package server

import (
	"bufio"
	"context"
	"io"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"beacon/internal/buffer"
	"beacon/internal/config"
	"beacon/internal/core/ports"
	"beacon/internal/metrics"
	"beacon/internal/resolver"
	"beacon/internal/worker"
	"beacon/pkg/menu"
)

// State of the input loop. The engine is Resolving only for the bounded
// synchronous part of a cycle; worker time is spent Idle, awaiting input.
type State int32

const (
	StateIdle State = iota
	StateResolving
)

type Engine struct {
	conf       *config.Store
	buf        *buffer.Buffer
	out        *menu.Writer
	pipeline   *resolver.Pipeline
	supervisor *worker.Supervisor
	history    ports.History
	metrics    *metrics.Metrics
	logger     *zap.Logger

	gen   atomic.Uint64
	state atomic.Int32
	stop  context.CancelFunc

	errMu    sync.Mutex
	writeErr error
}

func New(
	conf *config.Store,
	buf *buffer.Buffer,
	out *menu.Writer,
	pipeline *resolver.Pipeline,
	searcher ports.Searcher,
	lookup ports.Lookup,
	history ports.History,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Engine {
	e := &Engine{
		conf:     conf,
		buf:      buf,
		out:      out,
		pipeline: pipeline,
		history:  history,
		metrics:  m,
		logger:   logger,
	}
	e.supervisor = worker.NewSupervisor(conf, searcher, lookup, buf, e.Flush, m, logger)
	return e
}

// Run reads input lines until EOF or a fatal stream error. The trailing
// newline is stripped by the scanner.
func (e *Engine) Run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	e.stop = cancel

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		e.cycle(ctx, scanner.Text())
		if err := e.fatal(); err != nil {
			e.supervisor.Shutdown()
			return err
		}
	}

	e.supervisor.Shutdown()
	if err := e.fatal(); err != nil {
		return err
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	e.logger.Info("input stream closed")
	return nil
}

func (e *Engine) cycle(ctx context.Context, input string) {
	e.state.Store(int32(StateResolving))
	defer e.state.Store(int32(StateIdle))

	gen := e.gen.Add(1)
	// Resetting first severs any late writer from the previous generation;
	// cancellation below does not need to wait for them.
	e.buf.Reset(gen)
	e.supervisor.CancelPrevious()

	if input == "" {
		e.metrics.IncrEmptyLine()
		e.Flush(gen)
		return
	}

	e.metrics.IncrCycle()
	e.pipeline.Run(ctx, gen, input, e.buf)
	e.Flush(gen)

	if e.history != nil {
		e.history.Record(input)
	}
	e.supervisor.Spawn(ctx, gen, input)
}

// Flush serializes the buffer for gen and writes one protocol line. A stale
// generation serializes to nothing and the flush is skipped, which is what
// keeps a slow worker from re-emitting into a newer cycle.
func (e *Engine) Flush(gen uint64) {
	payload, ok := e.buf.Serialize(gen)
	if !ok {
		return
	}
	if err := e.out.WriteLine(payload); err != nil {
		e.setFatal(err)
		return
	}
	e.metrics.IncrFlush()
}

// State returns the current loop state.
func (e *Engine) State() State {
	return State(e.state.Load())
}

// Generation returns the most recently started generation.
func (e *Engine) Generation() uint64 {
	return e.gen.Load()
}

// setFatal records the first output stream error and stops the loop; the
// protocol has no way to surface errors, so a dead stream ends the process.
func (e *Engine) setFatal(err error) {
	e.errMu.Lock()
	if e.writeErr == nil {
		e.writeErr = err
	}
	e.errMu.Unlock()

	e.logger.Error("output stream write failed", zap.Error(err))
	if e.stop != nil {
		e.stop()
	}
}

func (e *Engine) fatal() error {
	e.errMu.Lock()
	defer e.errMu.Unlock()
	return e.writeErr
}
