// Package resolver runs the synchronous resolver steps for one input line:
// default options first so they pin to the buffer's tail, then history and
// command candidates, then the prioritized keyword and expression steps.
// Every collaborator failure degrades to zero contributions.
package resolver

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"beacon/internal/buffer"
	"beacon/internal/config"
	"beacon/internal/core/models"
	"beacon/internal/core/ports"
	"beacon/internal/handlers"
	"beacon/internal/metrics"
	"beacon/internal/util"
)

type Pipeline struct {
	conf      *config.Store
	completer ports.Completer
	apps      ports.AppIndex
	keywords  *handlers.Table
	evaluator ports.Evaluator
	history   ports.History
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func New(
	conf *config.Store,
	completer ports.Completer,
	apps ports.AppIndex,
	keywords *handlers.Table,
	evaluator ports.Evaluator,
	history ports.History,
	m *metrics.Metrics,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		conf:      conf,
		completer: completer,
		apps:      apps,
		keywords:  keywords,
		evaluator: evaluator,
		history:   history,
		metrics:   m,
		logger:    logger,
	}
}

// Run mutates buf for the given generation. It never fails; the caller
// flushes afterwards regardless of how much the steps contributed.
func (p *Pipeline) Run(ctx context.Context, gen uint64, input string, buf *buffer.Buffer) {
	cfg := p.conf.Current()

	p.step("defaults", func() { p.defaults(gen, input, cfg, buf) })
	p.step("history", func() { p.historyMatches(gen, input, cfg, buf) })
	p.step("candidates", func() { p.candidates(ctx, gen, input, cfg, buf) })
	p.step("keywords", func() { p.keywordDispatch(gen, input, buf) })
	p.step("eval", func() { p.evaluate(ctx, gen, input, cfg, buf) })
}

func (p *Pipeline) step(name string, fn func()) {
	start := time.Now()
	fn()
	p.metrics.AddStepExecution(name, time.Since(start))
}

// defaults appends the two always-present trailing options. They go in
// first: every later append lands before them per the buffer invariant.
func (p *Pipeline) defaults(gen uint64, input string, cfg *config.Config, buf *buffer.Buffer) {
	buf.Append(gen, models.Entry{
		Title:  fmt.Sprintf("execute '%s'", input),
		Action: input,
	})
	buf.Append(gen, models.Entry{
		Title:  fmt.Sprintf("run '%s' in a shell", input),
		Action: cfg.Terminal.Command + " " + input,
	})
}

func (p *Pipeline) historyMatches(gen uint64, input string, cfg *config.Config, buf *buffer.Buffer) {
	if p.history == nil {
		return
	}
	for _, prev := range p.history.Suggest(input, cfg.History.Max) {
		buf.Append(gen, models.Entry{Title: prev, Action: prev})
	}
}

// candidates asks the completion oracle for commands with the input as
// prefix and appends the ones the application registry knows.
func (p *Pipeline) candidates(ctx context.Context, gen uint64, input string, cfg *config.Config, buf *buffer.Buffer) {
	names, err := p.completer.Complete(ctx, input)
	if err != nil {
		// No matching commands exits non-zero; treated as zero candidates.
		p.logger.Debug("completion lookup empty", zap.String("input", input), zap.Error(err))
		return
	}
	if len(names) > cfg.Pipeline.MaxCandidates {
		names = names[:cfg.Pipeline.MaxCandidates]
	}
	for _, name := range names {
		app, ok := p.apps.Lookup(name)
		if !ok {
			continue
		}
		label := name
		if app.Icon != "" {
			label = "%I" + app.Icon + "%" + name
		}
		buf.Append(gen, models.Entry{Title: label, Action: app.Exec})
	}
}

func (p *Pipeline) keywordDispatch(gen uint64, input string, buf *buffer.Buffer) {
	if entry, ok := p.keywords.Dispatch(input); ok {
		buf.Prepend(gen, entry)
	}
}

// evaluate tries the input as an expression; a presentable value is shown
// first, with an action that reopens an interactive session fed the
// expression.
func (p *Pipeline) evaluate(ctx context.Context, gen uint64, input string, cfg *config.Config, buf *buffer.Buffer) {
	if !cfg.Eval.Enabled || p.evaluator == nil {
		return
	}
	out, ok := p.evaluator.Eval(ctx, input)
	if !ok {
		return
	}
	buf.Prepend(gen, models.Entry{
		Title:  "go: " + out,
		Action: replAction(cfg, input),
	})
}

// replAction builds a terminal command that evaluates the expression in the
// REPL, shows the result, then drops into a fresh interactive session.
func replAction(cfg *config.Config, expr string) string {
	script := fmt.Sprintf("%s <<< %s; exec %s", cfg.Eval.Repl, util.QuoteArg(expr), cfg.Eval.Repl)
	return fmt.Sprintf("%s %s -c %s", cfg.Terminal.Command, cfg.Terminal.Shell, util.QuoteArg(script))
}
