// Package app wires the engine together from configuration: collaborators,
// history persistence, the shared buffer and the menu writer.
package app

import (
	"context"
	"errors"
	"io"
	"os"

	"go.uber.org/zap"

	"beacon/internal/buffer"
	"beacon/internal/config"
	"beacon/internal/desktop"
	"beacon/internal/eval"
	"beacon/internal/handlers"
	"beacon/internal/history"
	"beacon/internal/lookup"
	"beacon/internal/metrics"
	"beacon/internal/resolver"
	"beacon/internal/search"
	"beacon/internal/server"
	"beacon/internal/shell"
	"beacon/internal/storage"
	"beacon/pkg/menu"
)

type App struct {
	engine  *server.Engine
	log     *storage.Log
	metrics *metrics.Metrics
	logger  *zap.Logger
	in      io.Reader
}

func New(conf *config.Store, logger *zap.Logger) (*App, error) {
	cfg := conf.Current()
	m := metrics.NewMetrics()

	// History persistence is best-effort: a log held by another instance
	// degrades to in-memory history rather than refusing to start.
	var histLog *storage.Log
	if cfg.History.Path != "" {
		var err error
		histLog, err = storage.NewLog(cfg.History.Path)
		if err != nil {
			if !errors.Is(err, storage.ErrLocked) {
				return nil, err
			}
			logger.Warn("history log unavailable", zap.Error(err))
		}
	}

	var hist *history.Store
	var err error
	if histLog != nil {
		hist, err = history.NewStore(histLog, logger)
	} else {
		hist, err = history.NewStore(nil, logger)
	}
	if err != nil {
		if histLog != nil {
			histLog.Close()
		}
		return nil, err
	}

	buf := buffer.New()
	out := menu.NewWriter(os.Stdout)
	pipeline := resolver.New(
		conf,
		shell.NewCompleter(),
		desktop.NewIndex(),
		handlers.NewTable(conf),
		eval.New(cfg.Eval.Timeout),
		hist,
		m,
		logger,
	)
	engine := server.New(
		conf,
		buf,
		out,
		pipeline,
		search.NewFinder(cfg.Search.Root, cfg.Search.MaxDepth),
		lookup.NewDuckDuckGo(cfg.Lookup.Endpoint, cfg.Lookup.Timeout),
		hist,
		m,
		logger,
	)

	return &App{
		engine:  engine,
		log:     histLog,
		metrics: m,
		logger:  logger,
		in:      os.Stdin,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	return a.engine.Run(ctx, a.in)
}

func (a *App) Close() {
	if a.log != nil {
		if err := a.log.Close(); err != nil {
			a.logger.Warn("closing history log failed", zap.Error(err))
		}
	}
	a.logger.Info("shutting down", zap.Any("stats", a.metrics.GetStats()))
}
