package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"beacon/internal/app"
	"beacon/internal/config"
)

const version = "0.3.0"

var (
	cfgPath string
	debug   bool
)

func main() {
	root := &cobra.Command{
		Use:          "beacond",
		Short:        "Suggestion backend for the beacon launcher menu",
		Long:         "beacond reads one input line per cycle on stdin and emits ranked\nsuggestion snapshots on stdout for the menu front-end to render.",
		SilenceUsage: true,
		RunE:         run,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to beacon.yaml")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the beacond version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "beacond "+version)
		},
	})

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(debug)
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, path, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	conf := config.NewStore(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if path != "" {
		if err := conf.Watch(ctx, path, logger); err != nil {
			logger.Warn("config watch unavailable", zap.Error(err))
		}
	}

	a, err := app.New(conf, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	logger.Info("beacond starting", zap.String("config", path))
	return a.Run(ctx)
}

// newLogger builds a stderr-only logger: stdout carries the menu protocol
// and must stay clean.
func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}
