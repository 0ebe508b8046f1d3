// Command munch reads lines on standard input, replaces spaces with asterisks, upper cases
// them and prints them on standard output. Queue statistics and diagnostics go to standard
// error. Configuration comes from the environment, see internal/config.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/fogfactory/munch"
	"github.com/fogfactory/munch/internal/config"
	"github.com/fogfactory/munch/internal/logging"
)

func main() {
	os.Exit(run(context.Background(), os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		return fail(stderr, logging.NewOrNop(logging.Config{Level: "error", OutputPaths: []string{"stderr"}}), err)
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Development = cfg.Logging.Development
	logger, err := logging.New(logCfg)
	if err != nil {
		fmt.Fprintf(stderr, "Invalid LOG_LEVEL %q: %v. Exiting!\n", cfg.Logging.Level, err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	pcfg := munch.DefaultConfig()
	pcfg.QueueCapacity = cfg.Pipeline.QueueCapacity
	pcfg.MaxLineLength = cfg.Pipeline.MaxLineLength
	pcfg.QueueTimeout = cfg.Pipeline.QueueTimeout
	pcfg.Logger = logger
	if cfg.Pipeline.Metrics {
		pcfg.Metrics = munch.NewMetrics()
	}

	return execute(ctx, stdin, stdout, stderr, pcfg, cfg.Pipeline.Stats)
}

func execute(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, cfg munch.Config, stats bool) int {
	p, err := munch.New(stdin, stdout, cfg)
	if err != nil {
		return fail(stderr, cfg.Logger, err)
	}

	if _, err := p.Run(ctx); err != nil {
		return fail(stderr, cfg.Logger, err)
	}

	if stats {
		if err := p.RenderStats(stderr); err != nil {
			return fail(stderr, cfg.Logger, err)
		}
	}
	if err := p.WriteMetrics(stderr); err != nil {
		return fail(stderr, cfg.Logger, err)
	}
	return 0
}

func fail(stderr io.Writer, logger *zap.Logger, err error) int {
	if logger != nil {
		logger.Error("pipeline failed", zap.Error(err))
	}
	fmt.Fprintf(stderr, "%v. Exiting!\n", err)
	return 1
}
