package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/okian/trainops/internal/adapters/cli"
	"github.com/okian/trainops/internal/config"
	"github.com/okian/trainops/pkg/logger"
	"github.com/okian/trainops/pkg/metrics"
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes one command line and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if err := logger.InitWithWriter(stderr); err != nil {
		_, _ = fmt.Fprintln(stderr, "failed to initialize logging:", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	ctx = logger.ContextWithNewCorrelationID(ctx)
	log := logger.Get()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		_, _ = fmt.Fprintln(stderr, "failed to load config:", err)
		return 1
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	rt := cli.Runtime{Config: cfg, Logger: log, Metrics: metrics.Default()}
	if err := cli.Execute(ctx, rt, args, stdout, stderr); err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}
