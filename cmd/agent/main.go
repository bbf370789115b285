package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/peterxing/exo/internal/agent"
	"github.com/peterxing/exo/internal/agent/version"
	"github.com/peterxing/exo/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath   string
		envFile      string
		logLevel     string
		checkBackend bool
		once         bool
		showVersion  bool
	)
	flagSet := pflag.NewFlagSet("exo-agent", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "YAML file with defaults beneath the environment")
	flagSet.StringVar(&envFile, "env-file", "", "dotenv file to load before reading the environment (default: ./.env if present)")
	flagSet.StringVar(&logLevel, "log-level", "", "override EXO_LOG_LEVEL (debug, info, warn, error)")
	flagSet.BoolVar(&checkBackend, "check-backend", false, "resolve the capability backend, report, and exit")
	flagSet.BoolVar(&once, "once", false, "write one memory profile and one node profile, then exit")
	flagSet.BoolVar(&showVersion, "version", false, "print build and platform information")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if err := config.LoadEnvFile(envFile); err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	if showVersion {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(version.Get(cfg, time.Now()))
	}

	logger := agent.BuildLogger(cfg, os.Stderr)
	a, err := agent.New(cfg, logger, os.Stdout)
	if err != nil {
		return fmt.Errorf("agent initialization failed: %w", err)
	}

	switch {
	case checkBackend:
		if err := a.CheckBackend(); err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout, "capability backend available")
		return nil
	case once:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return a.Once(ctx)
	default:
		return a.Run(context.Background())
	}
}
