// # cmd/shadowmap/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"shadowmap/internal/core/config"
	"shadowmap/internal/shared/observability"
	"shadowmap/internal/shared/version"
)

var (
	configPath  = flag.String("config", "./shadowmap.toml", "Path to config file")
	once        = flag.Bool("once", false, "Run single resolution pass and exit")
	ui          = flag.Bool("ui", false, "Enable terminal UI mode")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("shadowmap %s\n", version.Version)
		os.Exit(0)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}

	output := os.Stdout
	if *ui {
		// In UI mode, avoid stdout logs corrupting the TUI.
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
			if err == nil {
				output = f
			} else {
				fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		if *configPath == "./shadowmap.toml" {
			cfg, err = config.Load("./shadowmap.example.toml")
		}
		if err != nil {
			slog.Error("failed to load config", "error", err)
			os.Exit(1)
		}
	}
	config.ApplyEnvOverrides(cfg)
	cfg.ResolveRelative(*configPath)

	if flag.NArg() > 0 {
		cfg.Sources.Roots = []string{flag.Arg(0)}
	}

	ctx := context.Background()

	if cfg.Observability.Enabled {
		if cfg.Observability.EnableMetrics {
			srv := observability.NewServer(fmt.Sprintf(":%d", cfg.Observability.Port), nil)
			if err := srv.Start(ctx); err != nil {
				slog.Error("failed to start observability server", "error", err)
			}
			defer srv.Stop(ctx)
		}
		if cfg.Observability.EnableTracing && cfg.Observability.OTLPEndpoint != "" {
			shutdown, err := observability.InitTracing(ctx, cfg.Observability.OTLPEndpoint)
			if err != nil {
				slog.Error("failed to initialize tracing", "error", err)
			} else {
				defer shutdown(ctx)
			}
		}
	}

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	// Initial scan and pass
	if err := app.InitialScan(); err != nil {
		slog.Error("initial scan failed", "error", err)
		os.Exit(1)
	}

	outcome, err := app.RunPass(ctx)
	if err != nil {
		slog.Error("resolution pass failed", "error", err)
		os.Exit(1)
	}

	if err := app.GenerateOutputs(outcome); err != nil {
		slog.Error("failed to generate outputs", "error", err)
	}
	if err := app.PersistPass(outcome); err != nil {
		slog.Error("failed to persist pass", "error", err)
	}

	if !*ui {
		app.PrintSummary(outcome)
	}

	if *once {
		if outcome.Errors() > 0 {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Watch mode
	if err := app.StartWatcher(); err != nil {
		slog.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}

	if *ui {
		if err := app.RunUI(); err != nil {
			slog.Error("failed to run UI", "error", err)
			os.Exit(1)
		}
	} else {
		// Block forever
		select {}
	}
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "shadowmap", "shadowmap.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "shadowmap", "shadowmap.log")
	}

	return "shadowmap.log"
}
