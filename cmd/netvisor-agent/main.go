// SPDX-License-Identifier: GPL-3.0-or-later

// Command netvisor-agent is the process entrypoint: it loads a YAML
// config, stands up the configured taps and policies, and serves the
// control/scrape HTTP surface until signaled to stop.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	netvisor "github.com/netvisor/agent"
	"github.com/netvisor/agent/httpapi"
	"github.com/netvisor/agent/internal/config"
	"github.com/netvisor/agent/internal/pipeline"
	"github.com/netvisor/agent/policy"
)

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

// cliFlags holds parsed command-line flag values.
type cliFlags struct {
	configPath string
	listenAddr string
	jsonLogs   bool
	debug      bool
}

func parseFlags() cliFlags {
	var f cliFlags
	flag.StringVar(&f.configPath, "config", "", "Path to YAML config file (taps/policies/listen address)")
	flag.StringVar(&f.listenAddr, "listen", "", "Override the HTTP listen address")
	flag.BoolVar(&f.jsonLogs, "json-logs", false, "Emit structured JSON logs instead of text")
	flag.BoolVar(&f.debug, "debug", false, "Enable debug-level logging")
	flag.Parse()
	return f
}

func configureLogger(f cliFlags) *slog.Logger {
	level := slog.LevelInfo
	if f.debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if f.jsonLogs {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func run() error {
	flags := parseFlags()
	logger := configureLogger(flags)

	var cfg *config.Config
	if flags.configPath != "" {
		var err error
		cfg, err = config.LoadFile(flags.configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = &config.Config{ListenAddr: config.DefaultListenAddr}
	}
	if flags.listenAddr != "" {
		cfg.ListenAddr = flags.listenAddr
	}

	mgr := policy.NewManager()
	now := time.Now()
	if err := buildPipelines(mgr, cfg, now); err != nil {
		return fmt.Errorf("building pipelines: %w", err)
	}

	logger.Info("netvisor-agent starting",
		"listen_addr", cfg.ListenAddr,
		"taps", len(cfg.Taps),
		"policies", len(cfg.Policies),
	)

	srv := httpapi.NewServer(mgr, now,
		httpapi.WithLogger(logger),
		httpapi.WithErrClassifier(netvisor.DefaultErrClassifier),
		httpapi.WithInstance(cfg.Instance),
		httpapi.WithVersion(version),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(cfg.ListenAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server exited: %w", err)
		}
	}

	return nil
}

// buildPipelines constructs every configured tap and, for every
// configured policy, attaches its handlers to the named taps — all
// through [pipeline], the same registry the HTTP control plane uses,
// so config-driven and request-driven startup never diverge.
func buildPipelines(mgr *policy.Manager, cfg *config.Config, now time.Time) error {
	for _, t := range cfg.Taps {
		tap, err := pipeline.NewTap(t.Kind, t.Name)
		if err != nil {
			return fmt.Errorf("tap %q: %w", t.Name, err)
		}
		if err := mgr.AddTap(tap); err != nil {
			return fmt.Errorf("tap %q: %w", t.Name, err)
		}
	}

	for _, pc := range cfg.Policies {
		p := policy.NewPolicy(pc.Name)
		for _, b := range pc.Handlers {
			tap, err := mgr.Tap(b.Tap)
			if err != nil {
				p.Stop()
				return fmt.Errorf("policy %q: handler tap %q: %w", pc.Name, b.Tap, err)
			}
			handlerName := b.Handler
			if handlerName == "" {
				handlerName = string(b.Kind)
			}
			if err := pipeline.AttachHandler(p, tap, b.Kind, handlerName, now); err != nil {
				p.Stop()
				return fmt.Errorf("policy %q: %w", pc.Name, err)
			}
		}
		if err := mgr.AddPolicy(p); err != nil {
			p.Stop()
			return fmt.Errorf("policy %q: %w", pc.Name, err)
		}
	}
	return nil
}
