// lsp-broker is the broker process spec §4.4 describes: it owns the
// session table and the well-known socket, spawned on demand by the lsp
// CLI (internal/bootstrap.EnsureBroker) and outliving any one invocation,
// grounded on the teacher's cmd/lsp-session-manager/main.go flag-parsing +
// signal-handling shape, generalized from a single fixed LSP command to a
// multi-language, multi-session manager.
//
// The broker has no idle-exit timer: it serves until it receives SIGINT or
// SIGTERM, or until its HTTP server fails.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"lspcli/internal/broker"
	"lspcli/internal/config"
	"lspcli/internal/descriptor"
	"lspcli/internal/logging"
	"lspcli/internal/manager"
)

func main() {
	socketFlag := flag.String("socket", "", "override the broker's unix socket path")
	flag.Parse()

	cfg := config.Load()
	if err := config.EnsurePaths(cfg.Paths); err != nil {
		os.Stderr.WriteString("lsp-broker: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logging.New(logging.Options{
		Path:       cfg.Paths.ManagerLogPath(),
		Level:      cfg.LogLevel,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		RetainDays: cfg.LogRetainDays,
		Console:    cfg.Debug,
	})

	socketPath := cfg.Paths.BrokerSocketPath()
	if *socketFlag != "" {
		socketPath = *socketFlag
	}

	registry := descriptor.NewDefaultRegistry()
	mgr := manager.New(registry, cfg, log)
	b := broker.New(mgr, socketPath, log)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info().Msg("received shutdown signal")
		cancel()
	}()

	log.Info().Str("socket", socketPath).Msg("broker listening")
	if err := b.Serve(ctx); err != nil {
		log.Error().Err(err).Msg("broker exited with error")
		os.Exit(1)
	}
}
