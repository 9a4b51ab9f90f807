// Package main starts the Scoundrel game server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jason-s-yu/scoundrel/internal/auth"
	"github.com/jason-s-yu/scoundrel/internal/config"
	"github.com/jason-s-yu/scoundrel/internal/logging"
	"github.com/jason-s-yu/scoundrel/internal/server"
	"github.com/jason-s-yu/scoundrel/internal/session"
	"github.com/jason-s-yu/scoundrel/internal/store"
	"github.com/sirupsen/logrus"
)

func main() {
	envFile := flag.String("env", "", "optional env file to load (default: .env when present)")
	flag.Parse()

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		logger.WithError(err).Fatal("listen")
	}
	if err := run(ctx, cfg, ln, logger); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}

// run serves on ln until ctx is done, then shuts down within
// cfg.ShutdownTimeout.
func run(ctx context.Context, cfg config.Config, ln net.Listener, logger *logrus.Logger) error {
	st, err := store.Open(ctx, cfg)
	if err != nil {
		_ = ln.Close()
		return fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.WithError(err).Warn("close store")
		}
	}()

	issuer, err := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		_ = ln.Close()
		return err
	}
	sessions := session.NewManager(st, logger, cfg.Seed, cfg.SessionIdleTTL)
	go sessions.Run(ctx, cfg.SessionSweep)
	srv := server.New(sessions, issuer, logger)

	httpServer := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()
	logger.WithFields(logrus.Fields{
		"addr":  ln.Addr().String(),
		"store": cfg.Store,
	}).Info("scoundrel listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
