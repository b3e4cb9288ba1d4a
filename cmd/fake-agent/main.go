// ABOUTME: Minimal fake leasing agent for E2E testing, serving the chat API over HTTP with SSE replies.
// ABOUTME: Usage: fake-agent [-addr localhost:8000] [-delay 80ms] [-jwt-secret SECRET]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/2389/leasing-chat/internal/auth"
	"github.com/2389/leasing-chat/internal/fakeagent"
)

func main() {
	addr := flag.String("addr", "localhost:8000", "HTTP listen address")
	delay := flag.Duration("delay", 80*time.Millisecond, "Pause between streamed frames")
	secret := flag.String("jwt-secret", os.Getenv("FAKE_AGENT_JWT_SECRET"), "Require bearer JWTs signed with this secret")
	verbose := flag.Bool("v", false, "Debug logging")
	flag.Parse()

	if err := run(*addr, *delay, *secret, *verbose); err != nil {
		log.Fatal(err)
	}
}

func run(addr string, delay time.Duration, secret string, verbose bool) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts := []fakeagent.Option{fakeagent.WithDelay(delay)}
	if secret != "" {
		verifier := auth.NewJWTVerifier([]byte(secret))
		opts = append(opts, fakeagent.WithVerifier(verifier))

		// Print a ready-to-use token so the client can be pointed here directly.
		token, err := verifier.Issue(auth.Grant{Subject: "fake-agent", TTL: 24 * time.Hour})
		if err != nil {
			return fmt.Errorf("generating token: %w", err)
		}
		fmt.Fprintf(os.Stderr, "bearer token (24h): %s\n", token)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           fakeagent.New(logger, opts...).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("fake agent listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
