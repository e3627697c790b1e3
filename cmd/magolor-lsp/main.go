// Package main provides the entry point for the magolor-lsp language
// server. The server speaks JSON-RPC 2.0 over stdio; its only external
// input beyond flags is the standard streams.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lucas-veyrier/magolor/lsp"
)

var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "magolor-lsp: %v\n", err)
		os.Exit(1)
	}
}

// isCleanShutdown checks whether an error represents a normal client
// disconnect; LSP clients commonly close stdio on exit.
func isCleanShutdown(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "broken pipe") || strings.Contains(errStr, "EPIPE")
}

func run(args []string) error {
	fs := flag.NewFlagSet("magolor-lsp", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	var (
		logLevel = fs.String("log-level", "info", "log level: error|warn|info|debug")
		showVer  = fs.Bool("version", false, "print version and exit")
		_        = fs.Bool("stdio", false, "use stdio transport (default, accepted for editor compatibility)")
	)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("parse flags: %w", err)
	}

	if *showVer {
		fmt.Printf("magolor-lsp %s\n", version)
		return nil
	}

	level := slog.LevelInfo
	switch *logLevel {
	case "error":
		level = slog.LevelError
	case "warn":
		level = slog.LevelWarn
	case "debug":
		level = slog.LevelDebug
	}
	// Logs go to stderr: stdout carries the JSON-RPC stream.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	logger.Info("starting magolor-lsp", slog.String("version", version))

	server := lsp.NewServer(logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() { errCh <- server.RunStdio() }()

	logger.Info("running on stdio")

	select {
	case err := <-errCh:
		if err != nil && !isCleanShutdown(err) {
			return fmt.Errorf("run server: %w", err)
		}
		logger.Info("server shutdown complete")
		return nil
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", slog.String("signal", sig.String()))
		if err := server.Close(); err != nil {
			logger.Warn("error closing connection", slog.String("error", err.Error()))
		}
		if err := os.Stdin.Close(); err != nil {
			logger.Debug("error closing stdin", slog.String("error", err.Error()))
		}
		select {
		case err := <-errCh:
			if err != nil {
				logger.Debug("RunStdio returned after close", slog.String("error", err.Error()))
			}
		case <-time.After(5 * time.Second):
			logger.Warn("shutdown timed out, forcing exit")
		}
		logger.Info("server shutdown complete")
		return nil
	}
}
