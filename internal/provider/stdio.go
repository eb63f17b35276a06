package provider

import (
	"context"
	"log/slog"
	"os"
)

// ServeStdio serves a provider configured from the environment until stdin is closed.
// Logs go to stderr so stdout carries protocol messages only.
func ServeStdio(ctx context.Context) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	options := append(FromEnv(), WithLogger(logger))
	return New(options...).Stdio(ctx).ListenAndServe()
}

// ServeFromEnv serves over stdio and exits the process when EnvServe is "1".
// Test binaries call it from TestMain to act as their own provider.
func ServeFromEnv() {
	if os.Getenv(EnvServe) != "1" {
		return
	}
	if err := ServeStdio(context.Background()); err != nil {
		os.Exit(1)
	}
	os.Exit(0)
}
