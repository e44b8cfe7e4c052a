package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/reporag/reporag/infrastructure/blobserver"
	"github.com/reporag/reporag/internal/log"
)

func serveCmd() *cobra.Command {
	var (
		envFile string
		port    int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve stored blobs over HTTP",
		Long: `Serve stored blobs over HTTP.

The blob store directory is exposed as static files so that every
external_url stored in the document store resolves.

Environment variables:
  LOCAL_STORAGE_PATH  Blob store root directory (default: local_storage)
  PORT                Listen port (default: 8000)
  BASE_URL            URL prefix for stored external_url values
  LOG_LEVEL           Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT          Log format: pretty, json (default: pretty)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(envFile, port)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().IntVar(&port, "port", 0, "Port to listen on (default: 8000)")

	return cmd
}

func runServe(envFile string, port int) error {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return err
	}
	logger := log.Configure(cfg).Slog()

	if err := os.MkdirAll(cfg.StoragePath(), 0o755); err != nil {
		return fmt.Errorf("create storage directory: %w", err)
	}

	addr := cfg.Addr()
	if port != 0 {
		addr = fmt.Sprintf(":%d", port)
	}

	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	logger.LogAttrs(context.Background(), slog.LevelInfo, "starting reporag", attrs...)

	server := blobserver.New(addr, cfg.StoragePath(), logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", slog.Any("error", err))
		}
	}()

	if err := server.Start(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
