package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reporag/reporag/infrastructure/blobstore"
	"github.com/reporag/reporag/infrastructure/forge"
	"github.com/reporag/reporag/infrastructure/persistence"
	"github.com/reporag/reporag/infrastructure/provider"
	"github.com/reporag/reporag/internal/config"
	"github.com/reporag/reporag/internal/log"
)

// runtime bundles the wired infrastructure shared by the pipeline
// commands.
type runtime struct {
	cfg    config.AppConfig
	logger *slog.Logger
	store  *persistence.Store
	blobs  *blobstore.Store
	forge  *forge.Client
}

// newRuntime loads configuration, configures logging, and connects the
// document store.
func newRuntime(ctx context.Context, envFile string) (*runtime, error) {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return nil, err
	}
	logger := log.Configure(cfg).Slog()

	store, err := persistence.Connect(ctx, cfg.MongoURI(), cfg.DBName(), logger)
	if err != nil {
		return nil, fmt.Errorf("connect document store: %w", err)
	}

	return &runtime{
		cfg:    cfg,
		logger: logger,
		store:  store,
		blobs:  blobstore.New(cfg.StoragePath(), cfg.BaseURL()),
		forge:  forge.NewClient(cfg.GitHubToken(), forge.WithLogger(logger)),
	}, nil
}

func (r *runtime) close(ctx context.Context) {
	if err := r.store.Close(ctx); err != nil {
		r.logger.Error("document store close failed", "error", err)
	}
}

func (r *runtime) openAIConfig() provider.OpenAIConfig {
	return provider.OpenAIConfig{
		APIKey:         r.cfg.OpenAIAPIKey(),
		BaseURL:        r.cfg.OpenAIBaseURL(),
		ChatModel:      r.cfg.ChatModel(),
		EmbeddingModel: r.cfg.EmbeddingModel(),
	}
}

// repoArgs resolves the repositories to operate on: explicit arguments
// win, then the configured list.
func (r *runtime) repoArgs(args []string) []string {
	if len(args) > 0 {
		return args
	}
	return r.cfg.GitHubRepos()
}
