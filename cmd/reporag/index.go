package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reporag/reporag/application/metadata"
	"github.com/reporag/reporag/infrastructure/index"
	"github.com/reporag/reporag/infrastructure/provider"
)

func indexCmd() *cobra.Command {
	var (
		envFile     string
		collections []string
		name        string
		force       bool
	)

	cmd := &cobra.Command{
		Use:   "index <repo>",
		Short: "Build the vector index for a repository",
		Long: `Build the vector index for a repository.

Embedded chunks from the selected source collections are written to a
flat vector index plus a JSON sidecar mapping positions to chunk ids.
An existing index is reused unless --force is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd.Context(), envFile, args[0], collections, name, force)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringSliceVar(&collections, "collections", nil, "Source collections to index (default: all)")
	cmd.Flags().StringVar(&name, "name", index.GlobalIndexName, "Index name")
	cmd.Flags().BoolVar(&force, "force", false, "Rebuild even when index artifacts exist")

	return cmd
}

func runIndex(ctx context.Context, envFile, repo string, collections []string, name string, force bool) error {
	rt, err := newRuntime(ctx, envFile)
	if err != nil {
		return err
	}
	defer rt.close(ctx)

	embedder, err := provider.NewEmbedder(provider.BackendOpenAI, rt.openAIConfig())
	if err != nil {
		return err
	}
	if len(collections) == 0 {
		collections = metadata.AllCollections
	}

	manager := index.NewManager(rt.cfg.IndexRoot(), rt.store, embedder, rt.logger)
	if err := manager.Build(ctx, repo, collections, name, force); err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	rt.logger.Info("index ready", "repo", repo, "index", name, "path", manager.IndexPath(repo, name))
	return nil
}
