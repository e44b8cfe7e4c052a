package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reporag/reporag/application/metadata"
	"github.com/reporag/reporag/infrastructure/provider"
)

func metadataCmd() *cobra.Command {
	var (
		envFile     string
		collections []string
		backend     string
	)

	cmd := &cobra.Command{
		Use:   "metadata [repo...]",
		Short: "Generate metadata and embedded chunks for stored documents",
		Long: `Generate metadata and embedded chunks for stored documents.

Each source document is reduced to canonical text, chunked, embedded,
and tagged. Unchanged documents are skipped by content hash.

Collections: ` + fmt.Sprintf("%q", metadata.AllCollections),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMetadata(cmd.Context(), envFile, backend, args, collections)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringSliceVar(&collections, "collections", nil, "Source collections to process (default: all)")
	cmd.Flags().StringVar(&backend, "backend", provider.BackendOpenAI, "Model backend for embeddings and summaries")

	return cmd
}

func runMetadata(ctx context.Context, envFile, backendName string, args, collections []string) error {
	rt, err := newRuntime(ctx, envFile)
	if err != nil {
		return err
	}
	defer rt.close(ctx)

	repos := rt.repoArgs(args)
	if len(repos) == 0 {
		// Fall back to every repository the collector has seen.
		stored, err := rt.store.Repositories(ctx)
		if err != nil {
			return err
		}
		for _, r := range stored {
			repos = append(repos, r.ID)
		}
	}
	if len(repos) == 0 {
		return fmt.Errorf("no repositories given")
	}

	cfg := rt.openAIConfig()
	embedder, err := provider.NewEmbedder(backendName, cfg)
	if err != nil {
		return err
	}
	summarizer, err := provider.NewSummarizer(backendName, cfg)
	if err != nil {
		return err
	}
	keywords, err := provider.NewKeywordExtractor(provider.BackendFrequency)
	if err != nil {
		return err
	}

	gen := metadata.New(rt.store, rt.blobs, embedder, summarizer, keywords, rt.logger)
	if err := gen.UpdateRepos(ctx, repos, collections); err != nil {
		return fmt.Errorf("metadata: %w", err)
	}
	rt.logger.Info("metadata generation finished", "repos", len(repos))
	return nil
}
