package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reporag/reporag/application/metadata"
	"github.com/reporag/reporag/application/rag"
	"github.com/reporag/reporag/infrastructure/index"
	"github.com/reporag/reporag/infrastructure/provider"
)

func askCmd() *cobra.Command {
	var (
		envFile     string
		repo        string
		collections []string
		topK        int
		noRecord    bool
	)

	cmd := &cobra.Command{
		Use:   "ask <question...>",
		Short: "Answer a question over a repository's index",
		Long: `Answer a question over a repository's index.

The question is embedded, the nearest chunks are retrieved, and the
generative backend answers from the assembled context. Each query is
appended to the JSONL query log unless --no-record is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd.Context(), envFile, repo, strings.Join(args, " "), collections, topK, noRecord)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&repo, "repo", "", "Repository to query (default: first of GITHUB_REPOS)")
	cmd.Flags().StringSliceVar(&collections, "collections", nil, "Source collections to answer from (default: all)")
	cmd.Flags().IntVar(&topK, "top-k", rag.DefaultTopK, "Number of chunks to retrieve")
	cmd.Flags().BoolVar(&noRecord, "no-record", false, "Skip the query log")

	return cmd
}

func runAsk(ctx context.Context, envFile, repo, question string, collections []string, topK int, noRecord bool) error {
	rt, err := newRuntime(ctx, envFile)
	if err != nil {
		return err
	}
	defer rt.close(ctx)

	if repo == "" {
		if repos := rt.cfg.GitHubRepos(); len(repos) > 0 {
			repo = repos[0]
		}
	}
	if repo == "" {
		return fmt.Errorf("no repository given")
	}
	if len(collections) == 0 {
		collections = metadata.AllCollections
	}

	cfg := rt.openAIConfig()
	embedder, err := provider.NewEmbedder(provider.BackendOpenAI, cfg)
	if err != nil {
		return err
	}
	llm, err := provider.NewLLM(provider.BackendOpenAI, cfg)
	if err != nil {
		return err
	}

	opts := []rag.Option{rag.WithMaxContextTokens(rt.cfg.MaxContextTokens())}
	if !noRecord {
		recorder, err := rag.NewQueryRecorder(rt.cfg.QueryLogPath())
		if err != nil {
			return err
		}
		opts = append(opts, rag.WithRecorder(recorder))
	}

	manager := index.NewManager(rt.cfg.IndexRoot(), rt.store, embedder, rt.logger)
	engine := rag.NewEngine(manager, llm, repo, collections, rt.logger, opts...)
	if err := engine.EnsureIndex(ctx); err != nil {
		return err
	}

	answer, err := engine.Answer(ctx, question, topK)
	if err != nil {
		return err
	}
	fmt.Println(answer)
	return nil
}
