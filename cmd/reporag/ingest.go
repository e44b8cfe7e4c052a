package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reporag/reporag/application/collector"
)

func ingestCmd() *cobra.Command {
	var (
		envFile  string
		org      string
		datasets []string
	)

	cmd := &cobra.Command{
		Use:   "ingest [repo...]",
		Short: "Ingest repository data into the document store",
		Long: `Ingest repository data into the document store.

Repositories are given as owner/name arguments. With no arguments the
GITHUB_REPOS list is used; when that is empty too, every repository of
the configured organization is ingested.

Datasets: ` + fmt.Sprintf("%q", collector.AllDatasets),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd.Context(), envFile, org, args, datasets)
		},
	}

	cmd.Flags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")
	cmd.Flags().StringVar(&org, "org", "", "Organization to list repositories from (default: GITHUB_ORG)")
	cmd.Flags().StringSliceVar(&datasets, "datasets", nil, "Datasets to ingest (default: all)")

	return cmd
}

func runIngest(ctx context.Context, envFile, org string, args, datasets []string) error {
	rt, err := newRuntime(ctx, envFile)
	if err != nil {
		return err
	}
	defer rt.close(ctx)

	if org == "" {
		org = rt.cfg.GitHubOrg()
	}
	coll := collector.New(rt.store, rt.forge, rt.blobs, org, rt.logger)

	if len(datasets) == 0 {
		datasets = collector.AllDatasets
	}
	repos := rt.repoArgs(args)
	if len(repos) == 0 {
		repos = coll.FetchRepositories(ctx)
	}
	if len(repos) == 0 {
		return fmt.Errorf("no repositories to ingest")
	}

	rt.logger.Info("ingest started", "repos", len(repos), "datasets", datasets)
	if err := coll.UpdateRepos(ctx, repos, datasets); err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	rt.logger.Info("ingest finished", "repos", len(repos))
	return nil
}
