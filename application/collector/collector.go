// Package collector ingests forge data into the document and blob
// stores. Every collector is idempotent and resumable: reruns over
// unchanged remote state leave the stores unchanged.
package collector

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/reporag/reporag/domain/document"
	"github.com/reporag/reporag/infrastructure/blobstore"
	"github.com/reporag/reporag/infrastructure/forge"
)

// Dataset names accepted by Update.
const (
	DatasetRepositoryInfo = "repository info"
	DatasetCommits        = "commits"
	DatasetPullRequests   = "pull requests"
	DatasetIssues         = "issues"
	DatasetBranchFiles    = "branch files"
	DatasetReleaseFiles   = "release files"
)

// AllDatasets is the full ingestion set in execution order.
var AllDatasets = []string{
	DatasetRepositoryInfo,
	DatasetCommits,
	DatasetPullRequests,
	DatasetIssues,
	DatasetBranchFiles,
	DatasetReleaseFiles,
}

// Store is the slice of the document store the collectors write to.
type Store interface {
	UpsertRepository(ctx context.Context, repo document.Repository) error

	LatestCommitDate(ctx context.Context, repo string) (time.Time, bool, error)
	CommitExists(ctx context.Context, sha string) (bool, error)
	ExistingCommitIDs(ctx context.Context, shas []string) (map[string]bool, error)
	InsertCommits(ctx context.Context, commits []document.Commit) error
	AllCommits(ctx context.Context) ([]document.Commit, error)

	FileExists(ctx context.Context, id string) (bool, error)
	InsertFiles(ctx context.Context, files []document.ChangedFile) error
	UpsertLFSPointer(ctx context.Context, ptr document.LFSPointer) error

	PullRequest(ctx context.Context, id string) (document.PullRequest, bool, error)
	UpsertPullRequests(ctx context.Context, prs []document.PullRequest) error

	Issue(ctx context.Context, id string) (document.Issue, bool, error)
	UpsertIssues(ctx context.Context, issues []document.Issue) error

	Comment(ctx context.Context, collection, id string) (document.Comment, bool, error)
	UpsertComments(ctx context.Context, collection string, comments []document.Comment) error

	TreeFilesByRepo(ctx context.Context, collection, repo string) ([]document.TreeFile, error)
	UpsertTreeFiles(ctx context.Context, collection string, files []document.TreeFile) error
	DeleteTreeFiles(ctx context.Context, collection, repo string, filenames []string) error

	UpsertContributors(ctx context.Context, contributors []document.Contributor) error
}

// Collector orchestrates ingestion for an organization's repositories.
type Collector struct {
	store  Store
	forge  *forge.Client
	blobs  *blobstore.Store
	org    string
	logger *slog.Logger
}

// New creates a collector.
func New(store Store, client *forge.Client, blobs *blobstore.Store, org string, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		store:  store,
		forge:  client,
		blobs:  blobs,
		org:    org,
		logger: logger,
	}
}

// FetchRepositories lists the organization's repository full names.
func (c *Collector) FetchRepositories(ctx context.Context) []string {
	var names []string
	for page := 1; ; page++ {
		repos := c.forge.OrgRepos(ctx, c.org, page)
		if len(repos) == 0 {
			break
		}
		for _, r := range repos {
			names = append(names, r.FullName)
		}
	}
	return names
}

// FetchRepositoryInfo stores the per-repo metadata record.
func (c *Collector) FetchRepositoryInfo(ctx context.Context, repo string) error {
	info, ok := c.forge.Repo(ctx, repo)
	if !ok {
		c.logger.Warn("repository info unavailable", "repo", repo)
		return nil
	}
	return c.store.UpsertRepository(ctx, document.Repository{
		ID:             repo,
		Description:    info.Description,
		Language:       info.Language,
		URL:            info.HTMLURL,
		LastCommitDate: info.UpdatedAt,
	})
}

// UpdateAll ingests every dataset for every repository in the
// organization.
func (c *Collector) UpdateAll(ctx context.Context) error {
	return c.UpdateRepos(ctx, c.FetchRepositories(ctx), AllDatasets)
}

// UpdateRepos ingests the selected datasets for each repo. Repositories
// run in parallel; datasets within one repo run in order. The commits
// dataset also refreshes the contributor roll-up once all repos are
// done.
func (c *Collector) UpdateRepos(ctx context.Context, repos []string, datasets []string) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, repo := range repos {
		repo := repo
		g.Go(func() error {
			return c.updateRepo(gctx, repo, datasets)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, dataset := range datasets {
		if dataset == DatasetCommits {
			return c.UpdateContributors(ctx)
		}
	}
	return nil
}

func (c *Collector) updateRepo(ctx context.Context, repo string, datasets []string) error {
	c.logger.Info("updating repository", "repo", repo, "datasets", datasets)
	for _, dataset := range datasets {
		var err error
		switch dataset {
		case DatasetRepositoryInfo:
			err = c.FetchRepositoryInfo(ctx, repo)
		case DatasetCommits:
			err = c.FetchCommits(ctx, repo)
		case DatasetPullRequests:
			err = c.FetchPullRequests(ctx, repo)
		case DatasetIssues:
			err = c.FetchIssues(ctx, repo)
		case DatasetBranchFiles:
			err = c.FetchBranchFiles(ctx, repo)
		case DatasetReleaseFiles:
			err = c.FetchReleaseFiles(ctx, repo)
		default:
			c.logger.Warn("unknown dataset", "dataset", dataset)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
