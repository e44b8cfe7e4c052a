package collector

import (
	"context"
	"fmt"
	"sort"

	"github.com/reporag/reporag/domain/document"
)

// contributorCommitLimit caps the stored commit ids per contributor.
const contributorCommitLimit = 10

// UpdateContributors rebuilds the contributor roll-up from the commit
// collection. Commits without an author email are ignored.
func (c *Collector) UpdateContributors(ctx context.Context) error {
	commits, err := c.store.AllCommits(ctx)
	if err != nil {
		return fmt.Errorf("update contributors: %w", err)
	}

	type entry struct {
		name    string
		repos   map[string]bool
		commits []string
	}
	byEmail := make(map[string]*entry)
	var order []string

	for _, commit := range commits {
		if commit.AuthorEmail == nil || *commit.AuthorEmail == "" {
			continue
		}
		email := *commit.AuthorEmail
		e, ok := byEmail[email]
		if !ok {
			e = &entry{repos: make(map[string]bool)}
			if commit.Author != nil {
				e.name = *commit.Author
			}
			byEmail[email] = e
			order = append(order, email)
		}
		e.repos[commit.Repo] = true
		e.commits = append(e.commits, commit.ID)
	}

	contributors := make([]document.Contributor, 0, len(byEmail))
	for _, email := range order {
		e := byEmail[email]
		repos := make([]string, 0, len(e.repos))
		for repo := range e.repos {
			repos = append(repos, repo)
		}
		sort.Strings(repos)

		recent := e.commits
		if len(recent) > contributorCommitLimit {
			recent = recent[len(recent)-contributorCommitLimit:]
		}

		contributors = append(contributors, document.Contributor{
			ID:           email,
			Name:         e.name,
			Email:        email,
			Repos:        repos,
			TotalCommits: len(e.commits),
			Commits:      recent,
		})
	}

	if len(contributors) == 0 {
		return nil
	}
	if err := c.store.UpsertContributors(ctx, contributors); err != nil {
		return fmt.Errorf("update contributors: %w", err)
	}
	c.logger.Info("contributors updated", "count", len(contributors))
	return nil
}
