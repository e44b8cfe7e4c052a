package collector

import (
	"context"
	"fmt"

	"github.com/reporag/reporag/domain/document"
)

// FetchIssues pages through the repo's issues in all states. Entries
// carrying a pull-request linkage are skipped; the issues endpoint
// surfaces PRs too. A duplicate id within one page wins last.
func (c *Collector) FetchIssues(ctx context.Context, repo string) error {
	for page := 1; ; page++ {
		data := c.forge.Issues(ctx, repo, page)
		if len(data) == 0 {
			return nil
		}

		seen := make(map[string]bool)
		var toWrite []document.Issue
		for _, item := range data {
			if item.PullRequest != nil {
				continue
			}

			id := document.IssueID(repo, item.Number)
			existing, found, err := c.store.Issue(ctx, id)
			if err != nil {
				return fmt.Errorf("fetch issues: %w", err)
			}

			if item.Comments > 0 {
				if err := c.fetchComments(ctx, document.CollectionIssueComments, repo, item.Number,
					c.forge.IssueComments(ctx, repo, item.Number)); err != nil {
					return err
				}
			}

			if found && !seen[id] && existing.UpdatedAt == item.UpdatedAt {
				continue
			}
			seen[id] = true

			toWrite = append(toWrite, document.Issue{
				ID:        id,
				Repo:      repo,
				Number:    item.Number,
				Title:     item.Title,
				Body:      item.Body,
				State:     item.State,
				Labels:    labelNames(item.Labels),
				Comments:  item.Comments,
				CreatedAt: item.CreatedAt,
				UpdatedAt: item.UpdatedAt,
				URL:       item.HTMLURL,
			})
		}

		if len(toWrite) > 0 {
			if err := c.store.UpsertIssues(ctx, toWrite); err != nil {
				return fmt.Errorf("upsert issues: %w", err)
			}
			c.logger.Info("issues stored", "repo", repo, "page", page, "count", len(toWrite))
		}
	}
}
