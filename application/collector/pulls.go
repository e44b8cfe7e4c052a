package collector

import (
	"context"
	"fmt"
	"strconv"

	"github.com/reporag/reporag/domain/document"
	"github.com/reporag/reporag/infrastructure/forge"
)

// FetchPullRequests pages through the repo's pull requests in all
// states. New PRs are inserted; existing ones are rewritten only when
// their updated_at changed. Non-empty bodies go to the blob store and
// only the URL is kept.
func (c *Collector) FetchPullRequests(ctx context.Context, repo string) error {
	for page := 1; ; page++ {
		data := c.forge.PullRequests(ctx, repo, page)
		if len(data) == 0 {
			return nil
		}

		var toWrite []document.PullRequest
		for _, item := range data {
			id := document.PullRequestID(repo, item.Number)
			existing, found, err := c.store.PullRequest(ctx, id)
			if err != nil {
				return fmt.Errorf("fetch pull requests: %w", err)
			}

			// Comments can change without touching the PR itself, so they
			// are always reconciled.
			if item.Comments > 0 {
				if err := c.fetchComments(ctx, document.CollectionPRComments, repo, item.Number,
					c.forge.PullRequestComments(ctx, repo, item.Number)); err != nil {
					return err
				}
			}

			if found && existing.UpdatedAt == item.UpdatedAt {
				continue
			}

			var bodyURL string
			if item.Body != "" {
				bodyURL, err = c.blobs.Save(repo, fmt.Sprintf("pr_%d", item.Number), "_body.txt", item.Body)
				if err != nil {
					return fmt.Errorf("store pr body: %w", err)
				}
			}

			commits, err := c.fetchPRCommits(ctx, repo, item.Number)
			if err != nil {
				return err
			}

			toWrite = append(toWrite, document.PullRequest{
				ID:        id,
				Repo:      repo,
				Number:    item.Number,
				Title:     item.Title,
				State:     item.State,
				CreatedAt: item.CreatedAt,
				UpdatedAt: item.UpdatedAt,
				MergedAt:  item.MergedAt,
				Author:    item.User.Login,
				Commits:   commits,
				BodyURL:   bodyURL,
				Labels:    labelNames(item.Labels),
				URL:       item.HTMLURL,
			})
		}

		if len(toWrite) > 0 {
			if err := c.store.UpsertPullRequests(ctx, toWrite); err != nil {
				return fmt.Errorf("upsert pull requests: %w", err)
			}
			c.logger.Info("pull requests stored", "repo", repo, "page", page, "count", len(toWrite))
		}
	}
}

// fetchPRCommits intersects the PR's reported commit SHAs with the
// commit collection. A SHA absent locally is treated as not on the
// default branch and excluded.
func (c *Collector) fetchPRCommits(ctx context.Context, repo string, number int) ([]string, error) {
	refs := c.forge.PullRequestCommits(ctx, repo, number)
	if len(refs) == 0 {
		return nil, nil
	}

	shas := make([]string, len(refs))
	for i, ref := range refs {
		shas[i] = ref.SHA
	}
	existing, err := c.store.ExistingCommitIDs(ctx, shas)
	if err != nil {
		return nil, fmt.Errorf("intersect pr commits: %w", err)
	}

	var valid []string
	for _, sha := range shas {
		if existing[sha] {
			valid = append(valid, sha)
		}
	}
	return valid, nil
}

// fetchComments upserts a parent's comments into the given comment
// collection. Stored comments are rewritten only when the body changed.
func (c *Collector) fetchComments(ctx context.Context, collection, repo string, parentNumber int, data []forge.CommentItem) error {
	if len(data) == 0 {
		return nil
	}

	var toWrite []document.Comment
	for _, item := range data {
		id := document.CommentID(repo, parentNumber, item.ID)
		existing, found, err := c.store.Comment(ctx, collection, id)
		if err != nil {
			return fmt.Errorf("fetch comments: %w", err)
		}
		if found && existing.Body == item.Body {
			continue
		}

		updatedAt := item.UpdatedAt
		if updatedAt == "" {
			updatedAt = item.CreatedAt
		}
		toWrite = append(toWrite, document.Comment{
			ID:        id,
			Repo:      repo,
			ParentID:  strconv.Itoa(parentNumber),
			Body:      item.Body,
			Author:    item.User.Login,
			CreatedAt: item.CreatedAt,
			UpdatedAt: updatedAt,
		})
	}

	if len(toWrite) > 0 {
		if err := c.store.UpsertComments(ctx, collection, toWrite); err != nil {
			return fmt.Errorf("upsert comments: %w", err)
		}
	}
	return nil
}

func labelNames(labels []forge.Label) []string {
	if len(labels) == 0 {
		return nil
	}
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
	}
	return names
}
