package metadata

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/reporag/reporag/domain/document"
)

// extractCollection loads a repo's documents from one source collection
// and extracts the canonical text of each.
func (g *Generator) extractCollection(ctx context.Context, repo, collection string) ([]sourceDoc, error) {
	switch collection {
	case document.CollectionFiles:
		return g.extractChangedFiles(ctx, repo)
	case document.CollectionMainFiles, document.CollectionLastReleaseFiles:
		return g.extractTreeFiles(ctx, repo, collection)
	case document.CollectionCommits:
		return g.extractCommits(ctx, repo)
	case document.CollectionIssues:
		return g.extractIssues(ctx, repo)
	case document.CollectionPullRequests:
		return g.extractPullRequests(ctx, repo)
	}
	return nil, fmt.Errorf("unsupported source collection %q", collection)
}

// extractChangedFiles resolves content from the blob store, falling
// back to the inline patch.
func (g *Generator) extractChangedFiles(ctx context.Context, repo string) ([]sourceDoc, error) {
	files, err := g.store.ChangedFilesByRepo(ctx, repo)
	if err != nil {
		return nil, err
	}
	sources := make([]sourceDoc, 0, len(files))
	for _, file := range files {
		text := strings.TrimSpace(file.Patch)
		if file.ExternalURL != "" {
			if content, err := g.blobs.Fetch(ctx, file.ExternalURL); err == nil {
				text = content
			} else {
				g.logger.Warn("blob fetch failed, using patch", "url", file.ExternalURL, "error", err)
			}
		}
		sources = append(sources, sourceDoc{
			collection:  document.CollectionFiles,
			id:          file.ID,
			repo:        repo,
			filename:    file.Filename,
			hasFilename: true,
			text:        text,
		})
	}
	return sources, nil
}

func (g *Generator) extractTreeFiles(ctx context.Context, repo, collection string) ([]sourceDoc, error) {
	files, err := g.store.TreeFilesByRepo(ctx, collection, repo)
	if err != nil {
		return nil, err
	}
	sources := make([]sourceDoc, 0, len(files))
	for _, file := range files {
		var text string
		if file.ExternalURL != "" {
			text, err = g.blobs.Fetch(ctx, file.ExternalURL)
			if err != nil {
				g.logger.Warn("blob fetch failed", "url", file.ExternalURL, "error", err)
				text = ""
			}
		}
		sources = append(sources, sourceDoc{
			collection:  collection,
			id:          file.ID,
			repo:        repo,
			filename:    file.Filename,
			hasFilename: true,
			text:        text,
		})
	}
	return sources, nil
}

func (g *Generator) extractCommits(ctx context.Context, repo string) ([]sourceDoc, error) {
	commits, err := g.store.CommitsByRepo(ctx, repo)
	if err != nil {
		return nil, err
	}
	sources := make([]sourceDoc, 0, len(commits))
	for _, commit := range commits {
		text := fmt.Sprintf("Commit Message:\n%s\n\nFiles Changed:\n%s",
			strings.TrimSpace(commit.Message),
			strings.Join(commit.FilesChanged, "\n"),
		)
		sources = append(sources, sourceDoc{
			collection: document.CollectionCommits,
			id:         commit.ID,
			repo:       repo,
			text:       strings.TrimSpace(text),
		})
	}
	return sources, nil
}

func (g *Generator) extractIssues(ctx context.Context, repo string) ([]sourceDoc, error) {
	issues, err := g.store.IssuesByRepo(ctx, repo)
	if err != nil {
		return nil, err
	}
	sources := make([]sourceDoc, 0, len(issues))
	for _, issue := range issues {
		comments, err := g.joinComments(ctx, document.CollectionIssueComments, repo, issue.Number)
		if err != nil {
			return nil, err
		}
		text := fmt.Sprintf("%s\n\n%s\n\nComments:\n%s",
			strings.TrimSpace(issue.Title),
			strings.TrimSpace(issue.Body),
			comments,
		)
		sources = append(sources, sourceDoc{
			collection: document.CollectionIssues,
			id:         issue.ID,
			repo:       repo,
			text:       strings.TrimSpace(text),
		})
	}
	return sources, nil
}

// extractPullRequests resolves the body via the blob store when the
// collector moved it there.
func (g *Generator) extractPullRequests(ctx context.Context, repo string) ([]sourceDoc, error) {
	prs, err := g.store.PullRequestsByRepo(ctx, repo)
	if err != nil {
		return nil, err
	}
	sources := make([]sourceDoc, 0, len(prs))
	for _, pr := range prs {
		var body string
		if pr.BodyURL != "" {
			body, err = g.blobs.Fetch(ctx, pr.BodyURL)
			if err != nil {
				g.logger.Warn("pr body fetch failed", "url", pr.BodyURL, "error", err)
				body = ""
			}
		}
		comments, err := g.joinComments(ctx, document.CollectionPRComments, repo, pr.Number)
		if err != nil {
			return nil, err
		}
		text := fmt.Sprintf("%s\n\n%s\n\nComments:\n%s",
			strings.TrimSpace(pr.Title),
			strings.TrimSpace(body),
			comments,
		)
		sources = append(sources, sourceDoc{
			collection: document.CollectionPullRequests,
			id:         pr.ID,
			repo:       repo,
			text:       strings.TrimSpace(text),
		})
	}
	return sources, nil
}

func (g *Generator) joinComments(ctx context.Context, collection, repo string, parentNumber int) (string, error) {
	comments, err := g.store.CommentsByParent(ctx, collection, repo, strconv.Itoa(parentNumber))
	if err != nil {
		return "", err
	}
	bodies := make([]string, len(comments))
	for i, c := range comments {
		bodies[i] = c.Body
	}
	return strings.Join(bodies, "\n"), nil
}
