package collector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/reporag/reporag/domain/document"
)

// lfsPointerPrefix is the fixed first line of a git-lfs pointer file.
const lfsPointerPrefix = "version https://git-lfs.github.com/spec/v1"

const commitDateLayout = "2006-01-02T15:04:05Z"

// FetchCommits pages through the repo's commits newest first, stopping
// at the first commit not newer than the latest one already stored.
// Commits touching no files are skipped entirely.
func (c *Collector) FetchCommits(ctx context.Context, repo string) error {
	lastDate, haveLast, err := c.store.LatestCommitDate(ctx, repo)
	if err != nil {
		return fmt.Errorf("fetch commits: %w", err)
	}

	for page := 1; ; page++ {
		data := c.forge.Commits(ctx, repo, page)
		if len(data) == 0 {
			return nil
		}

		var commits []document.Commit
		for _, item := range data {
			// Committer date, falling back to the author date when the
			// committer object is missing.
			dateStr := ""
			if item.Commit.Committer != nil {
				dateStr = item.Commit.Committer.Date
			} else if item.Commit.Author != nil {
				dateStr = item.Commit.Author.Date
			}
			date, err := time.Parse(commitDateLayout, dateStr)
			if err != nil {
				c.logger.Warn("unparseable commit date", "repo", repo, "sha", item.SHA, "date", dateStr)
				continue
			}

			if haveLast && !date.After(lastDate) {
				// Everything from here on is already stored.
				if err := c.flushCommits(ctx, repo, commits); err != nil {
					return err
				}
				return nil
			}

			exists, err := c.store.CommitExists(ctx, item.SHA)
			if err != nil {
				return fmt.Errorf("fetch commits: %w", err)
			}
			if exists {
				continue
			}

			filesChanged, err := c.fetchCommitFiles(ctx, repo, item.SHA)
			if err != nil {
				return err
			}
			if len(filesChanged) == 0 {
				continue
			}

			commit := document.Commit{
				ID:           item.SHA,
				Repo:         repo,
				Message:      item.Commit.Message,
				Date:         date,
				FilesChanged: filesChanged,
			}
			if item.Commit.Author != nil {
				commit.Author = &item.Commit.Author.Name
				commit.AuthorEmail = &item.Commit.Author.Email
			}
			if item.Commit.Committer != nil {
				commit.Committer = &item.Commit.Committer.Name
				commit.CommitterEmail = &item.Commit.Committer.Email
			}

			commits = append(commits, commit)
		}

		if err := c.flushCommits(ctx, repo, commits); err != nil {
			return err
		}
	}
}

func (c *Collector) flushCommits(ctx context.Context, repo string, commits []document.Commit) error {
	if len(commits) == 0 {
		return nil
	}
	if err := c.store.InsertCommits(ctx, commits); err != nil {
		return fmt.Errorf("insert commits: %w", err)
	}
	c.logger.Info("new commits stored", "repo", repo, "count", len(commits))
	return nil
}

// fetchCommitFiles stores the changed files of one commit and returns
// their ids. Added files get their content fetched: LFS pointers become
// pointer records, everything else lands in the blob store.
func (c *Collector) fetchCommitFiles(ctx context.Context, repo, sha string) ([]string, error) {
	detail, ok := c.forge.Commit(ctx, repo, sha)
	if !ok || len(detail.Files) == 0 {
		return nil, nil
	}

	var fileIDs []string
	var toInsert []document.ChangedFile

	for _, file := range detail.Files {
		fileID := document.FileID(sha, file.Filename)
		exists, err := c.store.FileExists(ctx, fileID)
		if err != nil {
			return nil, fmt.Errorf("fetch commit files: %w", err)
		}
		if exists {
			fileIDs = append(fileIDs, fileID)
			continue
		}

		record := document.ChangedFile{
			ID:       fileID,
			CommitID: sha,
			Repo:     repo,
			Filename: file.Filename,
			Status:   file.Status,
			Patch:    file.Patch,
		}

		if file.Status == "added" && file.RawURL != "" {
			if err := c.resolveAddedFile(ctx, repo, sha, file.Filename, file.RawURL, &record); err != nil {
				return nil, err
			}
		}

		fileIDs = append(fileIDs, fileID)
		toInsert = append(toInsert, record)
	}

	if len(toInsert) > 0 {
		if err := c.store.InsertFiles(ctx, toInsert); err != nil {
			return nil, fmt.Errorf("insert files: %w", err)
		}
	}
	return fileIDs, nil
}

// resolveAddedFile fetches an added file's content and fills either the
// LFS pointer link or the blob URL.
func (c *Collector) resolveAddedFile(ctx context.Context, repo, sha, filename, rawURL string, record *document.ChangedFile) error {
	content, ok := c.forge.Raw(ctx, rawURL)
	if !ok || content == "" {
		return nil
	}

	if strings.HasPrefix(content, lfsPointerPrefix) {
		ptr := parseLFSPointer(content)
		ptr.ID = document.LFSPointerIDFor(sha, filename)
		ptr.FileID = record.ID
		ptr.ExternalURL = rawURL
		if err := c.store.UpsertLFSPointer(ctx, ptr); err != nil {
			return fmt.Errorf("store lfs pointer: %w", err)
		}
		record.LFSPointerID = ptr.ID
		return nil
	}

	url, err := c.blobs.Save(repo, sha, filename, content)
	if err != nil {
		return fmt.Errorf("store blob: %w", err)
	}
	record.ExternalURL = url
	return nil
}

// parseLFSPointer extracts the version, oid type, oid, and size from a
// pointer file body.
func parseLFSPointer(content string) document.LFSPointer {
	var ptr document.LFSPointer
	for _, line := range strings.Split(content, "\n") {
		switch {
		case strings.HasPrefix(line, "version "):
			ptr.Version = strings.TrimSpace(strings.TrimPrefix(line, "version "))
		case strings.HasPrefix(line, "oid "):
			value := strings.TrimSpace(strings.TrimPrefix(line, "oid "))
			if kind, oid, found := strings.Cut(value, ":"); found {
				ptr.OidType = kind
				ptr.Oid = oid
			}
		case strings.HasPrefix(line, "size "):
			ptr.Size = strings.TrimSpace(strings.TrimPrefix(line, "size "))
		}
	}
	return ptr
}
