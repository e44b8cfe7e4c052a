package collector

import (
	"context"
	"fmt"

	"github.com/reporag/reporag/domain/document"
)

// Tree snapshot scopes, also the id infix of their records.
const (
	scopeMain        = "main"
	scopeLastRelease = "last_release"
)

// FetchBranchFiles reconciles the default-branch snapshot with the
// repo's current recursive tree.
func (c *Collector) FetchBranchFiles(ctx context.Context, repo string) error {
	branch := c.defaultBranch(ctx, repo)
	return c.syncTree(ctx, document.CollectionMainFiles, scopeMain, repo, branch)
}

// FetchReleaseFiles reconciles the latest-release snapshot. Repos
// without a published release are skipped.
func (c *Collector) FetchReleaseFiles(ctx context.Context, repo string) error {
	release, ok := c.forge.LatestRelease(ctx, repo)
	if !ok || release.TagName == "" {
		c.logger.Info("no release found", "repo", repo)
		return nil
	}
	return c.syncTree(ctx, document.CollectionLastReleaseFiles, scopeLastRelease, repo, release.TagName)
}

func (c *Collector) defaultBranch(ctx context.Context, repo string) string {
	info, ok := c.forge.Repo(ctx, repo)
	if !ok || info.DefaultBranch == "" {
		c.logger.Warn("default branch unknown, assuming main", "repo", repo)
		return "main"
	}
	return info.DefaultBranch
}

// syncTree reconciles one snapshot collection against the recursive git
// tree at ref. Unchanged blob SHAs are kept, changed ones are refetched
// and updated, new paths are fetched and inserted, and paths absent from
// the listing are deleted.
func (c *Collector) syncTree(ctx context.Context, collection, scope, repo, ref string) error {
	tree, ok := c.forge.Tree(ctx, repo, ref)
	if !ok {
		c.logger.Warn("tree unavailable", "repo", repo, "ref", ref)
		return nil
	}

	stored, err := c.store.TreeFilesByRepo(ctx, collection, repo)
	if err != nil {
		return fmt.Errorf("sync tree: %w", err)
	}
	storedByPath := make(map[string]document.TreeFile, len(stored))
	toDelete := make(map[string]bool, len(stored))
	for _, f := range stored {
		storedByPath[f.Filename] = f
		toDelete[f.Filename] = true
	}

	var toWrite []document.TreeFile
	for _, entry := range tree.Entries {
		if entry.Type != "blob" {
			continue
		}
		delete(toDelete, entry.Path)

		record := document.TreeFile{
			ID:       document.TreeFileID(repo, scope, entry.Path),
			Repo:     repo,
			Filename: entry.Path,
			CommitID: entry.SHA,
		}

		if existing, found := storedByPath[entry.Path]; found && existing.CommitID == entry.SHA {
			continue
		}

		// New path or changed blob SHA: fetch the content at ref.
		content, ok := c.forge.Raw(ctx, c.forge.RawFileURL(repo, ref, entry.Path))
		if ok && content != "" {
			url, err := c.blobs.Save(repo, ref, entry.Path, content)
			if err != nil {
				return fmt.Errorf("store tree blob: %w", err)
			}
			record.ExternalURL = url
		}
		toWrite = append(toWrite, record)
	}

	if len(toWrite) > 0 {
		if err := c.store.UpsertTreeFiles(ctx, collection, toWrite); err != nil {
			return fmt.Errorf("sync tree: %w", err)
		}
		c.logger.Info("tree files stored", "repo", repo, "collection", collection, "count", len(toWrite))
	}

	if len(toDelete) > 0 {
		stale := make([]string, 0, len(toDelete))
		for path := range toDelete {
			stale = append(stale, path)
		}
		if err := c.store.DeleteTreeFiles(ctx, collection, repo, stale); err != nil {
			return fmt.Errorf("sync tree: %w", err)
		}
		c.logger.Info("stale tree files removed", "repo", repo, "collection", collection, "count", len(stale))
	}
	return nil
}
