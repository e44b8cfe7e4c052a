package persistence

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/reporag/reporag/domain/document"
)

// FileExists reports whether a changed-file record is already stored.
func (s *Store) FileExists(ctx context.Context, id string) (bool, error) {
	return s.existsByID(ctx, document.CollectionFiles, id)
}

// InsertFiles upserts a batch of changed files keyed on
// "<commit-sha>_<path>".
func (s *Store) InsertFiles(ctx context.Context, files []document.ChangedFile) error {
	docs := make(map[string]document.ChangedFile, len(files))
	for _, f := range files {
		docs[f.ID] = f
	}
	return bulkUpsert(ctx, s.db.Collection(document.CollectionFiles), docs)
}

// ChangedFilesByRepo lists the stored changed files of one repo.
func (s *Store) ChangedFilesByRepo(ctx context.Context, repo string) ([]document.ChangedFile, error) {
	cur, err := s.db.Collection(document.CollectionFiles).Find(ctx, bson.M{"repo": repo})
	if err != nil {
		return nil, fmt.Errorf("find files for %s: %w", repo, err)
	}
	var files []document.ChangedFile
	if err := cur.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("decode files: %w", err)
	}
	return files, nil
}

// UpsertLFSPointer writes a parsed LFS pointer record.
func (s *Store) UpsertLFSPointer(ctx context.Context, ptr document.LFSPointer) error {
	return s.upsertByID(ctx, document.CollectionLFSPointers, ptr.ID, ptr)
}
