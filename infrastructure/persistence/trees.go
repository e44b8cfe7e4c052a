package persistence

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/reporag/reporag/domain/document"
)

// TreeFilesByRepo lists the stored snapshot entries of one repo from the
// given tree collection (main_files or last_release_files).
func (s *Store) TreeFilesByRepo(ctx context.Context, collection, repo string) ([]document.TreeFile, error) {
	cur, err := s.db.Collection(collection).Find(ctx, bson.M{"repo": repo})
	if err != nil {
		return nil, fmt.Errorf("find tree files %s/%s: %w", collection, repo, err)
	}
	var files []document.TreeFile
	if err := cur.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("decode tree files: %w", err)
	}
	return files, nil
}

// UpsertTreeFiles writes a batch of snapshot entries into the given tree
// collection.
func (s *Store) UpsertTreeFiles(ctx context.Context, collection string, files []document.TreeFile) error {
	docs := make(map[string]document.TreeFile, len(files))
	for _, f := range files {
		docs[f.ID] = f
	}
	return bulkUpsert(ctx, s.db.Collection(collection), docs)
}

// DeleteTreeFiles removes the repo's snapshot entries whose filenames are
// absent from the new listing.
func (s *Store) DeleteTreeFiles(ctx context.Context, collection, repo string, filenames []string) error {
	if len(filenames) == 0 {
		return nil
	}
	_, err := s.db.Collection(collection).DeleteMany(ctx, bson.M{
		"repo":     repo,
		"filename": bson.M{"$in": filenames},
	})
	if err != nil {
		return fmt.Errorf("delete tree files %s/%s: %w", collection, repo, err)
	}
	return nil
}
