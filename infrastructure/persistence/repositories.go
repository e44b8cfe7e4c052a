package persistence

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/reporag/reporag/domain/document"
)

// UpsertRepository writes the per-repo record keyed on the repo's
// full name.
func (s *Store) UpsertRepository(ctx context.Context, repo document.Repository) error {
	return s.upsertByID(ctx, document.CollectionRepositories, repo.ID, repo)
}

// Repositories lists every repository record.
func (s *Store) Repositories(ctx context.Context) ([]document.Repository, error) {
	cur, err := s.db.Collection(document.CollectionRepositories).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find repositories: %w", err)
	}
	var repos []document.Repository
	if err := cur.All(ctx, &repos); err != nil {
		return nil, fmt.Errorf("decode repositories: %w", err)
	}
	return repos, nil
}
