package persistence

import (
	"context"

	"github.com/reporag/reporag/domain/document"
)

// UpsertContributors writes the aggregated contributor records keyed on
// email.
func (s *Store) UpsertContributors(ctx context.Context, contributors []document.Contributor) error {
	docs := make(map[string]document.Contributor, len(contributors))
	for _, c := range contributors {
		docs[c.ID] = c
	}
	return bulkUpsert(ctx, s.db.Collection(document.CollectionContributors), docs)
}
