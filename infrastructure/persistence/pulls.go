package persistence

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/reporag/reporag/domain/document"
)

// PullRequest fetches a pull request by id. The second return value is
// false when no record exists.
func (s *Store) PullRequest(ctx context.Context, id string) (document.PullRequest, bool, error) {
	var pr document.PullRequest
	err := s.db.Collection(document.CollectionPullRequests).FindOne(ctx, bson.M{"_id": id}).Decode(&pr)
	if err == mongo.ErrNoDocuments {
		return document.PullRequest{}, false, nil
	}
	if err != nil {
		return document.PullRequest{}, false, fmt.Errorf("find pull request %s: %w", id, err)
	}
	return pr, true, nil
}

// UpsertPullRequests writes a batch of pull requests keyed on
// "<repo>_<number>".
func (s *Store) UpsertPullRequests(ctx context.Context, prs []document.PullRequest) error {
	docs := make(map[string]document.PullRequest, len(prs))
	for _, pr := range prs {
		docs[pr.ID] = pr
	}
	return bulkUpsert(ctx, s.db.Collection(document.CollectionPullRequests), docs)
}

// PullRequestsByRepo lists the stored pull requests of one repo.
func (s *Store) PullRequestsByRepo(ctx context.Context, repo string) ([]document.PullRequest, error) {
	cur, err := s.db.Collection(document.CollectionPullRequests).Find(ctx, bson.M{"repo": repo})
	if err != nil {
		return nil, fmt.Errorf("find pull requests for %s: %w", repo, err)
	}
	var prs []document.PullRequest
	if err := cur.All(ctx, &prs); err != nil {
		return nil, fmt.Errorf("decode pull requests: %w", err)
	}
	return prs, nil
}
