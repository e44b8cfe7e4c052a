package persistence

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/reporag/reporag/domain/document"
)

// Issue fetches an issue by id. The second return value is false when no
// record exists.
func (s *Store) Issue(ctx context.Context, id string) (document.Issue, bool, error) {
	var issue document.Issue
	err := s.db.Collection(document.CollectionIssues).FindOne(ctx, bson.M{"_id": id}).Decode(&issue)
	if err == mongo.ErrNoDocuments {
		return document.Issue{}, false, nil
	}
	if err != nil {
		return document.Issue{}, false, fmt.Errorf("find issue %s: %w", id, err)
	}
	return issue, true, nil
}

// UpsertIssues writes a batch of issues keyed on "<repo>_<number>".
// Re-running over an unchanged listing leaves the set unchanged.
func (s *Store) UpsertIssues(ctx context.Context, issues []document.Issue) error {
	docs := make(map[string]document.Issue, len(issues))
	for _, i := range issues {
		docs[i.ID] = i
	}
	return bulkUpsert(ctx, s.db.Collection(document.CollectionIssues), docs)
}

// IssuesByRepo lists the stored issues of one repo.
func (s *Store) IssuesByRepo(ctx context.Context, repo string) ([]document.Issue, error) {
	cur, err := s.db.Collection(document.CollectionIssues).Find(ctx, bson.M{"repo": repo})
	if err != nil {
		return nil, fmt.Errorf("find issues for %s: %w", repo, err)
	}
	var issues []document.Issue
	if err := cur.All(ctx, &issues); err != nil {
		return nil, fmt.Errorf("decode issues: %w", err)
	}
	return issues, nil
}
