package persistence

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/reporag/reporag/domain/document"
)

// LatestCommitDate returns the newest stored commit date for a repo.
// The second return value is false when the repo has no commits yet.
func (s *Store) LatestCommitDate(ctx context.Context, repo string) (time.Time, bool, error) {
	var commit document.Commit
	err := s.db.Collection(document.CollectionCommits).FindOne(
		ctx,
		bson.M{"repo": repo},
		options.FindOne().SetSort(bson.D{{Key: "date", Value: -1}}),
	).Decode(&commit)
	if err == mongo.ErrNoDocuments {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("latest commit date for %s: %w", repo, err)
	}
	return commit.Date, true, nil
}

// CommitExists reports whether a commit SHA is already stored.
func (s *Store) CommitExists(ctx context.Context, sha string) (bool, error) {
	return s.existsByID(ctx, document.CollectionCommits, sha)
}

// ExistingCommitIDs returns the subset of shas already stored.
func (s *Store) ExistingCommitIDs(ctx context.Context, shas []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(shas))
	if len(shas) == 0 {
		return existing, nil
	}
	cur, err := s.db.Collection(document.CollectionCommits).Find(
		ctx,
		bson.M{"_id": bson.M{"$in": shas}},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return nil, fmt.Errorf("find commits by sha: %w", err)
	}
	var docs []struct {
		ID string `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode commit ids: %w", err)
	}
	for _, d := range docs {
		existing[d.ID] = true
	}
	return existing, nil
}

// InsertCommits upserts a batch of commits keyed on SHA.
func (s *Store) InsertCommits(ctx context.Context, commits []document.Commit) error {
	docs := make(map[string]document.Commit, len(commits))
	for _, c := range commits {
		docs[c.ID] = c
	}
	return bulkUpsert(ctx, s.db.Collection(document.CollectionCommits), docs)
}

// CommitsByRepo lists the stored commits of one repo.
func (s *Store) CommitsByRepo(ctx context.Context, repo string) ([]document.Commit, error) {
	cur, err := s.db.Collection(document.CollectionCommits).Find(ctx, bson.M{"repo": repo})
	if err != nil {
		return nil, fmt.Errorf("find commits for %s: %w", repo, err)
	}
	var commits []document.Commit
	if err := cur.All(ctx, &commits); err != nil {
		return nil, fmt.Errorf("decode commits: %w", err)
	}
	return commits, nil
}

// AllCommits streams every commit with the fields contributor
// aggregation needs.
func (s *Store) AllCommits(ctx context.Context) ([]document.Commit, error) {
	cur, err := s.db.Collection(document.CollectionCommits).Find(
		ctx,
		bson.D{},
		options.Find().SetProjection(bson.M{
			"_id":          1,
			"repo":         1,
			"author":       1,
			"author_email": 1,
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("find all commits: %w", err)
	}
	var commits []document.Commit
	if err := cur.All(ctx, &commits); err != nil {
		return nil, fmt.Errorf("decode commits: %w", err)
	}
	return commits, nil
}
