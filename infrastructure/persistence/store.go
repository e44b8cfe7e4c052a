// Package persistence provides typed access to the document store. The
// Store owns index bootstrapping and exposes per-collection operations
// built on idempotent upserts and bulk writes.
package persistence

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/reporag/reporag/domain/document"
)

// Store wraps a document database handle.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger *slog.Logger
}

// Connect opens a connection, pings the server, and bootstraps indexes.
func Connect(ctx context.Context, uri, dbName string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect document store: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping document store: %w", err)
	}

	s := &Store{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
	}

	if err := s.EnsureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	return s, nil
}

// Close disconnects from the document store.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}


// EnsureIndexes declares every collection index idempotently. Index
// creation is a no-op when the index already exists.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	type indexSpec struct {
		collection string
		keys       bson.D
		options    *options.IndexOptions
	}

	specs := []indexSpec{
		{collection: document.CollectionCommits, keys: bson.D{{Key: "repo", Value: 1}}},
		{collection: document.CollectionCommits, keys: bson.D{{Key: "date", Value: -1}}},
		{collection: document.CollectionContributors, keys: bson.D{{Key: "email", Value: 1}}, options: options.Index().SetUnique(true)},
		{collection: document.CollectionFiles, keys: bson.D{{Key: "commit_id", Value: 1}}},
		{collection: document.CollectionFiles, keys: bson.D{{Key: "repo", Value: 1}}},
		{collection: document.CollectionMetadata, keys: bson.D{{Key: "collection_src", Value: 1}}},
		{collection: document.CollectionMetadata, keys: bson.D{{Key: "repo", Value: 1}}},
		{collection: document.CollectionChunks, keys: bson.D{{Key: "metadata_id", Value: 1}}},
		{collection: document.CollectionChunks, keys: bson.D{{Key: "chunk_index", Value: 1}}},
		{collection: document.CollectionChunks, keys: bson.D{{Key: "embedding", Value: 1}}, options: options.Index().SetSparse(true)},
		{collection: document.CollectionLFSPointers, keys: bson.D{{Key: "file_id", Value: 1}}},
		{collection: document.CollectionIssues, keys: bson.D{{Key: "repo", Value: 1}}},
		{collection: document.CollectionIssues, keys: bson.D{{Key: "updated_at", Value: -1}}},
		{collection: document.CollectionIssues, keys: bson.D{{Key: "state", Value: 1}}},
		{collection: document.CollectionIssues, keys: bson.D{{Key: "labels", Value: 1}}},
		{collection: document.CollectionIssues, keys: bson.D{{Key: "repo", Value: 1}, {Key: "state", Value: 1}}},
		{collection: document.CollectionPullRequests, keys: bson.D{{Key: "repo", Value: 1}}},
		{collection: document.CollectionPullRequests, keys: bson.D{{Key: "updated_at", Value: -1}}},
		{collection: document.CollectionPullRequests, keys: bson.D{{Key: "state", Value: 1}}},
		{collection: document.CollectionPullRequests, keys: bson.D{{Key: "labels", Value: 1}}},
		{collection: document.CollectionPullRequests, keys: bson.D{{Key: "repo", Value: 1}, {Key: "state", Value: 1}}},
		{collection: document.CollectionMainFiles, keys: bson.D{{Key: "repo", Value: 1}}},
		{collection: document.CollectionMainFiles, keys: bson.D{{Key: "filename", Value: 1}}},
		{collection: document.CollectionMainFiles, keys: bson.D{{Key: "commit_id", Value: -1}}},
		{collection: document.CollectionMainFiles, keys: bson.D{{Key: "metadata_id", Value: 1}}},
		{collection: document.CollectionLastReleaseFiles, keys: bson.D{{Key: "repo", Value: 1}}},
		{collection: document.CollectionLastReleaseFiles, keys: bson.D{{Key: "filename", Value: 1}}},
		{collection: document.CollectionLastReleaseFiles, keys: bson.D{{Key: "commit_id", Value: -1}}},
		{collection: document.CollectionLastReleaseFiles, keys: bson.D{{Key: "metadata_id", Value: 1}}},
		{collection: document.CollectionIssueComments, keys: bson.D{{Key: "repo", Value: 1}}},
		{collection: document.CollectionIssueComments, keys: bson.D{{Key: "parent_id", Value: 1}}},
		{collection: document.CollectionPRComments, keys: bson.D{{Key: "repo", Value: 1}}},
		{collection: document.CollectionPRComments, keys: bson.D{{Key: "parent_id", Value: 1}}},
	}

	for _, spec := range specs {
		model := mongo.IndexModel{Keys: spec.keys, Options: spec.options}
		if _, err := s.db.Collection(spec.collection).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("create index on %s: %w", spec.collection, err)
		}
	}
	return nil
}

// upsertByID applies a {$set: doc} upsert keyed on _id.
func (s *Store) upsertByID(ctx context.Context, collection, id string, doc any) error {
	_, err := s.db.Collection(collection).UpdateOne(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": doc},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", collection, id, err)
	}
	return nil
}

// bulkUpsert applies a batch of {$set: doc} upserts keyed on _id.
func bulkUpsert[T any](ctx context.Context, coll *mongo.Collection, docs map[string]T) error {
	if len(docs) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(docs))
	for id, doc := range docs {
		models = append(models, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"_id": id}).
			SetUpdate(bson.M{"$set": doc}).
			SetUpsert(true))
	}
	if _, err := coll.BulkWrite(ctx, models); err != nil {
		return fmt.Errorf("bulk write %s: %w", coll.Name(), err)
	}
	return nil
}

// existsByID reports whether a document with the given _id exists.
func (s *Store) existsByID(ctx context.Context, collection, id string) (bool, error) {
	n, err := s.db.Collection(collection).CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count %s/%s: %w", collection, id, err)
	}
	return n > 0, nil
}
