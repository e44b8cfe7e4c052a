package persistence

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/reporag/reporag/domain/document"
)

// Metadata fetches a metadata document by id. The second return value is
// false when no record exists.
func (s *Store) Metadata(ctx context.Context, id string) (document.Metadata, bool, error) {
	var meta document.Metadata
	err := s.db.Collection(document.CollectionMetadata).FindOne(ctx, bson.M{"_id": id}).Decode(&meta)
	if err == mongo.ErrNoDocuments {
		return document.Metadata{}, false, nil
	}
	if err != nil {
		return document.Metadata{}, false, fmt.Errorf("find metadata %s: %w", id, err)
	}
	return meta, true, nil
}

// UpsertMetadata writes a metadata document.
func (s *Store) UpsertMetadata(ctx context.Context, meta document.Metadata) error {
	return s.upsertByID(ctx, document.CollectionMetadata, meta.ID, meta)
}

// MetadataByRepo lists the metadata documents of one repo, optionally
// restricted to the given source collections.
func (s *Store) MetadataByRepo(ctx context.Context, repo string, collections []string) ([]document.Metadata, error) {
	filter := bson.M{"repo": repo}
	if len(collections) > 0 {
		filter["collection_src"] = bson.M{"$in": collections}
	}
	cur, err := s.db.Collection(document.CollectionMetadata).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find metadata for %s: %w", repo, err)
	}
	var metas []document.Metadata
	if err := cur.All(ctx, &metas); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return metas, nil
}

// SetMetadataID writes the metadata backlink on a source document.
func (s *Store) SetMetadataID(ctx context.Context, collection, docID, metadataID string) error {
	_, err := s.db.Collection(collection).UpdateOne(
		ctx,
		bson.M{"_id": docID},
		bson.M{"$set": bson.M{"metadata_id": metadataID}},
	)
	if err != nil {
		return fmt.Errorf("set metadata_id on %s/%s: %w", collection, docID, err)
	}
	return nil
}

// UpsertChunks writes a batch of chunks.
func (s *Store) UpsertChunks(ctx context.Context, chunks []document.Chunk) error {
	docs := make(map[string]document.Chunk, len(chunks))
	for _, c := range chunks {
		docs[c.ID] = c
	}
	return bulkUpsert(ctx, s.db.Collection(document.CollectionChunks), docs)
}

// DeleteChunksByMetadataID removes every chunk of one metadata document.
// Called before regeneration so stale chunk indexes cannot survive.
func (s *Store) DeleteChunksByMetadataID(ctx context.Context, metadataID string) error {
	_, err := s.db.Collection(document.CollectionChunks).DeleteMany(ctx, bson.M{"metadata_id": metadataID})
	if err != nil {
		return fmt.Errorf("delete chunks for %s: %w", metadataID, err)
	}
	return nil
}

// ChunksWithEmbeddings lists the embedded chunks of the given metadata
// documents, ordered by metadata id then chunk index.
func (s *Store) ChunksWithEmbeddings(ctx context.Context, metadataIDs []string) ([]document.Chunk, error) {
	if len(metadataIDs) == 0 {
		return nil, nil
	}
	cur, err := s.db.Collection(document.CollectionChunks).Find(
		ctx,
		bson.M{
			"metadata_id": bson.M{"$in": metadataIDs},
			"embedding":   bson.M{"$exists": true, "$ne": nil},
		},
		options.Find().SetSort(bson.D{{Key: "metadata_id", Value: 1}, {Key: "chunk_index", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find embedded chunks: %w", err)
	}
	var chunks []document.Chunk
	if err := cur.All(ctx, &chunks); err != nil {
		return nil, fmt.Errorf("decode chunks: %w", err)
	}
	return chunks, nil
}

// ChunksByIDs fetches chunks by id, preserving the order of ids. Missing
// ids are skipped.
func (s *Store) ChunksByIDs(ctx context.Context, ids []string) ([]document.Chunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.db.Collection(document.CollectionChunks).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("find chunks by id: %w", err)
	}
	var found []document.Chunk
	if err := cur.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("decode chunks: %w", err)
	}
	byID := make(map[string]document.Chunk, len(found))
	for _, c := range found {
		byID[c.ID] = c
	}
	chunks := make([]document.Chunk, 0, len(ids))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			chunks = append(chunks, c)
		}
	}
	return chunks, nil
}
