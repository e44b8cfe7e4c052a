package persistence

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/reporag/reporag/domain/document"
)

// Comment fetches a comment by id from the given comment collection.
// The second return value is false when no record exists.
func (s *Store) Comment(ctx context.Context, collection, id string) (document.Comment, bool, error) {
	var comment document.Comment
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err == mongo.ErrNoDocuments {
		return document.Comment{}, false, nil
	}
	if err != nil {
		return document.Comment{}, false, fmt.Errorf("find comment %s/%s: %w", collection, id, err)
	}
	return comment, true, nil
}

// UpsertComments writes a batch of comments into the given comment
// collection, keyed on "<repo>_<parent>_<comment-id>". Edited bodies
// overwrite the stored ones.
func (s *Store) UpsertComments(ctx context.Context, collection string, comments []document.Comment) error {
	docs := make(map[string]document.Comment, len(comments))
	for _, c := range comments {
		docs[c.ID] = c
	}
	return bulkUpsert(ctx, s.db.Collection(collection), docs)
}

// CommentsByParent lists the comments attached to one issue or pull
// request, identified by its number rendered as a string.
func (s *Store) CommentsByParent(ctx context.Context, collection, repo, parentID string) ([]document.Comment, error) {
	cur, err := s.db.Collection(collection).Find(ctx, bson.M{"repo": repo, "parent_id": parentID})
	if err != nil {
		return nil, fmt.Errorf("find comments %s/%s#%s: %w", collection, repo, parentID, err)
	}
	var comments []document.Comment
	if err := cur.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}
	return comments, nil
}
