// Package metadata turns stored source documents into retrieval-ready
// metadata: canonical text, chunks, embeddings, tags, and a content
// hash for change detection.
package metadata

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/reporag/reporag/domain/backend"
	"github.com/reporag/reporag/domain/document"
	"github.com/reporag/reporag/infrastructure/blobstore"
	"github.com/reporag/reporag/infrastructure/chunking"
)

// AllCollections is every source collection the generator covers.
var AllCollections = []string{
	document.CollectionFiles,
	document.CollectionMainFiles,
	document.CollectionLastReleaseFiles,
	document.CollectionCommits,
	document.CollectionPullRequests,
	document.CollectionIssues,
}

// Store is the slice of the document store the generator uses.
type Store interface {
	ChangedFilesByRepo(ctx context.Context, repo string) ([]document.ChangedFile, error)
	TreeFilesByRepo(ctx context.Context, collection, repo string) ([]document.TreeFile, error)
	CommitsByRepo(ctx context.Context, repo string) ([]document.Commit, error)
	IssuesByRepo(ctx context.Context, repo string) ([]document.Issue, error)
	PullRequestsByRepo(ctx context.Context, repo string) ([]document.PullRequest, error)
	CommentsByParent(ctx context.Context, collection, repo, parentID string) ([]document.Comment, error)

	Metadata(ctx context.Context, id string) (document.Metadata, bool, error)
	UpsertMetadata(ctx context.Context, meta document.Metadata) error
	SetMetadataID(ctx context.Context, collection, docID, metadataID string) error
	DeleteChunksByMetadataID(ctx context.Context, metadataID string) error
	UpsertChunks(ctx context.Context, chunks []document.Chunk) error
}

// Generator materializes metadata and chunks for source documents.
type Generator struct {
	store      Store
	blobs      *blobstore.Store
	embedder   backend.Embedder
	summarizer backend.Summarizer
	keywords   backend.KeywordExtractor
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a generator.
func New(store Store, blobs *blobstore.Store, embedder backend.Embedder, summarizer backend.Summarizer, keywords backend.KeywordExtractor, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		store:      store,
		blobs:      blobs,
		embedder:   embedder,
		summarizer: summarizer,
		keywords:   keywords,
		logger:     logger,
		now:        time.Now,
	}
}

// UpdateRepos regenerates metadata for the given collections of each
// repo.
func (g *Generator) UpdateRepos(ctx context.Context, repos []string, collections []string) error {
	if len(collections) == 0 {
		collections = AllCollections
	}
	for _, repo := range repos {
		for _, collection := range collections {
			if err := g.UpdateCollection(ctx, repo, collection); err != nil {
				return err
			}
		}
	}
	return nil
}

// UpdateCollection regenerates metadata for one repo and source
// collection.
func (g *Generator) UpdateCollection(ctx context.Context, repo, collection string) error {
	g.logger.Info("updating metadata", "repo", repo, "collection", collection)

	sources, err := g.extractCollection(ctx, repo, collection)
	if err != nil {
		return fmt.Errorf("update metadata %s/%s: %w", repo, collection, err)
	}

	for _, src := range sources {
		if src.text == "" {
			continue
		}
		if err := g.generate(ctx, src); err != nil {
			return fmt.Errorf("update metadata %s/%s: %w", repo, collection, err)
		}
	}
	return nil
}

// sourceDoc is one source document with its extracted canonical text.
type sourceDoc struct {
	collection  string
	id          string
	repo        string
	filename    string
	hasFilename bool
	text        string
}

// generate creates or refreshes the metadata for one source document.
// An unchanged hash at the current generator version is a no-op.
func (g *Generator) generate(ctx context.Context, src sourceDoc) error {
	metadataID := document.MetadataID(src.repo, src.collection, src.id)
	hash := hashText(src.text)

	existing, found, err := g.store.Metadata(ctx, metadataID)
	if err != nil {
		return err
	}
	if found {
		if existing.FileHash == hash && existing.MetadataVersion == document.CurrentMetadataVersion {
			return nil
		}
		if err := g.store.DeleteChunksByMetadataID(ctx, metadataID); err != nil {
			return err
		}
	}

	category := CategoryDoc
	extension := "txt"
	if src.hasFilename {
		category = fileCategory(src.filename)
		extension = fileExtension(src.filename)
	}
	if category == CategoryBinary {
		return nil
	}

	language := g.detectLanguage(src, category)
	settings := chunking.Settings{Extension: extension, Language: language}
	if category == CategoryCode {
		settings.MinChunkSize = chunking.DefaultCodeMinChunkSize
		settings.ChunkSize = chunking.DefaultCodeChunkSize
		settings.Overlap = chunking.DefaultCodeOverlap
	}
	strategy := chunking.NewStrategy(category, settings)

	chunkIDs, err := g.materializeChunks(ctx, metadataID, strategy, src.text)
	if err != nil {
		return err
	}

	description := ""
	if document.CurrentMetadataVersion != 0 {
		// Summaries are deferred until the schema carries them; keeping
		// the gate on the version avoids a model call per document.
		description, err = g.summarizer.Summarize(ctx, src.text, 150, 50)
		if err != nil {
			return err
		}
	}

	sourceURL, err := g.blobs.Save(src.repo, "meta", metadataID, src.text)
	if err != nil {
		return err
	}

	now := g.now().UTC()
	createdAt := now
	if found {
		createdAt = existing.CreatedAt
	}
	meta := document.Metadata{
		ID:              metadataID,
		Repo:            src.repo,
		CollectionSrc:   src.collection,
		CollectionID:    src.id,
		Language:        language,
		Description:     description,
		Tags:            g.keywords.Extract(src.text, 10),
		ChunkIDs:        chunkIDs,
		CreatedAt:       createdAt,
		UpdatedAt:       now,
		SourceURL:       sourceURL,
		MetadataVersion: document.CurrentMetadataVersion,
		FileHash:        hash,
	}
	if err := g.store.UpsertMetadata(ctx, meta); err != nil {
		return err
	}
	if err := g.store.SetMetadataID(ctx, src.collection, src.id, metadataID); err != nil {
		return err
	}

	g.logger.Info("metadata updated",
		"metadata_id", metadataID,
		"chunks", len(chunkIDs),
		"content_length", len(src.text),
	)
	return nil
}

// detectLanguage picks a programming language by extension for code and
// a detected natural language otherwise. Documents without filenames
// (commits, issues, pull requests) are treated as prose.
func (g *Generator) detectLanguage(src sourceDoc, category string) string {
	switch category {
	case CategoryCode:
		return programmingLanguage(fileExtension(src.filename))
	case CategoryBinary:
		return "binary"
	default:
		return naturalLanguage(src.text)
	}
}

// materializeChunks chunks the text, embeds each chunk, and stores the
// chunk documents. Returns the ordered chunk ids.
func (g *Generator) materializeChunks(ctx context.Context, metadataID string, strategy chunking.Strategy, text string) ([]string, error) {
	pieces := strategy.Chunk(text)
	chunks := make([]document.Chunk, 0, len(pieces))
	chunkIDs := make([]string, 0, len(pieces))

	for i, piece := range pieces {
		vector, err := g.embedder.Encode(ctx, piece)
		if err != nil {
			return nil, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		id := document.ChunkID(metadataID, i)
		chunks = append(chunks, document.Chunk{
			ID:         id,
			MetadataID: metadataID,
			ChunkIndex: i,
			ChunkSrc:   piece,
			Embedding:  vector,
		})
		chunkIDs = append(chunkIDs, id)
	}

	if len(chunks) > 0 {
		if err := g.store.UpsertChunks(ctx, chunks); err != nil {
			return nil, err
		}
	}
	return chunkIDs, nil
}
