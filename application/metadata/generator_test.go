package metadata

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reporag/reporag/domain/document"
	"github.com/reporag/reporag/infrastructure/blobstore"
)

type fakeGenStore struct {
	changedFiles []document.ChangedFile
	treeFiles    map[string][]document.TreeFile
	commits      []document.Commit
	issues       []document.Issue
	pullRequests []document.PullRequest
	comments     map[string][]document.Comment

	metadata  map[string]document.Metadata
	chunks    map[string]document.Chunk
	backlinks map[string]string
	deletes   int
}

func newFakeGenStore() *fakeGenStore {
	return &fakeGenStore{
		treeFiles: make(map[string][]document.TreeFile),
		comments:  make(map[string][]document.Comment),
		metadata:  make(map[string]document.Metadata),
		chunks:    make(map[string]document.Chunk),
		backlinks: make(map[string]string),
	}
}

func (f *fakeGenStore) ChangedFilesByRepo(_ context.Context, _ string) ([]document.ChangedFile, error) {
	return f.changedFiles, nil
}

func (f *fakeGenStore) TreeFilesByRepo(_ context.Context, collection, _ string) ([]document.TreeFile, error) {
	return f.treeFiles[collection], nil
}

func (f *fakeGenStore) CommitsByRepo(_ context.Context, _ string) ([]document.Commit, error) {
	return f.commits, nil
}

func (f *fakeGenStore) IssuesByRepo(_ context.Context, _ string) ([]document.Issue, error) {
	return f.issues, nil
}

func (f *fakeGenStore) PullRequestsByRepo(_ context.Context, _ string) ([]document.PullRequest, error) {
	return f.pullRequests, nil
}

func (f *fakeGenStore) CommentsByParent(_ context.Context, collection, _, parentID string) ([]document.Comment, error) {
	var out []document.Comment
	for _, c := range f.comments[collection] {
		if c.ParentID == parentID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeGenStore) Metadata(_ context.Context, id string) (document.Metadata, bool, error) {
	meta, ok := f.metadata[id]
	return meta, ok, nil
}

func (f *fakeGenStore) UpsertMetadata(_ context.Context, meta document.Metadata) error {
	f.metadata[meta.ID] = meta
	return nil
}

func (f *fakeGenStore) SetMetadataID(_ context.Context, collection, docID, metadataID string) error {
	f.backlinks[collection+"/"+docID] = metadataID
	return nil
}

func (f *fakeGenStore) DeleteChunksByMetadataID(_ context.Context, metadataID string) error {
	f.deletes++
	for id, c := range f.chunks {
		if c.MetadataID == metadataID {
			delete(f.chunks, id)
		}
	}
	return nil
}

func (f *fakeGenStore) UpsertChunks(_ context.Context, chunks []document.Chunk) error {
	for _, c := range chunks {
		f.chunks[c.ID] = c
	}
	return nil
}

type stubEmbedder struct{ calls int }

func (s *stubEmbedder) Encode(_ context.Context, _ string) ([]float32, error) {
	s.calls++
	return []float32{1, 2, 3}, nil
}

type stubSummarizer struct{}

func (stubSummarizer) Summarize(_ context.Context, _ string, _, _ int) (string, error) {
	return "a summary", nil
}

type stubKeywords struct{}

func (stubKeywords) Extract(_ string, _ int) []string { return []string{"alpha", "beta"} }

func newTestGenerator(t *testing.T, store *fakeGenStore) (*Generator, *blobstore.Store, string, *stubEmbedder) {
	t.Helper()
	root := t.TempDir()
	blobs := blobstore.New(root, "http://localhost:8000")
	embedder := &stubEmbedder{}
	return New(store, blobs, embedder, stubSummarizer{}, stubKeywords{}, nil), blobs, root, embedder
}

func seedTreeFile(t *testing.T, store *fakeGenStore, blobs *blobstore.Store, root, content string) {
	t.Helper()
	_, err := blobs.Save("org/repo", "main", "guide.md", content)
	require.NoError(t, err)
	store.treeFiles[document.CollectionMainFiles] = []document.TreeFile{{
		ID:          "org/repo_main_guide.md",
		Repo:        "org/repo",
		Filename:    "guide.md",
		CommitID:    "sha1",
		ExternalURL: filepath.Join(root, "org_repo", "main", "guide.md"),
	}}
}

func TestGenerator_CreatesMetadataAndChunks(t *testing.T) {
	store := newFakeGenStore()
	gen, blobs, root, embedder := newTestGenerator(t, store)
	seedTreeFile(t, store, blobs, root, strings.Repeat("documentation text ", 40))

	require.NoError(t, gen.UpdateCollection(context.Background(), "org/repo", document.CollectionMainFiles))

	metaID := "meta_org/repo_main_files_org/repo_main_guide.md"
	meta, ok := store.metadata[metaID]
	require.True(t, ok)
	assert.Equal(t, document.CollectionMainFiles, meta.CollectionSrc)
	assert.Equal(t, document.CurrentMetadataVersion, meta.MetadataVersion)
	assert.Equal(t, []string{"alpha", "beta"}, meta.Tags)
	assert.NotEmpty(t, meta.FileHash)
	assert.Empty(t, meta.Description)
	require.NotEmpty(t, meta.ChunkIDs)

	// Chunk count matches stored chunks and every chunk is embedded.
	assert.Len(t, store.chunks, len(meta.ChunkIDs))
	for _, id := range meta.ChunkIDs {
		chunk := store.chunks[id]
		assert.Equal(t, metaID, chunk.MetadataID)
		assert.Equal(t, []float32{1, 2, 3}, chunk.Embedding)
	}
	assert.Positive(t, embedder.calls)

	// Backlink and canonical snapshot.
	assert.Equal(t, metaID, store.backlinks[document.CollectionMainFiles+"/org/repo_main_guide.md"])
	assert.Contains(t, meta.SourceURL, "org_repo/meta/")
}

func TestGenerator_SkipsUnchangedContent(t *testing.T) {
	store := newFakeGenStore()
	gen, blobs, root, embedder := newTestGenerator(t, store)
	seedTreeFile(t, store, blobs, root, "stable content")

	require.NoError(t, gen.UpdateCollection(context.Background(), "org/repo", document.CollectionMainFiles))
	callsAfterFirst := embedder.calls

	require.NoError(t, gen.UpdateCollection(context.Background(), "org/repo", document.CollectionMainFiles))
	assert.Equal(t, callsAfterFirst, embedder.calls)
	assert.Zero(t, store.deletes)
}

func TestGenerator_RegeneratesOnContentChange(t *testing.T) {
	store := newFakeGenStore()
	gen, blobs, root, embedder := newTestGenerator(t, store)
	seedTreeFile(t, store, blobs, root, "first version")

	require.NoError(t, gen.UpdateCollection(context.Background(), "org/repo", document.CollectionMainFiles))
	metaID := "meta_org/repo_main_files_org/repo_main_guide.md"
	firstHash := store.metadata[metaID].FileHash
	callsAfterFirst := embedder.calls

	_, err := blobs.Save("org/repo", "main", "guide.md", "second version, now different")
	require.NoError(t, err)

	require.NoError(t, gen.UpdateCollection(context.Background(), "org/repo", document.CollectionMainFiles))

	meta := store.metadata[metaID]
	assert.NotEqual(t, firstHash, meta.FileHash)
	assert.Equal(t, 1, store.deletes)
	assert.Greater(t, embedder.calls, callsAfterFirst)
	// Chunks were rebuilt, not accumulated.
	assert.Len(t, store.chunks, len(meta.ChunkIDs))
}

func TestGenerator_SkipsBinaryFiles(t *testing.T) {
	store := newFakeGenStore()
	gen, blobs, root, _ := newTestGenerator(t, store)
	_, err := blobs.Save("org/repo", "main", "logo.png", "\x89PNG...")
	require.NoError(t, err)
	store.treeFiles[document.CollectionMainFiles] = []document.TreeFile{{
		ID:          "org/repo_main_logo.png",
		Repo:        "org/repo",
		Filename:    "logo.png",
		ExternalURL: filepath.Join(root, "org_repo", "main", "logo.png"),
	}}

	require.NoError(t, gen.UpdateCollection(context.Background(), "org/repo", document.CollectionMainFiles))
	assert.Empty(t, store.metadata)
	assert.Empty(t, store.chunks)
}

func TestGenerator_CommitTextFormat(t *testing.T) {
	store := newFakeGenStore()
	gen, _, _, _ := newTestGenerator(t, store)
	store.commits = []document.Commit{{
		ID:           "sha1",
		Repo:         "org/repo",
		Message:      "fix the parser",
		FilesChanged: []string{"sha1_parser.go", "sha1_parser_test.go"},
	}}

	require.NoError(t, gen.UpdateCollection(context.Background(), "org/repo", document.CollectionCommits))

	metaID := "meta_org/repo_commits_sha1"
	meta, ok := store.metadata[metaID]
	require.True(t, ok)

	var text strings.Builder
	for _, id := range meta.ChunkIDs {
		text.WriteString(store.chunks[id].ChunkSrc)
	}
	assert.Contains(t, text.String(), "Commit Message:\nfix the parser")
	assert.Contains(t, text.String(), "Files Changed:\nsha1_parser.go\nsha1_parser_test.go")
}

func TestGenerator_IssueIncludesComments(t *testing.T) {
	store := newFakeGenStore()
	gen, _, _, _ := newTestGenerator(t, store)
	store.issues = []document.Issue{{
		ID: "org/repo_4", Repo: "org/repo", Number: 4,
		Title: "crash on start", Body: "stack trace attached",
	}}
	store.comments[document.CollectionIssueComments] = []document.Comment{
		{ID: "org/repo_4_1", Repo: "org/repo", ParentID: "4", Body: "same here"},
	}

	require.NoError(t, gen.UpdateCollection(context.Background(), "org/repo", document.CollectionIssues))

	meta := store.metadata["meta_org/repo_issues_org/repo_4"]
	require.NotEmpty(t, meta.ChunkIDs)
	first := store.chunks[meta.ChunkIDs[0]].ChunkSrc
	assert.Contains(t, first, "crash on start")
	assert.Contains(t, first, "Comments:\nsame here")
}

func TestFileCategoryAndLanguage(t *testing.T) {
	assert.Equal(t, CategoryCode, fileCategory("pkg/main.go"))
	assert.Equal(t, CategoryDoc, fileCategory("README.md"))
	assert.Equal(t, CategoryConfig, fileCategory("config.yaml"))
	assert.Equal(t, CategoryBinary, fileCategory("logo.png"))
	assert.Equal(t, CategoryUnknown, fileCategory("Makefile"))

	assert.Equal(t, "go", programmingLanguage("go"))
	assert.Equal(t, "javascript", programmingLanguage("ts"))
	assert.Equal(t, "unknown", programmingLanguage("zig"))
}

func TestHashTextIsStableMD5(t *testing.T) {
	assert.Equal(t, hashText("abc"), hashText("abc"))
	assert.Equal(t, "900150983cd24fb0d6963f7d28e17f72", hashText("abc"))
	assert.NotEqual(t, hashText("abc"), hashText("abd"))
}
