package index

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reporag/reporag/domain/document"
)

type fakeSource struct {
	metas  []document.Metadata
	chunks []document.Chunk
}

func (f *fakeSource) MetadataByRepo(_ context.Context, _ string, _ []string) ([]document.Metadata, error) {
	return f.metas, nil
}

func (f *fakeSource) ChunksWithEmbeddings(_ context.Context, _ []string) ([]document.Chunk, error) {
	return f.chunks, nil
}

func (f *fakeSource) ChunksByIDs(_ context.Context, ids []string) ([]document.Chunk, error) {
	byID := make(map[string]document.Chunk)
	for _, c := range f.chunks {
		byID[c.ID] = c
	}
	var out []document.Chunk
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeEmbedder struct {
	vectors map[string][]float32
}

func (f *fakeEmbedder) Encode(_ context.Context, text string) ([]float32, error) {
	return f.vectors[text], nil
}

func testSource() *fakeSource {
	meta := document.Metadata{
		ID:            "meta_org/repo_chunks_1",
		CollectionSrc: "main_files",
	}
	return &fakeSource{
		metas: []document.Metadata{meta},
		chunks: []document.Chunk{
			{ID: "c0", MetadataID: meta.ID, ChunkIndex: 0, ChunkSrc: "alpha", Embedding: []float32{1, 0, 0}},
			{ID: "c1", MetadataID: meta.ID, ChunkIndex: 1, ChunkSrc: "beta", Embedding: []float32{0, 1, 0}},
			{ID: "c2", MetadataID: meta.ID, ChunkIndex: 2, ChunkSrc: "gamma", Embedding: []float32{0, 0, 1}},
		},
	}
}

func TestManager_BuildLoadRoundTrip(t *testing.T) {
	src := testSource()
	m := NewManager(t.TempDir(), src, &fakeEmbedder{}, nil)

	require.NoError(t, m.Build(context.Background(), "org/repo", []string{"main_files"}, GlobalIndexName, false))

	// A fresh manager restores the same id set from disk.
	m2 := NewManager(m.root, src, &fakeEmbedder{}, nil)
	require.NoError(t, m2.Load("org/repo", GlobalIndexName))

	ids := make(map[string]bool)
	for _, id := range m2.idMap {
		ids[id] = true
	}
	assert.Equal(t, map[string]bool{"c0": true, "c1": true, "c2": true}, ids)
	assert.Equal(t, 3, m2.dim)
	assert.Equal(t, "main_files", m2.metaMap[0].CollectionSrc)
}

func TestManager_SidecarSchema(t *testing.T) {
	m := NewManager(t.TempDir(), testSource(), &fakeEmbedder{}, nil)
	require.NoError(t, m.Build(context.Background(), "org/repo", []string{"main_files"}, "chunks", false))

	raw, err := os.ReadFile(m.SidecarPath("org/repo", "chunks"))
	require.NoError(t, err)

	var side map[string]map[string]any
	require.NoError(t, json.Unmarshal(raw, &side))
	assert.Contains(t, side, "id_map")
	assert.Contains(t, side, "meta_map")
	assert.Equal(t, "c0", side["id_map"]["0"])
}

func TestManager_QueryReturnsNearestFirst(t *testing.T) {
	embedder := &fakeEmbedder{vectors: map[string][]float32{
		"alpha": {0.9, 0.1, 0},
	}}
	m := NewManager(t.TempDir(), testSource(), embedder, nil)
	require.NoError(t, m.Build(context.Background(), "org/repo", []string{"main_files"}, GlobalIndexName, false))

	res, err := m.Query(context.Background(), "alpha", 2)
	require.NoError(t, err)

	require.Len(t, res.Chunks, 2)
	assert.Equal(t, "alpha", res.Chunks[0].ChunkSrc)
	assert.Less(t, res.Distances[0], res.Distances[1])
	assert.Equal(t, "main_files", res.Metas[0].CollectionSrc)
}

func TestManager_QueryBeforeLoad(t *testing.T) {
	m := NewManager(t.TempDir(), testSource(), &fakeEmbedder{}, nil)
	_, err := m.Query(context.Background(), "q", 1)
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestManager_LoadMissingArtifacts(t *testing.T) {
	m := NewManager(t.TempDir(), testSource(), &fakeEmbedder{}, nil)
	assert.ErrorIs(t, m.Load("org/repo", GlobalIndexName), ErrIndexNotFound)
}

func TestManager_BuildWithNoVectorsWritesNothing(t *testing.T) {
	src := &fakeSource{}
	m := NewManager(t.TempDir(), src, &fakeEmbedder{}, nil)

	require.NoError(t, m.Build(context.Background(), "org/repo", []string{"main_files"}, GlobalIndexName, false))
	_, err := os.Stat(m.IndexPath("org/repo", GlobalIndexName))
	assert.True(t, os.IsNotExist(err))
}

func TestManager_BuildValidatesCollectionsPerMode(t *testing.T) {
	m := NewManager(t.TempDir(), testSource(), &fakeEmbedder{}, nil)

	// A named index covers exactly one collection.
	err := m.Build(context.Background(), "org/repo", []string{"commits", "issues"}, "commits", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one source collection")

	// No collections is invalid in either mode.
	require.Error(t, m.Build(context.Background(), "org/repo", nil, GlobalIndexName, false))
	require.Error(t, m.Build(context.Background(), "org/repo", nil, "commits", false))

	_, statErr := os.Stat(m.IndexPath("org/repo", "commits"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestManager_ExistingIndexIsReusedUnlessForced(t *testing.T) {
	src := testSource()
	m := NewManager(t.TempDir(), src, &fakeEmbedder{}, nil)
	require.NoError(t, m.Build(context.Background(), "org/repo", []string{"main_files"}, GlobalIndexName, false))

	// Grow the source; a non-forced build keeps the old artifact.
	src.chunks = append(src.chunks, document.Chunk{
		ID: "c3", MetadataID: src.metas[0].ID, ChunkIndex: 3, ChunkSrc: "delta", Embedding: []float32{1, 1, 1},
	})
	require.NoError(t, m.Build(context.Background(), "org/repo", []string{"main_files"}, GlobalIndexName, false))
	assert.Len(t, m.vectors, 3)

	require.NoError(t, m.Build(context.Background(), "org/repo", []string{"main_files"}, GlobalIndexName, true))
	assert.Len(t, m.vectors, 4)
}
