// Package index builds, persists, and queries the per-repo vector
// indexes used for retrieval. An index is a flat exact-search structure
// over chunk embeddings plus a JSON sidecar mapping positions back to
// chunk ids.
package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/reporag/reporag/domain/backend"
	"github.com/reporag/reporag/domain/document"
	"github.com/reporag/reporag/infrastructure/blobstore"
)

// GlobalIndexName is the index name used when indexing across all
// source collections at once.
const GlobalIndexName = "global"

var (
	// ErrNotLoaded indicates a query before any successful build or load.
	ErrNotLoaded = errors.New("index not loaded")
	// ErrIndexNotFound indicates missing index artifacts on disk.
	ErrIndexNotFound = errors.New("index not found")
)

// MetaInfo is the per-position sidecar record.
type MetaInfo struct {
	CollectionSrc   string `json:"collection_src"`
	MetadataVersion int    `json:"metadata_version"`
}

// sidecar is the JSON artifact written next to the index file. Keys are
// positional indices rendered as strings.
type sidecar struct {
	IDMap   map[string]string   `json:"id_map"`
	MetaMap map[string]MetaInfo `json:"meta_map"`
}

// ChunkSource is the slice of the document store the manager reads.
type ChunkSource interface {
	MetadataByRepo(ctx context.Context, repo string, collections []string) ([]document.Metadata, error)
	ChunksWithEmbeddings(ctx context.Context, metadataIDs []string) ([]document.Chunk, error)
	ChunksByIDs(ctx context.Context, ids []string) ([]document.Chunk, error)
}

// Result is one retrieval response: parallel slices ordered by ascending
// distance.
type Result struct {
	Distances []float32
	Positions []int
	Chunks    []document.Chunk
	Metas     []MetaInfo
}

// Manager owns one loaded index at a time.
type Manager struct {
	root     string
	store    ChunkSource
	embedder backend.Embedder
	logger   *slog.Logger

	dim     int
	vectors [][]float32
	idMap   map[int]string
	metaMap map[int]MetaInfo
}

// NewManager creates an index manager rooted at root.
func NewManager(root string, store ChunkSource, embedder backend.Embedder, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		root:     root,
		store:    store,
		embedder: embedder,
		logger:   logger,
	}
}

// Loaded reports whether an index is in memory.
func (m *Manager) Loaded() bool { return m.vectors != nil }

// IndexPath returns the index artifact path for a repo and index name.
func (m *Manager) IndexPath(repo, indexName string) string {
	safe := blobstore.SanitizeRepo(repo)
	return filepath.Join(m.root, safe, safe, indexName+".faiss")
}

// SidecarPath returns the sidecar artifact path.
func (m *Manager) SidecarPath(repo, indexName string) string {
	safe := blobstore.SanitizeRepo(repo)
	return filepath.Join(m.root, safe, safe, indexName+"_mapping.json")
}

// Build materializes the index for a repo over the given source
// collections and persists both artifacts atomically. The global index
// spans one or more collections; a named index covers exactly one. When
// the artifacts already exist and force is false, the existing index is
// loaded instead. Building with no embedded chunks writes nothing.
func (m *Manager) Build(ctx context.Context, repo string, collections []string, indexName string, force bool) error {
	if len(collections) == 0 {
		return fmt.Errorf("build index %q: at least one source collection required", indexName)
	}
	if indexName != GlobalIndexName && len(collections) != 1 {
		return fmt.Errorf("build index %q: exactly one source collection required, got %d", indexName, len(collections))
	}
	if !force {
		if _, err := os.Stat(m.IndexPath(repo, indexName)); err == nil {
			return m.Load(repo, indexName)
		}
	}

	metas, err := m.store.MetadataByRepo(ctx, repo, collections)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	metaByID := make(map[string]MetaInfo, len(metas))
	metadataIDs := make([]string, 0, len(metas))
	for _, meta := range metas {
		metadataIDs = append(metadataIDs, meta.ID)
		metaByID[meta.ID] = MetaInfo{
			CollectionSrc:   meta.CollectionSrc,
			MetadataVersion: meta.MetadataVersion,
		}
	}

	chunks, err := m.store.ChunksWithEmbeddings(ctx, metadataIDs)
	if err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	if len(chunks) == 0 {
		m.logger.Warn("no embedded chunks to index", "repo", repo, "index", indexName)
		return nil
	}

	dim := len(chunks[0].Embedding)
	vectors := make([][]float32, 0, len(chunks))
	side := sidecar{
		IDMap:   make(map[string]string, len(chunks)),
		MetaMap: make(map[string]MetaInfo, len(chunks)),
	}
	idMap := make(map[int]string, len(chunks))
	metaMap := make(map[int]MetaInfo, len(chunks))

	for pos, chunk := range chunks {
		if len(chunk.Embedding) != dim {
			return fmt.Errorf("build index: chunk %s has dimension %d, want %d", chunk.ID, len(chunk.Embedding), dim)
		}
		vectors = append(vectors, chunk.Embedding)
		key := strconv.Itoa(pos)
		side.IDMap[key] = chunk.ID
		side.MetaMap[key] = metaByID[chunk.MetadataID]
		idMap[pos] = chunk.ID
		metaMap[pos] = metaByID[chunk.MetadataID]
	}

	if err := writeVectors(m.IndexPath(repo, indexName), dim, vectors); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	sideJSON, err := json.Marshal(side)
	if err != nil {
		return fmt.Errorf("marshal sidecar: %w", err)
	}
	if err := atomicWrite(m.SidecarPath(repo, indexName), sideJSON); err != nil {
		return fmt.Errorf("write sidecar: %w", err)
	}

	m.dim = dim
	m.vectors = vectors
	m.idMap = idMap
	m.metaMap = metaMap

	m.logger.Info("index built", "repo", repo, "index", indexName, "vectors", len(vectors), "dim", dim)
	return nil
}

// Load restores a persisted index and sidecar into memory.
func (m *Manager) Load(repo, indexName string) error {
	indexPath := m.IndexPath(repo, indexName)
	dim, vectors, err := readVectors(indexPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", indexPath, ErrIndexNotFound)
	}
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}

	sidePath := m.SidecarPath(repo, indexName)
	sideJSON, err := os.ReadFile(sidePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s: %w", sidePath, ErrIndexNotFound)
	}
	if err != nil {
		return fmt.Errorf("load sidecar: %w", err)
	}
	var side sidecar
	if err := json.Unmarshal(sideJSON, &side); err != nil {
		return fmt.Errorf("decode sidecar: %w", err)
	}

	idMap := make(map[int]string, len(side.IDMap))
	for key, id := range side.IDMap {
		pos, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("decode sidecar: bad position %q", key)
		}
		idMap[pos] = id
	}
	metaMap := make(map[int]MetaInfo, len(side.MetaMap))
	for key, info := range side.MetaMap {
		pos, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("decode sidecar: bad position %q", key)
		}
		metaMap[pos] = info
	}

	m.dim = dim
	m.vectors = vectors
	m.idMap = idMap
	m.metaMap = metaMap
	return nil
}

// Query embeds the text and returns the topK nearest chunks by L2
// distance, nearest first.
func (m *Manager) Query(ctx context.Context, text string, topK int) (Result, error) {
	if !m.Loaded() {
		return Result{}, ErrNotLoaded
	}

	query, err := m.embedder.Encode(ctx, text)
	if err != nil {
		return Result{}, fmt.Errorf("encode query: %w", err)
	}
	if len(query) != m.dim {
		return Result{}, fmt.Errorf("query dimension %d, index dimension %d", len(query), m.dim)
	}

	type scored struct {
		pos  int
		dist float32
	}
	scores := make([]scored, len(m.vectors))
	for i, vec := range m.vectors {
		scores[i] = scored{pos: i, dist: l2Squared(query, vec)}
	}
	sort.Slice(scores, func(i, j int) bool {
		if scores[i].dist != scores[j].dist {
			return scores[i].dist < scores[j].dist
		}
		return scores[i].pos < scores[j].pos
	})
	if topK > len(scores) {
		topK = len(scores)
	}
	scores = scores[:topK]

	ids := make([]string, len(scores))
	for i, s := range scores {
		ids[i] = m.idMap[s.pos]
	}
	chunks, err := m.store.ChunksByIDs(ctx, ids)
	if err != nil {
		return Result{}, fmt.Errorf("fetch chunks: %w", err)
	}

	result := Result{
		Distances: make([]float32, len(scores)),
		Positions: make([]int, len(scores)),
		Metas:     make([]MetaInfo, len(scores)),
		Chunks:    chunks,
	}
	for i, s := range scores {
		result.Distances[i] = s.dist
		result.Positions[i] = s.pos
		result.Metas[i] = m.metaMap[s.pos]
	}
	return result, nil
}

func l2Squared(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
