// Package rag answers questions over the indexed chunks: retrieve the
// nearest chunks, assemble a bounded context, and generate an answer
// with the configured model backend.
package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/reporag/reporag/domain/backend"
	"github.com/reporag/reporag/infrastructure/index"
)

// Defaults for retrieval and context assembly.
const (
	DefaultTopK             = 5
	DefaultMaxContextTokens = 2000
)

// NoContextAnswer is returned when retrieval yields nothing usable.
const NoContextAnswer = "I could not find relevant context in the knowledge base."

const promptTemplate = `### System
You are an expert assistant answering questions about the %s codebase. Use the
provided context strictly; do not invent information outside of it.

### Context
%s

### Question
%s

### Answer (concise and precise)
`

// Engine runs the retrieve/assemble/generate loop against one repo and
// a set of source collections.
type Engine struct {
	index            *index.Manager
	llm              backend.LLM
	recorder         *QueryRecorder
	logger           *slog.Logger
	repo             string
	collections      []string
	indexName        string
	maxContextTokens int
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecorder attaches a query recorder.
func WithRecorder(recorder *QueryRecorder) Option {
	return func(e *Engine) { e.recorder = recorder }
}

// WithMaxContextTokens overrides the context budget.
func WithMaxContextTokens(tokens int) Option {
	return func(e *Engine) {
		if tokens > 0 {
			e.maxContextTokens = tokens
		}
	}
}

// WithIndexName selects a named index instead of the global one.
func WithIndexName(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.indexName = name
		}
	}
}

// NewEngine creates an engine for one repo and its source collections.
func NewEngine(manager *index.Manager, llm backend.LLM, repo string, collections []string, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		index:            manager,
		llm:              llm,
		logger:           logger,
		repo:             repo,
		collections:      collections,
		indexName:        index.GlobalIndexName,
		maxContextTokens: DefaultMaxContextTokens,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EnsureIndex loads the repo's index, building it first when the
// artifacts are missing.
func (e *Engine) EnsureIndex(ctx context.Context) error {
	err := e.index.Load(e.repo, e.indexName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, index.ErrIndexNotFound) {
		return fmt.Errorf("load index: %w", err)
	}
	e.logger.Info("no index found, building", "repo", e.repo, "index", e.indexName)
	if err := e.index.Build(ctx, e.repo, e.collections, e.indexName, false); err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	return nil
}

// Answer retrieves the topK nearest chunks and generates an answer.
func (e *Engine) Answer(ctx context.Context, question string, topK int) (string, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	start := time.Now()

	result, err := e.index.Query(ctx, question, topK)
	if err != nil {
		return "", fmt.Errorf("retrieve: %w", err)
	}
	if len(result.Chunks) == 0 {
		return NoContextAnswer, nil
	}

	contextText := e.buildContextText(result)
	prompt := fmt.Sprintf(promptTemplate, e.repo, contextText, question)
	answer, err := e.llm.Chat(ctx, prompt, "")
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}

	duration := time.Since(start).Seconds()
	e.logger.Info("query answered",
		"repo", e.repo,
		"chunks", len(result.Chunks),
		"duration_s", duration,
	)

	if e.recorder != nil {
		if err := e.recorder.Record(e.record(question, result, answer, topK, duration)); err != nil {
			e.logger.Warn("query record failed", "error", err)
		}
	}
	return answer, nil
}

// buildContextText joins chunk texts under the token budget, estimating
// one token per four characters. Chunks arrive nearest first; assembly
// stops at the first chunk that would overflow.
func (e *Engine) buildContextText(result index.Result) string {
	budget := e.maxContextTokens
	used := 0
	var parts []string
	for _, chunk := range result.Chunks {
		estimate := len(chunk.ChunkSrc)/4 + 1
		if used+estimate > budget {
			break
		}
		parts = append(parts, chunk.ChunkSrc)
		used += estimate
	}
	return strings.Join(parts, "\n---\n")
}

func (e *Engine) record(question string, result index.Result, answer string, topK int, duration float64) QueryRecord {
	used := make([]ChunkUse, len(result.Chunks))
	for i, chunk := range result.Chunks {
		use := ChunkUse{ChunkID: chunk.ID, Text: chunk.ChunkSrc}
		if i < len(result.Metas) {
			use.MetadataVersion = result.Metas[i].MetadataVersion
		}
		used[i] = use
	}
	return QueryRecord{
		Question:    question,
		Repo:        e.repo,
		Collections: e.collections,
		TopK:        topK,
		ChunksUsed:  used,
		Answer:      answer,
		DurationS:   duration,
	}
}
