// Package backend defines the capability contracts the pipeline requires
// from its model backends. Concrete implementations live in
// infrastructure/provider; each contract is deliberately narrow.
package backend

import (
	"context"
	"errors"
)

// ErrUnknownBackend indicates a backend name with no registered constructor.
var ErrUnknownBackend = errors.New("unknown backend")

// Embedder encodes text into a dense vector of stable dimension.
type Embedder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
}

// Summarizer produces a short summary of the given text. Implementations
// may truncate their input.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error)
}

// KeywordExtractor returns the top-n keywords by descending relevance.
type KeywordExtractor interface {
	Extract(text string, n int) []string
}

// LLM is the generative backend used by the RAG engine.
type LLM interface {
	Chat(ctx context.Context, prompt string, extra string) (string, error)
	Summarize(ctx context.Context, text string) (string, error)
	RunAgent(ctx context.Context, instructions string) (string, error)
	AnalyzeLogs(ctx context.Context, logs []string) (string, error)
}
