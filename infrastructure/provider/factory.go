package provider

import (
	"context"
	"fmt"

	"github.com/reporag/reporag/domain/backend"
)

// Backend names accepted by the factory.
const (
	BackendOpenAI    = "openai"
	BackendFrequency = "frequency"
)

// OpenAISummarizer adapts the provider to the bounded summarizer
// contract.
type OpenAISummarizer struct {
	provider *OpenAIProvider
}

// Summarize summarizes with explicit length bounds.
func (s *OpenAISummarizer) Summarize(ctx context.Context, text string, maxLength, minLength int) (string, error) {
	return s.provider.SummarizeBounded(ctx, text, maxLength, minLength)
}

// NewEmbedder maps a backend name to an embedder.
func NewEmbedder(name string, cfg OpenAIConfig) (backend.Embedder, error) {
	switch name {
	case BackendOpenAI, "":
		return NewOpenAIProvider(cfg), nil
	}
	return nil, fmt.Errorf("embedder %q: %w", name, backend.ErrUnknownBackend)
}

// NewLLM maps a backend name to a generative model.
func NewLLM(name string, cfg OpenAIConfig) (backend.LLM, error) {
	switch name {
	case BackendOpenAI, "":
		return NewOpenAIProvider(cfg), nil
	}
	return nil, fmt.Errorf("llm %q: %w", name, backend.ErrUnknownBackend)
}

// NewSummarizer maps a backend name to a summarizer.
func NewSummarizer(name string, cfg OpenAIConfig) (backend.Summarizer, error) {
	switch name {
	case BackendOpenAI, "":
		return &OpenAISummarizer{provider: NewOpenAIProvider(cfg)}, nil
	}
	return nil, fmt.Errorf("summarizer %q: %w", name, backend.ErrUnknownBackend)
}

// NewKeywordExtractor maps a backend name to a keyword extractor.
func NewKeywordExtractor(name string) (backend.KeywordExtractor, error) {
	switch name {
	case BackendFrequency, "":
		return NewFrequencyKeywordExtractor(), nil
	}
	return nil, fmt.Errorf("keyword extractor %q: %w", name, backend.ErrUnknownBackend)
}
