// Package provider implements the concrete model backends behind the
// domain capability contracts: OpenAI-compatible embeddings and chat,
// plus a local keyword extractor.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// summarizerInputLimit truncates summarization input so it cannot exceed
// the model's capacity.
const summarizerInputLimit = 2000

// errEmptyResponse indicates the API returned no choices or no embedding
// data behind a 200 status. Retryable, transient upstream load can
// produce partial responses.
var errEmptyResponse = errors.New("empty model response")

// OpenAIProvider implements chat, summarization, and embedding against
// an OpenAI-compatible API.
type OpenAIProvider struct {
	client         *openai.Client
	chatModel      string
	embeddingModel string
	maxRetries     int
	initialDelay   time.Duration
	backoffFactor  float64
}

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	InitialDelay   time.Duration
	BackoffFactor  float64
}

// NewOpenAIProvider creates a provider from configuration.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		config.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = "gpt-4"
	}
	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = "text-embedding-3-small"
	}
	maxRetries := cfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 5
	}
	initialDelay := cfg.InitialDelay
	if initialDelay == 0 {
		initialDelay = 2 * time.Second
	}
	backoffFactor := cfg.BackoffFactor
	if backoffFactor == 0 {
		backoffFactor = 2.0
	}

	return &OpenAIProvider{
		client:         openai.NewClientWithConfig(config),
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
		maxRetries:     maxRetries,
		initialDelay:   initialDelay,
		backoffFactor:  backoffFactor,
	}
}

// Encode embeds a single text.
func (p *OpenAIProvider) Encode(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(p.embeddingModel),
		Input: []string{text},
	}

	var resp openai.EmbeddingResponse
	err := p.withRetry(ctx, func() error {
		var err error
		resp, err = p.client.CreateEmbeddings(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Data) == 0 {
			return fmt.Errorf("%w: no embedding data", errEmptyResponse)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", err)
	}

	return resp.Data[0].Embedding, nil
}

// Chat answers the prompt, optionally grounded on extra context.
func (p *OpenAIProvider) Chat(ctx context.Context, prompt string, extra string) (string, error) {
	content := prompt
	if extra != "" {
		content = fmt.Sprintf("Context:\n%s\n\n%s", extra, prompt)
	}
	return p.complete(ctx, content)
}

// Summarize produces a short summary of the text, truncated to the
// model's input capacity first.
func (p *OpenAIProvider) Summarize(ctx context.Context, text string) (string, error) {
	return p.SummarizeBounded(ctx, text, 150, 50)
}

// SummarizeBounded summarizes with explicit length bounds in words.
func (p *OpenAIProvider) SummarizeBounded(ctx context.Context, text string, maxLength, minLength int) (string, error) {
	if len(text) > summarizerInputLimit {
		text = text[:summarizerInputLimit]
	}
	prompt := fmt.Sprintf(
		"Summarize the following text in between %d and %d words:\n\n%s",
		minLength, maxLength, text,
	)
	return p.complete(ctx, prompt)
}

// RunAgent executes free-form instructions.
func (p *OpenAIProvider) RunAgent(ctx context.Context, instructions string) (string, error) {
	return p.complete(ctx, instructions)
}

// AnalyzeLogs asks the model for insights on a batch of log lines.
func (p *OpenAIProvider) AnalyzeLogs(ctx context.Context, logs []string) (string, error) {
	prompt := "Analyze the following logs and propose improvements:\n\n" + strings.Join(logs, "\n")
	return p.complete(ctx, prompt)
}

func (p *OpenAIProvider) complete(ctx context.Context, content string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: p.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: content},
		},
	}

	var resp openai.ChatCompletionResponse
	err := p.withRetry(ctx, func() error {
		var err error
		resp, err = p.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("%w: no choices", errEmptyResponse)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) withRetry(ctx context.Context, fn func() error) error {
	delay := p.initialDelay
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if !isRetryable(lastErr) {
			return lastErr
		}

		if attempt < p.maxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * p.backoffFactor)
			}
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// isRetryable determines if an error should be retried.
func isRetryable(err error) bool {
	if errors.Is(err, errEmptyResponse) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests ||
			apiErr.HTTPStatusCode >= http.StatusInternalServerError
	}

	return false
}
