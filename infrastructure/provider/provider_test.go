package provider

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reporag/reporag/domain/backend"
)

func testConfig(baseURL string) OpenAIConfig {
	return OpenAIConfig{
		APIKey:       "test-key",
		BaseURL:      baseURL,
		MaxRetries:   2,
		InitialDelay: time.Millisecond,
	}
}

func TestOpenAIProvider_Encode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3]}],"model":"text-embedding-3-small","usage":{"total_tokens":3}}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(testConfig(srv.URL))
	vec, err := p.Encode(context.Background(), "hello")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
}

func TestOpenAIProvider_ChatIncludesContext(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"answer"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(testConfig(srv.URL))
	out, err := p.Chat(context.Background(), "question?", "some context")

	require.NoError(t, err)
	assert.Equal(t, "answer", out)
	assert.Contains(t, gotBody, "some context")
	assert.Contains(t, gotBody, "question?")
}

func TestOpenAIProvider_RetriesOnServerError(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(testConfig(srv.URL))
	out, err := p.RunAgent(context.Background(), "do it")

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 2, calls)
}

func TestOpenAIProvider_SummarizeTruncatesInput(t *testing.T) {
	var gotLen int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLen = r.ContentLength
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"short"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(testConfig(srv.URL))
	long := make([]byte, 10000)
	for i := range long {
		long[i] = 'a'
	}

	_, err := p.Summarize(context.Background(), string(long))
	require.NoError(t, err)
	// Input is capped at 2000 characters plus the instruction wrapper.
	assert.Less(t, gotLen, int64(3000))
}

func TestFrequencyKeywordExtractor(t *testing.T) {
	e := NewFrequencyKeywordExtractor()
	text := "cache eviction cache miss cache hit eviction policy the a an"

	keywords := e.Extract(text, 2)
	assert.Equal(t, []string{"cache", "eviction"}, keywords)
}

func TestFrequencyKeywordExtractor_Deterministic(t *testing.T) {
	e := NewFrequencyKeywordExtractor()
	text := "alpha beta gamma alpha beta gamma delta"
	assert.Equal(t, e.Extract(text, 10), e.Extract(text, 10))
	assert.Equal(t, []string{"alpha", "beta", "gamma", "delta"}, e.Extract(text, 10))
}

func TestFactory_UnknownBackend(t *testing.T) {
	_, err := NewEmbedder("mystery", OpenAIConfig{})
	assert.ErrorIs(t, err, backend.ErrUnknownBackend)

	_, err = NewKeywordExtractor("mystery")
	assert.ErrorIs(t, err, backend.ErrUnknownBackend)
}
