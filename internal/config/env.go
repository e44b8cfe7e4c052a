// Package config provides application configuration.
package config

import (
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration. Field names map
// directly to environment variables (no prefix).
type EnvConfig struct {
	// MongoURI is the document-store connection string.
	// Env: MONGO_URI (default: mongodb://localhost:27017)
	MongoURI string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`

	// DBName is the database name.
	// Env: DB_NAME (default: reporag)
	DBName string `envconfig:"DB_NAME" default:"reporag"`

	// LocalStoragePath is the blob-store root directory.
	// Env: LOCAL_STORAGE_PATH (default: local_storage)
	LocalStoragePath string `envconfig:"LOCAL_STORAGE_PATH" default:"local_storage"`

	// BaseURL is the URL prefix used to compose external_url values.
	// Env: BASE_URL
	// Default: http://localhost:{PORT}
	BaseURL string `envconfig:"BASE_URL"`

	// Port is the port for the static blob file server.
	// Env: PORT (default: 8000)
	Port int `envconfig:"PORT" default:"8000"`

	// GitHubToken is the bearer token for the forge client.
	// Env: GITHUB_TOKEN
	GitHubToken string `envconfig:"GITHUB_TOKEN"`

	// GitHubOrg is the default owner/organization for repository listing.
	// Env: GITHUB_ORG
	GitHubOrg string `envconfig:"GITHUB_ORG"`

	// GitHubRepos is a space-separated default repository list.
	// Env: GITHUB_REPOS
	GitHubRepos string `envconfig:"GITHUB_REPOS"`

	// EmbeddingModel is the identifier passed to the embedding backend.
	// Env: EMBEDDING_MODEL (default: text-embedding-3-small)
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`

	// ChatModel is the identifier passed to the generative backend.
	// Env: CHAT_MODEL (default: gpt-4)
	ChatModel string `envconfig:"CHAT_MODEL" default:"gpt-4"`

	// OpenAIAPIKey authenticates the embedding/LLM backends.
	// Env: OPENAI_API_KEY
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`

	// OpenAIBaseURL overrides the backend base URL (for compatible gateways).
	// Env: OPENAI_BASE_URL
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`

	// IndexRoot is the base directory for persisted vector indexes.
	// Env: INDEX_ROOT (default: local_storage/indexes)
	IndexRoot string `envconfig:"INDEX_ROOT" default:"local_storage/indexes"`

	// QueryLogPath is the JSONL file recording every RAG query.
	// Env: QUERY_LOG_PATH (default: experiments/rag_queries.jsonl)
	QueryLogPath string `envconfig:"QUERY_LOG_PATH" default:"experiments/rag_queries.jsonl"`

	// MaxContextTokens bounds the assembled RAG context.
	// Env: MAX_CONTEXT_TOKENS (default: 2000)
	MaxContextTokens int `envconfig:"MAX_CONTEXT_TOKENS" default:"2000"`

	// LogLevel is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
}

// LoadFromEnv loads configuration from environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// Repos returns the default repository list, split on whitespace.
func (e EnvConfig) Repos() []string {
	return strings.Fields(e.GitHubRepos)
}
