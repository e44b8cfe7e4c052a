package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
)

// Default configuration values.
const (
	DefaultPort             = 8000
	DefaultLogLevel         = "INFO"
	DefaultMaxContextTokens = 2000
	DefaultEmbeddingModel   = "text-embedding-3-small"
	DefaultChatModel        = "gpt-4"
)

// LogFormat represents the log output format.
type LogFormat string

// LogFormat values.
const (
	LogFormatPretty LogFormat = "pretty"
	LogFormatJSON   LogFormat = "json"
)

// AppConfig holds the resolved application configuration.
type AppConfig struct {
	mongoURI         string
	dbName           string
	storagePath      string
	baseURL          string
	port             int
	githubToken      string
	githubOrg        string
	githubRepos      []string
	embeddingModel   string
	chatModel        string
	openAIAPIKey     string
	openAIBaseURL    string
	indexRoot        string
	queryLogPath     string
	maxContextTokens int
	logLevel         string
	logFormat        LogFormat
}

// ToAppConfig resolves an EnvConfig into an AppConfig, filling derived
// defaults (BASE_URL from PORT, absolute storage path).
func (e EnvConfig) ToAppConfig() AppConfig {
	baseURL := e.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%d", e.Port)
	}

	storagePath, err := filepath.Abs(e.LocalStoragePath)
	if err != nil {
		storagePath = e.LocalStoragePath
	}

	return AppConfig{
		mongoURI:         e.MongoURI,
		dbName:           e.DBName,
		storagePath:      storagePath,
		baseURL:          baseURL,
		port:             e.Port,
		githubToken:      e.GitHubToken,
		githubOrg:        e.GitHubOrg,
		githubRepos:      e.Repos(),
		embeddingModel:   e.EmbeddingModel,
		chatModel:        e.ChatModel,
		openAIAPIKey:     e.OpenAIAPIKey,
		openAIBaseURL:    e.OpenAIBaseURL,
		indexRoot:        e.IndexRoot,
		queryLogPath:     e.QueryLogPath,
		maxContextTokens: e.MaxContextTokens,
		logLevel:         e.LogLevel,
		logFormat:        parseLogFormat(e.LogFormat),
	}
}

// MongoURI returns the document-store connection string.
func (c AppConfig) MongoURI() string { return c.mongoURI }

// DBName returns the database name.
func (c AppConfig) DBName() string { return c.dbName }

// StoragePath returns the absolute blob-store root directory.
func (c AppConfig) StoragePath() string { return c.storagePath }

// BaseURL returns the URL prefix for external_url values.
func (c AppConfig) BaseURL() string { return c.baseURL }

// Port returns the static file server port.
func (c AppConfig) Port() int { return c.port }

// Addr returns the listen address for the static file server.
func (c AppConfig) Addr() string { return fmt.Sprintf(":%d", c.port) }

// GitHubToken returns the forge API token.
func (c AppConfig) GitHubToken() string { return c.githubToken }

// GitHubOrg returns the default owner/organization.
func (c AppConfig) GitHubOrg() string { return c.githubOrg }

// GitHubRepos returns the default repository list.
func (c AppConfig) GitHubRepos() []string {
	repos := make([]string, len(c.githubRepos))
	copy(repos, c.githubRepos)
	return repos
}

// EmbeddingModel returns the embedding backend model identifier.
func (c AppConfig) EmbeddingModel() string { return c.embeddingModel }

// ChatModel returns the generative backend model identifier.
func (c AppConfig) ChatModel() string { return c.chatModel }

// OpenAIAPIKey returns the backend API key.
func (c AppConfig) OpenAIAPIKey() string { return c.openAIAPIKey }

// OpenAIBaseURL returns the backend base URL override.
func (c AppConfig) OpenAIBaseURL() string { return c.openAIBaseURL }

// IndexRoot returns the base directory for persisted indexes.
func (c AppConfig) IndexRoot() string { return c.indexRoot }

// QueryLogPath returns the RAG query log file path.
func (c AppConfig) QueryLogPath() string { return c.queryLogPath }

// MaxContextTokens returns the RAG context token budget.
func (c AppConfig) MaxContextTokens() int { return c.maxContextTokens }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() LogFormat { return c.logFormat }

// LogAttrs returns slog attributes describing the configuration. Secrets
// are reported as presence flags only.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("db_name", c.dbName),
		slog.String("storage_path", c.storagePath),
		slog.String("base_url", c.baseURL),
		slog.Int("port", c.port),
		slog.String("github_org", c.githubOrg),
		slog.Int("github_repos", len(c.githubRepos)),
		slog.String("embedding_model", c.embeddingModel),
		slog.String("chat_model", c.chatModel),
		slog.Bool("github_token_set", c.githubToken != ""),
		slog.Bool("openai_api_key_set", c.openAIAPIKey != ""),
		slog.String("index_root", c.indexRoot),
	}
}

func parseLogFormat(s string) LogFormat {
	if s == string(LogFormatJSON) {
		return LogFormatJSON
	}
	return LogFormatPretty
}
