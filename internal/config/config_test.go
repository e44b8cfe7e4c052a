package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	assert.Equal(t, "reporag", cfg.DBName)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultEmbeddingModel, cfg.EmbeddingModel)
	assert.Equal(t, DefaultChatModel, cfg.ChatModel)
	assert.Equal(t, DefaultMaxContextTokens, cfg.MaxContextTokens)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
}

func TestToAppConfigDerivesBaseURL(t *testing.T) {
	cfg := EnvConfig{Port: 9001, LocalStoragePath: "blobs"}.ToAppConfig()

	assert.Equal(t, "http://localhost:9001", cfg.BaseURL())
	assert.Equal(t, ":9001", cfg.Addr())
	assert.True(t, filepath.IsAbs(cfg.StoragePath()))
}

func TestToAppConfigKeepsExplicitBaseURL(t *testing.T) {
	cfg := EnvConfig{Port: 9001, BaseURL: "https://blobs.example.com"}.ToAppConfig()
	assert.Equal(t, "https://blobs.example.com", cfg.BaseURL())
}

func TestReposSplitsOnWhitespace(t *testing.T) {
	env := EnvConfig{GitHubRepos: "org/one  org/two\norg/three"}
	assert.Equal(t, []string{"org/one", "org/two", "org/three"}, env.Repos())

	assert.Empty(t, EnvConfig{}.Repos())
}

func TestParseLogFormat(t *testing.T) {
	assert.Equal(t, LogFormatJSON, parseLogFormat("json"))
	assert.Equal(t, LogFormatPretty, parseLogFormat("pretty"))
	assert.Equal(t, LogFormatPretty, parseLogFormat(""))
	assert.Equal(t, LogFormatPretty, parseLogFormat("yaml"))
}
