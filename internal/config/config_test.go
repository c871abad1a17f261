package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 700, cfg.RAG.ChunkSize)
	assert.Equal(t, 5, cfg.RAG.TopK)
	assert.Equal(t, 12000, cfg.RAG.SummaryContextChars)
	assert.Equal(t, 12000, cfg.RAG.ChatContextChars)
	assert.Equal(t, 15000, cfg.RAG.QuizContextChars)
	assert.Equal(t, 15, cfg.RAG.QuizQuestions)
	assert.False(t, cfg.RAG.QuizSoftErrors)
	assert.Equal(t, "0.0.0.0:8000", cfg.HTTPAddr())
	assert.Equal(t, 90*time.Second, cfg.LLMTimeout())
}

func TestLoad_FileThenEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[app]
port = 9090

[database]
driver = "sqlite"

[rag]
chunk_size = 300
quiz_soft_errors = true

[cors]
allow_origins = ["http://example.test"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("RAG_TOP_K", "8")
	t.Setenv("CORS_ALLOW_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 300, cfg.RAG.ChunkSize)
	assert.True(t, cfg.RAG.QuizSoftErrors)
	assert.Equal(t, 8, cfg.RAG.TopK)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowOrigins)
}

func TestLoad_InvalidEnvIntKeepsFallback(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("RAG_CHUNK_SIZE", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 700, cfg.RAG.ChunkSize)
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestDSNs(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "root:@tcp(127.0.0.1:3306)/studymate?parseTime=true&loc=Local&charset=utf8mb4", cfg.MySQLDSN())
	assert.Equal(t, "host=127.0.0.1 port=5432 user=postgres password= dbname=studymate sslmode=disable", cfg.PostgresDSN())
}
