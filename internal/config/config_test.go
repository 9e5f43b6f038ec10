package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, "http://localhost:8000/api", c.Backend.BaseURL)
	require.Equal(t, 10, c.Assistant.RAGTopK)
	require.Equal(t, "groq", c.Assistant.Model)
	require.Equal(t, ":8080", c.Addr())
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
server:
  port: 9000
backend:
  base_url: http://backend:8001/api
  timeout: 5s
assistant:
  rag_top_k: 4
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))

	t.Setenv("RAG_TOP_K", "7")
	t.Setenv("PORT", "not-a-number")
	t.Setenv("AUTH_ENABLED", "true")

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9000, c.Server.Port)
	require.Equal(t, "http://backend:8001/api", c.Backend.BaseURL)
	require.Equal(t, 5*time.Second, c.Backend.Timeout)
	require.Equal(t, 7, c.Assistant.RAGTopK)
	require.True(t, c.Auth.Enabled)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [oops"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
