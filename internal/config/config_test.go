package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), cfg)
	assert.Equal(t, 500, cfg.Chunker.ChunkSize)
	assert.Equal(t, 100, cfg.Chunker.Overlap)
	assert.Equal(t, 384, cfg.Embedder.Dimension)
	assert.Equal(t, "groq", cfg.LLM.Provider)
	assert.Equal(t, ":5000", cfg.Server.Address)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm:
  provider: anthropic
  model: claude-3-5-haiku-latest
  api_key_env: ANTHROPIC_API_KEY
server:
  address: ":8080"
vector_store:
  type: qdrant
  qdrant: {}
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, "claude-3-5-haiku-latest", cfg.LLM.Model)
	assert.Equal(t, 0.3, cfg.LLM.Temperature)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 10, cfg.Server.MaxUploadMB)
	assert.Equal(t, 5, cfg.Retrieval.AutofillTopK)
	require.NotNil(t, cfg.VectorStore.Qdrant)
	assert.Equal(t, "http://localhost:6333", cfg.VectorStore.Qdrant.URL)
	assert.Equal(t, "resume_chunks", cfg.VectorStore.Qdrant.Collection)
}

func TestLoad_ExplicitZeroTemperature(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  temperature: 0\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Zero(t, cfg.LLM.Temperature)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunker: [1, 2"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := defaultConfig()
	cfg.Retrieval.HRTopK = 7

	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLLMConfig_EnvResolution(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "secret")
	t.Setenv("TEST_LLM_MODEL", "")

	c := LLMConfig{Model: "file-model", APIKeyEnv: "TEST_LLM_KEY", ModelEnv: "TEST_LLM_MODEL"}
	assert.Equal(t, "secret", c.APIKey())
	assert.Equal(t, "file-model", c.ResolvedModel())

	t.Setenv("TEST_LLM_MODEL", "env-model")
	assert.Equal(t, "env-model", c.ResolvedModel())

	assert.Empty(t, LLMConfig{}.APIKey())
}
