package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rcscout.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RCSCOUT_CONFIG", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "serverfault", cfg.Site)
	assert.Equal(t, 30, cfg.PageSize)
	assert.Equal(t, 0.8, cfg.SplitRatio)
	assert.Equal(t, 2000, cfg.MaxTexts)
	assert.Equal(t, "./outputs/annotated_qa_items_dict.json", cfg.ItemsPath)
}

func TestLoad_YAMLThenEnv(t *testing.T) {
	path := writeConfig(t, `
site: superuser
page_size: 50
http_timeout: 5s
split_ratio: 0.7
seed: 42
log_format: json
llm:
  provider: openai
  openai:
    model: gpt-4.1-mini
  timeout: 1m
`)
	t.Setenv("RCSCOUT_PAGE_SIZE", "10")
	t.Setenv("RCSCOUT_ITEMS", "/tmp/items.json")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "superuser", cfg.Site)
	assert.Equal(t, 10, cfg.PageSize, "env beats yaml")
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 0.7, cfg.SplitRatio)
	assert.Equal(t, uint64(42), cfg.Seed)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "/tmp/items.json", cfg.ItemsPath)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "gpt-4.1-mini", cfg.LLM.OpenAI.Model)
	assert.Equal(t, time.Minute, cfg.LLM.Timeout)
	assert.Equal(t, 3, cfg.LLM.Retry.MaxAttempts, "unset nested defaults survive")
	assert.Equal(t, "serverfault", Default().Site)

	se := cfg.StackExchange()
	assert.Equal(t, "superuser", se.Site)
	assert.Equal(t, 5*time.Second, se.Timeout)
}

func TestLoad_ConfigFromEnvPath(t *testing.T) {
	t.Setenv("RCSCOUT_CONFIG", writeConfig(t, "site: askubuntu\n"))
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "askubuntu", cfg.Site)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		missing bool
		wantErr string
	}{
		{name: "explicit path missing", missing: true, wantErr: "read config"},
		{name: "bad yaml", yaml: "site: [", wantErr: "parse"},
		{name: "bad classifier", yaml: "classifier: bayes\n", wantErr: "classifier must be"},
		{name: "bad ratio", yaml: "split_ratio: 1.5\n", wantErr: "split_ratio"},
		{name: "bad page size", yaml: "page_size: 500\n", wantErr: "page_size"},
		{name: "bad log format", yaml: "log_format: xml\n", wantErr: "log_format"},
		{name: "bad env int", env: map[string]string{"RCSCOUT_PAGE_SIZE": "many"}, wantErr: "RCSCOUT_PAGE_SIZE"},
		{name: "bad env duration", env: map[string]string{"RCSCOUT_HTTP_TIMEOUT": "soon"}, wantErr: "RCSCOUT_HTTP_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := filepath.Join(t.TempDir(), "nope.yaml")
			if !tt.missing {
				path = writeConfig(t, tt.yaml)
			}
			_, err := Load(path)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoad_LLMClassifier(t *testing.T) {
	for _, k := range []string{"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY", "RCSCOUT_ANTHROPIC_API_KEY", "RCSCOUT_LLM_PROVIDER"} {
		t.Setenv(k, "")
	}
	path := writeConfig(t, "classifier: llm\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "RCSCOUT_ANTHROPIC_API_KEY")

	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.OpenAI.APIKey)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("RCSCOUT_CONFIG", "")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("RCSCOUT_SITE=unix\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("RCSCOUT_SITE") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "unix", cfg.Site)
}
