package config

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/scaffold/internal/backend"
	"github.com/dusk-indust/scaffold/internal/orchestrator"
	"github.com/dusk-indust/scaffold/internal/project"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoad_NoFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, BackendOllama, cfg.BackendName())
	assert.Equal(t, 1, cfg.Attempts())
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "scaffold.yml", `
backend: Gemini
model: gemini-2.5-pro
workers: 8
threshold: 0.6
maxRegenerations: 0
includeTests: false
sourceExtensions: [".py", ".go"]
cacheSize: 128
backendRetries: 2
`)

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, BackendGemini, cfg.BackendName())
	assert.Equal(t, "gemini-2.5-pro", cfg.Model)
	assert.Equal(t, 128, cfg.CacheSize)
	assert.Equal(t, 3, cfg.Attempts())

	oc := cfg.Orchestrator(nil)
	assert.Equal(t, 8, oc.Workers)
	assert.Equal(t, 0.6, oc.Threshold)
	assert.Equal(t, 0, oc.MaxRegenerations)
	assert.False(t, oc.IncludeTests)
	assert.Equal(t, []string{".py", ".go"}, oc.SourceExtensions)
	assert.True(t, oc.SyntaxCheck, "unset syntaxCheck keeps the default")
}

func TestLoad_YAMLFallbackName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "scaffold.yaml", "testFramework: unittest\n")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "unittest", cfg.Orchestrator(nil).TestFramework)
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "scaffold.yml", "workers: [not a number\n")

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: parse scaffold.yml")
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "scaffold.yml", "backend: ollama\nworkers: 2\n")
	t.Setenv("SCAFFOLD_BACKEND", "scripted")
	t.Setenv("SCAFFOLD_WORKERS", "6")
	t.Setenv("SCAFFOLD_INCLUDE_TESTS", "false")
	t.Setenv("SCAFFOLD_SOURCE_EXTENSIONS", ".py, .ts")
	t.Setenv("SCAFFOLD_MAX_REGENERATIONS", "2")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, BackendScripted, cfg.BackendName())
	assert.Equal(t, 6, cfg.Workers)
	require.NotNil(t, cfg.IncludeTests)
	assert.False(t, *cfg.IncludeTests)
	assert.Equal(t, []string{".py", ".ts"}, cfg.SourceExtensions)
	assert.Equal(t, 2, cfg.Orchestrator(nil).MaxRegenerations)
}

func TestLoad_EnvBadNumber(t *testing.T) {
	t.Setenv("SCAFFOLD_WORKERS", "many")
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SCAFFOLD_WORKERS")
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".env", "SCAFFOLD_BACKEND_RETRIES=4\n")
	t.Cleanup(func() { os.Unsetenv("SCAFFOLD_BACKEND_RETRIES") })

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.BackendRetries)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ProjectConfig
		wantErr bool
	}{
		{"zero", ProjectConfig{}, false},
		{"unknown backend", ProjectConfig{Backend: "openai"}, true},
		{"threshold too high", ProjectConfig{Threshold: 1.5}, true},
		{"coverage too high", ProjectConfig{CoverageTarget: 120}, true},
		{"negative workers", ProjectConfig{Workers: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
	assert.ErrorIs(t, (&ProjectConfig{Backend: "openai"}).Validate(), ErrUnknownBackend)
}

func TestOrchestrator_Defaults(t *testing.T) {
	oc := (&ProjectConfig{}).Orchestrator(nil)
	assert.Equal(t, orchestrator.DefaultConfig().Workers, oc.Workers)
	assert.Equal(t, 1, oc.MaxRegenerations)
	assert.True(t, oc.IncludeTests)
}

func TestRetries_DoNotRepeatPlanning(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "scaffold.yml", "backend: scripted\nbackendRetries: 2\n")
	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Attempts())

	s := backend.NewScripted().On(backend.Rule{Phase: backend.PhasePlanning, Err: errors.New("boom")})
	b := backend.Wrap(s, backend.Retry(cfg.Attempts(), time.Millisecond))
	p := orchestrator.NewPipeline(cfg.Orchestrator(log.New(io.Discard, "", 0)), b)
	defer p.Close()

	_, err = p.PlanAndGenerate(context.Background(), project.NewRequirements("task api", nil, nil, ""))
	require.Error(t, err)
	assert.Equal(t, 1, s.CallCount(backend.PhasePlanning))
}
