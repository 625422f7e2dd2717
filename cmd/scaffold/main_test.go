package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/scaffold/internal/backend"
	"github.com/dusk-indust/scaffold/internal/config"
)

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"python", "fastapi"}, splitList(" python, ,fastapi "))
	assert.Nil(t, splitList(""))
}

func TestMergeMCPConfig_KeepsOtherServers(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".mcp.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"mcpServers":{"other":{"command":"x"}}}`), 0o644))

	require.NoError(t, mergeMCPConfig(path, false))

	var cfg mcpConfig
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &cfg))
	assert.Contains(t, cfg.MCPServers, "other")
	assert.Contains(t, string(cfg.MCPServers["scaffold"]), "--serve-mcp")
}

func TestRunInit_SkipsExistingConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scaffold.yml"), []byte("workers: 9\n"), 0o644))

	require.NoError(t, runInit(dir, false))

	data, err := os.ReadFile(filepath.Join(dir, "scaffold.yml"))
	require.NoError(t, err)
	assert.Equal(t, "workers: 9\n", string(data))
	assert.FileExists(t, filepath.Join(dir, ".mcp.json"))
}

func TestRunParse(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "reply.txt")
	require.NoError(t, os.WriteFile(in, []byte("=== FILE: app/main.py ===\nprint('hi')\n=== FILE END ===\n"), 0o644))

	out := filepath.Join(dir, "out")
	require.NoError(t, runParse([]string{in}, out))
	assert.FileExists(t, filepath.Join(out, "app", "main.py"))
}

func TestRunParse_Errors(t *testing.T) {
	dir := t.TempDir()
	assert.Error(t, runParse(nil, dir))

	empty := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(empty, []byte("no blocks here"), 0o644))
	assert.Error(t, runParse([]string{empty}, dir))

	unsafe := filepath.Join(dir, "unsafe.txt")
	require.NoError(t, os.WriteFile(unsafe, []byte("=== FILE: ../escape.py ===\nx\n=== FILE END ===\n"), 0o644))
	assert.Error(t, runParse([]string{unsafe}, filepath.Join(dir, "out")))
}

func TestRun_Version(t *testing.T) {
	assert.NoError(t, run([]string{"--version"}))
}

func TestRunParse_SkipsUnsafeBlocks(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "reply.txt")
	require.NoError(t, os.WriteFile(in, []byte(
		"=== FILE: app/main.py ===\nprint('hi')\n=== FILE END ===\n"+
			"=== FILE: ../escape.py ===\nx\n=== FILE END ===\n"), 0o644))

	out := filepath.Join(dir, "out")
	require.NoError(t, runParse([]string{in}, out))
	assert.FileExists(t, filepath.Join(out, "app", "main.py"))
	assert.NoFileExists(t, filepath.Join(dir, "escape.py"))
}

func TestDecorate_AppliesInstructionTemplate(t *testing.T) {
	s := backend.NewScripted().Default("### Response:\nanswer")
	b := decorate(s, &config.ProjectConfig{}, log.New(io.Discard, "", 0))

	out, err := b.Generate(context.Background(), "hello", backend.DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, "answer", out)
	assert.Equal(t, backend.FormatInstruction("hello"), s.Calls()[0].Prompt)
}

func TestDecorate_PlanningNotRetried(t *testing.T) {
	s := backend.NewScripted().On(backend.Rule{Err: errors.New("boom")})
	b := decorate(s, &config.ProjectConfig{BackendRetries: 2}, log.New(io.Discard, "", 0))

	ctx := backend.WithPhase(context.Background(), backend.PhasePlanning)
	_, err := b.Generate(ctx, "plan", backend.DefaultParams())
	require.Error(t, err)
	assert.Equal(t, 1, s.CallCount(backend.PhasePlanning))
}
