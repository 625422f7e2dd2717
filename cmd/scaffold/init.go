package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dusk-indust/scaffold/internal/export"
	"github.com/dusk-indust/scaffold/internal/protocol"
)

// mcpConfig represents the structure of a .mcp.json file.
type mcpConfig struct {
	MCPServers map[string]json.RawMessage `json:"mcpServers"`
}

// scaffoldMCPEntry is the MCP server configuration for the scaffold binary.
var scaffoldMCPEntry = json.RawMessage(`{
  "type": "stdio",
  "command": "scaffold",
  "args": ["--serve-mcp"]
}`)

const sampleConfig = `# scaffold configuration. Environment variables prefixed with SCAFFOLD_
# override these values; a .env file next to this one is loaded too.
backend: ollama
# model: deepseek-coder:6.7b-instruct
# ollamaHost: http://localhost:11434
workers: 4
threshold: 0.8
maxRegenerations: 1
includeTests: true
testFramework: pytest
coverageTarget: 80
backendRetries: 0
cacheSize: 0
# logFile: scaffold.log
`

// runInit writes a sample scaffold.yml and registers the MCP server in the
// project's .mcp.json.
func runInit(projectRoot string, force bool) error {
	abs, err := filepath.Abs(projectRoot)
	if err != nil {
		return fmt.Errorf("resolving project root: %w", err)
	}

	cfgPath := filepath.Join(abs, "scaffold.yml")
	if _, err := os.Stat(cfgPath); err == nil && !force {
		fmt.Printf("  skipped %s (exists, use --force to overwrite)\n", dotRelative(abs, cfgPath))
	} else {
		if err := os.WriteFile(cfgPath, []byte(sampleConfig), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", cfgPath, err)
		}
		fmt.Printf("  created %s\n", dotRelative(abs, cfgPath))
	}

	if err := mergeMCPConfig(filepath.Join(abs, ".mcp.json"), force); err != nil {
		return err
	}

	fmt.Println("\nSetup complete. Run `scaffold --description \"...\"` or register the MCP server.")
	return nil
}

// mergeMCPConfig creates or merges the scaffold entry into .mcp.json.
func mergeMCPConfig(mcpPath string, force bool) error {
	var cfg mcpConfig

	data, err := os.ReadFile(mcpPath)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return fmt.Errorf("parsing %s: %w", mcpPath, err)
		}
	}

	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]json.RawMessage)
	}

	if _, exists := cfg.MCPServers["scaffold"]; exists && !force {
		fmt.Printf("  skipped .mcp.json scaffold entry (exists, use --force to overwrite)\n")
		return nil
	}

	cfg.MCPServers["scaffold"] = scaffoldMCPEntry

	out, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling .mcp.json: %w", err)
	}

	if err := os.WriteFile(mcpPath, append(out, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", mcpPath, err)
	}

	action := "created"
	if data != nil {
		action = "updated"
	}
	fmt.Printf("  %s .mcp.json with scaffold MCP server\n", action)
	return nil
}

// runParse splits a delimited multi-file text (as produced by --oneshot or
// pasted from a model) into files under outDir. "-" reads stdin.
func runParse(args []string, outDir string) error {
	if len(args) == 0 {
		return errors.New("usage: scaffold [--out dir] parse <file|->")
	}

	var (
		data []byte
		err  error
	)
	if args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	b, dropped := protocol.Sanitize(protocol.Parse(string(data)))
	for _, p := range dropped {
		fmt.Printf("  skipped %s (unsafe path)\n", p)
	}
	if b.Len() == 0 {
		return errors.New("no file blocks found")
	}
	m, err := export.WriteBundle(outDir, b)
	if err != nil {
		return err
	}
	for _, f := range m.Files {
		fmt.Printf("  created %s\n", filepath.Join(outDir, filepath.FromSlash(f.Path)))
	}
	return nil
}

// dotRelative returns a display path relative to the project root, prefixed
// with "./".
func dotRelative(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return "./" + rel
}
