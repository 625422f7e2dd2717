package mcptools

import "github.com/dusk-indust/scaffold/internal/status"

// --- MCP Tool Types for the scaffold server mode (--serve-mcp) ---

// FileOutput is one generated file.
type FileOutput struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// PlanAndGenerateInput is the input for the plan_and_generate MCP tool.
type PlanAndGenerateInput struct {
	Description  string   `json:"description" jsonschema:"what the project should do"`
	Technologies []string `json:"technologies,omitempty" jsonschema:"languages, frameworks and libraries to use"`
	Features     []string `json:"features,omitempty" jsonschema:"features the project must have"`
	Architecture string   `json:"architecture,omitempty" jsonschema:"architecture style (default: modular)"`
	IncludeTests *bool    `json:"includeTests,omitempty" jsonschema:"generate one test file per source file (default: server setting)"`
	OutputDir    string   `json:"outputDir,omitempty" jsonschema:"directory to write the files to; omit to only return them"`
}

// PlanAndGenerateOutput is the result of the plan_and_generate MCP tool.
type PlanAndGenerateOutput struct {
	RunID   string            `json:"runId"`
	Files   []FileOutput      `json:"files"`
	Summary status.RunSummary `json:"summary"`
	Written []string          `json:"written,omitempty"`
}

// SynthesizeSingleInput is the input for the synthesize_single MCP tool.
type SynthesizeSingleInput struct {
	Prompt      string   `json:"prompt" jsonschema:"prompt forwarded to the model unchanged"`
	MaxTokens   int      `json:"maxTokens,omitempty" jsonschema:"maximum tokens to generate (default: 2048)"`
	Temperature *float64 `json:"temperature,omitempty" jsonschema:"sampling temperature in [0,1] (default: 0.7)"`
}

// TextOutput carries a single generated text.
type TextOutput struct {
	Text string `json:"text"`
}

// ImproveCodeInput is the input for the improve_code MCP tool.
type ImproveCodeInput struct {
	Code         string   `json:"code" jsonschema:"source code to improve"`
	Requirements []string `json:"requirements,omitempty" jsonschema:"improvements to make"`
	Language     string   `json:"language,omitempty" jsonschema:"language of the code"`
}

// GenerateTestsInput is the input for the generate_tests MCP tool.
type GenerateTestsInput struct {
	Code           string `json:"code" jsonschema:"source code to test"`
	Framework      string `json:"framework,omitempty" jsonschema:"test framework (default: pytest)"`
	CoverageTarget int    `json:"coverageTarget,omitempty" jsonschema:"target coverage percentage (default: 90)"`
}

// GenerateProjectInput is the input for the generate_project MCP tool.
type GenerateProjectInput struct {
	Description  string   `json:"description" jsonschema:"what the project should do"`
	Technologies []string `json:"technologies,omitempty" jsonschema:"languages, frameworks and libraries to use"`
	Features     []string `json:"features,omitempty" jsonschema:"features the project must have"`
	Architecture string   `json:"architecture,omitempty" jsonschema:"architecture style (default: modular)"`
	OutputDir    string   `json:"outputDir,omitempty" jsonschema:"directory to write the files to; omit to only return them"`
}

// FilesOutput lists files, optionally with the paths written to disk.
type FilesOutput struct {
	Files   []FileOutput `json:"files"`
	Written []string     `json:"written,omitempty"`
}

// ParseProjectInput is the input for the parse_project MCP tool.
type ParseProjectInput struct {
	Text string `json:"text" jsonschema:"text in the === FILE: path === delimited format"`
}
