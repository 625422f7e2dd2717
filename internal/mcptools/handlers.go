package mcptools

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/scaffold/internal/backend"
	"github.com/dusk-indust/scaffold/internal/export"
	"github.com/dusk-indust/scaffold/internal/orchestrator"
	"github.com/dusk-indust/scaffold/internal/project"
	"github.com/dusk-indust/scaffold/internal/protocol"
	"github.com/dusk-indust/scaffold/internal/status"
)

// ScaffoldService handles MCP tool calls. It wraps an Orchestrator and
// optionally writes bundles to disk.
type ScaffoldService struct {
	orch orchestrator.Orchestrator
}

// NewScaffoldService creates a ScaffoldService around orch.
func NewScaffoldService(orch orchestrator.Orchestrator) *ScaffoldService {
	return &ScaffoldService{orch: orch}
}

func files(b *project.Bundle) []FileOutput {
	entries := b.Entries()
	out := make([]FileOutput, len(entries))
	for i, e := range entries {
		out[i] = FileOutput{Path: e.Path, Content: e.Content}
	}
	return out
}

func write(dir string, b *project.Bundle) ([]string, error) {
	if dir == "" {
		return nil, nil
	}
	m, err := export.WriteBundle(dir, b)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(m.Files))
	for i, f := range m.Files {
		out[i] = filepath.Join(dir, filepath.FromSlash(f.Path))
	}
	return out, nil
}

// PlanAndGenerate runs the full pipeline.
func (s *ScaffoldService) PlanAndGenerate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input PlanAndGenerateInput,
) (*mcp.CallToolResult, PlanAndGenerateOutput, error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, PlanAndGenerateOutput{}, errors.New("description is required")
	}

	var opts []orchestrator.RunOption
	if input.IncludeTests != nil {
		opts = append(opts, orchestrator.WithTests(*input.IncludeTests))
	}
	r := project.NewRequirements(input.Description, input.Technologies, input.Features, input.Architecture)
	res, err := s.orch.PlanAndGenerate(ctx, r, opts...)
	if err != nil {
		return nil, PlanAndGenerateOutput{}, err
	}

	written, err := write(input.OutputDir, res.Bundle)
	if err != nil {
		return nil, PlanAndGenerateOutput{}, err
	}
	return nil, PlanAndGenerateOutput{
		RunID:   res.RunID,
		Files:   files(res.Bundle),
		Summary: status.Summarize(res),
		Written: written,
	}, nil
}

// SynthesizeSingle forwards one prompt to the backend.
func (s *ScaffoldService) SynthesizeSingle(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SynthesizeSingleInput,
) (*mcp.CallToolResult, TextOutput, error) {
	p := backend.DefaultParams()
	if input.MaxTokens > 0 {
		p.MaxTokens = input.MaxTokens
	}
	if input.Temperature != nil {
		p.Temperature = *input.Temperature
	}
	text, err := s.orch.SynthesizeSingle(ctx, input.Prompt, p)
	if err != nil {
		return nil, TextOutput{}, err
	}
	return nil, TextOutput{Text: text}, nil
}

// ImproveCode returns a refactored version of the input code.
func (s *ScaffoldService) ImproveCode(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ImproveCodeInput,
) (*mcp.CallToolResult, TextOutput, error) {
	text, err := s.orch.Improve(ctx, input.Code, input.Requirements, input.Language)
	if err != nil {
		return nil, TextOutput{}, err
	}
	return nil, TextOutput{Text: text}, nil
}

// GenerateTests returns a test file for the input code.
func (s *ScaffoldService) GenerateTests(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateTestsInput,
) (*mcp.CallToolResult, TextOutput, error) {
	text, err := s.orch.GenerateTests(ctx, input.Code, input.Framework, input.CoverageTarget)
	if err != nil {
		return nil, TextOutput{}, err
	}
	return nil, TextOutput{Text: text}, nil
}

// GenerateProject asks for the whole project in one reply.
func (s *ScaffoldService) GenerateProject(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GenerateProjectInput,
) (*mcp.CallToolResult, FilesOutput, error) {
	r := project.NewRequirements(input.Description, input.Technologies, input.Features, input.Architecture)
	b, err := s.orch.GenerateProject(ctx, r)
	if err != nil {
		return nil, FilesOutput{}, err
	}
	written, err := write(input.OutputDir, b)
	if err != nil {
		return nil, FilesOutput{}, err
	}
	return nil, FilesOutput{Files: files(b), Written: written}, nil
}

// ParseProject decodes delimited text into files without calling a model.
// Paths that could not be written safely are rejected.
func (s *ScaffoldService) ParseProject(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ParseProjectInput,
) (*mcp.CallToolResult, FilesOutput, error) {
	b := protocol.Parse(input.Text)
	if err := protocol.Validate(b); err != nil {
		return nil, FilesOutput{}, fmt.Errorf("parse_project: %w", err)
	}
	return nil, FilesOutput{Files: files(b)}, nil
}
