package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dusk-indust/scaffold/internal/agent"
	"github.com/dusk-indust/scaffold/internal/backend"
	"github.com/dusk-indust/scaffold/internal/project"
	"github.com/dusk-indust/scaffold/internal/protocol"
)

// ErrEmptyInput is returned when a single-call operation gets nothing to work on.
var ErrEmptyInput = errors.New("orchestrator: empty input")

// SynthesizeSingle forwards prompt to the backend unchanged.
func (p *Pipeline) SynthesizeSingle(ctx context.Context, prompt string, params backend.Params) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("orchestrator: synthesize: %w", ErrEmptyInput)
	}
	out, err := p.backend.Generate(backend.WithPhase(ctx, backend.PhaseSingle), prompt, params.Normalize())
	if err != nil {
		return "", fmt.Errorf("orchestrator: synthesize: %w", err)
	}
	return out, nil
}

// Improve returns a refactored version of code.
func (p *Pipeline) Improve(ctx context.Context, code string, requirements []string, language string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", fmt.Errorf("orchestrator: improve: %w", ErrEmptyInput)
	}
	prompt := agent.ImprovePrompt(code, requirements, language)
	out, err := p.backend.Generate(backend.WithPhase(ctx, backend.PhaseImprove), prompt, agent.ImproveParams)
	if err != nil {
		return "", fmt.Errorf("orchestrator: improve: %w", err)
	}
	return agent.ExtractCode(out), nil
}

// GenerateTests returns a test file for code. An empty framework means the
// configured one; a coverage target outside (0,100] means the configured one.
func (p *Pipeline) GenerateTests(ctx context.Context, code, framework string, coverageTarget int) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", fmt.Errorf("orchestrator: generate tests: %w", ErrEmptyInput)
	}
	if framework == "" {
		framework = p.cfg.TestFramework
	}
	if coverageTarget <= 0 || coverageTarget > 100 {
		coverageTarget = p.cfg.CoverageTarget
	}
	prompt := agent.GenerateTestsPrompt(code, framework, coverageTarget)
	out, err := p.backend.Generate(backend.WithPhase(ctx, backend.PhaseGenerateTests), prompt, agent.GenerateTestsParams)
	if err != nil {
		return "", fmt.Errorf("orchestrator: generate tests: %w", err)
	}
	return agent.ExtractCode(out), nil
}

// GenerateProject asks for the whole project in a single delimited reply.
// Blocks with unsafe paths are dropped. A reply without any usable file
// block yields an empty bundle, not an error.
func (p *Pipeline) GenerateProject(ctx context.Context, r project.Requirements) (*project.Bundle, error) {
	r = project.NewRequirements(r.Description, r.Technologies, r.Features, r.Architecture)
	if r.Description == "" {
		return nil, fmt.Errorf("orchestrator: generate project: %w", ErrEmptyInput)
	}
	out, err := p.backend.Generate(backend.WithPhase(ctx, backend.PhaseOneShot), agent.OneShotPrompt(r), agent.OneShotParams)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: generate project: %w", err)
	}
	b, dropped := protocol.Sanitize(protocol.Parse(out))
	for _, path := range dropped {
		p.log.Printf("WARNING: one-shot reply: dropped unsafe path %q", path)
	}
	if b.Len() == 0 {
		p.log.Printf("WARNING: one-shot reply contained no file blocks (%d bytes)", len(out))
	}
	return b, nil
}
