// Package agent implements the synthesis stages: planning, structure design,
// file synthesis with a quality gate, test synthesis and documentation.
// Every stage receives its backend at construction.
package agent

import (
	"context"
	"log"

	"github.com/dusk-indust/scaffold/internal/backend"
	"github.com/dusk-indust/scaffold/internal/quality"
)

// Role identifies a synthesis stage.
type Role string

const (
	RolePlanner           Role = "planner"
	RoleStructureDesigner Role = "structure-designer"
	RoleFileWriter        Role = "file-writer"
	RoleTestWriter        Role = "test-writer"
	RoleDocWriter         Role = "doc-writer"
)

// Defaults for the test writer.
const (
	DefaultTestFramework  = "pytest"
	DefaultCoverageTarget = 90
)

// DefaultSourceExtensions lists the extensions that get a generated test.
var DefaultSourceExtensions = []string{".py"}

type settings struct {
	logger           *log.Logger
	checker          *quality.Checker
	maxRegenerations int
	framework        string
	coverage         int
	sourceExts       []string
}

func newSettings(opts []Option) settings {
	s := settings{
		logger:           log.Default(),
		maxRegenerations: 1,
		framework:        DefaultTestFramework,
		coverage:         DefaultCoverageTarget,
		sourceExts:       DefaultSourceExtensions,
	}
	for _, o := range opts {
		o(&s)
	}
	if s.checker == nil {
		s.checker = quality.NewChecker()
	}
	return s
}

// Option configures a stage during construction. Stages ignore options
// that do not apply to them.
type Option func(*settings)

// WithLogger sets the logger. nil keeps log.Default().
func WithLogger(l *log.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithChecker sets the quality checker used by the file writer.
func WithChecker(c *quality.Checker) Option {
	return func(s *settings) { s.checker = c }
}

// WithMaxRegenerations bounds the feedback calls per failing file.
// Negative values are treated as zero.
func WithMaxRegenerations(n int) Option {
	return func(s *settings) {
		if n < 0 {
			n = 0
		}
		s.maxRegenerations = n
	}
}

// WithTestFramework names the framework test prompts ask for.
func WithTestFramework(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.framework = name
		}
	}
}

// WithCoverageTarget sets the coverage percentage test prompts ask for.
func WithCoverageTarget(pct int) Option {
	return func(s *settings) {
		if pct > 0 && pct <= 100 {
			s.coverage = pct
		}
	}
}

// WithSourceExtensions sets which file extensions get a generated test.
func WithSourceExtensions(exts ...string) Option {
	return func(s *settings) {
		if len(exts) > 0 {
			s.sourceExts = exts
		}
	}
}

// base is embedded by every stage.
type base struct {
	role    Role
	backend backend.TextBackend
	settings
}

func newBase(role Role, b backend.TextBackend, opts []Option) base {
	return base{role: role, backend: b, settings: newSettings(opts)}
}

// Role returns the stage role.
func (b *base) Role() Role { return b.role }

func (b *base) generate(ctx context.Context, phase, prompt string, p backend.Params) (string, error) {
	return b.backend.Generate(backend.WithPhase(ctx, phase), prompt, p)
}
