package orchestrator

import (
	"log"

	"github.com/dusk-indust/scaffold/internal/agent"
	"github.com/dusk-indust/scaffold/internal/quality"
)

// Config holds runtime configuration for a Pipeline. Start from
// DefaultConfig; zero numeric fields fall back to their defaults, booleans
// are taken as given.
type Config struct {
	// Workers bounds concurrent backend calls during file and test synthesis.
	Workers int

	// Threshold is the quality pass score in (0,1].
	Threshold float64

	// MinLength is the content length the length check requires.
	MinLength int

	// MaxRegenerations bounds feedback calls per failing file. Negative
	// means none.
	MaxRegenerations int

	// IncludeTests runs the test stage unless a run overrides it.
	IncludeTests bool

	TestFramework    string
	CoverageTarget   int
	SourceExtensions []string

	// SyntaxCheck attaches tree-sitter syntax reports to quality reports.
	SyntaxCheck bool

	// Logger receives WARNING lines; nil means log.Default().
	Logger *log.Logger
}

// DefaultWorkers bounds concurrent backend calls when Config.Workers is unset.
const DefaultWorkers = 4

// DefaultConfig returns the standard pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Workers:          DefaultWorkers,
		Threshold:        quality.DefaultThreshold,
		MinLength:        quality.DefaultMinLength,
		MaxRegenerations: 1,
		IncludeTests:     true,
		TestFramework:    agent.DefaultTestFramework,
		CoverageTarget:   agent.DefaultCoverageTarget,
		SourceExtensions: agent.DefaultSourceExtensions,
		SyntaxCheck:      true,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.Threshold <= 0 || c.Threshold > 1 {
		c.Threshold = d.Threshold
	}
	if c.MinLength <= 0 {
		c.MinLength = d.MinLength
	}
	if c.MaxRegenerations < 0 {
		c.MaxRegenerations = 0
	}
	if c.TestFramework == "" {
		c.TestFramework = d.TestFramework
	}
	if c.CoverageTarget <= 0 || c.CoverageTarget > 100 {
		c.CoverageTarget = d.CoverageTarget
	}
	if len(c.SourceExtensions) == 0 {
		c.SourceExtensions = d.SourceExtensions
	}
	if c.Logger == nil {
		c.Logger = log.Default()
	}
	return c
}

func (c Config) checker() *quality.Checker {
	opts := []quality.Option{
		quality.WithThreshold(c.Threshold),
		quality.WithMinLength(c.MinLength),
	}
	if c.SyntaxCheck {
		opts = append(opts, quality.WithSyntaxInspector(quality.NewSyntaxInspector()))
	}
	return quality.NewChecker(opts...)
}

func (c Config) agentOptions() []agent.Option {
	return []agent.Option{
		agent.WithLogger(c.Logger),
		agent.WithChecker(c.checker()),
		agent.WithMaxRegenerations(c.MaxRegenerations),
		agent.WithTestFramework(c.TestFramework),
		agent.WithCoverageTarget(c.CoverageTarget),
		agent.WithSourceExtensions(c.SourceExtensions...),
	}
}
