// Package project holds the records that flow through a synthesis run:
// caller requirements, the derived architecture plan, per-file specs, the
// generated files and the ordered bundle handed back to the caller.
package project

import (
	"slices"
	"strings"

	"github.com/dusk-indust/scaffold/internal/quality"
)

// DefaultArchitecture is used when requirements carry no architecture tag.
const DefaultArchitecture = "modular"

// Requirements is the caller-supplied description of the project to build.
// Treat it as immutable once constructed.
type Requirements struct {
	Description  string
	Technologies []string
	Features     []string
	Architecture string // e.g. "modular", "clean architecture"
}

// NewRequirements builds Requirements with cloned slices and the default
// architecture tag applied.
func NewRequirements(description string, technologies, features []string, architecture string) Requirements {
	architecture = strings.TrimSpace(architecture)
	if architecture == "" {
		architecture = DefaultArchitecture
	}
	return Requirements{
		Description:  strings.TrimSpace(description),
		Technologies: slices.Clone(technologies),
		Features:     slices.Clone(features),
		Architecture: architecture,
	}
}

// ArchitectureOrDefault returns the architecture tag, falling back to
// DefaultArchitecture.
func (r Requirements) ArchitectureOrDefault() string {
	if a := strings.TrimSpace(r.Architecture); a != "" {
		return a
	}
	return DefaultArchitecture
}

// ArchitecturePlan is the planning stage's output. It is read-only input to
// every later stage.
type ArchitecturePlan struct {
	Requirements Requirements
	Architecture string
	Narrative    string // free text produced by the backend
}

// GeneratedFile is the accepted output for one FileSpec.
type GeneratedFile struct {
	Path    string
	Content string
	Report  quality.Report

	// Attempts is the number of backend calls spent on this file (1 or 2
	// with the default regeneration policy).
	Attempts int

	// Regenerated is true when the content came from a feedback call.
	Regenerated bool
}
