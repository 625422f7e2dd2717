package agent

import (
	"fmt"
	"strings"

	"github.com/dusk-indust/scaffold/internal/backend"
	"github.com/dusk-indust/scaffold/internal/graph"
	"github.com/dusk-indust/scaffold/internal/project"
	"github.com/dusk-indust/scaffold/internal/protocol"
)

// Sampling parameters per call site.
var (
	PlanParams          = backend.DefaultParams().With(1500, 0.3)
	StructureParams     = backend.DefaultParams().With(2000, 0.2)
	FileParams          = backend.DefaultParams().With(2000, 0.4)
	RegenerateParams    = backend.DefaultParams().With(2000, 0.3)
	TestParams          = backend.DefaultParams().With(1500, 0.4)
	DocParams           = backend.DefaultParams().With(2000, 0.5)
	OneShotParams       = backend.DefaultParams().With(8000, 0.6)
	ImproveParams       = backend.DefaultParams().With(3000, 0.5)
	GenerateTestsParams = backend.DefaultParams().With(2000, 0.4)
)

// productionChecklist is embedded in every file prompt.
var productionChecklist = []string{
	"Write production-ready code",
	"Use type annotations",
	"Add docstrings",
	"Add error handling",
	"Add logging",
	"Follow clean code principles",
	"Apply SOLID principles",
	"Follow security best practices",
	"Optimize for performance",
	"Keep it testable",
}

func bullets(sb *strings.Builder, items []string) {
	for _, it := range items {
		fmt.Fprintf(sb, "- %s\n", it)
	}
}

func requirementsBlock(sb *strings.Builder, r project.Requirements) {
	sb.WriteString(r.Description)
	sb.WriteString("\n")
	if len(r.Technologies) > 0 {
		fmt.Fprintf(sb, "\nTechnologies: %s\n", strings.Join(r.Technologies, ", "))
	}
	if len(r.Features) > 0 {
		sb.WriteString("\nFeatures:\n")
		bullets(sb, r.Features)
	}
}

func planPrompt(r project.Requirements) string {
	var sb strings.Builder
	sb.WriteString("You are a senior software architect. Analyze the requirements below and produce a detailed plan.\n\n")
	sb.WriteString("Requirements:\n")
	requirementsBlock(&sb, r)
	fmt.Fprintf(&sb, "\nArchitecture: %s\n\n", r.ArchitectureOrDefault())
	sb.WriteString("Answer in this format:\n\n")
	sb.WriteString("## Analysis\n[requirements analysis]\n\n")
	sb.WriteString("## Components\n- Component: [description]\n\n")
	sb.WriteString("## File Structure\n[proposed file layout]\n\n")
	sb.WriteString("## Technical Decisions\n- Technology or pattern: [reason]\n\n")
	sb.WriteString("## Risks and Solutions\n[potential problems and their mitigations]\n")
	return sb.String()
}

func structurePrompt(plan project.ArchitecturePlan) string {
	var sb strings.Builder
	sb.WriteString("Create a detailed file structure for this plan:\n\n")
	sb.WriteString(plan.Narrative)
	sb.WriteString("\n\nFor every file give its path, responsibilities, main functions or classes and dependencies on other files.\n\n")
	sb.WriteString("Respond with JSON only, keyed by relative file path:\n")
	sb.WriteString(`{
  "path/to/file.py": {
    "description": "...",
    "responsibilities": ["..."],
    "main_components": ["..."],
    "dependencies": ["other/file.py"]
  }
}
`)
	return sb.String()
}

func specBlock(sb *strings.Builder, spec project.FileSpec) {
	fmt.Fprintf(sb, "Description: %s\n", spec.Description)
	if len(spec.Responsibilities) > 0 {
		sb.WriteString("Responsibilities:\n")
		bullets(sb, spec.Responsibilities)
	}
	if len(spec.MainComponents) > 0 {
		fmt.Fprintf(sb, "Main components: %s\n", strings.Join(spec.MainComponents, ", "))
	}
	if len(spec.Dependencies) > 0 {
		fmt.Fprintf(sb, "Dependencies: %s\n", strings.Join(spec.Dependencies, ", "))
	}
}

// depsBlock lists the planned files spec depends on so imports line up.
func depsBlock(sb *strings.Builder, deps []graph.FileNode) {
	if len(deps) == 0 {
		return
	}
	sb.WriteString("\nThis file imports from:\n")
	for _, d := range deps {
		fmt.Fprintf(sb, "- %s: %s\n", d.Path, d.Description)
	}
}

func filePrompt(spec project.FileSpec, plan project.ArchitecturePlan, deps []graph.FileNode) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write this file: %s\n\n", spec.Path)
	sb.WriteString("Project plan:\n")
	sb.WriteString(plan.Narrative)
	sb.WriteString("\n\nFile specification:\n")
	specBlock(&sb, spec)
	depsBlock(&sb, deps)
	sb.WriteString("\nRules:\n")
	for i, c := range productionChecklist {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, c)
	}
	sb.WriteString("\nReturn only code, no explanations.\n")
	return sb.String()
}

func regeneratePrompt(spec project.FileSpec, plan project.ArchitecturePlan, deps []graph.FileNode, previous string, failed []string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Improve this file: %s\n\n", spec.Path)
	sb.WriteString("Project plan:\n")
	sb.WriteString(plan.Narrative)
	sb.WriteString("\n\nFile specification:\n")
	specBlock(&sb, spec)
	depsBlock(&sb, deps)
	sb.WriteString("\nThe previous version failed these quality checks:\n")
	bullets(&sb, failed)
	sb.WriteString("\nPrevious version:\n```\n")
	sb.WriteString(previous)
	sb.WriteString("\n```\n\nFix every failed check: add missing docstrings and type annotations, strengthen error handling, remove TODO and FIXME markers.\n")
	sb.WriteString("Return only the improved code.\n")
	return sb.String()
}

func testPrompt(path, content, framework string, coverage int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write comprehensive %s tests for %s:\n\n```\n", framework, path)
	sb.WriteString(content)
	sb.WriteString("\n```\n\n")
	fmt.Fprintf(&sb, "Target %d%% coverage. Cover edge cases, use mocks where appropriate, use descriptive test names.\n", coverage)
	sb.WriteString("Return only the test code.\n")
	return sb.String()
}

func docPrompt(plan project.ArchitecturePlan, paths []string) string {
	var sb strings.Builder
	sb.WriteString("Write a professional README.md for this project.\n\n")
	sb.WriteString("Project plan:\n")
	sb.WriteString(plan.Narrative)
	sb.WriteString("\n\nFiles:\n")
	bullets(&sb, paths)
	sb.WriteString("\nInclude: overview, features, installation, usage, API documentation, architecture, testing and contributing sections.\n")
	return sb.String()
}

// OneShotPrompt asks for a whole project in the delimited multi-file format.
func OneShotPrompt(r project.Requirements) string {
	var sb strings.Builder
	sb.WriteString("Create a complete project with the following properties:\n\n")
	sb.WriteString("Description: ")
	requirementsBlock(&sb, r)
	fmt.Fprintf(&sb, "\nArchitecture: %s\n\n", r.ArchitectureOrDefault())
	sb.WriteString("Include every required file with a sensible folder layout, complete code for each file, a README, tests and configuration files.\n\n")
	sb.WriteString("Emit every file in exactly this format:\n")
	sb.WriteString(protocol.StartMarker("path/to/name.ext"))
	sb.WriteString("\n[file content]\n")
	sb.WriteString(protocol.EndMarker())
	sb.WriteString("\n")
	return sb.String()
}

// ImprovePrompt asks for a refactored version of code.
func ImprovePrompt(code string, requirements []string, language string) string {
	var sb strings.Builder
	hint := ""
	if language != "" {
		hint = " (" + language + ")"
	}
	fmt.Fprintf(&sb, "Improve the following code%s:\n\n```\n", hint)
	sb.WriteString(code)
	sb.WriteString("\n```\n\nImprovement requirements:\n")
	bullets(&sb, requirements)
	sb.WriteString("\nReturn improved, clean, professional code.\n")
	return sb.String()
}

// GenerateTestsPrompt asks for a test file covering code.
func GenerateTestsPrompt(code, framework string, coverage int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write %s tests for the following code:\n\n```\n", framework)
	sb.WriteString(code)
	sb.WriteString("\n```\n\nRequirements:\n")
	fmt.Fprintf(&sb, "- Target %d%% code coverage\n", coverage)
	sb.WriteString("- Test edge cases\n- Use mocks where appropriate\n- Descriptive test names\n\nReturn a complete test file.\n")
	return sb.String()
}
