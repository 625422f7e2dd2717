package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dusk-indust/scaffold/internal/backend"
	"github.com/dusk-indust/scaffold/internal/graph"
	"github.com/dusk-indust/scaffold/internal/project"
)

// ErrStructureDecode is the Reason when the backend reply could not be
// turned into a valid spec set.
var ErrStructureDecode = errors.New("agent: structure decode failed")

// FallbackSpecs is the layout used when the backend's structure is unusable.
func FallbackSpecs() []project.FileSpec {
	return []project.FileSpec{
		{Path: "main.py", Description: "Main application entry point"},
		{Path: "utils.py", Description: "Utility functions"},
	}
}

// StructureResult is the outcome of structure design. Specs is never empty.
type StructureResult struct {
	Specs []project.FileSpec

	// Fallback is true when Specs is FallbackSpecs; Reason says why.
	Fallback bool
	Reason   error

	// Graph holds the specs as file nodes with their DEPENDS_ON edges.
	Graph *graph.MemStore

	// Unresolved lists dependencies that named no spec, as "path -> dep".
	Unresolved []string
}

// StructureDesigner turns a plan into an ordered set of FileSpecs.
type StructureDesigner struct {
	base
}

// NewStructureDesigner creates a StructureDesigner.
func NewStructureDesigner(b backend.TextBackend, opts ...Option) *StructureDesigner {
	return &StructureDesigner{base: newBase(RoleStructureDesigner, b, opts)}
}

// Design never fails: any backend or decode problem yields FallbackSpecs.
func (d *StructureDesigner) Design(ctx context.Context, plan project.ArchitecturePlan) StructureResult {
	var res StructureResult
	text, err := d.generate(ctx, backend.PhaseStructure, structurePrompt(plan), StructureParams)
	if err == nil {
		res.Specs, err = DecodeStructure(text)
	}
	if err != nil {
		d.logger.Printf("WARNING: structure design fell back to default layout: %v", err)
		res = StructureResult{Specs: FallbackSpecs(), Fallback: true, Reason: err}
	}

	res.Graph = graph.NewMemStore()
	unresolved, gerr := graph.Load(ctx, res.Graph, res.Specs)
	if gerr != nil {
		d.logger.Printf("WARNING: structure graph: %v", gerr)
	}
	res.Unresolved = unresolved
	return res
}

// specBody is the value shape of the path-keyed form.
type specBody struct {
	Description      string   `json:"description"`
	Responsibilities []string `json:"responsibilities"`
	MainComponents   []string `json:"main_components"`
	Dependencies     []string `json:"dependencies"`
}

// DecodeStructure extracts the spec set from a backend reply. It accepts
// either a JSON object keyed by path or {"files":[{"path":...}, ...]},
// optionally wrapped in code fences or prose. Specs are normalized,
// validated and sorted by path.
func DecodeStructure(text string) ([]project.FileSpec, error) {
	raw, err := outermostObject(text)
	if err != nil {
		return nil, err
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStructureDecode, err)
	}

	var specs []project.FileSpec
	if files, ok := top["files"]; ok && isArray(files) {
		if err := json.Unmarshal(files, &specs); err != nil {
			return nil, fmt.Errorf("%w: files: %v", ErrStructureDecode, err)
		}
	} else {
		for path, v := range top {
			spec := project.FileSpec{Path: path}
			var body specBody
			var desc string
			switch {
			case json.Unmarshal(v, &body) == nil:
				spec.Description = body.Description
				spec.Responsibilities = body.Responsibilities
				spec.MainComponents = body.MainComponents
				spec.Dependencies = body.Dependencies
			case json.Unmarshal(v, &desc) == nil:
				spec.Description = desc
			default:
				return nil, fmt.Errorf("%w: entry %q has an unsupported shape", ErrStructureDecode, path)
			}
			specs = append(specs, spec)
		}
	}

	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: no files", ErrStructureDecode)
	}
	for i := range specs {
		specs[i] = specs[i].Normalize()
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Path < specs[j].Path })
	if err := project.ValidateSpecs(specs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStructureDecode, err)
	}
	return specs, nil
}

// outermostObject returns the text from the first '{' to the last '}',
// after removing fence lines.
func outermostObject(text string) ([]byte, error) {
	var sb strings.Builder
	for _, l := range strings.Split(text, "\n") {
		if strings.HasPrefix(strings.TrimSpace(l), "```") {
			continue
		}
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	s := sb.String()
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in reply", ErrStructureDecode)
	}
	return []byte(s[start : end+1]), nil
}

func isArray(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '['
}
