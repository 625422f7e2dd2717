package project

import (
	"errors"
	"fmt"
	"path"
	"strings"
)

var (
	// ErrInvalidPath is returned when a FileSpec path is empty, absolute,
	// escapes the project root, or cannot be framed by the delimiter protocol.
	ErrInvalidPath = errors.New("project: invalid file path")

	// ErrDuplicatePath is returned when a spec set names the same path twice.
	ErrDuplicatePath = errors.New("project: duplicate file path")
)

// FileSpec describes one file to be generated.
type FileSpec struct {
	Path             string   `json:"path"`
	Description      string   `json:"description"`
	Responsibilities []string `json:"responsibilities,omitempty"`
	MainComponents   []string `json:"main_components,omitempty"`
	Dependencies     []string `json:"dependencies,omitempty"`
}

// NormalizePath converts p to a clean, slash-separated relative path.
// Leading "./" segments are removed; the result is not validated.
func NormalizePath(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, `\`, "/"))
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	return p
}

// ValidatePath reports whether p is usable as a bundle key.
func ValidatePath(p string) error {
	if p == "" {
		return fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	if strings.HasPrefix(p, "/") || (len(p) > 1 && p[1] == ':') {
		return fmt.Errorf("%w: %q is absolute", ErrInvalidPath, p)
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return fmt.Errorf("%w: %q escapes the project root", ErrInvalidPath, p)
		}
	}
	if strings.ContainsAny(p, "\r\n") || strings.Contains(p, "===") {
		return fmt.Errorf("%w: %q contains delimiter characters", ErrInvalidPath, p)
	}
	if c := path.Clean(p); c == "." {
		return fmt.Errorf("%w: %q names the project root", ErrInvalidPath, p)
	}
	return nil
}

// Normalize returns a copy of s with a normalized path and trimmed fields.
func (s FileSpec) Normalize() FileSpec {
	s.Path = NormalizePath(s.Path)
	s.Description = strings.TrimSpace(s.Description)
	s.Responsibilities = trimAll(s.Responsibilities)
	s.MainComponents = trimAll(s.MainComponents)
	s.Dependencies = trimAll(s.Dependencies)
	return s
}

// Validate checks the spec's path.
func (s FileSpec) Validate() error {
	return ValidatePath(s.Path)
}

// ValidateSpecs validates every spec and rejects duplicate paths.
func ValidateSpecs(specs []FileSpec) error {
	seen := make(map[string]bool, len(specs))
	for _, s := range specs {
		if err := s.Validate(); err != nil {
			return err
		}
		if seen[s.Path] {
			return fmt.Errorf("%w: %q", ErrDuplicatePath, s.Path)
		}
		seen[s.Path] = true
	}
	return nil
}

// trimAll trims each element and drops empty ones.
func trimAll(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
