package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dusk-indust/scaffold/internal/project"
)

// ManifestName is the file WriteBundle leaves next to the generated files.
const ManifestName = ".scaffold-manifest.json"

// Manifest lists what a bundle export wrote.
type Manifest struct {
	ExportedAt string      `json:"exportedAt"`
	Files      []FileEntry `json:"files"`
}

// FileEntry describes one written file.
type FileEntry struct {
	Path  string `json:"path"`
	Bytes int    `json:"bytes"`
	Lines int    `json:"lines"`
}

// BuildManifest describes b in bundle order.
func BuildManifest(b *project.Bundle) *Manifest {
	m := &Manifest{ExportedAt: time.Now().UTC().Format(time.RFC3339)}
	for _, e := range b.Entries() {
		lines := 0
		if e.Content != "" {
			lines = strings.Count(e.Content, "\n") + 1
			if strings.HasSuffix(e.Content, "\n") {
				lines--
			}
		}
		m.Files = append(m.Files, FileEntry{Path: e.Path, Bytes: len(e.Content), Lines: lines})
	}
	return m
}

// WriteBundle writes every entry of b under dir, creating directories as
// needed, followed by the manifest. Paths are validated before anything is
// written, so a bundle with one unsafe path writes nothing.
func WriteBundle(dir string, b *project.Bundle) (*Manifest, error) {
	entries := b.Entries()
	for _, e := range entries {
		if err := project.ValidatePath(e.Path); err != nil {
			return nil, fmt.Errorf("export: %w", err)
		}
	}

	for _, e := range entries {
		target := filepath.Join(dir, filepath.FromSlash(e.Path))
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, fmt.Errorf("export: mkdir for %s: %w", e.Path, err)
		}
		content := e.Content
		if content != "" && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("export: write %s: %w", e.Path, err)
		}
	}

	m := BuildManifest(b)
	if err := WriteJSON(filepath.Join(dir, ManifestName), m); err != nil {
		return nil, err
	}
	return m, nil
}

// WriteJSON writes v as indented JSON to path.
func WriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("export: marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("export: mkdir: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}
