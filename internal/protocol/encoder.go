package protocol

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dusk-indust/scaffold/internal/project"
)

// ErrUnsafeContent is returned by Validate when a file's content contains a
// line that the decoder would read as a marker.
var ErrUnsafeContent = errors.New("protocol: content contains a marker line")

// Encode serializes the bundle as a delimited stream with explicit end
// markers, in bundle order.
func Encode(b *project.Bundle) string {
	var sb strings.Builder
	for _, e := range b.Entries() {
		sb.WriteString(StartMarker(e.Path))
		sb.WriteByte('\n')
		if e.Content != "" {
			sb.WriteString(e.Content)
			sb.WriteByte('\n')
		}
		sb.WriteString(endMarker)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Validate reports whether every entry survives an Encode/Parse round trip:
// paths must be valid bundle keys and no content line may look like a marker.
func Validate(b *project.Bundle) error {
	for _, e := range b.Entries() {
		if err := project.ValidatePath(e.Path); err != nil {
			return err
		}
		for _, l := range strings.Split(e.Content, "\n") {
			if _, ok := parseStart(l); ok || isEnd(l) {
				return fmt.Errorf("%w: %s", ErrUnsafeContent, e.Path)
			}
		}
	}
	return nil
}

// Sanitize returns a copy of b without the entries whose path is not a safe
// relative path, and the paths it dropped.
func Sanitize(b *project.Bundle) (*project.Bundle, []string) {
	out := project.NewBundle()
	var dropped []string
	for _, e := range b.Entries() {
		if project.ValidatePath(e.Path) != nil {
			dropped = append(dropped, e.Path)
			continue
		}
		out.Set(e.Path, e.Content)
	}
	return out, dropped
}
