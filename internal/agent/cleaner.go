package agent

import "strings"

// codeStarts are line prefixes that end the leading prose section.
var codeStarts = []string{
	"import ", "from ", "class ", "def ", "@", "#",
	"package ", "func ", "//", "/*", `"""`, "'''", "{", "<",
}

// Clean strips markdown fences and leading prose from a model reply.
// Fence lines are dropped wherever they occur. Lines before the first
// code-looking line are dropped unless blank; everything after it is kept.
// It is a best-effort filter, not a parser.
func Clean(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	inCode := false
	for _, l := range lines {
		if strings.HasPrefix(strings.TrimSpace(l), "```") {
			continue
		}
		if !inCode && looksLikeCode(l) {
			inCode = true
		}
		if inCode || strings.TrimSpace(l) == "" {
			out = append(out, l)
		}
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func looksLikeCode(line string) bool {
	if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
		return strings.TrimSpace(line) != ""
	}
	for _, p := range codeStarts {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// ExtractCode returns the body of the first fenced block in text, or the
// whole trimmed reply when there is none. Unlike Clean it does not guess
// where code starts, so it is safe for any language.
func ExtractCode(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	start := -1
	for i, l := range lines {
		if !strings.HasPrefix(strings.TrimSpace(l), "```") {
			continue
		}
		if start < 0 {
			start = i + 1
			continue
		}
		return strings.TrimSpace(strings.Join(lines[start:i], "\n"))
	}
	if start >= 0 {
		// Unterminated fence: keep everything after it.
		return strings.TrimSpace(strings.Join(lines[start:], "\n"))
	}
	return strings.TrimSpace(text)
}
