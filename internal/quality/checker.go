// Package quality scores generated text against a fixed heuristic rubric.
//
// The rubric detects the presence of patterns (documentation delimiters,
// type annotations, error handling, length, placeholder markers). It does not
// verify that the code is correct, compiles, or even belongs to the language
// the patterns come from.
package quality

import (
	"path"
	"regexp"
	"strings"
)

const (
	// DefaultThreshold is the minimum score for a passing report (4 of 5).
	DefaultThreshold = 0.8

	// DefaultMinLength is the character count content must exceed.
	DefaultMinLength = 100
)

// Check names, in rubric order. Used by feedback prompts and reports.
const (
	CheckDocumentation   = "documentation"
	CheckTypeAnnotations = "type-annotations"
	CheckErrorHandling   = "error-handling"
	CheckLength          = "reasonable-length"
	CheckNoPlaceholders  = "no-placeholders"
)

// colonTypedRe matches an inline colon-typed parameter such as "name: str".
var colonTypedRe = regexp.MustCompile(`\w[ \t]*:[ \t]+[A-Za-z_]`)

// Report is the outcome of scoring one piece of content.
type Report struct {
	HasDocumentation   bool    `json:"hasDocumentation"`
	HasTypeAnnotations bool    `json:"hasTypeAnnotations"`
	HasErrorHandling   bool    `json:"hasErrorHandling"`
	ReasonableLength   bool    `json:"reasonableLength"`
	NoPlaceholders     bool    `json:"noPlaceholders"`
	Score              float64 `json:"score"`
	Threshold          float64 `json:"threshold"`
	Passed             bool    `json:"passed"`

	// Syntax is filled by CheckFile when the language is recognized.
	// It never affects Score or Passed.
	Syntax *SyntaxReport `json:"syntax,omitempty"`
}

// Failed returns the names of the checks that did not pass, in rubric order.
func (r Report) Failed() []string {
	var out []string
	for _, c := range r.checks() {
		if !c.ok {
			out = append(out, c.name)
		}
	}
	return out
}

type namedCheck struct {
	name string
	ok   bool
}

func (r Report) checks() []namedCheck {
	return []namedCheck{
		{CheckDocumentation, r.HasDocumentation},
		{CheckTypeAnnotations, r.HasTypeAnnotations},
		{CheckErrorHandling, r.HasErrorHandling},
		{CheckLength, r.ReasonableLength},
		{CheckNoPlaceholders, r.NoPlaceholders},
	}
}

// Checker applies the rubric. The zero value is not usable; use NewChecker.
type Checker struct {
	threshold float64
	minLength int
	syntax    *SyntaxInspector
}

// Option configures a Checker.
type Option func(*Checker)

// WithThreshold sets the pass threshold. Values outside (0,1] are ignored.
func WithThreshold(t float64) Option {
	return func(c *Checker) {
		if t > 0 && t <= 1 {
			c.threshold = t
		}
	}
}

// WithMinLength sets the length the content must exceed.
func WithMinLength(n int) Option {
	return func(c *Checker) {
		if n >= 0 {
			c.minLength = n
		}
	}
}

// WithSyntaxInspector attaches a tree-sitter inspector used by CheckFile.
func WithSyntaxInspector(s *SyntaxInspector) Option {
	return func(c *Checker) {
		c.syntax = s
	}
}

// NewChecker creates a Checker with DefaultThreshold and DefaultMinLength.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{threshold: DefaultThreshold, minLength: DefaultMinLength}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Threshold returns the configured pass threshold.
func (c *Checker) Threshold() float64 { return c.threshold }

// Check scores content. It is a pure function of its input.
func (c *Checker) Check(content string) Report {
	r := Report{
		HasDocumentation:   strings.Contains(content, `"""`) || strings.Contains(content, "'''"),
		HasTypeAnnotations: strings.Contains(content, "->") || colonTypedRe.MatchString(content),
		HasErrorHandling:   strings.Contains(content, "try:") || strings.Contains(content, "except"),
		ReasonableLength:   len(content) > c.minLength,
		NoPlaceholders:     !strings.Contains(content, "TODO") && !strings.Contains(content, "FIXME"),
		Threshold:          c.threshold,
	}

	passed := 0
	checks := r.checks()
	for _, ch := range checks {
		if ch.ok {
			passed++
		}
	}
	r.Score = float64(passed) / float64(len(checks))
	r.Passed = r.Score >= c.threshold
	return r
}

// CheckFile scores content and, when an inspector is attached and the path's
// extension maps to a supported grammar, records a syntax report.
func (c *Checker) CheckFile(filePath, content string) Report {
	r := c.Check(content)
	if c.syntax == nil {
		return r
	}
	if lang, ok := LanguageForPath(filePath); ok {
		r.Syntax = c.syntax.Inspect(lang, []byte(content))
	}
	return r
}

// LanguageForPath maps a file extension to a grammar.
func LanguageForPath(p string) (Language, bool) {
	switch strings.ToLower(path.Ext(p)) {
	case ".go":
		return LangGo, true
	case ".py":
		return LangPython, true
	case ".ts":
		return LangTypeScript, true
	case ".tsx":
		return LangTSX, true
	case ".rs":
		return LangRust, true
	}
	return "", false
}
