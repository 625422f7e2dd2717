package quality

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// Language identifies a grammar known to the SyntaxInspector.
type Language string

const (
	LangGo         Language = "go"
	LangPython     Language = "python"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangRust       Language = "rust"
)

// maxReportedErrors caps the positions kept in a SyntaxReport.
const maxReportedErrors = 10

// SyntaxReport summarizes a tree-sitter parse of generated content.
type SyntaxReport struct {
	Language   Language `json:"language"`
	Parsed     bool     `json:"parsed"`
	ErrorCount int      `json:"errorCount"`
	ErrorLines []int    `json:"errorLines,omitempty"` // 1-based, capped
}

// Clean reports whether the parse produced no error or missing nodes.
func (s *SyntaxReport) Clean() bool {
	return s != nil && s.Parsed && s.ErrorCount == 0
}

// SyntaxInspector parses content with tree-sitter grammars and counts error
// nodes. A new parser is created per Inspect call, so one inspector may be
// shared by concurrent synthesis workers.
type SyntaxInspector struct {
	languages map[Language]*tree_sitter.Language
}

// NewSyntaxInspector registers the Go, Python, TypeScript, TSX and Rust grammars.
func NewSyntaxInspector() *SyntaxInspector {
	return &SyntaxInspector{
		languages: map[Language]*tree_sitter.Language{
			LangGo:         tree_sitter.NewLanguage(tree_sitter_go.Language()),
			LangPython:     tree_sitter.NewLanguage(tree_sitter_python.Language()),
			LangTypeScript: tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript()),
			LangTSX:        tree_sitter.NewLanguage(tree_sitter_typescript.LanguageTSX()),
			LangRust:       tree_sitter.NewLanguage(tree_sitter_rust.Language()),
		},
	}
}

// Supports reports whether lang has a registered grammar.
func (s *SyntaxInspector) Supports(lang Language) bool {
	_, ok := s.languages[lang]
	return ok
}

// Inspect parses source and returns a report. Unsupported languages and
// parser failures yield a report with Parsed=false; Inspect never errors.
func (s *SyntaxInspector) Inspect(lang Language, source []byte) *SyntaxReport {
	rep := &SyntaxReport{Language: lang}
	tsLang, ok := s.languages[lang]
	if !ok {
		return rep
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(tsLang); err != nil {
		return rep
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return rep
	}
	defer tree.Close()

	rep.Parsed = true
	root := tree.RootNode()
	if !root.HasError() {
		return rep
	}

	cursor := root.Walk()
	defer cursor.Close()
	collectErrors(cursor, rep)
	return rep
}

// collectErrors walks the tree depth-first, counting ERROR and MISSING nodes.
// Subtrees without errors are skipped.
func collectErrors(cursor *tree_sitter.TreeCursor, rep *SyntaxReport) {
	node := cursor.Node()
	if node.IsError() || node.IsMissing() {
		rep.ErrorCount++
		if len(rep.ErrorLines) < maxReportedErrors {
			rep.ErrorLines = append(rep.ErrorLines, int(node.StartPosition().Row)+1)
		}
	}
	if !node.HasError() {
		return
	}
	if cursor.GotoFirstChild() {
		collectErrors(cursor, rep)
		for cursor.GotoNextSibling() {
			collectErrors(cursor, rep)
		}
		cursor.GotoParent()
	}
}
