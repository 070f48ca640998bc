// # internal/engine/parser/loader.go
package parser

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
)

// GrammarLoader owns the tree-sitter language bindings. Mixin patches are
// Java sources, so only the Java grammar is registered.
type GrammarLoader struct {
	languages map[string]*sitter.Language
}

func NewGrammarLoader() *GrammarLoader {
	return &GrammarLoader{
		languages: map[string]*sitter.Language{
			"java": sitter.NewLanguage(tree_sitter_java.Language()),
		},
	}
}

func (gl *GrammarLoader) Language(lang string) *sitter.Language {
	return gl.languages[lang]
}

func (gl *GrammarLoader) SupportedExtensions() []string {
	return []string{".java"}
}
