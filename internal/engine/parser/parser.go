// # internal/engine/parser/parser.go
package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"shadowmap/internal/core/errors"
)

type Parser struct {
	loader     *GrammarLoader
	extractors map[string]Extractor // language -> extractor
}

type Extractor interface {
	Extract(node *sitter.Node, source []byte, filePath string) (*File, error)
}

func NewParser(loader *GrammarLoader) *Parser {
	return &Parser{
		loader:     loader,
		extractors: make(map[string]Extractor),
	}
}

func (p *Parser) RegisterExtractor(lang string, e Extractor) {
	p.extractors[lang] = e
}

func (p *Parser) ParseFile(path string, content []byte) (*File, error) {
	lang := p.detectLanguage(path)
	if lang == "" {
		return nil, errors.New(errors.CodeNotSupported, "unsupported language")
	}

	extractor := p.extractors[lang]
	if extractor == nil {
		return nil, errors.New(errors.CodeNotSupported, fmt.Sprintf("no extractor for: %s", lang))
	}

	grammar := p.loader.Language(lang)
	if grammar == nil {
		return nil, errors.New(errors.CodeInternal, fmt.Sprintf("grammar not loaded: %s", lang))
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, errors.New(errors.CodeInternal, "parse failed")
	}
	defer tree.Close()

	root := tree.RootNode()
	res, err := extractor.Extract(root, content, path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "extraction failed")
	}
	return res, nil
}

func (p *Parser) IsSupportedPath(path string) bool {
	return p.detectLanguage(path) != ""
}

func (p *Parser) detectLanguage(path string) string {
	if strings.ToLower(filepath.Ext(path)) == ".java" {
		return "java"
	}
	return ""
}
