// Package parsefacade provides the default implementation of C4, the
// parse façade. Spec §4 treats C4 as an opaque external collaborator
// ("given (language, path, source) returns symbol list + edge list +
// test-intent list"); this package is the in-tree implementation used
// when no other extractor is wired in, built from the teacher's
// internal/world/ast_treesitter.go tree-sitter walking style, adapted to
// emit the aether symbol/edge/test-intent model instead of Mangle facts.
package parsefacade

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	tsx "github.com/smacker/go-tree-sitter/typescript/tsx"
	tstypescript "github.com/smacker/go-tree-sitter/typescript/typescript"

	"aether/internal/logging"
	"aether/internal/types"
)

// Result is the parse façade's output for one file.
type Result struct {
	Symbols     []*types.Symbol
	Edges       []*types.SymbolEdge
	TestIntents []*types.TestIntent
}

// extractor is the per-language symbol-extraction strategy.
type extractor func(root *sitter.Node, source []byte, filePath string, language types.Language) Result

// Facade extracts symbols, edges, and test intents from source text using
// tree-sitter grammars. It must be deterministic for a given input (spec
// §6 "parse façade contract").
type Facade struct {
	parsers    map[types.Language]*sitter.Parser
	extractors map[types.Language]extractor
}

// New constructs a Facade with parsers for every language in the symbol
// language enum.
func New() *Facade {
	f := &Facade{
		parsers:    make(map[types.Language]*sitter.Parser),
		extractors: make(map[types.Language]extractor),
	}

	register := func(lang types.Language, grammar *sitter.Language, ex extractor) {
		p := sitter.NewParser()
		p.SetLanguage(grammar)
		f.parsers[lang] = p
		f.extractors[lang] = ex
	}

	register(types.LangRust, rust.GetLanguage(), extractRust)
	register(types.LangPython, python.GetLanguage(), extractPython)
	register(types.LangJavaScript, javascript.GetLanguage(), extractJavaScript)
	register(types.LangJSX, javascript.GetLanguage(), extractJavaScript)
	register(types.LangTypeScript, tstypescript.GetLanguage(), extractTypeScript)
	register(types.LangTSX, tsx.GetLanguage(), extractTypeScript)

	return f
}

// Close releases every underlying tree-sitter parser.
func (f *Facade) Close() {
	for _, p := range f.parsers {
		p.Close()
	}
}

// Extract parses source and returns its symbols, edges, and test intents.
// displayPath must already be workspace-relative and forward-slash
// normalized (ident.NormalizePath) — Extract itself does not normalize.
func (f *Facade) Extract(ctx context.Context, language types.Language, displayPath string, source []byte) (Result, error) {
	parser, ok := f.parsers[language]
	if !ok {
		return Result{}, fmt.Errorf("parsefacade: unsupported language %q", language)
	}

	timer := logging.StartTimer(logging.CategoryObserver, "parse:"+string(language))
	defer timer.Stop()

	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return Result{}, fmt.Errorf("parsefacade: parse %s: %w", displayPath, err)
	}
	defer tree.Close()

	extract := f.extractors[language]
	return extract(tree.RootNode(), source, displayPath, language), nil
}
