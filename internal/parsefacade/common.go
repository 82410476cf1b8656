package parsefacade

import (
	sitter "github.com/smacker/go-tree-sitter"

	"aether/internal/ident"
	"aether/internal/types"
)

// nodeText returns a node's source text.
func nodeText(n *sitter.Node, source []byte) string {
	if n == nil {
		return ""
	}
	return n.Content(source)
}

// scope tracks the chain of enclosing container names (class/struct/impl/
// module) used to build a symbol's "::"-joined qualified name.
type scope struct {
	parts []string
}

func (s scope) child(name string) scope {
	parts := make([]string, len(s.parts), len(s.parts)+1)
	copy(parts, s.parts)
	return scope{parts: append(parts, name)}
}

func (s scope) qualify(name string) string {
	if len(s.parts) == 0 {
		return name
	}
	qualified := s.parts[0]
	for _, p := range s.parts[1:] {
		qualified += "::" + p
	}
	return qualified + "::" + name
}

// newSymbol builds a fully-identified Symbol, including its content-
// addressed id (spec §4.1: a pure function of language/file_path/
// qualified_name/kind, computed here so sibling edges can reference it
// immediately rather than waiting for a second pass).
func newSymbol(language types.Language, filePath string, kind types.Kind, name, qualifiedName string, n *sitter.Node, source []byte) *types.Symbol {
	body := nodeText(n, source)
	return &types.Symbol{
		ID:                   ident.SymbolID(language, filePath, qualifiedName, kind),
		Language:             language,
		FilePath:             filePath,
		Kind:                 kind,
		Name:                 name,
		QualifiedName:        qualifiedName,
		SignatureFingerprint: ident.SignatureFingerprint(firstLine(body)),
		ContentHash:          ident.ContentHash(body),
		Range: types.Range{
			StartLine: int(n.StartPoint().Row) + 1,
			StartCol:  int(n.StartPoint().Column),
			EndLine:   int(n.EndPoint().Row) + 1,
			EndCol:    int(n.EndPoint().Column),
		},
	}
}

func firstLine(body string) string {
	for i, r := range body {
		if r == '\n' {
			return body[:i]
		}
	}
	return body
}

func newEdge(sourceID, targetQualifiedName string, kind types.EdgeKind, filePath string) *types.SymbolEdge {
	return &types.SymbolEdge{
		SourceID:            sourceID,
		TargetQualifiedName: targetQualifiedName,
		EdgeKind:            kind,
		FilePath:            filePath,
	}
}
