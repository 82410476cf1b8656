package parsefacade

import (
	sitter "github.com/smacker/go-tree-sitter"

	"aether/internal/types"
)

// extractRust walks a Rust AST, grounded on the teacher's
// extractRustSymbols (internal/world/ast_treesitter.go): function_item,
// struct_item, enum_item, trait_item definitions; impl_item opens a
// method scope; use_declaration and call_expression become edges.
func extractRust(root *sitter.Node, source []byte, filePath string, language types.Language) Result {
	var res Result
	fileSourceID := types.FilePseudoID(filePath)

	var walk func(n *sitter.Node, sc scope, enclosingID string)
	walk = func(n *sitter.Node, sc scope, enclosingID string) {
		switch n.Type() {
		case "function_item":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				name := nodeText(nameNode, source)
				kind := types.KindFunction
				if len(sc.parts) > 0 {
					kind = types.KindMethod
				}
				sym := newSymbol(language, filePath, kind, name, sc.qualify(name), n, source)
				res.Symbols = append(res.Symbols, sym)
				collectRustCalls(n, source, filePath, sym.ID, &res)
				return
			}
		case "struct_item":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				name := nodeText(nameNode, source)
				sym := newSymbol(language, filePath, types.KindStruct, name, sc.qualify(name), n, source)
				res.Symbols = append(res.Symbols, sym)
			}
		case "enum_item":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				name := nodeText(nameNode, source)
				sym := newSymbol(language, filePath, types.KindEnum, name, sc.qualify(name), n, source)
				res.Symbols = append(res.Symbols, sym)
			}
		case "trait_item":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				name := nodeText(nameNode, source)
				sym := newSymbol(language, filePath, types.KindTrait, name, sc.qualify(name), n, source)
				res.Symbols = append(res.Symbols, sym)
				child := sc.child(name)
				walkChildren(n, source, child, sym.ID, walk)
				return
			}
		case "impl_item":
			if typeNode := n.ChildByFieldName("type"); typeNode != nil {
				typeName := nodeText(typeNode, source)
				child := sc.child(typeName)
				walkChildren(n, source, child, enclosingID, walk)
				return
			}
		case "mod_item":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				name := nodeText(nameNode, source)
				child := sc.child(name)
				walkChildren(n, source, child, enclosingID, walk)
				return
			}
		case "use_declaration":
			if argNode := n.ChildByFieldName("argument"); argNode != nil {
				res.Edges = append(res.Edges, newEdge(fileSourceID, firstUsePathSegment(nodeText(argNode, source)), types.EdgeDependsOn, filePath))
			}
		}
		walkChildren(n, source, sc, enclosingID, walk)
	}

	walk(root, scope{}, fileSourceID)
	return res
}

// collectRustCalls scans a function body for call_expression nodes and
// emits a `calls` edge per distinct callee identifier.
func collectRustCalls(fnNode *sitter.Node, source []byte, filePath, sourceID string, res *Result) {
	seen := make(map[string]bool)
	var scan func(n *sitter.Node)
	scan = func(n *sitter.Node) {
		if n.Type() == "call_expression" {
			if fnField := n.ChildByFieldName("function"); fnField != nil {
				callee := nodeText(fnField, source)
				if callee != "" && !seen[callee] {
					seen[callee] = true
					res.Edges = append(res.Edges, newEdge(sourceID, callee, types.EdgeCalls, filePath))
				}
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			scan(n.Child(i))
		}
	}
	scan(fnNode)
}

func firstUsePathSegment(usePath string) string {
	for i := 0; i < len(usePath)-1; i++ {
		if usePath[i] == ':' && usePath[i+1] == ':' {
			return usePath[:i]
		}
	}
	return usePath
}

func walkChildren(n *sitter.Node, source []byte, sc scope, enclosingID string, walk func(*sitter.Node, scope, string)) {
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(i), sc, enclosingID)
	}
}
