package parsefacade

import (
	sitter "github.com/smacker/go-tree-sitter"

	"aether/internal/types"
)

// extractPython walks a Python AST, grounded on the teacher's
// extractPythonSymbols: class_definition opens a method scope,
// function_definition is a function at module scope or a method inside a
// class, import/import_from become dependency edges, call nodes become
// call edges.
func extractPython(root *sitter.Node, source []byte, filePath string, language types.Language) Result {
	var res Result
	fileSourceID := types.FilePseudoID(filePath)

	var walk func(n *sitter.Node, sc scope, enclosingID string)
	walk = func(n *sitter.Node, sc scope, enclosingID string) {
		switch n.Type() {
		case "class_definition":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				name := nodeText(nameNode, source)
				sym := newSymbol(language, filePath, types.KindClass, name, sc.qualify(name), n, source)
				res.Symbols = append(res.Symbols, sym)
				if body := n.ChildByFieldName("body"); body != nil {
					walkChildren(body, source, sc.child(name), sym.ID, walk)
				}
				return
			}
		case "function_definition":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				name := nodeText(nameNode, source)
				kind := types.KindFunction
				if len(sc.parts) > 0 {
					kind = types.KindMethod
				}
				sym := newSymbol(language, filePath, kind, name, sc.qualify(name), n, source)
				res.Symbols = append(res.Symbols, sym)
				collectPythonCalls(n, source, filePath, sym.ID, &res)
				if isTestFunction(name) {
					res.TestIntents = append(res.TestIntents, &types.TestIntent{Name: name, FilePath: filePath})
				}
				return
			}
		case "import_statement", "import_from_statement":
			for i := 0; i < int(n.NamedChildCount()); i++ {
				child := n.NamedChild(i)
				if child.Type() == "dotted_name" {
					res.Edges = append(res.Edges, newEdge(fileSourceID, nodeText(child, source), types.EdgeDependsOn, filePath))
				}
			}
		}
		walkChildren(n, source, sc, enclosingID, walk)
	}

	walk(root, scope{}, fileSourceID)
	return res
}

func collectPythonCalls(fnNode *sitter.Node, source []byte, filePath, sourceID string, res *Result) {
	seen := make(map[string]bool)
	var scan func(n *sitter.Node)
	scan = func(n *sitter.Node) {
		if n.Type() == "call" {
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

func isTestFunction(name string) bool {
	return len(name) >= 5 && name[:5] == "test_"
}
