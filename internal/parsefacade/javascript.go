package parsefacade

import (
	sitter "github.com/smacker/go-tree-sitter"

	"aether/internal/types"
)

// extractJavaScript walks a JavaScript/JSX AST, grounded on the teacher's
// extractJSSymbols: class_declaration, function_declaration, and
// const-assigned arrow/function expressions are symbols; class bodies
// open a method scope; import_statement and call_expression become
// edges.
func extractJavaScript(root *sitter.Node, source []byte, filePath string, language types.Language) Result {
	var res Result
	fileSourceID := types.FilePseudoID(filePath)

	var walk func(n *sitter.Node, sc scope, enclosingID string)
	walk = func(n *sitter.Node, sc scope, enclosingID string) {
		switch n.Type() {
		case "class_declaration":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				name := nodeText(nameNode, source)
				sym := newSymbol(language, filePath, types.KindClass, name, sc.qualify(name), n, source)
				res.Symbols = append(res.Symbols, sym)
				if body := n.ChildByFieldName("body"); body != nil {
					walkChildren(body, source, sc.child(name), sym.ID, walk)
				}
				return
			}
		case "method_definition":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				name := nodeText(nameNode, source)
				sym := newSymbol(language, filePath, types.KindMethod, name, sc.qualify(name), n, source)
				res.Symbols = append(res.Symbols, sym)
				collectJSCalls(n, source, filePath, sym.ID, &res)
				return
			}
		case "function_declaration":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				name := nodeText(nameNode, source)
				sym := newSymbol(language, filePath, types.KindFunction, name, sc.qualify(name), n, source)
				res.Symbols = append(res.Symbols, sym)
				collectJSCalls(n, source, filePath, sym.ID, &res)
				return
			}
		case "lexical_declaration", "variable_declaration":
			for i := 0; i < int(n.NamedChildCount()); i++ {
				child := n.NamedChild(i)
				if child.Type() != "variable_declarator" {
					continue
				}
				nameNode := child.ChildByFieldName("name")
				valueNode := child.ChildByFieldName("value")
				if nameNode == nil || valueNode == nil {
					continue
				}
				if valueNode.Type() == "arrow_function" || valueNode.Type() == "function" {
					name := nodeText(nameNode, source)
					sym := newSymbol(language, filePath, types.KindFunction, name, sc.qualify(name), child, source)
					res.Symbols = append(res.Symbols, sym)
					collectJSCalls(valueNode, source, filePath, sym.ID, &res)
				}
			}
		case "import_statement":
			if sourceNode := n.ChildByFieldName("source"); sourceNode != nil {
				res.Edges = append(res.Edges, newEdge(fileSourceID, trimQuotes(nodeText(sourceNode, source)), types.EdgeDependsOn, filePath))
			}
		}
		walkChildren(n, source, sc, enclosingID, walk)
	}

	walk(root, scope{}, fileSourceID)
	return res
}

func collectJSCalls(fnNode *sitter.Node, source []byte, filePath, sourceID string, res *Result) {
	seen := make(map[string]bool)
	var scan func(n *sitter.Node)
	scan = func(n *sitter.Node) {
		if n.Type() == "call_expression" {
			if fnField := n.ChildByFieldName("function"); fnField != nil {
				callee := nodeText(fnField, source)
				if callee != "" && !seen[callee] {
					seen[callee] = true
					res.Edges = append(res.Edges, newEdge(sourceID, callee, types.EdgeCalls, filePath))
					if callee == "it" || callee == "test" {
						if argsNode := n.ChildByFieldName("arguments"); argsNode != nil && argsNode.NamedChildCount() > 0 {
							nameArg := argsNode.NamedChild(0)
							if nameArg.Type() == "string" {
								res.TestIntents = append(res.TestIntents, &types.TestIntent{
									Name:     trimQuotes(nodeText(nameArg, source)),
									FilePath: filePath,
								})
							}
						}
					}
				}
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			scan(n.Child(i))
		}
	}
	scan(fnNode)
}

func trimQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '`' && last == '`') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
