package parsefacade

import (
	sitter "github.com/smacker/go-tree-sitter"

	"aether/internal/types"
)

// extractTypeScript walks a TypeScript/TSX AST. It extends
// extractJavaScript's shape (class/function/arrow-const symbols, import
// edges, call edges) with TypeScript-only declarations: interfaces and
// type aliases, grounded on the teacher's extractTSSymbols.
func extractTypeScript(root *sitter.Node, source []byte, filePath string, language types.Language) Result {
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
		case "interface_declaration":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				name := nodeText(nameNode, source)
				sym := newSymbol(language, filePath, types.KindInterface, name, sc.qualify(name), n, source)
				res.Symbols = append(res.Symbols, sym)
			}
		case "type_alias_declaration":
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				name := nodeText(nameNode, source)
				sym := newSymbol(language, filePath, types.KindTypeAlias, name, sc.qualify(name), n, source)
				res.Symbols = append(res.Symbols, sym)
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
