// Package types holds the data model shared across the aether core:
// symbols, edges, SIR annotations, and the change-event envelope that
// flows from the Observer into the SIR pipeline.
package types

// Language is one of the source languages aether extracts symbols from.
type Language string

const (
	LangRust       Language = "rust"
	LangTypeScript Language = "typescript"
	LangTSX        Language = "tsx"
	LangJavaScript Language = "javascript"
	LangJSX        Language = "jsx"
	LangPython     Language = "python"
)

// Kind enumerates the symbol kinds extracted from source.
type Kind string

const (
	KindFunction  Kind = "function"
	KindMethod    Kind = "method"
	KindClass     Kind = "class"
	KindStruct    Kind = "struct"
	KindEnum      Kind = "enum"
	KindTrait     Kind = "trait"
	KindInterface Kind = "interface"
	KindTypeAlias Kind = "type_alias"
	KindVariable  Kind = "variable"
)

// Range is a 1-based inclusive start, exclusive end line/column span.
type Range struct {
	StartLine int `json:"start_line"`
	StartCol  int `json:"start_col"`
	EndLine   int `json:"end_line"`
	EndCol    int `json:"end_col"`
}

// Symbol is a named program entity extracted from one file.
type Symbol struct {
	ID                   string   `json:"id"`
	Language             Language `json:"language"`
	FilePath             string   `json:"file_path"` // workspace-relative, forward-slash normalized
	Kind                 Kind     `json:"kind"`
	Name                 string   `json:"name"`
	QualifiedName        string   `json:"qualified_name"` // module/class path joined with "::"
	SignatureFingerprint string   `json:"signature_fingerprint"`
	ContentHash          string   `json:"content_hash"`
	Range                Range    `json:"range"`
}

// EdgeKind distinguishes call edges from general dependency edges.
type EdgeKind string

const (
	EdgeCalls     EdgeKind = "calls"
	EdgeDependsOn EdgeKind = "depends_on"
)

// SymbolEdge is a directed relation from a symbol (or a file-scope
// pseudo-symbol "file:<path>") to an unresolved target qualified name.
type SymbolEdge struct {
	SourceID            string   `json:"source_id"`
	TargetQualifiedName string   `json:"target_qualified_name"`
	EdgeKind            EdgeKind `json:"edge_kind"`
	FilePath            string   `json:"file_path"`
}

// FilePseudoID builds the file-scope pseudo symbol id used as an edge
// source for module-level imports.
func FilePseudoID(path string) string {
	return "file:" + path
}

// TestIntent is part of the parse façade's output but is opaque to the
// core pipeline; it is passed through unexamined to any caller that asks
// for it (out of scope per spec §1).
type TestIntent struct {
	Name     string `json:"name"`
	FilePath string `json:"file_path"`
	Covers   string `json:"covers"`
}

// SymbolChangeEvent is the envelope the Observer emits into the pipeline
// and, when verbose, onto stdout as JSON (spec §6).
type SymbolChangeEvent struct {
	FilePath string        `json:"file_path"`
	Language Language      `json:"language"`
	Added    []*Symbol     `json:"added"`
	Updated  []*Symbol     `json:"updated"`
	Removed  []*Symbol     `json:"removed"`
	Edges    []*SymbolEdge `json:"edges"` // current full edge set owned by file_path; nil when the file has been removed
}

// IsEmpty reports whether the event carries no changes at all.
func (e *SymbolChangeEvent) IsEmpty() bool {
	return e == nil || (len(e.Added) == 0 && len(e.Updated) == 0 && len(e.Removed) == 0)
}

// Changed returns the union of Added and Updated — the set that needs a
// fresh SIR generation pass.
func (e *SymbolChangeEvent) Changed() []*Symbol {
	out := make([]*Symbol, 0, len(e.Added)+len(e.Updated))
	out = append(out, e.Added...)
	out = append(out, e.Updated...)
	return out
}
