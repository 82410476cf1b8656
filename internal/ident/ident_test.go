package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"aether/internal/types"
)

func TestSymbolIDExcludesLineNumbers(t *testing.T) {
	id1 := SymbolID(types.LangRust, "src/lib.rs", "alpha", types.KindFunction)
	id2 := SymbolID(types.LangRust, "src/lib.rs", "alpha", types.KindFunction)
	assert.Equal(t, id1, id2, "id must be a pure function of (language, file_path, qualified_name, kind)")
}

func TestSymbolIDStableAcrossPathSeparators(t *testing.T) {
	id1 := SymbolID(types.LangPython, "pkg/mod.py", "Foo::bar", types.KindMethod)
	id2 := SymbolID(types.LangPython, "pkg\\mod.py", "Foo::bar", types.KindMethod)
	assert.Equal(t, id1, id2)
}

func TestSymbolIDChangesWithQualifiedName(t *testing.T) {
	id1 := SymbolID(types.LangRust, "src/lib.rs", "alpha", types.KindFunction)
	id2 := SymbolID(types.LangRust, "src/lib.rs", "gamma", types.KindFunction)
	assert.NotEqual(t, id1, id2)
}

func TestCanonicalSIRSortsKeysAndLists(t *testing.T) {
	a := types.SIR{
		Intent:       "does a thing",
		Inputs:       []string{"b", "a"},
		Outputs:      []string{"z", "x"},
		SideEffects:  nil,
		Dependencies: nil,
		ErrorModes:   nil,
		Confidence:   0.75,
	}
	b := types.SIR{
		Intent:       "does a thing",
		Inputs:       []string{"a", "b"},
		Outputs:      []string{"x", "z"},
		SideEffects:  nil,
		Dependencies: nil,
		ErrorModes:   nil,
		Confidence:   0.75,
	}

	ca := CanonicalSIR(a)
	cb := CanonicalSIR(b)
	assert.Equal(t, ca, cb, "set-equal list fields must canonicalize identically")
	assert.Equal(t, SirHash(a), SirHash(b))

	expected := `{"confidence":0.75,"dependencies":[],"error_modes":[],"inputs":["a","b"],"intent":"does a thing","outputs":["x","z"],"side_effects":[]}`
	assert.Equal(t, expected, ca)
}

func TestCanonicalSIRDiffersOnIntent(t *testing.T) {
	a := types.SIR{Intent: "one", Confidence: 0.5}
	b := types.SIR{Intent: "two", Confidence: 0.5}
	assert.NotEqual(t, SirHash(a), SirHash(b))
}

func TestNormalizePathTrimsDotSlash(t *testing.T) {
	assert.Equal(t, "src/lib.rs", NormalizePath("./src/lib.rs"))
	assert.Equal(t, "src/lib.rs", NormalizePath("src\\lib.rs"))
}
