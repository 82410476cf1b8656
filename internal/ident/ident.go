// Package ident implements C1: stable content-addressed identity for
// symbols, SIR canonicalization, and the single path-normalization
// boundary every hash and store key passes through.
//
// Grounded on the teacher's content-hashing convention (crypto/sha256
// hex digests, e.g. internal/store/migrations.go's backup hashing) — a
// simple content hash has no idiomatic third-party replacement in the
// pack, so this stays on the standard library.
package ident

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"aether/internal/types"
)

// NormalizePath is the single boundary function invoked before any
// hashing or storage of a file path. It converts backslashes to forward
// slashes and trims a leading "./". Platform differences between
// separators must never cause two representations of the same path to
// hash differently (spec §9 "Path normalization").
func NormalizePath(path string) string {
	p := strings.ReplaceAll(path, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	return p
}

// hashString returns the lowercase hex sha256 digest of s.
func hashString(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// SymbolID computes the stable symbol id. It is a pure function of
// (language, file_path, qualified_name, kind) — it deliberately excludes
// line numbers and content, so moving a symbol within its file (or
// editing unrelated code around it) never changes the id (spec §4.1,
// tested as an invariant in ident_test.go).
func SymbolID(language types.Language, filePath, qualifiedName string, kind types.Kind) string {
	filePath = NormalizePath(filePath)
	return hashString(string(language) + "||" + filePath + "||" + qualifiedName + "||" + string(kind))
}

// ContentHash hashes a symbol's body text.
func ContentHash(body string) string {
	return hashString(body)
}

// SignatureFingerprint hashes a symbol's surface form (its declaration).
func SignatureFingerprint(signature string) string {
	return hashString(signature)
}

// CanonicalSIR serializes a SIR to its canonical JSON form: top-level
// keys sorted alphabetically, list-valued fields sorted ascending before
// emission. Two SIRs equal under set-semantics on their list fields
// produce byte-identical canonical output (spec §3, §4.1, §8 law 2).
func CanonicalSIR(s types.SIR) string {
	sorted := types.SIR{
		Intent:       s.Intent,
		Inputs:       sortedCopy(s.Inputs),
		Outputs:      sortedCopy(s.Outputs),
		SideEffects:  sortedCopy(s.SideEffects),
		Dependencies: sortedCopy(s.Dependencies),
		ErrorModes:   sortedCopy(s.ErrorModes),
		Confidence:   s.Confidence,
	}

	// Marshal into a map so we control key order explicitly rather than
	// relying on struct field declaration order (which is not what JSON
	// marshaling of a Go struct guarantees to match alphabetical order).
	m := map[string]interface{}{
		"confidence":   sorted.Confidence,
		"dependencies": sorted.Dependencies,
		"error_modes":  sorted.ErrorModes,
		"inputs":       sorted.Inputs,
		"intent":       sorted.Intent,
		"outputs":      sorted.Outputs,
		"side_effects": sorted.SideEffects,
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		kb, _ := json.Marshal(k)
		vb, _ := json.Marshal(m[k])
		b.Write(kb)
		b.WriteByte(':')
		b.Write(vb)
	}
	b.WriteByte('}')
	return b.String()
}

// SirHash is the content hash of a SIR's canonical JSON.
func SirHash(s types.SIR) string {
	return hashString(CanonicalSIR(s))
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}

// NoteID computes a note id from its content and a caller-supplied
// timestamp string, per spec §4.1 ("hash(content || ':' || timestamp)").
func NoteID(content, timestamp string) string {
	return hashString(content + ":" + timestamp)
}

// NoteContentKey normalizes note content for dedup: whitespace-normalized
// and case-folded, then hashed (spec §4.1).
func NoteContentKey(content string) string {
	fields := strings.Fields(content)
	normalized := strings.ToLower(strings.Join(fields, " "))
	return hashString(normalized)
}
