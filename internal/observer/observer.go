// Package observer implements C5: per-file symbol snapshots and the diff
// that turns a raw filesystem event into a SymbolChangeEvent.
package observer

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"aether/internal/ident"
	"aether/internal/logging"
	"aether/internal/parsefacade"
	"aether/internal/types"
	"aether/internal/watcher"
)

// extensionLanguages maps a lowercase file extension to its symbol
// language, per the enum in spec §3.
var extensionLanguages = map[string]types.Language{
	".rs":  types.LangRust,
	".ts":  types.LangTypeScript,
	".tsx": types.LangTSX,
	".js":  types.LangJavaScript,
	".mjs": types.LangJavaScript,
	".cjs": types.LangJavaScript,
	".jsx": types.LangJSX,
	".py":  types.LangPython,
}

// FileSnapshot is the Observer's in-memory record of a file's last-known
// symbol set (spec §3, "owned by the Observer; never persisted").
type FileSnapshot struct {
	Language types.Language
	Symbols  []*types.Symbol
}

// Observer holds one FileSnapshot per file it has processed and turns
// each process_path call into a diff against that snapshot.
type Observer struct {
	root    string
	facade  *parsefacade.Facade
	history map[string]FileSnapshot // keyed by workspace-relative normalized path
}

// New returns an Observer rooted at workspaceRoot using facade to extract
// symbols from file contents.
func New(workspaceRoot string, facade *parsefacade.Facade) *Observer {
	return &Observer{
		root:    workspaceRoot,
		facade:  facade,
		history: make(map[string]FileSnapshot),
	}
}

// ProcessPath implements the seven-step algorithm from spec §4.4. path
// may be workspace-relative or absolute; it is normalized before any
// lookup. A nil event with a nil error means "no-op" (ignored path, or no
// change since the last snapshot).
func (o *Observer) ProcessPath(ctx context.Context, path string) (*types.SymbolChangeEvent, error) {
	if watcher.IsIgnored(path) {
		return nil, nil
	}

	displayPath := o.displayPath(path)
	absPath := o.absPath(displayPath)

	prior, hadPrior := o.history[displayPath]

	language := languageFor(displayPath)
	var currentSymbols []*types.Symbol
	var currentEdges []*types.SymbolEdge

	data, err := os.ReadFile(absPath)
	switch {
	case err == nil:
		result, extractErr := o.facade.Extract(ctx, language, displayPath, data)
		if extractErr != nil {
			return nil, extractErr
		}
		currentSymbols = result.Symbols
		currentEdges = result.Edges
	case os.IsNotExist(err):
		if hadPrior {
			language = prior.Language
		}
		currentSymbols = nil
	default:
		return nil, err
	}

	event := diff(displayPath, language, prior.Symbols, currentSymbols)
	event.Edges = currentEdges

	if len(currentSymbols) == 0 {
		delete(o.history, displayPath)
	} else {
		o.history[displayPath] = FileSnapshot{Language: language, Symbols: currentSymbols}
	}

	if event.IsEmpty() {
		return nil, nil
	}
	return event, nil
}

// diff implements step 5 of spec §4.4: symbols matched by id that differ
// in signature_fingerprint or content_hash are updated; an id present
// only in the prior set is removed; an id present only in the current set
// is added.
func diff(filePath string, language types.Language, prior, current []*types.Symbol) *types.SymbolChangeEvent {
	priorByID := make(map[string]*types.Symbol, len(prior))
	for _, sym := range prior {
		priorByID[sym.ID] = sym
	}
	currentByID := make(map[string]*types.Symbol, len(current))
	for _, sym := range current {
		currentByID[sym.ID] = sym
	}

	event := &types.SymbolChangeEvent{FilePath: filePath, Language: language}
	for id, sym := range currentByID {
		old, existed := priorByID[id]
		if !existed {
			event.Added = append(event.Added, sym)
			continue
		}
		if old.SignatureFingerprint != sym.SignatureFingerprint || old.ContentHash != sym.ContentHash {
			event.Updated = append(event.Updated, sym)
		}
	}
	for id, sym := range priorByID {
		if _, stillPresent := currentByID[id]; !stillPresent {
			event.Removed = append(event.Removed, sym)
		}
	}

	sortByQualifiedName(event.Added)
	sortByQualifiedName(event.Updated)
	sortByQualifiedName(event.Removed)
	return event
}

func sortByQualifiedName(syms []*types.Symbol) {
	sort.Slice(syms, func(i, j int) bool {
		if syms[i].QualifiedName != syms[j].QualifiedName {
			return syms[i].QualifiedName < syms[j].QualifiedName
		}
		return syms[i].ID < syms[j].ID
	})
}

// SeedFromDisk walks workspaceRoot once, processing every non-ignored
// file and returning one event per file that yields a change, ordered by
// file_path ascending (spec §4.4, "emission order is file_path asc").
//
// A single file's extractor error is logged and skipped rather than
// propagated — the daemon keeps running on a partially-parseable
// workspace rather than failing the entire initial scan over one bad
// file (see DESIGN.md's decision on this spec open question).
func (o *Observer) SeedFromDisk(ctx context.Context) ([]*types.SymbolChangeEvent, error) {
	var paths []string
	err := filepath.Walk(o.root, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return nil
		}
		if info.IsDir() {
			if watcher.IsIgnored(path) && path != o.root {
				return filepath.SkipDir
			}
			return nil
		}
		if watcher.IsIgnored(path) {
			return nil
		}
		rel, relErr := filepath.Rel(o.root, path)
		if relErr != nil {
			rel = path
		}
		if languageFor(ident.NormalizePath(rel)) == "" {
			return nil
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var events []*types.SymbolChangeEvent
	for _, rel := range paths {
		event, procErr := o.ProcessPath(ctx, rel)
		if procErr != nil {
			logging.Get(logging.CategoryObserver).Warn("skipping %s during initial scan: %v", rel, procErr)
			continue
		}
		if event != nil {
			events = append(events, event)
		}
	}
	return events, nil
}

func languageFor(displayPath string) types.Language {
	ext := strings.ToLower(filepath.Ext(displayPath))
	return extensionLanguages[ext]
}

func (o *Observer) displayPath(path string) string {
	if filepath.IsAbs(path) {
		if rel, err := filepath.Rel(o.root, path); err == nil {
			path = rel
		}
	}
	return ident.NormalizePath(path)
}

func (o *Observer) absPath(displayPath string) string {
	return filepath.Join(o.root, filepath.FromSlash(displayPath))
}
