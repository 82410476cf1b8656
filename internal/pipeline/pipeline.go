// Package pipeline implements C9: turns a SymbolChangeEvent into store
// writes and bounded-concurrency SIR generation calls, tracking the
// fresh/stale state machine from spec §4.7.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"aether/internal/ident"
	"aether/internal/inference"
	"aether/internal/logging"
	"aether/internal/quality"
	"aether/internal/store"
	"aether/internal/types"
)

// Config controls the bounded-concurrency dispatcher. Concurrency is the
// semaphore width gating concurrent calls to the inference provider;
// values below 1 are clamped to 1 (spec §4.7 step 4, "default 2, minimum
// 1").
type Config struct {
	WorkspaceRoot string
	Concurrency   int64
}

// Pipeline is C9: the orchestrator wired from C5 output into C2/C3 writes
// and C8 calls. Grounded on the teacher's internal/embedding worker-pool
// shape (internal/embedding/engine.go), replacing the hand-rolled
// channel gate with golang.org/x/sync/semaphore per the module's
// dependency table.
type Pipeline struct {
	cfg      Config
	store    *store.Store
	blobs    *store.BlobStore
	provider inference.Provider
	monitor  *quality.Monitor
	events   *logging.EventWriter
	sem      *semaphore.Weighted
}

// New returns a Pipeline. monitor and events may be nil: a nil monitor
// skips quality tracking, a nil events writer skips verbose emission.
func New(cfg Config, st *store.Store, blobs *store.BlobStore, provider inference.Provider, monitor *quality.Monitor, events *logging.EventWriter) *Pipeline {
	width := cfg.Concurrency
	if width < 1 {
		width = 1
	}
	return &Pipeline{
		cfg:      cfg,
		store:    st,
		blobs:    blobs,
		provider: provider,
		monitor:  monitor,
		events:   events,
		sem:      semaphore.NewWeighted(width),
	}
}

// Process runs the full C9 algorithm for one event: removals first
// (synchronous, ordered before new work), then store upserts for the
// changed set and the file's current edge set, then bounded-concurrency
// SIR generation for every added/updated symbol. All jobs for the event
// finish before Process returns (spec §4.9, "one path's SIR work must
// complete before the next path is processed").
func (p *Pipeline) Process(ctx context.Context, ev *types.SymbolChangeEvent) error {
	if ev.IsEmpty() {
		return nil
	}
	if p.events != nil {
		p.events.Emit(ev)
	}

	for _, sym := range ev.Removed {
		if err := p.store.MarkRemoved(sym.ID); err != nil {
			return fmt.Errorf("pipeline: mark removed %s: %w", sym.ID, err)
		}
		if err := p.blobs.DeleteSIR(sym.ID); err != nil {
			return fmt.Errorf("pipeline: delete blob %s: %w", sym.ID, err)
		}
	}

	changed := ev.Changed()
	for _, sym := range changed {
		if err := p.store.UpsertSymbol(sym); err != nil {
			return fmt.Errorf("pipeline: upsert symbol %s: %w", sym.ID, err)
		}
	}
	if err := p.store.UpsertEdges(ev.FilePath, ev.Edges); err != nil {
		return fmt.Errorf("pipeline: upsert edges for %s: %w", ev.FilePath, err)
	}

	if len(changed) == 0 {
		return nil
	}

	source, err := os.ReadFile(filepath.Join(p.cfg.WorkspaceRoot, filepath.FromSlash(ev.FilePath)))
	if err != nil {
		logging.PipelineDebug("could not read %s for SIR slicing, falling back to empty text: %v", ev.FilePath, err)
		source = nil
	}

	var wg sync.WaitGroup
	for _, sym := range changed {
		sym := sym
		if err := p.sem.Acquire(ctx, 1); err != nil {
			return fmt.Errorf("pipeline: acquire dispatch slot: %w", err)
		}
		wg.Add(1)
		go func() {
			defer p.sem.Release(1)
			defer wg.Done()
			p.runJob(ctx, sym, ev.Language, source)
		}()
	}
	wg.Wait()
	return nil
}

// runJob performs step 3-6 of spec §4.7 for one symbol: slice the source
// text, call the inference provider, and record the outcome in SirMeta
// (and the blob, on success). Errors here are per-symbol and do not
// abort the event — they are recorded as a stale SirMeta row instead.
func (p *Pipeline) runJob(ctx context.Context, sym *types.Symbol, language types.Language, fileSource []byte) {
	text := sliceRange(fileSource, sym.Range)
	sctx := inference.SirContext{
		Language:      language,
		FilePath:      sym.FilePath,
		QualifiedName: sym.QualifiedName,
	}

	sir, err := p.provider.GenerateSIR(ctx, text, sctx)
	now := time.Now().Unix()

	if err != nil {
		logging.Get(logging.CategoryPipeline).Warn("sir generation failed for %s: %v", sym.ID, err)
		prev, getErr := p.store.GetSirMeta(sym.ID)
		meta := &types.SirMeta{
			SymbolID:      sym.ID,
			Provider:      p.provider.Name(),
			SirStatus:     types.SirStale,
			LastError:     err.Error(),
			LastAttemptAt: now,
		}
		if getErr == nil && prev != nil {
			meta.SirHash = prev.SirHash
			meta.SirVersion = prev.SirVersion
			meta.Model = prev.Model
			meta.UpdatedAt = prev.UpdatedAt
		} else {
			meta.SirVersion = 1
			meta.UpdatedAt = now
		}
		if setErr := p.store.UpsertSirMeta(meta); setErr != nil {
			logging.Get(logging.CategoryPipeline).Error("failed to record stale sir_meta for %s: %v", sym.ID, setErr)
		}
		return
	}

	if p.monitor != nil {
		p.monitor.Observe(sir.Confidence)
	}

	if blobErr := p.blobs.WriteSIR(sym.ID, sir); blobErr != nil {
		logging.Get(logging.CategoryPipeline).Error("sir blob write failed for %s: %v", sym.ID, blobErr)
		prev, _ := p.store.GetSirMeta(sym.ID)
		meta := &types.SirMeta{
			SymbolID:      sym.ID,
			Provider:      p.provider.Name(),
			SirStatus:     types.SirStale,
			LastError:     blobErr.Error(),
			LastAttemptAt: now,
		}
		if prev != nil {
			meta.SirHash = prev.SirHash
			meta.SirVersion = prev.SirVersion
			meta.Model = prev.Model
			meta.UpdatedAt = prev.UpdatedAt
		} else {
			meta.SirVersion = 1
			meta.UpdatedAt = now
		}
		if setErr := p.store.UpsertSirMeta(meta); setErr != nil {
			logging.Get(logging.CategoryPipeline).Error("failed to record stale sir_meta for %s: %v", sym.ID, setErr)
		}
		return
	}

	prev, _ := p.store.GetSirMeta(sym.ID)
	version := 1
	if prev != nil {
		version = prev.SirVersion + 1
	}
	meta := &types.SirMeta{
		SymbolID:      sym.ID,
		SirHash:       ident.SirHash(sir),
		SirVersion:    version,
		Provider:      p.provider.Name(),
		Model:         providerModel(p.provider),
		UpdatedAt:     now,
		SirStatus:     types.SirFresh,
		LastError:     "",
		LastAttemptAt: now,
	}
	if setErr := p.store.UpsertSirMeta(meta); setErr != nil {
		logging.Get(logging.CategoryPipeline).Error("failed to record fresh sir_meta for %s: %v", sym.ID, setErr)
		return
	}
	if p.events != nil {
		p.events.SIRStored(sym.ID, meta.SirHash, meta.Provider)
	}
}

// providerModel extracts a model label from a provider's Name() — the
// inference package names providers "mock", "local:<model>",
// "cloud:<model>" so the suffix after the first colon is the model.
func providerModel(p inference.Provider) string {
	name := p.Name()
	if idx := strings.IndexByte(name, ':'); idx >= 0 {
		return name[idx+1:]
	}
	return name
}

// sliceRange extracts lines StartLine through EndLine (1-based, both
// included, since the range's exclusive end position lies on EndLine)
// from source and falls back to the whole file when the range is
// out of bounds or source is empty (spec §4.7 step 3, "fall back to the
// whole file if slicing fails").
func sliceRange(source []byte, r types.Range) string {
	if len(source) == 0 {
		return ""
	}
	whole := string(source)
	lines := strings.Split(whole, "\n")

	start := r.StartLine - 1
	end := r.EndLine
	if start < 0 || end > len(lines) || start >= end {
		return whole
	}
	return strings.Join(lines[start:end], "\n")
}
