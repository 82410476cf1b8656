// Package indexer implements C11: the daemon's boot sequence and main
// event loop, wiring the watcher/debounce/observer/pipeline components
// into the running process described in spec §4.9.
package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"aether/internal/config"
	"aether/internal/debounce"
	"aether/internal/embedding"
	"aether/internal/inference"
	"aether/internal/logging"
	"aether/internal/observer"
	"aether/internal/parsefacade"
	"aether/internal/pipeline"
	"aether/internal/quality"
	"aether/internal/search"
	"aether/internal/store"
	"aether/internal/watcher"
)

// pollInterval is how often the main loop wakes to check the debounce
// queue for due paths when no watcher activity is pending.
const pollInterval = 100 * time.Millisecond

// debounceWindow is how long a path must sit untouched in the debounce
// queue before it is considered due (spec §4.5, "last-seen-instant").
const debounceWindow = 300 * time.Millisecond

// qualityWindow and qualityFloor parameterize the C12 monitor attached
// to every pipeline run.
const qualityWindow = 20
const qualityFloor = 0.5

// Indexer owns the full component wiring for one workspace: the watcher,
// debounce queue, observer, pipeline, and the store/blob handles they
// share.
type Indexer struct {
	root     string
	store    *store.Store
	blobs    *store.BlobStore
	facade   *parsefacade.Facade
	observer *observer.Observer
	pipeline *pipeline.Pipeline
	watcher  *watcher.Watcher
	queue    *debounce.Queue
	Search   *search.Surface
}

// Boot implements the startup half of spec §4.9: create the workspace
// state directory, open C2/C3, construct C9 and the Observer, and wire
// them to the polling watcher. verbose gates SIR_STORED/event emission.
func Boot(workspaceRoot string, cfg *config.Config, verbose bool) (*Indexer, error) {
	stateDir := filepath.Join(workspaceRoot, ".aether")
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return nil, fmt.Errorf("indexer: create state dir: %w", err)
	}

	st, err := store.Open(filepath.Join(stateDir, "meta.sqlite"))
	if err != nil {
		return nil, fmt.Errorf("indexer: open store: %w", err)
	}

	blobs, err := store.NewBlobStore(filepath.Join(stateDir, "sir"))
	if err != nil {
		return nil, fmt.Errorf("indexer: open blob store: %w", err)
	}

	facade := parsefacade.New()
	obs := observer.New(workspaceRoot, facade)

	provider := inference.New(inference.Config{
		Provider: providerKind(cfg.Inference.Provider),
		Model:    cfg.Inference.Model,
		Endpoint: cfg.Inference.Endpoint,
		APIKey:   cfg.Inference.APIKey(),
	})

	monitor := quality.New(qualityWindow, qualityFloor)

	var events *logging.EventWriter
	if verbose {
		events = logging.NewEventWriter(os.Stdout, true)
	}

	concurrency := int64(cfg.Inference.Concurrency)
	pipe := pipeline.New(pipeline.Config{WorkspaceRoot: workspaceRoot, Concurrency: concurrency}, st, blobs, provider, monitor, events)

	queue := debounce.New()
	w := watcher.New(workspaceRoot, queue, watcher.DefaultInterval)

	return &Indexer{
		root:     workspaceRoot,
		store:    st,
		blobs:    blobs,
		facade:   facade,
		observer: obs,
		pipeline: pipe,
		watcher:  w,
		queue:    queue,
		Search:   search.New(st, blobs, buildEmbeddingEngine(cfg)),
	}, nil
}

// buildEmbeddingEngine constructs the optional embedding adjunct from
// [embeddings] config; a nil return means notes are stored without
// vectors. Failure to build the configured engine is logged and treated
// the same as "disabled" — the daemon never blocks indexing on it.
func buildEmbeddingEngine(cfg *config.Config) embedding.EmbeddingEngine {
	if !cfg.Embeddings.Enabled {
		return nil
	}

	ecfg := embedding.Config{Provider: cfg.Embeddings.Provider}
	switch cfg.Embeddings.Provider {
	case "cloud":
		ecfg.CloudEndpoint = cfg.Embeddings.Cloud.Endpoint
		ecfg.CloudModel = cfg.Embeddings.Cloud.Model
		ecfg.CloudAPIKey = cfg.Embeddings.Cloud.APIKey().Reveal()
	default:
		ecfg.OllamaEndpoint = cfg.Embeddings.Ollama.Endpoint
		ecfg.OllamaModel = cfg.Embeddings.Ollama.Model
	}

	engine, err := embedding.NewEngine(ecfg)
	if err != nil {
		logging.Get(logging.CategoryBoot).Warn("embedding engine disabled: %v", err)
		return nil
	}

	if hc, ok := engine.(embedding.HealthChecker); ok {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hc.HealthCheck(ctx); err != nil {
			logging.Get(logging.CategoryBoot).Warn("embedding engine %s failed health check, notes will still attempt to embed: %v", engine.Name(), err)
		}
	}
	return engine
}

// providerKind maps the config's provider name (which uses the spec's
// "qwen3_local" label) onto the inference package's internal selector.
func providerKind(name string) string {
	if name == "qwen3_local" {
		return "local"
	}
	return name
}

// Close releases the store and the parse façade's tree-sitter parsers.
// The blob store holds no open handles.
func (idx *Indexer) Close() error {
	idx.facade.Close()
	return idx.store.Close()
}

// SeedAndWatch runs the initial scan and then blocks running the main
// loop until ctx is canceled (spec §4.9: "Seed the Observer from disk;
// for each initial event feed C9 ... Then enter the main loop").
func (idx *Indexer) SeedAndWatch(ctx context.Context) error {
	if err := idx.Seed(ctx); err != nil {
		return err
	}
	return idx.Watch(ctx)
}

// Seed performs the initial scan only, without starting the watcher.
func (idx *Indexer) Seed(ctx context.Context) error {
	events, err := idx.observer.SeedFromDisk(ctx)
	if err != nil {
		return fmt.Errorf("indexer: seed from disk: %w", err)
	}
	for _, ev := range events {
		if err := idx.pipeline.Process(ctx, ev); err != nil {
			return fmt.Errorf("indexer: seed pipeline for %s: %w", ev.FilePath, err)
		}
	}
	logging.Get(logging.CategoryBoot).Info("seed complete: %d file(s) produced symbol events", len(events))
	return nil
}

// Watch starts the watcher and runs the cooperative main loop from spec
// §4.9 until ctx is canceled: poll for due paths, process one at a time,
// feed the resulting event fully through the pipeline before considering
// the next path ("one path's SIR work must complete before the next path
// is processed").
func (idx *Indexer) Watch(ctx context.Context) error {
	idx.watcher.Start(ctx)
	defer idx.watcher.Stop()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := idx.drainOnce(ctx); err != nil {
				return err
			}
		}
	}
}

// drainOnce processes every path currently due in the debounce queue, in
// lexicographic order (spec §5, "drain_due order").
func (idx *Indexer) drainOnce(ctx context.Context) error {
	due := idx.queue.DrainDue(time.Now(), debounceWindow)
	sort.Strings(due)
	for _, path := range due {
		event, err := idx.observer.ProcessPath(ctx, path)
		if err != nil {
			logging.Get(logging.CategoryBoot).Warn("process_path failed for %s: %v", path, err)
			continue
		}
		if event == nil {
			continue
		}
		if err := idx.pipeline.Process(ctx, event); err != nil {
			logging.Get(logging.CategoryBoot).Error("pipeline failed for %s: %v", path, err)
			continue
		}
	}
	return nil
}
