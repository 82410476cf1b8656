package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"aether/internal/ident"
	"aether/internal/logging"
	"aether/internal/types"
)

// BlobStore is the filesystem half of C3: one canonical-JSON file per
// symbol under <root>/sir/<symbol_id>.json, written atomically via a
// write-then-rename so concurrent readers never observe a partial file.
type BlobStore struct {
	root string
}

// NewBlobStore returns a BlobStore rooted at dir (typically
// "<workspace>/.aether/sir").
func NewBlobStore(dir string) (*BlobStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: create blob root %s: %v", types.ErrBlobIO, dir, err)
	}
	return &BlobStore{root: dir}, nil
}

func (b *BlobStore) pathFor(symbolID string) string {
	return filepath.Join(b.root, symbolID+".json")
}

// WriteSIR atomically writes the canonical SIR blob for symbolID, using
// the same key-sorted, list-sorted serialization ident.CanonicalSIR/
// SirHash compute, so the bytes on disk match sir_hash (spec §6, "SIR
// JSON on-disk"). The temp-file-then-rename sequence means a reader
// either sees the old complete file or the new complete file, never a
// truncated one.
func (b *BlobStore) WriteSIR(symbolID string, sir types.SIR) error {
	payload := []byte(ident.CanonicalSIR(sir))

	final := b.pathFor(symbolID)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, payload, 0644); err != nil {
		return fmt.Errorf("%w: write temp blob for %s: %v", types.ErrBlobIO, symbolID, err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: rename blob for %s: %v", types.ErrBlobIO, symbolID, err)
	}
	logging.BlobDebug("wrote sir blob symbol_id=%s bytes=%d", symbolID, len(payload))
	return nil
}

// ReadSIR loads the blob for symbolID. A missing blob is a recoverable
// state (spec §4.3) rather than an error: it returns (nil, false, nil).
func (b *BlobStore) ReadSIR(symbolID string) (*types.SIR, bool, error) {
	data, err := os.ReadFile(b.pathFor(symbolID))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: read blob for %s: %v", types.ErrBlobIO, symbolID, err)
	}

	var sir types.SIR
	if err := json.Unmarshal(data, &sir); err != nil {
		return nil, false, fmt.Errorf("%w: decode blob for %s: %v", types.ErrBlobIO, symbolID, err)
	}
	return &sir, true, nil
}

// DeleteSIR removes the blob for symbolID. A missing blob is not an error
// (spec §4.7 step 1, "delete the SIR blob (missing is OK)").
func (b *BlobStore) DeleteSIR(symbolID string) error {
	err := os.Remove(b.pathFor(symbolID))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("%w: delete blob for %s: %v", types.ErrBlobIO, symbolID, err)
	}
	return nil
}

// Exists reports whether a blob file is currently present for symbolID.
func (b *BlobStore) Exists(symbolID string) bool {
	_, err := os.Stat(b.pathFor(symbolID))
	return err == nil
}
