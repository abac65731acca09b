// Package gencache remembers what the generator last produced for a given
// manifest and role, so unchanged inputs skip regeneration.
package gencache

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"

	"solo/internal/manifest"
)

// Current schema version - increment when Entry format changes.
const schemaVersion uint16 = 1

// Cache stores generation results keyed by composite digest on disk.
// Thread-safe for concurrent access.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// Entry is one cached generation result.
type Entry struct {
	// Schema version for safe invalidation when the format changes.
	Schema uint16

	// Inputs this entry was produced from.
	ManifestHash manifest.Digest
	Role         string

	// Output location and content hash, for freshness checks.
	OutPath    string
	OutputHash manifest.Digest
	OutputLen  uint32

	// Unix milliseconds, informational only.
	GeneratedAt int64
}

// Key derives the cache key for one (manifest, role) pair. The schema
// version participates so format bumps invalidate everything at once.
func Key(manifestHash manifest.Digest, r string) manifest.Digest {
	return manifest.Combine(manifestHash, []byte(r), []byte(fmt.Sprintf("schema=%d", schemaVersion)))
}

// NewEntry builds an entry describing freshly generated output.
func NewEntry(manifestHash manifest.Digest, r, outPath string, output []byte) (*Entry, error) {
	outputLen, err := safecast.Conv[uint32](len(output))
	if err != nil {
		return nil, fmt.Errorf("generated output too large for cache entry: %w", err)
	}
	return &Entry{
		Schema:       schemaVersion,
		ManifestHash: manifestHash,
		Role:         r,
		OutPath:      outPath,
		OutputHash:   manifest.DigestBytes(output),
		OutputLen:    outputLen,
		GeneratedAt:  time.Now().UnixMilli(),
	}, nil
}

// Open initializes a disk cache at the standard location.
func Open(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// OpenAt initializes a disk cache rooted at an explicit directory.
func OpenAt(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

func (c *Cache) pathFor(key manifest.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// Subdirectory keeps the cache root readable and easy to clean.
	return filepath.Join(c.dir, "gen", hexKey+".mp")
}

// Put serializes and writes an entry, replacing atomically.
func (c *Cache) Put(key manifest.Digest, e *Entry) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := msgpack.NewEncoder(f).Encode(e); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, p)
}

// Get reads an entry. The boolean reports whether the key was present; a
// schema mismatch counts as absent.
func (c *Cache) Get(key manifest.Digest, out *Entry) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() { _ = f.Close() }()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, err
	}
	if out.Schema != schemaVersion {
		return false, nil
	}
	return true, nil
}

// Fresh reports whether the cached entry still matches what is on disk at
// its recorded output path.
func (e *Entry) Fresh() bool {
	if e == nil || e.OutPath == "" {
		return false
	}
	data, err := os.ReadFile(e.OutPath)
	if err != nil {
		return false
	}
	return manifest.DigestBytes(data) == e.OutputHash
}

// DropAll invalidates the whole cache.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
