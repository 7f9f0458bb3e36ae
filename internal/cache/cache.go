// Package cache stores scoring results on disk, keyed by the content of the
// attempt that produced them.
package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/repcoach/callscore/internal/models"
)

const entryExt = ".json.zst"

// Cache provides caching for scoring results
type Cache struct {
	dir string
	mu  sync.Mutex
}

// New creates a new cache instance with the specified directory
func New(dir string) *Cache {
	return &Cache{dir: dir}
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// CacheKey generates a cache key for an attempt. The key covers everything that
// can change the score:
// - transcript segments
// - call duration
// - persona
// - rubric
// - salt, which callers use for engine settings such as quality penalties
//
// The attempt ID is not part of the key.
func CacheKey(attempt *models.Attempt, salt string) (string, error) {
	h := sha256.New()

	if err := writeString(h, salt); err != nil {
		return "", err
	}

	transcriptJSON, err := json.Marshal(attempt.Transcript)
	if err != nil {
		return "", fmt.Errorf("marshaling transcript: %w", err)
	}
	if _, err := h.Write(transcriptJSON); err != nil {
		return "", err
	}

	if err := writeString(h, strconv.FormatFloat(attempt.CallDurationSec, 'g', -1, 64)); err != nil {
		return "", err
	}

	personaJSON, err := json.Marshal(attempt.Persona)
	if err != nil {
		return "", fmt.Errorf("marshaling persona: %w", err)
	}
	if _, err := h.Write(personaJSON); err != nil {
		return "", err
	}

	// map keys are sorted by encoding/json so the rubric hashes stably
	rubricJSON, err := json.Marshal(attempt.Rubric.Wire())
	if err != nil {
		return "", fmt.Errorf("marshaling rubric: %w", err)
	}
	if _, err := h.Write(rubricJSON); err != nil {
		return "", err
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get retrieves a cached scoring result if it exists
func (c *Cache) Get(key string) (*models.ScoringResult, bool) {
	if c.dir == "" {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.Open(c.cachePath(key))
	if err != nil {
		// Cache miss
		return nil, false
	}
	defer f.Close() //nolint:errcheck

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, false
	}
	defer dec.Close()

	var result models.ScoringResult
	if err := json.NewDecoder(dec).Decode(&result); err != nil {
		// Invalid cache entry, treat as miss
		return nil, false
	}

	return &result, true
}

// Put stores a scoring result in the cache
func (c *Cache) Put(key string, result *models.ScoringResult) error {
	if c.dir == "" {
		return nil
	}

	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}

	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		return fmt.Errorf("creating encoder: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		_ = enc.Close()
		return fmt.Errorf("compressing result: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("compressing result: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	if err := os.WriteFile(c.cachePath(key), buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing cache file: %w", err)
	}

	return nil
}

// Clear removes all cached results
func (c *Cache) Clear() error {
	if c.dir == "" {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		return nil
	}

	// Only remove directories that look like ours
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("reading cache directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			return fmt.Errorf("cache directory contains subdirectories - refusing to delete for safety")
		}
		if !strings.HasSuffix(entry.Name(), entryExt) {
			return fmt.Errorf("cache directory contains non-cache files - refusing to delete for safety")
		}
	}

	return os.RemoveAll(c.dir)
}

// cachePath returns the file path for a cache key
func (c *Cache) cachePath(key string) string {
	return filepath.Join(c.dir, key+entryExt)
}

func writeString(w io.Writer, s string) error {
	// null byte delimiter prevents collisions between adjacent fields
	_, err := w.Write([]byte(s + "\x00"))
	return err
}
