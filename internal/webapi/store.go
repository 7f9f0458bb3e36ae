package webapi

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/repcoach/callscore/internal/transcript"
)

// ErrResultNotFound is returned when an ID does not match any stored record.
var ErrResultNotFound = errors.New("result not found")

// ResultStore provides access to attempt records written by batch runs.
type ResultStore interface {
	// ListResults returns all records, sorted by the given field and order.
	ListResults(sortField, order string) ([]ResultSummary, error)
	// GetResult returns a single record.
	GetResult(id string) (*transcript.AttemptRecord, error)
}

// FileStore reads attempt record JSON files from a results directory. A
// record's ID is its file name without the extension.
type FileStore struct {
	dir string

	mu      sync.RWMutex
	records map[string]*transcript.AttemptRecord
	loaded  bool
}

// NewFileStore creates a FileStore that reads records from dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{
		dir:     dir,
		records: make(map[string]*transcript.AttemptRecord),
	}
}

// load reads all record files from the configured directory. Files that are
// not attempt records are skipped.
func (fs *FileStore) load() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.records = make(map[string]*transcript.AttemptRecord)

	if fs.dir == "" {
		fs.loaded = true
		return nil
	}

	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		if os.IsNotExist(err) {
			fs.loaded = true
			return nil
		}
		return err
	}

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(fs.dir, e.Name()))
		if err != nil {
			continue
		}
		var rec transcript.AttemptRecord
		if err := json.Unmarshal(data, &rec); err != nil || rec.AttemptID == "" {
			continue
		}
		fs.records[strings.TrimSuffix(e.Name(), ".json")] = &rec
	}

	fs.loaded = true
	return nil
}

func (fs *FileStore) ensureLoaded() error {
	fs.mu.RLock()
	if fs.loaded {
		fs.mu.RUnlock()
		return nil
	}
	fs.mu.RUnlock()
	return fs.load()
}

// Reload forces a fresh reload of all records from disk.
func (fs *FileStore) Reload() error {
	return fs.load()
}

// ListResults returns all records sorted by the given field and order.
func (fs *FileStore) ListResults(sortField, order string) ([]ResultSummary, error) {
	if err := fs.ensureLoaded(); err != nil {
		return nil, err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	results := make([]ResultSummary, 0, len(fs.records))
	for id, rec := range fs.records {
		results = append(results, recordToSummary(id, rec))
	}

	sortResults(results, sortField, order)
	return results, nil
}

// GetResult returns the record stored under id.
func (fs *FileStore) GetResult(id string) (*transcript.AttemptRecord, error) {
	if err := fs.ensureLoaded(); err != nil {
		return nil, err
	}

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	rec, ok := fs.records[id]
	if !ok {
		return nil, ErrResultNotFound
	}
	return rec, nil
}

func recordToSummary(id string, rec *transcript.AttemptRecord) ResultSummary {
	s := ResultSummary{
		ID:        id,
		AttemptID: rec.AttemptID,
		Status:    rec.Status,
		ErrorKind: rec.ErrorKind,
		ScoredAt:  rec.ScoredAt,
	}
	if rec.Result != nil {
		score := rec.Result.Score.DisplayScore
		s.DisplayScore = &score
	}
	return s
}

func sortResults(results []ResultSummary, field, order string) {
	less := func(i, j int) bool {
		switch field {
		case "score":
			return scoreOf(results[i]) < scoreOf(results[j])
		case "attempt":
			return results[i].AttemptID < results[j].AttemptID
		default: // "scored_at" or empty
			if results[i].ScoredAt.Equal(results[j].ScoredAt) {
				return results[i].ID < results[j].ID
			}
			return results[i].ScoredAt.Before(results[j].ScoredAt)
		}
	}

	if order == "asc" {
		sort.SliceStable(results, less)
	} else {
		sort.SliceStable(results, func(i, j int) bool { return less(j, i) })
	}
}

// scoreOf ranks errored records below every scored one.
func scoreOf(s ResultSummary) int {
	if s.DisplayScore == nil {
		return -1
	}
	return *s.DisplayScore
}

var _ ResultStore = (*FileStore)(nil)
