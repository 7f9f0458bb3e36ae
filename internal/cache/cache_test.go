package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/repcoach/callscore/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAttempt(t *testing.T) *models.Attempt {
	t.Helper()
	rubric, err := models.ParseRubric(map[string]any{
		"required_phrases": map[string]any{"weight": 1.0, "phrases": []any{"pricing"}},
		"open_questions":   map[string]any{"weight": 2.0, "minimum_count": 1},
	})
	require.NoError(t, err)

	return &models.Attempt{
		ID: "attempt-1",
		Transcript: []models.TranscriptSegment{
			{Speaker: models.SpeakerTrainee, Text: "What matters most to you?", StartTimeMs: 0, EndTimeMs: 2000},
			{Speaker: models.SpeakerAgent, Text: "Pricing.", StartTimeMs: 2000, EndTimeMs: 3000},
		},
		CallDurationSec: 30,
		Persona:         &models.Persona{Role: "buyer"},
		Rubric:          rubric,
	}
}

func testResult(score float64) *models.ScoringResult {
	return &models.ScoringResult{
		KPIs: models.AttemptKPIs{Global: models.GlobalKPIs{TalkMs: 2000, TalkListenRatio: "67:33"}},
		Score: models.ScoreBreakdown{
			TotalWeightedScore: score,
			DisplayScore:       models.DisplayRound(score),
			Breakdown:          map[string]float64{"open_questions": score},
		},
	}
}

func TestCacheKey(t *testing.T) {
	attempt := testAttempt(t)

	key1, err := CacheKey(attempt, "v1")
	require.NoError(t, err)
	assert.Len(t, key1, 64) // SHA256 hex is 64 chars

	key2, err := CacheKey(testAttempt(t), "v1")
	require.NoError(t, err)
	assert.Equal(t, key1, key2)

	t.Run("ID does not change key", func(t *testing.T) {
		other := testAttempt(t)
		other.ID = "attempt-2"
		key, err := CacheKey(other, "v1")
		require.NoError(t, err)
		assert.Equal(t, key1, key)
	})

	t.Run("salt changes key", func(t *testing.T) {
		key, err := CacheKey(attempt, "v2")
		require.NoError(t, err)
		assert.NotEqual(t, key1, key)
	})

	t.Run("transcript changes key", func(t *testing.T) {
		other := testAttempt(t)
		other.Transcript[0].Text = "What matters most?"
		key, err := CacheKey(other, "v1")
		require.NoError(t, err)
		assert.NotEqual(t, key1, key)
	})

	t.Run("call duration changes key", func(t *testing.T) {
		other := testAttempt(t)
		other.CallDurationSec = 31
		key, err := CacheKey(other, "v1")
		require.NoError(t, err)
		assert.NotEqual(t, key1, key)
	})

	t.Run("rubric weight changes key", func(t *testing.T) {
		other := testAttempt(t)
		other.Rubric.Criteria[0].Weight = 5
		key, err := CacheKey(other, "v1")
		require.NoError(t, err)
		assert.NotEqual(t, key1, key)
	})

	t.Run("missing persona and rubric", func(t *testing.T) {
		other := testAttempt(t)
		other.Persona = nil
		other.Rubric = nil
		key, err := CacheKey(other, "v1")
		require.NoError(t, err)
		assert.NotEqual(t, key1, key)
	})
}

func TestCache_GetPut(t *testing.T) {
	c := New(t.TempDir())

	retrieved, found := c.Get("key")
	assert.False(t, found)
	assert.Nil(t, retrieved)

	require.NoError(t, c.Put("key", testResult(87.5)))

	retrieved, found = c.Get("key")
	require.True(t, found)
	assert.Equal(t, testResult(87.5), retrieved)
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	dir := t.TempDir()
	c := New(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad"+entryExt), []byte("not zstd"), 0644))

	_, found := c.Get("bad")
	assert.False(t, found)
}

func TestCache_EmptyDir(t *testing.T) {
	c := New("")

	_, found := c.Get("any-key")
	assert.False(t, found)
	assert.NoError(t, c.Put("key", testResult(1)))
	assert.NoError(t, c.Clear())
}

func TestCache_Clear_SafetyChecks(t *testing.T) {
	t.Run("refuses to clear directory with subdirectories", func(t *testing.T) {
		cacheDir := t.TempDir()
		c := New(cacheDir)
		require.NoError(t, c.Put("key1", testResult(1)))
		require.NoError(t, os.Mkdir(filepath.Join(cacheDir, "subdir"), 0755))

		err := c.Clear()
		assert.ErrorContains(t, err, "subdirectories")

		_, err = os.Stat(cacheDir)
		assert.NoError(t, err)
	})

	t.Run("refuses to clear directory with foreign files", func(t *testing.T) {
		cacheDir := t.TempDir()
		c := New(cacheDir)
		require.NoError(t, c.Put("key1", testResult(1)))
		require.NoError(t, os.WriteFile(filepath.Join(cacheDir, "README.txt"), []byte("test"), 0644))

		err := c.Clear()
		assert.ErrorContains(t, err, "non-cache files")
	})

	t.Run("successfully clears valid cache directory", func(t *testing.T) {
		cacheDir := t.TempDir()
		c := New(cacheDir)
		require.NoError(t, c.Put("key1", testResult(1)))
		require.NoError(t, c.Put("key2", testResult(2)))

		require.NoError(t, c.Clear())

		_, err := os.Stat(cacheDir)
		assert.True(t, os.IsNotExist(err))

		_, found := c.Get("key1")
		assert.False(t, found)
	})
}

func TestCache_ConcurrentOperations(t *testing.T) {
	cacheDir := t.TempDir()
	c := New(cacheDir)

	const numGoroutines = 8
	const numOperations = 20

	var wg sync.WaitGroup
	for i := range numGoroutines {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := range numOperations {
				key := fmt.Sprintf("key-%d-%d", id, j)
				assert.NoError(t, c.Put(key, testResult(float64(j))))
				_, found := c.Get(key)
				assert.True(t, found)
			}
		}(i)
	}
	wg.Wait()

	entries, err := os.ReadDir(cacheDir)
	require.NoError(t, err)
	assert.Len(t, entries, numGoroutines*numOperations)
}
