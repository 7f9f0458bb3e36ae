// Package orchestration scores batches of attempts with a bounded pool of
// workers. A failing attempt never affects its siblings.
package orchestration

//go:generate go tool mockgen -source=runner.go -destination=scorer_mocks_test.go -package=orchestration

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/repcoach/callscore/internal/cache"
	"github.com/repcoach/callscore/internal/metrics"
	"github.com/repcoach/callscore/internal/models"
	"github.com/repcoach/callscore/internal/statistics"
	"github.com/repcoach/callscore/internal/transcript"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds batch concurrency when no worker count is configured.
const DefaultWorkers = 4

// Scorer scores a single attempt. [scoring.Engine] is the production implementation.
type Scorer interface {
	Score(ctx context.Context, attempt *models.Attempt) (*models.ScoringResult, error)
}

// Thresholds are the low/high score bands reported in the batch summary.
// They are informational only.
type Thresholds struct {
	Low  float64
	High float64
}

// DefaultThresholds returns the standard score bands.
func DefaultThresholds() Thresholds {
	return Thresholds{Low: 50, High: 80}
}

// Runner scores batches of attempts
type Runner struct {
	scorer     Scorer
	workers    int
	thresholds Thresholds

	// Result caching
	cache     *cache.Cache
	cacheSalt string

	// Per-attempt result records
	resultsDir string

	// Progress tracking
	progressMu sync.Mutex
	listeners  []ProgressListener
}

// ProgressListener receives progress updates
type ProgressListener func(event ProgressEvent)

// EventType represents the type of progress event
type EventType string

// EventType constants
const (
	EventBatchStart      EventType = "batch_start"
	EventBatchComplete   EventType = "batch_complete"
	EventAttemptStart    EventType = "attempt_start"
	EventAttemptComplete EventType = "attempt_complete"
	EventAttemptCached   EventType = "attempt_cached"
	EventAttemptFailed   EventType = "attempt_failed"
)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	EventType     EventType
	AttemptID     string
	AttemptNum    int
	TotalAttempts int
	Status        models.Status
	Details       map[string]any
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithWorkers sets the maximum number of attempts scored at once.
func WithWorkers(n int) RunnerOption {
	return func(r *Runner) {
		r.workers = n
	}
}

// WithCache enables result caching. salt is mixed into every key and should
// change whenever engine settings that affect scores change.
func WithCache(c *cache.Cache, salt string) RunnerOption {
	return func(r *Runner) {
		r.cache = c
		r.cacheSalt = salt
	}
}

// WithResultsDir writes one JSON record per attempt into dir.
func WithResultsDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.resultsDir = dir
	}
}

// WithThresholds sets the score bands used by the summary.
func WithThresholds(t Thresholds) RunnerOption {
	return func(r *Runner) {
		r.thresholds = t
	}
}

// NewRunner creates a new batch runner
func NewRunner(scorer Scorer, opts ...RunnerOption) *Runner {
	r := &Runner{
		scorer:     scorer,
		workers:    DefaultWorkers,
		thresholds: DefaultThresholds(),
		listeners:  []ProgressListener{},
	}
	for _, o := range opts {
		o(r)
	}
	if r.workers <= 0 {
		r.workers = DefaultWorkers
	}
	return r
}

// OnProgress registers a progress listener
func (r *Runner) OnProgress(listener ProgressListener) {
	r.progressMu.Lock()
	defer r.progressMu.Unlock()
	r.listeners = append(r.listeners, listener)
}

func (r *Runner) notifyProgress(event ProgressEvent) {
	r.progressMu.Lock()
	listeners := make([]ProgressListener, len(r.listeners))
	copy(listeners, r.listeners)
	r.progressMu.Unlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// Run scores every attempt and returns the outcomes in input order. Scoring
// failures are recorded on their item. Once ctx is cancelled, attempts that
// have not started are recorded as failed with the context error.
func (r *Runner) Run(ctx context.Context, attempts []*models.Attempt) *models.BatchOutcome {
	startTime := time.Now()
	total := len(attempts)

	r.notifyProgress(ProgressEvent{EventType: EventBatchStart, TotalAttempts: total})

	items := make([]models.ItemOutcome, total)

	g := errgroup.Group{}
	g.SetLimit(r.workers)

	for i, attempt := range attempts {
		g.Go(func() error {
			items[i] = r.runAttempt(ctx, attempt, i+1, total)
			return nil
		})
	}
	_ = g.Wait()

	outcome := &models.BatchOutcome{
		Timestamp:  startTime,
		DurationMs: time.Since(startTime).Milliseconds(),
		Items:      items,
		Summary:    Summarize(items, r.thresholds),
	}

	r.notifyProgress(ProgressEvent{
		EventType:     EventBatchComplete,
		TotalAttempts: total,
		Details: map[string]any{
			"scored": outcome.Summary.Scored,
			"failed": outcome.Summary.Failed,
		},
	})

	return outcome
}

func (r *Runner) runAttempt(ctx context.Context, attempt *models.Attempt, num, total int) (item models.ItemOutcome) {
	id := fmt.Sprintf("attempt-%d", num)
	if attempt != nil && attempt.ID != "" {
		id = attempt.ID
	}

	defer func() {
		if p := recover(); p != nil {
			item = failedItem(id, fmt.Errorf("panic while scoring: %v", p))
		}
		r.finishAttempt(item, num, total)
	}()

	if err := ctx.Err(); err != nil {
		return failedItem(id, err)
	}

	r.notifyProgress(ProgressEvent{
		EventType:     EventAttemptStart,
		AttemptID:     id,
		AttemptNum:    num,
		TotalAttempts: total,
	})

	result, cached, err := r.score(ctx, attempt)
	if err != nil {
		return failedItem(id, err)
	}

	return models.ItemOutcome{
		AttemptID: id,
		Status:    models.StatusScored,
		Result:    result,
		Cached:    cached,
	}
}

func (r *Runner) score(ctx context.Context, attempt *models.Attempt) (*models.ScoringResult, bool, error) {
	if attempt == nil {
		return nil, false, fmt.Errorf("%w: no attempt", models.ErrInvalidTranscript)
	}
	if r.cache == nil {
		result, err := r.scorer.Score(ctx, attempt)
		return result, false, err
	}

	cacheKey, err := cache.CacheKey(attempt, r.cacheSalt)
	if err != nil {
		slog.Warn("Failed to build cache key", "attempt", attempt.ID, "error", err)
		result, err := r.scorer.Score(ctx, attempt)
		return result, false, err
	}

	if cached, found := r.cache.Get(cacheKey); found {
		return cached, true, nil
	}

	result, err := r.scorer.Score(ctx, attempt)
	if err != nil {
		return nil, false, err
	}
	if err := r.cache.Put(cacheKey, result); err != nil {
		slog.Warn("Failed to write cache", "attempt", attempt.ID, "error", err)
	}
	return result, false, nil
}

func (r *Runner) finishAttempt(item models.ItemOutcome, num, total int) {
	r.writeRecord(item)

	event := ProgressEvent{
		EventType:     EventAttemptComplete,
		AttemptID:     item.AttemptID,
		AttemptNum:    num,
		TotalAttempts: total,
		Status:        item.Status,
	}

	switch {
	case item.Status == models.StatusError:
		slog.Warn("Attempt failed", "attempt", item.AttemptID, "kind", item.ErrorKind, "error", item.Error)
		event.EventType = EventAttemptFailed
		event.Details = map[string]any{"error_kind": item.ErrorKind, "error": item.Error}
	case item.Cached:
		event.EventType = EventAttemptCached
		event.Details = map[string]any{"score": item.Result.Score.TotalWeightedScore}
	default:
		event.Details = map[string]any{"score": item.Result.Score.TotalWeightedScore}
	}

	r.notifyProgress(event)
}

func (r *Runner) writeRecord(item models.ItemOutcome) {
	if r.resultsDir == "" {
		return
	}
	rec := transcript.BuildAttemptRecord(item, time.Now())
	if _, err := transcript.Write(r.resultsDir, rec); err != nil {
		slog.Warn("Failed to write attempt record", "attempt", item.AttemptID, "error", err)
	}
}

func failedItem(id string, err error) models.ItemOutcome {
	return models.ItemOutcome{
		AttemptID: id,
		Status:    models.StatusError,
		ErrorKind: models.ErrorKind(err),
		Error:     err.Error(),
	}
}

// Summarize aggregates the scored items of a batch. Failed items only count
// toward Total and Failed.
func Summarize(items []models.ItemOutcome, thresholds Thresholds) models.BatchSummary {
	s := models.BatchSummary{Total: len(items)}

	var scores []float64
	for _, item := range items {
		if item.Status != models.StatusScored || item.Result == nil {
			s.Failed++
			continue
		}
		scores = append(scores, item.Result.Score.TotalWeightedScore)
	}
	s.Scored = len(scores)

	if len(scores) == 0 {
		return s
	}

	s.MeanScore = metrics.Mean(scores)
	s.StdDev = metrics.StdDev(scores)
	s.MinScore, s.MaxScore = metrics.Range(scores)
	s.LowCount, s.HighCount = metrics.Bands(scores, thresholds.Low, thresholds.High)

	ci := statistics.BootstrapCI(scores, 0.95)
	s.CI95Lo, s.CI95Hi = ci.Lower, ci.Upper
	s.NormalCI95Lo, s.NormalCI95Hi = metrics.ConfidenceInterval95(scores)

	return s
}
