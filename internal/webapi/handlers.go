package webapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/repcoach/callscore/internal/models"
)

// Version is set at build time or defaults to dev.
var Version = "dev"

// DefaultMaxBodyBytes bounds request bodies when no limit is configured.
const DefaultMaxBodyBytes int64 = 10 << 20

// Scorer scores a single attempt.
type Scorer interface {
	Score(ctx context.Context, attempt *models.Attempt) (*models.ScoringResult, error)
}

// BatchRunner scores many attempts with per-item failure isolation.
type BatchRunner interface {
	Run(ctx context.Context, attempts []*models.Attempt) *models.BatchOutcome
}

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	scorer       Scorer
	runner       BatchRunner
	store        ResultStore
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewHandlers creates Handlers. store may be nil, in which case the results
// endpoints report an empty list.
func NewHandlers(scorer Scorer, runner BatchRunner, store ResultStore, maxBodyBytes int64, logger *slog.Logger) *Handlers {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	if store == nil {
		store = NewFileStore("")
	}
	return &Handlers{
		scorer:       scorer,
		runner:       runner,
		store:        store,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// HandleScore scores the attempt in the request body.
func (h *Handlers) HandleScore(w http.ResponseWriter, r *http.Request) {
	var attempt models.Attempt
	if !h.decode(w, r, &attempt) {
		return
	}

	result, err := h.scorer.Score(r.Context(), &attempt)
	if err != nil {
		h.writeScoringError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleBatch scores every attempt in the request body. Per-attempt failures
// are reported inside the outcome, so the response is 200 unless the body
// itself is unusable.
func (h *Handlers) HandleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	if len(req.Attempts) == 0 {
		writeError(w, http.StatusBadRequest, "attempts must not be empty", "error")
		return
	}

	writeJSON(w, http.StatusOK, h.runner.Run(r.Context(), req.Attempts))
}

// HandleResults returns stored attempt records, with optional sort/order
// query params.
func (h *Handlers) HandleResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.store.ListResults(r.URL.Query().Get("sort"), r.URL.Query().Get("order"))
	if err != nil {
		h.logger.Error("listing results failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error(), "error")
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// HandleResultDetail returns one stored attempt record.
func (h *Handlers) HandleResultDetail(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "result id is required", "error")
		return
	}

	rec, err := h.store.GetResult(id)
	if err != nil {
		if errors.Is(err, ErrResultNotFound) {
			writeError(w, http.StatusNotFound, "result not found", "error")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error(), "error")
		}
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// RegisterRoutes registers all web API routes on the given mux.
func RegisterRoutes(mux *http.ServeMux, h *Handlers) {
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("POST /api/score", h.HandleScore)
	mux.HandleFunc("POST /api/batch", h.HandleBatch)
	mux.HandleFunc("GET /api/results", h.HandleResults)
	mux.HandleFunc("GET /api/results/{id}", h.HandleResultDetail)
}

// decode reads a JSON body into v. On failure it writes the response and
// returns false. A rubric that fails to parse is an invalid_rubric error, not
// a malformed request.
func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	dec := json.NewDecoder(body)

	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit), "error")
		case errors.Is(err, models.ErrInvalidRubric):
			writeError(w, http.StatusUnprocessableEntity, err.Error(), models.ErrorKind(err))
		default:
			writeError(w, http.StatusBadRequest, "malformed JSON: "+err.Error(), "error")
		}
		return false
	}
	return true
}

func (h *Handlers) writeScoringError(w http.ResponseWriter, r *http.Request, err error) {
	kind := models.ErrorKind(err)
	switch {
	case kind != "error":
		writeError(w, http.StatusUnprocessableEntity, err.Error(), kind)
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, err.Error(), kind)
	default:
		h.logger.Error("scoring failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error(), kind)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg, kind string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Kind: kind})
}
