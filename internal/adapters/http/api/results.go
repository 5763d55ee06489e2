// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/clubops/standings/internal/domain/dedupe"
	"github.com/clubops/standings/internal/domain/model"
)

// ResultDependencies defines the interface for result ingestion dependencies.
type ResultDependencies interface {
	dedupe.Deduper
	Enqueue(ctx context.Context, e model.ResultEvent) bool
}

// ResultsHandler handles result submissions.
type ResultsHandler struct {
	deps ResultDependencies
}

// NewResultsHandler creates a new results handler.
func NewResultsHandler(deps ResultDependencies) *ResultsHandler {
	return &ResultsHandler{deps: deps}
}

// HandlePostResult handles POST /results requests.
func (h *ResultsHandler) HandlePostResult(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_result"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req resultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), req.SubmissionID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	event := model.ResultEvent{
		SubmissionID: req.SubmissionID,
		Username:     req.Username,
		ContestID:    req.ContestID,
		Solved:       req.Solved,
		Penalty:      req.Penalty,
		Score:        req.Score,
		Submissions:  req.Submissions,
		Demerit:      req.Demerit,
	}

	// Try to enqueue for async processing
	if ok := h.deps.Enqueue(r.Context(), event); !ok {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), req.SubmissionID)
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", Duplicate: false})
}
