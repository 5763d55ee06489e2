// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/clubops/standings/internal/domain/model"
)

// ProgressDependencies defines the interface for rank-movement queries.
type ProgressDependencies interface {
	Movements(ctx context.Context, targetContestID string) ([]model.Movement, error)
}

// ProgressHandler handles rank-movement requests.
type ProgressHandler struct {
	deps ProgressDependencies
}

// NewProgressHandler creates a new progress handler.
func NewProgressHandler(deps ProgressDependencies) *ProgressHandler {
	return &ProgressHandler{deps: deps}
}

// HandleGetProgress handles GET /progress?contest=ID requests.
func (h *ProgressHandler) HandleGetProgress(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_progress"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	contestID := r.URL.Query().Get("contest")
	if contestID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	movements, err := h.deps.Movements(r.Context(), contestID)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, movements)
}
