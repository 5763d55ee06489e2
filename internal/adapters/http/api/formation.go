// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/clubops/standings/internal/domain/formation"
)

// FormationDependencies defines the interface for formation runs.
type FormationDependencies interface {
	RunFormation(ctx context.Context) (formation.Result, error)
}

// FormationHandler handles formation run requests.
type FormationHandler struct {
	deps FormationDependencies
}

// NewFormationHandler creates a new formation handler.
func NewFormationHandler(deps FormationDependencies) *FormationHandler {
	return &FormationHandler{deps: deps}
}

// HandleRunFormation handles POST /formation/run requests. The run is
// deterministic; repeating it without input changes returns the same teams.
func (h *FormationHandler) HandleRunFormation(w http.ResponseWriter, r *http.Request) {
	const op = "api.run_formation"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	result, err := h.deps.RunFormation(r.Context())
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
