// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/clubops/standings/internal/domain/model"
)

// PhaseDependencies defines the interface for phase transitions.
type PhaseDependencies interface {
	SetPhase(ctx context.Context, phase model.Phase) error
	Phase(ctx context.Context) model.Phase
}

// PhaseHandler handles collection phase requests.
type PhaseHandler struct {
	deps PhaseDependencies
}

// NewPhaseHandler creates a new phase handler.
func NewPhaseHandler(deps PhaseDependencies) *PhaseHandler {
	return &PhaseHandler{deps: deps}
}

// phaseRequest mirrors the OpenAPI schema for PUT /phase.
type phaseRequest struct {
	Phase model.Phase `json:"phase"`
}

// HandlePhase handles GET and PUT /phase requests.
func (h *PhaseHandler) HandlePhase(w http.ResponseWriter, r *http.Request) {
	const op = "api.phase"
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, phaseRequest{Phase: h.deps.Phase(r.Context())})
	case http.MethodPut:
		var req phaseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if err := h.deps.SetPhase(r.Context(), req.Phase); err != nil {
			writeDomainError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, req)
	default:
		http.NotFound(w, r)
	}
}
