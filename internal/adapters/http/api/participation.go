// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// ParticipationDependencies defines the interface for formation opt-ins.
type ParticipationDependencies interface {
	SetParticipation(ctx context.Context, username string, optedIn bool) error
}

// ParticipationHandler handles team-formation opt-in requests.
type ParticipationHandler struct {
	deps ParticipationDependencies
}

// NewParticipationHandler creates a new participation handler.
func NewParticipationHandler(deps ParticipationDependencies) *ParticipationHandler {
	return &ParticipationHandler{deps: deps}
}

// participationRequest mirrors the OpenAPI schema for PUT /participation.
type participationRequest struct {
	Username string `json:"username"`
	OptedIn  bool   `json:"opted_in"`
}

func (p participationRequest) validate() error {
	if strings.TrimSpace(p.Username) == "" {
		return errors.New("missing username")
	}
	return nil
}

// HandlePutParticipation handles PUT /participation requests.
func (h *ParticipationHandler) HandlePutParticipation(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_participation"
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}
	var req participationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.SetParticipation(r.Context(), req.Username, req.OptedIn); err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"opted_in": req.OptedIn})
}
