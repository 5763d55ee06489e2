// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// OptOutDependencies defines the interface for contest opt-outs.
type OptOutDependencies interface {
	SetOptOut(ctx context.Context, username, contestID string, optedOut bool) error
}

// OptOutHandler handles contest opt-out requests.
type OptOutHandler struct {
	deps OptOutDependencies
}

// NewOptOutHandler creates a new opt-out handler.
func NewOptOutHandler(deps OptOutDependencies) *OptOutHandler {
	return &OptOutHandler{deps: deps}
}

// optOutRequest mirrors the OpenAPI schema for PUT /optouts.
type optOutRequest struct {
	Username  string `json:"username"`
	ContestID string `json:"contest_id"`
	OptedOut  bool   `json:"opted_out"`
}

func (o optOutRequest) validate() error {
	switch {
	case strings.TrimSpace(o.Username) == "":
		return errors.New("missing username")
	case strings.TrimSpace(o.ContestID) == "":
		return errors.New("missing contest_id")
	}
	return nil
}

// HandlePutOptOut handles PUT /optouts requests.
func (h *OptOutHandler) HandlePutOptOut(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_optout"
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}
	var req optOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.SetOptOut(r.Context(), req.Username, req.ContestID, req.OptedOut); err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"opted_out": req.OptedOut})
}
