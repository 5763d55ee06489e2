// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/clubops/standings/internal/domain/model"
)

// PreferenceDependencies defines the interface for preference submission.
type PreferenceDependencies interface {
	SubmitPreferences(ctx context.Context, username string, prefs model.PreferenceList) error
}

// PreferencesHandler handles teammate preference submissions.
type PreferencesHandler struct {
	deps PreferenceDependencies
}

// NewPreferencesHandler creates a new preferences handler.
func NewPreferencesHandler(deps PreferenceDependencies) *PreferencesHandler {
	return &PreferencesHandler{deps: deps}
}

// preferencesRequest mirrors the OpenAPI schema for PUT /preferences.
type preferencesRequest struct {
	Username  string   `json:"username"`
	Title     string   `json:"title,omitempty"`
	Teammates []string `json:"teammates"`
}

func (p preferencesRequest) validate() error {
	if strings.TrimSpace(p.Username) == "" {
		return errors.New("missing username")
	}
	for _, teammate := range p.Teammates {
		if strings.TrimSpace(teammate) == "" {
			return errors.New("teammate username must not be empty")
		}
	}
	return nil
}

// HandlePutPreferences handles PUT /preferences requests. Eligibility rules
// are enforced upstream; this layer only checks shape.
func (h *PreferencesHandler) HandlePutPreferences(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_preferences"
	if r.Method != http.MethodPut {
		http.NotFound(w, r)
		return
	}
	var req preferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	prefs := model.PreferenceList{
		Title:     req.Title,
		Teammates: req.Teammates,
	}
	if err := h.deps.SubmitPreferences(r.Context(), req.Username, prefs); err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"teammates": len(req.Teammates)})
}
