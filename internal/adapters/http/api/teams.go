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

// TeamDependencies defines the interface for team queries and manual teams.
type TeamDependencies interface {
	AddManualTeam(ctx context.Context, team model.Team) error
	Teams(ctx context.Context) []model.Team
}

// TeamsHandler handles team listing and manual team registration.
type TeamsHandler struct {
	deps TeamDependencies
}

// NewTeamsHandler creates a new teams handler.
func NewTeamsHandler(deps TeamDependencies) *TeamsHandler {
	return &TeamsHandler{deps: deps}
}

// manualTeamRequest mirrors the OpenAPI schema for POST /teams.
type manualTeamRequest struct {
	Title   string   `json:"title"`
	Members []string `json:"members"`
}

func (t manualTeamRequest) validate() error {
	switch {
	case strings.TrimSpace(t.Title) == "":
		return errors.New("missing title")
	case len(t.Members) == 0:
		return errors.New("missing members")
	}
	for _, member := range t.Members {
		if strings.TrimSpace(member) == "" {
			return errors.New("member username must not be empty")
		}
	}
	return nil
}

// HandleTeams handles GET and POST /teams requests. POST registers an
// admin-approved team that later formation runs must preserve unchanged.
func (h *TeamsHandler) HandleTeams(w http.ResponseWriter, r *http.Request) {
	const op = "api.teams"
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, h.deps.Teams(r.Context()))
	case http.MethodPost:
		var req manualTeamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		team := model.Team{
			Title:   req.Title,
			Members: req.Members,
			Origin:  model.TeamOriginManual,
		}
		if err := h.deps.AddManualTeam(r.Context(), team); err != nil {
			writeDomainError(w, op, err)
			return
		}
		writeJSON(w, http.StatusCreated, team)
	default:
		http.NotFound(w, r)
	}
}
