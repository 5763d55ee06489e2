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

// ContestDependencies defines the interface for contest administration.
type ContestDependencies interface {
	SetContests(ctx context.Context, contests model.ContestSet) error
	Contests(ctx context.Context) model.ContestSet
}

// ContestsHandler handles contest set requests.
type ContestsHandler struct {
	deps ContestDependencies
}

// NewContestsHandler creates a new contests handler.
func NewContestsHandler(deps ContestDependencies) *ContestsHandler {
	return &ContestsHandler{deps: deps}
}

// contestsRequest mirrors the OpenAPI schema for PUT /contests. Order is
// chronological and authoritative for trend lookups.
type contestsRequest struct {
	Contests []model.Contest `json:"contests"`
}

func (c contestsRequest) validate() error {
	for _, contest := range c.Contests {
		if strings.TrimSpace(contest.ID) == "" {
			return errors.New("contest id must not be empty")
		}
	}
	return nil
}

// HandleContests handles GET and PUT /contests requests.
func (h *ContestsHandler) HandleContests(w http.ResponseWriter, r *http.Request) {
	const op = "api.contests"
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, contestsRequest{Contests: h.deps.Contests(r.Context())})
	case http.MethodPut:
		var req contestsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if err := h.deps.SetContests(r.Context(), req.Contests); err != nil {
			writeDomainError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int{"contests": len(req.Contests)})
	default:
		http.NotFound(w, r)
	}
}
