// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	repository "github.com/clubops/standings/internal/adapters/repository"
	service "github.com/clubops/standings/internal/app"
	"github.com/clubops/standings/internal/domain/dedupe"
	"github.com/clubops/standings/internal/domain/formation"
	"github.com/clubops/standings/internal/domain/model"
	"github.com/clubops/standings/internal/domain/progress"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	dedupe.Deduper

	// Enqueue pushes a result for async processing. Returns false on
	// backpressure.
	Enqueue(ctx context.Context, e model.ResultEvent) bool

	// Read operations expose standings data.
	Standings(ctx context.Context, limit int) ([]model.LeaderboardEntry, error)
	Rank(ctx context.Context, username string) (model.LeaderboardEntry, error)
	Movements(ctx context.Context, targetContestID string) ([]model.Movement, error)

	// Contest administration.
	SetContests(ctx context.Context, contests model.ContestSet) error
	Contests(ctx context.Context) model.ContestSet
	SetOptOut(ctx context.Context, username, contestID string, optedOut bool) error

	// Team formation inputs and runs.
	SetParticipation(ctx context.Context, username string, optedIn bool) error
	SubmitPreferences(ctx context.Context, username string, prefs model.PreferenceList) error
	AddManualTeam(ctx context.Context, team model.Team) error
	Teams(ctx context.Context) []model.Team
	RunFormation(ctx context.Context) (formation.Result, error)

	// Phase gating.
	SetPhase(ctx context.Context, phase model.Phase) error
	Phase(ctx context.Context) model.Phase
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler        *HealthHandler
	statsHandler         *StatsHandler
	resultsHandler       *ResultsHandler
	standingsHandler     *StandingsHandler
	rankHandler          *RankHandler
	progressHandler      *ProgressHandler
	contestsHandler      *ContestsHandler
	optOutHandler        *OptOutHandler
	participationHandler *ParticipationHandler
	preferencesHandler   *PreferencesHandler
	teamsHandler         *TeamsHandler
	formationHandler     *FormationHandler
	phaseHandler         *PhaseHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxStandingsLimit int) *Server {
	return &Server{
		healthHandler:        NewHealthHandler(),
		statsHandler:         NewStatsHandler(statsProvider),
		resultsHandler:       NewResultsHandler(deps),
		standingsHandler:     NewStandingsHandler(deps, maxStandingsLimit),
		rankHandler:          NewRankHandler(deps),
		progressHandler:      NewProgressHandler(deps),
		contestsHandler:      NewContestsHandler(deps),
		optOutHandler:        NewOptOutHandler(deps),
		participationHandler: NewParticipationHandler(deps),
		preferencesHandler:   NewPreferencesHandler(deps),
		teamsHandler:         NewTeamsHandler(deps),
		formationHandler:     NewFormationHandler(deps),
		phaseHandler:         NewPhaseHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/results", MetricsMiddleware(s.resultsHandler.HandlePostResult, "results"))
	mux.HandleFunc("/standings", MetricsMiddleware(s.standingsHandler.HandleGetStandings, "standings"))
	mux.HandleFunc("/rank/", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
	mux.HandleFunc("/progress", MetricsMiddleware(s.progressHandler.HandleGetProgress, "progress"))
	mux.HandleFunc("/contests", MetricsMiddleware(s.contestsHandler.HandleContests, "contests"))
	mux.HandleFunc("/optouts", MetricsMiddleware(s.optOutHandler.HandlePutOptOut, "optouts"))
	mux.HandleFunc("/participation", MetricsMiddleware(s.participationHandler.HandlePutParticipation, "participation"))
	mux.HandleFunc("/preferences", MetricsMiddleware(s.preferencesHandler.HandlePutPreferences, "preferences"))
	mux.HandleFunc("/teams", MetricsMiddleware(s.teamsHandler.HandleTeams, "teams"))
	mux.HandleFunc("/formation/run", MetricsMiddleware(s.formationHandler.HandleRunFormation, "formation_run"))
	mux.HandleFunc("/phase", MetricsMiddleware(s.phaseHandler.HandlePhase, "phase"))
}

// resultRequest mirrors the OpenAPI schema for POST /results.
type resultRequest struct {
	SubmissionID string   `json:"submission_id"`
	Username     string   `json:"username"`
	ContestID    string   `json:"contest_id"`
	Solved       int      `json:"solved"`
	Penalty      float64  `json:"penalty"`
	Score        *float64 `json:"score,omitempty"`
	Submissions  *int     `json:"submissions,omitempty"`
	Demerit      string   `json:"demerit,omitempty"`
	TS           string   `json:"ts"`
}

func (r resultRequest) validate() error {
	switch {
	case strings.TrimSpace(r.SubmissionID) == "":
		return errors.New("missing submission_id")
	case strings.TrimSpace(r.Username) == "":
		return errors.New("missing username")
	case strings.TrimSpace(r.ContestID) == "":
		return errors.New("missing contest_id")
	case strings.TrimSpace(r.TS) == "":
		return errors.New("missing ts")
	case r.Solved < 0:
		return errors.New("solved must not be negative")
	case r.Penalty < 0:
		return errors.New("penalty must not be negative")
	}
	if r.Submissions != nil && *r.Submissions < 0 {
		return errors.New("submissions must not be negative")
	}
	if _, err := time.Parse(time.RFC3339, r.TS); err != nil {
		return errors.New("invalid ts; must be RFC3339")
	}
	return nil
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates upstream sentinel errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrUnknownMember),
		errors.Is(err, progress.ErrUnknownContest):
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
	case errors.Is(err, service.ErrWrongPhase):
		writeError(w, http.StatusConflict, "wrong_phase", Wrap(op, err))
	case errors.Is(err, repository.ErrTeamExists),
		errors.Is(err, repository.ErrMemberAssigned):
		writeError(w, http.StatusConflict, "conflict", Wrap(op, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "not_ready", Wrap(op, err))
	case errors.Is(err, repository.ErrUnknownContest),
		errors.Is(err, repository.ErrDuplicateContest),
		errors.Is(err, repository.ErrInvalidPhase),
		errors.Is(err, repository.ErrBadTeam),
		errors.Is(err, service.ErrTooManyTeammates),
		errors.Is(err, service.ErrSelfPreference),
		errors.Is(err, service.ErrDuplicateTeammate),
		errors.Is(err, service.ErrTeammateNotBelow),
		errors.Is(err, service.ErrTeammateNotParticipant):
		writeError(w, http.StatusUnprocessableEntity, "unprocessable", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
