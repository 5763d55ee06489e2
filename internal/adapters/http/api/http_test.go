package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/clubops/standings/internal/adapters/http/api"
	repository "github.com/clubops/standings/internal/adapters/repository"
	service "github.com/clubops/standings/internal/app"
	"github.com/clubops/standings/internal/domain/formation"
	"github.com/clubops/standings/internal/domain/model"
	"github.com/clubops/standings/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// stubDeps implements api.Dependencies with canned behavior per test.
type stubDeps struct {
	mu   sync.Mutex
	seen map[string]bool

	enqueueOK bool
	enqueued  []model.ResultEvent

	standings    []model.LeaderboardEntry
	standingsErr error
	rankEntry    model.LeaderboardEntry
	rankErr      error
	movements    []model.Movement
	movementsErr error

	contests    model.ContestSet
	contestsErr error
	optOutErr   error

	participationErr error
	preferencesErr   error
	manualTeamErr    error
	teams            []model.Team
	formationResult  formation.Result
	formationErr     error

	phase    model.Phase
	phaseErr error
}

func newStubDeps() *stubDeps {
	return &stubDeps{
		seen:      make(map[string]bool),
		enqueueOK: true,
		phase:     model.PhaseSubmission,
	}
}

func (s *stubDeps) SeenAndRecord(ctx context.Context, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seen[id] {
		return true
	}
	s.seen[id] = true
	return false
}

func (s *stubDeps) Unrecord(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, id)
}

func (s *stubDeps) Size() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.seen))
}

func (s *stubDeps) Enqueue(ctx context.Context, e model.ResultEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enqueueOK {
		return false
	}
	s.enqueued = append(s.enqueued, e)
	return true
}

func (s *stubDeps) Standings(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if s.standingsErr != nil {
		return nil, s.standingsErr
	}
	if limit > 0 && limit < len(s.standings) {
		return s.standings[:limit], nil
	}
	return s.standings, nil
}

func (s *stubDeps) Rank(ctx context.Context, username string) (model.LeaderboardEntry, error) {
	return s.rankEntry, s.rankErr
}

func (s *stubDeps) Movements(ctx context.Context, targetContestID string) ([]model.Movement, error) {
	return s.movements, s.movementsErr
}

func (s *stubDeps) SetContests(ctx context.Context, contests model.ContestSet) error {
	if s.contestsErr != nil {
		return s.contestsErr
	}
	s.contests = contests
	return nil
}

func (s *stubDeps) Contests(ctx context.Context) model.ContestSet { return s.contests }

func (s *stubDeps) SetOptOut(ctx context.Context, username, contestID string, optedOut bool) error {
	return s.optOutErr
}

func (s *stubDeps) SetParticipation(ctx context.Context, username string, optedIn bool) error {
	return s.participationErr
}

func (s *stubDeps) SubmitPreferences(ctx context.Context, username string, prefs model.PreferenceList) error {
	return s.preferencesErr
}

func (s *stubDeps) AddManualTeam(ctx context.Context, team model.Team) error {
	if s.manualTeamErr != nil {
		return s.manualTeamErr
	}
	s.teams = append(s.teams, team)
	return nil
}

func (s *stubDeps) Teams(ctx context.Context) []model.Team { return s.teams }

func (s *stubDeps) RunFormation(ctx context.Context) (formation.Result, error) {
	return s.formationResult, s.formationErr
}

func (s *stubDeps) SetPhase(ctx context.Context, phase model.Phase) error {
	if s.phaseErr != nil {
		return s.phaseErr
	}
	s.phase = phase
	return nil
}

func (s *stubDeps) Phase(ctx context.Context) model.Phase { return s.phase }

// stubStats implements api.StatsProvider.
type stubStats struct{}

func (stubStats) GetStats() service.Stats {
	return service.Stats{Started: true, Phase: "submission", WorkerCount: 2}
}

func newTestServer(deps *stubDeps) *httptest.Server {
	mux := http.NewServeMux()
	api.NewServer(deps, stubStats{}, 100).Register(context.Background(), mux)
	return httptest.NewServer(mux)
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	return resp, buf.Bytes()
}

func validResult(id string) map[string]any {
	return map[string]any{
		"submission_id": id,
		"username":      "alice",
		"contest_id":    "c1",
		"solved":        3,
		"penalty":       25.0,
		"ts":            "2026-08-30T12:00:00Z",
	}
}

func TestResultsEndpoint(t *testing.T) {
	convey.Convey("Given the API server", t, func() {
		deps := newStubDeps()
		srv := newTestServer(deps)
		convey.Reset(srv.Close)

		convey.Convey("When posting a valid result", func() {
			resp, body := doJSON(t, http.MethodPost, srv.URL+"/results", validResult("s1"))

			convey.Convey("Then it is accepted and enqueued", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusAccepted)
				convey.So(string(body), convey.ShouldContainSubstring, `"accepted"`)
				convey.So(deps.enqueued, convey.ShouldHaveLength, 1)
				convey.So(deps.enqueued[0].Username, convey.ShouldEqual, "alice")
			})

			convey.Convey("And reposting the same submission id is a duplicate ack", func() {
				resp2, body2 := doJSON(t, http.MethodPost, srv.URL+"/results", validResult("s1"))
				convey.So(resp2.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(string(body2), convey.ShouldContainSubstring, `"duplicate":true`)
				convey.So(deps.enqueued, convey.ShouldHaveLength, 1)
			})
		})

		convey.Convey("When posting a malformed result", func() {
			bad := validResult("s2")
			bad["solved"] = -1
			resp, _ := doJSON(t, http.MethodPost, srv.URL+"/results", bad)

			convey.Convey("Then it is rejected", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusBadRequest)
			})
		})

		convey.Convey("When posting with a bad timestamp", func() {
			bad := validResult("s3")
			bad["ts"] = "yesterday"
			resp, _ := doJSON(t, http.MethodPost, srv.URL+"/results", bad)

			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusBadRequest)
		})

		convey.Convey("When the queue pushes back", func() {
			deps.enqueueOK = false
			resp, _ := doJSON(t, http.MethodPost, srv.URL+"/results", validResult("s4"))

			convey.Convey("Then the caller gets backpressure and may retry", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusTooManyRequests)
				// The seen mark was rolled back so a retry is not a duplicate.
				deps.enqueueOK = true
				resp2, _ := doJSON(t, http.MethodPost, srv.URL+"/results", validResult("s4"))
				convey.So(resp2.StatusCode, convey.ShouldEqual, http.StatusAccepted)
			})
		})

		convey.Convey("When using the wrong method", func() {
			resp, _ := doJSON(t, http.MethodGet, srv.URL+"/results", nil)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestStandingsEndpoint(t *testing.T) {
	convey.Convey("Given standings with three entries", t, func() {
		deps := newStubDeps()
		deps.standings = []model.LeaderboardEntry{
			{Rank: 1, Username: "alice"},
			{Rank: 2, Username: "bob"},
			{Rank: 3, Username: "carol"},
		}
		srv := newTestServer(deps)
		convey.Reset(srv.Close)

		convey.Convey("When fetching without a limit", func() {
			resp, body := doJSON(t, http.MethodGet, srv.URL+"/standings", nil)

			convey.Convey("Then the full board comes back", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				var entries []model.LeaderboardEntry
				convey.So(json.Unmarshal(body, &entries), convey.ShouldBeNil)
				convey.So(entries, convey.ShouldHaveLength, 3)
			})
		})

		convey.Convey("When fetching with a limit", func() {
			resp, body := doJSON(t, http.MethodGet, srv.URL+"/standings?limit=2", nil)

			convey.Convey("Then the board is truncated", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				var entries []model.LeaderboardEntry
				convey.So(json.Unmarshal(body, &entries), convey.ShouldBeNil)
				convey.So(entries, convey.ShouldHaveLength, 2)
			})
		})

		convey.Convey("When the limit is not a positive integer", func() {
			for _, limit := range []string{"0", "-3", "abc"} {
				resp, _ := doJSON(t, http.MethodGet, srv.URL+"/standings?limit="+limit, nil)
				convey.SoMsg(limit, resp.StatusCode, convey.ShouldEqual, http.StatusBadRequest)
			}
		})

		convey.Convey("When the limit exceeds the configured maximum", func() {
			resp, body := doJSON(t, http.MethodGet, srv.URL+"/standings?limit=101", nil)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusBadRequest)
			convey.So(string(body), convey.ShouldContainSubstring, "limit_exceeded")
		})
	})
}

func TestRankEndpoint(t *testing.T) {
	convey.Convey("Given the API server", t, func() {
		deps := newStubDeps()
		deps.rankEntry = model.LeaderboardEntry{Rank: 7, Username: "alice"}
		srv := newTestServer(deps)
		convey.Reset(srv.Close)

		convey.Convey("When fetching a known member's rank", func() {
			resp, body := doJSON(t, http.MethodGet, srv.URL+"/rank/alice", nil)

			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			convey.So(string(body), convey.ShouldContainSubstring, `"rank":7`)
		})

		convey.Convey("When the member is unknown", func() {
			deps.rankErr = fmt.Errorf("lookup: %w", repository.ErrNotFound)
			resp, _ := doJSON(t, http.MethodGet, srv.URL+"/rank/ghost", nil)

			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusNotFound)
		})

		convey.Convey("When the username is missing from the path", func() {
			resp, _ := doJSON(t, http.MethodGet, srv.URL+"/rank/", nil)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestPhaseEndpoint(t *testing.T) {
	convey.Convey("Given the API server", t, func() {
		deps := newStubDeps()
		srv := newTestServer(deps)
		convey.Reset(srv.Close)

		convey.Convey("When reading the phase", func() {
			resp, body := doJSON(t, http.MethodGet, srv.URL+"/phase", nil)

			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			convey.So(string(body), convey.ShouldContainSubstring, "submission")
		})

		convey.Convey("When moving to formation", func() {
			resp, _ := doJSON(t, http.MethodPut, srv.URL+"/phase", map[string]string{"phase": "formation"})

			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
			convey.So(deps.phase, convey.ShouldEqual, model.PhaseFormation)
		})

		convey.Convey("When the phase is unknown", func() {
			deps.phaseErr = fmt.Errorf("set phase: %w", repository.ErrInvalidPhase)
			resp, _ := doJSON(t, http.MethodPut, srv.URL+"/phase", map[string]string{"phase": "archived"})

			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusUnprocessableEntity)
		})
	})
}

func TestTeamsEndpoint(t *testing.T) {
	convey.Convey("Given the API server", t, func() {
		deps := newStubDeps()
		srv := newTestServer(deps)
		convey.Reset(srv.Close)

		convey.Convey("When registering a manual team", func() {
			resp, body := doJSON(t, http.MethodPost, srv.URL+"/teams", map[string]any{
				"title":   "The Approved",
				"members": []string{"a", "b", "c"},
			})

			convey.Convey("Then it is created with manual origin", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusCreated)
				convey.So(string(body), convey.ShouldContainSubstring, `"manual"`)
			})

			convey.Convey("And a follow-up GET lists it", func() {
				resp2, body2 := doJSON(t, http.MethodGet, srv.URL+"/teams", nil)
				convey.So(resp2.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(string(body2), convey.ShouldContainSubstring, "The Approved")
			})
		})

		convey.Convey("When the title is already taken", func() {
			deps.manualTeamErr = fmt.Errorf("add team: %w", repository.ErrTeamExists)
			resp, _ := doJSON(t, http.MethodPost, srv.URL+"/teams", map[string]any{
				"title":   "The Approved",
				"members": []string{"a", "b", "c"},
			})

			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusConflict)
		})

		convey.Convey("When the request shape is invalid", func() {
			resp, _ := doJSON(t, http.MethodPost, srv.URL+"/teams", map[string]any{
				"title": "No Members",
			})

			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestFormationEndpoint(t *testing.T) {
	convey.Convey("Given the API server", t, func() {
		deps := newStubDeps()
		deps.formationResult = formation.Result{
			Teams: []model.Team{
				{Title: "Team u1", Members: []string{"u1", "u2", "u3"}, Origin: model.TeamOriginAuto},
			},
			Unassigned: []string{"u4"},
		}
		srv := newTestServer(deps)
		convey.Reset(srv.Close)

		convey.Convey("When triggering a formation run", func() {
			resp, body := doJSON(t, http.MethodPost, srv.URL+"/formation/run", nil)

			convey.Convey("Then the run result is returned", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
				convey.So(string(body), convey.ShouldContainSubstring, "Team u1")
				convey.So(string(body), convey.ShouldContainSubstring, "u4")
			})
		})

		convey.Convey("When the collection is in the wrong phase", func() {
			deps.formationErr = fmt.Errorf("run formation: %w", service.ErrWrongPhase)
			resp, body := doJSON(t, http.MethodPost, srv.URL+"/formation/run", nil)

			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusConflict)
			convey.So(string(body), convey.ShouldContainSubstring, "wrong_phase")
		})
	})
}

func TestPreferenceAndParticipationEndpoints(t *testing.T) {
	convey.Convey("Given the API server", t, func() {
		deps := newStubDeps()
		srv := newTestServer(deps)
		convey.Reset(srv.Close)

		convey.Convey("When flagging participation", func() {
			resp, _ := doJSON(t, http.MethodPut, srv.URL+"/participation", map[string]any{
				"username": "alice",
				"opted_in": true,
			})

			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("When submitting preferences outside the submission phase", func() {
			deps.preferencesErr = fmt.Errorf("preferences: %w", service.ErrWrongPhase)
			resp, _ := doJSON(t, http.MethodPut, srv.URL+"/preferences", map[string]any{
				"username":  "alice",
				"title":     "Alphas",
				"teammates": []string{"bob"},
			})

			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusConflict)
		})

		convey.Convey("When a preferred teammate is not strictly below", func() {
			deps.preferencesErr = fmt.Errorf("preferences: %w", service.ErrTeammateNotBelow)
			resp, _ := doJSON(t, http.MethodPut, srv.URL+"/preferences", map[string]any{
				"username":  "alice",
				"teammates": []string{"bob"},
			})

			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusUnprocessableEntity)
		})
	})
}

func TestContestAndOptOutEndpoints(t *testing.T) {
	convey.Convey("Given the API server", t, func() {
		deps := newStubDeps()
		srv := newTestServer(deps)
		convey.Reset(srv.Close)

		convey.Convey("When setting and reading the contest set", func() {
			resp, _ := doJSON(t, http.MethodPut, srv.URL+"/contests", map[string]any{
				"contests": []map[string]string{
					{"id": "c1", "title": "Weekly 1"},
					{"id": "c2", "title": "Weekly 2"},
				},
			})
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

			resp2, body := doJSON(t, http.MethodGet, srv.URL+"/contests", nil)
			convey.So(resp2.StatusCode, convey.ShouldEqual, http.StatusOK)
			convey.So(string(body), convey.ShouldContainSubstring, "Weekly 2")
		})

		convey.Convey("When opting out of an unknown contest", func() {
			deps.optOutErr = fmt.Errorf("optout: %w", repository.ErrUnknownContest)
			resp, _ := doJSON(t, http.MethodPut, srv.URL+"/optouts", map[string]any{
				"username":   "alice",
				"contest_id": "c9",
				"opted_out":  true,
			})

			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusUnprocessableEntity)
		})
	})
}

func TestHealthAndStatsEndpoints(t *testing.T) {
	convey.Convey("Given the API server", t, func() {
		deps := newStubDeps()
		srv := newTestServer(deps)
		convey.Reset(srv.Close)

		convey.Convey("When probing /healthz", func() {
			resp, _ := doJSON(t, http.MethodGet, srv.URL+"/healthz", nil)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("When reading /stats", func() {
			resp, body := doJSON(t, http.MethodGet, srv.URL+"/stats", nil)
			convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

			var stats service.Stats
			convey.So(json.Unmarshal(body, &stats), convey.ShouldBeNil)
			convey.So(stats.Started, convey.ShouldBeTrue)
			convey.So(stats.Phase, convey.ShouldEqual, "submission")
			convey.So(stats.WorkerCount, convey.ShouldEqual, 2)
			convey.So(string(body), convey.ShouldContainSubstring, "queue_length")
		})
	})
}
