// Package formation partitions ranked participants into fixed-size teams.
//
// The pass is greedy and rank-priority: higher-ranked participants get
// first claim on their preferred teammates, and a forward-fill fallback
// completes under-sized teams from the next unassigned participants in
// rank order. The engine is pure and deterministic; re-running it with the
// same input yields byte-identical output.
package formation

import (
	"fmt"

	"github.com/clubops/standings/internal/domain/model"
)

// Input carries one formation run's state. Order must already be filtered
// to participants who opted into team formation; everyone else is invisible
// to both preference resolution and forward-fill.
type Input struct {
	Order       []string // leaderboard order, best first
	Preferences map[string]model.PreferenceList
	ManualTeams []model.Team
}

// Collision reports an auto team refused because its declared title was
// already taken in the same run.
type Collision struct {
	Leader string `json:"leader"`
	Title  string `json:"title"`
}

// Diagnostics carries advisory findings that are not failures: the caller
// decides whether partial success is acceptable.
type Diagnostics struct {
	TitleCollisions []Collision `json:"title_collisions"`
}

// Result is the outcome of a formation run. Teams holds the manual teams
// exactly as given followed by committed auto teams in commit order.
type Result struct {
	Teams       []model.Team `json:"teams"`
	Unassigned  []string     `json:"unassigned"`
	Diagnostics Diagnostics  `json:"diagnostics"`
}

// Engine forms teams from a leaderboard ordering and preference lists.
type Engine struct {
	teamSize int
}

// New creates a formation engine with configuration options.
func New(opts ...Option) *Engine {
	e := &Engine{teamSize: model.TeamSize}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Form runs a single deterministic formation pass.
//
// Preference entries that are stale or invalid (member already assigned,
// member not in the opted-in ordering, member not ranked strictly below the
// leader) are skipped silently; the submission path is responsible for
// rejecting them up front.
func (e *Engine) Form(in Input) (Result, error) {
	res := Result{
		Teams:      make([]model.Team, 0, len(in.ManualTeams)+len(in.Order)/e.teamSize),
		Unassigned: []string{},
		Diagnostics: Diagnostics{
			TitleCollisions: []Collision{},
		},
	}

	assigned := make(map[string]bool)
	titles := make(map[string]bool)
	for _, team := range in.ManualTeams {
		if len(team.Members) != e.teamSize {
			return Result{}, fmt.Errorf("%w: %q has %d members, want %d",
				ErrManualTeamSize, team.Title, len(team.Members), e.teamSize)
		}
		if titles[team.Title] {
			return Result{}, fmt.Errorf("%w: %q", ErrDuplicateManualTitle, team.Title)
		}
		titles[team.Title] = true
		for _, member := range team.Members {
			if assigned[member] {
				return Result{}, fmt.Errorf("%w: %q", ErrDuplicateAssignment, member)
			}
			assigned[member] = true
		}
		res.Teams = append(res.Teams, team)
	}

	position := make(map[string]int, len(in.Order))
	for i, username := range in.Order {
		position[username] = i
	}

	for i, leader := range in.Order {
		if assigned[leader] {
			continue
		}

		team := []string{leader}
		farthest := i

		prefs := in.Preferences[leader]
		for _, candidate := range prefs.Teammates {
			if len(team) == e.teamSize {
				break
			}
			pos, ok := position[candidate]
			if !ok || pos <= i || assigned[candidate] || contains(team, candidate) {
				continue
			}
			team = append(team, candidate)
			if pos > farthest {
				farthest = pos
			}
		}

		// Forward-fill from just past the farthest pick; a deterministic
		// fallback, not a preference match.
		for j := farthest + 1; j < len(in.Order) && len(team) < e.teamSize; j++ {
			next := in.Order[j]
			if assigned[next] || contains(team, next) {
				continue
			}
			team = append(team, next)
		}

		if len(team) < e.teamSize {
			// Tail of the roster; members stay unassigned.
			continue
		}

		title := prefs.Title
		if title == "" {
			title = "Team " + leader
		}
		if titles[title] {
			res.Diagnostics.TitleCollisions = append(res.Diagnostics.TitleCollisions, Collision{
				Leader: leader,
				Title:  title,
			})
			continue
		}

		titles[title] = true
		for _, member := range team {
			assigned[member] = true
		}
		res.Teams = append(res.Teams, model.Team{
			Title:   title,
			Members: team,
			Origin:  model.TeamOriginAuto,
		})
	}

	for _, username := range in.Order {
		if !assigned[username] {
			res.Unassigned = append(res.Unassigned, username)
		}
	}
	return res, nil
}

func contains(team []string, username string) bool {
	for _, member := range team {
		if member == username {
			return true
		}
	}
	return false
}
