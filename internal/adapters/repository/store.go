// Package repository defines the club state store interface and errors.
package repository

import (
	"context"

	"github.com/clubops/standings/internal/domain/model"
)

// Store provides read/write access to the club state the engines consume:
// contests, per-member results, opt-outs, participation, preference lists,
// teams, and the formation phase.
//
// Read methods return defensive copies so callers can hand them to the pure
// engines as consistent, race-free snapshots.
type Store interface {
	// SetContests replaces the chronological contest set.
	SetContests(ctx context.Context, contests model.ContestSet) error
	// Contests returns the contest set in chronological order.
	Contests(ctx context.Context) model.ContestSet

	// ApplyResult upserts one (member, contest) performance. The member is
	// created on first sight. Returns true if the stored record changed.
	ApplyResult(ctx context.Context, username, contestID string, perf model.ContestPerformance) (bool, error)
	// Roster returns every tracked member with their results, ordered by
	// username for determinism.
	Roster(ctx context.Context) model.Roster

	// SetOptOut marks or clears a member's opt-out for one contest.
	SetOptOut(ctx context.Context, username, contestID string, optedOut bool) error
	// OptOuts returns per-member opted-out contest ids.
	OptOuts(ctx context.Context) map[string][]string

	// SetParticipation flags whether a member opted into team formation.
	SetParticipation(ctx context.Context, username string, optedIn bool) error
	// Participants returns the set of members who opted in.
	Participants(ctx context.Context) map[string]bool

	// SetPreferences stores a member's validated preference list.
	SetPreferences(ctx context.Context, username string, prefs model.PreferenceList) error
	// Preferences returns every stored preference list.
	Preferences(ctx context.Context) map[string]model.PreferenceList

	// AddManualTeam stores an admin-approved team.
	// Returns ErrTeamExists when the title is already taken and
	// ErrMemberAssigned when a member already belongs to a team.
	AddManualTeam(ctx context.Context, team model.Team) error
	// ManualTeams returns admin-approved teams in insertion order.
	ManualTeams(ctx context.Context) []model.Team
	// ReplaceAutoTeams atomically swaps the full set of computed teams,
	// leaving manual teams untouched.
	ReplaceAutoTeams(ctx context.Context, teams []model.Team) error
	// Teams returns manual teams followed by computed teams.
	Teams(ctx context.Context) []model.Team

	// SetPhase moves the collection to the given phase.
	SetPhase(ctx context.Context, phase model.Phase) error
	// Phase returns the current phase.
	Phase(ctx context.Context) model.Phase

	// Count returns the number of members tracked.
	Count(ctx context.Context) int
}
