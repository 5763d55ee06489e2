// Package model contains domain models passed between layers.
package model

// ContestPerformance is one member's raw result in a single contest.
// A missing record means the member did not attend that contest; it is
// never encoded as a zero-valued performance.
type ContestPerformance struct {
	Solved  int     // problems solved, >= 0
	Penalty float64 // time penalty, larger is worse
	Score   float64 // weighted contest score, may be precomputed upstream

	// Submissions counts submissions made during the contest. Nil means
	// the source carries no submission signal; a bare record then still
	// counts as attended.
	Submissions *int

	// Demerit is a display-only annotation and never affects scoring.
	Demerit string
}

// Attended reports whether the performance counts as an attended contest
// for ranking purposes: solved > 0, or the source recorded submissions,
// or the source has no submission signal at all.
func (p ContestPerformance) Attended() bool {
	if p.Solved > 0 {
		return true
	}
	if p.Submissions == nil {
		return true
	}
	return *p.Submissions > 0
}

// Contest identifies a single contest in a season.
type Contest struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ContestSet is the chronological sequence of contests. The given order is
// authoritative for "most recent" and "previous attended" lookups.
type ContestSet []Contest

// IDs returns the contest ids in chronological order.
func (cs ContestSet) IDs() []string {
	ids := make([]string, len(cs))
	for i, c := range cs {
		ids[i] = c.ID
	}
	return ids
}

// Member is one roster entry with all of their recorded performances.
type Member struct {
	Username    string                        // stable identifier
	DisplayName string                        // display only
	Results     map[string]ContestPerformance // keyed by contest id
}

// Roster is the ordered set of members participating in a ranking run.
type Roster []Member

// LeaderboardEntry is the derived standings row for one member.
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`

	// Raw sums over every attended, non-opted-out or not, contest.
	// Display only; never used for ordering.
	TotalSolved  int     `json:"total_solved"`
	TotalPenalty float64 `json:"total_penalty"`
	TotalScore   float64 `json:"total_score"`

	DroppedContestIDs  []string `json:"dropped_contest_ids"`
	OptedOutContestIDs []string `json:"opted_out_contest_ids"`

	// Effective totals after removing dropped and opted-out contests.
	EffectiveSolved  int     `json:"effective_solved"`
	EffectivePenalty float64 `json:"effective_penalty"`
	EffectiveScore   float64 `json:"effective_score"`

	// Population standard deviations over the contests that survived
	// drop and opt-out removal.
	ScoreStdDev   float64 `json:"score_std_dev"`
	PenaltyStdDev float64 `json:"penalty_std_dev"`

	// Adjusted values carry the consistency adjustment and are the sort
	// keys: effective score minus score stddev, effective penalty plus
	// penalty stddev.
	AdjustedScore   float64 `json:"adjusted_score"`
	AdjustedPenalty float64 `json:"adjusted_penalty"`

	ContestsAttended int `json:"contests_attended"`
}

// ContestRank is a member's rank within a single contest.
type ContestRank struct {
	Rank     int     `json:"rank"`
	Username string  `json:"username"`
	Score    float64 `json:"score"`
	Solved   int     `json:"solved"`
	Penalty  float64 `json:"penalty"`
}

// MaxPreferredTeammates caps how many teammates a member may request.
const MaxPreferredTeammates = 5

// PreferenceList is one member's team request: a declared team title and an
// ordered list of preferred teammates. Entries are only meaningful for
// members ranked strictly below the submitter.
type PreferenceList struct {
	Title     string   `json:"title"`
	Teammates []string `json:"teammates"`
}

// TeamOrigin distinguishes admin-approved teams from algorithm output.
type TeamOrigin string

const (
	// TeamOriginManual marks admin-approved teams that formation must
	// never overwrite.
	TeamOriginManual TeamOrigin = "manual"
	// TeamOriginAuto marks teams produced by a formation run.
	TeamOriginAuto TeamOrigin = "auto"
)

// TeamSize is the fixed number of members per committed team.
const TeamSize = 3

// Team is a committed team of exactly TeamSize members.
type Team struct {
	Title   string     `json:"title"`
	Members []string   `json:"members"`
	Origin  TeamOrigin `json:"origin"`
}

// Phase gates what the collection currently accepts.
type Phase string

const (
	// PhaseSubmission accepts participation flags and preference lists.
	PhaseSubmission Phase = "submission"
	// PhaseFormation allows formation runs.
	PhaseFormation Phase = "formation"
	// PhaseLocked freezes teams; nothing may change.
	PhaseLocked Phase = "locked"
)

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	switch p {
	case PhaseSubmission, PhaseFormation, PhaseLocked:
		return true
	}
	return false
}

// Movement is a member's rank trend between two contests.
type Movement struct {
	Username     string `json:"username"`
	CurrentRank  int    `json:"current_rank,omitempty"`
	PreviousRank int    `json:"previous_rank,omitempty"`
	// Delta is previous minus current; positive means improvement.
	Delta int `json:"delta"`
	// Comparable is false when either rank is undefined; Delta is then
	// meaningless and omitted from display.
	Comparable bool `json:"comparable"`
}

// ResultEvent is the ingestion payload for one (member, contest) result.
type ResultEvent struct {
	SubmissionID string   // unique id for idempotency
	Username     string   // member identifier
	ContestID    string   // contest the result belongs to
	Solved       int      // problems solved
	Penalty      float64  // time penalty
	Score        *float64 // precomputed weighted score, nil to compute here
	Submissions  *int     // submission count when the source reports one
	Demerit      string   // display-only annotation
}
