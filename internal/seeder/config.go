package seeder

import "time"

// Config holds configuration for the season seeder.
type Config struct {
	BaseURL     string        // Base URL of the service
	NumMembers  int           // Number of club members to generate
	NumContests int           // Number of contests in the season
	TopN        int           // Number of standings entries to fetch back
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	OutputFile  string        // Output file for generated results
	LogFile     string        // Log file for seeder output
	Verbose     bool          // Enable verbose logging
}

// Result represents one result submission to be posted.
type Result struct {
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

// Contest mirrors the contest set payload.
type Contest struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Entry represents a standings row fetched back for verification.
type Entry struct {
	Rank             int     `json:"rank"`
	Username         string  `json:"username"`
	AdjustedScore    float64 `json:"adjusted_score"`
	AdjustedPenalty  float64 `json:"adjusted_penalty"`
	ContestsAttended int     `json:"contests_attended"`
}

// AckResponse represents the response from result submission.
type AckResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Stats holds seeder statistics.
type Stats struct {
	ResultsGenerated  int
	ResultsSubmitted  int
	ResultsSuccessful int
	ResultsDuplicate  int
	ResultsFailed     int
	StandingsEntries  int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
