package service

import "errors"

// Common service errors.
var (
	// ErrNotStarted means an operation ran before Start.
	ErrNotStarted = errors.New("service not started")

	// ErrWrongPhase means the operation is not allowed in the current
	// collection phase.
	ErrWrongPhase = errors.New("operation not allowed in current phase")

	// ErrUnknownMember means the username has no results in the store.
	ErrUnknownMember = errors.New("unknown member")

	// ErrTooManyTeammates means a preference list exceeds the cap.
	ErrTooManyTeammates = errors.New("too many preferred teammates")

	// ErrSelfPreference means a member listed themselves as a teammate.
	ErrSelfPreference = errors.New("cannot prefer yourself as a teammate")

	// ErrDuplicateTeammate means a preference list repeats a username.
	ErrDuplicateTeammate = errors.New("duplicate preferred teammate")

	// ErrTeammateNotBelow means a preferred teammate is not ranked strictly
	// below the requesting member.
	ErrTeammateNotBelow = errors.New("preferred teammate must be ranked strictly below you")

	// ErrTeammateNotParticipant means a preferred teammate has not opted
	// into team formation.
	ErrTeammateNotParticipant = errors.New("preferred teammate has not opted into formation")
)
