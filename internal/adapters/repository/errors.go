package repository

import "errors"

// Sentinel kinds for club state errors.
var (
	ErrNotFound         = errors.New("member not found")
	ErrUnknownContest   = errors.New("unknown contest")
	ErrDuplicateContest = errors.New("duplicate contest id")
	ErrInvalidPhase     = errors.New("invalid phase")
	ErrTeamExists       = errors.New("team title already taken")
	ErrMemberAssigned   = errors.New("member already assigned to a team")
	ErrBadTeam          = errors.New("malformed team")
)
