package formation

import "errors"

// Sentinel kinds for formation validation errors. Manual teams are trusted
// admin input; any inconsistency in them aborts the run before a single
// auto team is formed.
var (
	ErrManualTeamSize       = errors.New("manual team does not have the required size")
	ErrDuplicateAssignment  = errors.New("member assigned to more than one manual team")
	ErrDuplicateManualTitle = errors.New("manual team titles must be unique")
)
