package ranking

import "errors"

// Sentinel kinds for standings validation errors. These are contract
// violations the caller must prevent, never data-quality degradations.
var (
	ErrNegativeDropCount = errors.New("drop-worst count must not be negative")
	ErrDuplicateContest  = errors.New("contest set contains duplicate ids")
)
