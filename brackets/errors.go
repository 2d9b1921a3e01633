package brackets

import "errors"

// Configuration errors raised by the pure components before any fixture is
// produced. They are never retried; the caller surfaces them as client errors.
var (
	ErrEmptyTeamList      = errors.New("team list must not be empty")
	ErrDuplicateTeamIDs   = errors.New("team list contains duplicate team ids")
	ErrInvalidGroupCount  = errors.New("number of groups must be at least 1")
	ErrInvalidOpeningPair = errors.New("opening teams must be distinct and present in the team list")
	ErrUnsupportedFormat  = errors.New("unsupported tournament format")
)
