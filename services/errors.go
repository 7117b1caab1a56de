package services

import "errors"

// Client-visible failure categories. Handlers map these onto structured JSON
// responses; anything else is logged server-side and surfaced as a generic
// internal error. ErrNotParticipant deliberately covers missing matches too,
// so outsiders cannot probe which match IDs exist.
var (
	ErrForbidden           = errors.New("forbidden")
	ErrMatchNotFound       = errors.New("match not found")
	ErrNotParticipant      = errors.New("user is not a participant of this match")
	ErrNotInProgress       = errors.New("match is not in progress")
	ErrAlreadyOver         = errors.New("match is already over")
	ErrNoTestCases         = errors.New("challenge has no test cases")
	ErrUnsupportedLanguage = errors.New("unsupported submission language")
	ErrCodeExecutionFailed = errors.New("code execution failed")
	ErrChallengeNotFound   = errors.New("challenge not found")
)
