package trivia

import "errors"

var (
	ErrMissingField      = errors.New("row is missing a required field")
	ErrInvalidShowNumber = errors.New("show number must be an integer")
	ErrInvalidAirDate    = errors.New("air date must be formatted YYYY-MM-DD")
	ErrInvalidRound      = errors.New("round must be a Jeopardy round name")
)
