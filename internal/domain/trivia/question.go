package trivia

import "time"

// Round is one of the three Jeopardy round names as they appear in the
// source dataset.
type Round string

const (
	RoundJeopardy       Round = "Jeopardy!"
	RoundDoubleJeopardy Round = "Double Jeopardy!"
	RoundFinalJeopardy  Round = "Final Jeopardy!"
)

func ParseRound(raw string) (Round, error) {
	switch Round(raw) {
	case RoundJeopardy, RoundDoubleJeopardy, RoundFinalJeopardy:
		return Round(raw), nil
	default:
		return "", ErrInvalidRound
	}
}

// Question is a fully validated dataset record. Value stays nil for rows
// without a dollar amount (Final Jeopardy).
type Question struct {
	ShowNumber int
	AirDate    time.Time
	Round      Round
	Category   string
	Value      *int
	Question   string
	Answer     string
}
