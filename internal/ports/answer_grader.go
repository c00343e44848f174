package ports

import (
	"context"
	"errors"
)

var (
	// ErrGraderNotConfigured means OPENAI_KEY was absent on the grade path.
	ErrGraderNotConfigured = errors.New("OPENAI_KEY is not set in environment/.env")
	// ErrMalformedVerdict means the grading service reply was not a JSON
	// object with a boolean is_correct field. Never coerced to a verdict.
	ErrMalformedVerdict = errors.New("grading service returned a malformed verdict")
)

type GradeInput struct {
	Question      string
	CorrectAnswer string
	UserAnswer    string
}

// AnswerGrader decides whether a free-text answer is semantically
// equivalent to the canonical one.
type AnswerGrader interface {
	Grade(ctx context.Context, input GradeInput) (bool, error)
}
