package ports

import (
	"context"
	"errors"
	"time"
)

var ErrQuestionNotFound = errors.New("question not found")

// QuestionFilter narrows the random pick; zero values mean "any".
type QuestionFilter struct {
	Round string
	Value *int
}

type Question struct {
	ID         uint64
	ShowNumber int
	AirDate    time.Time
	Round      string
	Category   string
	Value      *int
	Question   string
	Answer     string
}

type QuestionCreate struct {
	ShowNumber int
	AirDate    time.Time
	Round      string
	Category   string
	Value      *int
	Question   string
	Answer     string
}

type QuestionRepository interface {
	// RandomQuestion picks one matching row uniformly at random.
	RandomQuestion(ctx context.Context, filter QuestionFilter) (Question, error)
	// GetQuestion fetches a row by id, answer included.
	GetQuestion(ctx context.Context, id uint64) (Question, error)
	// CreateQuestions inserts the whole batch and returns the inserted count.
	CreateQuestions(ctx context.Context, batch []QuestionCreate) (int, error)
}
