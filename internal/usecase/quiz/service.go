package quiz

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"triviahub/internal/bootstrap/logging"
	"triviahub/internal/errs"
	"triviahub/internal/ports"
)

// Service serves random questions and verifies free-text answers. The
// dataset is immutable after ingestion, so requests share no mutable state.
type Service struct {
	repo   ports.QuestionRepository
	grader ports.AnswerGrader
}

func NewService(repo ports.QuestionRepository, grader ports.AnswerGrader) *Service {
	return &Service{
		repo:   repo,
		grader: grader,
	}
}

type RandomQuestionInput struct {
	Round string
	Value *int
}

// RandomQuestionResult deliberately has no answer field: the answer must
// not reach the client before verification.
type RandomQuestionResult struct {
	QuestionID uint64
	Round      string
	Category   string
	Value      *int
	Question   string
}

func (s *Service) RandomQuestion(ctx context.Context, input RandomQuestionInput) (RandomQuestionResult, error) {
	if ctx == nil {
		return RandomQuestionResult{}, errors.New("context is required")
	}

	record, err := s.repo.RandomQuestion(ctx, ports.QuestionFilter{
		Round: strings.TrimSpace(input.Round),
		Value: input.Value,
	})
	if err != nil {
		return RandomQuestionResult{}, err
	}

	return RandomQuestionResult{
		QuestionID: record.ID,
		Round:      record.Round,
		Category:   record.Category,
		Value:      record.Value,
		Question:   record.Question,
	}, nil
}

type VerifyAnswerInput struct {
	QuestionID uint64
	UserAnswer string
}

type VerifyAnswerResult struct {
	IsCorrect bool
}

// VerifyAnswer fetches the question by id and delegates the semantic
// judgment to the grader. ports.ErrQuestionNotFound propagates before any
// grading call is made; grader errors propagate unmodified — the verdict is
// never guessed locally.
func (s *Service) VerifyAnswer(ctx context.Context, input VerifyAnswerInput) (VerifyAnswerResult, error) {
	if ctx == nil {
		return VerifyAnswerResult{}, errors.New("context is required")
	}

	record, err := s.repo.GetQuestion(ctx, input.QuestionID)
	if err != nil {
		return VerifyAnswerResult{}, err
	}

	// Audit trail for manual grading-quality review; not part of the contract.
	logging.Info(
		logging.WithAttrs(ctx, slog.String("component", "usecase.quiz")),
		"grading answer",
		slog.Uint64("question_id", record.ID),
		slog.String("question", record.Question),
		slog.String("answer", record.Answer),
		slog.String("user_answer", input.UserAnswer),
	)

	correct, err := s.grader.Grade(ctx, ports.GradeInput{
		Question:      record.Question,
		CorrectAnswer: record.Answer,
		UserAnswer:    input.UserAnswer,
	})
	if err != nil {
		return VerifyAnswerResult{}, errs.Wrap(err, "grade answer")
	}

	return VerifyAnswerResult{IsCorrect: correct}, nil
}
