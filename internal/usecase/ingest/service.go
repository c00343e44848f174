package ingest

import (
	"context"
	"errors"
	"log/slog"

	"triviahub/internal/bootstrap/logging"
	"triviahub/internal/domain/trivia"
	"triviahub/internal/errs"
	"triviahub/internal/infrastructure/dataset"
	"triviahub/internal/ports"
)

// DefaultMaxValue is the dollar ceiling applied when none is configured.
const DefaultMaxValue = 1200

// CSVFetcher downloads the raw dataset text.
type CSVFetcher interface {
	FetchCSV(ctx context.Context, url string) (string, error)
}

// Service runs the one-shot ingestion batch: download, filter, validate,
// insert-all in a single transaction. Re-running against a populated table
// duplicates rows; there is no natural-key dedup.
type Service struct {
	repo    ports.QuestionRepository
	uow     ports.UnitOfWork
	fetcher CSVFetcher
}

func NewService(repo ports.QuestionRepository, uow ports.UnitOfWork, fetcher CSVFetcher) *Service {
	return &Service{
		repo:    repo,
		uow:     uow,
		fetcher: fetcher,
	}
}

type RunInput struct {
	SourceURL string
	MaxValue  int
}

type RunResult struct {
	Rows     int
	Filtered int
	Inserted int
	Skipped  int
}

func (s *Service) Run(ctx context.Context, input RunInput) (RunResult, error) {
	if ctx == nil {
		return RunResult{}, errors.New("context is required")
	}

	logCtx := logging.WithAttrs(ctx, slog.String("component", "usecase.ingest"))

	maxValue := input.MaxValue
	if maxValue <= 0 {
		maxValue = DefaultMaxValue
	}

	content, err := s.fetcher.FetchCSV(logCtx, input.SourceURL)
	if err != nil {
		return RunResult{}, errs.Wrap(err, "fetch dataset")
	}

	rows, err := dataset.ParseRows(content)
	if err != nil {
		return RunResult{}, errs.Wrap(err, "parse dataset")
	}

	kept := FilterByMaxValue(rows, maxValue)
	batch, skipped := mapRows(kept)

	inserted := 0
	if len(batch) > 0 {
		if err := s.uow.WithTx(logCtx, func(txCtx context.Context) error {
			n, err := s.repo.CreateQuestions(txCtx, batch)
			if err != nil {
				return err
			}
			inserted = n
			return nil
		}); err != nil {
			return RunResult{}, errs.Wrap(err, "persist questions")
		}
	}

	result := RunResult{
		Rows:     len(rows),
		Filtered: len(kept),
		Inserted: inserted,
		Skipped:  skipped,
	}

	logging.Info(logCtx, "ingestion completed",
		slog.Int("rows", result.Rows),
		slog.Int("filtered", result.Filtered),
		slog.Int("inserted", result.Inserted),
		slog.Int("skipped", result.Skipped),
	)
	return result, nil
}

// FilterByMaxValue keeps rows whose Value parses to an integer within the
// ceiling; empty or non-numeric values drop here.
func FilterByMaxValue(rows []trivia.Row, maxValue int) []trivia.Row {
	kept := make([]trivia.Row, 0, len(rows))
	for _, row := range rows {
		amount := trivia.ParseValue(row.Field("Value"))
		if amount == nil || *amount > maxValue {
			continue
		}
		kept = append(kept, row)
	}
	return kept
}

// mapRows validates each row; failures are skipped silently and counted.
func mapRows(rows []trivia.Row) ([]ports.QuestionCreate, int) {
	batch := make([]ports.QuestionCreate, 0, len(rows))
	skipped := 0

	for _, row := range rows {
		question, err := trivia.QuestionFromRow(row)
		if err != nil {
			skipped++
			continue
		}

		batch = append(batch, ports.QuestionCreate{
			ShowNumber: question.ShowNumber,
			AirDate:    question.AirDate,
			Round:      string(question.Round),
			Category:   question.Category,
			Value:      question.Value,
			Question:   question.Question,
			Answer:     question.Answer,
		})
	}
	return batch, skipped
}
