package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"triviahub/internal/errs"
	"triviahub/internal/infrastructure/persistence/model"
	"triviahub/internal/ports"
)

type QuestionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

func (r *QuestionRepository) dbFromContext(ctx context.Context) (*gorm.DB, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}

	tx := ports.TxFromContext(ctx)
	if tx == nil {
		return r.db.WithContext(ctx), nil
	}

	gormTx, ok := tx.(*gorm.DB)
	if !ok || gormTx == nil {
		return nil, fmt.Errorf("invalid tx in context: %T", tx)
	}
	return gormTx.WithContext(ctx), nil
}

func (r *QuestionRepository) RandomQuestion(ctx context.Context, filter ports.QuestionFilter) (ports.Question, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Question{}, err
	}

	query := db.Model(&model.Question{})
	if round := strings.TrimSpace(filter.Round); round != "" {
		query = query.Where(`"Round" = ?`, round)
	}
	if filter.Value != nil {
		query = query.Where(`"Value" = ?`, *filter.Value)
	}

	var row model.Question
	if err := query.Order("random()").Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Question{}, ports.ErrQuestionNotFound
		}
		return ports.Question{}, errs.Wrap(err, "query random question")
	}
	return mapQuestion(row), nil
}

func (r *QuestionRepository) GetQuestion(ctx context.Context, id uint64) (ports.Question, error) {
	db, err := r.dbFromContext(ctx)
	if err != nil {
		return ports.Question{}, err
	}

	var row model.Question
	if err := db.Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Question{}, ports.ErrQuestionNotFound
		}
		return ports.Question{}, errs.Wrap(err, "query question")
	}
	return mapQuestion(row), nil
}

func (r *QuestionRepository) CreateQuestions(ctx context.Context, batch []ports.QuestionCreate) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}

	rows := make([]model.Question, 0, len(batch))
	for _, item := range batch {
		rows = append(rows, model.Question{
			ShowNumber: item.ShowNumber,
			AirDate:    item.AirDate,
			Round:      item.Round,
			Category:   item.Category,
			Value:      item.Value,
			Question:   item.Question,
			Answer:     item.Answer,
		})
	}

	if ports.TxFromContext(ctx) != nil {
		db, err := r.dbFromContext(ctx)
		if err != nil {
			return 0, err
		}
		if err := db.CreateInBatches(&rows, 500).Error; err != nil {
			return 0, errs.Wrap(err, "insert questions")
		}
		return len(rows), nil
	}

	inserted := 0
	if err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txCtx := ports.WithTxContext(ctx, tx)
		n, err := r.CreateQuestions(txCtx, batch)
		if err != nil {
			return err
		}
		inserted = n
		return nil
	}); err != nil {
		return 0, err
	}
	return inserted, nil
}

func mapQuestion(row model.Question) ports.Question {
	return ports.Question{
		ID:         row.ID,
		ShowNumber: row.ShowNumber,
		AirDate:    row.AirDate,
		Round:      row.Round,
		Category:   row.Category,
		Value:      row.Value,
		Question:   row.Question,
		Answer:     row.Answer,
	}
}
