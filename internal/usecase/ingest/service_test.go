package ingest

import (
	"context"
	"errors"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"triviahub/internal/domain/trivia"
	"triviahub/internal/infrastructure/persistence/model"
	"triviahub/internal/infrastructure/persistence/repository"
	"triviahub/internal/infrastructure/persistence/uow"
	"triviahub/internal/ports"
)

const sampleCSV = `Show Number, Air Date, Round, Category, Value, Question, Answer
100,2004-12-31,Jeopardy!,HISTORY,$400,Q1,A1
100,2004-12-31,Double Jeopardy!,SCIENCE,"$1,200",Q2,A2
100,2004-12-31,Double Jeopardy!,SCIENCE,"$2,000",Q3,A3
100,2004-12-31,Final Jeopardy!,GEOGRAPHY,,Q4,A4
100,not-a-date,Jeopardy!,HISTORY,$200,Q5,A5
100,2004-12-31,Jeopardy!,HISTORY,$600,,A6
`

type stubFetcher struct {
	content string
	err     error
	url     string
}

func (f *stubFetcher) FetchCSV(_ context.Context, url string) (string, error) {
	f.url = url
	if f.err != nil {
		return "", f.err
	}
	return f.content, nil
}

func setupService(t *testing.T, fetcher *stubFetcher) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(gormsqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.Question{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	repo := repository.NewQuestionRepository(db)
	return NewService(repo, uow.NewUnitOfWork(db), fetcher), db
}

func TestRunIngestsWithinCeiling(t *testing.T) {
	t.Parallel()

	svc, db := setupService(t, &stubFetcher{content: sampleCSV})

	result, err := svc.Run(context.Background(), RunInput{SourceURL: "http://example.test/data.csv", MaxValue: 1200})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Rows != 6 {
		t.Fatalf("rows = %d, want 6", result.Rows)
	}
	// $2,000 row and the valueless Final Jeopardy row drop at the filter.
	if result.Filtered != 4 {
		t.Fatalf("filtered = %d, want 4", result.Filtered)
	}
	// Bad air date and missing question drop at validation.
	if result.Skipped != 2 {
		t.Fatalf("skipped = %d, want 2", result.Skipped)
	}
	if result.Inserted != 2 {
		t.Fatalf("inserted = %d, want 2", result.Inserted)
	}

	var rows []model.Question
	if err := db.Order("id asc").Find(&rows).Error; err != nil {
		t.Fatalf("load questions: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("persisted rows = %d, want 2", len(rows))
	}
	if rows[0].Question != "Q1" || rows[0].Value == nil || *rows[0].Value != 400 {
		t.Fatalf("first row = %+v, want Q1 with value 400", rows[0])
	}
	if rows[1].Question != "Q2" || rows[1].Value == nil || *rows[1].Value != 1200 {
		t.Fatalf("second row = %+v, want Q2 with value 1200", rows[1])
	}
}

func TestRunTwiceDuplicatesRows(t *testing.T) {
	t.Parallel()

	svc, db := setupService(t, &stubFetcher{content: sampleCSV})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := svc.Run(ctx, RunInput{MaxValue: 1200}); err != nil {
			t.Fatalf("Run() %d error = %v", i+1, err)
		}
	}

	var count int64
	if err := db.Model(&model.Question{}).Count(&count).Error; err != nil {
		t.Fatalf("count questions: %v", err)
	}
	// Known behavior: no natural-key dedup across runs.
	if count != 4 {
		t.Fatalf("questions count = %d, want 4", count)
	}
}

func TestRunFetchFailure(t *testing.T) {
	t.Parallel()

	fetchErr := errors.New("connection refused")
	svc, db := setupService(t, &stubFetcher{err: fetchErr})

	if _, err := svc.Run(context.Background(), RunInput{}); !errors.Is(err, fetchErr) {
		t.Fatalf("Run() error = %v, want the fetch failure", err)
	}

	var count int64
	if err := db.Model(&model.Question{}).Count(&count).Error; err != nil {
		t.Fatalf("count questions: %v", err)
	}
	if count != 0 {
		t.Fatalf("questions count = %d, want 0 after failed download", count)
	}
}

func TestRunDefaultsCeiling(t *testing.T) {
	t.Parallel()

	svc, _ := setupService(t, &stubFetcher{content: sampleCSV})

	result, err := svc.Run(context.Background(), RunInput{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Filtered != 4 {
		t.Fatalf("filtered = %d, want 4 with the default 1200 ceiling", result.Filtered)
	}
}

func TestFilterByMaxValue(t *testing.T) {
	t.Parallel()

	rows := []trivia.Row{
		{"Value": "$400"},
		{"Value": "$1,200"},
		{"Value": "$1,201"},
		{"Value": ""},
		{"Value": "None"},
	}

	kept := FilterByMaxValue(rows, 1200)
	if len(kept) != 2 {
		t.Fatalf("kept = %d, want 2", len(kept))
	}
	if kept[0].Field("Value") != "$400" || kept[1].Field("Value") != "$1,200" {
		t.Fatalf("kept = %v, want the two rows within the ceiling", kept)
	}
}

var _ ports.QuestionRepository = (*repository.QuestionRepository)(nil)
