package bootstrap

import (
	"context"
	"log/slog"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"triviahub/internal/bootstrap/config"
	"triviahub/internal/bootstrap/database"
	"triviahub/internal/bootstrap/logging"
	"triviahub/internal/infrastructure/dataset"
	"triviahub/internal/infrastructure/grader"
	"triviahub/internal/infrastructure/persistence/repository"
	"triviahub/internal/infrastructure/persistence/uow"
	"triviahub/internal/ports"
	"triviahub/internal/usecase/ingest"
	"triviahub/internal/usecase/quiz"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(database.NewRegistry),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			repository.NewQuestionRepository,
			fx.As(new(ports.QuestionRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			uow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(provideGrader),
	fx.Provide(
		fx.Annotate(
			dataset.NewDownloader,
			fx.As(new(ingest.CSVFetcher)),
		),
	),
	fx.Provide(quiz.NewService),
	fx.Provide(ingest.NewService),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config, registry *database.Registry) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := registry.Get(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(stopCtx context.Context) error {
			return registry.Close(stopCtx)
		},
	})

	return db, nil
}

func provideGrader(cfg config.Config) ports.AnswerGrader {
	return grader.NewOpenAIGrader(cfg.OpenAI)
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}
