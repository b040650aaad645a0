package bootstrap

import (
	"context"
	"log/slog"
	"time"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"photolabel/internal/bootstrap/config"
	"photolabel/internal/bootstrap/database"
	"photolabel/internal/bootstrap/logging"
	cacheinfra "photolabel/internal/infrastructure/cache"
	sqliterepo "photolabel/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "photolabel/internal/infrastructure/persistence/sqlite/uow"
	resolverinfra "photolabel/internal/infrastructure/resolver"
	"photolabel/internal/ports"
	"photolabel/internal/usecase/labeling"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewLabelingRepository,
			fx.As(new(ports.LabelingRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(
		fx.Annotate(
			cacheinfra.NewSQLiteCache,
			fx.As(new(ports.Cache)),
		),
	),
	fx.Provide(provideResolver),
	fx.Provide(provideServiceOptions),
	fx.Provide(labeling.NewService),
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

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideResolver(cfg config.Config) ports.URLResolver {
	return resolverinfra.NewHTTPResolver(cfg.Resolver.Endpoint, nil)
}

func provideServiceOptions(cfg config.Config) labeling.Options {
	return labeling.Options{
		LockWindow:      time.Duration(cfg.Labeling.LockWindowMinutes) * time.Minute,
		ClaimScanWindow: cfg.Labeling.ClaimScanWindow,
		HistoryWindow:   cfg.Labeling.HistoryWindow,
	}
}
