package persist

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrations embed.FS

// gooseLogger routes goose output through zap.
type gooseLogger struct {
	s *zap.SugaredLogger
}

func (l gooseLogger) Printf(format string, v ...any) { l.s.Debugf(format, v...) }
func (l gooseLogger) Fatalf(format string, v ...any) { l.s.Fatalf(format, v...) }

// RunMigrations applies all pending database migrations and returns the
// resulting schema version.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, log *zap.Logger) (int64, error) {
	goose.SetLogger(gooseLogger{s: log.Sugar()})
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return 0, fmt.Errorf("set dialect: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return 0, fmt.Errorf("run migrations: %w", err)
	}
	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}
