package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/boxchase/server/internal/config"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// DB is the score store's connection pool.
type DB struct {
	Pool *pgxpool.Pool
	log  *zap.Logger
}

// NewDB connects and pings. The session runs fine without it, so callers
// only reach here when [database] is enabled.
func NewDB(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*DB, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	poolCfg.MaxConns = int32(cfg.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	log.Debug("database connected",
		zap.String("host", poolCfg.ConnConfig.Host),
		zap.String("database", poolCfg.ConnConfig.Database),
		zap.Int32("max_conns", poolCfg.MaxConns),
	)
	return &DB{Pool: pool, log: log}, nil
}

// InTx runs fn inside one transaction, committing only if fn succeeds.
// op names the caller in wrapped errors.
func (db *DB) InTx(ctx context.Context, op string, fn func(pgx.Tx) error) error {
	start := time.Now()
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s begin: %w", op, err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s commit: %w", op, err)
	}
	db.log.Debug("tx committed", zap.String("op", op), zap.Duration("took", time.Since(start)))
	return nil
}

func (db *DB) Close() {
	db.Pool.Close()
}
