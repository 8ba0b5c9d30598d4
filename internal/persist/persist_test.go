package persist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/boxchase/server/internal/config"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap/zaptest"
)

// openTestDB connects to BOXCHASE_TEST_DSN or skips.
func openTestDB(t *testing.T) *DB {
	t.Helper()
	dsn := os.Getenv("BOXCHASE_TEST_DSN")
	if dsn == "" {
		t.Skip("BOXCHASE_TEST_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log := zaptest.NewLogger(t)
	db, err := NewDB(ctx, config.DatabaseConfig{DSN: dsn, MaxOpenConns: 2, MaxIdleConns: 1, ConnMaxLifetime: time.Minute}, log)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(db.Close)
	if _, err := RunMigrations(ctx, db.Pool, log); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	return db
}

func TestScoreRepoNeverLowers(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewScoreRepo(db)
	session := fmt.Sprintf("test-%d", time.Now().UnixNano())

	if err := repo.SaveHighscores(ctx, []HighscoreRow{
		{Session: session, PlayerName: "BLUE", Handle: 0, Highscore: 900_000_001, Frame: 10},
	}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.SaveHighscores(ctx, []HighscoreRow{
		{Session: session, PlayerName: "BLUE", Handle: 0, Highscore: 3, Frame: 20},
	}); err != nil {
		t.Fatalf("save lower: %v", err)
	}

	top, err := repo.Top(ctx, 1)
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	if len(top) != 1 || top[0].Session != session || top[0].Highscore != 900_000_001 || top[0].Frame != 20 {
		t.Fatalf("top = %+v", top)
	}
}

func TestDeathLogBatch(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewDeathLogRepo(db)
	session := fmt.Sprintf("test-%d", time.Now().UnixNano())

	rows := []DeathRow{
		{Session: session, Handle: 0, Frame: 100, Survived: 100},
		{Session: session, Handle: 1, Frame: 140, Survived: 12},
	}
	if err := repo.WriteDeaths(ctx, rows); err != nil {
		t.Fatalf("write: %v", err)
	}
	n, err := repo.CountDeaths(ctx, session)
	if err != nil || n != 2 {
		t.Fatalf("count = %d, %v; want 2", n, err)
	}
	if err := repo.WriteDeaths(ctx, nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
}

func TestInTxRollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	session := fmt.Sprintf("test-%d", time.Now().UnixNano())
	boom := errors.New("boom")

	err := db.InTx(ctx, "test", func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`INSERT INTO death_log (session, handle, frame, survived) VALUES ($1, 0, 1, 1)`, session); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
	n, err := NewDeathLogRepo(db).CountDeaths(ctx, session)
	if err != nil || n != 0 {
		t.Fatalf("count = %d, %v; want 0 after rollback", n, err)
	}
}
