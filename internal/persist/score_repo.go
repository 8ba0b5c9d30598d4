package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// HighscoreRow is one player's best run within a session.
type HighscoreRow struct {
	Session    string
	PlayerName string
	Handle     int
	Highscore  uint32
	Frame      uint32 // frame the row was taken at
}

type ScoreRepo struct {
	db *DB
}

func NewScoreRepo(db *DB) *ScoreRepo {
	return &ScoreRepo{db: db}
}

// SaveHighscores upserts rows in a single transaction. A stored highscore
// is never lowered.
func (r *ScoreRepo) SaveHighscores(ctx context.Context, rows []HighscoreRow) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.InTx(ctx, "save highscores", func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, row := range rows {
			batch.Queue(
				`INSERT INTO highscores (session, player_name, handle, highscore, frame)
				 VALUES ($1, $2, $3, $4, $5)
				 ON CONFLICT (session, handle) DO UPDATE SET
				     player_name = EXCLUDED.player_name,
				     highscore   = GREATEST(highscores.highscore, EXCLUDED.highscore),
				     frame       = EXCLUDED.frame,
				     updated_at  = now()`,
				row.Session, row.PlayerName, row.Handle, int64(row.Highscore), int64(row.Frame),
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
}

// Top returns the best highscores across all sessions, highest first.
func (r *ScoreRepo) Top(ctx context.Context, limit int) ([]HighscoreRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT session, player_name, handle, highscore, frame
		 FROM highscores
		 ORDER BY highscore DESC, updated_at ASC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("highscores top: %w", err)
	}
	defer rows.Close()

	var out []HighscoreRow
	for rows.Next() {
		var row HighscoreRow
		var high, frame int64
		if err := rows.Scan(&row.Session, &row.PlayerName, &row.Handle, &high, &frame); err != nil {
			return nil, fmt.Errorf("highscores scan: %w", err)
		}
		row.Highscore = uint32(high)
		row.Frame = uint32(frame)
		out = append(out, row)
	}
	return out, rows.Err()
}
