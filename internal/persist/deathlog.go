package persist

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// DeathRow records one catch: which handle, on which frame, after how long.
type DeathRow struct {
	Session  string
	Handle   int
	Frame    uint32
	Survived uint32
}

type DeathLogRepo struct {
	db *DB
}

func NewDeathLogRepo(db *DB) *DeathLogRepo {
	return &DeathLogRepo{db: db}
}

// WriteDeaths atomically writes a batch of death rows in a single transaction.
func (r *DeathLogRepo) WriteDeaths(ctx context.Context, rows []DeathRow) error {
	if len(rows) == 0 {
		return nil
	}
	return r.db.InTx(ctx, "write deaths", func(tx pgx.Tx) error {
		for _, d := range rows {
			if _, err := tx.Exec(ctx,
				`INSERT INTO death_log (session, handle, frame, survived)
				 VALUES ($1, $2, $3, $4)`,
				d.Session, d.Handle, int64(d.Frame), int64(d.Survived),
			); err != nil {
				return fmt.Errorf("handle %d frame %d: %w", d.Handle, d.Frame, err)
			}
		}
		return nil
	})
}

// CountDeaths returns how many deaths a session has logged.
func (r *DeathLogRepo) CountDeaths(ctx context.Context, session string) (int, error) {
	var n int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM death_log WHERE session = $1`, session,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("death log count: %w", err)
	}
	return n, nil
}
