package system

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/boxchase/server/internal/core/event"
	coresys "github.com/boxchase/server/internal/core/system"
	"github.com/boxchase/server/internal/persist"
	"github.com/boxchase/server/internal/world"
	"go.uber.org/zap"
)

// HighscoreStore saves highscore rows. *persist.ScoreRepo implements it.
type HighscoreStore interface {
	SaveHighscores(ctx context.Context, rows []persist.HighscoreRow) error
}

// DeathStore saves death rows. *persist.DeathLogRepo implements it.
type DeathStore interface {
	WriteDeaths(ctx context.Context, rows []persist.DeathRow) error
}

// PersistenceSystem periodically saves every player's highscore and the
// deaths buffered since the last save. Phase 5 (Persist).
type PersistenceSystem struct {
	world     *world.State
	session   string
	scores    HighscoreStore
	deaths    DeathStore
	log       *zap.Logger
	tickCount int
	interval  int // save every N ticks

	pending []persist.DeathRow
	saved   []uint32 // highscore last written per handle
}

func NewPersistenceSystem(ws *world.State, bus *event.Bus, session string, scores HighscoreStore, deaths DeathStore, log *zap.Logger, intervalTicks int) *PersistenceSystem {
	s := &PersistenceSystem{
		world:    ws,
		session:  session,
		scores:   scores,
		deaths:   deaths,
		log:      log,
		interval: intervalTicks,
		saved:    make([]uint32, ws.NumPlayers()),
	}
	event.Subscribe(bus, func(e event.PlayerDied) {
		s.pending = append(s.pending, persist.DeathRow{
			Session:  s.session,
			Handle:   e.Handle,
			Frame:    e.Frame,
			Survived: e.Survived,
		})
	})
	return s
}

func (s *PersistenceSystem) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *PersistenceSystem) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Flush(ctx); err != nil {
		s.log.Error("auto-save failed", zap.Uint32("frame", s.world.Frame()), zap.Error(err))
	}
}

// Flush writes changed highscores and pending deaths now. It is called on
// shutdown as well as on the save interval. Rows that fail to save are kept
// for the next attempt.
func (s *PersistenceSystem) Flush(ctx context.Context) error {
	var errs []error

	rows := s.dirtyHighscores()
	if len(rows) > 0 {
		if err := s.scores.SaveHighscores(ctx, rows); err != nil {
			errs = append(errs, fmt.Errorf("save highscores: %w", err))
		} else {
			for _, r := range rows {
				s.saved[r.Handle] = r.Highscore
			}
		}
	}

	if len(s.pending) > 0 {
		if err := s.deaths.WriteDeaths(ctx, s.pending); err != nil {
			errs = append(errs, fmt.Errorf("write deaths: %w", err))
		} else {
			s.pending = s.pending[:0]
		}
	}

	if len(errs) == 0 && len(rows) > 0 {
		s.log.Debug("highscores saved", zap.Int("rows", len(rows)), zap.Uint32("frame", s.world.Frame()))
	}
	return errors.Join(errs...)
}

// Pending reports how many death rows are waiting to be written.
func (s *PersistenceSystem) Pending() int { return len(s.pending) }

func (s *PersistenceSystem) dirtyHighscores() []persist.HighscoreRow {
	w := s.world.Current()
	var rows []persist.HighscoreRow
	for _, p := range w.Players {
		if p.Handle < 0 || p.Handle >= len(s.saved) || p.Score.Highscore <= s.saved[p.Handle] {
			continue
		}
		rows = append(rows, persist.HighscoreRow{
			Session:    s.session,
			PlayerName: s.world.Roster.Name(p.Handle),
			Handle:     p.Handle,
			Highscore:  p.Score.Highscore,
			Frame:      w.Frame,
		})
	}
	return rows
}
