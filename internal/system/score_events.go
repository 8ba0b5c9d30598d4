package system

import (
	"time"

	"github.com/boxchase/server/internal/core/event"
	coresys "github.com/boxchase/server/internal/core/system"
	"github.com/boxchase/server/internal/world"
)

// ScoreEventSystem compares the last two snapshots and emits PlayerDied and
// HighscoreBeaten. Phase 3 (PostUpdate).
type ScoreEventSystem struct {
	world *world.State
	bus   *event.Bus
}

func NewScoreEventSystem(ws *world.State, bus *event.Bus) *ScoreEventSystem {
	return &ScoreEventSystem{world: ws, bus: bus}
}

func (s *ScoreEventSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *ScoreEventSystem) Update(_ time.Duration) {
	prev, cur := s.world.Previous(), s.world.Current()
	if cur.Frame == prev.Frame || len(prev.Players) != len(cur.Players) {
		return
	}
	simulated := prev.Frame
	for i, p := range cur.Players {
		before := prev.Players[i].Score
		// frame 0 reads Current == 0 without anyone being caught
		if simulated > 0 && p.Score.Current == 0 {
			event.Emit(s.bus, event.PlayerDied{
				Handle:   p.Handle,
				Frame:    simulated,
				Survived: simulated - before.LastDeathFrame,
			})
		}
		if p.Score.Highscore > before.Highscore {
			event.Emit(s.bus, event.HighscoreBeaten{
				Handle:    p.Handle,
				Highscore: p.Score.Highscore,
				Frame:     simulated,
			})
		}
	}
}
