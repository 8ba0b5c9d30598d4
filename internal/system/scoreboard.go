package system

import (
	"time"

	coresys "github.com/boxchase/server/internal/core/system"
	"github.com/boxchase/server/internal/sim"
	"github.com/boxchase/server/internal/world"
)

// FrameSink receives every finished frame with its scoreboard.
type FrameSink interface {
	Present(w sim.World, board []sim.Entry)
}

// ScoreboardSystem builds the sorted scoreboard once per tick and fans it
// out. Phase 4 (Output).
type ScoreboardSystem struct {
	world *world.State
	sinks []FrameSink
	last  []sim.Entry
}

func NewScoreboardSystem(ws *world.State, sinks ...FrameSink) *ScoreboardSystem {
	return &ScoreboardSystem{world: ws, sinks: sinks}
}

func (s *ScoreboardSystem) Phase() coresys.Phase { return coresys.PhaseOutput }

func (s *ScoreboardSystem) Update(_ time.Duration) {
	s.last = s.world.Scoreboard()
	w := s.world.Current()
	for _, sink := range s.sinks {
		sink.Present(w, s.last)
	}
}

// Last returns the scoreboard built on the most recent tick.
func (s *ScoreboardSystem) Last() []sim.Entry { return s.last }
