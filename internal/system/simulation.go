package system

import (
	"time"

	coresys "github.com/boxchase/server/internal/core/system"
	"github.com/boxchase/server/internal/rollback"
	"github.com/boxchase/server/internal/sim"
	"github.com/boxchase/server/internal/world"
	"go.uber.org/zap"
)

// SimulationSystem advances the world by one frame through the sync tester.
// Phase 2 (Update).
type SimulationSystem struct {
	world  *world.State
	tester *rollback.SyncTester
	onErr  func(error)
	log    *zap.Logger
}

// NewSimulationSystem builds the step system. checkDistance > 0 re-runs
// that many frames after each step and reports a desync through onErr.
func NewSimulationSystem(ws *world.State, checkDistance int, onErr func(error), log *zap.Logger) *SimulationSystem {
	return &SimulationSystem{
		world:  ws,
		tester: rollback.NewSyncTester(sim.Step, ws.Tuning, checkDistance),
		onErr:  onErr,
		log:    log,
	}
}

func (s *SimulationSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *SimulationSystem) Update(_ time.Duration) {
	cur := s.world.Current()
	next, err := s.tester.Advance(cur, s.world.Inputs())
	if err != nil {
		s.log.Error("determinism check failed", zap.Uint32("frame", cur.Frame), zap.Error(err))
		if s.onErr != nil {
			s.onErr(err)
		}
	}
	s.world.Advance(next)
}

// Resimulated reports how many frames the sync tester has replayed.
func (s *SimulationSystem) Resimulated() uint64 { return s.tester.Resimulated }
