package system

import (
	"time"

	coresys "github.com/boxchase/server/internal/core/system"
	"github.com/boxchase/server/internal/sim"
	"github.com/boxchase/server/internal/world"
	"go.uber.org/zap"
)

// InputSource yields one player's input for the frame about to be
// simulated. Sources see the current snapshot so bots can react to it.
type InputSource interface {
	Input(handle int, w sim.World) sim.Input
}

// InputSourceFunc adapts a function to InputSource.
type InputSourceFunc func(handle int, w sim.World) sim.Input

func (f InputSourceFunc) Input(handle int, w sim.World) sim.Input { return f(handle, w) }

// Idle never presses anything.
var Idle InputSource = InputSourceFunc(func(int, sim.World) sim.Input { return 0 })

// InputSystem polls one source per player handle. Phase 0 (Input).
type InputSystem struct {
	world   *world.State
	sources []InputSource
	log     *zap.Logger
}

func NewInputSystem(ws *world.State, log *zap.Logger) *InputSystem {
	sources := make([]InputSource, ws.NumPlayers())
	for i := range sources {
		sources[i] = Idle
	}
	return &InputSystem{world: ws, sources: sources, log: log}
}

// Bind routes handle's input to src. Binding an out-of-range handle is
// logged and ignored.
func (s *InputSystem) Bind(handle int, src InputSource) {
	if handle < 0 || handle >= len(s.sources) {
		s.log.Warn("input bind: handle out of range", zap.Int("handle", handle), zap.Int("players", len(s.sources)))
		return
	}
	s.sources[handle] = src
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	w := s.world.Current()
	for h, src := range s.sources {
		s.world.SetInput(h, src.Input(h, w))
	}
}
