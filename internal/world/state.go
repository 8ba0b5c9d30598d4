package world

import (
	"github.com/boxchase/server/internal/data"
	"github.com/boxchase/server/internal/sim"
)

// State is the session's view of the game: the authoritative snapshot, the
// one before it, and the inputs gathered for the coming tick. It is owned by
// the game loop goroutine; systems read and write it only from Update.
type State struct {
	Tuning sim.Tuning
	Roster *data.Roster

	current  sim.World
	previous sim.World
	inputs   []sim.Input
}

// NewState creates the opening snapshot for numPlayers and numPursuers.
func NewState(numPlayers, numPursuers int, tuning sim.Tuning, roster *data.Roster) *State {
	w := sim.NewWorld(numPlayers, numPursuers, tuning)
	return &State{
		Tuning:   tuning,
		Roster:   roster,
		current:  w,
		previous: w.Clone(),
		inputs:   make([]sim.Input, numPlayers),
	}
}

// Current returns the latest snapshot. Callers must not modify its slices.
func (s *State) Current() sim.World { return s.current }

// Previous returns the snapshot before the latest Advance.
func (s *State) Previous() sim.World { return s.previous }

// Frame is the frame the next tick will simulate.
func (s *State) Frame() uint32 { return s.current.Frame }

// NumPlayers returns the fixed player count of the session.
func (s *State) NumPlayers() int { return len(s.inputs) }

// SetInput records the input of handle for the coming tick. Out of range
// handles are ignored.
func (s *State) SetInput(handle int, in sim.Input) {
	if handle >= 0 && handle < len(s.inputs) {
		s.inputs[handle] = in
	}
}

// Inputs returns the inputs gathered for the coming tick.
func (s *State) Inputs() []sim.Input { return s.inputs }

// Advance installs next as the current snapshot and clears the inputs.
func (s *State) Advance(next sim.World) {
	s.previous = s.current
	s.current = next
	for i := range s.inputs {
		s.inputs[i] = 0
	}
}

// Scoreboard returns the current sorted scoreboard.
func (s *State) Scoreboard() []sim.Entry {
	return sim.Scoreboard(s.current, s.Roster)
}
