package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: gather one input per player handle
	PhasePreUpdate               // 1: dispatch last tick's events
	PhaseUpdate                  // 2: deterministic simulation step
	PhasePostUpdate              // 3: diff snapshots, emit events
	PhaseOutput                  // 4: scoreboard, terminal, spectators
	PhasePersist                 // 5: highscore + death log flush
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhaseOutput:
		return "output"
	case PhasePersist:
		return "persist"
	}
	return "unknown"
}

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
