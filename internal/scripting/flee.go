package scripting

import "github.com/boxchase/server/internal/sim"

// FleeInput steers handle straight away from the nearest pursuer on both
// horizontal axes. Ties on distance go to the lower pursuer index.
func FleeInput(handle int, w sim.World) sim.Input {
	var self *sim.Player
	for i := range w.Players {
		if w.Players[i].Handle == handle {
			self = &w.Players[i]
			break
		}
	}
	if self == nil || len(w.Pursuers) == 0 {
		return 0
	}

	threat := w.Pursuers[0].Position
	best := self.Position.Distance(threat)
	for _, q := range w.Pursuers[1:] {
		if d := self.Position.Distance(q.Position); d < best {
			threat, best = q.Position, d
		}
	}

	var in sim.Input
	switch {
	case threat.X < self.Position.X:
		in |= sim.InputRight
	case threat.X > self.Position.X:
		in |= sim.InputLeft
	}
	switch {
	case threat.Z < self.Position.Z:
		in |= sim.InputDown
	case threat.Z > self.Position.Z:
		in |= sim.InputUp
	}
	return in
}
