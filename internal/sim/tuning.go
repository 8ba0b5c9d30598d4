package sim

// Tuning holds every constant the step reads. A session must use the same
// Tuning on all peers; it is part of the determinism contract.
type Tuning struct {
	Acceleration  float64 // velocity added per tick of held input
	MaxSpeed      float64 // player speed cap, pursuer base cap
	Friction      float64 // multiplicative decay on idle axes
	ArenaSize     float64 // full width of the square arena
	PlayerSize    float64 // cube edge length
	PursuerRadius float64

	// Pursuer cap = MaxSpeed * min(PursuerMaxMult, PursuerMultPerPoint*top).
	PursuerMaxMult      float64
	PursuerMultPerPoint float64

	RespawnSlots uint32 // distinct respawn angles on the outer circle
}

func DefaultTuning() Tuning {
	return Tuning{
		Acceleration:        0.005,
		MaxSpeed:            0.05,
		Friction:            0.9,
		ArenaSize:           5.0,
		PlayerSize:          0.2,
		PursuerRadius:       0.5,
		PursuerMaxMult:      2.0,
		PursuerMultPerPoint: 0.001,
		RespawnSlots:        100,
	}
}

// Bound is the largest absolute horizontal coordinate an entity may occupy.
func (t Tuning) Bound() float64 {
	return (t.ArenaSize - t.PlayerSize) * 0.5
}

// HitDistance is the inclusive pursuer-to-player collision distance.
func (t Tuning) HitDistance() float64 {
	return t.PursuerRadius + t.PlayerSize/2
}
