package sim

// Kinematic is the position and velocity pair every entity owns.
type Kinematic struct {
	Position Vec3
	Velocity Vec3
}

// ClampSpeed rescales v uniformly so its length does not exceed limit.
// A vector over the limit comes back with length limit.
func ClampSpeed(v Vec3, limit float64) Vec3 {
	mag := v.Length()
	if mag <= limit {
		return v
	}
	return v.Scale(limit / mag)
}

// ClampToArena keeps the horizontal components inside [-bound, bound].
// The vertical component is left alone.
func ClampToArena(p Vec3, bound float64) Vec3 {
	p.X = clamp(p.X, -bound, bound)
	p.Z = clamp(p.Z, -bound, bound)
	return p
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// MovePlayer advances one player by a tick.
func MovePlayer(k Kinematic, in Intent, t Tuning) Kinematic {
	v := k.Velocity
	ax, az := in.Axes()

	if ax == 0 {
		v.X = float64(v.X * t.Friction)
	} else {
		v.X += float64(float64(ax) * t.Acceleration)
	}
	if az == 0 {
		v.Z = float64(v.Z * t.Friction)
	} else {
		v.Z += float64(float64(az) * t.Acceleration)
	}
	// no vertical input exists
	v.Y = float64(v.Y * t.Friction)

	v = ClampSpeed(v, t.MaxSpeed)
	return Kinematic{
		Position: ClampToArena(k.Position.Add(v), t.Bound()),
		Velocity: v,
	}
}

// SpeedMultiplier scales the pursuer's speed cap by the best score any
// player has reached, up to t.PursuerMaxMult. With no score on the board the
// multiplier is 0 and the pursuer stands still.
func SpeedMultiplier(top uint32, t Tuning) float64 {
	m := float64(t.PursuerMultPerPoint * float64(top))
	if m > t.PursuerMaxMult {
		return t.PursuerMaxMult
	}
	return m
}

// SelectTarget picks where a pursuer at from heads this tick. A player whose
// current run exceeds their highscore takes priority; otherwise the nearest
// player is chosen. Players are scanned in ascending handle order and the
// first match wins every tie. ok is false when there are no players.
func SelectTarget(from Vec3, players []Player) (target Vec3, ok bool) {
	best := -1
	bestDist := 0.0
	for _, i := range handleOrder(players) {
		p := players[i]
		if p.Score.Current > p.Score.Highscore {
			return p.Position, true
		}
		d := from.Distance(p.Position)
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return Vec3{}, false
	}
	return players[best].Position, true
}

// MovePursuer advances one pursuer by a tick, steering toward SelectTarget.
func MovePursuer(k Kinematic, players []Player, t Tuning) Kinematic {
	v := k.Velocity
	if target, ok := SelectTarget(k.Position, players); ok {
		dir := target.Sub(k.Position).NormalizeOrZero()
		v = v.Add(dir.Scale(t.Acceleration))
	}

	limit := float64(t.MaxSpeed * SpeedMultiplier(TopHighscore(players), t))
	v = ClampSpeed(v, limit)
	return Kinematic{
		Position: ClampToArena(k.Position.Add(v), t.Bound()),
		Velocity: v,
	}
}
