package sim

import "math"

// Score is a player's survival bookkeeping, measured in frames.
type Score struct {
	Current        uint32
	Highscore      uint32
	LastDeathFrame uint32
}

// Collides reports whether a pursuer touches a player. The boundary is
// inclusive.
func Collides(player, pursuer Vec3, t Tuning) bool {
	return player.Distance(pursuer) <= t.HitDistance()
}

// UpdateScore recomputes Current from the frame counter and raises
// Highscore if needed.
func UpdateScore(s Score, frame uint32) Score {
	s.Current = frame - s.LastDeathFrame
	if s.Current > s.Highscore {
		s.Highscore = s.Current
	}
	return s
}

// RespawnPosition picks a point on the arena's outer circle from the frame
// counter alone, so a resimulated frame respawns at the same spot.
func RespawnPosition(frame uint32, t Tuning) Vec3 {
	slots := t.RespawnSlots
	if slots == 0 {
		slots = 1
	}
	slot := float64(frame % slots)
	rot := float64(float64(slot/float64(slots)) * 2 * math.Pi)
	radius := t.ArenaSize / 2
	return Vec3{
		X: float64(radius * math.Cos(rot)),
		Y: t.PlayerSize / 2,
		Z: float64(radius * math.Sin(rot)),
	}
}

// ScorePlayers applies collisions, score updates and respawns for one frame
// and returns the updated players. The input slice is not modified.
//
// Every collision is resolved before any score is recomputed, so a player
// caught this frame reads Current == 0 immediately and is moved to the
// respawn point. Velocity survives a respawn.
func ScorePlayers(players []Player, pursuers []Pursuer, frame uint32, t Tuning) []Player {
	out := make([]Player, len(players))
	copy(out, players)

	for i := range out {
		for _, e := range pursuers {
			if Collides(out[i].Position, e.Position, t) {
				out[i].Score.LastDeathFrame = frame
			}
		}
	}

	for i := range out {
		out[i].Score = UpdateScore(out[i].Score, frame)
		if out[i].Score.Current == 0 {
			out[i].Position = RespawnPosition(frame, t)
		}
	}
	return out
}

// TopHighscore is the best highscore among players, recomputed by full scan.
func TopHighscore(players []Player) uint32 {
	var top uint32
	for _, p := range players {
		if p.Score.Highscore > top {
			top = p.Score.Highscore
		}
	}
	return top
}
