package sim

import (
	"encoding/binary"
	"hash/fnv"
	"math"
	"sort"
)

// Player is a steerable cube. Handle is fixed for the session and doubles as
// the index into the per-tick input slice.
type Player struct {
	Handle int
	Kinematic
	Score Score
}

// Pursuer is the computer-controlled sphere.
type Pursuer struct {
	Kinematic
}

// World is the complete simulation snapshot. Players are kept in ascending
// handle order.
type World struct {
	Frame    uint32
	Players  []Player
	Pursuers []Pursuer
}

// NewWorld places numPlayers evenly on a circle of radius ArenaSize/4 and
// every pursuer at the origin, all at rest with empty scores.
func NewWorld(numPlayers, numPursuers int, t Tuning) World {
	w := World{
		Players:  make([]Player, numPlayers),
		Pursuers: make([]Pursuer, numPursuers),
	}
	r := t.ArenaSize / 4
	for h := 0; h < numPlayers; h++ {
		rot := float64(float64(h)/float64(numPlayers)) * 2 * math.Pi
		w.Players[h] = Player{
			Handle: h,
			Kinematic: Kinematic{Position: Vec3{
				X: float64(r * math.Cos(rot)),
				Y: t.PlayerSize / 2,
				Z: float64(r * math.Sin(rot)),
			}},
		}
	}
	return w
}

// Clone returns a deep copy that shares no slices with w.
func (w World) Clone() World {
	c := World{Frame: w.Frame}
	if w.Players != nil {
		c.Players = append([]Player(nil), w.Players...)
	}
	if w.Pursuers != nil {
		c.Pursuers = append([]Pursuer(nil), w.Pursuers...)
	}
	return c
}

// Step advances w by one tick and returns the next snapshot. w is not
// modified. inputs is indexed by player handle; a missing entry reads as no
// input.
//
// Step reads nothing but its arguments, so a rollback driver may call it any
// number of times for the same frame and get bit-identical results.
func Step(w World, inputs []Input, t Tuning) World {
	next := World{
		Frame:    w.Frame,
		Players:  make([]Player, len(w.Players)),
		Pursuers: make([]Pursuer, len(w.Pursuers)),
	}

	for i, p := range w.Players {
		var in Input
		if p.Handle >= 0 && p.Handle < len(inputs) {
			in = inputs[p.Handle]
		}
		p.Kinematic = MovePlayer(p.Kinematic, Decode(in), t)
		next.Players[i] = p
	}

	// pursuers steer by where players were at the start of the tick
	for i, e := range w.Pursuers {
		e.Kinematic = MovePursuer(e.Kinematic, w.Players, t)
		next.Pursuers[i] = e
	}

	next.Players = ScorePlayers(next.Players, next.Pursuers, w.Frame, t)
	next.Frame = w.Frame + 1
	return next
}

// Checksum hashes every field of w. Equal snapshots always hash equal;
// any bit of drift in a float shows up.
func (w World) Checksum() uint64 {
	h := fnv.New64a()
	var buf [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	putVec := func(v Vec3) {
		put(math.Float64bits(v.X))
		put(math.Float64bits(v.Y))
		put(math.Float64bits(v.Z))
	}

	put(uint64(w.Frame))
	put(uint64(len(w.Players)))
	for _, p := range w.Players {
		put(uint64(p.Handle))
		putVec(p.Position)
		putVec(p.Velocity)
		put(uint64(p.Score.Current))
		put(uint64(p.Score.Highscore))
		put(uint64(p.Score.LastDeathFrame))
	}
	put(uint64(len(w.Pursuers)))
	for _, e := range w.Pursuers {
		putVec(e.Position)
		putVec(e.Velocity)
	}
	return h.Sum64()
}

// handleOrder returns indices into players sorted by ascending handle.
func handleOrder(players []Player) []int {
	idx := make([]int, len(players))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return players[idx[a]].Handle < players[idx[b]].Handle
	})
	return idx
}
