package sim

import (
	"math"
	"reflect"
	"testing"
)

// scriptedInputs is a fixed, frame-derived input pattern for n players.
func scriptedInputs(frame uint32, n int) []Input {
	in := make([]Input, n)
	for h := range in {
		in[h] = Input((frame/7 + uint32(h)*5) % 16)
	}
	return in
}

func run(w World, frames int, tn Tuning) World {
	for i := 0; i < frames; i++ {
		w = Step(w, scriptedInputs(w.Frame, len(w.Players)), tn)
	}
	return w
}

func TestNewWorld(t *testing.T) {
	tn := DefaultTuning()
	w := NewWorld(4, 1, tn)
	if len(w.Players) != 4 || len(w.Pursuers) != 1 || w.Frame != 0 {
		t.Fatalf("NewWorld = %+v", w)
	}
	r := tn.ArenaSize / 4
	for h, p := range w.Players {
		if p.Handle != h {
			t.Fatalf("player %d has handle %d", h, p.Handle)
		}
		d := math.Hypot(p.Position.X, p.Position.Z)
		if math.Abs(d-r) > eps || p.Position.Y != tn.PlayerSize/2 {
			t.Fatalf("player %d at %v, want radius %v", h, p.Position, r)
		}
		if p.Velocity != (Vec3{}) || p.Score != (Score{}) {
			t.Fatalf("player %d not at rest: %+v", h, p)
		}
	}
	if w.Players[0].Position.X != r || w.Players[0].Position.Z != 0 {
		t.Fatalf("handle 0 at %v, want (%v, _, 0)", w.Players[0].Position, r)
	}
}

func TestStepSinglePlayerScenario(t *testing.T) {
	tn := DefaultTuning()
	w := NewWorld(1, 1, tn)

	w = Step(w, nil, tn)
	p := w.Players[0]
	if w.Frame != 1 {
		t.Fatalf("frame = %d, want 1", w.Frame)
	}
	if p.Score.Current != 0 || p.Position != (Vec3{tn.ArenaSize / 2, tn.PlayerSize / 2, 0}) {
		t.Fatalf("after frame 0: %+v, want respawn at angle 0", p)
	}

	w = Step(w, nil, tn)
	p = w.Players[0]
	if p.Score.Current != 1 || p.Score.Highscore != 1 {
		t.Fatalf("after frame 1: score %+v, want current 1 highscore 1", p.Score)
	}
}

func TestStepDoesNotMutateInput(t *testing.T) {
	tn := DefaultTuning()
	w := run(NewWorld(3, 2, tn), 50, tn)
	before := w.Clone()
	Step(w, scriptedInputs(w.Frame, 3), tn)
	if !reflect.DeepEqual(before, w) {
		t.Fatal("Step modified its input snapshot")
	}
}

func TestStepDeterministic(t *testing.T) {
	tn := DefaultTuning()
	start := NewWorld(4, 2, tn)

	a := run(start.Clone(), 3000, tn)
	b := run(start.Clone(), 3000, tn)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("two runs from the same start diverged")
	}
	if a.Checksum() != b.Checksum() {
		t.Fatalf("checksums differ: %x vs %x", a.Checksum(), b.Checksum())
	}

	// replaying one frame many times from the same snapshot
	mid := run(start.Clone(), 1234, tn)
	in := scriptedInputs(mid.Frame, 4)
	want := Step(mid, in, tn).Checksum()
	for i := 0; i < 20; i++ {
		if got := Step(mid, in, tn).Checksum(); got != want {
			t.Fatalf("resimulation %d checksum %x, want %x", i, got, want)
		}
	}
}

func TestStepInvariants(t *testing.T) {
	tn := DefaultTuning()
	w := NewWorld(4, 2, tn)
	highs := make([]uint32, 4)

	for i := 0; i < 5000; i++ {
		w = Step(w, scriptedInputs(w.Frame, 4), tn)
		for h, p := range w.Players {
			if p.Velocity.Length() > tn.MaxSpeed+eps {
				t.Fatalf("frame %d: player %d speed %v over cap", w.Frame, h, p.Velocity.Length())
			}
			if p.Score.Highscore < highs[h] {
				t.Fatalf("frame %d: player %d highscore fell %d -> %d", w.Frame, h, highs[h], p.Score.Highscore)
			}
			highs[h] = p.Score.Highscore
			if p.Score.Current != w.Frame-1-p.Score.LastDeathFrame {
				t.Fatalf("frame %d: player %d current %d, last death %d", w.Frame, h, p.Score.Current, p.Score.LastDeathFrame)
			}
			// a player respawned this frame sits on the outer circle until its next move
			if p.Score.Current != 0 && (math.Abs(p.Position.X) > tn.Bound() || math.Abs(p.Position.Z) > tn.Bound()) {
				t.Fatalf("frame %d: player %d at %v outside arena", w.Frame, h, p.Position)
			}
		}
		for i, e := range w.Pursuers {
			if limit := tn.MaxSpeed * tn.PursuerMaxMult; e.Velocity.Length() > limit+eps {
				t.Fatalf("frame %d: pursuer %d speed %v over %v", w.Frame, i, e.Velocity.Length(), limit)
			}
			if math.Abs(e.Position.X) > tn.Bound() || math.Abs(e.Position.Z) > tn.Bound() {
				t.Fatalf("frame %d: pursuer %d at %v outside arena", w.Frame, i, e.Position)
			}
		}
	}
}

func TestChecksumSensitive(t *testing.T) {
	tn := DefaultTuning()
	w := NewWorld(2, 1, tn)
	c := w.Clone()
	c.Players[1].Velocity.X = math.Nextafter(0, 1)
	if w.Checksum() == c.Checksum() {
		t.Fatal("checksum ignored a one-ulp velocity change")
	}
	c = w.Clone()
	c.Frame++
	if w.Checksum() == c.Checksum() {
		t.Fatal("checksum ignored the frame counter")
	}
}
