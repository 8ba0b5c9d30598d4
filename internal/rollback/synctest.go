// Package rollback checks that the simulation step is deterministic the way
// a rollback driver needs it to be: every frame is stepped, then the last
// few frames are thrown away and resimulated from a saved snapshot, and the
// checksums must agree.
package rollback

import (
	"errors"
	"fmt"

	"github.com/boxchase/server/internal/sim"
)

// ErrDesync is returned when a resimulated frame hashes differently from
// the first time it was simulated.
var ErrDesync = errors.New("rollback: resimulation desync")

// StepFunc advances a snapshot by one frame.
type StepFunc func(w sim.World, inputs []sim.Input, t sim.Tuning) sim.World

type frameRecord struct {
	start    sim.World // snapshot before the frame
	inputs   []sim.Input
	checksum uint64 // checksum after the frame
}

// SyncTester drives a step function and re-checks the last CheckDistance
// frames after every advance.
type SyncTester struct {
	step          StepFunc
	tuning        sim.Tuning
	checkDistance int

	ring []frameRecord
	head int // next slot to write
	size int

	Resimulated uint64 // total frames replayed, for diagnostics
}

// NewSyncTester creates a tester. checkDistance of 0 disables the check.
func NewSyncTester(step StepFunc, tuning sim.Tuning, checkDistance int) *SyncTester {
	if checkDistance < 0 {
		checkDistance = 0
	}
	return &SyncTester{
		step:          step,
		tuning:        tuning,
		checkDistance: checkDistance,
		ring:          make([]frameRecord, checkDistance+1),
	}
}

// Advance steps w with inputs, then rolls back and resimulates up to
// CheckDistance recorded frames. It returns the new snapshot, or ErrDesync
// naming the first frame whose checksum moved.
func (s *SyncTester) Advance(w sim.World, inputs []sim.Input) (sim.World, error) {
	next := s.step(w, inputs, s.tuning)
	if s.checkDistance == 0 {
		return next, nil
	}

	s.record(frameRecord{
		start:    w.Clone(),
		inputs:   append([]sim.Input(nil), inputs...),
		checksum: next.Checksum(),
	})

	depth := s.checkDistance
	if depth > s.size {
		depth = s.size
	}
	oldest := s.at(depth - 1)
	replay := oldest.start.Clone()
	for i := depth - 1; i >= 0; i-- {
		rec := s.at(i)
		replay = s.step(replay, rec.inputs, s.tuning)
		s.Resimulated++
		if got := replay.Checksum(); got != rec.checksum {
			return next, fmt.Errorf("%w: frame %d checksum %016x, first run %016x",
				ErrDesync, rec.start.Frame, got, rec.checksum)
		}
	}
	return next, nil
}

func (s *SyncTester) record(r frameRecord) {
	s.ring[s.head] = r
	s.head = (s.head + 1) % len(s.ring)
	if s.size < len(s.ring) {
		s.size++
	}
}

// at returns the record ago frames back; 0 is the most recent.
func (s *SyncTester) at(ago int) frameRecord {
	n := len(s.ring)
	return s.ring[((s.head-1-ago)%n+n)%n]
}
