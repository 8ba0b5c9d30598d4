package data

import (
	"fmt"
	"os"
	"sort"

	"github.com/boxchase/server/internal/sim"
	"gopkg.in/yaml.v3"
)

// TrackSpan holds one input for frames From through To inclusive.
type TrackSpan struct {
	From uint32 `yaml:"from"`
	To   uint32 `yaml:"to"`
	Keys string `yaml:"keys"` // direction letters, e.g. "UL"
}

// TrackLane is the recorded input of one player handle.
type TrackLane struct {
	Handle int         `yaml:"handle"`
	Spans  []TrackSpan `yaml:"spans"`
}

// compiledSpan is a TrackSpan with Keys already parsed.
type compiledSpan struct {
	from, to uint32
	input    sim.Input
}

// InputTrack replays recorded per-frame inputs. Frames no span covers read
// as no input.
type InputTrack struct {
	lanes map[int][]compiledSpan
}

type trackFile struct {
	Lanes []TrackLane `yaml:"lanes"`
}

// LoadInputTrack loads a recorded input track YAML file.
func LoadInputTrack(path string) (*InputTrack, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input track: %w", err)
	}
	var f trackFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse input track: %w", err)
	}
	t, err := NewInputTrack(f.Lanes)
	if err != nil {
		return nil, fmt.Errorf("input track %s: %w", path, err)
	}
	return t, nil
}

// NewInputTrack builds a track from lanes. Spans of one handle must not
// overlap.
func NewInputTrack(lanes []TrackLane) (*InputTrack, error) {
	t := &InputTrack{lanes: make(map[int][]compiledSpan, len(lanes))}
	for _, lane := range lanes {
		if lane.Handle < 0 {
			return nil, fmt.Errorf("negative handle %d", lane.Handle)
		}
		spans := t.lanes[lane.Handle]
		for _, s := range lane.Spans {
			if s.To < s.From {
				return nil, fmt.Errorf("handle %d: span %d-%d ends before it starts", lane.Handle, s.From, s.To)
			}
			spans = append(spans, compiledSpan{from: s.From, to: s.To, input: sim.ParseKeys(s.Keys)})
		}
		sort.Slice(spans, func(i, j int) bool { return spans[i].from < spans[j].from })
		for i := 1; i < len(spans); i++ {
			if spans[i].from <= spans[i-1].to {
				return nil, fmt.Errorf("handle %d: span at frame %d overlaps span ending %d", lane.Handle, spans[i].from, spans[i-1].to)
			}
		}
		t.lanes[lane.Handle] = spans
	}
	return t, nil
}

// Input returns the recorded input of handle at frame.
func (t *InputTrack) Input(handle int, frame uint32) sim.Input {
	spans := t.lanes[handle]
	i := sort.Search(len(spans), func(i int) bool { return spans[i].to >= frame })
	if i < len(spans) && spans[i].from <= frame {
		return spans[i].input
	}
	return 0
}

// Handles lists the handles that have a lane, ascending.
func (t *InputTrack) Handles() []int {
	hs := make([]int, 0, len(t.lanes))
	for h := range t.lanes {
		hs = append(hs, h)
	}
	sort.Ints(hs)
	return hs
}

// LastFrame is the final frame any span covers.
func (t *InputTrack) LastFrame() uint32 {
	var last uint32
	for _, spans := range t.lanes {
		if n := len(spans); n > 0 && spans[n-1].to > last {
			last = spans[n-1].to
		}
	}
	return last
}
