package main

import (
	"math"
	"strings"
	"testing"

	"github.com/boxchase/server/internal/config"
	"github.com/boxchase/server/internal/data"
	"go.uber.org/zap/zaptest"
	"gopkg.in/yaml.v3"
)

func testTrack(t *testing.T) *data.InputTrack {
	t.Helper()
	track, err := data.NewInputTrack([]data.TrackLane{
		{Handle: 0, Spans: []data.TrackSpan{{From: 0, To: 90, Keys: "R"}, {From: 91, To: 240, Keys: "UL"}}},
		{Handle: 1, Spans: []data.TrackSpan{{From: 30, To: 300, Keys: "D"}}},
	})
	if err != nil {
		t.Fatalf("NewInputTrack: %v", err)
	}
	return track
}

func TestReplayIsRepeatable(t *testing.T) {
	cfg := config.Default()
	track := testTrack(t)

	first, err := replay(cfg, track, 400, 0, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	second, err := replay(cfg, track, 400, 8, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("replay with sync test: %v", err)
	}

	if first.Frames != 400 || second.Frames != 400 {
		t.Fatalf("frames: got %d and %d, want 400", first.Frames, second.Frames)
	}
	if first.Checksum != second.Checksum {
		t.Fatalf("checksum differs between runs: %s vs %s", first.Checksum, second.Checksum)
	}
	if first.Resimulated != 0 {
		t.Fatalf("resimulated without sync test: %d", first.Resimulated)
	}
	if second.Resimulated == 0 {
		t.Fatal("sync test did not resimulate anything")
	}
	if len(second.Scoreboard) != cfg.Session.Players {
		t.Fatalf("scoreboard rows: got %d, want %d", len(second.Scoreboard), cfg.Session.Players)
	}
}

func TestReplayRejectsUnknownHandle(t *testing.T) {
	cfg := config.Default()
	track, err := data.NewInputTrack([]data.TrackLane{
		{Handle: 5, Spans: []data.TrackSpan{{From: 0, To: 10, Keys: "U"}}},
	})
	if err != nil {
		t.Fatalf("NewInputTrack: %v", err)
	}
	if _, err := replay(cfg, track, 10, 0, zaptest.NewLogger(t)); err == nil {
		t.Fatal("expected an error for a handle outside the session")
	}
}

func TestReportYAML(t *testing.T) {
	rep, err := replay(config.Default(), testTrack(t), 60, 0, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	out, err := yaml.Marshal(rep)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"frames: 60", "checksum: ", "scoreboard:", "name: BLUE", "name: ORANGE"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestFrameCount(t *testing.T) {
	tests := []struct {
		name    string
		flag    uint
		last    uint32
		want    uint32
		wantErr bool
	}{
		{"default runs through last frame", 0, 599, 600, false},
		{"explicit count", 120, 599, 120, false},
		{"largest count", math.MaxUint32, 0, math.MaxUint32, false},
		{"count past the frame counter", uint(math.MaxUint32) + 1, 0, 0, true},
		{"track ending at the last frame", 0, math.MaxUint32, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := frameCount(tt.flag, tt.last)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}
