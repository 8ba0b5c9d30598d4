// replay runs a recorded input track through the simulation without a
// terminal or network and prints the final scoreboard and world checksum
// as YAML. Two machines replaying the same track must print the same
// checksum.
//
// Usage:
//
//	go run ./cmd/replay -track data/yaml/track.yaml [-frames N] [-check N] [-config path]
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/boxchase/server/internal/config"
	coresys "github.com/boxchase/server/internal/core/system"
	"github.com/boxchase/server/internal/data"
	"github.com/boxchase/server/internal/sim"
	"github.com/boxchase/server/internal/system"
	"github.com/boxchase/server/internal/world"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// report is the YAML document written to stdout.
type report struct {
	Frames      uint32      `yaml:"frames"`
	Checksum    string      `yaml:"checksum"`
	Resimulated uint64      `yaml:"resimulated"`
	Scoreboard  []sim.Entry `yaml:"scoreboard"`
}

func main() {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	cfgPath := fs.String("config", "", "server config (default: built-in settings)")
	trackPath := fs.String("track", "", "recorded input track YAML")
	frames := fs.Uint("frames", 0, "frames to simulate (default: through the last recorded frame)")
	check := fs.Int("check", 0, "sync-test rollback depth, 0 = off")
	fs.Parse(os.Args[1:])

	if *trackPath == "" {
		fmt.Fprintln(os.Stderr, "replay: -track is required")
		fs.Usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			os.Exit(1)
		}
	}

	track, err := data.LoadInputTrack(*trackPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	n, err := frameCount(*frames, track.LastFrame())
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		fs.Usage()
		os.Exit(2)
	}

	log, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	rep, err := replay(cfg, track, n, *check, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	if err := enc.Encode(rep); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
	enc.Close()
}

// frameCount resolves the -frames flag. Zero means through the last
// recorded frame; any count that does not fit the frame counter is refused.
func frameCount(flagFrames uint, lastFrame uint32) (uint32, error) {
	if flagFrames == 0 {
		if lastFrame == math.MaxUint32 {
			return 0, fmt.Errorf("track runs to frame %d, pass -frames explicitly", lastFrame)
		}
		return lastFrame + 1, nil
	}
	if flagFrames > math.MaxUint32 {
		return 0, fmt.Errorf("-frames %d exceeds the frame counter limit %d", flagFrames, uint32(math.MaxUint32))
	}
	return uint32(flagFrames), nil
}

// replay drives the same system pipeline as the server, minus outputs,
// for the given number of frames.
func replay(cfg *config.Config, track *data.InputTrack, frames uint32, check int, log *zap.Logger) (report, error) {
	for _, h := range track.Handles() {
		if h >= cfg.Session.Players {
			return report{}, fmt.Errorf("track handle %d but session has %d players", h, cfg.Session.Players)
		}
	}

	ws := world.NewState(cfg.Session.Players, cfg.Session.Pursuers, cfg.SimTuning(), data.DefaultRoster())
	inputs := system.NewInputSystem(ws, log)
	for _, h := range track.Handles() {
		inputs.Bind(h, system.InputSourceFunc(func(handle int, w sim.World) sim.Input {
			return track.Input(handle, w.Frame)
		}))
	}

	var desync error
	step := system.NewSimulationSystem(ws, check, func(err error) {
		if desync == nil {
			desync = err
		}
	}, log)
	board := system.NewScoreboardSystem(ws)

	runner := coresys.NewRunner()
	runner.Register(inputs)
	runner.Register(step)
	runner.Register(board)

	start := time.Now()
	for ws.Frame() < frames {
		runner.Tick(cfg.Session.TickRate)
		if desync != nil {
			return report{}, desync
		}
	}
	log.Debug("replay finished",
		zap.Uint32("frames", frames),
		zap.Duration("elapsed", time.Since(start)),
	)

	return report{
		Frames:      ws.Frame(),
		Checksum:    fmt.Sprintf("%016x", ws.Current().Checksum()),
		Resimulated: step.Resimulated(),
		Scoreboard:  board.Last(),
	}, nil
}
