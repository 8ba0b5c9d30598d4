// Package audio plays short cues for session events.
package audio

import (
	"time"

	"github.com/boxchase/server/internal/core/event"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"go.uber.org/zap"
)

const (
	sampleRate  = beep.SampleRate(44100)
	caughtTone  = 220.0 // Hz
	caughtLen   = 120 * time.Millisecond
	recordTone  = 880.0
	recordLen   = 40 * time.Millisecond
	recordEvery = 600 // frames, 10s at 60 ticks/s
)

// Beeper plays a low tone when a player is caught and a short high blip
// each time the session record passes another recordEvery frames. Without
// a working speaker it stays silent and only counts cues.
type Beeper struct {
	live bool
	log  *zap.Logger
	top  uint32 // best highscore already announced
	cues int
}

// NewBeeper initialises the speaker when enabled. Speaker failure is
// non-fatal: the session runs without sound.
func NewBeeper(enabled bool, log *zap.Logger) *Beeper {
	b := &Beeper{log: log}
	if !enabled {
		return b
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		log.Warn("audio unavailable, continuing without sound", zap.Error(err))
		return b
	}
	b.live = true
	return b
}

// Subscribe hooks the beeper to session events.
func (b *Beeper) Subscribe(bus *event.Bus) {
	event.Subscribe(bus, func(event.PlayerDied) {
		b.play(caughtTone, caughtLen)
	})
	event.Subscribe(bus, func(e event.HighscoreBeaten) {
		if e.Highscore <= b.top {
			return
		}
		b.top = e.Highscore
		if e.Highscore%recordEvery == 0 {
			b.play(recordTone, recordLen)
		}
	})
}

// Cues reports how many tones have been requested.
func (b *Beeper) Cues() int { return b.cues }

func (b *Beeper) play(freq float64, length time.Duration) {
	b.cues++
	if !b.live {
		return
	}
	tone, err := generators.SineTone(sampleRate, freq)
	if err != nil {
		b.log.Debug("tone generator", zap.Float64("freq", freq), zap.Error(err))
		return
	}
	speaker.Play(beep.Take(sampleRate.N(length), tone))
}

// Close stops playback.
func (b *Beeper) Close() {
	if b.live {
		speaker.Close()
	}
}
