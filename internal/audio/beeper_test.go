package audio

import (
	"testing"

	"github.com/boxchase/server/internal/core/event"
	"go.uber.org/zap/zaptest"
)

func TestSilentBeeperCountsCues(t *testing.T) {
	b := NewBeeper(false, zaptest.NewLogger(t))
	defer b.Close()
	bus := event.NewBus()
	b.Subscribe(bus)

	event.Emit(bus, event.PlayerDied{Handle: 0, Frame: 5})
	event.Emit(bus, event.PlayerDied{Handle: 1, Frame: 5})
	for h := uint32(1); h <= 1200; h++ {
		event.Emit(bus, event.HighscoreBeaten{Handle: 0, Highscore: h})
	}
	// a second player catching up to the record is not a new record
	event.Emit(bus, event.HighscoreBeaten{Handle: 1, Highscore: 600})
	bus.SwapBuffers()
	bus.DispatchAll()

	if got := b.Cues(); got != 4 {
		t.Fatalf("Cues = %d, want 2 catches + 2 record blips", got)
	}
}
