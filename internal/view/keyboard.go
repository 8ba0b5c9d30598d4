package view

import (
	"github.com/boxchase/server/internal/sim"
	"github.com/gdamore/tcell/v2"
)

// HoldFrames is how long a key press keeps its direction held. Terminals
// report key repeats but never key releases.
const HoldFrames = 8

// KeyboardSource turns terminal key events into input for one handle.
// It is fed from the game loop goroutine only.
type KeyboardSource struct {
	handle int
	until  [4]uint32 // per direction bit: held while frame < until
}

func NewKeyboardSource(handle int) *KeyboardSource {
	return &KeyboardSource{handle: handle}
}

// HandleEvent records a key press seen at frame. It returns false when
// the event asks to quit.
func (k *KeyboardSource) HandleEvent(ev tcell.Event, frame uint32) bool {
	key, ok := ev.(*tcell.EventKey)
	if !ok {
		return true
	}
	var bit sim.Input
	switch key.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyUp:
		bit = sim.InputUp
	case tcell.KeyDown:
		bit = sim.InputDown
	case tcell.KeyLeft:
		bit = sim.InputLeft
	case tcell.KeyRight:
		bit = sim.InputRight
	case tcell.KeyRune:
		switch key.Rune() {
		case 'q', 'Q':
			return false
		case 'w', 'W':
			bit = sim.InputUp
		case 's', 'S':
			bit = sim.InputDown
		case 'a', 'A':
			bit = sim.InputLeft
		case 'd', 'D':
			bit = sim.InputRight
		}
	}
	for i := range k.until {
		if bit == 1<<i {
			k.until[i] = frame + HoldFrames
		}
	}
	return true
}

// Input implements the input system's InputSource. Other handles read as
// idle.
func (k *KeyboardSource) Input(handle int, w sim.World) sim.Input {
	if handle != k.handle {
		return 0
	}
	var in sim.Input
	for i, until := range k.until {
		if w.Frame < until {
			in |= 1 << i
		}
	}
	return in
}
