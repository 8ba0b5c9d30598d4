package sim

import "strings"

// Input is the raw per-player bitmask exchanged by the rollback driver.
// Only the low four bits carry meaning.
type Input uint8

const (
	InputUp Input = 1 << iota
	InputDown
	InputLeft
	InputRight
)

// Intent is a decoded Input. Opposing flags may both be set.
type Intent struct {
	Up, Down, Left, Right bool
}

// Decode splits a bitmask into directional flags. Unused bits are ignored.
func Decode(in Input) Intent {
	return Intent{
		Up:    in&InputUp != 0,
		Down:  in&InputDown != 0,
		Left:  in&InputLeft != 0,
		Right: in&InputRight != 0,
	}
}

// Axes returns the signed horizontal push on X and Z. Opposing directions
// held together cancel to 0, the same as holding neither.
func (i Intent) Axes() (x, z int) {
	return axis(i.Left, i.Right), axis(i.Up, i.Down)
}

func axis(neg, pos bool) int {
	switch {
	case neg && !pos:
		return -1
	case pos && !neg:
		return 1
	}
	return 0
}

// ParseKeys builds an Input from direction letters ("U", "D", "L", "R",
// any case). Other characters are skipped.
func ParseKeys(keys string) Input {
	var in Input
	for _, r := range strings.ToUpper(keys) {
		switch r {
		case 'U':
			in |= InputUp
		case 'D':
			in |= InputDown
		case 'L':
			in |= InputLeft
		case 'R':
			in |= InputRight
		}
	}
	return in
}

func (in Input) String() string {
	var b strings.Builder
	if in&InputUp != 0 {
		b.WriteByte('U')
	}
	if in&InputDown != 0 {
		b.WriteByte('D')
	}
	if in&InputLeft != 0 {
		b.WriteByte('L')
	}
	if in&InputRight != 0 {
		b.WriteByte('R')
	}
	return b.String()
}
