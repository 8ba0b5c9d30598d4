// Package view draws the arena and scoreboard in a terminal.
package view

import (
	"strings"

	"github.com/boxchase/server/internal/data"
	"github.com/boxchase/server/internal/sim"
	"github.com/gdamore/tcell/v2"
)

const (
	minPanelWidth = 18
	pursuerGlyph  = '@'
)

var (
	panelStyle   = tcell.StyleDefault.Background(tcell.NewRGBColor(0x6E, 0x69, 0x61)).Foreground(tcell.ColorBlack)
	floorStyle   = tcell.StyleDefault.Foreground(tcell.NewRGBColor(0x4D, 0x80, 0x4D))
	pursuerStyle = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
)

// View renders frames onto a tcell screen. It implements the scoreboard
// system's FrameSink.
type View struct {
	screen tcell.Screen
	roster *data.Roster
	tuning sim.Tuning
	styles []tcell.Style // per roster entry
}

func New(screen tcell.Screen, roster *data.Roster, tuning sim.Tuning) *View {
	v := &View{screen: screen, roster: roster, tuning: tuning}
	for i := 0; i < roster.Count(); i++ {
		c := tcell.GetColor(roster.Entry(i).Color)
		v.styles = append(v.styles, tcell.StyleDefault.Foreground(c).Bold(true))
	}
	return v
}

// Present draws w and board and flushes the screen.
func (v *View) Present(w sim.World, board []sim.Entry) {
	v.screen.Clear()
	width, height := v.screen.Size()
	panel := width * 15 / 100
	if panel < minPanelWidth {
		panel = minPanelWidth
	}
	if panel > width {
		panel = width
	}

	v.drawPanel(panel, height, board)
	v.drawArena(panel+1, 0, width-panel-1, height, w)
	v.screen.Show()
}

func (v *View) drawPanel(width, height int, board []sim.Entry) {
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v.screen.SetContent(x, y, ' ', nil, panelStyle)
		}
	}
	lines := append([]string{"Scores", ""}, strings.Split(sim.FormatScoreboard(board), "\n")...)
	for y, line := range lines {
		if y >= height {
			break
		}
		v.putString(0, y, width, line, panelStyle)
	}
}

// drawArena maps the arena's X axis to columns and Z axis to rows inside
// the given region. Terminal cells are about twice as tall as wide, so the
// arena is drawn twice as many columns wide as rows tall.
func (v *View) drawArena(x0, y0, width, height int, w sim.World) {
	rows := height
	if width/2 < rows {
		rows = width / 2
	}
	if rows < 2 {
		return
	}
	cols := rows * 2

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			v.screen.SetContent(x0+x, y0+y, '·', nil, floorStyle)
		}
	}

	half := v.tuning.ArenaSize / 2
	cell := func(p sim.Vec3) (int, int, bool) {
		cx := int((p.X + half) / v.tuning.ArenaSize * float64(cols))
		cy := int((p.Z + half) / v.tuning.ArenaSize * float64(rows))
		if cx == cols {
			cx--
		}
		if cy == rows {
			cy--
		}
		return x0 + cx, y0 + cy, cx >= 0 && cx < cols && cy >= 0 && cy < rows
	}

	for _, p := range w.Players {
		if x, y, ok := cell(p.Position); ok {
			name := v.roster.Name(p.Handle)
			glyph := '?'
			if name != "" {
				glyph = []rune(name)[0]
			}
			v.screen.SetContent(x, y, glyph, nil, v.styles[p.Handle%len(v.styles)])
		}
	}
	for _, q := range w.Pursuers {
		if x, y, ok := cell(q.Position); ok {
			v.screen.SetContent(x, y, pursuerGlyph, nil, pursuerStyle)
		}
	}
}

func (v *View) putString(x, y, max int, s string, style tcell.Style) {
	i := 0
	for _, r := range s {
		if i >= max {
			return
		}
		v.screen.SetContent(x+i, y, r, nil, style)
		i++
	}
}
