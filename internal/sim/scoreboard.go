package sim

import (
	"fmt"
	"sort"
	"strings"
)

// Namer resolves a player handle to its display name.
type Namer interface {
	Name(handle int) string
}

// Entry is one scoreboard row.
type Entry struct {
	Handle    int    `json:"-" yaml:"handle"`
	Name      string `json:"name" yaml:"name"`
	Highscore uint32 `json:"highscore" yaml:"highscore"`
	Current   uint32 `json:"current" yaml:"current"`
}

// Scoreboard lists every player sorted by highscore, best first. Equal
// highscores keep ascending handle order.
func Scoreboard(w World, names Namer) []Entry {
	entries := make([]Entry, 0, len(w.Players))
	for _, i := range handleOrder(w.Players) {
		p := w.Players[i]
		entries = append(entries, Entry{
			Handle:    p.Handle,
			Name:      names.Name(p.Handle),
			Highscore: p.Score.Highscore,
			Current:   p.Score.Current,
		})
	}
	sort.SliceStable(entries, func(a, b int) bool {
		return entries[a].Highscore > entries[b].Highscore
	})
	return entries
}

// FormatScoreboard renders entries as the text block shown beside the arena.
func FormatScoreboard(entries []Entry) string {
	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "%s\nHighscore: %d\nScore: %d\n\n", e.Name, e.Highscore, e.Current)
	}
	return b.String()
}
