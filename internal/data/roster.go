package data

import (
	"fmt"
	"os"
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// RosterEntry is the display identity of one player handle.
type RosterEntry struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"` // "#rrggbb"
}

// Roster maps player handles to names and colors. Handles past the end wrap
// around, so a roster of four serves any player count.
type Roster struct {
	entries []RosterEntry
}

type rosterFile struct {
	Players []RosterEntry `yaml:"players"`
}

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// DefaultRoster is the built-in four-player roster. The names do not
// describe the colors; they are kept as players know them.
func DefaultRoster() *Roster {
	return &Roster{entries: []RosterEntry{
		{Name: "BLUE", Color: "#CC9933"},
		{Name: "ORANGE", Color: "#0059CC"},
		{Name: "MAGENTA", Color: "#E63333"},
		{Name: "GREEN", Color: "#59B359"},
	}}
}

// LoadRoster loads a roster YAML file. Names are upper-cased for the
// scoreboard.
func LoadRoster(path string) (*Roster, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	var f rosterFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse roster: %w", err)
	}
	if len(f.Players) == 0 {
		return nil, fmt.Errorf("roster %s: no players", path)
	}
	upper := cases.Upper(language.Und)
	for i := range f.Players {
		e := &f.Players[i]
		if e.Name == "" {
			return nil, fmt.Errorf("roster %s: entry %d has no name", path, i)
		}
		if !hexColor.MatchString(e.Color) {
			return nil, fmt.Errorf("roster %s: entry %q color %q is not #rrggbb", path, e.Name, e.Color)
		}
		e.Name = upper.String(e.Name)
	}
	return &Roster{entries: f.Players}, nil
}

// Entry returns the roster entry for a handle.
func (r *Roster) Entry(handle int) RosterEntry {
	n := len(r.entries)
	return r.entries[((handle%n)+n)%n]
}

// Name implements sim.Namer.
func (r *Roster) Name(handle int) string {
	return r.Entry(handle).Name
}

// Count returns the number of distinct roster entries.
func (r *Roster) Count() int {
	return len(r.entries)
}
