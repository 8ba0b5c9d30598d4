package event

// Session events. They are derived from consecutive snapshots after a tick
// and never feed back into the simulation.

// PlayerDied fires on the frame a pursuer catches a player.
type PlayerDied struct {
	Handle   int
	Frame    uint32
	Survived uint32 // length of the run that just ended, in frames
}

// HighscoreBeaten fires each frame a player's highscore rises.
type HighscoreBeaten struct {
	Handle    int
	Highscore uint32
	Frame     uint32
}
