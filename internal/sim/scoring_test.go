package sim

import (
	"math"
	"testing"
)

func TestCollidesBoundaryInclusive(t *testing.T) {
	tn := DefaultTuning()
	edge := Vec3{X: tn.HitDistance()}
	if !Collides(edge, Vec3{}, tn) {
		t.Fatalf("distance exactly %v did not collide", tn.HitDistance())
	}
	past := Vec3{X: math.Nextafter(tn.HitDistance(), 10)}
	if Collides(past, Vec3{}, tn) {
		t.Fatalf("distance %v collided, want miss", past.X)
	}
}

func TestUpdateScore(t *testing.T) {
	s := UpdateScore(Score{LastDeathFrame: 10, Highscore: 3}, 15)
	if s.Current != 5 || s.Highscore != 5 {
		t.Fatalf("score = %+v, want current 5 highscore 5", s)
	}
	s = UpdateScore(Score{LastDeathFrame: 15, Highscore: 5}, 17)
	if s.Current != 2 || s.Highscore != 5 {
		t.Fatalf("score = %+v, want current 2 highscore 5", s)
	}
}

func TestRespawnPositionDeterministic(t *testing.T) {
	tn := DefaultTuning()
	first := RespawnPosition(37, tn)
	for i := 0; i < 10; i++ {
		if got := RespawnPosition(37, tn); got != first {
			t.Fatalf("call %d = %v, want %v", i, got, first)
		}
	}
	if got := RespawnPosition(137, tn); got != first {
		t.Fatalf("frame 137 = %v, want same slot as 37 %v", got, first)
	}

	rot := 0.37 * 2 * math.Pi
	want := Vec3{2.5 * math.Cos(rot), tn.PlayerSize / 2, 2.5 * math.Sin(rot)}
	if math.Abs(first.X-want.X) > eps || math.Abs(first.Z-want.Z) > eps || first.Y != want.Y {
		t.Fatalf("frame 37 = %v, want %v", first, want)
	}

	if got := RespawnPosition(0, tn); got != (Vec3{2.5, tn.PlayerSize / 2, 0}) {
		t.Fatalf("frame 0 = %v, want (2.5, %v, 0)", got, tn.PlayerSize/2)
	}
}

func TestScorePlayersDeathAndRespawn(t *testing.T) {
	tn := DefaultTuning()
	players := []Player{
		{Handle: 0, Kinematic: Kinematic{Position: Vec3{X: 0.1}, Velocity: Vec3{X: 0.02}}, Score: Score{Highscore: 40}},
		{Handle: 1, Kinematic: Kinematic{Position: Vec3{X: -2}}, Score: Score{LastDeathFrame: 10, Highscore: 5}},
	}
	pursuers := []Pursuer{
		{Kinematic{Position: Vec3{}}},
		{Kinematic{Position: Vec3{X: 0.2}}},
	}

	got := ScorePlayers(players, pursuers, 50, tn)

	caught := got[0]
	if caught.Score.LastDeathFrame != 50 || caught.Score.Current != 0 || caught.Score.Highscore != 40 {
		t.Fatalf("caught score = %+v", caught.Score)
	}
	if caught.Position != RespawnPosition(50, tn) {
		t.Fatalf("caught position = %v, want respawn %v", caught.Position, RespawnPosition(50, tn))
	}
	if caught.Velocity != players[0].Velocity {
		t.Fatalf("respawn changed velocity to %v", caught.Velocity)
	}

	safe := got[1]
	if safe.Score.Current != 40 || safe.Score.Highscore != 40 {
		t.Fatalf("safe score = %+v, want current 40 highscore 40", safe.Score)
	}
	if safe.Position != players[1].Position {
		t.Fatalf("safe player moved to %v", safe.Position)
	}

	if players[0].Score.LastDeathFrame != 0 {
		t.Fatal("ScorePlayers modified its input")
	}
}

func TestTopHighscore(t *testing.T) {
	players := []Player{
		{Score: Score{Highscore: 3}},
		{Score: Score{Highscore: 12}},
		{Score: Score{Highscore: 7}},
	}
	if got := TopHighscore(players); got != 12 {
		t.Fatalf("TopHighscore = %d, want 12", got)
	}
	if got := TopHighscore(nil); got != 0 {
		t.Fatalf("TopHighscore(nil) = %d, want 0", got)
	}
}
