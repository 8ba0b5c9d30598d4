package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/boxchase/server/internal/sim"
	"go.uber.org/zap/zaptest"
)

func newEngine(t *testing.T, script string) *Engine {
	t.Helper()
	dir := t.TempDir()
	if script != "" {
		bots := filepath.Join(dir, "bots")
		if err := os.MkdirAll(bots, 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(bots, "bot.lua"), []byte(script), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	e, err := NewEngine(dir, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	t.Cleanup(e.Close)
	return e
}

func testWorld() sim.World {
	w := sim.NewWorld(2, 1, sim.DefaultTuning())
	w.Frame = 42
	w.Players[0].Position = sim.Vec3{X: 1, Z: 1}
	w.Pursuers[0].Position = sim.Vec3{X: 0, Z: 2}
	return w
}

func TestBotInputFromLua(t *testing.T) {
	e := newEngine(t, `
function bot_input(ctx)
  local keys = 0
  if ctx.frame % 2 == 0 then keys = keys + INPUT_UP end
  if ctx.self.x > ctx.pursuers[1].x then keys = keys + INPUT_RIGHT end
  return keys + 0x30
end
`)
	if !e.HasBot() {
		t.Fatal("HasBot = false")
	}
	got := e.BotInput(0, testWorld())
	if got != sim.InputUp|sim.InputRight {
		t.Fatalf("BotInput = %q, want UR with high bits masked", got)
	}
}

func TestBotInputRepeatable(t *testing.T) {
	e := newEngine(t, `
calls = 0
function bot_input(ctx)
  calls = calls + 1
  return math.floor(ctx.self.x * 10) % 16
end
`)
	w := testWorld()
	first := e.BotInput(0, w)
	for i := 0; i < 5; i++ {
		if got := e.BotInput(0, w); got != first {
			t.Fatalf("call %d = %q, want %q", i, got, first)
		}
	}
}

func TestSandboxHasNoRandom(t *testing.T) {
	e := newEngine(t, `
function bot_input(ctx)
  if math.random == nil and os == nil and io == nil then return INPUT_DOWN end
  return INPUT_UP
end
`)
	if got := e.BotInput(0, testWorld()); got != sim.InputDown {
		t.Fatalf("BotInput = %q, sandbox leaks random/os/io", got)
	}
}

func TestBotInputFallsBackToFlee(t *testing.T) {
	w := testWorld()
	want := FleeInput(0, w)

	if got := newEngine(t, "").BotInput(0, w); got != want {
		t.Fatalf("no script: %q, want flee %q", got, want)
	}
	broken := newEngine(t, `function bot_input(ctx) error("boom") end`)
	if got := broken.BotInput(0, w); got != want {
		t.Fatalf("erroring script: %q, want flee %q", got, want)
	}
}

func TestNewEngineRejectsBadScript(t *testing.T) {
	dir := t.TempDir()
	bots := filepath.Join(dir, "bots")
	if err := os.MkdirAll(bots, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bots, "bad.lua"), []byte("function ("), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewEngine(dir, zaptest.NewLogger(t)); err == nil {
		t.Fatal("NewEngine accepted a script with a syntax error")
	}
}

func TestFleeInput(t *testing.T) {
	w := testWorld()
	// pursuer is left of and below (greater Z than) the player
	if got := FleeInput(0, w); got != sim.InputRight|sim.InputUp {
		t.Fatalf("FleeInput = %q, want RU", got)
	}
	if got := FleeInput(9, w); got != 0 {
		t.Fatalf("unknown handle = %q, want none", got)
	}
	w.Pursuers = nil
	if got := FleeInput(0, w); got != 0 {
		t.Fatalf("no pursuers = %q, want none", got)
	}
}
