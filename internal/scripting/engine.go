package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/boxchase/server/internal/sim"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM running bot scripts.
// Single-goroutine access only (game loop).
//
// Scripts get the base, table, string and math libraries with math.random
// removed, and see nothing but the snapshot handed to bot_input, so a bot's
// input is a function of the frame it is asked about.
type Engine struct {
	vm     *lua.LState
	log    *zap.Logger
	failed bool // bot_input raised an error once; already logged
}

// NewEngine creates a Lua engine and loads every script under dir/bots.
// A missing directory leaves the engine with only the Go fallback bot.
func NewEngine(dir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := vm.CallByParam(lua.P{Fn: vm.NewFunction(lib.fn), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			vm.Close()
			return nil, fmt.Errorf("open lua lib %s: %w", lib.name, err)
		}
	}
	if m, ok := vm.GetGlobal(lua.MathLibName).(*lua.LTable); ok {
		m.RawSetString("random", lua.LNil)
		m.RawSetString("randomseed", lua.LNil)
	}
	for _, g := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		vm.SetGlobal(g, lua.LNil)
	}

	vm.SetGlobal("API_VERSION", lua.LNumber(1))
	vm.SetGlobal("INPUT_UP", lua.LNumber(sim.InputUp))
	vm.SetGlobal("INPUT_DOWN", lua.LNumber(sim.InputDown))
	vm.SetGlobal("INPUT_LEFT", lua.LNumber(sim.InputLeft))
	vm.SetGlobal("INPUT_RIGHT", lua.LNumber(sim.InputRight))

	e := &Engine{vm: vm, log: log}
	if err := e.loadDir(filepath.Join(dir, "bots")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load bot scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		src, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		fn, err := e.vm.LoadString(string(src))
		if err != nil {
			return fmt.Errorf("compile %s: %w", path, err)
		}
		e.vm.Push(fn)
		if err := e.vm.PCall(0, lua.MultRet, nil); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// HasBot reports whether a script defined bot_input.
func (e *Engine) HasBot() bool {
	return e.vm.GetGlobal("bot_input") != lua.LNil
}

func (e *Engine) Close() {
	e.vm.Close()
}

// BotInput asks the Lua bot_input function for handle's input on w. If no
// script defines it, or the script errors, FleeInput decides instead.
func (e *Engine) BotInput(handle int, w sim.World) sim.Input {
	fn := e.vm.GetGlobal("bot_input")
	if fn == lua.LNil || e.failed {
		return FleeInput(handle, w)
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, e.contextTable(handle, w)); err != nil {
		e.failed = true
		e.log.Error("bot_input failed, using flee bot", zap.Int("handle", handle), zap.Uint32("frame", w.Frame), zap.Error(err))
		return FleeInput(handle, w)
	}

	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	n, ok := ret.(lua.LNumber)
	if !ok {
		return 0
	}
	return sim.Input(int(n) & 0x0F)
}

// Input makes Engine usable wherever an input source is expected.
func (e *Engine) Input(handle int, w sim.World) sim.Input {
	return e.BotInput(handle, w)
}

func (e *Engine) contextTable(handle int, w sim.World) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("handle", lua.LNumber(handle))
	t.RawSetString("frame", lua.LNumber(w.Frame))

	players := e.vm.NewTable()
	for _, p := range w.Players {
		pt := e.kinematicTable(p.Kinematic)
		pt.RawSetString("handle", lua.LNumber(p.Handle))
		pt.RawSetString("current", lua.LNumber(p.Score.Current))
		pt.RawSetString("highscore", lua.LNumber(p.Score.Highscore))
		players.Append(pt)
		if p.Handle == handle {
			t.RawSetString("self", pt)
		}
	}
	t.RawSetString("players", players)

	pursuers := e.vm.NewTable()
	for _, q := range w.Pursuers {
		pursuers.Append(e.kinematicTable(q.Kinematic))
	}
	t.RawSetString("pursuers", pursuers)
	return t
}

func (e *Engine) kinematicTable(k sim.Kinematic) *lua.LTable {
	t := e.vm.NewTable()
	t.RawSetString("x", lua.LNumber(k.Position.X))
	t.RawSetString("y", lua.LNumber(k.Position.Y))
	t.RawSetString("z", lua.LNumber(k.Position.Z))
	t.RawSetString("vx", lua.LNumber(k.Velocity.X))
	t.RawSetString("vz", lua.LNumber(k.Velocity.Z))
	return t
}
