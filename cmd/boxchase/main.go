package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/boxchase/server/internal/audio"
	"github.com/boxchase/server/internal/config"
	"github.com/boxchase/server/internal/core/event"
	coresys "github.com/boxchase/server/internal/core/system"
	"github.com/boxchase/server/internal/data"
	"github.com/boxchase/server/internal/persist"
	"github.com/boxchase/server/internal/scripting"
	"github.com/boxchase/server/internal/sim"
	"github.com/boxchase/server/internal/spectate"
	"github.com/boxchase/server/internal/system"
	"github.com/boxchase/server/internal/view"
	"github.com/boxchase/server/internal/world"
	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(name string, players, pursuers int) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m               boxchase  v0.1.0            \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1msession:\033[0m %s \033[90m(%d players, %d pursuers)\033[0m\n\n", name, players, pursuers)
}

func printSection(title string) {
	lineLen := 46 - len(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - len(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Session ───────────────────────────────────────────────────────

func run() error {
	// 1. Load config
	cfgPath := "config/server.toml"
	if p := os.Getenv("BOXCHASE_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Init logger
	interactive := !cfg.Session.Headless
	log, err := newLogger(cfg.Logging, interactive)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	sessionID := fmt.Sprintf("%s-%d", cfg.Server.Name, cfg.Server.StartTime)
	log = log.With(zap.String("session", sessionID))

	printBanner(sessionID, cfg.Session.Players, cfg.Session.Pursuers)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Optional PostgreSQL store
	var (
		scores system.HighscoreStore
		deaths system.DeathStore
	)
	if cfg.Database.Enabled {
		printSection("database")
		dbCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		db, err := persist.NewDB(dbCtx, cfg.Database, log)
		if err != nil {
			cancel()
			return fmt.Errorf("database: %w", err)
		}
		defer db.Close()
		printOK("PostgreSQL connected")

		version, err := persist.RunMigrations(dbCtx, db.Pool, log)
		if err != nil {
			cancel()
			return fmt.Errorf("migrations: %w", err)
		}
		printOK(fmt.Sprintf("migrations applied (version %d)", version))

		scoreRepo := persist.NewScoreRepo(db)
		if top, err := scoreRepo.Top(dbCtx, 3); err != nil {
			log.Warn("load all-time highscores", zap.Error(err))
		} else {
			for _, row := range top {
				printStat(row.PlayerName, int(row.Highscore))
			}
		}
		cancel()
		scores = scoreRepo
		deaths = persist.NewDeathLogRepo(db)
	}

	// 4. Load data tables
	printSection("data")
	roster := data.DefaultRoster()
	if cfg.Data.RosterPath != "" {
		if roster, err = data.LoadRoster(cfg.Data.RosterPath); err != nil {
			return fmt.Errorf("load roster: %w", err)
		}
	}
	printStat("roster", roster.Count())

	var track *data.InputTrack
	if cfg.Data.TrackPath != "" {
		if track, err = data.LoadInputTrack(cfg.Data.TrackPath); err != nil {
			return fmt.Errorf("load input track: %w", err)
		}
		printStat("recorded handles", len(track.Handles()))
	}

	engine, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	defer engine.Close()
	if engine.HasBot() {
		printOK("bot_input loaded")
	}
	fmt.Println()

	// 5. World, event bus and outputs
	tuning := cfg.SimTuning()
	ws := world.NewState(cfg.Session.Players, cfg.Session.Pursuers, tuning, roster)
	bus := event.NewBus()
	system.SubscribeScoreLog(bus, ws, uint32(time.Minute/cfg.Session.TickRate), log)

	beeper := audio.NewBeeper(cfg.Audio.Enabled && interactive, log)
	defer beeper.Close()
	beeper.Subscribe(bus)

	var sinks []system.FrameSink
	var hub *spectate.Hub
	if cfg.Spectate.Enabled {
		hub = spectate.NewHub(cfg.Spectate.BroadcastEvery, log)
		sinks = append(sinks, hub)
	}

	var (
		screen tcell.Screen
		keys   *view.KeyboardSource
	)
	closeScreen := func() {
		if screen != nil {
			screen.Fini()
			screen = nil
		}
	}
	defer closeScreen()
	if interactive {
		s, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("terminal: %w", err)
		}
		if err := s.Init(); err != nil {
			return fmt.Errorf("terminal init: %w", err)
		}
		screen = s
		sinks = append(sinks, view.New(screen, roster, tuning))
		keys = view.NewKeyboardSource(cfg.Session.LocalHandle)
	}

	// 6. Systems
	var desync error
	runner := coresys.NewRunner()
	inputSys := system.NewInputSystem(ws, log)
	if track != nil {
		for _, h := range track.Handles() {
			inputSys.Bind(h, system.InputSourceFunc(func(handle int, w sim.World) sim.Input {
				return track.Input(handle, w.Frame)
			}))
		}
	}
	for _, h := range cfg.Scripting.Bots {
		inputSys.Bind(h, engine)
	}
	if keys != nil {
		inputSys.Bind(cfg.Session.LocalHandle, keys)
	}
	runner.Register(inputSys)
	runner.Register(system.NewEventDispatchSystem(bus))
	runner.Register(system.NewSimulationSystem(ws, cfg.Session.CheckDistance, func(err error) {
		if desync == nil {
			desync = err
		}
	}, log))
	runner.Register(system.NewScoreEventSystem(ws, bus))
	scoreboard := system.NewScoreboardSystem(ws, sinks...)
	runner.Register(scoreboard)
	var saver *system.PersistenceSystem
	if scores != nil {
		saver = system.NewPersistenceSystem(ws, bus, sessionID, scores, deaths, log, cfg.Database.SaveInterval)
		runner.Register(saver)
	}

	// 7. Spectator server and game loop
	g, gctx := errgroup.WithContext(ctx)
	if hub != nil {
		g.Go(func() error {
			return hub.Serve(gctx, cfg.Spectate.BindAddress)
		})
	}

	var termEvents chan tcell.Event
	if screen != nil {
		termEvents = make(chan tcell.Event, 64)
		go func(s tcell.Screen) {
			for {
				ev := s.PollEvent()
				if ev == nil {
					return
				}
				termEvents <- ev
			}
		}(screen)
	}

	printSection("ready")
	if hub != nil {
		printReady(fmt.Sprintf("spectators on ws://%s/ws", cfg.Spectate.BindAddress))
	}
	printReady(fmt.Sprintf("game loop started (tick: %s)", cfg.Session.TickRate))
	fmt.Println()

	g.Go(func() error {
		defer stop()
		ticker := time.NewTicker(cfg.Session.TickRate)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if took := runner.Tick(cfg.Session.TickRate); took > cfg.Session.TickRate {
					log.Debug("tick overran", zap.Uint32("frame", ws.Frame()), zap.Duration("took", took))
				}
				if desync != nil {
					return desync
				}
				if cfg.Session.MaxFrames > 0 && ws.Frame() >= cfg.Session.MaxFrames {
					log.Info("frame limit reached", zap.Uint32("frame", ws.Frame()))
					return nil
				}
			case ev := <-termEvents:
				if _, ok := ev.(*tcell.EventResize); ok {
					screen.Sync()
					continue
				}
				if !keys.HandleEvent(ev, ws.Frame()) {
					log.Info("quit requested")
					return nil
				}
			case <-gctx.Done():
				log.Info("shutdown signal received")
				return nil
			}
		}
	})

	runErr := g.Wait()

	if saver != nil {
		flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := saver.Flush(flushCtx); err != nil {
			log.Error("final save failed", zap.Error(err))
		}
		cancel()
	}
	closeScreen()
	fmt.Print(sim.FormatScoreboard(scoreboard.Last()))
	log.Info("session ended",
		zap.Uint32("frame", ws.Frame()),
		zap.String("checksum", fmt.Sprintf("%016x", ws.Current().Checksum())),
	)
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// newLogger builds the process logger. While the terminal view owns the
// screen, output goes to the configured log file instead of stderr.
func newLogger(cfg config.LoggingConfig, toFile bool) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	if toFile && cfg.File != "" {
		zapCfg.OutputPaths = []string{cfg.File}
		zapCfg.ErrorOutputPaths = []string{cfg.File}
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	return zapCfg.Build()
}
