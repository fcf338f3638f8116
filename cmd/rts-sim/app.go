package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/lixenwraith/vi-rts/action"
	"github.com/lixenwraith/vi-rts/audio"
	"github.com/lixenwraith/vi-rts/behavior"
	"github.com/lixenwraith/vi-rts/clock"
	"github.com/lixenwraith/vi-rts/config"
	"github.com/lixenwraith/vi-rts/core"
	"github.com/lixenwraith/vi-rts/engine"
	"github.com/lixenwraith/vi-rts/handler"
	"github.com/lixenwraith/vi-rts/save"
	"github.com/lixenwraith/vi-rts/scheduler"
	"github.com/lixenwraith/vi-rts/status"
	"github.com/lixenwraith/vi-rts/world"
)

// app wires the simulation with its collaborators
type app struct {
	cfg      config.Config
	sim      *engine.Simulation
	status   *status.Registry
	director *behavior.Director
	player   *audio.Player
	store    save.Store
	closers  []io.Closer
	log      *slog.Logger

	mu       sync.Mutex
	last     scheduler.Report
	stopAt   uint64
	stopFunc context.CancelFunc
}

func newApp(cfg config.Config, log *slog.Logger) (*app, error) {
	a := &app{
		cfg:    cfg,
		status: status.NewRegistry(),
		log:    log,
	}

	store, closer, err := openStore(cfg.Save)
	if err != nil {
		return nil, err
	}
	a.store = store
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	clk := clock.NewPausableClock()
	w := world.Generate(cfg.Seed, cfg.Layout(), clk)

	reg := handler.NewRegistry(cfg.HandlerTuning(),
		handler.WithLogger(log),
		handler.WithStatus(a.status),
	)
	a.director = behavior.NewDirector(
		behavior.WithCooldown(cfg.DirectorCooldown),
		behavior.WithLogger(log),
	)

	opts := []engine.Option{
		engine.WithTickInterval(cfg.TickInterval),
		engine.WithLogger(log),
		engine.WithStatus(a.status),
		engine.WithSchedulerOptions(cfg.SchedulerOptions()...),
		engine.WithPlanner(func(w *world.World, m *scheduler.Manager, buf *action.Buffer) {
			a.director.Plan(w, m, buf)
		}),
		engine.WithObserver(a.observe),
	}
	if cfg.Audio.Enabled {
		a.player = audio.NewPlayer(cfg.Audio.Volume)
		opts = append(opts, engine.WithObserver(a.player.Observe))
	}
	a.sim = engine.New(w, reg, clk, opts...)
	return a, nil
}

// openStore builds the configured save backend; a nil store disables saving
func openStore(c config.SaveConfig) (save.Store, io.Closer, error) {
	switch c.Backend {
	case config.BackendFile:
		return save.NewFileStore(c.Path), nil, nil
	case config.BackendSQLite:
		db, err := save.OpenSQLite(filepath.Join(c.Path, "saves.db"))
		if err != nil {
			return nil, nil, fmt.Errorf("open save db: %w", err)
		}
		return db, db, nil
	default:
		return nil, nil, nil
	}
}

func (a *app) observe(tick uint64, r scheduler.Report) {
	a.mu.Lock()
	a.last = r
	var stop context.CancelFunc
	if a.stopAt > 0 && tick >= a.stopAt {
		stop = a.stopFunc
	}
	a.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// stopAfter cancels the run once n ticks have completed
func (a *app) stopAfter(n uint64, cancel context.CancelFunc) {
	a.mu.Lock()
	a.stopAt, a.stopFunc = n, cancel
	a.mu.Unlock()
}

func (a *app) lastReport() scheduler.Report {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last
}

// startAudio opens the speaker; failure only disables sound
func (a *app) startAudio() {
	if a.player == nil {
		return
	}
	if err := a.player.Init(); err != nil {
		a.log.Warn("audio unavailable, continuing without sound", "error", err)
		return
	}
	a.closers = append(a.closers, closerFunc(a.player.Close))
}

// restore loads the configured slot; a missing slot is not worth a warning
func (a *app) restore(ctx context.Context) {
	if a.store == nil {
		return
	}
	err := a.sim.Restore(ctx, a.store, a.cfg.Save.Slot)
	switch {
	case err == nil:
	case errors.Is(err, save.ErrNotFound):
		a.log.Info("no snapshot to restore", "slot", a.cfg.Save.Slot)
	default:
		a.log.Error("restore failed", "error", err)
	}
}

func (a *app) snapshot(ctx context.Context) error {
	if a.store == nil {
		return nil
	}
	return a.sim.Snapshot(ctx, a.store, a.cfg.Save.Slot)
}

// autosave snapshots on the configured interval until ctx is done
func (a *app) autosave(ctx context.Context) {
	if a.store == nil || a.cfg.Save.Interval <= 0 {
		return
	}
	ticker := time.NewTicker(a.cfg.Save.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.snapshot(ctx); err != nil && ctx.Err() == nil {
				a.log.Error("autosave failed", "error", err)
			}
		}
	}
}

// run drives the simulation with autosave until ctx is done, then writes a final snapshot
func (a *app) run(ctx context.Context) {
	core.Go(func() { a.autosave(ctx) })
	if err := a.sim.Run(ctx); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		a.log.Error("simulation stopped", "error", err)
	}

	// ctx is already done; the final save gets its own deadline
	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.snapshot(saveCtx); err != nil {
		a.log.Error("final snapshot failed", "error", err)
	}
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			a.log.Warn("close failed", "error", err)
		}
	}
	a.closers = nil
}

type closerFunc func()

func (f closerFunc) Close() error {
	f()
	return nil
}
