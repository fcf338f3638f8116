package main

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/vi-rts/core"
	"github.com/lixenwraith/vi-rts/render"
	"github.com/lixenwraith/vi-rts/scheduler"
	"github.com/lixenwraith/vi-rts/world"
)

const frameInterval = 33 * time.Millisecond

// runView shows the world in the terminal while the simulation runs in the background
// Keys: q/Esc quit, space pauses, s saves, r restores
func runView(ctx context.Context, a *app) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	core.SetCrashScreen(screen)
	defer func() {
		core.SetCrashScreen(nil)
		screen.Fini()
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	core.Go(func() {
		defer close(done)
		a.run(ctx)
	})
	// The simulation must finish its final snapshot before the screen goes away
	defer func() {
		cancel()
		<-done
	}()

	events := make(chan tcell.Event, 16)
	core.Go(func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	})

	view := render.NewView(screen)
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if !a.handleKey(ctx, ev) {
					return nil
				}
			case *tcell.EventResize:
				screen.Sync()
			}

		case <-ticker.C:
			a.sim.Inspect(func(w *world.World, m *scheduler.Manager) {
				view.Draw(w, m, render.StatusText(a.sim.Ticks(), a.lastReport(), w, a.sim.Paused()))
			})
		}
	}
}

// handleKey applies one key press and reports whether the view should keep running
func (a *app) handleKey(ctx context.Context, ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
	default:
		return true
	}

	switch ev.Rune() {
	case 'q':
		return false
	case ' ':
		paused := a.sim.TogglePause()
		a.log.Info("pause toggled", "paused", paused)
	case 's':
		if err := a.snapshot(ctx); err != nil {
			a.log.Error("manual save failed", "error", err)
		}
	case 'r':
		a.restore(ctx)
	}
	return true
}
