package main

import (
	"context"
	"fmt"
	"io"

	"github.com/lixenwraith/vi-rts/render"
	"github.com/lixenwraith/vi-rts/scheduler"
	"github.com/lixenwraith/vi-rts/world"
)

// runHeadless ticks without a view, stopping after maxTicks when it is positive
// A summary line and the status counters are written to out on exit
func runHeadless(ctx context.Context, a *app, maxTicks uint64, out io.Writer) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if maxTicks > 0 {
		// Observers run on the loop goroutine, so cancelling here stops before the next tick
		a.stopAfter(maxTicks, cancel)
	}
	a.run(ctx)

	a.sim.Inspect(func(w *world.World, _ *scheduler.Manager) {
		fmt.Fprintln(out, render.StatusText(a.sim.Ticks(), a.lastReport(), w, a.sim.Paused()))
	})
	a.status.Each(func(name string, v int64) {
		fmt.Fprintf(out, "%s=%d\n", name, v)
	})
}
