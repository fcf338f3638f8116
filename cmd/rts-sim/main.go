// Command rts-sim runs the action scheduler against a generated map
// With a terminal attached it shows a live view; otherwise it runs headless
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/lixenwraith/vi-rts/config"
	"github.com/lixenwraith/vi-rts/core"
)

var (
	debugFlag    = flag.Bool("debug", false, "Write debug logs to logs/rts-sim.log")
	headlessFlag = flag.Bool("headless", false, "Run without the terminal view")
	ticksFlag    = flag.Uint64("ticks", 0, "Stop after this many ticks (0 runs until interrupted)")
	seedFlag     = flag.Uint64("seed", 0, "Map seed (overrides RTS_SEED)")
	restoreFlag  = flag.Bool("restore", false, "Restore the configured save slot on start")
	noAudioFlag  = flag.Bool("no-audio", false, "Disable audio cues")
	saveFlag     = flag.String("save", "", "Save backend: file, sqlite or none (overrides RTS_SAVE_BACKEND)")
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			core.HandleCrash(r)
		}
	}()

	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	applyFlags(&cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}

	if logFile := setupLogging(*debugFlag || cfg.Debug); logFile != nil {
		defer logFile.Close()
	}

	a, err := newApp(cfg, slog.Default())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer a.close()

	ctx, stop := signalContext(context.Background())
	defer stop()

	if *restoreFlag {
		a.restore(ctx)
	}

	a.startAudio()

	interactive := !*headlessFlag && term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
	if !interactive {
		runHeadless(ctx, a, *ticksFlag, os.Stdout)
		return
	}

	if *ticksFlag > 0 {
		a.stopAfter(*ticksFlag, stop)
	}
	if err := runView(ctx, a); err != nil {
		fmt.Fprintf(os.Stderr, "View failed: %v\n", err)
		os.Exit(1)
	}
}

// applyFlags lets explicitly set flags override the environment
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			cfg.Seed = *seedFlag
		case "no-audio":
			cfg.Audio.Enabled = !*noAudioFlag
		case "save":
			cfg.Save.Backend = *saveFlag
		case "debug":
			cfg.Debug = *debugFlag
		}
	})
}
