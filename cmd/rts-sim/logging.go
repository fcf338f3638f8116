package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	logDir      = "logs"
	logFileName = "rts-sim.log"
	maxLogSize  = 10 * 1024 * 1024
)

// setupLogging routes slog to logs/rts-sim.log when debug is set and discards everything otherwise
// The terminal belongs to the view, so nothing is ever written to stdout or stderr
// A log file over maxLogSize is rotated aside with a timestamp suffix
func setupLogging(debug bool) *os.File {
	if !debug {
		slog.SetDefault(slog.New(slog.DiscardHandler))
		return nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		slog.SetDefault(slog.New(slog.DiscardHandler))
		return nil
	}

	logPath := filepath.Join(logDir, logFileName)
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		rotated := filepath.Join(logDir, fmt.Sprintf("rts-sim-%s.log", time.Now().Format("20060102-150405")))
		os.Rename(logPath, rotated)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		slog.SetDefault(slog.New(slog.DiscardHandler))
		return nil
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	return f
}
