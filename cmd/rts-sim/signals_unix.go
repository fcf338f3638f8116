//go:build unix

package main

import (
	"context"
	"os/signal"

	"golang.org/x/sys/unix"
)

// signalContext is cancelled on interrupt, termination or hangup
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, unix.SIGINT, unix.SIGTERM, unix.SIGHUP)
}
