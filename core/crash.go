// Package core holds process-wide crash handling shared by every goroutine the binary starts
package core

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync/atomic"
)

// Finalizer restores a terminal it took over
// tcell.Screen satisfies it
type Finalizer interface {
	Fini()
}

var crashScreen atomic.Pointer[Finalizer]

// SetCrashScreen registers the screen to restore before a crash report is printed
// Passing nil unregisters it
func SetCrashScreen(s Finalizer) {
	if s == nil {
		crashScreen.Store(nil)
		return
	}
	crashScreen.Store(&s)
}

// exit is swapped out by tests
var exit = os.Exit

// HandleCrash restores the terminal, prints the panic with its stack and exits
func HandleCrash(r any) {
	if r == nil {
		return
	}
	report(os.Stderr, r, debug.Stack())
	exit(1)
}

func report(w io.Writer, r any, stack []byte) {
	if s := crashScreen.Swap(nil); s != nil {
		(*s).Fini()
	}
	fmt.Fprintf(w, "\n\x1b[31mCRASH DETECTED: %v\x1b[0m\n", r)
	fmt.Fprintf(w, "Stack Trace:\n%s\n", stack)
}

// Go runs fn in a new goroutine with panic recovery
// Use this instead of the 'go' keyword so a crash never leaves the terminal in raw mode
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				HandleCrash(r)
			}
		}()
		fn()
	}()
}
