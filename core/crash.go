// Package core holds process-wide panic handling. Every goroutine that can
// run while the terminal is in raw mode is started through Go so a crash
// still restores the screen.
package core

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sync"

	"github.com/lixenwraith/color-wall/terminal"
)

var (
	crashMu       sync.Mutex
	crashTerminal terminal.Terminal
	crashOut      io.Writer = os.Stderr
	exit                    = os.Exit
)

// RegisterCrashTerminal makes HandleCrash restore term through Fini instead
// of the raw EmergencyReset sequence. Pass nil after the terminal is torn down.
func RegisterCrashTerminal(term terminal.Terminal) {
	crashMu.Lock()
	crashTerminal = term
	crashMu.Unlock()
}

// HandleCrash resets the terminal, prints the panic with its stack trace and
// exits with status 1
func HandleCrash(r any) {
	if r == nil {
		return
	}

	crashMu.Lock()
	term := crashTerminal
	crashMu.Unlock()

	if term != nil {
		term.Fini()
	} else {
		terminal.EmergencyReset(os.Stdout)
	}
	os.Stdout.Sync()

	// \r\n in case the reset did not leave raw mode
	fmt.Fprintf(crashOut, "\r\n\x1b[31mCOLOR-WALL CRASHED: %v\x1b[0m\r\n", r)
	fmt.Fprintf(crashOut, "Stack Trace:\r\n%s\r\n", debug.Stack())
	os.Stderr.Sync()

	exit(1)
}

// Go runs fn in a new goroutine with panic recovery
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
