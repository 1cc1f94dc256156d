package ui

import (
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/term"
)

var (
	detectOnce sync.Once
	detected   bool
	disabled   atomic.Bool
)

// colorEnabled resolves the color decision the first time something renders:
// an explicit ForceNoColor wins, then the NO_COLOR/CLICOLOR environment
// ladder, then a TTY check on stdout.
func colorEnabled() bool {
	if disabled.Load() {
		return false
	}
	detectOnce.Do(func() { detected = detectColor() })
	return detected
}

func detectColor() bool {
	// https://no-color.org: any non-empty value disables color.
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	// CLICOLOR_FORCE=1 forces color even without a TTY.
	if strings.TrimSpace(os.Getenv("CLICOLOR_FORCE")) == "1" {
		return true
	}
	// CLICOLOR=0 explicitly disables color.
	if strings.TrimSpace(os.Getenv("CLICOLOR")) == "0" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// ForceNoColor turns rendering off regardless of the environment, for output
// that must stay machine-readable.
func ForceNoColor() {
	disabled.Store(true)
}
