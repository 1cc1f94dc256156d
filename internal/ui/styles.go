// Package ui holds terminal presentation helpers for the CLI. Rendering is
// plain text whenever color is off; callers never need to check first.
package ui

import "fmt"

// ANSI256 color codes.
const (
	colorAccent = 74  // blue
	colorAlert  = 167 // red
	colorMuted  = 245 // medium gray
)

func render(code int, s string) string {
	if !colorEnabled() {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", code, s)
}

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string { return render(colorAccent, s) }

// RenderAlert returns s in the alert (red) color.
func RenderAlert(s string) string { return render(colorAlert, s) }

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string { return render(colorMuted, s) }
