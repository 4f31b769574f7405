package cli

import (
	"os"

	"golang.org/x/term"
)

// ColorEnabled controls whether styled output is emitted.
// It defaults to true if stdout is a terminal and NO_COLOR is not set.
var ColorEnabled = initColorEnabled()

func initColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isTerminal(os.Stdout)
}

// isTerminal checks if a file descriptor is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Success formats a message with a check prefix.
func Success(msg string) string {
	return Colorize(RoleSuccess, "✓ "+msg)
}

// Error formats a message with a cross prefix.
func Error(msg string) string {
	return Colorize(RoleError, "✗ "+msg)
}

// Warn formats a message with a warning prefix.
func Warn(msg string) string {
	return Colorize(RoleWarn, "⚠ "+msg)
}

// Hint formats a message with an arrow prefix.
func Hint(msg string) string {
	return Colorize(RoleHint, "→ "+msg)
}
