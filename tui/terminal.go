package tui

import (
	"io"
	"os"

	"golang.org/x/term"
)

// DefaultTerminalWidth is used when terminal width cannot be detected.
const DefaultTerminalWidth = 80

// TerminalWidthFunc returns a width source for w that uses fallback
// when no terminal is attached. A non-positive fallback means
// DefaultTerminalWidth.
func TerminalWidthFunc(w io.Writer, fallback int) func() int {
	if fallback <= 0 {
		fallback = DefaultTerminalWidth
	}
	return func() int {
		return terminalWidthOr(w, fallback)
	}
}

func terminalWidthOr(w io.Writer, fallback int) int {
	f, ok := w.(*os.File)
	if !ok {
		return fallback
	}

	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return fallback
	}
	return width
}

// IsWriterTerminal returns true if w is backed by a terminal file descriptor.
func IsWriterTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}
