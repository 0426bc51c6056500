// Package progress shows what a relnotes run is doing on an interactive
// terminal: a spinner while API calls are in flight and a check mark or
// cross when each step ends. It stays silent when stderr is not a terminal.
package progress

import (
	"os"

	"golang.org/x/term"
)

// TerminalCapabilities describes what the progress stream can render.
type TerminalCapabilities struct {
	IsTTY           bool
	SupportsColor   bool
	SupportsUnicode bool
}

// ProgressSymbols are the glyphs used for step results and the spinner.
type ProgressSymbols struct {
	Checkmark  string
	Failure    string
	SpinnerSet int // index into spinner.CharSets
}

// DetectTerminalCapabilities inspects f and the environment read through
// getenv. TERM=dumb disables the spinner like a pipe would, NO_COLOR drops
// colors, and RELNOTES_ASCII=1 switches to ASCII symbols.
func DetectTerminalCapabilities(f *os.File, getenv func(string) string) TerminalCapabilities {
	if getenv == nil {
		getenv = os.Getenv
	}
	tty := term.IsTerminal(int(f.Fd())) && getenv("TERM") != "dumb"
	return TerminalCapabilities{
		IsTTY:           tty,
		SupportsColor:   tty && getenv("NO_COLOR") == "",
		SupportsUnicode: tty && getenv("RELNOTES_ASCII") != "1",
	}
}

var (
	unicodeSymbols = ProgressSymbols{Checkmark: "✓", Failure: "✗", SpinnerSet: 14}
	asciiSymbols   = ProgressSymbols{Checkmark: "[OK]", Failure: "[FAIL]", SpinnerSet: 9}
)

// SelectSymbols returns the symbol set caps can display.
func SelectSymbols(caps TerminalCapabilities) ProgressSymbols {
	if caps.SupportsUnicode {
		return unicodeSymbols
	}
	return asciiSymbols
}
