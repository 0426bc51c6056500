package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// spinnerInterval is the frame delay of the spinner.
const spinnerInterval = 100 * time.Millisecond

// Display renders step progress. The zero value is not usable; use NewDisplay.
type Display struct {
	w       io.Writer
	caps    TerminalCapabilities
	symbols ProgressSymbols

	mu      sync.Mutex
	spin    *spinner.Spinner
	current string
}

// NewDisplay returns a Display writing to w with the given capabilities.
func NewDisplay(w io.Writer, caps TerminalCapabilities) *Display {
	return &Display{w: w, caps: caps, symbols: SelectSymbols(caps)}
}

// Enabled reports whether the display writes anything.
func (d *Display) Enabled() bool {
	return d != nil && d.caps.IsTTY
}

// Start begins a step. A step already in progress is finished as done.
func (d *Display) Start(step string) {
	if !d.Enabled() {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.current != "" {
		d.finishLocked(true)
	}
	d.current = step
	d.spin = spinner.New(spinner.CharSets[d.symbols.SpinnerSet], spinnerInterval, spinner.WithWriter(d.w))
	d.spin.Suffix = " " + step
	d.spin.Start()
}

// Done finishes the current step successfully.
func (d *Display) Done() {
	d.finish(true)
}

// Fail finishes the current step as failed.
func (d *Display) Fail() {
	d.finish(false)
}

func (d *Display) finish(ok bool) {
	if !d.Enabled() {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.finishLocked(ok)
}

func (d *Display) finishLocked(ok bool) {
	if d.current == "" {
		return
	}
	if d.spin != nil {
		d.spin.Stop()
		d.spin = nil
	}
	fmt.Fprintf(d.w, "%s %s\n", d.symbol(ok), d.current)
	d.current = ""
}

func (d *Display) symbol(ok bool) string {
	sym, attr := d.symbols.Checkmark, color.FgGreen
	if !ok {
		sym, attr = d.symbols.Failure, color.FgRed
	}
	if !d.caps.SupportsColor {
		return sym
	}
	return color.New(attr).Sprint(sym)
}
