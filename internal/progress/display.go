package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// spinnerInterval is the frame delay of the spinner.
const spinnerInterval = 100 * time.Millisecond

// Display reports the stages of a run. A nil *Display is valid and
// discards everything, so callers never need to check.
type Display struct {
	w       io.Writer
	caps    TerminalCapabilities
	symbols ProgressSymbols
	spin    *spinner.Spinner
	stage   string
}

// NewDisplay creates a display writing to w with the given capabilities.
// A spinner is only animated on a TTY.
func NewDisplay(w io.Writer, caps TerminalCapabilities) *Display {
	return &Display{w: w, caps: caps, symbols: SelectSymbols(caps)}
}

// StartStage begins a stage, stopping any stage still running.
func (d *Display) StartStage(name string) {
	if d == nil {
		return
	}
	d.StopSpinner()
	d.stage = name

	if !d.caps.IsTTY {
		return
	}
	d.spin = spinner.New(spinner.CharSets[d.symbols.SpinnerSet], spinnerInterval, spinner.WithWriter(d.w))
	d.spin.Suffix = " " + name
	d.spin.Start()
}

// Update replaces the text of the running stage, e.g. to show a counter.
func (d *Display) Update(text string) {
	if d == nil || d.spin == nil {
		return
	}
	d.spin.Lock()
	d.spin.Suffix = " " + text
	d.spin.Unlock()
}

// CompleteStage ends the running stage successfully. detail, when set, is
// appended to the stage name.
func (d *Display) CompleteStage(detail string) {
	if d == nil || d.stage == "" {
		return
	}
	d.StopSpinner()
	d.finish(d.symbols.Checkmark, color.FgGreen, detail)
}

// FailStage ends the running stage with a failure mark. Failures here are
// informational; the run may continue.
func (d *Display) FailStage(err error) {
	if d == nil || d.stage == "" {
		return
	}
	d.StopSpinner()
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	d.finish(d.symbols.Failure, color.FgYellow, detail)
}

// StopSpinner stops the spinner without printing a status line.
func (d *Display) StopSpinner() {
	if d == nil || d.spin == nil {
		return
	}
	d.spin.Stop()
	d.spin = nil
}

func (d *Display) finish(symbol string, attr color.Attribute, detail string) {
	if d.caps.SupportsColor {
		symbol = color.New(attr).Sprint(symbol)
	}
	line := fmt.Sprintf("%s %s", symbol, d.stage)
	if detail != "" {
		line += " (" + detail + ")"
	}
	fmt.Fprintln(d.w, line)
	d.stage = ""
}
