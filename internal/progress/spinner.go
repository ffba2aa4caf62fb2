package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Spinner animates a message while a step runs. On writers that are not
// terminals it prints nothing, so piped and test output stay clean.
type Spinner struct {
	out     io.Writer
	symbols ProgressSymbols
	enabled bool
	s       *spinner.Spinner
}

// NewSpinner returns a spinner writing to out.
func NewSpinner(out io.Writer, caps TerminalCapabilities) *Spinner {
	return &Spinner{
		out:     out,
		symbols: SelectSymbols(caps),
		enabled: caps.IsTTY,
	}
}

// Start begins animating message.
func (p *Spinner) Start(message string) {
	if !p.enabled {
		return
	}
	p.s = spinner.New(spinner.CharSets[p.symbols.SpinnerSet], 100*time.Millisecond, spinner.WithWriter(p.out))
	p.s.Suffix = " " + message
	p.s.Start()
}

// Succeed stops the animation and prints message with a checkmark.
func (p *Spinner) Succeed(message string) {
	p.stop(p.symbols.Checkmark, message)
}

// Fail stops the animation and prints message with a failure mark.
func (p *Spinner) Fail(message string) {
	p.stop(p.symbols.Failure, message)
}

func (p *Spinner) stop(symbol, message string) {
	if p.s == nil {
		return
	}
	p.s.Stop()
	p.s = nil
	if message != "" {
		fmt.Fprintf(p.out, "%s %s\n", symbol, message)
	}
}
