package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
)

// progress renders segment progress, animated on a terminal and as plain lines otherwise
type progress struct {
	mu      sync.Mutex
	out     io.Writer
	spinner *spinner.Spinner
	started bool
}

func newProgress(out io.Writer, interactive bool) *progress {
	p := &progress{out: out}
	if interactive {
		p.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
		p.spinner.Color("cyan")
	}
	return p
}

// Begin starts the spinner with msg until the first segment update replaces it.
// Without a terminal it prints nothing.
func (p *progress) Begin(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spinner != nil {
		p.show(msg)
	}
}

// Update matches summarize.ProgressFunc
func (p *progress) Update(completed, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	msg := fmt.Sprintf("Summarizing segments %d/%d", completed, total)
	if p.spinner == nil {
		fmt.Fprintln(p.out, msg)
		return
	}
	p.show(msg)
}

// show must be called with p.mu held
func (p *progress) show(msg string) {
	p.spinner.Lock()
	p.spinner.Suffix = " " + msg
	p.spinner.Unlock()
	if !p.started {
		p.spinner.Start()
		p.started = true
	}
}

func (p *progress) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spinner != nil && p.started {
		p.spinner.Stop()
		p.started = false
	}
}
