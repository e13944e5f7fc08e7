// Package progress reports the progress of bulk row actions, as a progress
// bar on a terminal and as plain lines otherwise.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Reporter tracks a counted operation such as deleting many rows.
type Reporter interface {
	Start(total int, description string)
	Step(label string, err error)
	Finish()
}

// BarProgress draws a progress bar.
type BarProgress struct {
	out io.Writer
	bar *progressbar.ProgressBar
	mu  sync.Mutex
}

// NewBarProgress creates a bar reporter writing to out.
func NewBarProgress(out io.Writer) *BarProgress {
	return &BarProgress{out: out}
}

// Start initializes the bar with the number of steps.
func (p *BarProgress) Start(total int, description string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.out
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(out),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(out, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)
}

// Step advances the bar. Failures are printed on their own line.
func (p *BarProgress) Step(label string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar == nil {
		return
	}
	if err != nil {
		_ = p.bar.Clear()
		fmt.Fprintf(p.out, "✖ %s: %v\n", label, err)
	}
	_ = p.bar.Add(1)
}

// Finish completes the bar.
func (p *BarProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bar != nil && !p.bar.IsFinished() {
		_ = p.bar.Finish()
	}
}

// LineProgress prints one line per step, for logs and pipes.
type LineProgress struct {
	out   io.Writer
	total int
	done  int
	mu    sync.Mutex
}

// NewLineProgress creates a line reporter writing to out.
func NewLineProgress(out io.Writer) *LineProgress {
	return &LineProgress{out: out}
}

// Start records the number of steps.
func (p *LineProgress) Start(total int, description string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
	p.done = 0
	if description != "" {
		fmt.Fprintln(p.out, description)
	}
}

// Step prints the outcome of one step.
func (p *LineProgress) Step(label string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	if err != nil {
		fmt.Fprintf(p.out, "[%d/%d] %s: failed: %v\n", p.done, p.total, label, err)
		return
	}
	fmt.Fprintf(p.out, "[%d/%d] %s: ok\n", p.done, p.total, label)
}

// Finish does nothing; every step already printed its line.
func (p *LineProgress) Finish() {}

// NoOpProgress is a reporter that does nothing (for --quiet and JSON output).
type NoOpProgress struct{}

// NewNoOpProgress creates a new no-op progress reporter.
func NewNoOpProgress() *NoOpProgress {
	return &NoOpProgress{}
}

// Start does nothing.
func (p *NoOpProgress) Start(total int, description string) {}

// Step does nothing.
func (p *NoOpProgress) Step(label string, err error) {}

// Finish does nothing.
func (p *NoOpProgress) Finish() {}

// New picks a reporter for out: a bar on a terminal, lines otherwise, and
// nothing when silent.
func New(out io.Writer, terminal, silent bool) Reporter {
	switch {
	case silent:
		return NewNoOpProgress()
	case terminal:
		return NewBarProgress(out)
	default:
		return NewLineProgress(out)
	}
}
