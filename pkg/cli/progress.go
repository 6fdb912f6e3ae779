package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressReporter reports progress for long-running operations such as
// audit exports.
type ProgressReporter interface {
	Start(total int64)
	Update(current int64)
	Finish()
	Error(err error)
}

const (
	progressBarWidth = 40

	// renderEvery throttles redraws. Export loops call Update per row;
	// repainting the terminal at row rate just burns cycles.
	renderEvery = 100 * time.Millisecond
)

// barReporter draws a single-line ASCII progress bar with throughput
// and an ETA.
type barReporter struct {
	mu       sync.Mutex
	w        io.Writer
	total    int64
	current  int64
	started  time.Time
	lastDraw time.Time
}

// NewProgressReporter creates a progress reporter writing to w, or
// os.Stdout when w is nil.
func NewProgressReporter(w io.Writer) ProgressReporter {
	if w == nil {
		w = os.Stdout
	}
	return &barReporter{w: w}
}

func (p *barReporter) Start(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = 0
	p.started = time.Now()
	p.draw(true)
}

func (p *barReporter) Update(current int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = current
	p.draw(false)
}

func (p *barReporter) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = p.total
	p.draw(true)
	fmt.Fprintln(p.w)
}

func (p *barReporter) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "\nerror: %v\n", err)
}

// draw repaints the bar. Callers must hold the mutex. Unforced draws
// are rate-limited by renderEvery.
func (p *barReporter) draw(force bool) {
	if p.total <= 0 {
		return
	}

	now := time.Now()
	if !force && now.Sub(p.lastDraw) < renderEvery {
		return
	}
	p.lastDraw = now

	fraction := float64(p.current) / float64(p.total)
	if fraction > 1 {
		fraction = 1
	}

	filled := int(fraction * progressBarWidth)
	bar := strings.Repeat("=", filled)
	if filled < progressBarWidth {
		bar += ">" + strings.Repeat(" ", progressBarWidth-filled-1)
	}

	elapsed := now.Sub(p.started)
	line := fmt.Sprintf("\rProgress: [%s] %5.1f%% (%d/%d)", bar, fraction*100, p.current, p.total)

	if elapsed > time.Second && p.current > 0 {
		rate := float64(p.current) / elapsed.Seconds()
		remaining := time.Duration(float64(p.total-p.current) / rate * float64(time.Second))
		line += fmt.Sprintf(" %.0f/s eta %s", rate, remaining.Round(time.Second))
	}

	fmt.Fprint(p.w, line)
}
