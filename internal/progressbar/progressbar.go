// Package progressbar renders an in-place terminal progress bar for a
// long-running phase, refreshed on a fixed tick and safe for concurrent
// Increment calls from multiple worker goroutines.
package progressbar

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Bar tracks progress through a fixed-size unit of work and redraws
// itself on a ticker until Finish is called.
type Bar struct {
	total     int64
	processed atomic.Int64
	label     string
	barWidth  int
	start     time.Time
	out       io.Writer
	quiet     bool
	done      chan struct{}
	mu        sync.Mutex
}

// New starts a bar labeled label tracking total units of work. When quiet
// is true, the bar tracks progress but never writes to the terminal — used
// for non-interactive runs (CI, piped output).
func New(label string, total int64, quiet bool) *Bar {
	b := &Bar{
		total:    total,
		label:    label,
		barWidth: 30,
		start:    time.Now(),
		out:      os.Stderr,
		quiet:    quiet,
		done:     make(chan struct{}),
	}
	if !quiet {
		go b.run()
	}
	return b
}

// Increment marks one more item as processed. Safe for concurrent use.
func (b *Bar) Increment() {
	b.processed.Add(1)
}

// Finish stops the refresh loop and prints the final bar state with a
// trailing newline.
func (b *Bar) Finish() {
	close(b.done)
	if b.quiet {
		return
	}
	b.draw()
	fmt.Fprint(b.out, "\n")
}

func (b *Bar) run() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-b.done:
			return
		case <-ticker.C:
			b.draw()
		}
	}
}

func (b *Bar) draw() {
	b.mu.Lock()
	defer b.mu.Unlock()

	processed := b.processed.Load()
	total := b.total

	var frac float64
	if total > 0 {
		frac = float64(processed) / float64(total)
	}
	if frac > 1 {
		frac = 1
	}

	filled := int(float64(b.barWidth) * frac)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", b.barWidth-filled)

	elapsed := time.Since(b.start)
	rate := float64(0)
	if secs := elapsed.Seconds(); secs > 0 {
		rate = float64(processed) / secs
	}

	fmt.Fprintf(b.out, "\r%s [%s] %3.0f%%  %d/%d  %.0f/s  %s\033[K",
		b.label, bar, frac*100, processed, total, rate, formatDuration(elapsed))
}

// formatDuration formats a duration concisely (e.g. "1m23s", "45s", "0s").
func formatDuration(d time.Duration) string {
	d = d.Truncate(time.Second)
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) - m*60
	return fmt.Sprintf("%dm%02ds", m, s)
}
