package reindex

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports reindexing progress to a writer at a fixed
// item interval. Safe for concurrent use.
type ProgressTracker struct {
	mu       sync.Mutex
	w        io.Writer
	total    int
	done     int
	interval int
	lastMark int
	began    time.Time
	started  bool
}

// NewProgressTracker creates a tracker for total items that reports
// every interval items. An interval below 1 reports on every update.
func NewProgressTracker(w io.Writer, total, interval int) *ProgressTracker {
	if interval < 1 {
		interval = 1
	}
	return &ProgressTracker{w: w, total: total, interval: interval}
}

// Start begins tracking. Calling Start again resets a previous run.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.began = time.Now()
	p.started = true
	p.done = 0
	p.lastMark = 0
}

// Add records n completed items, reporting when the interval is crossed.
// Progress is capped at the total. A tracker that was never started
// ignores updates.
func (p *ProgressTracker) Add(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.done += n
	if p.done > p.total {
		p.done = p.total
	}

	if p.done-p.lastMark >= p.interval {
		p.report()
		p.lastMark = p.done
	}
}

// Finish forces a final report and a closing newline.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return
	}

	p.done = p.total
	p.report()
	fmt.Fprintln(p.w)
}

// Elapsed returns the time since Start was called.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		return 0
	}
	return time.Since(p.began)
}

// report prints the current progress. Caller must hold the lock.
func (p *ProgressTracker) report() {
	pct := 0.0
	if p.total > 0 {
		pct = float64(p.done) / float64(p.total) * 100
	}
	rate := float64(p.done) / time.Since(p.began).Seconds()

	fmt.Fprintf(p.w, "\rprogress: %d/%d (%.1f%%) - %.1f chunks/s",
		p.done, p.total, pct, rate)
}
