package main

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// progressReporter redraws a single progress line on a timer, reading a
// counter updated from whichever worker goroutine most recently finished
// compressing a block. Ported from the original implementation's
// util/progress_bar.hpp terminal redraw; no progress-bar library appears
// anywhere in the retrieval pack, so this stays a plain \r-redraw on a
// time.Ticker (see DESIGN.md).
type progressReporter struct {
	w          io.Writer
	total      uint64
	doneBytes  atomic.Uint64
	ticker     *time.Ticker
	stop       chan struct{}
	stopped    chan struct{}
}

func newProgressReporter(w io.Writer, total uint64) *progressReporter {
	r := &progressReporter{
		w:       w,
		total:   total,
		ticker:  time.NewTicker(100 * time.Millisecond),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go r.loop()
	return r
}

// update is the zipflate.Options.OnProgress callback: it only records the
// latest cumulative byte count, never blocks, and never writes to w
// directly (only the redraw goroutine touches the terminal).
func (r *progressReporter) update(doneBytes, totalBytes uint64) {
	r.doneBytes.Store(doneBytes)
}

func (r *progressReporter) loop() {
	defer close(r.stopped)
	for {
		select {
		case <-r.ticker.C:
			r.redraw()
		case <-r.stop:
			return
		}
	}
}

func (r *progressReporter) redraw() {
	done := r.doneBytes.Load()
	pct := 0.0
	if r.total > 0 {
		pct = float64(done) / float64(r.total) * 100
	}
	fmt.Fprintf(r.w, "\rzipflate: %d/%d bytes (%.1f%%)", done, r.total, pct)
}

// done marks compression complete and prints a final 100% line.
func (r *progressReporter) done() {
	r.doneBytes.Store(r.total)
	r.redraw()
}

// finish stops the redraw goroutine and prints a trailing newline.
func (r *progressReporter) finish() {
	r.ticker.Stop()
	close(r.stop)
	<-r.stopped
	fmt.Fprintln(r.w)
}
