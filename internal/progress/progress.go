// Package progress renders a per-card completion counter on the console.
// Tracker.Update satisfies the reconciliation engine's observer callback.
package progress

import (
	"fmt"
	"io"
)

// Tracker writes a carriage-return-rewritten counter to w.
type Tracker struct {
	w       io.Writer
	label   string
	started bool
}

// New creates a Tracker writing to w.
func New(w io.Writer) *Tracker {
	return &Tracker{w: w, label: "Processing cards"}
}

// Update renders the current done/total state. A zero total means the total
// is unknown and only the running count is shown.
func (t *Tracker) Update(done, total int) {
	t.started = true
	if total > 0 {
		fmt.Fprintf(t.w, "\r%s: %d/%d", t.label, done, total)
		return
	}
	fmt.Fprintf(t.w, "\r%s: %d", t.label, done)
}

// Finish terminates the counter line. Safe to call when nothing was
// rendered.
func (t *Tracker) Finish() {
	if !t.started {
		return
	}
	fmt.Fprintln(t.w)
}
