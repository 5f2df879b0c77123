package progress

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// minRenderInterval is the shortest gap between two terminal rewrites.
// Probes on a fast local network can complete in under a millisecond;
// rewriting the line for every one of them wastes cycles on output the
// eye cannot follow.
const minRenderInterval = 50 * time.Millisecond

// Line renders a status line that overwrites itself in place.
//
// Design decision:
// Every render starts with a carriage return and pads with spaces up to
// the length of the previous content, so a shorter line fully covers a
// longer one without emitting terminal control sequences beyond "\r".
// Updates that arrive faster than minRenderInterval are not dropped but
// kept as pending state; Done flushes the most recent pending line
// before finalizing, so the last reported state always reaches the
// screen.
type Line struct {
	out         io.Writer
	enabled     bool
	minInterval time.Duration

	lastRender time.Time
	lastLen    int
	pending    string
	hasPending bool
}

// NewLine creates a status line writing to out. When enabled is false,
// Update and Done are no-ops.
func NewLine(out io.Writer, enabled bool) *Line {
	return &Line{
		out:         out,
		enabled:     enabled,
		minInterval: minRenderInterval,
	}
}

// Update rewrites the status line with the given content. Calls that
// arrive within the minimum render interval only record the content as
// pending; the next Update outside the interval, or Done, will render
// it.
func (l *Line) Update(line string) {
	if !l.enabled {
		return
	}
	now := time.Now()
	if now.Sub(l.lastRender) < l.minInterval {
		l.pending = line
		l.hasPending = true
		return
	}
	l.lastRender = now
	l.hasPending = false
	l.render(line)
}

// Done finalizes the current line: any pending content is rendered,
// a newline moves the cursor off the status line, and internal state is
// reset so a following phase starts from a clean slate.
func (l *Line) Done() {
	if !l.enabled {
		return
	}
	if l.hasPending {
		l.render(l.pending)
	}
	fmt.Fprint(l.out, "\n")
	l.lastRender = time.Time{}
	l.lastLen = 0
	l.pending = ""
	l.hasPending = false
}

// Println writes a permanent line through the live region: the status
// line is overwritten by s, a newline preserves it, and the next Update
// redraws the status line on the fresh row. When the line is disabled
// the text still prints as a plain line, so per-result output survives
// piped and no-UI runs.
func (l *Line) Println(s string) {
	if !l.enabled {
		fmt.Fprintln(l.out, s)
		return
	}
	l.render(s)
	fmt.Fprint(l.out, "\n")
	l.lastRender = time.Time{}
	l.lastLen = 0
	l.pending = ""
	l.hasPending = false
}

// render writes the line over the previous one. lastLen counts raw
// bytes including color escapes; over-padding that causes is invisible,
// and the lines of a single phase are near-uniform in length anyway.
func (l *Line) render(line string) {
	pad := ""
	if n := l.lastLen - len(line); n > 0 {
		pad = strings.Repeat(" ", n)
	}
	fmt.Fprint(l.out, "\r"+line+pad)
	l.lastLen = len(line)
}
