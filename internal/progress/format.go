package progress

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/nao1215/verscan/internal/model"
)

// barWidth is the character width of the progress bar between brackets.
const barWidth = 28

// Terminal colors for the live line. The color package disables itself
// automatically when output is not a terminal or NO_COLOR is set.
var (
	colorHit       = color.New(color.FgGreen, color.Bold)
	colorRedirect  = color.New(color.FgYellow)
	colorFailure   = color.New(color.FgRed)
	colorMuted     = color.New(color.FgHiBlack)
	colorCandidate = color.New(color.FgCyan)
)

// IsTerminal reports whether f is attached to an interactive terminal.
// Pipes and files report false, which disables the live line so logs
// captured from cron jobs or CI runs stay free of carriage returns.
func IsTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// Bar renders a fixed-width progress bar such as [######----].
// done values outside [0, total] are clamped, and a non-positive total
// renders a full bar rather than dividing by zero.
func Bar(done, total int) string {
	if total <= 0 {
		total = 1
		done = 1
	}
	frac := float64(done) / float64(total)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	filled := int(math.Round(frac * barWidth))
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", barWidth-filled) + "]"
}

// Rate formats probe throughput as "12.3/s". Elapsed time is floored
// to a millisecond so the very first probe cannot divide by zero.
func Rate(done int, elapsed time.Duration) string {
	secs := elapsed.Seconds()
	if secs < 0.001 {
		secs = 0.001
	}
	return fmt.Sprintf("%.1f/s", float64(done)/secs)
}

// StatusLabel colors a probe classification for the live line:
// hits green, redirects yellow, network failures red, everything else
// muted. Network failures have no status code, so they render as text.
func StatusLabel(status model.ProbeStatus, code int) string {
	switch status {
	case model.StatusFound:
		return colorHit.Sprintf("%d", code)
	case model.StatusRedirect:
		return colorRedirect.Sprintf("%d", code)
	case model.StatusNetworkFailed:
		return colorFailure.Sprint("no response")
	default:
		return colorMuted.Sprintf("%d", code)
	}
}

// ProbeLine composes the live line for the probing phase:
//
//	[#######---------------------]  23/87 (26%)  14.2/s  checking 2024.8.3  status 404
func ProbeLine(checked, total int, elapsed time.Duration, version string, status model.ProbeStatus, code int) string {
	pct := 0
	if total > 0 {
		pct = checked * 100 / total
	}
	return fmt.Sprintf("%s  %d/%d (%d%%)  %s  checking %s  status %s",
		Bar(checked, total), checked, total, pct, Rate(checked, elapsed),
		colorCandidate.Sprint(version), StatusLabel(status, code))
}

// PageLine composes the live line for the enumeration phase. The total
// page count is unknown until the last page arrives, so the bar always
// renders full and the page counter carries the progress.
func PageLine(page, collected int) string {
	return fmt.Sprintf("%s  page %d  collected %d tag(s)", Bar(page, page), page, collected)
}
