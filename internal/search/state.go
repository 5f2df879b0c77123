package search

import (
	"time"

	"github.com/nao1215/verscan/internal/model"
)

// State holds the live counters of a sweep. The controller is its only
// writer; everything else (progress line, report, exit-code mapping)
// reads from it.
type State struct {
	// Total is the number of candidates the sweep was started with.
	Total int

	// Checked counts completed probes, hit or not.
	Checked int

	// StartedAt is when the first probe was issued.
	StartedAt time.Time

	// FinishedAt is when the sweep stopped. Zero while running.
	FinishedAt time.Time

	// Results records every probe outcome in probe order.
	Results []model.ProbeResult

	// Hits records confirmed versions in the order they were found.
	// Append-only: a hit is never removed or reclassified.
	Hits []model.ProbeResult
}

// Elapsed returns the sweep duration: running time while the sweep is
// in flight, the frozen final duration once it has finished.
func (s *State) Elapsed() time.Duration {
	if s.StartedAt.IsZero() {
		return 0
	}
	if s.FinishedAt.IsZero() {
		return time.Since(s.StartedAt)
	}
	return s.FinishedAt.Sub(s.StartedAt)
}
