package search

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nao1215/verscan/internal/model"
)

// ErrNoHits reports a sweep that completed without confirming any
// version. The sweep itself is not at fault, so the controller never
// returns this error; commands use it to distinguish "target checked,
// nothing found" from operational failures.
var ErrNoHits = errors.New("no candidate version produced a hit")

// Prober issues a single version probe. Satisfied by probe.Prober.
type Prober interface {
	Probe(ctx context.Context, version string) (model.ProbeResult, error)
}

// ProbeFunc receives a snapshot of the sweep state after every
// completed probe, together with that probe's result. Used to feed the
// progress line.
type ProbeFunc func(state State, result model.ProbeResult)

// Controller runs the sweep over enumerated candidates.
//
// Design decision:
// 1. Probes run strictly sequentially. The point of the tool is a
//    quiet, low-and-slow fingerprint; a concurrent burst of requests
//    against /static/dist/admin/ reads like an attack in any WAF log.
// 2. By default the sweep stops at the first hit. A confirmed version
//    answers the question; --all exists for targets where several
//    asset generations are still deployed behind a cache.
type Controller struct {
	prober     Prober
	exhaustive bool
	delay      time.Duration
	onProbe    ProbeFunc
	logger     *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithExhaustive makes the sweep probe every candidate instead of
// stopping at the first hit.
func WithExhaustive(exhaustive bool) Option {
	return func(c *Controller) {
		c.exhaustive = exhaustive
	}
}

// WithProbeDelay sets a pause inserted after each probe. Zero or
// negative disables the pause.
func WithProbeDelay(delay time.Duration) Option {
	return func(c *Controller) {
		c.delay = delay
	}
}

// WithProbeCallback sets the per-probe notification callback.
func WithProbeCallback(fn ProbeFunc) Option {
	return func(c *Controller) {
		c.onProbe = fn
	}
}

// WithLogger sets the logger for per-probe diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// New creates a sweep controller for the given prober.
func New(prober Prober, opts ...Option) *Controller {
	c := &Controller{
		prober: prober,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run probes candidates in the order given and returns the final sweep
// state. An empty hit list is a valid outcome, not an error; Run fails
// only when a probe itself fails (cancellation, or a candidate that
// cannot form a request). The returned state is valid either way and
// reflects every probe that completed.
func (c *Controller) Run(ctx context.Context, candidates []string) (*State, error) {
	state := &State{
		Total:     len(candidates),
		StartedAt: time.Now(),
	}
	defer func() { state.FinishedAt = time.Now() }()

	for i, version := range candidates {
		result, err := c.prober.Probe(ctx, version)
		if err != nil {
			return state, err
		}

		state.Checked++
		state.Results = append(state.Results, result)
		if result.IsHit() {
			state.Hits = append(state.Hits, result)
		}

		if c.onProbe != nil {
			c.onProbe(*state, result)
		}

		c.logger.Debug("probed candidate",
			slog.String("version", version),
			slog.String("status", result.StatusText),
			slog.Int("checked", state.Checked),
			slog.Int("total", state.Total))

		if result.IsHit() && !c.exhaustive {
			c.logger.Debug("stopping at first hit", slog.String("version", version))
			break
		}

		// Pause between probes, never after the sweep has stopped.
		if c.delay > 0 && i < len(candidates)-1 {
			select {
			case <-ctx.Done():
				return state, ctx.Err()
			case <-time.After(c.delay):
			}
		}
	}

	return state, nil
}
