package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/nao1215/verscan/internal/inspect"
	"github.com/nao1215/verscan/internal/model"
	"github.com/nao1215/verscan/internal/probe"
	"github.com/nao1215/verscan/internal/release"
	"github.com/nao1215/verscan/internal/search"
)

// InspectStep performs passive page inspection of the target.
// It fetches the base page once and records title, server headers, and
// versioned asset references in the report.
//
// Design decision: Inspection is a separate step because:
// 1. It uses a different client profile (follows redirects) than probing
// 2. Its output is informational and must not gate the sweep
// 3. It can be disabled for strictly minimal-footprint scans
type InspectStep struct {
	// client is the page-profile HTTP client.
	client *http.Client

	// userAgent overrides the inspector's User-Agent when non-empty.
	userAgent string

	// logger for structured logging.
	logger *slog.Logger
}

// InspectStepOption configures an InspectStep.
type InspectStepOption func(*InspectStep)

// WithInspectUserAgent sets the User-Agent for the page request.
func WithInspectUserAgent(userAgent string) InspectStepOption {
	return func(s *InspectStep) {
		s.userAgent = userAgent
	}
}

// WithInspectLogger sets a custom logger for the inspect step.
func WithInspectLogger(logger *slog.Logger) InspectStepOption {
	return func(s *InspectStep) {
		s.logger = logger
	}
}

// NewInspectStep creates a new passive inspection step.
// The client should follow redirects; inspection wants the final page.
func NewInspectStep(client *http.Client, opts ...InspectStepOption) *InspectStep {
	s := &InspectStep{
		client: client,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *InspectStep) Name() string {
	return "inspect"
}

// Do executes the inspection step. Failures are recorded and absorbed:
// a target that refuses its landing page can still answer asset probes.
func (s *InspectStep) Do(ctx context.Context, report *model.ScanReport) error {
	target, err := model.NewTarget(report.Target)
	if err != nil {
		return fmt.Errorf("inspect %q: %w", report.Target, err)
	}

	var opts []inspect.Option
	if s.userAgent != "" {
		opts = append(opts, inspect.WithUserAgent(s.userAgent))
	}
	opts = append(opts, inspect.WithLogger(s.logger))

	result, err := inspect.New(s.client, target, opts...).Inspect(ctx)
	if err != nil {
		s.logger.Warn("page inspection failed",
			"target", report.Target,
			"error", err,
		)
		return nil
	}

	report.PageTitle = result.Title
	report.ServerHeader = result.Server
	report.XPoweredBy = result.XPoweredBy
	report.AssetHints = result.Hints

	return nil
}

// EnumerateFunc receives the candidate count once enumeration has
// seeded a report.
type EnumerateFunc func(candidates int)

// EnumerateStep fetches the candidate version list from the release
// index and seeds it into the report.
//
// Design decision: The index answer does not change between targets of
// one run, so the fetch happens exactly once per step instance and the
// result is shared. A batch over fifty targets costs one pagination
// walk, not fifty.
type EnumerateStep struct {
	// enumerator is the configured release index walker.
	enumerator *release.Enumerator

	// onSeeded is notified with the candidate count per seeded report.
	onSeeded EnumerateFunc

	// logger for structured logging.
	logger *slog.Logger

	once       sync.Once
	candidates []string
	err        error
}

// EnumerateStepOption configures an EnumerateStep.
type EnumerateStepOption func(*EnumerateStep)

// WithEnumerateCallback sets the per-report seeded notification. It
// fires after the candidate list is in the report and before the probe
// step runs, which makes it the spot to announce the sweep.
func WithEnumerateCallback(fn EnumerateFunc) EnumerateStepOption {
	return func(s *EnumerateStep) {
		s.onSeeded = fn
	}
}

// WithEnumerateLogger sets a custom logger for the enumerate step.
func WithEnumerateLogger(logger *slog.Logger) EnumerateStepOption {
	return func(s *EnumerateStep) {
		s.logger = logger
	}
}

// NewEnumerateStep creates a new enumeration step around a configured
// enumerator.
func NewEnumerateStep(enumerator *release.Enumerator, opts ...EnumerateStepOption) *EnumerateStep {
	s := &EnumerateStep{
		enumerator: enumerator,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *EnumerateStep) Name() string {
	return "enumerate"
}

// Do executes the enumeration step. Enumeration failure is fatal to the
// scan: without candidates there is nothing to probe.
func (s *EnumerateStep) Do(ctx context.Context, report *model.ScanReport) error {
	s.once.Do(func() {
		s.candidates, s.err = s.enumerator.Enumerate(ctx)
	})
	if s.err != nil {
		return fmt.Errorf("enumerate release tags: %w", s.err)
	}

	// Each report gets its own copy; the sweep must never see another
	// target's mutations.
	report.Candidates = append([]string(nil), s.candidates...)
	report.Repository = s.enumerator.Repository()
	if len(s.candidates) > 0 {
		report.LatestVersion = s.candidates[0]
	}

	if s.onSeeded != nil {
		s.onSeeded(len(report.Candidates))
	}

	s.logger.Debug("candidates seeded",
		"target", report.Target,
		"candidates", len(report.Candidates),
	)

	return nil
}

// ProbeStep runs the version sweep against the target.
//
// Design decision: The prober and controller are built inside Do, not
// at construction, because the target comes from the report. One step
// instance serves every target of a batch.
type ProbeStep struct {
	// client is the probe-profile HTTP client. It must not follow
	// redirects.
	client *http.Client

	// exhaustive probes every candidate instead of stopping at the
	// first hit.
	exhaustive bool

	// delay is the pause between probes.
	delay time.Duration

	// pathTemplate overrides the asset path template when non-empty.
	pathTemplate string

	// userAgent overrides the probe User-Agent when non-empty.
	userAgent string

	// onProbe receives sweep state after every probe.
	onProbe search.ProbeFunc

	// logger for structured logging.
	logger *slog.Logger
}

// ProbeStepOption configures a ProbeStep.
type ProbeStepOption func(*ProbeStep)

// WithProbeExhaustive makes the sweep probe every candidate.
func WithProbeExhaustive(exhaustive bool) ProbeStepOption {
	return func(s *ProbeStep) {
		s.exhaustive = exhaustive
	}
}

// WithProbeDelay sets the pause between probes.
func WithProbeDelay(delay time.Duration) ProbeStepOption {
	return func(s *ProbeStep) {
		s.delay = delay
	}
}

// WithProbePathTemplate sets the printf-style asset path template.
func WithProbePathTemplate(template string) ProbeStepOption {
	return func(s *ProbeStep) {
		s.pathTemplate = template
	}
}

// WithProbeUserAgent sets the User-Agent for probe requests.
func WithProbeUserAgent(userAgent string) ProbeStepOption {
	return func(s *ProbeStep) {
		s.userAgent = userAgent
	}
}

// WithProbeCallback sets the per-probe notification callback.
func WithProbeCallback(fn search.ProbeFunc) ProbeStepOption {
	return func(s *ProbeStep) {
		s.onProbe = fn
	}
}

// WithProbeLogger sets a custom logger for the probe step.
func WithProbeLogger(logger *slog.Logger) ProbeStepOption {
	return func(s *ProbeStep) {
		s.logger = logger
	}
}

// NewProbeStep creates a new version sweep step.
// The client must be the probe profile: redirects observed, not followed.
func NewProbeStep(client *http.Client, opts ...ProbeStepOption) *ProbeStep {
	s := &ProbeStep{
		client: client,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ProbeStep) Name() string {
	return "probe"
}

// Do executes the probe sweep. Results collected before a failure stay
// in the report; the sweep is the scan's core and its error is fatal.
func (s *ProbeStep) Do(ctx context.Context, report *model.ScanReport) error {
	if len(report.Candidates) == 0 {
		s.logger.Debug("skipping probe, no candidates", "target", report.Target)
		return nil
	}

	target, err := model.NewTarget(report.Target)
	if err != nil {
		return fmt.Errorf("probe %q: %w", report.Target, err)
	}

	probeOpts := []probe.ProberOption{probe.WithLogger(s.logger)}
	if s.pathTemplate != "" {
		probeOpts = append(probeOpts, probe.WithPathTemplate(s.pathTemplate))
	}
	if s.userAgent != "" {
		probeOpts = append(probeOpts, probe.WithUserAgent(s.userAgent))
	}

	searchOpts := []search.Option{
		search.WithExhaustive(s.exhaustive),
		search.WithProbeDelay(s.delay),
		search.WithLogger(s.logger),
	}
	if s.onProbe != nil {
		searchOpts = append(searchOpts, search.WithProbeCallback(s.onProbe))
	}

	prober := probe.NewProber(s.client, target, probeOpts...)
	state, runErr := search.New(prober, searchOpts...).Run(ctx, report.Candidates)

	for _, result := range state.Results {
		report.AddProbe(result)
	}
	report.Exhaustive = s.exhaustive
	report.ProbeDuration = state.Elapsed()

	if runErr != nil {
		return fmt.Errorf("probe sweep: %w", runErr)
	}

	return nil
}

// SummarizeStep derives the human-facing findings from the raw scan
// data collected by the previous steps.
type SummarizeStep struct {
	// logger for structured logging.
	logger *slog.Logger
}

// SummarizeStepOption configures a SummarizeStep.
type SummarizeStepOption func(*SummarizeStep)

// WithSummarizeLogger sets a custom logger for the summarize step.
func WithSummarizeLogger(logger *slog.Logger) SummarizeStepOption {
	return func(s *SummarizeStep) {
		s.logger = logger
	}
}

// NewSummarizeStep creates a new summarize step.
func NewSummarizeStep(opts ...SummarizeStepOption) *SummarizeStep {
	s := &SummarizeStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *SummarizeStep) Name() string {
	return "summarize"
}

// Do executes the summarize step.
func (s *SummarizeStep) Do(_ context.Context, report *model.ScanReport) error {
	report.SimpleReport = model.NewSimpleReport(report)

	s.logger.Debug("report summarized",
		"target", report.Target,
		"findings", report.SimpleReport.TotalFindings(),
	)

	return nil
}

// ReportStore persists finished scan reports. Satisfied by
// database.ScanDB.
type ReportStore interface {
	// SaveScanReport stores the report and returns its assigned id.
	SaveScanReport(ctx context.Context, report *model.ScanReport) (int64, error)
}

// PersistStep stores the finished report in the scan history.
type PersistStep struct {
	// store receives the report. A nil store disables persistence.
	store ReportStore

	// logger for structured logging.
	logger *slog.Logger
}

// PersistStepOption configures a PersistStep.
type PersistStepOption func(*PersistStep)

// WithPersistLogger sets a custom logger for the persist step.
func WithPersistLogger(logger *slog.Logger) PersistStepOption {
	return func(s *PersistStep) {
		s.logger = logger
	}
}

// NewPersistStep creates a new persistence step.
func NewPersistStep(store ReportStore, opts ...PersistStepOption) *PersistStep {
	s := &PersistStep{
		store:  store,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do executes the persistence step. Storage failures are absorbed: the
// operator already has the report in hand, losing the history entry is
// an inconvenience.
func (s *PersistStep) Do(ctx context.Context, report *model.ScanReport) error {
	if s.store == nil {
		s.logger.Debug("skipping persist, no store configured")
		return nil
	}

	id, err := s.store.SaveScanReport(ctx, report)
	if err != nil {
		s.logger.Warn("failed to persist scan report",
			"target", report.Target,
			"error", err,
		)
		return nil
	}

	s.logger.Debug("scan report persisted",
		"target", report.Target,
		"scan_id", id,
	)

	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// Inspect enables the passive page inspection step.
	Inspect bool

	// Exhaustive probes every candidate instead of stopping at the
	// first hit.
	Exhaustive bool

	// ProbeDelay is the pause between probes.
	ProbeDelay time.Duration

	// PathTemplate is the printf-style asset path template.
	// Empty uses the prober's default.
	PathTemplate string

	// UserAgent is the User-Agent for target-facing requests
	// (inspection and probes). Empty uses the component defaults.
	UserAgent string

	// ProbeCallback receives sweep state after every probe.
	ProbeCallback search.ProbeFunc

	// Store persists finished reports. Nil disables persistence.
	Store ReportStore
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineInspect toggles the passive inspection step.
func WithPipelineInspect(inspect bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Inspect = inspect
	}
}

// WithPipelineExhaustive makes the sweep probe every candidate.
func WithPipelineExhaustive(exhaustive bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Exhaustive = exhaustive
	}
}

// WithPipelineProbeDelay sets the pause between probes.
func WithPipelineProbeDelay(delay time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.ProbeDelay = delay
	}
}

// WithPipelinePathTemplate sets the asset path template.
func WithPipelinePathTemplate(template string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.PathTemplate = template
	}
}

// WithPipelineUserAgent sets the User-Agent for target-facing requests.
func WithPipelineUserAgent(userAgent string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.UserAgent = userAgent
	}
}

// WithPipelineProbeCallback sets the per-probe notification callback.
func WithPipelineProbeCallback(fn search.ProbeFunc) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.ProbeCallback = fn
	}
}

// WithPipelineStore sets the scan history store.
func WithPipelineStore(store ReportStore) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Store = store
	}
}

// DefaultPipeline creates a pipeline with the standard scan steps in
// order: inspect (optional), enumerate, probe, summarize, persist
// (when a store is configured).
//
// Design decision: We provide a default pipeline because:
// 1. Most users want the full scan
// 2. Reduces boilerplate in CLI
// 3. Ensures consistent ordering
//
// The enumerate step is passed in, not built here, so a batch factory
// can hand the same instance to every per-target pipeline and the
// candidate fetch happens once. pageClient and probeClient carry the
// two target-facing profiles; they may be direct or Tor-routed, the
// pipeline does not care.
func DefaultPipeline(enumerate *EnumerateStep, pageClient, probeClient *http.Client, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		Inspect: true,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	if cfg.Inspect {
		inspectOpts := []InspectStepOption{}
		if cfg.UserAgent != "" {
			inspectOpts = append(inspectOpts, WithInspectUserAgent(cfg.UserAgent))
		}
		p.AddStep(NewInspectStep(pageClient, inspectOpts...))
	}

	probeOpts := []ProbeStepOption{
		WithProbeExhaustive(cfg.Exhaustive),
		WithProbeDelay(cfg.ProbeDelay),
	}
	if cfg.PathTemplate != "" {
		probeOpts = append(probeOpts, WithProbePathTemplate(cfg.PathTemplate))
	}
	if cfg.UserAgent != "" {
		probeOpts = append(probeOpts, WithProbeUserAgent(cfg.UserAgent))
	}
	if cfg.ProbeCallback != nil {
		probeOpts = append(probeOpts, WithProbeCallback(cfg.ProbeCallback))
	}

	p.AddSteps(
		enumerate,
		NewProbeStep(probeClient, probeOpts...),
		NewSummarizeStep(),
	)

	if cfg.Store != nil {
		p.AddStep(NewPersistStep(cfg.Store))
	}

	return p
}
