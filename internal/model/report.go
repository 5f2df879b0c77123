package model

import (
	"time"
)

// ScanReport is the main scan result structure.
// It contains all information collected while fingerprinting one target.
//
// Design decision: We use a single large struct rather than many small ones
// to simplify serialization and database storage. The SimpleReport sub-struct
// groups categorized findings for easier access.
type ScanReport struct {
	// === Basic Information ===

	// Target is the scanned base URL.
	Target string `json:"target"`

	// Repository is the release index repository the candidates came from,
	// in "owner/name" form.
	Repository string `json:"repository"`

	// DateScanned is the timestamp when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// === Enumeration Data ===

	// Candidates holds every distinct version tag in enumeration order,
	// newest release first. Probing walks this slice front to back.
	Candidates []string `json:"candidates,omitempty"`

	// LatestVersion is the newest release tag the index returned.
	LatestVersion string `json:"latest_version,omitempty"`

	// === Probe Data ===

	// Probes holds each candidate's outcome in probe order.
	// The slice is append-only and never re-sorted.
	Probes []ProbeResult `json:"probes,omitempty"`

	// Hits lists the versions whose asset probe answered, in probe order.
	Hits []string `json:"hits,omitempty"`

	// IdentifiedVersion is the first version whose asset probe answered.
	// Empty when no candidate matched.
	IdentifiedVersion string `json:"identified_version,omitempty"`

	// CandidatesChecked is how many candidates were probed before the
	// search stopped. Less than len(Candidates) after an early exit.
	CandidatesChecked int `json:"candidates_checked"`

	// Exhaustive is true when the sweep probed every candidate instead
	// of stopping at the first hit.
	Exhaustive bool `json:"exhaustive"`

	// ProbeDuration is how long the probing phase took.
	ProbeDuration time.Duration `json:"probe_duration_ns"`

	// === Inspection Data ===
	// Collected by the passive page inspection, when enabled. Hints never
	// influence probe order; they only surface as findings.

	// PageTitle is the title of the target's base page.
	PageTitle string `json:"page_title,omitempty"`

	// AssetHints lists versioned asset references found in the base page
	// HTML, keyed by the version they embed.
	AssetHints []AssetHint `json:"asset_hints,omitempty"`

	// ServerHeader is the Server response header from the base page.
	ServerHeader string `json:"server_header,omitempty"`

	// XPoweredBy is the X-Powered-By response header from the base page.
	XPoweredBy string `json:"x_powered_by,omitempty"`

	// === Sub-Reports ===

	// SimpleReport contains the summarized findings for human-readable output.
	SimpleReport *SimpleReport `json:"simple_report,omitempty"`

	// === Scan State ===

	// TimedOut is true if the scan was terminated due to timeout.
	TimedOut bool `json:"timed_out"`

	// PerformedSteps lists the pipeline steps that were actually performed.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error contains any error that occurred during scanning.
	// Only set if the scan failed or partially failed.
	Error error `json:"-"` // Excluded from JSON

	// ErrorMessage is the string representation of Error for serialization.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// AssetHint is a versioned asset reference discovered in page HTML.
// It records where the version clue came from so reports can show the
// evidence, not just the conclusion.
type AssetHint struct {
	// Version is the version string embedded in the asset URL.
	Version string `json:"version"`

	// URL is the asset reference as it appeared in the page.
	URL string `json:"url"`
}

// NewScanReport creates a new report for the given target base URL.
func NewScanReport(target string) *ScanReport {
	return &ScanReport{
		Target:      target,
		DateScanned: time.Now(),
	}
}

// AddProbe appends a probe result to the report and keeps the derived
// hit fields in sync. The first hit becomes the identified version.
func (r *ScanReport) AddProbe(result ProbeResult) {
	r.Probes = append(r.Probes, result)
	r.CandidatesChecked = len(r.Probes)

	if result.IsHit() {
		r.Hits = append(r.Hits, result.Version)
		if r.IdentifiedVersion == "" {
			r.IdentifiedVersion = result.Version
		}
	}
}

// Outdated reports whether the identified version is confirmed older
// than the newest published release. False when nothing was identified,
// when the latest version is unknown, or when the deployment is current.
func (r *ScanReport) Outdated() bool {
	if r.IdentifiedVersion == "" || r.LatestVersion == "" {
		return false
	}
	return r.IdentifiedVersion != r.LatestVersion
}

// AddFinding adds a finding to the simple report.
// If the simple report doesn't exist, it initializes one.
//
// Design decision: We store findings in SimpleReport rather than
// a separate findings slice because:
// 1. SimpleReport already has finding aggregation logic
// 2. Avoids duplication of findings data
// 3. Keeps the main report focused on raw data
func (r *ScanReport) AddFinding(finding Finding) {
	if r.SimpleReport == nil {
		r.SimpleReport = &SimpleReport{
			Target:      r.Target,
			DateScanned: r.DateScanned,
			Findings:    make([]Finding, 0),
		}
	}

	// Keep probe count in sync when SimpleReport is first created via AddFinding.
	if r.SimpleReport.ProbesSent == 0 {
		r.SimpleReport.ProbesSent = len(r.Probes)
	}

	// Avoid duplicates based on type and value
	for _, f := range r.SimpleReport.Findings {
		if f.Type == finding.Type && f.Value == finding.Value && f.Location == finding.Location {
			return
		}
	}

	r.SimpleReport.Findings = append(r.SimpleReport.Findings, finding)

	// Update severity counts
	switch finding.Severity {
	case SeverityCritical:
		r.SimpleReport.CriticalCount++
	case SeverityHigh:
		r.SimpleReport.HighCount++
	case SeverityMedium:
		r.SimpleReport.MediumCount++
	case SeverityLow:
		r.SimpleReport.LowCount++
	case SeverityInfo:
		r.SimpleReport.InfoCount++
	}
}
