package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SimpleReport is a summarized, human-readable report.
// It extracts key findings from the full scan report for quick review.
//
// Design decision: We create a separate simplified report rather than
// just printing parts of ScanReport because:
// 1. It provides a consistent, curated view of the most important findings
// 2. It can be serialized to JSON for tools that want structured but simple output
// 3. It separates presentation concerns from data collection
type SimpleReport struct {
	// Target is the scanned base URL.
	Target string `json:"target"`

	// DateScanned is when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// === Severity Summary ===

	// CriticalCount is the number of critical findings.
	CriticalCount int `json:"critical_count"`

	// HighCount is the number of high severity findings.
	HighCount int `json:"high_count"`

	// MediumCount is the number of medium severity findings.
	MediumCount int `json:"medium_count"`

	// LowCount is the number of low severity findings.
	LowCount int `json:"low_count"`

	// InfoCount is the number of informational findings.
	InfoCount int `json:"info_count"`

	// === Version Assessment ===

	// IdentifiedVersion is the version the probe sweep confirmed, if any.
	IdentifiedVersion string `json:"identified_version,omitempty"`

	// LatestVersion is the newest published release at scan time.
	LatestVersion string `json:"latest_version,omitempty"`

	// === Probe Statistics ===

	// ProbesSent is the number of candidates that were probed.
	ProbesSent int `json:"probes_sent"`

	// CandidatesTotal is the number of candidates enumeration produced.
	CandidatesTotal int `json:"candidates_total"`

	// StatusCounts tallies probe outcomes by status class.
	StatusCounts map[string]int `json:"status_counts,omitempty"`

	// === Findings ===

	// Findings contains all categorized findings.
	Findings []Finding `json:"findings,omitempty"`

	// TimedOut indicates if the scan was terminated due to timeout.
	TimedOut bool `json:"timed_out"`

	// Error contains any error message if the scan failed.
	Error string `json:"error,omitempty"`
}

// Finding represents a single finding in the simple report.
type Finding struct {
	// Type is the finding type identifier.
	// This maps to the findingInfoMapping in severity.go.
	Type string `json:"type"`

	// Severity is the risk level.
	Severity Severity `json:"severity"`

	// SeverityText is the human-readable severity.
	SeverityText string `json:"severity_text"`

	// Title is a short description of the finding.
	Title string `json:"title"`

	// Description provides more detail about the finding.
	Description string `json:"description,omitempty"`

	// Impact explains the security implications of this finding.
	// This helps users understand why this finding matters.
	Impact string `json:"impact,omitempty"`

	// Recommendation provides guidance on how to address this finding.
	Recommendation string `json:"recommendation,omitempty"`

	// Value is the specific value found (version, header, URL, etc.).
	Value string `json:"value,omitempty"`

	// Location is where the finding was discovered.
	Location string `json:"location,omitempty"`
}

// NewSimpleReport creates a new SimpleReport from a ScanReport.
// This extracts and summarizes key findings.
func NewSimpleReport(report *ScanReport) *SimpleReport {
	simple := &SimpleReport{
		Target:            report.Target,
		DateScanned:       report.DateScanned,
		IdentifiedVersion: report.IdentifiedVersion,
		LatestVersion:     report.LatestVersion,
		ProbesSent:        len(report.Probes),
		CandidatesTotal:   len(report.Candidates),
		TimedOut:          report.TimedOut,
	}

	if report.Error != nil {
		simple.Error = report.Error.Error()
	}

	// Tally probe outcomes by status class
	simple.collectStatusCounts(report)

	// Collect findings from the raw scan data
	simple.collectFindings(report)

	// Count findings by severity
	simple.countBySeverity()

	return simple
}

// collectStatusCounts tallies probe results by status class.
func (s *SimpleReport) collectStatusCounts(report *ScanReport) {
	if len(report.Probes) == 0 {
		return
	}
	s.StatusCounts = make(map[string]int)
	for _, p := range report.Probes {
		s.StatusCounts[p.Status.String()]++
	}
}

// collectFindings extracts findings from the scan data.
func (s *SimpleReport) collectFindings(report *ScanReport) {
	// High findings
	if report.IdentifiedVersion != "" {
		s.addFinding("version_identified", "Version Identified",
			"A versioned admin asset answered, confirming the deployed version",
			report.IdentifiedVersion, hitLocation(report, report.IdentifiedVersion))
	}
	if report.Outdated() {
		s.addFinding("outdated_release", "Outdated Release",
			fmt.Sprintf("Deployment runs %s while the newest release is %s",
				report.IdentifiedVersion, report.LatestVersion),
			report.IdentifiedVersion, "")
	}

	// Medium findings
	for _, hint := range report.AssetHints {
		s.addFinding("asset_reference", "Versioned Asset Reference",
			"Page HTML references a versioned admin asset",
			hint.Version, hint.URL)
	}
	if report.ServerHeader != "" {
		s.addFinding("server_version", "Server Version Exposed",
			"Server header reveals software version", report.ServerHeader, "")
	}
	if report.XPoweredBy != "" {
		s.addFinding("x_powered_by", "X-Powered-By Header",
			"X-Powered-By header reveals technology stack", report.XPoweredBy, "")
	}

	// Low findings
	if n, location := tallyStatus(report, StatusRedirect); n > 0 {
		s.addFinding("probe_redirected", "Probe Paths Redirected",
			fmt.Sprintf("%d of %d probes were redirected", n, len(report.Probes)),
			location, "")
	}

	// Info findings
	if len(report.Hits) > 1 {
		s.addFinding("multiple_versions_matched", "Multiple Versions Matched",
			"More than one version candidate answered the asset probe",
			strings.Join(report.Hits, ", "), "")
	}
	if codes := unexpectedCodes(report); codes != "" {
		s.addFinding("unexpected_status", "Unexpected Status Codes",
			"Probes returned status codes outside the expected set",
			codes, "")
	}
}

// hitLocation returns the probed URL for the given hit version.
func hitLocation(report *ScanReport, version string) string {
	for _, p := range report.Probes {
		if p.IsHit() && p.Version == version {
			return p.URL
		}
	}
	return ""
}

// tallyStatus counts probes with the given status and returns the first
// redirect target seen, which doubles as the finding value.
func tallyStatus(report *ScanReport, status ProbeStatus) (int, string) {
	count := 0
	location := ""
	for _, p := range report.Probes {
		if p.Status != status {
			continue
		}
		count++
		if location == "" && p.Location != "" {
			location = p.Location
		}
	}
	return count, location
}

// unexpectedCodes joins the distinct StatusOther codes, probe order preserved.
func unexpectedCodes(report *ScanReport) string {
	seen := make(map[int]bool)
	var codes []string
	for _, p := range report.Probes {
		if p.Status != StatusOther || seen[p.StatusCode] {
			continue
		}
		seen[p.StatusCode] = true
		codes = append(codes, strconv.Itoa(p.StatusCode))
	}
	return strings.Join(codes, ", ")
}

// addFinding adds a finding to the report.
func (s *SimpleReport) addFinding(findingType, title, description, value, location string) {
	info := GetFindingInfo(findingType)
	s.Findings = append(s.Findings, Finding{
		Type:           findingType,
		Severity:       info.Severity,
		SeverityText:   info.Severity.String(),
		Title:          title,
		Description:    description,
		Impact:         info.Impact,
		Recommendation: info.Recommendation,
		Value:          value,
		Location:       location,
	})
}

// countBySeverity counts findings by severity level.
func (s *SimpleReport) countBySeverity() {
	for _, f := range s.Findings {
		switch f.Severity {
		case SeverityCritical:
			s.CriticalCount++
		case SeverityHigh:
			s.HighCount++
		case SeverityMedium:
			s.MediumCount++
		case SeverityLow:
			s.LowCount++
		case SeverityInfo:
			s.InfoCount++
		}
	}
}

// TotalFindings returns the total number of findings.
func (s *SimpleReport) TotalFindings() int {
	return len(s.Findings)
}

// Outdated reports whether the identified version trails the newest
// published release. Mirrors ScanReport.Outdated for summary consumers.
func (s *SimpleReport) Outdated() bool {
	if s.IdentifiedVersion == "" || s.LatestVersion == "" {
		return false
	}
	return s.IdentifiedVersion != s.LatestVersion
}

// HasFindings returns true if there are any findings.
func (s *SimpleReport) HasFindings() bool {
	return len(s.Findings) > 0
}

// GetFindingsBySeverity returns findings filtered by severity.
func (s *SimpleReport) GetFindingsBySeverity(severity Severity) []Finding {
	var result []Finding
	for _, f := range s.Findings {
		if f.Severity == severity {
			result = append(result, f)
		}
	}
	return result
}
