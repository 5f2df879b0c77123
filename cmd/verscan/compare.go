package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/verscan/internal/config"
	"github.com/nao1215/verscan/internal/database"
	"github.com/nao1215/verscan/internal/model"
)

// Constants for risk direction and summary messages.
const (
	riskDirectionWorsened  = "worsened"
	riskDirectionImproved  = "improved"
	riskDirectionUnchanged = "unchanged"
	noFindingsMessage      = "No findings"
)

// NewCompareCmd creates the compare command.
// This command compares scan results with historical data stored in the database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [base-url]",
		Short: "Compare scan results with historical data",
		Long: `Compare displays differences between the current and previous scan results.

This command retrieves historical scan data from the database and shows:
- Whether the identified version changed between scans
- New findings that appeared since the last scan
- Resolved findings that are no longer present
- Changes in risk severity levels

The comparison requires at least two scans in the database for the
specified target. Use 'verscan scan' to perform scans.

Examples:
  # Compare the latest two scans of a target
  verscan compare https://sso.example.com

  # Compare with a specific historical scan by ID
  verscan compare --with-scan-id 5 https://sso.example.com

  # Compare with the first scan after a date
  verscan compare --since "2026-01-01" https://sso.example.com

  # Output comparison in JSON format
  verscan compare --json https://sso.example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	// Comparison target flags
	cmd.Flags().Int64P("with-scan-id", "i", 0,
		"Compare with a specific scan by ID (use 'verscan history' to see available IDs)")
	cmd.Flags().StringP("since", "s", "",
		"Compare with the first scan after this date (format: YYYY-MM-DD)")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	// Validate arguments before opening the database so validation
	// failures cannot hold a database lock
	if len(args) == 0 {
		return errors.New("base URL is required (use 'verscan history --list-targets' to see scanned targets)")
	}
	normalized, err := model.NewTarget(args[0])
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	target := normalized.String()

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	withScanID, err := cmd.Flags().GetInt64("with-scan-id")
	if err != nil {
		return err
	}
	sinceDate, err := cmd.Flags().GetString("since")
	if err != nil {
		return err
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = db.Close() //nolint:errcheck // Best effort close
	}()

	return runComparison(context.Background(), db, target, withScanID, sinceDate, jsonOutput, markdownOutput)
}

// formatRiskSummary formats the risk summary map into a human-readable string.
func formatRiskSummary(summary map[string]int) string {
	if summary == nil {
		return "N/A"
	}

	var parts []string
	if v := summary["critical"]; v > 0 {
		parts = append(parts, fmt.Sprintf("C:%d", v))
	}
	if v := summary["high"]; v > 0 {
		parts = append(parts, fmt.Sprintf("H:%d", v))
	}
	if v := summary["medium"]; v > 0 {
		parts = append(parts, fmt.Sprintf("M:%d", v))
	}
	if v := summary["low"]; v > 0 {
		parts = append(parts, fmt.Sprintf("L:%d", v))
	}
	if v := summary["info"]; v > 0 {
		parts = append(parts, fmt.Sprintf("I:%d", v))
	}

	if len(parts) == 0 {
		return noFindingsMessage
	}
	return strings.Join(parts, " ")
}

// valueOrDash substitutes a dash for an empty table cell.
func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// runComparison performs the actual comparison between scan reports.
func runComparison(ctx context.Context, db *database.ScanDB, target string, withScanID int64, sinceDate string, jsonOutput, markdownOutput bool) error {
	reports, err := db.GetScanHistory(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(reports) == 0 {
		return fmt.Errorf("no scan history found for %s", target)
	}

	if len(reports) < 2 && withScanID == 0 && sinceDate == "" {
		return fmt.Errorf("at least 2 scans are required for comparison (found %d)", len(reports))
	}

	// Determine which reports to compare
	var currentReport, previousReport *model.ScanReport

	// Latest report is always the current one
	currentReport = reports[0]

	if withScanID > 0 {
		// Find the report with the specified ID
		previousReport, err = db.GetScanReportByID(ctx, withScanID)
		if err != nil {
			return fmt.Errorf("failed to get scan with ID %d: %w", withScanID, err)
		}
		if previousReport == nil {
			return fmt.Errorf("scan with ID %d not found", withScanID)
		}
		// Validate that the scan ID belongs to the same target
		if previousReport.Target != target {
			return fmt.Errorf("scan ID %d belongs to %s, not %s", withScanID, previousReport.Target, target)
		}
	} else if sinceDate != "" {
		// Parse the date and find the first (oldest) report at or after the specified date
		parsedDate, err := time.Parse("2006-01-02", sinceDate)
		if err != nil {
			return fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}

		// Reports are sorted by timestamp DESC (newest first), so iterate in reverse
		// to find the first (oldest) report at or after the date
		for i := len(reports) - 1; i >= 0; i-- {
			r := reports[i]
			if r.DateScanned.After(parsedDate) || r.DateScanned.Equal(parsedDate) {
				previousReport = r
				break // Stop at the first (oldest) matching report
			}
		}
		if previousReport == nil {
			return fmt.Errorf("no scans found since %s", sinceDate)
		}
		// If only one scan matches and it's the current report, we can't compare
		if previousReport == currentReport {
			return fmt.Errorf("only one scan found since %s; at least 2 scans are required for comparison", sinceDate)
		}
	} else {
		// Default: compare with the previous scan
		previousReport = reports[1]
	}

	comparison := compareReports(previousReport, currentReport)

	if jsonOutput {
		return outputComparisonJSON(comparison)
	}
	if markdownOutput {
		return outputComparisonMarkdown(comparison)
	}
	return outputComparisonText(comparison)
}

// ComparisonResult holds the result of comparing two scan reports.
type ComparisonResult struct {
	// Target is the scanned base URL.
	Target string `json:"target"`

	// PreviousScan contains metadata about the previous scan.
	PreviousScan ScanMetadata `json:"previous_scan"`

	// CurrentScan contains metadata about the current scan.
	CurrentScan ScanMetadata `json:"current_scan"`

	// VersionChange describes how the identified version moved between scans.
	VersionChange VersionChange `json:"version_change"`

	// NewFindings contains findings that are new in the current scan.
	NewFindings []model.Finding `json:"new_findings,omitempty"`

	// ResolvedFindings contains findings that were in the previous scan but not in current.
	ResolvedFindings []model.Finding `json:"resolved_findings,omitempty"`

	// UnchangedCount is the number of findings that remain unchanged.
	UnchangedCount int `json:"unchanged_count"`

	// RiskChange describes the overall change in risk level.
	RiskChange RiskChange `json:"risk_change"`
}

// ScanMetadata contains metadata about a scan for comparison display.
type ScanMetadata struct {
	// DateScanned is when the scan was performed.
	DateScanned time.Time `json:"date_scanned"`

	// IdentifiedVersion is the version the scan identified, if any.
	IdentifiedVersion string `json:"identified_version,omitempty"`

	// LatestVersion is the newest published release at scan time.
	LatestVersion string `json:"latest_version,omitempty"`

	// TotalFindings is the total number of findings in this scan.
	TotalFindings int `json:"total_findings"`

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
}

// VersionChange describes the movement of the identified version between scans.
type VersionChange struct {
	// Previous is the version identified by the previous scan.
	Previous string `json:"previous,omitempty"`

	// Current is the version identified by the current scan.
	Current string `json:"current,omitempty"`

	// Changed reports whether the identified version moved.
	Changed bool `json:"changed"`
}

// RiskChange describes the change in risk level between scans.
type RiskChange struct {
	// Direction is "improved", "worsened", or "unchanged".
	Direction string `json:"direction"`

	// CriticalDelta is the change in critical findings count.
	CriticalDelta int `json:"critical_delta"`

	// HighDelta is the change in high severity findings count.
	HighDelta int `json:"high_delta"`

	// MediumDelta is the change in medium severity findings count.
	MediumDelta int `json:"medium_delta"`

	// LowDelta is the change in low severity findings count.
	LowDelta int `json:"low_delta"`

	// InfoDelta is the change in informational findings count.
	InfoDelta int `json:"info_delta"`
}

// compareReports compares two scan reports and generates a comparison result.
func compareReports(previous, current *model.ScanReport) *ComparisonResult {
	result := &ComparisonResult{
		Target:        current.Target,
		PreviousScan:  scanMetadataFor(previous),
		CurrentScan:   scanMetadataFor(current),
		VersionChange: versionChange(previous, current),
	}

	// Build finding maps for comparison
	previousFindings := make(map[string]model.Finding)
	currentFindings := make(map[string]model.Finding)

	if previous.SimpleReport != nil {
		for _, f := range previous.SimpleReport.Findings {
			previousFindings[findingKey(f)] = f
		}
	}

	if current.SimpleReport != nil {
		for _, f := range current.SimpleReport.Findings {
			currentFindings[findingKey(f)] = f
		}
	}

	// Find new findings (in current but not in previous)
	for key, finding := range currentFindings {
		if _, exists := previousFindings[key]; !exists {
			result.NewFindings = append(result.NewFindings, finding)
		}
	}

	// Find resolved findings (in previous but not in current)
	for key, finding := range previousFindings {
		if _, exists := currentFindings[key]; !exists {
			result.ResolvedFindings = append(result.ResolvedFindings, finding)
		} else {
			result.UnchangedCount++
		}
	}

	result.RiskChange = calculateRiskChange(result.PreviousScan, result.CurrentScan)

	return result
}

// scanMetadataFor extracts comparison metadata from a scan report.
// Version fields live on the report itself; finding counts come from
// the summary when one was generated.
func scanMetadataFor(report *model.ScanReport) ScanMetadata {
	meta := ScanMetadata{
		DateScanned:       report.DateScanned,
		IdentifiedVersion: report.IdentifiedVersion,
		LatestVersion:     report.LatestVersion,
	}
	if report.SimpleReport != nil {
		meta.TotalFindings = len(report.SimpleReport.Findings)
		meta.CriticalCount = report.SimpleReport.CriticalCount
		meta.HighCount = report.SimpleReport.HighCount
		meta.MediumCount = report.SimpleReport.MediumCount
		meta.LowCount = report.SimpleReport.LowCount
		meta.InfoCount = report.SimpleReport.InfoCount
	}
	return meta
}

// versionChange builds the version movement between two scan reports.
func versionChange(previous, current *model.ScanReport) VersionChange {
	return VersionChange{
		Previous: previous.IdentifiedVersion,
		Current:  current.IdentifiedVersion,
		Changed:  previous.IdentifiedVersion != current.IdentifiedVersion,
	}
}

// findingKey generates a unique key for a finding for comparison purposes.
func findingKey(f model.Finding) string {
	return f.Type + "|" + f.Value + "|" + f.Location
}

// calculateRiskChange calculates the change in risk between two scans.
func calculateRiskChange(previous, current ScanMetadata) RiskChange {
	change := RiskChange{
		CriticalDelta: current.CriticalCount - previous.CriticalCount,
		HighDelta:     current.HighCount - previous.HighCount,
		MediumDelta:   current.MediumCount - previous.MediumCount,
		LowDelta:      current.LowCount - previous.LowCount,
		InfoDelta:     current.InfoCount - previous.InfoCount,
	}

	// Determine overall direction based on weighted score
	// Critical and High severity changes have more weight
	previousScore := previous.CriticalCount*100 + previous.HighCount*50 + previous.MediumCount*10 + previous.LowCount*5 + previous.InfoCount
	currentScore := current.CriticalCount*100 + current.HighCount*50 + current.MediumCount*10 + current.LowCount*5 + current.InfoCount

	if currentScore < previousScore {
		change.Direction = riskDirectionImproved
	} else if currentScore > previousScore {
		change.Direction = riskDirectionWorsened
	} else {
		change.Direction = riskDirectionUnchanged
	}

	return change
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *ComparisonResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonMarkdown outputs the comparison result in Markdown format.
func outputComparisonMarkdown(result *ComparisonResult) error {
	fmt.Printf("# Scan Comparison: %s\n\n", result.Target)

	// Risk change summary
	fmt.Println("## Summary")
	fmt.Printf("\n**Risk Status:** %s\n", formatRiskDirection(result.RiskChange.Direction))
	fmt.Printf("\n**Identified Version:** %s\n\n", formatVersionChange(result.VersionChange))

	// Scan metadata table
	fmt.Println("| Metric | Previous | Current | Change |")
	fmt.Println("|--------|----------|---------|--------|")
	fmt.Printf("| Date | %s | %s | - |\n",
		result.PreviousScan.DateScanned.Format("2006-01-02 15:04"),
		result.CurrentScan.DateScanned.Format("2006-01-02 15:04"))
	fmt.Printf("| Version | %s | %s | %s |\n",
		valueOrDash(result.PreviousScan.IdentifiedVersion),
		valueOrDash(result.CurrentScan.IdentifiedVersion),
		versionDelta(result.VersionChange))
	fmt.Printf("| Critical | %d | %d | %s |\n",
		result.PreviousScan.CriticalCount,
		result.CurrentScan.CriticalCount,
		formatDelta(result.RiskChange.CriticalDelta))
	fmt.Printf("| High | %d | %d | %s |\n",
		result.PreviousScan.HighCount,
		result.CurrentScan.HighCount,
		formatDelta(result.RiskChange.HighDelta))
	fmt.Printf("| Medium | %d | %d | %s |\n",
		result.PreviousScan.MediumCount,
		result.CurrentScan.MediumCount,
		formatDelta(result.RiskChange.MediumDelta))
	fmt.Printf("| Low | %d | %d | %s |\n",
		result.PreviousScan.LowCount,
		result.CurrentScan.LowCount,
		formatDelta(result.RiskChange.LowDelta))
	fmt.Printf("| Info | %d | %d | %s |\n",
		result.PreviousScan.InfoCount,
		result.CurrentScan.InfoCount,
		formatDelta(result.RiskChange.InfoDelta))
	fmt.Printf("| **Total** | **%d** | **%d** | **%s** |\n",
		result.PreviousScan.TotalFindings,
		result.CurrentScan.TotalFindings,
		formatDelta(result.CurrentScan.TotalFindings-result.PreviousScan.TotalFindings))

	// New findings
	if len(result.NewFindings) > 0 {
		fmt.Printf("\n## New Findings (%d)\n\n", len(result.NewFindings))
		for _, f := range result.NewFindings {
			fmt.Printf("- **[%s]** %s: %s\n", f.SeverityText, f.Title, f.Value)
			if f.Location != "" {
				fmt.Printf("  - Location: `%s`\n", f.Location)
			}
		}
	}

	// Resolved findings
	if len(result.ResolvedFindings) > 0 {
		fmt.Printf("\n## Resolved Findings (%d)\n\n", len(result.ResolvedFindings))
		for _, f := range result.ResolvedFindings {
			fmt.Printf("- ~~**[%s]** %s: %s~~\n", f.SeverityText, f.Title, f.Value)
		}
	}

	// Unchanged count
	if result.UnchangedCount > 0 {
		fmt.Printf("\n---\n\n*%d findings unchanged*\n", result.UnchangedCount)
	}

	return nil
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(result *ComparisonResult) error {
	fmt.Printf("Scan Comparison: %s\n", result.Target)
	fmt.Println(strings.Repeat("=", 60))

	// Risk change summary
	fmt.Printf("\nRisk Status: %s\n", formatRiskDirection(result.RiskChange.Direction))
	fmt.Printf("\nIdentified Version: %s\n", formatVersionChange(result.VersionChange))

	// Scan dates
	fmt.Printf("\nPrevious scan: %s\n", result.PreviousScan.DateScanned.Format("2006-01-02 15:04:05"))
	fmt.Printf("Current scan:  %s\n", result.CurrentScan.DateScanned.Format("2006-01-02 15:04:05"))

	// Summary table
	fmt.Println("\nFindings Summary:")
	fmt.Printf("  %-10s  %-10s  %-10s  %-10s\n", "Severity", "Previous", "Current", "Change")
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Critical",
		result.PreviousScan.CriticalCount, result.CurrentScan.CriticalCount,
		formatDelta(result.RiskChange.CriticalDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "High",
		result.PreviousScan.HighCount, result.CurrentScan.HighCount,
		formatDelta(result.RiskChange.HighDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Medium",
		result.PreviousScan.MediumCount, result.CurrentScan.MediumCount,
		formatDelta(result.RiskChange.MediumDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Low",
		result.PreviousScan.LowCount, result.CurrentScan.LowCount,
		formatDelta(result.RiskChange.LowDelta))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Info",
		result.PreviousScan.InfoCount, result.CurrentScan.InfoCount,
		formatDelta(result.RiskChange.InfoDelta))
	fmt.Println("  " + strings.Repeat("-", 45))
	fmt.Printf("  %-10s  %-10d  %-10d  %-10s\n", "Total",
		result.PreviousScan.TotalFindings, result.CurrentScan.TotalFindings,
		formatDelta(result.CurrentScan.TotalFindings-result.PreviousScan.TotalFindings))

	// New findings
	if len(result.NewFindings) > 0 {
		fmt.Printf("\nNew Findings (%d):\n", len(result.NewFindings))
		for _, f := range result.NewFindings {
			fmt.Printf("  [+] [%s] %s: %s\n", f.SeverityText, f.Title, f.Value)
			if f.Location != "" {
				fmt.Printf("      Location: %s\n", f.Location)
			}
		}
	}

	// Resolved findings
	if len(result.ResolvedFindings) > 0 {
		fmt.Printf("\nResolved Findings (%d):\n", len(result.ResolvedFindings))
		for _, f := range result.ResolvedFindings {
			fmt.Printf("  [-] [%s] %s: %s\n", f.SeverityText, f.Title, f.Value)
		}
	}

	// Unchanged count
	if result.UnchangedCount > 0 {
		fmt.Printf("\nUnchanged: %d findings\n", result.UnchangedCount)
	}

	return nil
}

// formatRiskDirection formats the risk change direction for display.
func formatRiskDirection(direction string) string {
	switch direction {
	case riskDirectionImproved:
		return "IMPROVED (risk decreased)"
	case riskDirectionWorsened:
		return "WORSENED (risk increased)"
	default:
		return "UNCHANGED"
	}
}

// formatVersionChange formats the version movement for display.
func formatVersionChange(change VersionChange) string {
	previous := change.Previous
	if previous == "" {
		previous = "unidentified"
	}
	current := change.Current
	if current == "" {
		current = "unidentified"
	}
	if !change.Changed {
		return fmt.Sprintf("%s (unchanged)", current)
	}
	return fmt.Sprintf("%s -> %s", previous, current)
}

// versionDelta marks a version table cell as moved or steady.
func versionDelta(change VersionChange) string {
	if change.Changed {
		return "changed"
	}
	return "-"
}

// formatDelta formats a numeric delta with sign for display.
func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	} else if delta < 0 {
		return strconv.Itoa(delta)
	}
	return "0"
}
