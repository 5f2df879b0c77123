package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/verscan/internal/model"
)

// createTestReport creates a report with sample data for testing.
func createTestReport() *model.ScanReport {
	report := model.NewScanReport("https://sso.example.com")
	report.Repository = "goauthentik/authentik"
	report.Candidates = []string{"2024.8.3", "2024.8.2", "2024.8.1"}
	report.LatestVersion = "2024.8.3"
	report.ServerHeader = "nginx/1.24.0"
	report.AssetHints = []model.AssetHint{
		{Version: "2024.8.2", URL: "/static/dist/admin/AdminInterface-2024.8.2.js"},
	}

	report.AddProbe(model.ProbeResult{
		Version:    "2024.8.3",
		URL:        "https://sso.example.com/static/dist/admin/AdminInterface-2024.8.3.js",
		Status:     model.StatusAbsent,
		StatusText: model.StatusAbsent.String(),
		StatusCode: 404,
	})
	report.AddProbe(model.ProbeResult{
		Version:    "2024.8.2",
		URL:        "https://sso.example.com/static/dist/admin/AdminInterface-2024.8.2.js",
		Status:     model.StatusFound,
		StatusText: model.StatusFound.String(),
		StatusCode: 206,
	})

	// Generate simple report
	report.SimpleReport = model.NewSimpleReport(report)

	return report
}

// TestSimpleWriter tests the human-readable report writer.
func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "VERSCAN REPORT") {
			t.Error("expected output to contain header")
		}
		if !strings.Contains(output, "https://sso.example.com") {
			t.Error("expected output to contain target")
		}
		if !strings.Contains(output, "2 of 3 candidates") {
			t.Error("expected output to contain probe progress")
		}
	})

	t.Run("writes version assessment", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "VERSION ASSESSMENT") {
			t.Error("expected output to contain assessment section")
		}
		if !strings.Contains(output, "Identified Version: 2024.8.2") {
			t.Error("expected output to contain identified version")
		}
		if !strings.Contains(output, "Latest Release:     2024.8.3") {
			t.Error("expected output to contain latest release")
		}
		if !strings.Contains(output, "OUTDATED") {
			t.Error("expected outdated verdict")
		}
	})

	t.Run("writes probe outcomes", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Probe Outcomes:") {
			t.Error("expected output to contain probe outcomes")
		}
		if !strings.Contains(output, "Found:") {
			t.Error("expected output to contain found tally")
		}
		if !strings.Contains(output, "Absent:") {
			t.Error("expected output to contain absent tally")
		}
	})

	t.Run("prettifies status class labels", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := model.NewScanReport("https://flaky.example.com")
		report.Candidates = []string{"1.0.0"}
		report.AddProbe(model.ProbeResult{
			Version: "1.0.0",
			Status:  model.StatusNetworkFailed,
			Error:   "dial tcp: connection refused",
		})
		report.SimpleReport = model.NewSimpleReport(report)

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Network Failed:") {
			t.Error("expected prettified network_failed label")
		}
	})

	t.Run("writes severity summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "SEVERITY SUMMARY") {
			t.Error("expected output to contain severity summary")
		}
		if !strings.Contains(output, "HIGH:") {
			t.Error("expected output to contain HIGH count")
		}
	})

	t.Run("writes findings", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Version Identified") {
			t.Error("expected output to contain version finding")
		}
		if !strings.Contains(output, "nginx/1.24.0") {
			t.Error("expected output to contain server header value")
		}
	})

	t.Run("verbose mode includes descriptions", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithVerbose(true))
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Description:") {
			t.Error("expected verbose output to contain descriptions")
		}
	})

	t.Run("handles timed out report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := createTestReport()
		report.TimedOut = true
		report.SimpleReport = model.NewSimpleReport(report)

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "TIMED OUT") {
			t.Error("expected output to indicate timeout")
		}
	})
}

// TestSimpleWriterAssessmentStates tests the assessment section edge cases.
func TestSimpleWriterAssessmentStates(t *testing.T) {
	t.Parallel()

	t.Run("no probes were sent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := model.NewScanReport("https://idle.example.com")
		report.SimpleReport = model.NewSimpleReport(report)

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "No probes were sent.") {
			t.Error("expected no-probes message")
		}
	})

	t.Run("no candidate matched", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := model.NewScanReport("https://unknown.example.com")
		report.Candidates = []string{"2024.8.3", "2024.8.2"}
		report.LatestVersion = "2024.8.3"
		for _, v := range report.Candidates {
			report.AddProbe(model.ProbeResult{
				Version:    v,
				Status:     model.StatusAbsent,
				StatusText: model.StatusAbsent.String(),
				StatusCode: 404,
			})
		}
		report.SimpleReport = model.NewSimpleReport(report)

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "No candidate version matched.") {
			t.Error("expected no-match message")
		}
		if !strings.Contains(output, "Latest Release:     2024.8.3") {
			t.Error("expected latest release even without a match")
		}
	})

	t.Run("current deployment is up to date", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := model.NewScanReport("https://current.example.com")
		report.Candidates = []string{"2024.8.3"}
		report.LatestVersion = "2024.8.3"
		report.AddProbe(model.ProbeResult{
			Version:    "2024.8.3",
			Status:     model.StatusFound,
			StatusText: model.StatusFound.String(),
			StatusCode: 200,
		})
		report.SimpleReport = model.NewSimpleReport(report)

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !strings.Contains(buf.String(), "Up to date") {
			t.Error("expected up-to-date verdict")
		}
	})
}

// TestJSONWriter tests the JSON report writer.
func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("outputs valid JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Verify it's valid JSON
		var parsed model.ScanReport
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}

		if parsed.Target != "https://sso.example.com" {
			t.Errorf("expected target %q, got %q",
				"https://sso.example.com", parsed.Target)
		}
		if parsed.IdentifiedVersion != "2024.8.2" {
			t.Errorf("expected identified version %q, got %q",
				"2024.8.2", parsed.IdentifiedVersion)
		}
	})

	t.Run("compact output by default", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		// Compact JSON should be on fewer lines
		lines := strings.Split(strings.TrimSpace(output), "\n")
		if len(lines) > 1 {
			t.Errorf("expected compact output (1 line), got %d lines", len(lines))
		}
	})

	t.Run("pretty print with indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithPrettyPrint())
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		// Pretty printed JSON should have multiple lines
		lines := strings.Split(strings.TrimSpace(output), "\n")
		if len(lines) < 5 {
			t.Errorf("expected multi-line output, got %d lines", len(lines))
		}
	})

	t.Run("WriteSimple outputs simple report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf)
		simple := &model.SimpleReport{
			Target:        "https://sso.example.com",
			DateScanned:   time.Now(),
			CriticalCount: 1,
		}

		_, err := w.WriteSimple(simple)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var parsed model.SimpleReport
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}

		if parsed.CriticalCount != 1 {
			t.Errorf("expected critical count 1, got %d", parsed.CriticalCount)
		}
	})
}

// TestFullJSONWriter tests the full JSON writer with metadata.
func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("includes version in output", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewFullJSONWriter(&buf, "1.0.0", WithPrettyPrint())
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var parsed JSONReport
		if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}

		if parsed.Version != "1.0.0" {
			t.Errorf("expected version %q, got %q", "1.0.0", parsed.Version)
		}
		if parsed.Report == nil || parsed.Report.Target != "https://sso.example.com" {
			t.Error("expected wrapped report with target")
		}
		if parsed.Summary == nil {
			t.Error("expected wrapped summary")
		}
	})
}

// TestMultiWriter tests writing to multiple outputs.
func TestMultiWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes to all writers", func(t *testing.T) {
		t.Parallel()

		var buf1, buf2 bytes.Buffer
		w1 := NewSimpleWriter(&buf1)
		w2 := NewJSONWriter(&buf2)

		multi := NewMultiWriter(w1, w2)
		report := createTestReport()

		_, err := multi.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Check both buffers have content
		if buf1.Len() == 0 {
			t.Error("expected buf1 to have content")
		}
		if buf2.Len() == 0 {
			t.Error("expected buf2 to have content")
		}

		// Verify formats are different
		if strings.Contains(buf1.String(), "{") {
			t.Error("expected buf1 (simple) to not be JSON")
		}
		if !strings.Contains(buf2.String(), "{") {
			t.Error("expected buf2 (JSON) to contain JSON")
		}
	})
}

// TestSimpleWriterSeverityIndicators tests severity indicators for all levels.
func TestSimpleWriterSeverityIndicators(t *testing.T) {
	t.Parallel()

	t.Run("shows all severity levels", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithShowEmpty(true))
		report := model.NewScanReport("https://empty.example.com")
		report.SimpleReport = model.NewSimpleReport(report)

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		// With showEmpty, all severity levels should be shown
		if !strings.Contains(output, "[!!!]") {
			t.Error("expected critical indicator [!!!]")
		}
		if !strings.Contains(output, "[!!]") {
			t.Error("expected high indicator [!!]")
		}
		if !strings.Contains(output, "[!]") {
			t.Error("expected medium indicator [!]")
		}
		if !strings.Contains(output, "[-]") {
			t.Error("expected low indicator [-]")
		}
		if !strings.Contains(output, "[i]") {
			t.Error("expected info indicator [i]")
		}
	})
}

// TestSimpleWriterWithError tests report with error status.
func TestSimpleWriterWithError(t *testing.T) {
	t.Parallel()

	t.Run("shows error in status", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := model.NewScanReport("https://error.example.com")
		report.SimpleReport = model.NewSimpleReport(report)
		report.SimpleReport.Error = "connection timeout"

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "ERROR") {
			t.Error("expected ERROR in status")
		}
		if !strings.Contains(output, "connection timeout") {
			t.Error("expected error message in output")
		}
	})
}

// TestSimpleWriterWriteSimple tests WriteSimple method directly.
func TestSimpleWriterWriteSimple(t *testing.T) {
	t.Parallel()

	t.Run("writes simple report directly", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)

		simple := &model.SimpleReport{
			Target:        "https://direct.example.com",
			DateScanned:   time.Now(),
			CriticalCount: 2,
			HighCount:     3,
			MediumCount:   5,
			LowCount:      10,
			InfoCount:     15,
		}

		_, err := w.WriteSimple(simple)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "https://direct.example.com") {
			t.Error("expected target in output")
		}
		if !strings.Contains(output, "CRITICAL: 2") {
			t.Error("expected critical count in output")
		}
		// TotalFindings() counts actual findings in the slice, not the sum of counts
		if !strings.Contains(output, "TOTAL:") {
			t.Error("expected total count in output")
		}
	})
}

// TestWriteNilSimpleReport tests handling of nil SimpleReport.
func TestWriteNilSimpleReport(t *testing.T) {
	t.Parallel()

	t.Run("generates report when SimpleReport is nil", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf)
		report := model.NewScanReport("https://generate.example.com")
		// Intentionally leave SimpleReport as nil
		report.SimpleReport = nil

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "https://generate.example.com") {
			t.Error("expected target in output")
		}
	})
}

// TestWithIndent tests the WithIndent JSON option.
func TestWithIndent(t *testing.T) {
	t.Parallel()

	t.Run("uses custom prefix and indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithIndent(">>", "\t"))
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		// Should have multiple lines with custom formatting
		lines := strings.Split(strings.TrimSpace(output), "\n")
		if len(lines) < 5 {
			t.Errorf("expected multi-line output, got %d lines", len(lines))
		}
		// Check that prefix is used
		if !strings.Contains(output, ">>") {
			t.Error("expected custom prefix '>>' in output")
		}
		// Check that tab indent is used
		if !strings.Contains(output, "\t") {
			t.Error("expected tab indentation in output")
		}
	})

	t.Run("uses empty prefix with space indent", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewJSONWriter(&buf, WithIndent("", "    "))
		simple := &model.SimpleReport{
			Target:      "https://indent.example.com",
			DateScanned: time.Now(),
		}

		_, err := w.WriteSimple(simple)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		// Should have 4-space indentation
		if !strings.Contains(output, "    ") {
			t.Error("expected 4-space indentation in output")
		}
	})
}

// TestMultiWriterWriteSimple tests MultiWriter.WriteSimple method.
func TestMultiWriterWriteSimple(t *testing.T) {
	t.Parallel()

	t.Run("writes simple report to all writers", func(t *testing.T) {
		t.Parallel()

		var buf1, buf2 bytes.Buffer
		w1 := NewSimpleWriter(&buf1)
		w2 := NewJSONWriter(&buf2)

		multi := NewMultiWriter(w1, w2)
		simple := &model.SimpleReport{
			Target:        "https://multi.example.com",
			DateScanned:   time.Now(),
			CriticalCount: 3,
			HighCount:     2,
		}

		n, err := multi.WriteSimple(simple)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n == 0 {
			t.Error("expected non-zero bytes written")
		}

		// Check both buffers have content
		if buf1.Len() == 0 {
			t.Error("expected buf1 to have content")
		}
		if buf2.Len() == 0 {
			t.Error("expected buf2 to have content")
		}

		// Verify content
		if !strings.Contains(buf1.String(), "https://multi.example.com") {
			t.Error("expected target in simple output")
		}
		if !strings.Contains(buf2.String(), "https://multi.example.com") {
			t.Error("expected target in JSON output")
		}
	})

	t.Run("handles empty writers list", func(t *testing.T) {
		t.Parallel()

		multi := NewMultiWriter()
		simple := &model.SimpleReport{
			Target: "https://empty.example.com",
		}

		n, err := multi.WriteSimple(simple)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n != 0 {
			t.Errorf("expected 0 bytes written for empty writers, got %d", n)
		}
	})
}

// TestMarkdownWriter tests the Markdown report writer.
func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report header", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "# Verscan Report") {
			t.Error("expected output to contain H1 header")
		}
		if !strings.Contains(output, "https://sso.example.com") {
			t.Error("expected output to contain target")
		}
	})

	t.Run("writes severity summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## Severity Summary") {
			t.Error("expected output to contain severity summary header")
		}
		if !strings.Contains(output, "🔴 Critical") {
			t.Error("expected output to contain critical severity indicator")
		}
	})

	t.Run("writes version assessment", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## Version Assessment") {
			t.Error("expected output to contain assessment header")
		}
		if !strings.Contains(output, "`2024.8.2`") {
			t.Error("expected output to contain identified version")
		}
		if !strings.Contains(output, "**Outdated**") {
			t.Error("expected outdated verdict")
		}
		if !strings.Contains(output, "Found: 1") {
			t.Error("expected probe outcome tally")
		}
	})

	t.Run("writes findings table", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "## Findings") {
			t.Error("expected output to contain findings header")
		}
		if !strings.Contains(output, "Version Identified") {
			t.Error("expected output to contain version finding")
		}
	})

	t.Run("handles timed out report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := createTestReport()
		report.TimedOut = true
		report.SimpleReport = model.NewSimpleReport(report)

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Timed Out") {
			t.Error("expected output to indicate timeout")
		}
	})

	t.Run("includes GitHub alert for high findings", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "[!WARNING]") {
			t.Error("expected output to contain WARNING alert for high findings")
		}
	})

	t.Run("includes pie chart", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "pie") {
			t.Error("expected output to contain mermaid pie chart")
		}
	})

	t.Run("includes recommendations", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		// The table should have Recommendation column
		if !strings.Contains(output, "Recommendation") {
			t.Error("expected Recommendation column in output")
		}
	})

	t.Run("includes details", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		// Should include <details> tags
		if !strings.Contains(output, "<details>") {
			t.Error("expected output to contain details tags")
		}
	})

	t.Run("WriteSimple outputs simple report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		simple := &model.SimpleReport{
			Target:        "https://simple.example.com",
			DateScanned:   time.Now(),
			CriticalCount: 0,
			HighCount:     1,
		}

		_, err := w.WriteSimple(simple)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "https://simple.example.com") {
			t.Error("expected target in output")
		}
	})

	t.Run("handles report with no findings", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := model.NewScanReport("https://empty.example.com")
		report.SimpleReport = model.NewSimpleReport(report)

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "No findings detected") {
			t.Error("expected message about no findings")
		}
		if !strings.Contains(output, "[!TIP]") {
			t.Error("expected TIP alert for no findings")
		}
	})

	t.Run("writes footer with link", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := createTestReport()

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "https://github.com/nao1215/verscan") {
			t.Error("expected footer with repository link")
		}
	})
}

// TestMarkdownWriterWithError tests report with error status.
func TestMarkdownWriterWithError(t *testing.T) {
	t.Parallel()

	t.Run("shows error in status", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewMarkdownWriter(&buf)
		report := model.NewScanReport("https://error.example.com")
		report.SimpleReport = model.NewSimpleReport(report)
		report.SimpleReport.Error = "connection failed"

		_, err := w.Write(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "Error") {
			t.Error("expected Error in status")
		}
		if !strings.Contains(output, "connection failed") {
			t.Error("expected error message in output")
		}
	})
}

// TestTruncateString tests the string truncation helper.
func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is a longer string", 10, "this is..."},
		{"abc", 3, "abc"},
		{"abcd", 3, "abc"},
		{"ab", 5, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			result := truncateString(tt.input, tt.maxLen)
			if result != tt.expected {
				t.Errorf("truncateString(%q, %d) = %q, want %q",
					tt.input, tt.maxLen, result, tt.expected)
			}
		})
	}
}
