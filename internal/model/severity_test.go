package model

import "testing"

// TestSeverityString tests the String method of Severity.
func TestSeverityString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		severity Severity
		expected string
	}{
		{SeverityInfo, "INFO"},
		{SeverityLow, "LOW"},
		{SeverityMedium, "MEDIUM"},
		{SeverityHigh, "HIGH"},
		{SeverityCritical, "CRITICAL"},
		{Severity(999), "UNKNOWN"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			t.Parallel()
			if tc.severity.String() != tc.expected {
				t.Errorf("got %q, expected %q", tc.severity.String(), tc.expected)
			}
		})
	}
}

// TestGetSeverity tests the GetSeverity function.
func TestGetSeverity(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		findingType string
		expected    Severity
	}{
		// High findings
		{"version_identified", SeverityHigh},
		{"outdated_release", SeverityHigh},

		// Medium findings
		{"asset_reference", SeverityMedium},
		{"server_version", SeverityMedium},
		{"x_powered_by", SeverityMedium},

		// Low findings
		{"probe_redirected", SeverityLow},

		// Info findings
		{"multiple_versions_matched", SeverityInfo},
		{"unexpected_status", SeverityInfo},

		// Unknown finding type defaults to Info
		{"unknown_type", SeverityInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.findingType, func(t *testing.T) {
			t.Parallel()
			result := GetSeverity(tc.findingType)
			if result != tc.expected {
				t.Errorf("GetSeverity(%q) = %v, expected %v", tc.findingType, result, tc.expected)
			}
		})
	}
}

// TestSeverityOrdering tests that severity levels are ordered correctly.
// Info < Low < Medium < High < Critical
func TestSeverityOrdering(t *testing.T) {
	t.Parallel()

	if SeverityInfo >= SeverityLow {
		t.Error("expected SeverityInfo < SeverityLow")
	}
	if SeverityLow >= SeverityMedium {
		t.Error("expected SeverityLow < SeverityMedium")
	}
	if SeverityMedium >= SeverityHigh {
		t.Error("expected SeverityMedium < SeverityHigh")
	}
	if SeverityHigh >= SeverityCritical {
		t.Error("expected SeverityHigh < SeverityCritical")
	}
}

// TestGetFindingInfo tests the GetFindingInfo function.
func TestGetFindingInfo(t *testing.T) {
	t.Parallel()

	t.Run("returns correct info for known finding type", func(t *testing.T) {
		t.Parallel()

		info := GetFindingInfo("version_identified")

		if info.Severity != SeverityHigh {
			t.Errorf("expected SeverityHigh, got %v", info.Severity)
		}
		if info.Impact == "" {
			t.Error("expected non-empty Impact")
		}
		if info.Recommendation == "" {
			t.Error("expected non-empty Recommendation")
		}
	})

	t.Run("returns default info for unknown finding type", func(t *testing.T) {
		t.Parallel()

		info := GetFindingInfo("completely_unknown_type")

		if info.Severity != SeverityInfo {
			t.Errorf("expected SeverityInfo for unknown type, got %v", info.Severity)
		}
		if info.Impact == "" {
			t.Error("expected non-empty default Impact")
		}
		if info.Recommendation == "" {
			t.Error("expected non-empty default Recommendation")
		}
	})
}

// TestFindingInfoMappingCompleteness tests that all finding types have proper info.
func TestFindingInfoMappingCompleteness(t *testing.T) {
	t.Parallel()

	findingTypes := []string{
		"version_identified",
		"outdated_release",
		"asset_reference",
		"server_version",
		"x_powered_by",
		"probe_redirected",
		"multiple_versions_matched",
		"unexpected_status",
	}

	for _, findingType := range findingTypes {
		t.Run(findingType, func(t *testing.T) {
			t.Parallel()

			info := GetFindingInfo(findingType)

			if info.Impact == "" {
				t.Errorf("finding type %q has empty Impact", findingType)
			}
			if info.Recommendation == "" {
				t.Errorf("finding type %q has empty Recommendation", findingType)
			}
			if info.Impact == "Unknown finding type. Review manually." {
				t.Errorf("finding type %q returned default Impact", findingType)
			}
		})
	}
}
