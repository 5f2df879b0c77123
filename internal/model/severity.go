package model

// Severity represents the risk level of a reconnaissance finding.
// This allows categorizing findings by how much they reveal about the
// target deployment.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Severity int

const (
	// SeverityInfo indicates informational findings with no direct exposure.
	// Examples: unexpected status codes, multiple matching versions.
	// These are useful context but do not pin down the deployment on their own.
	SeverityInfo Severity = iota

	// SeverityLow indicates minor issues with limited impact.
	// Examples: redirects on probe paths hinting at a front-end proxy.
	// These narrow down the infrastructure but not the software version.
	SeverityLow

	// SeverityMedium indicates moderate issues that warrant attention.
	// Examples: versioned asset references in page HTML, version-bearing headers.
	// These leak version clues without a single confirmed match.
	SeverityMedium

	// SeverityHigh indicates serious issues that materially aid an attacker.
	// Example: the exact deployed version confirmed through asset probing.
	// Knowing the precise version lets an attacker select working exploits.
	SeverityHigh

	// SeverityCritical indicates severe issues requiring immediate action.
	// Reserved for future checks; asset probing alone does not reach it.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// FindingInfo contains metadata about a finding type including severity,
// impact description, and remediation recommendation.
type FindingInfo struct {
	Severity       Severity
	Impact         string
	Recommendation string
}

// findingInfoMapping maps finding types to their metadata.
// This centralized mapping ensures consistent risk assessment across the application.
//
// Design decision: We use a map rather than embedding severity in each finding type
// because:
// 1. It allows updating risk assessments without modifying type definitions
// 2. It provides a single source of truth for risk levels
// 3. It makes it easy to generate severity documentation
var findingInfoMapping = map[string]FindingInfo{
	// HIGH - Exact version knowledge materially aids attackers
	"version_identified": {
		Severity:       SeverityHigh,
		Impact:         "The exact deployed version was confirmed by probing a versioned static asset, allowing attackers to select version-specific exploits.",
		Recommendation: "Serve static assets without version identifiers in the path, or restrict access to admin interface bundles.",
	},
	"outdated_release": {
		Severity:       SeverityHigh,
		Impact:         "The deployment runs a release older than the newest published version and likely misses security fixes.",
		Recommendation: "Upgrade to the latest release and subscribe to security advisories for the project.",
	},

	// MEDIUM - Version clues without a confirmed match
	"asset_reference": {
		Severity:       SeverityMedium,
		Impact:         "Page HTML references a versioned admin asset, leaking the deployed version without any probing.",
		Recommendation: "Strip version identifiers from asset URLs rendered into public pages.",
	},
	"server_version": {
		Severity:       SeverityMedium,
		Impact:         "Server version disclosure helps attackers identify vulnerable software.",
		Recommendation: "Configure server to hide version information in headers.",
	},
	"x_powered_by": {
		Severity:       SeverityMedium,
		Impact:         "X-Powered-By header reveals technology stack for targeted attacks.",
		Recommendation: "Remove or suppress the X-Powered-By header.",
	},

	// LOW - Infrastructure hints
	"probe_redirected": {
		Severity:       SeverityLow,
		Impact:         "Probe paths redirect, indicating a front-end proxy, CDN, or login wall that shapes what the origin exposes.",
		Recommendation: "Verify the front-end does not forward asset requests for unauthenticated visitors.",
	},

	// INFO - Context without direct exposure
	"multiple_versions_matched": {
		Severity:       SeverityInfo,
		Impact:         "More than one version candidate answered, which usually means a mirror or catch-all serves every asset path.",
		Recommendation: "Treat individual matches as unreliable and confirm the version through a second signal.",
	},
	"unexpected_status": {
		Severity:       SeverityInfo,
		Impact:         "A probe returned a status outside the expected set. Repeated occurrences often indicate WAF filtering.",
		Recommendation: "Review the status codes and adjust probe pacing if a WAF is rate-limiting requests.",
	},
}

// GetSeverity returns the severity level for a finding type.
// Returns SeverityInfo if the finding type is not in the mapping.
func GetSeverity(findingType string) Severity {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info.Severity
	}
	return SeverityInfo
}

// GetFindingInfo returns the full finding information for a finding type.
// Returns a default FindingInfo with SeverityInfo if the type is not in the mapping.
func GetFindingInfo(findingType string) FindingInfo {
	if info, ok := findingInfoMapping[findingType]; ok {
		return info
	}
	return FindingInfo{
		Severity:       SeverityInfo,
		Impact:         "Unknown finding type. Review manually.",
		Recommendation: "Investigate the finding and assess risk.",
	}
}
