package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen for polite reconnaissance against production
// servers and match the GitHub releases API limits where applicable.
const (
	// DefaultIndexBase is the base URL of the release index API.
	// The GitHub REST API hosts the releases listing for the default
	// repository; a different forge can be configured per profile.
	DefaultIndexBase = "https://api.github.com"

	// DefaultRepository is the release index repository in "owner/name"
	// form. authentik is the default quarry because its admin interface
	// ships a version-stamped JavaScript bundle at a stable path.
	DefaultRepository = "goauthentik/authentik"

	// DefaultAPIVersion is the GitHub REST API version header value.
	// Pinning the version keeps response shapes stable across API changes.
	DefaultAPIVersion = "2022-11-28"

	// DefaultTimeout is set to 20 seconds per request. Targets are
	// ordinary web servers, so a generous-but-bounded timeout catches
	// slow middleboxes without stalling a sweep for minutes.
	DefaultTimeout = 20 * time.Second

	// DefaultPerPage is the page size for release enumeration.
	// 100 is the maximum the GitHub API allows and minimizes round trips.
	DefaultPerPage = 100

	// DefaultPageDelay is the fixed pause between successive index page
	// fetches. A small delay avoids bursting the upstream API while
	// adding at most a few hundred milliseconds to enumeration.
	DefaultPageDelay = 50 * time.Millisecond

	// DefaultProbeDelay is the pause after each asset probe.
	// Zero by default: probes transfer a single byte and run strictly
	// sequentially, which is already gentle. Operators probing shared
	// infrastructure can opt into a delay via --delay.
	DefaultProbeDelay = 0 * time.Millisecond

	// DefaultBatchSize of 5 concurrent targets balances throughput with
	// resource usage when scanning multiple base URLs. Probing within
	// each target always stays sequential regardless of this value.
	DefaultBatchSize = 5

	// AppName is the application name used for XDG directory paths.
	AppName = "verscan"

	// DefaultUserAgent identifies verscan in HTTP requests.
	// Using a descriptive User-Agent is good practice and allows operators
	// to identify scanner traffic in their logs.
	DefaultUserAgent = "verscan/1.0 (+https://github.com/nao1215/verscan)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB comfortably fits a full release page of JSON while preventing
	// memory exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultAssetPathTemplate is the probe path with a %s placeholder
	// for the version candidate. The authentik admin bundle lives at
	// this path for every release since the 2021 rename.
	DefaultAssetPathTemplate = "/static/dist/admin/AdminInterface-%s.js"

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded
	// Tor daemon to bootstrap. 3 minutes is typically sufficient for most
	// network conditions, but may need to be increased for slow connections.
	DefaultTorStartupTimeout = 3 * time.Minute

	// TokenEnv is the environment variable read for the index API
	// credential. Unauthenticated requests face a 60/hour rate limit;
	// a token raises it to 5000/hour.
	TokenEnv = "GITHUB_TOKEN" //nolint:gosec // Env var name, not a credential
)

// Config holds all configuration options for verscan.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., EnumerationConfig, ProbeConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// IndexBase is the base URL of the release index API.
	IndexBase string

	// Repository is the release index repository in "owner/name" form.
	// Its published release tags become the version candidates.
	Repository string

	// Token is the optional index API credential, sent as a bearer token.
	// Populated from the GITHUB_TOKEN environment variable by NewConfig;
	// never logged.
	Token string

	// Timeout is the request timeout for each HTTP request.
	// This applies to individual requests, not the overall scan duration.
	Timeout time.Duration

	// PerPage is the page size for release enumeration (1-100).
	PerPage int

	// PathTemplate is the probe path template with a %s placeholder for
	// the version candidate. Overridable per target via profiles.
	PathTemplate string

	// Exhaustive disables the early exit so every candidate is probed
	// even after the first hit. Useful against mirrors that answer
	// multiple versions.
	Exhaustive bool

	// IncludeNotFound surfaces 404 outcomes in live output.
	// By default only non-absent outcomes are shown to keep the output
	// readable across hundreds of candidates.
	IncludeNotFound bool

	// NoUI suppresses the interactive progress line.
	// Useful for CI logs and when piping output.
	NoUI bool

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// BatchSize is the number of concurrent targets when scanning multiple
	// base URLs. Within each target, probing remains strictly sequential.
	BatchSize int

	// ProbeDelay is the pause after each asset probe.
	// This is a politeness setting against the target server, independent
	// of the per-request timeout.
	ProbeDelay time.Duration

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .verscan in the current directory
	// and then verscan.yaml in the XDG config directory.
	ConfigFilePath string

	// TargetProfiles holds per-target configurations loaded from the
	// config file. This is populated by LoadConfigFile and consulted by
	// hostname during scanning.
	TargetProfiles *File

	// JSONReport enables JSON report output instead of human-readable format.
	// When true, outputs detailed JSON with all collected data.
	// When false, outputs human-readable simple report (default).
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of human-readable format.
	// When true, outputs GitHub Flavored Markdown with tables and alerts.
	// When false, outputs human-readable simple report (default).
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// Targets is the list of base URLs to fingerprint.
	Targets []string

	// UseTor routes all probe traffic through Tor.
	// An embedded Tor daemon is started unless TorProxyAddress points at
	// an already-running SOCKS proxy.
	//
	// Note: The embedded Tor daemon takes 1-3 minutes to bootstrap and
	// connect to the Tor network on first start.
	UseTor bool

	// TorProxyAddress is an external Tor SOCKS5 proxy in "host:port" form.
	// Only consulted when UseTor is true; empty means embedded daemon.
	TorProxyAddress string

	// TorStartupTimeout is the maximum time to wait for the embedded Tor
	// daemon to start and bootstrap. Only used when UseTor is true.
	TorStartupTimeout time.Duration

	// DBDir is the directory path for storing the SQLite database.
	// When set, scan results are saved to the database for historical comparison.
	// When empty, scan results are not persisted.
	// Defaults to XDG data directory (~/.local/share/verscan on Linux).
	DBDir string

	// SaveToDB indicates whether to save scan results to the database.
	// This is automatically set to true when DBDir is configured.
	SaveToDB bool

	// NoInspect disables the passive page inspection that fetches the
	// target's base page for version hints before probing.
	NoInspect bool

	// UserAgent is the User-Agent header sent with HTTP requests.
	// A descriptive User-Agent helps service operators identify scanner traffic.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated to prevent memory exhaustion.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// The index credential is read from the GITHUB_TOKEN environment variable
// here so the rest of the application never touches the environment.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, page size).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		IndexBase:         DefaultIndexBase,
		Repository:        DefaultRepository,
		Token:             os.Getenv(TokenEnv),
		Timeout:           DefaultTimeout,
		PerPage:           DefaultPerPage,
		PathTemplate:      DefaultAssetPathTemplate,
		BatchSize:         DefaultBatchSize,
		ProbeDelay:        DefaultProbeDelay,
		TorStartupTimeout: DefaultTorStartupTimeout,
		UserAgent:         DefaultUserAgent,
		MaxBodySize:       DefaultMaxBodySize,
	}
}

// XDGDataDir returns the XDG data directory for verscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/verscan
// On macOS: ~/Library/Application Support/verscan
// On Windows: %LOCALAPPDATA%\verscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for verscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/verscan
// On macOS: ~/Library/Application Support/verscan
// On Windows: %APPDATA%\verscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any scanning begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one target to probe
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	// Repository must be "owner/name"; anything else produces a broken
	// index URL that the API answers with 404
	if !validRepository(c.Repository) {
		return ErrInvalidRepository
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// PerPage must stay within the API's accepted range
	if c.PerPage < 1 || c.PerPage > 100 {
		return ErrInvalidPerPage
	}

	// BatchSize must be positive; zero would mean no scanning
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// ProbeDelay must be non-negative
	if c.ProbeDelay < 0 {
		return ErrInvalidProbeDelay
	}

	// MaxBodySize must be positive if set
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	return nil
}

// validRepository reports whether repo has the "owner/name" form.
func validRepository(repo string) bool {
	owner, name, ok := strings.Cut(repo, "/")
	return ok && owner != "" && name != "" && !strings.Contains(name, "/")
}
