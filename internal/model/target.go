package model

import (
	"errors"
	"net/url"
	"strings"
)

// Target errors.
var (
	// ErrInvalidTarget is returned when the base URL cannot be parsed
	// or uses an unsupported scheme.
	ErrInvalidTarget = errors.New("invalid target base URL")
	// ErrEmptyTarget is returned when the base URL is empty.
	ErrEmptyTarget = errors.New("target base URL cannot be empty")
)

const (
	// defaultScheme is assumed when the base URL carries no scheme.
	defaultScheme = "https"
)

// Target is an immutable value object representing the base URL of a
// deployment under test. It validates the URL and normalizes it so that
// joining asset paths always produces exactly one slash at the seam.
type Target struct {
	baseURL string // Normalized base URL without trailing slash
	host    string // Hostname (without port)
	scheme  string // http or https
}

// NewTarget creates a new Target from a raw base URL string.
// It validates the URL and normalizes it:
//   - surrounding whitespace is trimmed
//   - a missing scheme defaults to https
//   - scheme and host are lowercased
//   - trailing slashes are stripped
//   - query string and fragment are discarded
//
// Returns an error if the URL is empty, unparseable, has no host, or
// uses a scheme other than http or https.
func NewTarget(rawURL string) (Target, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return Target{}, ErrEmptyTarget
	}

	if !strings.Contains(trimmed, "://") {
		trimmed = defaultScheme + "://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return Target{}, ErrInvalidTarget
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return Target{}, ErrInvalidTarget
	}
	if u.Host == "" {
		return Target{}, ErrInvalidTarget
	}

	u.Scheme = scheme
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawQuery = ""
	u.Fragment = ""

	return Target{
		baseURL: u.String(),
		host:    u.Hostname(),
		scheme:  scheme,
	}, nil
}

// MustNewTarget creates a new Target or panics if invalid.
// Use only for known-valid URLs in tests or initialization.
func MustNewTarget(rawURL string) Target {
	t, err := NewTarget(rawURL)
	if err != nil {
		panic(err)
	}
	return t
}

// String returns the normalized base URL without a trailing slash.
func (t Target) String() string {
	return t.baseURL
}

// Host returns the hostname without port.
func (t Target) Host() string {
	return t.host
}

// Scheme returns the URL scheme (http or https).
func (t Target) Scheme() string {
	return t.scheme
}

// JoinPath appends an absolute path to the base URL.
// The result always contains exactly one slash between base and path.
func (t Target) JoinPath(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return t.baseURL + path
}

// IsZero returns true if this is a zero value (empty) Target.
func (t Target) IsZero() bool {
	return t.baseURL == ""
}

// Equals returns true if two Target values are equal.
func (t Target) Equals(other Target) bool {
	return t.baseURL == other.baseURL
}
