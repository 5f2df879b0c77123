package client

import (
	"crypto/tls"
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// maxRedirects limits redirect chains for clients that follow them.
// Ten is enough for any legitimate chain while preventing loops.
const maxRedirects = 10

// newTransport builds the shared transport configuration.
//
// Design decision: We use small connection pool values because verscan
// talks to exactly two hosts per scan (the release index and the
// target), and probes are strictly sequential, so a large idle pool
// would never be used.
func newTransport(timeout time.Duration, insecure bool) *http.Transport {
	return &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: timeout,
		}).DialContext,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: insecure, //nolint:gosec // recon targets often use self-signed certs
		},
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		// Compression is pure overhead for one-byte ranged responses
		// and small JSON pages.
		DisableCompression: true,
	}
}

// NewIndexClient creates the HTTP client used for release index requests.
// It verifies TLS certificates and follows up to maxRedirects redirects,
// which covers renamed repositories and API-level moves.
func NewIndexClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: newTransport(timeout, false),
		Timeout:   timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// NewPageClient creates the HTTP client used to fetch a target's base
// page during passive inspection. TLS verification is skipped because
// recon targets frequently present self-signed certificates, and a
// cookie jar is attached so login redirects that set session cookies
// still land on the final page.
func NewPageClient(timeout time.Duration) *http.Client {
	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	return &http.Client{
		Transport: newTransport(timeout, true),
		Timeout:   timeout,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// NewProbeClient creates the HTTP client used for version probes.
//
// The client never follows redirects: probe classification depends on
// seeing the raw redirect status and Location header, so the first
// response always surfaces as-is.
func NewProbeClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: newTransport(timeout, true),
		Timeout:   timeout,
		CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// WithHeaders wraps a client so that every request carries the given
// headers. Target profiles use this to attach host-specific headers
// (auth cookies, bypass tokens) to probe and inspection requests.
//
// Design decision: We use a custom RoundTripper to inject headers
// rather than modifying each request. This ensures all requests
// (including redirects) include the configured values.
func WithHeaders(base *http.Client, headers map[string]string) *http.Client {
	if len(headers) == 0 {
		return base
	}

	wrapped := *base
	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	wrapped.Transport = &headerInjectingTransport{
		base:    transport,
		headers: headers,
	}
	return &wrapped
}

// headerInjectingTransport wraps an http.RoundTripper to inject
// custom headers into every request.
type headerInjectingTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	clone := req.Clone(req.Context())

	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}

	return t.base.RoundTrip(clone)
}
