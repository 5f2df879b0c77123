package probe

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/nao1215/verscan/internal/model"
)

// defaultPathTemplate locates the version-stamped admin bundle.
// The single %s is replaced with the candidate version.
const defaultPathTemplate = "/static/dist/admin/AdminInterface-%s.js"

// Prober sends existence probes for candidate versions against one
// target.
//
// Design decision: We require an external http.Client rather than
// creating one internally because:
//  1. Redirect policy is the client's concern (probes must see raw
//     redirect statuses, so the caller passes a non-following client)
//  2. Proxy configuration (direct vs Tor) is handled by the caller
//  3. Easier to test with httptest servers
type Prober struct {
	// client performs the probe requests. It must not follow redirects.
	client *http.Client

	// target is the deployment being probed.
	target model.Target

	// pathTemplate is the printf-style asset path with one %s for the
	// version.
	pathTemplate string

	// userAgent is sent with every probe.
	// Default simulates a standard browser so probe traffic blends
	// into normal asset requests instead of advertising a scanner.
	userAgent string

	// logger records per-probe diagnostics.
	logger *slog.Logger
}

// ProberOption configures a Prober.
type ProberOption func(*Prober)

// WithPathTemplate overrides the asset path template.
// The template must contain exactly one %s for the version.
func WithPathTemplate(template string) ProberOption {
	return func(p *Prober) {
		p.pathTemplate = template
	}
}

// WithUserAgent sets a custom User-Agent header for probes.
func WithUserAgent(ua string) ProberOption {
	return func(p *Prober) {
		p.userAgent = ua
	}
}

// WithLogger sets the logger for per-probe diagnostics.
func WithLogger(logger *slog.Logger) ProberOption {
	return func(p *Prober) {
		p.logger = logger
	}
}

// NewProber creates a Prober for the given target.
func NewProber(client *http.Client, target model.Target, opts ...ProberOption) *Prober {
	p := &Prober{
		client:       client,
		target:       target,
		pathTemplate: defaultPathTemplate,
		userAgent:    "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0",
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// URL returns the probe URL for a candidate version.
func (p *Prober) URL(version string) string {
	return p.target.JoinPath(fmt.Sprintf(p.pathTemplate, version))
}

// Probe checks whether the asset for one candidate version exists.
//
// The request asks for a single byte (Range: bytes=0-0) so a hit on a
// megabyte-sized bundle costs the target almost nothing. The response
// is classified, never interpreted: transport failures come back as
// StatusNetworkFailed with a nil error. The only error paths are a
// candidate that cannot form a valid URL and context cancellation -
// the caller aborting is not target behavior and must not be recorded
// as such.
func (p *Prober) Probe(ctx context.Context, version string) (model.ProbeResult, error) {
	probeURL := p.URL(version)
	result := model.ProbeResult{
		Version: version,
		URL:     probeURL,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, probeURL, nil)
	if err != nil {
		return result, fmt.Errorf("build probe request for %q: %w", version, err)
	}
	req.Header.Set("Range", "bytes=0-0")
	req.Header.Set("User-Agent", p.userAgent)

	start := time.Now()
	resp, err := p.client.Do(req)
	result.Duration = time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		result.Status = model.StatusNetworkFailed
		result.StatusText = result.Status.String()
		result.Error = err.Error()
		p.logger.Debug("probe transport failure", "version", version, "error", err)
		return result, nil
	}
	defer resp.Body.Close()

	// Drain the ranged byte so the keep-alive connection is reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	result.StatusCode = resp.StatusCode
	result.Status = model.ClassifyStatusCode(resp.StatusCode)
	result.StatusText = result.Status.String()
	if location := resp.Header.Get("Location"); location != "" {
		result.Location = location
	}

	p.logger.Debug("probe completed",
		"version", version,
		"status", result.StatusText,
		"code", result.StatusCode,
		"duration", result.Duration)

	return result, nil
}
