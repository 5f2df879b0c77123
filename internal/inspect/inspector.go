package inspect

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/verscan/internal/model"
	"github.com/nao1215/verscan/internal/release"
)

// defaultAssetPattern matches references to the versioned admin bundle.
// The capture group is the embedded version tag, still carrying any
// decoration the build system put on it.
var defaultAssetPattern = regexp.MustCompile(`AdminInterface-([A-Za-z0-9][A-Za-z0-9._\-]*)\.js`)

const (
	// maxPageBody caps how much HTML a single inspection reads.
	maxPageBody = 2 << 20

	// defaultUserAgent matches the prober's browser blend. Inspection
	// hits the landing page, where a tool UA is most likely to be
	// served different content than a browser.
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0"
)

// Result holds everything one page inspection produced.
type Result struct {
	// StatusCode is the HTTP status of the page response. Inspection
	// parses the body regardless: error pages leak hints too.
	StatusCode int

	// Title is the page title from the first <title> element.
	Title string

	// Server is the Server response header, if present.
	Server string

	// XPoweredBy is the X-Powered-By response header, if present.
	XPoweredBy string

	// Hints lists versioned asset references in document order. The
	// first reference to each version wins; later duplicates are
	// dropped, same as tag dedup during enumeration.
	Hints []model.AssetHint
}

// Inspector fetches a target's base page and extracts version clues.
//
// Design decision: We parse with golang.org/x/net/html rather than
// matching the raw body because:
//  1. It correctly handles the malformed HTML real deployments serve
//  2. Attribute values arrive unescaped and unquoted
//  3. Matching only <script src> avoids false hits in inline text
type Inspector struct {
	client    *http.Client
	target    model.Target
	pattern   *regexp.Regexp
	userAgent string
	logger    *slog.Logger
}

// Option configures an Inspector.
type Option func(*Inspector)

// WithAssetPattern overrides the asset reference pattern. The pattern
// must have one capture group: the version tag.
func WithAssetPattern(pattern *regexp.Regexp) Option {
	return func(i *Inspector) {
		i.pattern = pattern
	}
}

// WithUserAgent sets the User-Agent header for the page request.
func WithUserAgent(userAgent string) Option {
	return func(i *Inspector) {
		i.userAgent = userAgent
	}
}

// WithLogger sets the logger for inspection diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Inspector) {
		i.logger = logger
	}
}

// New creates an Inspector for the given target. The client should be
// the page profile: inspection wants the final page, so redirects are
// followed and self-signed certificates are tolerated.
func New(client *http.Client, target model.Target, opts ...Option) *Inspector {
	i := &Inspector{
		client:    client,
		target:    target,
		pattern:   defaultAssetPattern,
		userAgent: defaultUserAgent,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Inspect fetches the base page and extracts title, server headers,
// and versioned asset references. Callers treat a failure here as a
// lost bonus, not a lost scan; the sweep proceeds without hints.
func (i *Inspector) Inspect(ctx context.Context) (*Result, error) {
	pageURL := i.target.String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build page request for %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", i.userAgent)

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	result := &Result{
		StatusCode: resp.StatusCode,
		Server:     resp.Header.Get("Server"),
		XPoweredBy: resp.Header.Get("X-Powered-By"),
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxPageBody))
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", pageURL, err)
	}
	i.extract(doc, result)

	i.logger.Debug("inspected page",
		slog.String("url", pageURL),
		slog.Int("status", result.StatusCode),
		slog.String("title", result.Title),
		slog.Int("asset_hints", len(result.Hints)))

	return result, nil
}

// extract walks the DOM and collects the title and asset references.
func (i *Inspector) extract(doc *html.Node, result *Result) {
	seen := make(map[string]bool)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if result.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					result.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "script":
				if src := getAttr(n, "src"); src != "" {
					i.collectHint(src, seen, result)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
}

// collectHint records an asset reference when its URL embeds a version
// tag. The URL is kept exactly as it appeared in the page so reports
// show the evidence.
func (i *Inspector) collectHint(src string, seen map[string]bool, result *Result) {
	m := i.pattern.FindStringSubmatch(src)
	if m == nil {
		return
	}
	version := release.NormalizeTag(m[1])
	if version == "" || seen[version] {
		return
	}
	seen[version] = true
	result.Hints = append(result.Hints, model.AssetHint{
		Version: version,
		URL:     src,
	})
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
