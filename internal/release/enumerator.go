package release

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// defaultPerPage is the page size requested from the index.
	// 100 is the API maximum; fewer pages means fewer requests.
	defaultPerPage = 100

	// defaultPageDelay is the politeness pause between page fetches.
	defaultPageDelay = 50 * time.Millisecond

	// defaultUserAgent identifies verscan to the release index.
	// GitHub rejects requests without a User-Agent.
	defaultUserAgent = "verscan/1.0 (+https://github.com/nao1215/verscan)"

	// acceptGitHubJSON is the media type for the GitHub REST API.
	acceptGitHubJSON = "application/vnd.github+json"

	// defaultAPIVersion pins the REST API revision so response shapes
	// stay stable across GitHub deployments.
	defaultAPIVersion = "2022-11-28"

	// maxErrorBody bounds how much of a failed response body is kept
	// for the error message.
	maxErrorBody = 256

	// maxPageBody bounds how much of a page body is decoded.
	maxPageBody = 10 * 1024 * 1024
)

// PageFunc receives progress after each fetched page: the 1-based page
// index and the running candidate count.
type PageFunc func(page, candidates int)

// Enumerator fetches the published release tags of a repository and
// normalizes them into probe candidates.
//
// Design decision: We require an external http.Client rather than
// creating one internally because:
//  1. Proxy configuration (direct vs Tor) is handled by the caller
//  2. Allows for different transports in tests
//  3. Connection pooling can be shared with other components
type Enumerator struct {
	// client performs the page requests.
	client *http.Client

	// indexBase is the API root, e.g. "https://api.github.com".
	indexBase string

	// repository is the "owner/name" whose releases are enumerated.
	repository string

	// token is the optional bearer credential. Anonymous requests work
	// but are rate limited far more aggressively.
	token string

	// userAgent is sent with every page request.
	userAgent string

	// apiVersion is the pinned REST API revision header value.
	apiVersion string

	// perPage is the page size requested from the index.
	perPage int

	// pageDelay is the pause between successive page fetches.
	pageDelay time.Duration

	// onPage, when set, receives progress after each page.
	onPage PageFunc

	// logger records page-level diagnostics.
	logger *slog.Logger
}

// EnumeratorOption configures an Enumerator.
type EnumeratorOption func(*Enumerator)

// WithToken sets the bearer credential for index requests.
// An empty token means anonymous access.
func WithToken(token string) EnumeratorOption {
	return func(e *Enumerator) {
		e.token = token
	}
}

// WithUserAgent sets the User-Agent header for index requests.
func WithUserAgent(ua string) EnumeratorOption {
	return func(e *Enumerator) {
		e.userAgent = ua
	}
}

// WithAPIVersion overrides the pinned REST API revision.
func WithAPIVersion(version string) EnumeratorOption {
	return func(e *Enumerator) {
		e.apiVersion = version
	}
}

// WithPerPage sets the page size requested from the index (1-100).
func WithPerPage(n int) EnumeratorOption {
	return func(e *Enumerator) {
		e.perPage = n
	}
}

// WithPageDelay sets the politeness pause between page fetches.
// Zero disables the pause; tests use this to run fast.
func WithPageDelay(d time.Duration) EnumeratorOption {
	return func(e *Enumerator) {
		e.pageDelay = d
	}
}

// WithPageCallback registers a progress callback invoked after each
// fetched page.
func WithPageCallback(fn PageFunc) EnumeratorOption {
	return func(e *Enumerator) {
		e.onPage = fn
	}
}

// WithLogger sets the logger for page-level diagnostics.
func WithLogger(logger *slog.Logger) EnumeratorOption {
	return func(e *Enumerator) {
		e.logger = logger
	}
}

// NewEnumerator creates an Enumerator for the given repository.
// The repository must be in "owner/name" form; the indexBase is the
// API root without a trailing slash requirement.
func NewEnumerator(client *http.Client, indexBase, repository string, opts ...EnumeratorOption) *Enumerator {
	e := &Enumerator{
		client:     client,
		indexBase:  strings.TrimRight(indexBase, "/"),
		repository: repository,
		userAgent:  defaultUserAgent,
		apiVersion: defaultAPIVersion,
		perPage:    defaultPerPage,
		pageDelay:  defaultPageDelay,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Repository returns the "owner/name" repository the enumerator reads.
func (e *Enumerator) Repository() string {
	return e.repository
}

// releaseRecord is the subset of the index's release object we consume.
type releaseRecord struct {
	TagName tagName `json:"tag_name"`
}

// tagName decodes leniently: a record whose tag_name is missing or not
// a string yields "", which the walk skips like any other unusable tag.
// One malformed record must not abort an otherwise good page.
type tagName string

func (t *tagName) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*t = ""
		return nil
	}
	*t = tagName(s)
	return nil
}

// Enumerate walks every page of the repository's releases and returns
// the normalized, deduplicated candidate list in upstream order.
//
// Records without a usable tag are skipped, never fatal. The first
// occurrence of a version wins; later duplicates (a retagged release,
// a "v"-prefixed twin) are dropped. A page that fails to fetch or
// decode aborts the walk with an *EnumerationError. Zero candidates
// after a clean walk is ErrNoCandidates.
func (e *Enumerator) Enumerate(ctx context.Context) ([]string, error) {
	pageURL := e.firstPageURL()
	seen := make(map[string]struct{})
	var candidates []string

	for page := 1; pageURL != ""; page++ {
		records, next, err := e.fetchPage(ctx, pageURL)
		if err != nil {
			return nil, err
		}

		for _, record := range records {
			tag := NormalizeTag(string(record.TagName))
			if tag == "" {
				continue
			}
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			candidates = append(candidates, tag)
		}

		e.logger.Debug("fetched release page",
			"page", page,
			"records", len(records),
			"candidates", len(candidates))

		if e.onPage != nil {
			e.onPage(page, len(candidates))
		}

		pageURL = next
		if pageURL == "" || e.pageDelay <= 0 {
			continue
		}
		select {
		case <-time.After(e.pageDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}
	return candidates, nil
}

// firstPageURL builds the initial page request URL.
func (e *Enumerator) firstPageURL() string {
	return fmt.Sprintf("%s/repos/%s/releases?per_page=%d&page=1", e.indexBase, e.repository, e.perPage)
}

// fetchPage retrieves one page of releases and the URL of the next
// page, if any. An empty next URL terminates the walk - which is why
// even an empty page's Link header is consulted before giving up.
func (e *Enumerator) fetchPage(ctx context.Context, pageURL string) ([]releaseRecord, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", &EnumerationError{URL: pageURL, Err: err}
	}

	req.Header.Set("Accept", acceptGitHubJSON)
	req.Header.Set("X-GitHub-Api-Version", e.apiVersion)
	req.Header.Set("User-Agent", e.userAgent)
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, "", &EnumerationError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, "", &EnumerationError{
			URL:        pageURL,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(excerpt)),
		}
	}

	var records []releaseRecord
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxPageBody)).Decode(&records); err != nil {
		return nil, "", &EnumerationError{URL: pageURL, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode page: %w", err)}
	}

	return records, nextPageURL(resp.Header.Get("Link")), nil
}

// nextPageURL extracts the rel="next" target from an RFC 5988 Link
// header. Returns "" when there is no next page.
//
// The header is a comma-separated list of entries shaped like:
//
//	<https://api.github.com/...&page=2>; rel="next"
func nextPageURL(header string) string {
	if header == "" {
		return ""
	}

	for _, entry := range strings.Split(header, ",") {
		sections := strings.Split(entry, ";")
		if len(sections) < 2 {
			continue
		}

		target := strings.TrimSpace(sections[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}

		for _, param := range sections[1:] {
			if strings.TrimSpace(param) == `rel="next"` {
				return strings.Trim(target, "<>")
			}
		}
	}
	return ""
}
