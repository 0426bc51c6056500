// Package github is the thin slice of the GitHub REST API relnotes needs:
// tags, releases, commit comparison and the pull requests that carried a
// commit. It adapts go-github types to the release package's plain structs.
package github

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v66/github"
)

// DefaultWebURL is the browser-facing GitHub host used for compare links.
const DefaultWebURL = "https://github.com"

// ErrNotFound is returned when a release or ref does not exist.
var ErrNotFound = errors.New("not found")

// debugLogger is a no-op until SetDebugLogger is called.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for GitHub API calls.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Options configures a Client.
type Options struct {
	// Token authenticates API calls. Empty means unauthenticated.
	Token string
	// Repository is "owner/name".
	Repository string
	// BaseURL overrides the API root (GitHub Enterprise, tests).
	BaseURL string
	// WebURL overrides the browser host used in compare links.
	WebURL string
	// PageSize is the per_page value for list endpoints.
	PageSize int
	// HTTPClient overrides the transport.
	HTTPClient *http.Client
	// UserAgent overrides the go-github default.
	UserAgent string
}

// Client talks to a single repository.
type Client struct {
	api      *gh.Client
	owner    string
	repo     string
	webURL   string
	pageSize int
}

// New creates a Client for opts.Repository.
func New(opts Options) (*Client, error) {
	owner, repo, err := SplitRepository(opts.Repository)
	if err != nil {
		return nil, err
	}

	api := gh.NewClient(opts.HTTPClient)
	if opts.Token != "" {
		api = api.WithAuthToken(opts.Token)
	}
	if opts.UserAgent != "" {
		api.UserAgent = opts.UserAgent
	}
	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parsing api url %q: %w", opts.BaseURL, err)
		}
		api.BaseURL = u
	}

	webURL := strings.TrimSuffix(opts.WebURL, "/")
	if webURL == "" {
		webURL = DefaultWebURL
	}

	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return &Client{
		api:      api,
		owner:    owner,
		repo:     repo,
		webURL:   webURL,
		pageSize: pageSize,
	}, nil
}

// SplitRepository splits "owner/name" into its parts.
func SplitRepository(full string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(full, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("invalid repository %q: expected owner/name", full)
	}
	return owner, repo, nil
}

// Repository returns "owner/name".
func (c *Client) Repository() string {
	return c.owner + "/" + c.repo
}

// CompareURL returns the browser link comparing from with to.
func (c *Client) CompareURL(from, to string) string {
	return fmt.Sprintf("%s/%s/%s/compare/%s...%s", c.webURL, c.owner, c.repo, from, to)
}

// isNotFound reports whether err is a 404 from the API.
func isNotFound(err error) bool {
	var respErr *gh.ErrorResponse
	return errors.As(err, &respErr) && respErr.Response != nil && respErr.Response.StatusCode == http.StatusNotFound
}

// IsAPIError reports whether err came back from the GitHub API, as opposed
// to a local failure such as a cancelled context.
func IsAPIError(err error) bool {
	var (
		respErr  *gh.ErrorResponse
		rateErr  *gh.RateLimitError
		abuseErr *gh.AbuseRateLimitError
	)
	return errors.As(err, &respErr) || errors.As(err, &rateErr) || errors.As(err, &abuseErr) || errors.Is(err, ErrNotFound)
}
