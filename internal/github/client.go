// Package github fetches release metadata and searches pull requests through
// the GitHub REST API. Every call runs under its own timeout; callers treat
// any error as "no data".
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dragonshield/changelog-sync/internal/changelog"
	"github.com/google/go-github/v32/github"
)

// DefaultTimeout bounds each API call.
const DefaultTimeout = 20 * time.Second

// userAgent identifies the tool to the API.
const userAgent = "changelog-sync"

// debugLogger is a no-op unless SetDebugLogger installs one.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for API calls.
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
	Owner string
	Repo  string
	// Token is optional; without it requests are unauthenticated and subject
	// to lower rate limits.
	Token string
	// BaseURL overrides the API endpoint (GitHub Enterprise, tests).
	BaseURL string
	// Timeout bounds each call. Zero means DefaultTimeout.
	Timeout time.Duration
	// HTTPClient overrides the transport. Nil uses http.DefaultTransport.
	HTTPClient *http.Client
}

// Client is a thin wrapper over go-github scoped to one repository.
type Client struct {
	gh      *github.Client
	owner   string
	repo    string
	timeout time.Duration
}

// NewClient creates a client for opts.Owner/opts.Repo.
func NewClient(opts Options) (*Client, error) {
	if opts.Owner == "" || opts.Repo == "" {
		return nil, fmt.Errorf("github owner and repo are required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if opts.Token != "" {
		base := httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		httpClient = &http.Client{
			Transport: &tokenTransport{token: opts.Token, base: base},
			Timeout:   httpClient.Timeout,
		}
	}

	gh := github.NewClient(httpClient)
	gh.UserAgent = userAgent

	if opts.BaseURL != "" {
		base := opts.BaseURL
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parsing github api url %q: %w", opts.BaseURL, err)
		}
		gh.BaseURL = u
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{gh: gh, owner: opts.Owner, repo: opts.Repo, timeout: timeout}, nil
}

// tokenTransport adds a bearer token to every request.
type tokenTransport struct {
	token string
	base  http.RoundTripper
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+t.token)
	return t.base.RoundTrip(clone)
}

// FetchReleases lists every release of the repository keyed by tag name.
// Releases without a tag are skipped. The publish date falls back to the
// release creation date.
func (c *Client) FetchReleases(ctx context.Context) (map[string]changelog.Release, error) {
	releases := make(map[string]changelog.Release)
	opts := &github.ListOptions{PerPage: 100}

	for {
		page, resp, err := c.listReleasesPage(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("listing releases for %s/%s: %w", c.owner, c.repo, err)
		}

		for _, rel := range page {
			tag := rel.GetTagName()
			if tag == "" {
				continue
			}
			published := rel.GetPublishedAt().Time
			if published.IsZero() {
				published = rel.GetCreatedAt().Time
			}
			releases[tag] = changelog.Release{
				TagName:   tag,
				Name:      rel.GetName(),
				Body:      rel.GetBody(),
				Published: published,
			}
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	logDebug("[github] FetchReleases: %d releases", len(releases))
	return releases, nil
}

func (c *Client) listReleasesPage(ctx context.Context, opts *github.ListOptions) ([]*github.RepositoryRelease, *github.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.gh.Repositories.ListReleases(ctx, c.owner, c.repo, opts)
}

// SearchQuery builds the issue search query for pull requests mentioning refID.
func (c *Client) SearchQuery(refID string) string {
	return fmt.Sprintf("repo:%s/%s %q type:pr", c.owner, c.repo, refID)
}

// SearchPullRequest returns the top pull request whose text mentions refID.
// The boolean is false when the search has no results.
func (c *Client) SearchPullRequest(ctx context.Context, refID string) (changelog.PullRequestInfo, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, _, err := c.gh.Search.Issues(ctx, c.SearchQuery(refID), &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		return changelog.PullRequestInfo{}, false, fmt.Errorf("searching pull requests for %s: %w", refID, err)
	}
	if result == nil || len(result.Issues) == 0 {
		logDebug("[github] SearchPullRequest(%s): no results", refID)
		return changelog.PullRequestInfo{}, false, nil
	}

	top := result.Issues[0]
	info := changelog.PullRequestInfo{
		Number:    top.GetNumber(),
		ClosedAt:  top.GetClosedAt(),
		CreatedAt: top.GetCreatedAt(),
	}
	logDebug("[github] SearchPullRequest(%s): #%d", refID, info.Number)
	return info, true, nil
}
