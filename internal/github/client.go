// Package github looks up repositories and their latest release through
// the GitHub REST API.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v62/github"
	"github.com/rs/zerolog"

	"github.com/quantmind-br/binstall/internal/core"
	"github.com/quantmind-br/binstall/internal/security"
)

// DefaultAPIURL is the public GitHub REST endpoint
const DefaultAPIURL = "https://api.github.com/"

// Options configures a Client
type Options struct {
	APIURL     string
	UserAgent  string
	Token      string
	HTTPClient *http.Client
}

// Client wraps go-github with the two calls binstall needs
type Client struct {
	gh     *gh.Client
	logger *zerolog.Logger
}

// NewClient creates a client. An empty APIURL means DefaultAPIURL.
func NewClient(opts Options, logger *zerolog.Logger) (*Client, error) {
	client := gh.NewClient(opts.HTTPClient)
	if opts.Token != "" {
		client = client.WithAuthToken(opts.Token)
	}
	if opts.UserAgent != "" {
		client.UserAgent = opts.UserAgent
	}

	apiURL := opts.APIURL
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}
	base, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid github api url %q: %w", opts.APIURL, err)
	}
	client.BaseURL = base

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Client{gh: client, logger: logger}, nil
}

// SearchFirst runs a repository search and returns the top hit
func (c *Client) SearchFirst(ctx context.Context, query string) (*core.Repository, error) {
	if err := security.ValidateSearchQuery(query); err != nil {
		return nil, err
	}

	opts := &gh.SearchOptions{ListOptions: gh.ListOptions{PerPage: 1}}
	result, _, err := c.gh.Search.Repositories(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("search repositories: %w", err)
	}

	if len(result.Repositories) == 0 {
		return nil, fmt.Errorf("%w: %q", core.ErrNoSearchResult, query)
	}

	repo := result.Repositories[0]
	c.logger.Debug().
		Str("query", query).
		Str("repo", repo.GetFullName()).
		Int("total", result.GetTotal()).
		Msg("repository search")

	return &core.Repository{
		FullName:    repo.GetFullName(),
		HTMLURL:     repo.GetHTMLURL(),
		ReleasesURL: StripURITemplate(repo.GetReleasesURL()),
	}, nil
}

// LatestRelease fetches releasesURL and returns the first (newest) release
func (c *Client) LatestRelease(ctx context.Context, releasesURL string) (*core.Release, error) {
	if releasesURL == "" {
		return nil, fmt.Errorf("%w: repository has no releases url", core.ErrNoRelease)
	}

	req, err := c.gh.NewRequest(http.MethodGet, StripURITemplate(releasesURL), nil)
	if err != nil {
		return nil, fmt.Errorf("build releases request: %w", err)
	}

	var releases []*gh.RepositoryRelease
	if _, err := c.gh.Do(ctx, req, &releases); err != nil {
		return nil, fmt.Errorf("list releases: %w", err)
	}

	if len(releases) == 0 || releases[0] == nil {
		return nil, core.ErrNoRelease
	}

	release := convertRelease(releases[0])
	c.logger.Debug().
		Str("tag", release.TagName).
		Int("assets", len(release.Assets)).
		Msg("latest release")

	return release, nil
}

// StripURITemplate removes an RFC 6570 suffix such as "{/id}" from an API url
func StripURITemplate(raw string) string {
	if i := strings.Index(raw, "{"); i >= 0 {
		return raw[:i]
	}
	return raw
}

func convertRelease(r *gh.RepositoryRelease) *core.Release {
	release := &core.Release{
		TagName: r.GetTagName(),
		Name:    r.GetName(),
		Assets:  make([]core.Asset, 0, len(r.Assets)),
	}
	for _, a := range r.Assets {
		if a == nil {
			continue
		}
		release.Assets = append(release.Assets, core.Asset{
			Name:        a.GetName(),
			DownloadURL: a.GetBrowserDownloadURL(),
			ContentType: a.GetContentType(),
			Size:        int64(a.GetSize()),
		})
	}
	return release
}
