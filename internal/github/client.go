// Package github provides GitHub API access for the relay.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v50/github"
	"golang.org/x/oauth2"
)

// APISource yields an authenticated API client. Token auth returns a fixed
// client; App auth mints short-lived installation tokens on demand.
type APISource interface {
	API(ctx context.Context) (*github.Client, error)
}

// StaticSource wraps a fixed token into an APISource.
type StaticSource struct {
	client *github.Client
}

// NewStaticSource builds a token-authenticated source with a bounded HTTP timeout.
func NewStaticSource(ctx context.Context, token string, timeout time.Duration) *StaticSource {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = timeout
	return &StaticSource{client: github.NewClient(tc)}
}

// NewStaticSourceFromClient wraps an existing API client (used by tests).
func NewStaticSourceFromClient(client *github.Client) *StaticSource {
	return &StaticSource{client: client}
}

// API returns the underlying client.
func (s *StaticSource) API(_ context.Context) (*github.Client, error) {
	return s.client, nil
}

// Client wraps the GitHub REST API with the operations the relay needs:
// PR state lookups for reconciliation and aggregate repository statistics.
type Client struct {
	source  APISource
	logger  *slog.Logger
	account string
}

// New creates a client for the given account ("" means the authenticated user).
func New(source APISource, account string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		source:  source,
		account: account,
		logger:  logger,
	}
}

// PRStatus is the subset of pull request state the reconciler cares about.
type PRStatus struct {
	State  string // "open" or "closed"
	Merged bool
}

// Open reports whether the PR is still open.
func (s PRStatus) Open() bool {
	return s.State == "open"
}

// PRState fetches the current state of a pull request.
func (c *Client) PRState(ctx context.Context, owner, repo string, number int) (PRStatus, error) {
	gh, err := c.source.API(ctx)
	if err != nil {
		return PRStatus{}, fmt.Errorf("get API client: %w", err)
	}

	pr, _, err := gh.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return PRStatus{}, fmt.Errorf("get PR %s/%s#%d: %w", owner, repo, number, err)
	}

	return PRStatus{
		State:  pr.GetState(),
		Merged: pr.GetMerged(),
	}, nil
}

// SplitRepo splits "owner/name" into its parts.
func SplitRepo(fullName string) (owner, name string, ok bool) {
	owner, name, found := strings.Cut(fullName, "/")
	if !found || owner == "" || name == "" {
		return "", "", false
	}
	return owner, name, true
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var ghErr *github.ErrorResponse
	if !errors.As(err, &ghErr) {
		return false
	}
	return ghErr.Response != nil && ghErr.Response.StatusCode == http.StatusNotFound
}
