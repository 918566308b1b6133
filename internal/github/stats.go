package github

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/go-github/v50/github"
	"golang.org/x/sync/errgroup"
)

const (
	reposPerPage     = 100
	maxStatsInFlight = 5
)

// Counts holds aggregate statistics for one repository or the whole account.
type Counts struct {
	Commits            int
	PullRequests       int
	MergedPullRequests int
}

func (c *Counts) add(other Counts) {
	c.Commits += other.Commits
	c.PullRequests += other.PullRequests
	c.MergedPullRequests += other.MergedPullRequests
}

// RepoStats is the result of a full statistics sweep.
type RepoStats struct {
	PerRepo map[string]Counts // keyed by "owner/name"
	Totals  Counts
}

// FetchRepoStats enumerates every repository for the configured account and
// resolves commit, PR, and merged-PR counts for each. A failing repository
// contributes zero counts; only the repository listing itself is fatal.
func (c *Client) FetchRepoStats(ctx context.Context) (*RepoStats, error) {
	gh, err := c.source.API(ctx)
	if err != nil {
		return nil, fmt.Errorf("get API client: %w", err)
	}

	repos, err := c.listRepositories(ctx, gh)
	if err != nil {
		return nil, err
	}

	stats := &RepoStats{PerRepo: make(map[string]Counts, len(repos))}
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxStatsInFlight)

	for _, repo := range repos {
		fullName := repo.GetFullName()
		owner, name, ok := SplitRepo(fullName)
		if !ok {
			continue
		}

		g.Go(func() error {
			counts := c.repoCounts(ctx, gh, owner, name)

			mu.Lock()
			stats.PerRepo[fullName] = counts
			stats.Totals.add(counts)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.logger.Info("repository statistics fetched",
		"repos", len(stats.PerRepo),
		"total_commits", stats.Totals.Commits,
		"total_prs", stats.Totals.PullRequests,
		"total_merges", stats.Totals.MergedPullRequests)

	return stats, nil
}

func (c *Client) listRepositories(ctx context.Context, gh *github.Client) ([]*github.Repository, error) {
	opts := &github.RepositoryListOptions{
		ListOptions: github.ListOptions{PerPage: reposPerPage},
	}

	var repos []*github.Repository
	for {
		page, resp, err := gh.Repositories.List(ctx, c.account, opts)
		if err != nil {
			return nil, fmt.Errorf("list repositories: %w", err)
		}
		repos = append(repos, page...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return repos, nil
}

// repoCounts resolves the three counts for one repository. Each count is
// independent: a failing endpoint logs a warning and yields zero for that
// count without failing the sweep.
func (c *Client) repoCounts(ctx context.Context, gh *github.Client, owner, name string) Counts {
	var counts Counts

	commits, resp, err := gh.Repositories.ListCommits(ctx, owner, name, &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		// Empty repositories answer 409 on the commits endpoint.
		c.logger.Warn("failed to count commits", "repo", owner+"/"+name, "error", err)
	} else {
		counts.Commits = lastPageCount(resp, len(commits))
	}

	prs, resp, err := gh.PullRequests.List(ctx, owner, name, &github.PullRequestListOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		c.logger.Warn("failed to count pull requests", "repo", owner+"/"+name, "error", err)
	} else {
		counts.PullRequests = lastPageCount(resp, len(prs))
	}

	query := fmt.Sprintf("repo:%s/%s is:pr is:merged", owner, name)
	result, _, err := gh.Search.Issues(ctx, query, &github.SearchOptions{
		ListOptions: github.ListOptions{PerPage: 1},
	})
	if err != nil {
		c.logger.Warn("failed to count merged pull requests", "repo", owner+"/"+name, "error", err)
	} else {
		counts.MergedPullRequests = result.GetTotal()
	}

	return counts
}

// lastPageCount turns a per_page=1 response into a total count. When the
// result fits on one page GitHub omits the Link header, so the page length
// itself is the count (1 or 0).
func lastPageCount(resp *github.Response, pageLen int) int {
	if resp != nil && resp.LastPage > 0 {
		return resp.LastPage
	}
	return pageLen
}
