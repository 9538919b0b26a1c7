package github

import (
	"context"
	"fmt"

	"workdesk/internal/logger"
	"workdesk/internal/model"

	"github.com/google/go-github/v71/github"
	"go.uber.org/zap"
)

const (
	searchPageSize = 100
	// searchResultCap is the most results the search API returns for one query
	searchResultCap = 1000
)

// SearchPullRequests runs an issue search query and returns the pull request
// hits, following pagination up to the search API cap. Hits that are issues
// rather than pull requests are skipped.
func (c *Client) SearchPullRequests(ctx context.Context, query string) ([]model.SearchHit, error) {
	log := logger.FromContext(ctx)
	log.Debug("Searching pull requests", zap.String("query", query))

	opts := &github.SearchOptions{
		Sort:        "updated",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: searchPageSize},
	}

	var hits []model.SearchHit
	seen := 0
	for {
		result, resp, err := c.client.Search.Issues(ctx, query, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to search pull requests: %w", err)
		}
		if result.GetIncompleteResults() {
			log.Warn("Search returned incomplete results", zap.String("query", query))
		}

		for _, issue := range result.Issues {
			if issue.PullRequestLinks == nil {
				log.Debug("Skipping issue: not a pull request", zap.Int("issue_number", issue.GetNumber()))
				continue
			}
			hits = append(hits, FromGitHubIssue(issue))
		}

		seen += len(result.Issues)
		if resp == nil || resp.NextPage == 0 || seen >= searchResultCap {
			break
		}
		opts.Page = resp.NextPage
	}

	log.Debug("GitHub search returned results", zap.String("query", query), zap.Int("count", len(hits)))
	return hits, nil
}
