package github

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"workdesk/internal/logger"
	"workdesk/internal/model"

	"github.com/google/go-github/v71/github"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// Options configures a Client
type Options struct {
	// BaseURL is the GitHub Enterprise API root. Empty means github.com.
	BaseURL string
	Timeout time.Duration
}

// Client wraps the GitHub API client with the pull request operations the
// worklist needs
type Client struct {
	client *github.Client
}

// NewClient creates a new GitHub API client authenticated with a static token
func NewClient(token string, opts Options) (*Client, error) {
	if token == "" {
		return nil, fmt.Errorf("GitHub token is required")
	}

	// Create OAuth2 token source
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Timeout = opts.Timeout

	return newClient(tc, opts)
}

func newClient(httpClient *http.Client, opts Options) (*Client, error) {
	githubClient := github.NewClient(httpClient)
	if opts.BaseURL != "" {
		var err error
		githubClient, err = githubClient.WithEnterpriseURLs(opts.BaseURL, opts.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to configure GitHub Enterprise URL: %w", err)
		}
	}

	return &Client{client: githubClient}, nil
}

// CurrentUser returns the login of the authenticated user
func (c *Client) CurrentUser(ctx context.Context) (string, error) {
	user, _, err := c.client.Users.Get(ctx, "")
	if err != nil {
		return "", fmt.Errorf("failed to get authenticated user: %w", err)
	}
	if user.GetLogin() == "" {
		return "", fmt.Errorf("authenticated user has no login")
	}
	return user.GetLogin(), nil
}

// GetPullRequest returns the full detail of a single pull request
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*model.PullRequest, error) {
	log := logger.FromContext(ctx)
	log.Debug("Getting PR details",
		zap.String("repository", owner+"/"+repo),
		zap.Int("pr_number", number))

	pr, _, err := c.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get pull request %s/%s#%d: %w", owner, repo, number, err)
	}

	info := FromGitHubPullRequest(pr)
	if info.Repository == "" {
		info.Repository = owner + "/" + repo
	}
	return &info, nil
}

// ListReviews returns every review submitted on a pull request
func (c *Client) ListReviews(ctx context.Context, owner, repo string, number int) ([]model.ReviewEvent, error) {
	opts := &github.ListOptions{PerPage: 100}

	var events []model.ReviewEvent
	for {
		reviews, resp, err := c.client.PullRequests.ListReviews(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list reviews for %s/%s#%d: %w", owner, repo, number, err)
		}
		for _, review := range reviews {
			events = append(events, FromGitHubReview(review))
		}

		if resp == nil || resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return events, nil
}
