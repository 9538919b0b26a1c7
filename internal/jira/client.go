package jira

import (
	"context"
	"fmt"
	"strings"
	"time"

	"workdesk/internal/logger"
	"workdesk/internal/model"

	jira "github.com/andygrunwald/go-jira"
	"go.uber.org/zap"
)

const (
	searchPageSize = 100
	// lookupChunkSize bounds the number of keys in one "key in (...)" query
	lookupChunkSize = 50
)

// Options configures a Client
type Options struct {
	BaseURL     string
	Email       string
	Token       string
	JQL         string
	SprintField string
	BoardID     int
	Timeout     time.Duration
}

// Client reads tickets from Jira
type Client struct {
	client      *jira.Client
	baseURL     string
	jql         string
	sprintField string
	boardID     int
}

// NewClient creates a Jira client using basic auth with an API token
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("Jira base URL is required")
	}
	if opts.Email == "" || opts.Token == "" {
		return nil, fmt.Errorf("Jira email and API token are required")
	}

	tp := jira.BasicAuthTransport{
		Username: opts.Email,
		Password: opts.Token,
	}
	httpClient := tp.Client()
	httpClient.Timeout = opts.Timeout

	client, err := jira.NewClient(httpClient, opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Jira client: %w", err)
	}

	return &Client{
		client:      client,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		jql:         opts.JQL,
		sprintField: opts.SprintField,
		boardID:     opts.BoardID,
	}, nil
}

// MyTickets runs the configured JQL and returns every matching ticket
func (c *Client) MyTickets(ctx context.Context) ([]model.Ticket, error) {
	tickets, err := c.search(ctx, c.jql, "")
	if err != nil {
		return nil, fmt.Errorf("failed to search assigned tickets: %w", err)
	}
	return tickets, nil
}

// TicketsByKeys returns the tickets for the given keys. Keys that do not
// exist are absent from the result.
func (c *Client) TicketsByKeys(ctx context.Context, keys []string) ([]model.Ticket, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	var tickets []model.Ticket
	for start := 0; start < len(keys); start += lookupChunkSize {
		end := min(start+lookupChunkSize, len(keys))
		found, err := c.search(ctx, keyQuery(keys[start:end]), "warn")
		if err != nil {
			return nil, fmt.Errorf("failed to look up tickets by key: %w", err)
		}
		tickets = append(tickets, found...)
	}
	return tickets, nil
}

func keyQuery(keys []string) string {
	quoted := make([]string, 0, len(keys))
	for _, key := range keys {
		quoted = append(quoted, fmt.Sprintf("%q", strings.ToUpper(strings.TrimSpace(key))))
	}
	return fmt.Sprintf("key in (%s)", strings.Join(quoted, ", "))
}

// search pages through a JQL query. validate is passed as validateQuery;
// "warn" keeps unknown keys from failing the whole query.
func (c *Client) search(ctx context.Context, jql, validate string) ([]model.Ticket, error) {
	log := logger.FromContext(ctx)
	log.Debug("Searching Jira", zap.String("jql", jql))

	opts := &jira.SearchOptions{
		MaxResults:    searchPageSize,
		Fields:        c.fields(),
		ValidateQuery: validate,
	}

	var tickets []model.Ticket
	for {
		issues, resp, err := c.client.Issue.SearchWithContext(ctx, jql, opts)
		if err != nil {
			return nil, wrapResponseError(resp, err)
		}
		for i := range issues {
			tickets = append(tickets, c.toTicket(ctx, &issues[i]))
		}

		opts.StartAt += len(issues)
		if len(issues) == 0 || resp == nil || opts.StartAt >= resp.Total {
			break
		}
	}

	log.Debug("Jira search returned results", zap.Int("count", len(tickets)))
	return tickets, nil
}

func (c *Client) fields() []string {
	fields := []string{"summary", "status", "updated", "labels"}
	if c.sprintField != "" {
		fields = append(fields, c.sprintField)
	}
	return fields
}

// CurrentUserName returns the display name of the authenticated user
func (c *Client) CurrentUserName(ctx context.Context) (string, error) {
	user, resp, err := c.client.User.GetSelfWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get current Jira user: %w", wrapResponseError(resp, err))
	}
	if user.DisplayName != "" {
		return user.DisplayName, nil
	}
	return user.EmailAddress, nil
}

// ActiveSprint returns the active sprint of the configured board, or nil
// when no board is configured or no sprint is active
func (c *Client) ActiveSprint(ctx context.Context) (*model.Sprint, error) {
	if c.boardID == 0 {
		return nil, nil
	}

	sprints, resp, err := c.client.Board.GetAllSprintsWithOptionsWithContext(ctx, c.boardID, &jira.GetAllSprintsOptions{
		State: "active",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get active sprint for board %d: %w", c.boardID, wrapResponseError(resp, err))
	}
	if len(sprints.Values) == 0 {
		return nil, nil
	}

	sprint := fromJiraSprint(sprints.Values[0])
	return &sprint, nil
}

// wrapResponseError adds the HTTP status to an error when one is known
func wrapResponseError(resp *jira.Response, err error) error {
	if resp != nil && resp.Response != nil {
		return fmt.Errorf("%s: %w", resp.Status, err)
	}
	return err
}
