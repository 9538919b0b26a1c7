package worklist

import (
	"context"
	"errors"

	"workdesk/internal/model"
)

// ErrConfiguration is returned when credentials or scope are missing.
// It is raised before any network call is made.
var ErrConfiguration = errors.New("configuration error")

// Tracker is the ticket source
type Tracker interface {
	// MyTickets returns the tickets assigned to the authenticated user
	MyTickets(ctx context.Context) ([]model.Ticket, error)
	// TicketsByKeys returns the tickets for the given keys. Unknown keys are
	// absent from the result; an empty key set makes no call.
	TicketsByKeys(ctx context.Context, keys []string) ([]model.Ticket, error)
	CurrentUserName(ctx context.Context) (string, error)
	ActiveSprint(ctx context.Context) (*model.Sprint, error)
}

// CodeHost is the pull request source
type CodeHost interface {
	SearchPullRequests(ctx context.Context, query string) ([]model.SearchHit, error)
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*model.PullRequest, error)
	ListReviews(ctx context.Context, owner, repo string, number int) ([]model.ReviewEvent, error)
	CurrentUser(ctx context.Context) (string, error)
}

// ProgressFunc receives coarse milestone messages during aggregation.
// A nil ProgressFunc is valid.
type ProgressFunc func(msg string)

func (p ProgressFunc) report(msg string) {
	if p != nil {
		p(msg)
	}
}
