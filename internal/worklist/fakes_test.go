package worklist

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"workdesk/internal/model"
)

// fakeHost is an in-memory CodeHost
type fakeHost struct {
	mu sync.Mutex

	user      string
	userErr   error
	hits      map[model.SourceTag][]model.SearchHit
	searchErr map[model.SourceTag]error
	prs       map[ItemRef]model.PullRequest
	reviews   map[ItemRef][]model.ReviewEvent
	failPRs   map[ItemRef]bool
	delay     time.Duration

	detailCalls map[ItemRef]int
	reviewCalls map[ItemRef]int
	queries     []string

	inFlight    atomic.Int32
	maxInFlight atomic.Int32
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		user:        "me",
		hits:        map[model.SourceTag][]model.SearchHit{},
		searchErr:   map[model.SourceTag]error{},
		prs:         map[ItemRef]model.PullRequest{},
		reviews:     map[ItemRef][]model.ReviewEvent{},
		failPRs:     map[ItemRef]bool{},
		detailCalls: map[ItemRef]int{},
		reviewCalls: map[ItemRef]int{},
	}
}

// addPR registers a pull request and makes the given searches return it
func (f *fakeHost) addPR(pr model.PullRequest, tags ...model.SourceTag) {
	ref := ItemRef{Repository: pr.Repository, Number: pr.Number}
	f.prs[ref] = pr
	for _, tag := range tags {
		f.hits[tag] = append(f.hits[tag], model.SearchHit{
			Number:     pr.Number,
			Title:      pr.Title,
			URL:        pr.URL,
			Repository: pr.Repository,
		})
	}
}

func queryTag(query string) model.SourceTag {
	switch {
	case strings.Contains(query, "is:merged"):
		return model.SourceAuthoredMerged
	case strings.Contains(query, "review-requested:"):
		return model.SourceReviewRequested
	case strings.Contains(query, "reviewed-by:"):
		return model.SourceReviewedBy
	default:
		return model.SourceAuthoredOpen
	}
}

func (f *fakeHost) SearchPullRequests(ctx context.Context, query string) ([]model.SearchHit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	tag := queryTag(query)
	if err := f.searchErr[tag]; err != nil {
		return nil, err
	}
	return append([]model.SearchHit(nil), f.hits[tag]...), nil
}

func (f *fakeHost) GetPullRequest(ctx context.Context, owner, repo string, number int) (*model.PullRequest, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		cur := f.maxInFlight.Load()
		if n <= cur || f.maxInFlight.CompareAndSwap(cur, n) {
			break
		}
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	ref := ItemRef{Repository: owner + "/" + repo, Number: number}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls[ref]++
	if f.failPRs[ref] {
		return nil, errors.New("boom")
	}
	pr, ok := f.prs[ref]
	if !ok {
		return nil, errors.New("not found")
	}
	return &pr, nil
}

func (f *fakeHost) ListReviews(ctx context.Context, owner, repo string, number int) ([]model.ReviewEvent, error) {
	ref := ItemRef{Repository: owner + "/" + repo, Number: number}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reviewCalls[ref]++
	return f.reviews[ref], nil
}

func (f *fakeHost) CurrentUser(ctx context.Context) (string, error) {
	return f.user, f.userErr
}

// fakeTracker is an in-memory Tracker
type fakeTracker struct {
	mu sync.Mutex

	mine      []model.Ticket
	mineErr   error
	all       map[string]model.Ticket
	lookupErr error

	lookups [][]string
}

func newFakeTracker(mine ...model.Ticket) *fakeTracker {
	return &fakeTracker{mine: mine, all: map[string]model.Ticket{}}
}

func (f *fakeTracker) MyTickets(ctx context.Context) ([]model.Ticket, error) {
	return f.mine, f.mineErr
}

func (f *fakeTracker) TicketsByKeys(ctx context.Context, keys []string) ([]model.Ticket, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups = append(f.lookups, keys)
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	var out []model.Ticket
	for _, k := range keys {
		if t, ok := f.all[strings.ToUpper(k)]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTracker) CurrentUserName(ctx context.Context) (string, error) {
	return "Me Myself", nil
}

func (f *fakeTracker) ActiveSprint(ctx context.Context) (*model.Sprint, error) {
	return &model.Sprint{Name: "Sprint 1", State: "active"}, nil
}
