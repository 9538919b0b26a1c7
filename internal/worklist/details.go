package worklist

import (
	"context"
	"fmt"
	"sync"

	"workdesk/internal/logger"
	"workdesk/internal/model"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// DefaultDetailConcurrency caps simultaneous detail fetches
const DefaultDetailConcurrency = 5

// DetailedItem is a candidate enriched with its full pull request detail
type DetailedItem struct {
	Key         string // ticket key extracted from branch or title, "" if none
	PullRequest model.PullRequest
	Tags        model.SourceTag
}

// FetchDetails fetches pull request detail and reviews for every candidate.
// One goroutine is started per candidate, but at most limit (detail, reviews)
// pairs are in flight. Candidates whose fetch fails are logged and dropped.
func FetchDetails(ctx context.Context, host CodeHost, candidates []Candidate, limit int) ([]DetailedItem, error) {
	if limit <= 0 {
		limit = DefaultDetailConcurrency
	}

	log := logger.FromContext(ctx)
	sem := semaphore.NewWeighted(int64(limit))
	slots := make([]*DetailedItem, len(candidates))

	var wg sync.WaitGroup
	for i, c := range candidates {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer sem.Release(1)

			item, err := fetchDetail(ctx, host, c)
			if err != nil {
				log.Warn("Failed to fetch pull request detail",
					zap.Stringer("pull_request", c.Ref),
					zap.Error(err))
				return
			}
			slots[i] = item
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := make([]DetailedItem, 0, len(slots))
	for _, item := range slots {
		if item != nil {
			items = append(items, *item)
		}
	}
	return items, nil
}

func fetchDetail(ctx context.Context, host CodeHost, c Candidate) (*DetailedItem, error) {
	owner, repo, err := SplitRepository(c.Ref.Repository)
	if err != nil {
		return nil, err
	}

	pr, err := host.GetPullRequest(ctx, owner, repo, c.Ref.Number)
	if err != nil {
		return nil, fmt.Errorf("failed to get pull request: %w", err)
	}
	if pr == nil {
		return nil, fmt.Errorf("pull request not found")
	}

	reviews, err := host.ListReviews(ctx, owner, repo, c.Ref.Number)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	detail := pr.Clone()
	if detail.Repository == "" {
		detail.Repository = c.Ref.Repository
	}
	if detail.URL == "" {
		detail.URL = c.Hit.URL
	}
	if detail.Title == "" {
		detail.Title = c.Hit.Title
	}
	detail.ReviewState = ReduceReviews(reviews)

	return &DetailedItem{
		Key:         ExtractKey(detail.Branch, detail.Title),
		PullRequest: detail,
		Tags:        c.Tags,
	}, nil
}
