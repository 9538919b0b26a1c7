package worklist

import (
	"strings"

	"workdesk/internal/model"
)

const (
	reviewApproved         = "approved"
	reviewChangesRequested = "changes_requested"
)

// ReduceReviews collapses review events into a single verdict.
// Only the latest approve/changes-requested event of each reviewer counts, and a
// single changes-requested verdict outweighs any number of approvals.
func ReduceReviews(events []model.ReviewEvent) model.ReviewState {
	if len(events) == 0 {
		return model.ReviewStateNone
	}

	// Group reviews by reviewer and keep the latest from each
	latest := make(map[string]model.ReviewEvent)
	for _, ev := range events {
		state := strings.ToLower(ev.State)
		if state != reviewApproved && state != reviewChangesRequested {
			continue
		}
		if existing, ok := latest[ev.Reviewer]; !ok || ev.SubmittedAt.After(existing.SubmittedAt) {
			latest[ev.Reviewer] = ev
		}
	}

	approved := false
	for _, ev := range latest {
		switch strings.ToLower(ev.State) {
		case reviewChangesRequested:
			return model.ReviewStateChangesRequested
		case reviewApproved:
			approved = true
		}
	}

	if approved {
		return model.ReviewStateApproved
	}
	return model.ReviewStatePending
}
