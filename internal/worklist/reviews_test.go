package worklist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"workdesk/internal/model"
)

func TestReduceReviews(t *testing.T) {
	t1 := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t2.Add(time.Hour)

	tests := []struct {
		name     string
		events   []model.ReviewEvent
		expected model.ReviewState
	}{
		{
			name:     "no reviews",
			events:   nil,
			expected: model.ReviewStateNone,
		},
		{
			name: "only comments",
			events: []model.ReviewEvent{
				{Reviewer: "alice", State: "COMMENTED", SubmittedAt: t1},
			},
			expected: model.ReviewStatePending,
		},
		{
			name: "single approval",
			events: []model.ReviewEvent{
				{Reviewer: "alice", State: "APPROVED", SubmittedAt: t1},
				{Reviewer: "bob", State: "COMMENTED", SubmittedAt: t2},
			},
			expected: model.ReviewStateApproved,
		},
		{
			name: "latest per reviewer with changes requested precedence",
			events: []model.ReviewEvent{
				{Reviewer: "alice", State: "APPROVED", SubmittedAt: t1},
				{Reviewer: "alice", State: "CHANGES_REQUESTED", SubmittedAt: t2},
				{Reviewer: "bob", State: "APPROVED", SubmittedAt: t3},
			},
			expected: model.ReviewStateChangesRequested,
		},
		{
			name: "changes requested superseded by later approval",
			events: []model.ReviewEvent{
				{Reviewer: "alice", State: "CHANGES_REQUESTED", SubmittedAt: t1},
				{Reviewer: "alice", State: "APPROVED", SubmittedAt: t2},
			},
			expected: model.ReviewStateApproved,
		},
		{
			name: "event order does not matter",
			events: []model.ReviewEvent{
				{Reviewer: "alice", State: "APPROVED", SubmittedAt: t3},
				{Reviewer: "alice", State: "CHANGES_REQUESTED", SubmittedAt: t1},
			},
			expected: model.ReviewStateApproved,
		},
		{
			name: "comment after approval does not reset verdict",
			events: []model.ReviewEvent{
				{Reviewer: "alice", State: "approved", SubmittedAt: t1},
				{Reviewer: "alice", State: "commented", SubmittedAt: t2},
			},
			expected: model.ReviewStateApproved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ReduceReviews(tt.events))
		})
	}
}
