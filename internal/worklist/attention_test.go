package worklist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workdesk/internal/model"
)

func openPR(number int, updated time.Time) model.PullRequest {
	return model.PullRequest{Number: number, Repository: "acme/api", State: model.PRStateOpen, Updated: updated}
}

func TestClassify(t *testing.T) {
	now := time.Now()
	draft := openPR(1, now)
	draft.Draft = true
	ready := openPR(2, now)
	merged := model.PullRequest{Number: 3, State: model.PRStateMerged, Updated: now}

	changes := openPR(4, now)
	changes.ReviewState = model.ReviewStateChangesRequested
	approvedPending := openPR(5, now)
	approvedPending.ReviewState = model.ReviewStateApproved
	approvedPending.PendingReviewers = []string{"carol"}
	approved := openPR(6, now)
	approved.ReviewState = model.ReviewStateApproved
	pending := openPR(7, now)
	pending.ReviewState = model.ReviewStatePending

	ticket := model.Ticket{Key: "PM-1"}
	futureTicket := model.Ticket{Key: "PM-2", Sprint: &model.Sprint{Name: "Sprint 42", State: "FUTURE"}}

	tests := []struct {
		name      string
		ticket    model.Ticket
		stage     model.Stage
		primary   *model.PullRequest
		prs       []model.PullRequest
		attention model.Attention
		reason    string
	}{
		{"future sprint overrides to do", futureTicket, model.StageToDo, nil, nil, model.AttentionNone, "Future sprint (Sprint 42)"},
		{"future sprint overrides ready for merge", futureTicket, model.StageReadyForMerge, &ready, []model.PullRequest{ready}, model.AttentionNone, "Future sprint (Sprint 42)"},
		{"to do", ticket, model.StageToDo, nil, nil, model.AttentionNeedsMyAttention, ReasonStartWork},
		{"in analysis", ticket, model.StageInAnalysis, nil, nil, model.AttentionNeedsMyAttention, ReasonInAnalysis},
		{"in progress no pr", ticket, model.StageInProgress, nil, nil, model.AttentionNeedsMyAttention, ReasonCreatePR},
		{"in progress draft only", ticket, model.StageInProgress, &draft, []model.PullRequest{draft}, model.AttentionNone, ""},
		{"in progress ready pr", ticket, model.StageInProgress, &ready, []model.PullRequest{draft, ready}, model.AttentionNeedsMyAttention, ReasonMoveToCodeReview},
		{"in progress only merged pr", ticket, model.StageInProgress, &merged, []model.PullRequest{merged}, model.AttentionNone, ""},
		{"code review changes requested", ticket, model.StageCodeReview, &changes, []model.PullRequest{changes}, model.AttentionNeedsMyAttention, ReasonAddressFeedback},
		{"code review approved pending reviewers", ticket, model.StageCodeReview, &approvedPending, []model.PullRequest{approvedPending}, model.AttentionWaitingOnOthers, ReasonRemainingReviewers},
		{"code review approved", ticket, model.StageCodeReview, &approved, []model.PullRequest{approved}, model.AttentionNeedsMyAttention, ReasonApproved},
		{"code review pending", ticket, model.StageCodeReview, &pending, []model.PullRequest{pending}, model.AttentionWaitingOnOthers, ReasonWaitingCodeReview},
		{"code review no pr", ticket, model.StageCodeReview, nil, nil, model.AttentionWaitingOnOthers, ReasonWaitingCodeReview},
		{"ready for qa", ticket, model.StageReadyForQa, nil, nil, model.AttentionWaitingOnOthers, ReasonWaitingQA},
		{"in qa", ticket, model.StageInQa, nil, nil, model.AttentionWaitingOnOthers, ReasonInQA},
		{"ready for merge", ticket, model.StageReadyForMerge, nil, nil, model.AttentionNeedsMyAttention, ReasonMerge},
		{"blocked", ticket, model.StageBlocked, nil, nil, model.AttentionWaitingOnOthers, ReasonBlocked},
		{"product review", ticket, model.StageProductReview, nil, nil, model.AttentionWaitingOnOthers, ReasonProductReview},
		{"done", ticket, model.StageDone, &merged, []model.PullRequest{merged}, model.AttentionNone, ""},
		{"unknown", ticket, model.StageUnknown, nil, nil, model.AttentionNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attention, reason := Classify(tt.ticket, tt.stage, tt.primary, tt.prs)
			assert.Equal(t, tt.attention, attention)
			assert.Equal(t, tt.reason, reason)

			// deterministic
			again, againReason := Classify(tt.ticket, tt.stage, tt.primary, tt.prs)
			assert.Equal(t, attention, again)
			assert.Equal(t, reason, againReason)
		})
	}
}

func TestReviewAttention(t *testing.T) {
	a, r := ReviewAttention(model.AttentionWaitingOnOthers, ReasonWaitingCodeReview)
	assert.Equal(t, model.AttentionNeedsMyReview, a)
	assert.Equal(t, ReasonReviewRequested, r)

	a, r = ReviewAttention(model.AttentionNone, "")
	assert.Equal(t, model.AttentionNeedsMyReview, a)
	assert.Equal(t, ReasonReviewRequested, r)

	a, r = ReviewAttention(model.AttentionNeedsMyAttention, ReasonApproved)
	assert.Equal(t, model.AttentionWaitingOnOthers, a)
	assert.Equal(t, ReasonApproved, r)
}

func TestSelectPrimary(t *testing.T) {
	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)

	oldReady := openPR(1, base)
	newReady := openPR(2, base.Add(time.Hour))
	newestDraft := openPR(3, base.Add(2*time.Hour))
	newestDraft.Draft = true
	newestMerged := model.PullRequest{Number: 4, State: model.PRStateMerged, Updated: base.Add(3 * time.Hour)}

	assert.Nil(t, SelectPrimary(nil))

	primary := SelectPrimary([]model.PullRequest{newestMerged, oldReady, newestDraft, newReady})
	require.NotNil(t, primary)
	assert.Equal(t, 2, primary.Number)

	primary = SelectPrimary([]model.PullRequest{newestMerged, newestDraft})
	require.NotNil(t, primary)
	assert.Equal(t, 3, primary.Number)

	primary = SelectPrimary([]model.PullRequest{newestMerged})
	require.NotNil(t, primary)
	assert.Equal(t, 4, primary.Number)
}

func TestSortPullRequests(t *testing.T) {
	base := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	closed := model.PullRequest{Number: 1, State: model.PRStateClosed, Updated: base.Add(5 * time.Hour)}
	draft := openPR(2, base.Add(4*time.Hour))
	draft.Draft = true
	ready := openPR(3, base)

	prs := []model.PullRequest{closed, draft, ready}
	SortPullRequests(prs)

	assert.Equal(t, []int{3, 2, 1}, []int{prs[0].Number, prs[1].Number, prs[2].Number})
}
