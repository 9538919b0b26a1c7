package worklist

import (
	"fmt"
	"sort"

	"workdesk/internal/model"
)

// Reasons shown next to a work item
const (
	ReasonStartWork          = "Start work on this ticket"
	ReasonInAnalysis         = "In analysis"
	ReasonCreatePR           = "Create a branch and PR"
	ReasonMoveToCodeReview   = "PR is open — move ticket to Code Review?"
	ReasonAddressFeedback    = "Address review feedback"
	ReasonRemainingReviewers = "Waiting for remaining reviewers"
	ReasonApproved           = "PR approved — move to QA or merge"
	ReasonWaitingCodeReview  = "Waiting for code review"
	ReasonWaitingQA          = "Waiting for QA"
	ReasonInQA               = "In QA testing"
	ReasonMerge              = "Merge the PR"
	ReasonBlocked            = "Blocked"
	ReasonProductReview      = "Waiting for product review"
	ReasonReviewRequested    = "Review requested"
	ReasonReviewSubmitted    = "Review submitted"
)

// classifyInput is what every attention rule sees
type classifyInput struct {
	ticket  model.Ticket
	stage   model.Stage
	primary *model.PullRequest
	prs     []model.PullRequest
}

func (in classifyInput) hasReadyOpen() bool {
	for i := range in.prs {
		if in.prs[i].IsReadyOpen() {
			return true
		}
	}
	return false
}

func (in classifyInput) hasDraftOpen() bool {
	for i := range in.prs {
		if in.prs[i].IsOpen() && in.prs[i].Draft {
			return true
		}
	}
	return false
}

func (in classifyInput) primaryReview(state model.ReviewState) bool {
	return in.primary != nil && in.primary.ReviewState == state
}

// attentionRule is one row of the decision table
type attentionRule struct {
	name      string
	matches   func(in classifyInput) bool
	attention model.Attention
	reason    func(in classifyInput) string
}

func fixed(reason string) func(classifyInput) string {
	return func(classifyInput) string { return reason }
}

func stageIs(stage model.Stage) func(classifyInput) bool {
	return func(in classifyInput) bool { return in.stage == stage }
}

// attentionRules is evaluated top to bottom; the first matching row wins
var attentionRules = []attentionRule{
	{
		name:      "future sprint",
		matches:   func(in classifyInput) bool { return in.ticket.Sprint.IsFuture() },
		attention: model.AttentionNone,
		reason:    func(in classifyInput) string { return fmt.Sprintf("Future sprint (%s)", in.ticket.Sprint.Name) },
	},
	{
		name:      "to do",
		matches:   stageIs(model.StageToDo),
		attention: model.AttentionNeedsMyAttention,
		reason:    fixed(ReasonStartWork),
	},
	{
		name:      "in analysis",
		matches:   stageIs(model.StageInAnalysis),
		attention: model.AttentionNeedsMyAttention,
		reason:    fixed(ReasonInAnalysis),
	},
	{
		name: "in progress without pull request",
		matches: func(in classifyInput) bool {
			return in.stage == model.StageInProgress && len(in.prs) == 0
		},
		attention: model.AttentionNeedsMyAttention,
		reason:    fixed(ReasonCreatePR),
	},
	{
		name: "in progress with draft only",
		matches: func(in classifyInput) bool {
			return in.stage == model.StageInProgress && in.hasDraftOpen() && !in.hasReadyOpen()
		},
		attention: model.AttentionNone,
		reason:    fixed(""),
	},
	{
		name: "in progress with open pull request",
		matches: func(in classifyInput) bool {
			return in.stage == model.StageInProgress && in.hasReadyOpen()
		},
		attention: model.AttentionNeedsMyAttention,
		reason:    fixed(ReasonMoveToCodeReview),
	},
	{
		name: "code review with changes requested",
		matches: func(in classifyInput) bool {
			return in.stage == model.StageCodeReview && in.primaryReview(model.ReviewStateChangesRequested)
		},
		attention: model.AttentionNeedsMyAttention,
		reason:    fixed(ReasonAddressFeedback),
	},
	{
		name: "code review approved with pending reviewers",
		matches: func(in classifyInput) bool {
			return in.stage == model.StageCodeReview && in.primaryReview(model.ReviewStateApproved) &&
				in.primary.HasPendingReviewers()
		},
		attention: model.AttentionWaitingOnOthers,
		reason:    fixed(ReasonRemainingReviewers),
	},
	{
		name: "code review approved",
		matches: func(in classifyInput) bool {
			return in.stage == model.StageCodeReview && in.primaryReview(model.ReviewStateApproved)
		},
		attention: model.AttentionNeedsMyAttention,
		reason:    fixed(ReasonApproved),
	},
	{
		name:      "code review",
		matches:   stageIs(model.StageCodeReview),
		attention: model.AttentionWaitingOnOthers,
		reason:    fixed(ReasonWaitingCodeReview),
	},
	{
		name:      "ready for qa",
		matches:   stageIs(model.StageReadyForQa),
		attention: model.AttentionWaitingOnOthers,
		reason:    fixed(ReasonWaitingQA),
	},
	{
		name:      "in qa",
		matches:   stageIs(model.StageInQa),
		attention: model.AttentionWaitingOnOthers,
		reason:    fixed(ReasonInQA),
	},
	{
		name:      "ready for merge",
		matches:   stageIs(model.StageReadyForMerge),
		attention: model.AttentionNeedsMyAttention,
		reason:    fixed(ReasonMerge),
	},
	{
		name:      "blocked",
		matches:   stageIs(model.StageBlocked),
		attention: model.AttentionWaitingOnOthers,
		reason:    fixed(ReasonBlocked),
	},
	{
		name:      "product review",
		matches:   stageIs(model.StageProductReview),
		attention: model.AttentionWaitingOnOthers,
		reason:    fixed(ReasonProductReview),
	},
}

// Classify derives the attention level and reason of a ticket from its stage
// and pull requests. Stages without a row (Done, Unknown) yield AttentionNone.
func Classify(ticket model.Ticket, stage model.Stage, primary *model.PullRequest, prs []model.PullRequest) (model.Attention, string) {
	in := classifyInput{ticket: ticket, stage: stage, primary: primary, prs: prs}
	for _, rule := range attentionRules {
		if rule.matches(in) {
			return rule.attention, rule.reason(in)
		}
	}
	return model.AttentionNone, ""
}

// ReviewAttention re-interprets a ticket-level classification for an item the
// actor was asked to review. The ticket's own pending work still wins.
func ReviewAttention(ticketAttention model.Attention, reason string) (model.Attention, string) {
	switch ticketAttention {
	case model.AttentionWaitingOnOthers, model.AttentionNone:
		return model.AttentionNeedsMyReview, ReasonReviewRequested
	default:
		return model.AttentionWaitingOnOthers, reason
	}
}

func primaryRank(pr *model.PullRequest) int {
	switch {
	case pr.IsReadyOpen():
		return 0
	case pr.IsOpen():
		return 1
	default:
		return 2
	}
}

// SortPullRequests orders pull requests by relevance: open non-draft first,
// then drafts, then closed or merged; most recently updated first within a rank.
func SortPullRequests(prs []model.PullRequest) {
	sort.SliceStable(prs, func(i, j int) bool {
		ri, rj := primaryRank(&prs[i]), primaryRank(&prs[j])
		if ri != rj {
			return ri < rj
		}
		return prs[i].Updated.After(prs[j].Updated)
	})
}

// SelectPrimary returns the most relevant pull request, or nil for none
func SelectPrimary(prs []model.PullRequest) *model.PullRequest {
	if len(prs) == 0 {
		return nil
	}
	sorted := make([]model.PullRequest, len(prs))
	copy(sorted, prs)
	SortPullRequests(sorted)
	primary := sorted[0].Clone()
	return &primary
}
