package model

import (
	"strings"
	"time"
)

// PRState is the lifecycle state of a pull request
type PRState string

const (
	PRStateOpen   PRState = "open"
	PRStateClosed PRState = "closed"
	PRStateMerged PRState = "merged"
)

// ReviewState is the collapsed review verdict of a pull request.
// The empty value means no review data at all.
type ReviewState string

const (
	ReviewStateNone             ReviewState = ""
	ReviewStatePending          ReviewState = "pending"
	ReviewStateApproved         ReviewState = "approved"
	ReviewStateChangesRequested ReviewState = "changes_requested"
)

// PullRequest contains information about a pull request
type PullRequest struct {
	Number           int         `json:"number"`
	Title            string      `json:"title"`
	URL              string      `json:"url"`
	Repository       string      `json:"repository"` // owner/repo format
	Branch           string      `json:"branch"`
	State            PRState     `json:"state"`
	Draft            bool        `json:"draft"`
	ReviewState      ReviewState `json:"review_state,omitempty"`
	PendingReviewers []string    `json:"pending_reviewers,omitempty"`
	Labels           []string    `json:"labels,omitempty"`
	Updated          time.Time   `json:"updated"`
}

// IsOpen returns true for open pull requests, drafts included
func (p *PullRequest) IsOpen() bool {
	return p.State == PRStateOpen
}

// IsReadyOpen returns true for open pull requests that are not drafts
func (p *PullRequest) IsReadyOpen() bool {
	return p.State == PRStateOpen && !p.Draft
}

// HasPendingReviewers returns true if review is still requested from someone
func (p *PullRequest) HasPendingReviewers() bool {
	return len(p.PendingReviewers) > 0
}

// Clone returns a copy that shares no slices with the receiver
func (p PullRequest) Clone() PullRequest {
	c := p
	if p.PendingReviewers != nil {
		c.PendingReviewers = append([]string(nil), p.PendingReviewers...)
	}
	if p.Labels != nil {
		c.Labels = append([]string(nil), p.Labels...)
	}
	return c
}

// ParsePRState maps a code-host state and merged flag to a PRState
func ParsePRState(state string, merged bool) PRState {
	if merged {
		return PRStateMerged
	}
	switch strings.ToLower(state) {
	case "open":
		return PRStateOpen
	case "merged":
		return PRStateMerged
	default:
		return PRStateClosed
	}
}

// SearchHit is a lightweight search result returned by the code host
type SearchHit struct {
	Number     int    `json:"number"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	Repository string `json:"repository,omitempty"` // may be empty in some search result shapes
}

// ReviewEvent is a single submitted review on a pull request
type ReviewEvent struct {
	Reviewer    string    `json:"reviewer"`
	State       string    `json:"state"`
	SubmittedAt time.Time `json:"submitted_at"`
}
