package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SourceTag records which search queries produced a pull request
type SourceTag uint8

const (
	SourceAuthoredOpen SourceTag = 1 << iota
	SourceAuthoredMerged
	SourceReviewRequested
	SourceReviewedBy
)

var sourceTagNames = []struct {
	tag  SourceTag
	name string
}{
	{SourceAuthoredOpen, "authored-open"},
	{SourceAuthoredMerged, "authored-merged"},
	{SourceReviewRequested, "review-requested"},
	{SourceReviewedBy, "reviewed-by"},
}

// Has returns true if every flag in other is set
func (t SourceTag) Has(other SourceTag) bool {
	return other != 0 && t&other == other
}

// Authored returns true if the pull request came from one of the authored queries
func (t SourceTag) Authored() bool {
	return t&(SourceAuthoredOpen|SourceAuthoredMerged) != 0
}

func (t SourceTag) String() string {
	var names []string
	for _, n := range sourceTagNames {
		if t&n.tag != 0 {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Stage is the canonical workflow stage of a ticket
type Stage int

const (
	StageUnknown Stage = iota
	StageToDo
	StageInAnalysis
	StageInProgress
	StageCodeReview
	StageReadyForQa
	StageInQa
	StageReadyForMerge
	StageBlocked
	StageProductReview
	StageDone
)

var stageNames = map[Stage]string{
	StageUnknown:       "Unknown",
	StageToDo:          "ToDo",
	StageInAnalysis:    "InAnalysis",
	StageInProgress:    "InProgress",
	StageCodeReview:    "CodeReview",
	StageReadyForQa:    "ReadyForQa",
	StageInQa:          "InQa",
	StageReadyForMerge: "ReadyForMerge",
	StageBlocked:       "Blocked",
	StageProductReview: "ProductReview",
	StageDone:          "Done",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Stage(%d)", int(s))
}

// MarshalJSON encodes the stage by name
func (s Stage) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// ParseStage parses a canonical stage name, ignoring case
func ParseStage(name string) (Stage, bool) {
	name = strings.TrimSpace(name)
	for stage, n := range stageNames {
		if strings.EqualFold(n, name) {
			return stage, true
		}
	}
	return StageUnknown, false
}

// Attention is the derived priority of a work item. Lower values sort first.
type Attention int

const (
	AttentionNeedsMyAttention Attention = iota
	AttentionWaitingOnOthers
	AttentionNone
	AttentionNeedsMyReview
	AttentionReviewed
)

var attentionNames = []string{
	"NeedsMyAttention",
	"WaitingOnOthers",
	"None",
	"NeedsMyReview",
	"Reviewed",
}

func (a Attention) String() string {
	if a >= 0 && int(a) < len(attentionNames) {
		return attentionNames[a]
	}
	return fmt.Sprintf("Attention(%d)", int(a))
}

// MarshalJSON encodes the attention level by name
func (a Attention) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// ParseAttention parses an attention name, ignoring case
func ParseAttention(name string) (Attention, error) {
	for i, n := range attentionNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Attention(i), nil
		}
	}
	return AttentionNone, fmt.Errorf("unknown attention level: %s", name)
}

// WorkItem is one row of the worklist
type WorkItem struct {
	Key          string        `json:"key"`
	Ticket       Ticket        `json:"ticket"`
	PullRequests []PullRequest `json:"pull_requests,omitempty"`
	Primary      *PullRequest  `json:"primary,omitempty"`
	Stage        Stage         `json:"stage"`
	Attention    Attention     `json:"attention"`
	Reason       string        `json:"reason,omitempty"`
	Stub         bool          `json:"stub,omitempty"`
	RefreshedAt  time.Time     `json:"refreshed_at"`
}

// FilterByAttention returns the items at the given attention level, in order.
// The result is never nil.
func FilterByAttention(items []WorkItem, attention Attention) []WorkItem {
	filtered := make([]WorkItem, 0, len(items))
	for _, item := range items {
		if item.Attention == attention {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
