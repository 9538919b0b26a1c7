package worklist

import (
	"context"
	"sort"
	"time"

	"workdesk/internal/logger"
	"workdesk/internal/model"

	"go.uber.org/zap"
)

// AssembleInput is everything fetched for one aggregation cycle
type AssembleInput struct {
	// MyTickets are the tickets returned by the initial tracker fetch
	MyTickets []model.Ticket
	// Lookup holds tickets fetched on demand for keys found on pull requests
	Lookup      []model.Ticket
	Items       []DetailedItem
	RefreshedAt time.Time
}

// Assembler merges the authored, review-requested, orphan and reviewed groups
// into one worklist in which every ticket key appears once
type Assembler struct {
	mapper *StageMapper
}

// NewAssembler creates an assembler using the given stage mapper
func NewAssembler(mapper *StageMapper) *Assembler {
	if mapper == nil {
		mapper = NewStageMapper(nil)
	}
	return &Assembler{mapper: mapper}
}

// keyedGroup collects pull requests sharing a ticket key, in first-seen order
type keyedGroup struct {
	order []string
	key   map[string]string
	prs   map[string][]model.PullRequest
}

func newKeyedGroup() *keyedGroup {
	return &keyedGroup{key: map[string]string{}, prs: map[string][]model.PullRequest{}}
}

func (g *keyedGroup) add(key string, pr model.PullRequest) {
	norm := model.NormalizeKey(key)
	if _, ok := g.prs[norm]; !ok {
		g.order = append(g.order, norm)
		g.key[norm] = key
	}
	g.prs[norm] = append(g.prs[norm], pr)
}

// assembly is the state of one Assemble call. It is used by a single goroutine.
type assembly struct {
	ctx         context.Context
	a           *Assembler
	claimed     map[string]struct{}
	tickets     map[string]model.Ticket
	refreshedAt time.Time
	items       []model.WorkItem
}

// claim reserves a key for the calling group; later groups skip it
func (s *assembly) claim(key string) bool {
	norm := model.NormalizeKey(key)
	if _, ok := s.claimed[norm]; ok {
		return false
	}
	s.claimed[norm] = struct{}{}
	return true
}

func (s *assembly) isClaimed(key string) bool {
	_, ok := s.claimed[model.NormalizeKey(key)]
	return ok
}

func (s *assembly) ticket(key string) (model.Ticket, bool) {
	t, ok := s.tickets[model.NormalizeKey(key)]
	return t, ok
}

// newItem builds a work item with owned pull request copies and a primary
func (s *assembly) newItem(ticket model.Ticket, prs []model.PullRequest, stage model.Stage, stub bool) model.WorkItem {
	owned := make([]model.PullRequest, 0, len(prs))
	for _, pr := range prs {
		owned = append(owned, pr.Clone())
	}
	SortPullRequests(owned)

	return model.WorkItem{
		Key:          ticket.Key,
		Ticket:       ticket,
		PullRequests: owned,
		Primary:      SelectPrimary(owned),
		Stage:        stage,
		Stub:         stub,
		RefreshedAt:  s.refreshedAt,
	}
}

func (s *assembly) addClassified(item model.WorkItem) {
	item.Attention, item.Reason = Classify(item.Ticket, item.Stage, item.Primary, item.PullRequests)
	s.items = append(s.items, item)
}

func (s *assembly) addReviewRequested(item model.WorkItem) {
	attention, reason := Classify(item.Ticket, item.Stage, item.Primary, item.PullRequests)
	item.Attention, item.Reason = ReviewAttention(attention, reason)
	s.items = append(s.items, item)
}

func (s *assembly) addFixed(item model.WorkItem, attention model.Attention, reason string) {
	item.Attention, item.Reason = attention, reason
	s.items = append(s.items, item)
}

// Assemble builds the sorted worklist. Groups are processed strictly in
// order: authored, review-requested, review-requested orphans, reviewed.
func (a *Assembler) Assemble(ctx context.Context, in AssembleInput) []model.WorkItem {
	s := &assembly{
		ctx:         ctx,
		a:           a,
		claimed:     make(map[string]struct{}),
		tickets:     make(map[string]model.Ticket),
		refreshedAt: in.RefreshedAt,
	}
	for _, t := range in.Lookup {
		s.tickets[model.NormalizeKey(t.Key)] = t
	}
	for _, t := range in.MyTickets {
		s.tickets[model.NormalizeKey(t.Key)] = t
	}

	authored := newKeyedGroup()
	requested := newKeyedGroup()
	reviewed := newKeyedGroup()
	var authoredOrphans, requestedOrphans, reviewedOrphans []model.PullRequest

	for _, it := range in.Items {
		switch {
		case it.Tags.Authored():
			if it.Key != "" {
				authored.add(it.Key, it.PullRequest)
			} else {
				authoredOrphans = append(authoredOrphans, it.PullRequest)
			}
		case it.Tags.Has(model.SourceReviewRequested):
			if it.Key != "" {
				requested.add(it.Key, it.PullRequest)
			} else {
				requestedOrphans = append(requestedOrphans, it.PullRequest)
			}
		case it.Tags.Has(model.SourceReviewedBy):
			if it.Key != "" {
				reviewed.add(it.Key, it.PullRequest)
			} else {
				reviewedOrphans = append(reviewedOrphans, it.PullRequest)
			}
		}
	}

	s.assembleAuthored(in.MyTickets, authored, authoredOrphans)
	s.assembleRequested(requested)
	s.assembleRequestedOrphans(requestedOrphans)
	s.assembleReviewed(reviewed, reviewedOrphans)

	SortWorkItems(s.items)
	return s.items
}

func (s *assembly) assembleAuthored(myTickets []model.Ticket, group *keyedGroup, orphans []model.PullRequest) {
	for _, t := range myTickets {
		if !s.claim(t.Key) {
			continue
		}
		prs := group.prs[model.NormalizeKey(t.Key)]
		s.addClassified(s.newItem(t, prs, s.a.mapper.Map(s.ctx, t.Status), false))
	}

	for _, norm := range group.order {
		if s.isClaimed(norm) {
			continue
		}
		if t, ok := s.ticket(norm); ok {
			s.claim(t.Key)
			s.addClassified(s.newItem(t, group.prs[norm], s.a.mapper.Map(s.ctx, t.Status), false))
			continue
		}

		logger.FromContext(s.ctx).Debug("No ticket found for key on authored pull requests",
			zap.String("key", group.key[norm]))
		orphans = append(orphans, group.prs[norm]...)
	}

	// merged orphans included: the stage stays CodeReview whatever the pull
	// request state
	for _, pr := range orphans {
		stub := model.NewStubTicket(pr)
		if !s.claim(stub.Key) {
			continue
		}
		s.addClassified(s.newItem(stub, []model.PullRequest{pr}, model.StageCodeReview, true))
	}
}

func (s *assembly) assembleRequested(group *keyedGroup) {
	for _, norm := range group.order {
		if s.isClaimed(norm) {
			continue
		}
		if t, ok := s.ticket(norm); ok {
			s.claim(t.Key)
			s.addReviewRequested(s.newItem(t, group.prs[norm], s.a.mapper.Map(s.ctx, t.Status), false))
			continue
		}

		for _, pr := range group.prs[norm] {
			stub := model.NewStubTicket(pr)
			if !s.claim(stub.Key) {
				continue
			}
			s.addReviewRequested(s.newItem(stub, []model.PullRequest{pr}, s.a.mapper.Map(s.ctx, stub.Status), true))
		}
	}
}

func (s *assembly) assembleRequestedOrphans(orphans []model.PullRequest) {
	for _, pr := range orphans {
		stub := model.NewStubTicket(pr)
		if !s.claim(stub.Key) {
			continue
		}
		// orphans stay in code review whatever the pull request state
		s.addFixed(s.newItem(stub, []model.PullRequest{pr}, model.StageCodeReview, true),
			model.AttentionNeedsMyReview, ReasonReviewRequested)
	}
}

func (s *assembly) assembleReviewed(group *keyedGroup, orphans []model.PullRequest) {
	for _, norm := range group.order {
		if s.isClaimed(norm) {
			continue
		}
		if t, ok := s.ticket(norm); ok {
			s.claim(t.Key)
			s.addFixed(s.newItem(t, group.prs[norm], s.a.mapper.Map(s.ctx, t.Status), false),
				model.AttentionReviewed, ReasonReviewSubmitted)
			continue
		}
		for _, pr := range group.prs[norm] {
			stub := model.NewStubTicket(pr)
			if !s.claim(stub.Key) {
				continue
			}
			s.addFixed(s.newItem(stub, []model.PullRequest{pr}, s.a.mapper.Map(s.ctx, stub.Status), true),
				model.AttentionReviewed, ReasonReviewSubmitted)
		}
	}

	for _, pr := range orphans {
		stub := model.NewStubTicket(pr)
		if !s.claim(stub.Key) {
			continue
		}
		s.addFixed(s.newItem(stub, []model.PullRequest{pr}, model.StageCodeReview, true),
			model.AttentionReviewed, ReasonReviewSubmitted)
	}
}

// SortWorkItems orders items by attention, then by most recently updated
// ticket. Items without an update time sort last within their level.
func SortWorkItems(items []model.WorkItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Attention != items[j].Attention {
			return items[i].Attention < items[j].Attention
		}
		return items[i].Ticket.Updated.After(items[j].Ticket.Updated)
	})
}

// LookupKeys returns the ticket keys found on pull requests that the initial
// tracker fetch did not return, in first-seen order
func LookupKeys(myTickets []model.Ticket, items []DetailedItem) []string {
	known := make(map[string]struct{}, len(myTickets))
	for _, t := range myTickets {
		known[model.NormalizeKey(t.Key)] = struct{}{}
	}

	var keys []string
	for _, it := range items {
		if it.Key == "" {
			continue
		}
		norm := model.NormalizeKey(it.Key)
		if _, ok := known[norm]; ok {
			continue
		}
		known[norm] = struct{}{}
		keys = append(keys, it.Key)
	}
	return keys
}
