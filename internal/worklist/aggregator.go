package worklist

import (
	"context"
	"fmt"
	"time"

	"workdesk/internal/logger"
	"workdesk/internal/model"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DefaultMergedWindow is how far back merged pull requests are searched
const DefaultMergedWindow = 7 * 24 * time.Hour

// Options configures an Aggregator
type Options struct {
	// Token is the code host access token; only its presence is checked here
	Token        string
	Organization string
	// Actor is the code host login. When empty it is resolved from the token.
	Actor             string
	DetailConcurrency int
	MergedWindow      time.Duration
	StatusMap         map[string]string
	// Now overrides the clock, for tests
	Now func() time.Time
}

// Aggregator produces the worklist from a tracker and a code host
type Aggregator struct {
	tracker   Tracker
	host      CodeHost
	opts      Options
	assembler *Assembler
}

// NewAggregator creates a new aggregator
func NewAggregator(tracker Tracker, host CodeHost, opts Options) *Aggregator {
	if opts.DetailConcurrency <= 0 {
		opts.DetailConcurrency = DefaultDetailConcurrency
	}
	if opts.MergedWindow <= 0 {
		opts.MergedWindow = DefaultMergedWindow
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Aggregator{
		tracker:   tracker,
		host:      host,
		opts:      opts,
		assembler: NewAssembler(NewStageMapper(opts.StatusMap)),
	}
}

// Validate checks that credentials and scope are present
func (a *Aggregator) Validate() error {
	if a.opts.Token == "" {
		return fmt.Errorf("%w: code host token is not set", ErrConfiguration)
	}
	if a.opts.Organization == "" {
		return fmt.Errorf("%w: organization is not set", ErrConfiguration)
	}
	return nil
}

// Aggregate runs one full cycle and returns the sorted worklist. Top-level
// fetch failures are returned; per pull request failures are logged and the
// item is left out. progress may be nil.
func (a *Aggregator) Aggregate(ctx context.Context, progress ProgressFunc) ([]model.WorkItem, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	log := logger.FromContext(ctx)
	now := a.opts.Now()

	actor := a.opts.Actor
	if actor == "" {
		login, err := a.host.CurrentUser(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get authenticated user: %w", err)
		}
		actor = login
	}
	log.Debug("Aggregating worklist", zap.String("actor", actor), zap.String("organization", a.opts.Organization))

	var (
		myTickets []model.Ticket
		items     []DetailedItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tickets, err := a.tracker.MyTickets(gctx)
		if err != nil {
			return fmt.Errorf("failed to fetch tickets: %w", err)
		}
		myTickets = tickets
		return nil
	})
	g.Go(func() error {
		candidates, err := FetchSources(gctx, a.host, SourceOptions{
			Actor:        actor,
			Organization: a.opts.Organization,
			MergedWindow: a.opts.MergedWindow,
			Now:          now,
		})
		if err != nil {
			return err
		}
		progress.report(fmt.Sprintf("Found %d unique pull requests", len(candidates)))

		detailed, err := FetchDetails(gctx, a.host, candidates, a.opts.DetailConcurrency)
		if err != nil {
			return err
		}
		items = detailed
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	progress.report(fmt.Sprintf("Fetched %d tickets", len(myTickets)))
	progress.report(fmt.Sprintf("Fetched details for %d pull requests", len(items)))

	lookup := a.lookupTickets(ctx, LookupKeys(myTickets, items))
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	progress.report(fmt.Sprintf("Resolved %d additional tickets", len(lookup)))

	worklist := a.assembler.Assemble(ctx, AssembleInput{
		MyTickets:   myTickets,
		Lookup:      lookup,
		Items:       items,
		RefreshedAt: now,
	})
	progress.report(fmt.Sprintf("Assembled %d work items", len(worklist)))

	log.Info("Worklist aggregated",
		zap.Int("tickets", len(myTickets)),
		zap.Int("pull_requests", len(items)),
		zap.Int("work_items", len(worklist)))
	return worklist, nil
}

// lookupTickets fetches tickets referenced by pull requests but missing from
// the initial fetch. A failed lookup degrades those items to stub tickets.
func (a *Aggregator) lookupTickets(ctx context.Context, keys []string) []model.Ticket {
	if len(keys) == 0 {
		return nil
	}

	log := logger.FromContext(ctx)
	tickets, err := a.tracker.TicketsByKeys(ctx, keys)
	if err != nil {
		log.Warn("Failed to look up tickets referenced by pull requests",
			zap.Strings("keys", keys),
			zap.Error(err))
		return nil
	}
	return tickets
}
