package worklist

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"workdesk/internal/logger"
	"workdesk/internal/model"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ItemRef identifies a pull request across repositories
type ItemRef struct {
	Repository string // owner/repo
	Number     int
}

func (r ItemRef) String() string {
	return fmt.Sprintf("%s#%d", r.Repository, r.Number)
}

// Candidate is a deduplicated search hit with the union of its source tags
type Candidate struct {
	Ref  ItemRef
	Hit  model.SearchHit
	Tags model.SourceTag
}

// SourceQuery is one search issued against the code host
type SourceQuery struct {
	Tag   model.SourceTag
	Query string
}

// SourceOptions scopes the source searches
type SourceOptions struct {
	Actor        string
	Organization string
	MergedWindow time.Duration
	Now          time.Time
}

// BuildSourceQueries returns the four overlapping searches for an actor
func BuildSourceQueries(opts SourceOptions) []SourceQuery {
	// the search API reads qualifier dates as UTC
	since := opts.Now.UTC().Add(-opts.MergedWindow).Format("2006-01-02")
	scope := "org:" + opts.Organization
	return []SourceQuery{
		{
			Tag:   model.SourceAuthoredOpen,
			Query: fmt.Sprintf("is:pr is:open author:%s %s", opts.Actor, scope),
		},
		{
			Tag:   model.SourceAuthoredMerged,
			Query: fmt.Sprintf("is:pr is:merged author:%s %s merged:>=%s", opts.Actor, scope, since),
		},
		{
			Tag:   model.SourceReviewRequested,
			Query: fmt.Sprintf("is:pr is:open review-requested:%s %s", opts.Actor, scope),
		},
		{
			Tag:   model.SourceReviewedBy,
			Query: fmt.Sprintf("is:pr is:open reviewed-by:%s -author:%s %s", opts.Actor, opts.Actor, scope),
		},
	}
}

// FetchSources runs the source searches in parallel and merges the hits by
// (repository, number), OR-ing the tags of every query that found a hit.
func FetchSources(ctx context.Context, host CodeHost, opts SourceOptions) ([]Candidate, error) {
	if opts.Actor == "" {
		return nil, fmt.Errorf("%w: code host user is not set", ErrConfiguration)
	}
	if opts.Organization == "" {
		return nil, fmt.Errorf("%w: organization is not set", ErrConfiguration)
	}

	log := logger.FromContext(ctx)
	queries := BuildSourceQueries(opts)
	results := make([][]model.SearchHit, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			log.Debug("Searching pull requests", zap.String("query", q.Query), zap.Stringer("source", q.Tag))
			hits, err := host.SearchPullRequests(gctx, q.Query)
			if err != nil {
				return fmt.Errorf("failed to search %s pull requests: %w", q.Tag, err)
			}
			log.Debug("Search returned results", zap.Stringer("source", q.Tag), zap.Int("count", len(hits)))
			results[i] = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return mergeSources(ctx, queries, results), nil
}

// mergeSources deduplicates hits single-threaded once all searches completed
func mergeSources(ctx context.Context, queries []SourceQuery, results [][]model.SearchHit) []Candidate {
	log := logger.FromContext(ctx)
	byRef := make(map[ItemRef]*Candidate)

	for i, hits := range results {
		for _, hit := range hits {
			repoName, err := RepositoryFromHit(hit)
			if err != nil {
				log.Warn("Skipping search result without repository",
					zap.Int("number", hit.Number),
					zap.String("url", hit.URL),
					zap.Error(err))
				continue
			}

			ref := ItemRef{Repository: repoName, Number: hit.Number}
			if existing, ok := byRef[ref]; ok {
				existing.Tags |= queries[i].Tag
				continue
			}
			hit.Repository = repoName
			byRef[ref] = &Candidate{Ref: ref, Hit: hit, Tags: queries[i].Tag}
		}
	}

	candidates := make([]Candidate, 0, len(byRef))
	for _, c := range byRef {
		candidates = append(candidates, *c)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Ref.Repository != candidates[j].Ref.Repository {
			return candidates[i].Ref.Repository < candidates[j].Ref.Repository
		}
		return candidates[i].Ref.Number < candidates[j].Ref.Number
	})
	return candidates
}

// RepositoryFromHit returns the "owner/repo" of a search hit. The structured
// field is preferred; some search result shapes omit it, in which case the
// web URL (https://host/owner/repo/pull/123) is parsed instead.
func RepositoryFromHit(hit model.SearchHit) (string, error) {
	if hit.Repository != "" {
		return hit.Repository, nil
	}
	if hit.URL == "" {
		return "", fmt.Errorf("no repository and no URL")
	}

	u, err := url.Parse(hit.URL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", hit.URL, err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("could not parse repository from URL %q", hit.URL)
	}
	return parts[0] + "/" + parts[1], nil
}

// SplitRepository parses a repository string in "owner/repo" format
func SplitRepository(repository string) (owner, repo string, err error) {
	parts := strings.Split(repository, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repository must be in format 'owner/repo', got: %s", repository)
	}
	return parts[0], parts[1], nil
}
