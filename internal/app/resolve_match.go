package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/Amund211/riftlight/internal/adapters/matchrepository"
	"github.com/Amund211/riftlight/internal/adapters/riotapi"
	"github.com/Amund211/riftlight/internal/domain"
	"github.com/Amund211/riftlight/internal/logging"
	"github.com/Amund211/riftlight/internal/reporting"
	"github.com/Amund211/riftlight/internal/timeline"
	"github.com/Amund211/riftlight/internal/transform"
	"golang.org/x/sync/errgroup"
)

type ResolveMatch func(ctx context.Context, region, matchID string, forceRefresh bool) (Resolved[domain.Match], error)

type matchDetailUpstream interface {
	GetMatch(ctx context.Context, region, matchID string) (riotapi.MatchDTO, error)
	GetTimeline(ctx context.Context, region, matchID string) (riotapi.TimelineDTO, error)
}

type matchByIDStore interface {
	FindMatchesByIDs(ctx context.Context, matchIDs []string, includeTimeline bool) ([]matchrepository.MatchRecord, error)
	SaveMatch(ctx context.Context, match domain.Match, frames []timeline.Frame) (bool, error)
}

// fetchMatch gets the match detail and its timeline concurrently.
// A failure in either fails the match.
func fetchMatch(ctx context.Context, upstream matchDetailUpstream, catalog transform.Catalog, region, matchID string) (PendingMatch, error) {
	getCtx, cancel := context.WithTimeout(ctx, upstreamTimeout)
	defer cancel()

	var (
		detail        riotapi.MatchDTO
		matchTimeline riotapi.TimelineDTO
	)

	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		detail, err = upstream.GetMatch(getCtx, region, matchID)
		if err != nil {
			return fmt.Errorf("could not get match: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		matchTimeline, err = upstream.GetTimeline(getCtx, region, matchID)
		if err != nil {
			return fmt.Errorf("could not get timeline: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		// NOTE: Upstream implementations handle their own error reporting
		return PendingMatch{}, err
	}

	match, err := transform.MatchFromAPI(region, detail, &matchTimeline, catalog)
	if err != nil {
		reporting.Report(ctx, err, map[string]string{
			"matchID": matchID,
			"region":  region,
		})
		return PendingMatch{}, fmt.Errorf("failed to convert match: %w", err)
	}

	return PendingMatch{Match: match, Frames: matchTimeline.Info.Frames}, nil
}

func findStoredMatch(ctx context.Context, store matchByIDStore, catalog transform.Catalog, matchID string) (domain.Match, error) {
	records, err := store.FindMatchesByIDs(ctx, []string{matchID}, true)
	if err != nil {
		// NOTE: Repository implementations handle their own error reporting
		return domain.Match{}, fmt.Errorf("failed to read match: %w", err)
	}
	if len(records) == 0 {
		return domain.Match{}, domain.ErrMatchNotFound
	}

	match, err := transform.MatchFromRecord(records[0], catalog)
	if err != nil {
		reporting.Report(ctx, err, map[string]string{
			"matchID": matchID,
		})
		return domain.Match{}, fmt.Errorf("failed to convert stored match: %w", err)
	}

	return match, nil
}

// BuildResolveMatch resolves a single match including the timelines of all participants
func BuildResolveMatch(upstream matchDetailUpstream, store matchByIDStore, catalog transform.Catalog) ResolveMatch {
	return func(ctx context.Context, region, matchID string, forceRefresh bool) (Resolved[domain.Match], error) {
		logger := logging.FromContext(ctx)

		normalizedRegion, err := riotapi.NormalizeRegion(region)
		if err != nil {
			return Resolved[domain.Match]{}, err
		}
		if matchID == "" {
			return Resolved[domain.Match]{}, fmt.Errorf("%w: missing match id", domain.ErrValidation)
		}

		if !forceRefresh {
			match, err := findStoredMatch(ctx, store, catalog, matchID)
			if err == nil {
				return fromStore(match), nil
			} else if !errors.Is(err, domain.ErrMatchNotFound) {
				logger.ErrorContext(ctx, "failed to read match from store", "error", err.Error())
			}
		}

		pending, err := fetchMatch(ctx, upstream, catalog, normalizedRegion, matchID)
		if errors.Is(err, domain.ErrNotFound) {
			return Resolved[domain.Match]{}, fmt.Errorf("%w: %w", domain.ErrMatchNotFound, err)
		} else if err != nil {
			if forceRefresh {
				if match, storeErr := findStoredMatch(ctx, store, catalog, matchID); storeErr == nil {
					logger.WarnContext(ctx, "falling back to stored match", "error", err.Error())
					return fromStaleStore(match), nil
				}
			}
			return Resolved[domain.Match]{}, err
		}

		persisted, persistErr := persist(ctx, "match", persistMatchTimeout, func(ctx context.Context) error {
			_, err := store.SaveMatch(ctx, pending.Match, pending.Frames)
			return err
		})

		return Resolved[domain.Match]{
			Data:       pending.Match,
			Source:     SourceUpstream,
			Persisted:  persisted,
			PersistErr: persistErr,
		}, nil
	}
}
