package app

import (
	"context"
	"fmt"

	"github.com/Amund211/riftlight/internal/adapters/matchrepository"
	"github.com/Amund211/riftlight/internal/adapters/riotapi"
	"github.com/Amund211/riftlight/internal/domain"
	"github.com/Amund211/riftlight/internal/logging"
	"github.com/Amund211/riftlight/internal/reporting"
	"github.com/Amund211/riftlight/internal/transform"
	"golang.org/x/sync/errgroup"
)

const (
	maxMatchHistoryCount      = 100
	maxMatchHistoryStartIndex = 10_000

	matchFetchConcurrency = 4
	existsConcurrency     = 10
)

// MatchHistory is one page of a player's matches, newest first.
//
// Matches do not carry timelines, use ResolveMatch for those.
type MatchHistory struct {
	Matches     []domain.Match
	Source      Source
	Persistence PersistSummary
}

type ResolveMatchHistory func(ctx context.Context, region, puuid string, startIndex, count int, forceRefresh bool) (MatchHistory, error)

type matchHistoryUpstream interface {
	matchDetailUpstream
	GetMatchIDs(ctx context.Context, region, puuid string, start, count int) ([]string, error)
}

type matchHistoryStore interface {
	// Newest first
	FindMatchesByParticipant(ctx context.Context, puuid string, limit int, includeTimeline bool) ([]matchrepository.MatchRecord, error)
	FindMatchesByIDs(ctx context.Context, matchIDs []string, includeTimeline bool) ([]matchrepository.MatchRecord, error)
	MatchExists(ctx context.Context, matchID string) (bool, error)
}

func validateMatchHistoryRequest(region, puuid string, startIndex, count int) (string, error) {
	normalizedRegion, err := riotapi.NormalizeRegion(region)
	if err != nil {
		return "", err
	}
	if puuid == "" {
		return "", fmt.Errorf("%w: missing puuid", domain.ErrValidation)
	}
	if startIndex < 0 || startIndex > maxMatchHistoryStartIndex {
		return "", fmt.Errorf("%w: start index must be between 0 and %d", domain.ErrValidation, maxMatchHistoryStartIndex)
	}
	if count < 1 || count > maxMatchHistoryCount {
		return "", fmt.Errorf("%w: count must be between 1 and %d", domain.ErrValidation, maxMatchHistoryCount)
	}
	return normalizedRegion, nil
}

func matchesFromRecords(ctx context.Context, records []matchrepository.MatchRecord, catalog transform.Catalog) ([]domain.Match, error) {
	matches := make([]domain.Match, 0, len(records))
	for _, record := range records {
		match, err := transform.MatchFromRecord(record, catalog)
		if err != nil {
			reporting.Report(ctx, err, map[string]string{
				"matchID": record.MatchID,
			})
			return nil, fmt.Errorf("failed to convert stored match: %w", err)
		}
		matches = append(matches, match)
	}
	return matches, nil
}

// storedPage returns the stored matches in [startIndex, startIndex+count), and whether the window is complete
func storedPage(ctx context.Context, store matchHistoryStore, catalog transform.Catalog, puuid string, startIndex, count int) ([]domain.Match, bool, error) {
	records, err := store.FindMatchesByParticipant(ctx, puuid, startIndex+count, false)
	if err != nil {
		// NOTE: Repository implementations handle their own error reporting
		return nil, false, fmt.Errorf("failed to read match history: %w", err)
	}

	if len(records) <= startIndex {
		return []domain.Match{}, false, nil
	}
	records = records[startIndex:]

	matches, err := matchesFromRecords(ctx, records, catalog)
	if err != nil {
		return nil, false, err
	}

	return matches, len(matches) == count, nil
}

// partitionByExistence checks all ids concurrently. Ids that could not be checked count as missing.
func partitionByExistence(ctx context.Context, store matchHistoryStore, matchIDs []string) ([]string, []string) {
	exists := make([]bool, len(matchIDs))

	g := new(errgroup.Group)
	g.SetLimit(existsConcurrency)
	for i, matchID := range matchIDs {
		g.Go(func() error {
			found, err := store.MatchExists(ctx, matchID)
			if err != nil {
				// NOTE: Repository implementations handle their own error reporting
				logging.FromContext(ctx).WarnContext(ctx, "failed to check if match exists", "matchID", matchID, "error", err.Error())
				return nil
			}
			exists[i] = found
			return nil
		})
	}
	// Never fails, errors are handled per id
	_ = g.Wait()

	var existing, missing []string
	for i, matchID := range matchIDs {
		if exists[i] {
			existing = append(existing, matchID)
		} else {
			missing = append(missing, matchID)
		}
	}
	return existing, missing
}

// fetchMatches fetches the given matches concurrently. Matches that fail are left out.
func fetchMatches(ctx context.Context, upstream matchDetailUpstream, catalog transform.Catalog, region string, matchIDs []string) []PendingMatch {
	results := make([]*PendingMatch, len(matchIDs))

	g := new(errgroup.Group)
	g.SetLimit(matchFetchConcurrency)
	for i, matchID := range matchIDs {
		g.Go(func() error {
			pending, err := fetchMatch(ctx, upstream, catalog, region, matchID)
			if err != nil {
				logging.FromContext(ctx).WarnContext(ctx, "dropping match from page", "matchID", matchID, "error", err.Error())
				return nil
			}
			results[i] = &pending
			return nil
		})
	}
	// Never fails, errors are handled per match
	_ = g.Wait()

	fetched := make([]PendingMatch, 0, len(matchIDs))
	for _, result := range results {
		if result != nil {
			fetched = append(fetched, *result)
		}
	}
	return fetched
}

// BuildResolveMatchHistory resolves a page of a player's match history.
//
// Unless forced, a page fully present in the store is returned without calling upstream.
// Otherwise the whole page of match ids is fetched from upstream, and only the matches
// that are not yet stored are fetched in full and persisted.
func BuildResolveMatchHistory(
	upstream matchHistoryUpstream,
	store matchHistoryStore,
	catalog transform.Catalog,
	persistMatches PersistMatches,
) ResolveMatchHistory {
	return func(ctx context.Context, region, puuid string, startIndex, count int, forceRefresh bool) (MatchHistory, error) {
		logger := logging.FromContext(ctx)

		normalizedRegion, err := validateMatchHistoryRequest(region, puuid, startIndex, count)
		if err != nil {
			return MatchHistory{}, err
		}

		stored, complete, storeErr := storedPage(ctx, store, catalog, puuid, startIndex, count)
		if storeErr != nil {
			logger.ErrorContext(ctx, "failed to get stored match history", "error", storeErr.Error())
		}
		if !forceRefresh && complete {
			return MatchHistory{Matches: stored, Source: SourceStore}, nil
		}

		getCtx, cancel := context.WithTimeout(ctx, upstreamTimeout)
		defer cancel()
		matchIDs, err := upstream.GetMatchIDs(getCtx, normalizedRegion, puuid, startIndex, count)
		if err != nil {
			// NOTE: Upstream implementations handle their own error reporting
			if len(stored) > 0 {
				logger.WarnContext(ctx, "falling back to stored match history", "error", err.Error(), "matches", len(stored))
				return MatchHistory{Matches: stored, Source: SourceStaleStore}, nil
			}
			return MatchHistory{}, fmt.Errorf("could not get match ids: %w", err)
		}

		existingIDs, missingIDs := partitionByExistence(ctx, store, matchIDs)

		fetched := fetchMatches(ctx, upstream, catalog, normalizedRegion, missingIDs)

		// Store writes are not tied to the request
		summary := persistMatches(context.WithoutCancel(ctx), fetched)

		matches := make([]domain.Match, 0, len(matchIDs))
		for _, pending := range fetched {
			match := pending.Match
			match.Timelines = []domain.ParticipantTimeline{}
			matches = append(matches, match)
		}

		if len(existingIDs) > 0 {
			records, err := store.FindMatchesByIDs(ctx, existingIDs, false)
			if err != nil {
				// NOTE: Repository implementations handle their own error reporting
				logger.ErrorContext(ctx, "failed to read stored matches", "error", err.Error())
			} else if existing, err := matchesFromRecords(ctx, records, catalog); err != nil {
				logger.ErrorContext(ctx, "failed to convert stored matches", "error", err.Error())
			} else {
				matches = append(matches, existing...)
			}
		}

		transform.SortNewestFirst(matches)
		if len(matches) > count {
			matches = matches[:count]
		}

		return MatchHistory{
			Matches:     matches,
			Source:      SourceUpstream,
			Persistence: summary,
		}, nil
	}
}
