package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Amund211/riftlight/internal/adapters/cache"
	"github.com/Amund211/riftlight/internal/adapters/riotapi"
	"github.com/Amund211/riftlight/internal/domain"
	"github.com/Amund211/riftlight/internal/logging"
	"github.com/Amund211/riftlight/internal/reporting"
	"github.com/Amund211/riftlight/internal/transform"
)

type ResolveRankedAccount func(ctx context.Context, region, puuid string, forceRefresh bool) (Resolved[domain.RankedAccount], error)

type rankedUpstream interface {
	GetActiveShard(ctx context.Context, region, puuid string) (riotapi.ActiveShardDTO, error)
	GetSummoner(ctx context.Context, platform, puuid string) (riotapi.SummonerDTO, error)
	GetLeagueEntries(ctx context.Context, platform, puuid string) ([]riotapi.LeagueEntryDTO, error)
}

type rankedStore interface {
	// An empty platform matches the most recently queried platform
	FindRankedAccount(ctx context.Context, puuid, region, platform string) (domain.RankedAccount, error)
	SaveRankedAccount(ctx context.Context, rankedAccount domain.RankedAccount) error
}

func getRankedAccountFromUpstream(ctx context.Context, upstream rankedUpstream, region, puuid string, nowFunc func() time.Time) (domain.RankedAccount, error) {
	getCtx, cancel := context.WithTimeout(ctx, upstreamTimeout)
	defer cancel()
	shard, err := upstream.GetActiveShard(getCtx, region, puuid)
	if err != nil {
		return domain.RankedAccount{}, fmt.Errorf("could not get active shard: %w", err)
	}

	platform, err := riotapi.NormalizePlatform(shard.ActiveShard)
	if err != nil {
		reporting.Report(ctx, err, map[string]string{
			"puuid":       puuid,
			"activeShard": shard.ActiveShard,
		})
		return domain.RankedAccount{}, fmt.Errorf("invalid active shard: %w", err)
	}

	getCtx, cancel = context.WithTimeout(ctx, upstreamTimeout)
	defer cancel()
	summoner, err := upstream.GetSummoner(getCtx, platform, puuid)
	if err != nil {
		return domain.RankedAccount{}, fmt.Errorf("could not get summoner: %w", err)
	}

	getCtx, cancel = context.WithTimeout(ctx, upstreamTimeout)
	defer cancel()
	entries, err := upstream.GetLeagueEntries(getCtx, platform, puuid)
	if errors.Is(err, domain.ErrNotFound) {
		// Players without ranked games have no entries
		entries = nil
	} else if err != nil {
		return domain.RankedAccount{}, fmt.Errorf("could not get league entries: %w", err)
	}

	rankedAccount, err := transform.RankedAccountFromAPI(region, platform, summoner, entries, nowFunc())
	if err != nil {
		reporting.Report(ctx, err, map[string]string{
			"puuid":    puuid,
			"platform": platform,
		})
		return domain.RankedAccount{}, fmt.Errorf("failed to convert ranked account: %w", err)
	}

	return rankedAccount, nil
}

func buildResolveRankedAccountWithoutCache(
	upstream rankedUpstream,
	store rankedStore,
	nowFunc func() time.Time,
	region, puuid string,
) func(ctx context.Context, forceRefresh bool) (Resolved[domain.RankedAccount], error) {
	return func(ctx context.Context, forceRefresh bool) (Resolved[domain.RankedAccount], error) {
		logger := logging.FromContext(ctx)

		if !forceRefresh {
			rankedAccount, err := store.FindRankedAccount(ctx, puuid, region, "")
			if err == nil {
				return fromStore(rankedAccount), nil
			} else if !errors.Is(err, domain.ErrRankedAccountNotFound) {
				// NOTE: Repository implementations handle their own error reporting
				logger.ErrorContext(ctx, "failed to read ranked account from store", "error", err.Error())
			}
		}

		rankedAccount, err := getRankedAccountFromUpstream(ctx, upstream, region, puuid, nowFunc)
		if errors.Is(err, domain.ErrNotFound) {
			return Resolved[domain.RankedAccount]{}, fmt.Errorf("%w: %w", domain.ErrRankedAccountNotFound, err)
		} else if err != nil {
			// NOTE: Upstream implementations handle their own error reporting
			if forceRefresh {
				if stored, storeErr := store.FindRankedAccount(ctx, puuid, region, ""); storeErr == nil {
					logger.WarnContext(ctx, "falling back to stored ranked account", "error", err.Error())
					return fromStaleStore(stored), nil
				}
			}
			return Resolved[domain.RankedAccount]{}, err
		}

		persisted, persistErr := persist(ctx, "ranked account", storeTimeout, func(ctx context.Context) error {
			return store.SaveRankedAccount(ctx, rankedAccount)
		})

		return Resolved[domain.RankedAccount]{
			Data:       rankedAccount,
			Source:     SourceUpstream,
			Persisted:  persisted,
			PersistErr: persistErr,
		}, nil
	}
}

// BuildResolveRankedAccount resolves the summoner profile and ranked standings of an account
// on its active platform. Both standings are always set, unranked queues use the UNRANKED tier.
func BuildResolveRankedAccount(
	rankedCache cache.Cache[Resolved[domain.RankedAccount]],
	upstream rankedUpstream,
	store rankedStore,
	nowFunc func() time.Time,
) ResolveRankedAccount {
	return func(ctx context.Context, region, puuid string, forceRefresh bool) (Resolved[domain.RankedAccount], error) {
		normalizedRegion, err := riotapi.NormalizeRegion(region)
		if err != nil {
			return Resolved[domain.RankedAccount]{}, err
		}
		if puuid == "" {
			return Resolved[domain.RankedAccount]{}, fmt.Errorf("%w: missing puuid", domain.ErrValidation)
		}

		resolve := buildResolveRankedAccountWithoutCache(upstream, store, nowFunc, normalizedRegion, puuid)
		return coalesced(ctx, rankedCache, normalizedRegion+"/"+puuid, forceRefresh, resolve)
	}
}
