package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Amund211/riftlight/internal/adapters/cache"
	"github.com/Amund211/riftlight/internal/adapters/riotapi"
	"github.com/Amund211/riftlight/internal/domain"
	"github.com/Amund211/riftlight/internal/logging"
	"github.com/Amund211/riftlight/internal/reporting"
	"github.com/Amund211/riftlight/internal/transform"
)

type ResolveAccount func(ctx context.Context, region, gameName, tagLine string, forceRefresh bool) (Resolved[domain.Account], error)

type accountUpstream interface {
	GetAccountByRiotID(ctx context.Context, region, gameName, tagLine string) (riotapi.AccountDTO, error)
}

type accountStore interface {
	FindAccountByRiotID(ctx context.Context, region, gameName, tagLine string) (domain.Account, error)
	SaveAccount(ctx context.Context, region string, account domain.Account) error
}

// validateRiotID returns the normalized routing region
func validateRiotID(region, gameName, tagLine string) (string, error) {
	normalizedRegion, err := riotapi.NormalizeRegion(region)
	if err != nil {
		return "", err
	}

	nameLength := utf8.RuneCountInString(gameName)
	if strings.TrimSpace(gameName) == "" || nameLength > 16 {
		return "", fmt.Errorf("%w: game name must be between 1 and 16 characters", domain.ErrValidation)
	}

	tagLength := utf8.RuneCountInString(tagLine)
	if strings.TrimSpace(tagLine) != tagLine || tagLength < 3 || tagLength > 5 {
		return "", fmt.Errorf("%w: tag line must be between 3 and 5 characters", domain.ErrValidation)
	}

	return normalizedRegion, nil
}

func buildResolveAccountWithoutCache(upstream accountUpstream, store accountStore, region, gameName, tagLine string) func(ctx context.Context, forceRefresh bool) (Resolved[domain.Account], error) {
	return func(ctx context.Context, forceRefresh bool) (Resolved[domain.Account], error) {
		logger := logging.FromContext(ctx)

		if !forceRefresh {
			account, err := store.FindAccountByRiotID(ctx, region, gameName, tagLine)
			if err == nil {
				return fromStore(account), nil
			} else if !errors.Is(err, domain.ErrAccountNotFound) {
				// NOTE: Repository implementations handle their own error reporting
				logger.ErrorContext(ctx, "failed to read account from store", "error", err.Error())
			}
		}

		getCtx, cancel := context.WithTimeout(ctx, upstreamTimeout)
		defer cancel()
		dto, err := upstream.GetAccountByRiotID(getCtx, region, gameName, tagLine)
		if errors.Is(err, domain.ErrNotFound) {
			return Resolved[domain.Account]{}, fmt.Errorf("%w: %w", domain.ErrAccountNotFound, err)
		} else if err != nil {
			// NOTE: Upstream implementations handle their own error reporting
			if forceRefresh {
				// Try to fall back to the store, if available
				if account, storeErr := store.FindAccountByRiotID(ctx, region, gameName, tagLine); storeErr == nil {
					logger.WarnContext(ctx, "falling back to stored account", "error", err.Error())
					return fromStaleStore(account), nil
				}
			}
			return Resolved[domain.Account]{}, fmt.Errorf("could not get account: %w", err)
		}

		account, err := transform.AccountFromAPI(dto)
		if err != nil {
			reporting.Report(ctx, err, map[string]string{
				"gameName": gameName,
				"tagLine":  tagLine,
			})
			return Resolved[domain.Account]{}, fmt.Errorf("failed to convert account: %w", err)
		}

		persisted, persistErr := persist(ctx, "account", storeTimeout, func(ctx context.Context) error {
			return store.SaveAccount(ctx, region, account)
		})

		return Resolved[domain.Account]{
			Data:       account,
			Source:     SourceUpstream,
			Persisted:  persisted,
			PersistErr: persistErr,
		}, nil
	}
}

func accountCacheKey(region, gameName, tagLine string) string {
	return region + "/" + strings.ToLower(gameName) + "#" + strings.ToLower(tagLine)
}

// BuildResolveAccount resolves a Riot id to an account. Concurrent non-forced
// resolves of the same Riot id share one lookup.
func BuildResolveAccount(
	accountCache cache.Cache[Resolved[domain.Account]],
	upstream accountUpstream,
	store accountStore,
) ResolveAccount {
	return func(ctx context.Context, region, gameName, tagLine string, forceRefresh bool) (Resolved[domain.Account], error) {
		normalizedRegion, err := validateRiotID(region, gameName, tagLine)
		if err != nil {
			return Resolved[domain.Account]{}, err
		}

		resolve := buildResolveAccountWithoutCache(upstream, store, normalizedRegion, gameName, tagLine)
		return coalesced(ctx, accountCache, accountCacheKey(normalizedRegion, gameName, tagLine), forceRefresh, resolve)
	}
}
