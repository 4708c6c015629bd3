package riotapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Amund211/riftlight/internal/constants"
	"github.com/Amund211/riftlight/internal/domain"
	"github.com/Amund211/riftlight/internal/logging"
	"github.com/Amund211/riftlight/internal/ratelimiting"
	"github.com/Amund211/riftlight/internal/reporting"
	"github.com/goccy/go-json"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/time/rate"
)

const maxOperationTime = 5 * time.Second

type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type RequestLimiter interface {
	LimitCancelable(ctx context.Context, maxOperationTime time.Duration, operation func() bool) bool
}

type Riot struct {
	httpClient HttpClient
	apiKey     string

	burstLimiter  *rate.Limiter
	windowLimiter RequestLimiter

	metrics riotMetricsCollection
}

type Limits struct {
	RequestsPerSecond     int
	RequestsPerTwoMinutes int
}

// DevelopmentKeyLimits are the limits of a personal Riot development key
var DevelopmentKeyLimits = Limits{
	RequestsPerSecond:     20,
	RequestsPerTwoMinutes: 100,
}

func NewRiot(httpClient HttpClient, apiKey string, limits Limits) (*Riot, error) {
	windowLimiter := ratelimiting.NewWindowLimiter(
		limits.RequestsPerTwoMinutes,
		2*time.Minute,
		time.Now,
		time.After,
	)
	return newRiot(httpClient, apiKey, rate.NewLimiter(rate.Limit(limits.RequestsPerSecond), limits.RequestsPerSecond), windowLimiter)
}

func newRiot(httpClient HttpClient, apiKey string, burstLimiter *rate.Limiter, windowLimiter RequestLimiter) (*Riot, error) {
	meter := otel.Meter("riotapi")
	metrics, err := setupRiotMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("failed to set up metrics: %w", err)
	}

	return &Riot{
		httpClient: httpClient,
		apiKey:     apiKey,

		burstLimiter:  burstLimiter,
		windowLimiter: windowLimiter,

		metrics: metrics,
	}, nil
}

func (r *Riot) GetAccountByRiotID(ctx context.Context, region, gameName, tagLine string) (AccountDTO, error) {
	region, err := NormalizeRegion(region)
	if err != nil {
		return AccountDTO{}, err
	}
	return getJSON[AccountDTO](ctx, r, "account/by-riot-id", fmt.Sprintf(
		"https://%s.api.riotgames.com/riot/account/v1/accounts/by-riot-id/%s/%s",
		region, url.PathEscape(gameName), url.PathEscape(tagLine),
	))
}

func (r *Riot) GetActiveShard(ctx context.Context, region, puuid string) (ActiveShardDTO, error) {
	region, err := NormalizeRegion(region)
	if err != nil {
		return ActiveShardDTO{}, err
	}
	return getJSON[ActiveShardDTO](ctx, r, "account/active-shard", fmt.Sprintf(
		"https://%s.api.riotgames.com/riot/account/v1/region/by-game/lol/by-puuid/%s",
		region, url.PathEscape(puuid),
	))
}

func (r *Riot) GetSummoner(ctx context.Context, platform, puuid string) (SummonerDTO, error) {
	platform, err := NormalizePlatform(platform)
	if err != nil {
		return SummonerDTO{}, err
	}
	return getJSON[SummonerDTO](ctx, r, "summoner/by-puuid", fmt.Sprintf(
		"https://%s.api.riotgames.com/lol/summoner/v4/summoners/by-puuid/%s",
		platform, url.PathEscape(puuid),
	))
}

func (r *Riot) GetLeagueEntries(ctx context.Context, platform, puuid string) ([]LeagueEntryDTO, error) {
	platform, err := NormalizePlatform(platform)
	if err != nil {
		return nil, err
	}
	return getJSON[[]LeagueEntryDTO](ctx, r, "league/entries", fmt.Sprintf(
		"https://%s.api.riotgames.com/lol/league/v4/entries/by-puuid/%s",
		platform, url.PathEscape(puuid),
	))
}

func (r *Riot) GetMatchIDs(ctx context.Context, region, puuid string, start, count int) ([]string, error) {
	region, err := NormalizeRegion(region)
	if err != nil {
		return nil, err
	}
	return getJSON[[]string](ctx, r, "match/ids", fmt.Sprintf(
		"https://%s.api.riotgames.com/lol/match/v5/matches/by-puuid/%s/ids?start=%d&count=%d",
		region, url.PathEscape(puuid), start, count,
	))
}

func (r *Riot) GetMatch(ctx context.Context, region, matchID string) (MatchDTO, error) {
	region, err := NormalizeRegion(region)
	if err != nil {
		return MatchDTO{}, err
	}
	return getJSON[MatchDTO](ctx, r, "match", fmt.Sprintf(
		"https://%s.api.riotgames.com/lol/match/v5/matches/%s",
		region, url.PathEscape(matchID),
	))
}

func (r *Riot) GetTimeline(ctx context.Context, region, matchID string) (TimelineDTO, error) {
	region, err := NormalizeRegion(region)
	if err != nil {
		return TimelineDTO{}, err
	}
	return getJSON[TimelineDTO](ctx, r, "match/timeline", fmt.Sprintf(
		"https://%s.api.riotgames.com/lol/match/v5/matches/%s/timeline",
		region, url.PathEscape(matchID),
	))
}

func getJSON[T any](ctx context.Context, r *Riot, endpoint string, requestURL string) (T, error) {
	var result T

	data, statusCode, err := r.get(ctx, endpoint, requestURL)
	if err != nil {
		// NOTE: get handles its own error reporting
		return result, err
	}

	if err := errorFromStatus(statusCode); err != nil {
		if !errors.Is(err, domain.ErrNotFound) && !errors.Is(err, domain.ErrRateLimited) {
			reporting.Report(ctx, err, map[string]string{
				"endpoint": endpoint,
				"data":     string(data),
				"status":   strconv.Itoa(statusCode),
			})
		}
		return result, err
	}

	if err := json.Unmarshal(data, &result); err != nil {
		err := fmt.Errorf("failed to parse riot response: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"endpoint": endpoint,
			"data":     string(data),
			"status":   strconv.Itoa(statusCode),
		})
		return result, err
	}

	return result, nil
}

func (r *Riot) get(ctx context.Context, endpoint string, requestURL string) ([]byte, int, error) {
	logger := logging.FromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		err := fmt.Errorf("failed to create request: %w", err)
		reporting.Report(ctx, err)
		return nil, -1, err
	}

	req.Header.Set("User-Agent", constants.USER_AGENT)
	req.Header.Set("X-Riot-Token", r.apiKey)

	if err := r.burstLimiter.Wait(ctx); err != nil {
		return nil, -1, fmt.Errorf("%w: %w: waiting for rate limiter: %w", domain.ErrRateLimited, domain.ErrTemporarilyUnavailable, err)
	}

	var resp *http.Response
	var requestErr error
	start := time.Now()
	ran := r.windowLimiter.LimitCancelable(ctx, maxOperationTime, func() bool {
		resp, requestErr = r.httpClient.Do(req)
		return true
	})
	if !ran {
		r.metrics.requestCount.Add(ctx, 1, metric.WithAttributes(
			attribute.String("endpoint", endpoint),
			attribute.String("status", "limited"),
		))
		return nil, -1, fmt.Errorf("%w: %w: riot request budget exhausted", domain.ErrRateLimited, domain.ErrTemporarilyUnavailable)
	}
	if requestErr != nil {
		r.metrics.requestCount.Add(ctx, 1, metric.WithAttributes(
			attribute.String("endpoint", endpoint),
			attribute.String("status", "network_error"),
		))
		err := fmt.Errorf("%w: %w: failed to send request: %w", domain.ErrNetwork, domain.ErrTemporarilyUnavailable, requestErr)
		reporting.Report(ctx, err, map[string]string{
			"endpoint": endpoint,
		})
		return nil, -1, err
	}
	defer resp.Body.Close()

	r.metrics.requestCount.Add(ctx, 1, metric.WithAttributes(
		attribute.String("endpoint", endpoint),
		attribute.String("status", strconv.Itoa(resp.StatusCode)),
	))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		err := fmt.Errorf("%w: %w: failed to read response body: %w", domain.ErrNetwork, domain.ErrTemporarilyUnavailable, err)
		reporting.Report(ctx, err, map[string]string{
			"endpoint": endpoint,
		})
		return nil, -1, err
	}

	logger.Info("riot request completed", "endpoint", endpoint, "status", resp.StatusCode, "duration", time.Since(start).String())

	return data, resp.StatusCode, nil
}

func errorFromStatus(statusCode int) error {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == http.StatusNotFound:
		return fmt.Errorf("%w: riot API returned status code %d", domain.ErrNotFound, statusCode)
	case statusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w: riot API returned status code %d", domain.ErrRateLimited, domain.ErrTemporarilyUnavailable, statusCode)
	case statusCode == http.StatusUnauthorized, statusCode == http.StatusForbidden:
		return fmt.Errorf("%w: riot API returned status code %d", domain.ErrForbidden, statusCode)
	case statusCode >= 500:
		return fmt.Errorf("%w: %w: riot API returned status code %d", domain.ErrUpstreamServer, domain.ErrTemporarilyUnavailable, statusCode)
	}
	return fmt.Errorf("riot API returned unexpected status code %d", statusCode)
}

type riotMetricsCollection struct {
	requestCount metric.Int64Counter
}

func setupRiotMetrics(meter metric.Meter) (riotMetricsCollection, error) {
	requestCount, err := meter.Int64Counter("riotapi/requests")
	if err != nil {
		return riotMetricsCollection{}, fmt.Errorf("failed to create metric: %w", err)
	}

	return riotMetricsCollection{
		requestCount: requestCount,
	}, nil
}
