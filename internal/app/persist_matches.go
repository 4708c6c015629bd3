package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Amund211/riftlight/internal/domain"
	"github.com/Amund211/riftlight/internal/logging"
	"github.com/Amund211/riftlight/internal/timeline"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	persistFailureThreshold = 3
	// Bounds every match save, also single matches stored by ResolveMatch
	persistMatchTimeout = 2 * time.Second

	DefaultPersistBackoffStep = 200 * time.Millisecond
)

// PendingMatch is a freshly fetched match with the raw timeline frames to store alongside it
type PendingMatch struct {
	Match  domain.Match
	Frames []timeline.Frame
}

type PersistSummary struct {
	Total   int
	Saved   int
	Existed int
	Failed  int
	// Not attempted because the circuit breaker tripped
	Skipped int

	// (Saved+Existed)/Total
	ProcessingRate float64
	// Saved/(Total-Existed)
	NewSaveRate float64
}

func (s PersistSummary) withRates() PersistSummary {
	s.ProcessingRate = 0
	if s.Total > 0 {
		s.ProcessingRate = float64(s.Saved+s.Existed) / float64(s.Total)
	}
	s.NewSaveRate = 0
	if newMatches := s.Total - s.Existed; newMatches > 0 {
		s.NewSaveRate = float64(s.Saved) / float64(newMatches)
	}
	return s
}

// PersistMatches stores each match independently and never fails as a whole.
// Failures are reflected in the summary.
type PersistMatches func(ctx context.Context, matches []PendingMatch) PersistSummary

type matchPersister interface {
	MatchExists(ctx context.Context, matchID string) (bool, error)
	// Returns false if the match was already stored
	SaveMatch(ctx context.Context, match domain.Match, frames []timeline.Frame) (bool, error)
}

type persistMetricsCollection struct {
	outcomes metric.Int64Counter
}

func setupPersistMetrics(meter metric.Meter) (persistMetricsCollection, error) {
	outcomes, err := meter.Int64Counter(
		"app/persist_matches/outcomes",
		metric.WithDescription("Outcome of each match handed to the persistence pipeline"),
	)
	if err != nil {
		return persistMetricsCollection{}, fmt.Errorf("failed to create metric: %w", err)
	}

	return persistMetricsCollection{
		outcomes: outcomes,
	}, nil
}

func persistMatch(ctx context.Context, repo matchPersister, pending PendingMatch) (bool, error) {
	saveCtx, cancel := context.WithTimeout(ctx, persistMatchTimeout)
	defer cancel()

	exists, err := repo.MatchExists(saveCtx, pending.Match.MatchID)
	if err != nil {
		return false, fmt.Errorf("failed to check if match exists: %w", err)
	}
	if exists {
		return false, nil
	}

	created, err := repo.SaveMatch(saveCtx, pending.Match, pending.Frames)
	if err != nil {
		return false, fmt.Errorf("failed to save match: %w", err)
	}

	return created, nil
}

// BuildPersistMatches stores matches sequentially. Shared catalog rows are upserted by
// every match, so concurrent writes would contend on them.
//
// After three consecutive failures the remaining matches in the batch are skipped.
// Each failure below that waits attempt*backoffStep before the next match.
func BuildPersistMatches(
	repo matchPersister,
	afterFunc func(time.Duration) <-chan time.Time,
	backoffStep time.Duration,
) (PersistMatches, error) {
	metrics, err := setupPersistMetrics(otel.Meter("riftlight/app"))
	if err != nil {
		return nil, fmt.Errorf("failed to set up metrics: %w", err)
	}

	return func(ctx context.Context, matches []PendingMatch) PersistSummary {
		logger := logging.FromContext(ctx)

		record := func(outcome string, count int) {
			if count == 0 {
				return
			}
			metrics.outcomes.Add(ctx, int64(count), metric.WithAttributes(
				attribute.String("outcome", outcome),
			))
		}

		// One breaker per batch, a tripped breaker never recovers within the batch
		breaker := gobreaker.NewCircuitBreaker[bool](gobreaker.Settings{
			Name:        "persist-matches",
			MaxRequests: 1,
			Interval:    0,
			Timeout:     24 * time.Hour,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= persistFailureThreshold
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.WarnContext(ctx, "circuit breaker changed state", "name", name, "from", from.String(), "to", to.String())
			},
		})

		summary := PersistSummary{Total: len(matches)}

	matchLoop:
		for i, pending := range matches {
			created, err := breaker.Execute(func() (bool, error) {
				return persistMatch(ctx, repo, pending)
			})

			switch {
			case errors.Is(err, gobreaker.ErrOpenState):
				summary.Skipped = len(matches) - i
				logger.ErrorContext(ctx, "skipping remaining matches", "skipped", summary.Skipped)
				break matchLoop
			case err != nil:
				summary.Failed++
				// NOTE: Repository implementations handle their own error reporting
				logger.ErrorContext(ctx, "failed to persist match", "matchID", pending.Match.MatchID, "error", err.Error())

				if breaker.State() == gobreaker.StateOpen {
					continue
				}

				attempt := int(breaker.Counts().ConsecutiveFailures)
				select {
				case <-afterFunc(time.Duration(attempt) * backoffStep):
				case <-ctx.Done():
				}
			case created:
				summary.Saved++
			default:
				summary.Existed++
			}
		}

		record("saved", summary.Saved)
		record("existed", summary.Existed)
		record("failed", summary.Failed)
		record("skipped", summary.Skipped)

		summary = summary.withRates()
		logger.InfoContext(ctx, "persisted matches",
			"total", summary.Total,
			"saved", summary.Saved,
			"existed", summary.Existed,
			"failed", summary.Failed,
			"skipped", summary.Skipped,
			"processingRate", summary.ProcessingRate,
			"newSaveRate", summary.NewSaveRate,
		)

		return summary
	}, nil
}
