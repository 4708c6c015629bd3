package app_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Amund211/riftlight/internal/app"
	"github.com/Amund211/riftlight/internal/domain"
	"github.com/Amund211/riftlight/internal/domaintest"
	"github.com/Amund211/riftlight/internal/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockMatchPersister struct {
	t *testing.T

	mu       sync.Mutex
	existing map[string]bool
	// Errors returned by SaveMatch, by match id
	saveErrs map[string]error
	existErr error

	saved     []string
	saveCalls int
}

func newMockMatchPersister(t *testing.T) *mockMatchPersister {
	return &mockMatchPersister{
		t:        t,
		existing: map[string]bool{},
		saveErrs: map[string]error{},
	}
}

func (m *mockMatchPersister) MatchExists(ctx context.Context, matchID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.existErr != nil {
		return false, m.existErr
	}
	return m.existing[matchID], nil
}

func (m *mockMatchPersister) SaveMatch(ctx context.Context, match domain.Match, frames []timeline.Frame) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.saveCalls++
	if err, ok := m.saveErrs[match.MatchID]; ok {
		return false, err
	}
	if m.existing[match.MatchID] {
		return false, nil
	}
	m.existing[match.MatchID] = true
	m.saved = append(m.saved, match.MatchID)
	return true, nil
}

type recordingAfter struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (r *recordingAfter) after(d time.Duration) <-chan time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waits = append(r.waits, d)

	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

func pendingMatches(ids ...string) []app.PendingMatch {
	creation := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
	pending := make([]app.PendingMatch, 0, len(ids))
	for _, id := range ids {
		pending = append(pending, app.PendingMatch{
			Match: domaintest.NewMatchBuilder(id, creation).WithPlayers("p1", "p2").Build(),
		})
	}
	return pending
}

func TestBuildPersistMatches(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	step := 200 * time.Millisecond

	t.Run("saves new matches and counts existing ones", func(t *testing.T) {
		t.Parallel()

		repo := newMockMatchPersister(t)
		repo.existing["EUW1_2"] = true
		after := &recordingAfter{}

		persistMatches, err := app.BuildPersistMatches(repo, after.after, step)
		require.NoError(t, err)

		summary := persistMatches(ctx, pendingMatches("EUW1_1", "EUW1_2", "EUW1_3"))
		require.Equal(t, app.PersistSummary{
			Total:          3,
			Saved:          2,
			Existed:        1,
			ProcessingRate: 1,
			NewSaveRate:    1,
		}, summary)

		require.Equal(t, []string{"EUW1_1", "EUW1_3"}, repo.saved)
		// Existing matches are never written
		require.Equal(t, 2, repo.saveCalls)
		require.Empty(t, after.waits)
	})

	t.Run("saving the same batch twice", func(t *testing.T) {
		t.Parallel()

		repo := newMockMatchPersister(t)
		persistMatches, err := app.BuildPersistMatches(repo, (&recordingAfter{}).after, step)
		require.NoError(t, err)

		first := persistMatches(ctx, pendingMatches("EUW1_1", "EUW1_2"))
		require.Equal(t, 2, first.Saved)

		second := persistMatches(ctx, pendingMatches("EUW1_1", "EUW1_2"))
		require.Equal(t, 0, second.Saved)
		require.Equal(t, 2, second.Existed)
		require.InDelta(t, 1.0, second.ProcessingRate, 1e-9)
		require.InDelta(t, 0.0, second.NewSaveRate, 1e-9)

		require.Equal(t, 2, repo.saveCalls)
	})

	t.Run("single failures back off linearly and do not stop the batch", func(t *testing.T) {
		t.Parallel()

		repo := newMockMatchPersister(t)
		repo.saveErrs["EUW1_2"] = assert.AnError
		repo.saveErrs["EUW1_3"] = assert.AnError
		repo.saveErrs["EUW1_5"] = assert.AnError
		after := &recordingAfter{}

		persistMatches, err := app.BuildPersistMatches(repo, after.after, step)
		require.NoError(t, err)

		summary := persistMatches(ctx, pendingMatches("EUW1_1", "EUW1_2", "EUW1_3", "EUW1_4", "EUW1_5"))
		require.Equal(t, 5, summary.Total)
		require.Equal(t, 2, summary.Saved)
		require.Equal(t, 3, summary.Failed)
		require.Equal(t, 0, summary.Skipped)
		require.InDelta(t, 0.4, summary.ProcessingRate, 1e-9)
		require.InDelta(t, 0.4, summary.NewSaveRate, 1e-9)

		// The success of EUW1_4 resets the consecutive failure count
		require.Equal(t, []time.Duration{step, 2 * step, step}, after.waits)
	})

	for _, n := range []int{3, 4, 10} {
		t.Run(fmt.Sprintf("breaker trips after three consecutive failures in a batch of %d", n), func(t *testing.T) {
			t.Parallel()

			repo := newMockMatchPersister(t)
			ids := make([]string, 0, n)
			for i := range n {
				id := fmt.Sprintf("EUW1_%d", i)
				ids = append(ids, id)
				repo.saveErrs[id] = assert.AnError
			}
			after := &recordingAfter{}

			persistMatches, err := app.BuildPersistMatches(repo, after.after, step)
			require.NoError(t, err)

			summary := persistMatches(ctx, pendingMatches(ids...))
			require.Equal(t, n, summary.Total)
			require.Equal(t, 3, summary.Failed)
			require.Equal(t, n-3, summary.Skipped)
			require.Equal(t, 3, repo.saveCalls)
			require.Equal(t, summary.Skipped, n-repo.saveCalls)
			require.InDelta(t, 0.0, summary.ProcessingRate, 1e-9)

			// No wait after the failure that trips the breaker
			require.Equal(t, []time.Duration{step, 2 * step}, after.waits)
		})
	}

	t.Run("existence check failures count as failures", func(t *testing.T) {
		t.Parallel()

		repo := newMockMatchPersister(t)
		repo.existErr = assert.AnError

		persistMatches, err := app.BuildPersistMatches(repo, (&recordingAfter{}).after, step)
		require.NoError(t, err)

		summary := persistMatches(ctx, pendingMatches("EUW1_1", "EUW1_2", "EUW1_3", "EUW1_4"))
		require.Equal(t, 3, summary.Failed)
		require.Equal(t, 1, summary.Skipped)
		require.Equal(t, 0, repo.saveCalls)
	})

	t.Run("empty batch", func(t *testing.T) {
		t.Parallel()

		repo := newMockMatchPersister(t)
		persistMatches, err := app.BuildPersistMatches(repo, (&recordingAfter{}).after, step)
		require.NoError(t, err)

		require.Equal(t, app.PersistSummary{}, persistMatches(ctx, nil))
	})
}
