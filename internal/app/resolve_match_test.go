package app_test

import (
	"testing"
	"time"

	"github.com/Amund211/riftlight/internal/adapters/matchrepository"
	"github.com/Amund211/riftlight/internal/app"
	"github.com/Amund211/riftlight/internal/domain"
	"github.com/Amund211/riftlight/internal/domaintest"
	"github.com/Amund211/riftlight/internal/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildResolveMatch(t *testing.T) {
	t.Parallel()

	ctx := t.Context()

	newResolver := func(upstream *mockMatchUpstream, store *mockMatchStore) app.ResolveMatch {
		return app.BuildResolveMatch(upstream, store, newTestCatalog())
	}

	t.Run("stored match with timeline", func(t *testing.T) {
		t.Parallel()

		upstream := newMockMatchUpstream(t)
		store := newMockMatchStore(t)
		record := testMatchRecord("EUW1_1", matchCreation(1))
		record.Frames = testTimelineDTO().Info.Frames
		store.addHistory(record)

		resolved, err := newResolver(upstream, store)(ctx, "europe", "EUW1_1", false)
		require.NoError(t, err)
		require.Equal(t, app.SourceStore, resolved.Source)
		require.Equal(t, 0, upstream.upstreamCalls())

		match := resolved.Data
		require.Len(t, match.Timelines, 2)
		first, ok := match.Timeline(1)
		require.True(t, ok)
		events := timeline.Events(first)
		require.Len(t, events, 1)
		require.Equal(t, &domaintest.DoransBlade, events[0].(domain.ItemPurchasedEvent).Item)
	})

	t.Run("fetches and persists a missing match", func(t *testing.T) {
		t.Parallel()

		upstream := newMockMatchUpstream(t)
		upstream.addMatch("EUW1_1", matchCreation(1))
		store := newMockMatchStore(t)

		resolved, err := newResolver(upstream, store)(ctx, "europe", "EUW1_1", false)
		require.NoError(t, err)
		require.Equal(t, app.SourceUpstream, resolved.Source)
		require.True(t, resolved.Persisted)
		require.Equal(t, "EUW1_1", resolved.Data.MatchID)
		require.Len(t, resolved.Data.Timelines, 2)

		require.Equal(t, []string{"EUW1_1"}, store.savedIDs())
		require.Equal(t, testTimelineDTO().Info.Frames, store.savedFrames["EUW1_1"])
	})

	t.Run("single saves get the same time budget as pipeline saves", func(t *testing.T) {
		t.Parallel()

		upstream := newMockMatchUpstream(t)
		upstream.addMatch("EUW1_1", matchCreation(1))
		store := newMockMatchStore(t)

		_, err := newResolver(upstream, store)(ctx, "europe", "EUW1_1", false)
		require.NoError(t, err)

		persistMatches, err := app.BuildPersistMatches(store, immediately, app.DefaultPersistBackoffStep)
		require.NoError(t, err)
		summary := persistMatches(ctx, pendingMatches("EUW1_2"))
		require.Equal(t, 1, summary.Saved)

		require.Len(t, store.saveBudgets, 2)
		for _, budget := range store.saveBudgets {
			require.Greater(t, budget, 1500*time.Millisecond)
			require.LessOrEqual(t, budget, 2*time.Second)
		}
	})

	t.Run("stored and fetched matches have the same shape", func(t *testing.T) {
		t.Parallel()

		upstream := newMockMatchUpstream(t)
		upstream.addMatch("EUW1_1", matchCreation(1))
		fetched, err := newResolver(upstream, newMockMatchStore(t))(ctx, "europe", "EUW1_1", true)
		require.NoError(t, err)

		store := newMockMatchStore(t)
		record := testMatchRecord("EUW1_1", matchCreation(1))
		record.Participants[0].Kills = 3
		record.Participants[0].Deaths = 1
		record.Participants[1].Deaths = 3
		record.Participants[0].Items = []matchrepository.ItemSlotRecord{{Slot: 0, ItemID: 1055}}
		record.Frames = testTimelineDTO().Info.Frames
		store.addHistory(record)
		stored, err := newResolver(newMockMatchUpstream(t), store)(ctx, "europe", "EUW1_1", false)
		require.NoError(t, err)

		require.Equal(t, fetched.Data, stored.Data)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		upstream := newMockMatchUpstream(t)
		store := newMockMatchStore(t)

		_, err := newResolver(upstream, store)(ctx, "europe", "EUW1_404", false)
		require.ErrorIs(t, err, domain.ErrMatchNotFound)
		require.ErrorIs(t, err, domain.ErrNotFound)
		require.Empty(t, store.savedIDs())
	})

	t.Run("timeline failure fails the match", func(t *testing.T) {
		t.Parallel()

		upstream := newMockMatchUpstream(t)
		upstream.addMatch("EUW1_1", matchCreation(1))
		upstream.timelineErrs["EUW1_1"] = domain.ErrUpstreamServer
		store := newMockMatchStore(t)

		_, err := newResolver(upstream, store)(ctx, "europe", "EUW1_1", false)
		require.ErrorIs(t, err, domain.ErrUpstreamServer)
	})

	t.Run("forced refresh falls back to the store", func(t *testing.T) {
		t.Parallel()

		upstream := newMockMatchUpstream(t)
		upstream.matchErrs["EUW1_1"] = domain.ErrNetwork
		store := newMockMatchStore(t)
		store.addHistory(testMatchRecord("EUW1_1", matchCreation(1)))

		resolved, err := newResolver(upstream, store)(ctx, "europe", "EUW1_1", true)
		require.NoError(t, err)
		require.Equal(t, app.SourceStaleStore, resolved.Source)
		require.Equal(t, "EUW1_1", resolved.Data.MatchID)
	})

	t.Run("persistence failure", func(t *testing.T) {
		t.Parallel()

		upstream := newMockMatchUpstream(t)
		upstream.addMatch("EUW1_1", matchCreation(1))
		store := newMockMatchStore(t)
		store.saveErr = assert.AnError

		resolved, err := newResolver(upstream, store)(ctx, "europe", "EUW1_1", false)
		require.NoError(t, err)
		require.False(t, resolved.Persisted)
		require.ErrorIs(t, resolved.PersistErr, domain.ErrPersistence)
		require.Equal(t, "EUW1_1", resolved.Data.MatchID)
	})

	t.Run("validation", func(t *testing.T) {
		t.Parallel()

		upstream := newMockMatchUpstream(t)
		store := newMockMatchStore(t)
		resolveMatch := newResolver(upstream, store)

		_, err := resolveMatch(ctx, "europe", "", false)
		require.ErrorIs(t, err, domain.ErrValidation)

		_, err = resolveMatch(ctx, "moon", "EUW1_1", false)
		require.ErrorIs(t, err, domain.ErrValidation)

		require.Equal(t, 0, upstream.upstreamCalls())
		require.Equal(t, 0, store.findByIDsCalls)
	})
}
