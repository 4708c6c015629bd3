package matchrepository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Amund211/riftlight/internal/domain"
	"github.com/Amund211/riftlight/internal/domaintest"
)

func TestCollectCatalog(t *testing.T) {
	t.Parallel()

	start := time.Date(2025, time.February, 1, 18, 0, 0, 0, time.UTC)

	aatrox := domaintest.NewParticipantBuilder("puuid-b", 1).WithChampion(domaintest.Aatrox).Build()
	aatrox.Items = []domain.ItemSlot{
		{Slot: 0, Item: domaintest.StealthWard},
		{Slot: 1, Item: domaintest.HealthPotion},
		{Slot: 2, Item: domaintest.DoransBlade},
	}
	lulu := domaintest.NewParticipantBuilder("puuid-a", 6).WithChampion(domaintest.Lulu).Build()

	t.Run("entries are ordered by id", func(t *testing.T) {
		t.Parallel()

		match := domaintest.NewMatchBuilder("EUW1_1", start).WithParticipants(aatrox, lulu).Build()

		catalog := collectCatalog(match)

		require.Equal(t, []domain.Champion{domaintest.Lulu, domaintest.Aatrox}, catalog.champions)
		require.Equal(t, []domain.Item{
			domaintest.DoransBlade,
			domaintest.HealthPotion,
			domaintest.InfinityEdge,
			domaintest.StealthWard,
		}, catalog.items)
		require.Equal(t, []domain.RuneTree{domaintest.Precision, domaintest.Resolve}, catalog.runeTrees)
		require.Equal(t, []domain.StatPerk{domaintest.AdaptiveForce, domaintest.HealthShard}, catalog.statPerks)
		require.Empty(t, catalog.augments)
	})

	t.Run("participant order does not change the result", func(t *testing.T) {
		t.Parallel()

		forward := domaintest.NewMatchBuilder("EUW1_1", start).WithParticipants(aatrox, lulu).Build()
		reversed := domaintest.NewMatchBuilder("EUW1_1", start).WithParticipants(lulu, aatrox).Build()

		require.Equal(t, collectCatalog(forward), collectCatalog(reversed))
		require.Equal(t, placeholderPUUIDs(forward), placeholderPUUIDs(reversed))
	})

	t.Run("placeholder puuids are sorted and distinct", func(t *testing.T) {
		t.Parallel()

		duplicate := domaintest.NewParticipantBuilder("puuid-b", 2).Build()
		match := domaintest.NewMatchBuilder("EUW1_1", start).WithParticipants(aatrox, lulu, duplicate).Build()

		require.Equal(t, []string{"puuid-a", "puuid-b"}, placeholderPUUIDs(match))
	})
}
