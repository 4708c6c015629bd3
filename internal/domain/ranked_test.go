package domain_test

import (
	"fmt"
	"testing"

	"github.com/Amund211/riftlight/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestWinRatePercent(t *testing.T) {
	t.Parallel()

	cases := []struct {
		wins     int
		losses   int
		expected int
	}{
		{0, 0, 0},
		{1, 0, 100},
		{0, 1, 0},
		{1, 1, 50},
		{2, 1, 67},
		{1, 2, 33},
		{55, 45, 55},
		{1, 7, 13},
	}

	for _, c := range cases {
		t.Run(fmt.Sprintf("%d/%d", c.wins, c.losses), func(t *testing.T) {
			t.Parallel()

			require.Equal(t, c.expected, domain.WinRatePercent(c.wins, c.losses))
		})
	}
}

func TestRankedStanding(t *testing.T) {
	t.Parallel()

	t.Run("unranked sentinel", func(t *testing.T) {
		t.Parallel()

		standing := domain.UnrankedStanding(domain.QueueRankedFlex)
		require.True(t, standing.IsUnranked())
		require.Equal(t, "UNRANKED", standing.Tier)
		require.Equal(t, domain.QueueRankedFlex, standing.QueueType)
		require.Equal(t, 0, standing.WinRatePercent)
	})

	t.Run("new standing derives win rate", func(t *testing.T) {
		t.Parallel()

		standing := domain.NewRankedStanding(domain.QueueRankedSolo, "GOLD", "II", 45, 30, 20, true)
		require.False(t, standing.IsUnranked())
		require.Equal(t, 60, standing.WinRatePercent)
	})

	t.Run("Standings skips unranked queues", func(t *testing.T) {
		t.Parallel()

		solo := domain.NewRankedStanding(domain.QueueRankedSolo, "GOLD", "II", 45, 30, 20, false)
		account := domain.RankedAccount{
			SoloQueue: solo,
			FlexQueue: domain.UnrankedStanding(domain.QueueRankedFlex),
		}
		require.Equal(t, []domain.RankedStanding{solo}, account.Standings())
	})
}
