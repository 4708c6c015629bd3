package timeline_test

import (
	"testing"

	"github.com/Amund211/riftlight/internal/domain"
	"github.com/Amund211/riftlight/internal/timeline"
	"github.com/stretchr/testify/require"
)

func TestCombatLog(t *testing.T) {
	t.Parallel()

	frames := []timeline.Frame{
		{
			Timestamp: 0,
			Events: []timeline.Event{
				{Type: "ELITE_MONSTER_KILL", Timestamp: 300_000, KillerID: ptr(2), KillerTeamID: ptr(100), MonsterType: ptr("DRAGON"), MonsterSubType: ptr("WATER_DRAGON"), AssistingParticipantIDs: []int{1}},
				{Type: "CHAMPION_KILL", Timestamp: 120_000, KillerID: ptr(1), VictimID: ptr(6), AssistingParticipantIDs: []int{2}, Position: &timeline.RawPosition{X: 7000, Y: 7000}},
				{Type: "CHAMPION_KILL", Timestamp: 200_000, KillerID: ptr(7), VictimID: ptr(2), Position: &timeline.RawPosition{X: 1000, Y: 500}},
			},
		},
	}
	sides := map[int]domain.Side{
		1: domain.SideBlue,
		2: domain.SideBlue,
		6: domain.SideRed,
		7: domain.SideRed,
	}

	timelines := timeline.ExtractAll(frames, []int{1, 2, 6, 7}, items)
	log := timeline.CombatLog(timelines, sides)

	require.Equal(t, []timeline.CombatLogEntry{
		{
			Category:                timeline.CategoryKill,
			TimestampMs:             120_000,
			KillerID:                1,
			KillerSide:              domain.SideBlue,
			VictimID:                6,
			VictimSide:              domain.SideRed,
			AssistingParticipantIDs: []int{2},
			Position:                domain.Position{X: 7000, Y: 7000},
		},
		{
			Category:    timeline.CategoryKill,
			TimestampMs: 200_000,
			KillerID:    7,
			KillerSide:  domain.SideRed,
			VictimID:    2,
			VictimSide:  domain.SideBlue,
			Position:    domain.Position{X: 1000, Y: 500},
		},
		{
			Category:                timeline.CategoryEliteMonster,
			TimestampMs:             300_000,
			KillerID:                2,
			KillerSide:              domain.SideBlue,
			MonsterType:             "DRAGON",
			MonsterSubType:          "WATER_DRAGON",
			AssistingParticipantIDs: []int{1},
		},
	}, log)
}

func TestCombatLogEmpty(t *testing.T) {
	t.Parallel()

	require.Empty(t, timeline.CombatLog(nil, nil))
}

func TestToMinimap(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		position  domain.Position
		expectedX float64
		expectedY float64
	}{
		{"origin is bottom left", domain.Position{X: 0, Y: 0}, 0, 512},
		{"top right", domain.Position{X: 15000, Y: 15000}, 512, 0},
		{"center", domain.Position{X: 7500, Y: 7500}, 256, 256},
		{"clamped", domain.Position{X: -100, Y: 16000}, 0, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			x, y := timeline.ToMinimap(c.position, 512)
			require.InDelta(t, c.expectedX, x, 1e-9)
			require.InDelta(t, c.expectedY, y, 1e-9)
		})
	}
}
