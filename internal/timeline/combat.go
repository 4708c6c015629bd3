package timeline

import (
	"slices"

	"github.com/Amund211/riftlight/internal/domain"
)

type CombatCategory string

const (
	CategoryKill         CombatCategory = "kill"
	CategoryEliteMonster CombatCategory = "elite_monster"
)

type CombatLogEntry struct {
	Category    CombatCategory
	TimestampMs int64

	KillerID   int
	KillerSide domain.Side

	// Kills only
	VictimID   int
	VictimSide domain.Side

	// Elite monsters only
	MonsterType    string
	MonsterSubType string

	AssistingParticipantIDs []int
	Position                domain.Position
}

type killKey struct {
	timestamp int64
	killerID  int
	victimID  int
	position  domain.Position
}

type monsterKey struct {
	timestamp      int64
	killerID       int
	monsterType    string
	monsterSubType string
}

// CombatLog merges the champion kills and elite monster kills of all timelines into one
// chronological log. Events seen through several participants are only included once.
func CombatLog(timelines []domain.ParticipantTimeline, sides map[int]domain.Side) []CombatLogEntry {
	seenKills := make(map[killKey]struct{})
	seenMonsters := make(map[monsterKey]struct{})

	entries := []CombatLogEntry{}
	for _, timeline := range timelines {
		for _, event := range Events(timeline) {
			switch e := event.(type) {
			case domain.ChampionKillEvent:
				key := killKey{
					timestamp: e.TimestampMs,
					killerID:  e.KillerID,
					victimID:  e.VictimID,
					position:  e.Position,
				}
				if _, ok := seenKills[key]; ok {
					continue
				}
				seenKills[key] = struct{}{}

				entries = append(entries, CombatLogEntry{
					Category:                CategoryKill,
					TimestampMs:             e.TimestampMs,
					KillerID:                e.KillerID,
					KillerSide:              sides[e.KillerID],
					VictimID:                e.VictimID,
					VictimSide:              sides[e.VictimID],
					AssistingParticipantIDs: e.AssistingParticipantIDs,
					Position:                e.Position,
				})
			case domain.EliteMonsterKillEvent:
				key := monsterKey{
					timestamp:      e.TimestampMs,
					killerID:       e.KillerID,
					monsterType:    e.MonsterType,
					monsterSubType: e.MonsterSubType,
				}
				if _, ok := seenMonsters[key]; ok {
					continue
				}
				seenMonsters[key] = struct{}{}

				killerSide := sides[e.KillerID]
				if e.KillerTeamID != 0 {
					killerSide = domain.SideForTeam(e.KillerTeamID)
				}

				entries = append(entries, CombatLogEntry{
					Category:                CategoryEliteMonster,
					TimestampMs:             e.TimestampMs,
					KillerID:                e.KillerID,
					KillerSide:              killerSide,
					MonsterType:             e.MonsterType,
					MonsterSubType:          e.MonsterSubType,
					AssistingParticipantIDs: e.AssistingParticipantIDs,
					Position:                e.Position,
				})
			}
		}
	}

	slices.SortStableFunc(entries, func(a, b CombatLogEntry) int {
		switch {
		case a.TimestampMs < b.TimestampMs:
			return -1
		case a.TimestampMs > b.TimestampMs:
			return 1
		}
		return 0
	})

	return entries
}

// Summoner's Rift coordinates range from 0 to MapSize on both axes
const MapSize = 15000

// ToMinimap maps in-game coordinates to pixel coordinates in a square image of the given size.
// The y axis is inverted, as image coordinates grow downwards.
func ToMinimap(pos domain.Position, size float64) (float64, float64) {
	x := float64(pos.X) / MapSize * size
	y := size - float64(pos.Y)/MapSize*size

	return min(max(x, 0), size), min(max(y, 0), size)
}
