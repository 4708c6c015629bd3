package domain

import "time"

const QueueIDArena = 1700

type Side string

const (
	SideBlue Side = "blue"
	SideRed  Side = "red"
)

// SideForTeam maps the upstream team id (100/200) to a side of the map
func SideForTeam(teamID int) Side {
	if teamID == 200 {
		return SideRed
	}
	return SideBlue
}

type Match struct {
	MatchID             string
	Region              string
	GameDurationSeconds int
	GameCreation        time.Time
	GameEnd             time.Time
	GameMode            string
	GameType            string
	QueueID             int

	// Upstream order, not meaningful
	Participants []Participant

	// At most one per participant, ordered by participant id
	Timelines []ParticipantTimeline
}

func (m Match) Participant(puuid string) (Participant, bool) {
	for _, participant := range m.Participants {
		if participant.PUUID == puuid {
			return participant, true
		}
	}
	return Participant{}, false
}

// Sides maps each participant id to the side of the map it played on
func (m Match) Sides() map[int]Side {
	sides := make(map[int]Side, len(m.Participants))
	for _, participant := range m.Participants {
		sides[participant.ParticipantID] = SideForTeam(participant.TeamID)
	}
	return sides
}

func (m Match) Timeline(participantID int) (ParticipantTimeline, bool) {
	for _, timeline := range m.Timelines {
		if timeline.ParticipantID == participantID {
			return timeline, true
		}
	}
	return ParticipantTimeline{}, false
}

type ItemSlot struct {
	// 0-6, slot 6 is the trinket
	Slot int
	Item Item
}

type StatPerks struct {
	Offense StatPerk
	Flex    StatPerk
	Defense StatPerk
}

type Runes struct {
	PrimaryStyle RuneTree
	SubStyle     RuneTree
	Selections   []Rune
	StatPerks    StatPerks
}

type ArenaStats struct {
	Placement       int
	PlayerSubteamID int
	Augments        []Augment
}

type Participant struct {
	PUUID         string
	GameName      string
	TagLine       string
	ParticipantID int
	TeamID        int

	Champion           Champion
	ChampionLevel      int
	TeamPosition       string
	IndividualPosition string
	Win                bool

	Kills   int
	Deaths  int
	Assists int

	TotalDamageDealtToChampions    int
	TotalDamageTaken               int
	TotalHealsOnTeammates          int
	TotalDamageShieldedOnTeammates int
	GoldEarned                     int
	VisionScore                    int
	WardsPlaced                    int
	WardsKilled                    int
	TotalMinionsKilled             int
	NeutralMinionsKilled           int

	SummonerSpells [2]SummonerSpell
	Items          []ItemSlot
	Runes          Runes

	// Only set for arena games
	Arena *ArenaStats

	KDA                  string
	MinionsPerMinute     float64
	VisionPerMinute      float64
	PerformanceScore     int
	PerformancePlacement int
}

func (p Participant) IsSupport() bool {
	return p.IndividualPosition == "UTILITY"
}
