package domaintest

import (
	"fmt"
	"time"

	"github.com/Amund211/riftlight/internal/domain"
)

var (
	Aatrox = domain.Champion{ID: 266, Key: "Aatrox", Name: "Aatrox"}
	Lulu   = domain.Champion{ID: 117, Key: "Lulu", Name: "Lulu"}

	Flash  = domain.SummonerSpell{ID: 4, Key: "SummonerFlash", Name: "Flash"}
	Ignite = domain.SummonerSpell{ID: 14, Key: "SummonerDot", Name: "Ignite"}

	DoransBlade   = domain.Item{ID: 1055, Name: "Doran's Blade", TotalGold: 450}
	HealthPotion  = domain.Item{ID: 2003, Name: "Health Potion", TotalGold: 50}
	StealthWard   = domain.Item{ID: 3340, Name: "Stealth Ward", TotalGold: 0}
	InfinityEdge  = domain.Item{ID: 3031, Name: "Infinity Edge", TotalGold: 3450}
	Precision     = domain.RuneTree{ID: 8000, Key: "Precision", Name: "Precision"}
	Resolve       = domain.RuneTree{ID: 8400, Key: "Resolve", Name: "Resolve"}
	Conqueror     = domain.Rune{ID: 8010, Key: "Conqueror", Name: "Conqueror", TreeID: 8000}
	Triumph       = domain.Rune{ID: 9111, Key: "Triumph", Name: "Triumph", TreeID: 8000}
	SecondWind    = domain.Rune{ID: 8444, Key: "SecondWind", Name: "Second Wind", TreeID: 8400}
	AdaptiveForce = domain.StatPerk{ID: 5008, Name: "Adaptive Force"}
	HealthShard   = domain.StatPerk{ID: 5011, Name: "Health"}
)

type participantBuilder struct {
	participant domain.Participant
}

// NewParticipantBuilder returns a blue side top laner with a plausible loadout
func NewParticipantBuilder(puuid string, participantID int) *participantBuilder {
	teamID := 100
	if participantID > 5 {
		teamID = 200
	}
	return &participantBuilder{
		participant: domain.Participant{
			PUUID:              puuid,
			GameName:           fmt.Sprintf("Player %d", participantID),
			TagLine:            "EUW",
			ParticipantID:      participantID,
			TeamID:             teamID,
			Champion:           Aatrox,
			ChampionLevel:      16,
			TeamPosition:       "TOP",
			IndividualPosition: "TOP",
			SummonerSpells:     [2]domain.SummonerSpell{Flash, Ignite},
			Items: []domain.ItemSlot{
				{Slot: 0, Item: DoransBlade},
				{Slot: 1, Item: InfinityEdge},
				{Slot: 6, Item: StealthWard},
			},
			Runes: domain.Runes{
				PrimaryStyle: Precision,
				SubStyle:     Resolve,
				Selections:   []domain.Rune{Conqueror, Triumph, SecondWind},
				StatPerks: domain.StatPerks{
					Offense: AdaptiveForce,
					Flex:    AdaptiveForce,
					Defense: HealthShard,
				},
			},
		},
	}
}

func (pb *participantBuilder) WithTeam(teamID int) *participantBuilder {
	pb.participant.TeamID = teamID
	return pb
}

func (pb *participantBuilder) WithChampion(champion domain.Champion) *participantBuilder {
	pb.participant.Champion = champion
	return pb
}

func (pb *participantBuilder) WithPosition(position string) *participantBuilder {
	pb.participant.TeamPosition = position
	pb.participant.IndividualPosition = position
	return pb
}

func (pb *participantBuilder) WithKDA(kills, deaths, assists int) *participantBuilder {
	pb.participant.Kills = kills
	pb.participant.Deaths = deaths
	pb.participant.Assists = assists
	return pb
}

func (pb *participantBuilder) WithMinions(totalMinions, neutralMinions int) *participantBuilder {
	pb.participant.TotalMinionsKilled = totalMinions
	pb.participant.NeutralMinionsKilled = neutralMinions
	return pb
}

func (pb *participantBuilder) WithWin(win bool) *participantBuilder {
	pb.participant.Win = win
	return pb
}

func (pb *participantBuilder) WithArena(placement, playerSubteamID int, augments ...domain.Augment) *participantBuilder {
	pb.participant.Arena = &domain.ArenaStats{
		Placement:       placement,
		PlayerSubteamID: playerSubteamID,
		Augments:        augments,
	}
	return pb
}

func (pb *participantBuilder) Build() domain.Participant {
	return pb.participant
}

type matchBuilder struct {
	match domain.Match
}

// NewMatchBuilder returns a 25 minute ranked solo match without participants
func NewMatchBuilder(matchID string, gameCreation time.Time) *matchBuilder {
	return &matchBuilder{
		match: domain.Match{
			MatchID:             matchID,
			Region:              "europe",
			GameDurationSeconds: 1500,
			GameCreation:        gameCreation,
			GameEnd:             gameCreation.Add(1500 * time.Second),
			GameMode:            "CLASSIC",
			GameType:            "MATCHED_GAME",
			QueueID:             420,
			Participants:        []domain.Participant{},
			Timelines:           []domain.ParticipantTimeline{},
		},
	}
}

func (mb *matchBuilder) WithRegion(region string) *matchBuilder {
	mb.match.Region = region
	return mb
}

func (mb *matchBuilder) WithDuration(seconds int) *matchBuilder {
	mb.match.GameDurationSeconds = seconds
	mb.match.GameEnd = mb.match.GameCreation.Add(time.Duration(seconds) * time.Second)
	return mb
}

func (mb *matchBuilder) WithQueue(queueID int, gameMode string) *matchBuilder {
	mb.match.QueueID = queueID
	mb.match.GameMode = gameMode
	return mb
}

func (mb *matchBuilder) WithParticipants(participants ...domain.Participant) *matchBuilder {
	mb.match.Participants = append(mb.match.Participants, participants...)
	return mb
}

// WithPlayers adds one default participant per puuid, numbered from 1
func (mb *matchBuilder) WithPlayers(puuids ...string) *matchBuilder {
	for _, puuid := range puuids {
		participantID := len(mb.match.Participants) + 1
		mb.match.Participants = append(mb.match.Participants, NewParticipantBuilder(puuid, participantID).Build())
	}
	return mb
}

func (mb *matchBuilder) Build() domain.Match {
	return mb.match
}
