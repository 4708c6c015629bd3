package transform

import (
	"fmt"
	"slices"
	"time"

	"github.com/Amund211/riftlight/internal/adapters/matchrepository"
	"github.com/Amund211/riftlight/internal/adapters/riotapi"
	"github.com/Amund211/riftlight/internal/domain"
	"github.com/Amund211/riftlight/internal/timeline"
)

type Catalog interface {
	Champion(id int) (domain.Champion, bool)
	Item(id int) (domain.Item, bool)
	Rune(id int) (domain.Rune, bool)
	RuneTree(id int) (domain.RuneTree, bool)
	StatPerk(id int) (domain.StatPerk, bool)
	SummonerSpell(id int) (domain.SummonerSpell, bool)
	Augment(id int) (domain.Augment, bool)
}

// lookupOr returns the catalog entry, or an entry carrying only the id
func lookupOr[T any](lookup func(int) (T, bool), id int, fallback func(int) T) T {
	if value, ok := lookup(id); ok {
		return value
	}
	return fallback(id)
}

func lookupChampion(catalog Catalog, id int) (domain.Champion, error) {
	champion, ok := catalog.Champion(id)
	if !ok {
		return domain.Champion{}, fmt.Errorf("%w: unknown champion %d", domain.ErrValidation, id)
	}
	return champion, nil
}

func summonerSpell(catalog Catalog, id int) domain.SummonerSpell {
	return lookupOr(catalog.SummonerSpell, id, func(id int) domain.SummonerSpell { return domain.SummonerSpell{ID: id} })
}

func item(catalog Catalog, id int) domain.Item {
	return lookupOr(catalog.Item, id, func(id int) domain.Item { return domain.Item{ID: id} })
}

func runeTree(catalog Catalog, id int) domain.RuneTree {
	return lookupOr(catalog.RuneTree, id, func(id int) domain.RuneTree { return domain.RuneTree{ID: id} })
}

func runeByID(catalog Catalog, id int) domain.Rune {
	return lookupOr(catalog.Rune, id, func(id int) domain.Rune { return domain.Rune{ID: id} })
}

func statPerk(catalog Catalog, id int) domain.StatPerk {
	return lookupOr(catalog.StatPerk, id, func(id int) domain.StatPerk { return domain.StatPerk{ID: id} })
}

func augment(catalog Catalog, id int) domain.Augment {
	return lookupOr(catalog.Augment, id, func(id int) domain.Augment { return domain.Augment{ID: id} })
}

// MatchFromAPI converts an upstream match and its optional timeline
func MatchFromAPI(region string, match riotapi.MatchDTO, matchTimeline *riotapi.TimelineDTO, catalog Catalog) (domain.Match, error) {
	info := match.Info
	if match.Metadata.MatchID == "" {
		return domain.Match{}, fmt.Errorf("%w: match without id", domain.ErrValidation)
	}

	gameCreation := time.UnixMilli(info.GameCreation).UTC()

	// Matches from before patch 11.20 report the duration in milliseconds and have no end timestamp
	durationSeconds := int(info.GameDuration)
	gameEnd := time.UnixMilli(info.GameEndTimestamp).UTC()
	if info.GameEndTimestamp == 0 {
		durationSeconds = int(info.GameDuration / 1000)
		gameEnd = gameCreation.Add(time.Duration(durationSeconds) * time.Second)
	}

	participants := make([]domain.Participant, 0, len(info.Participants))
	for _, dto := range info.Participants {
		participant, err := participantFromAPI(dto, catalog)
		if err != nil {
			return domain.Match{}, fmt.Errorf("failed to convert participant %d of match %s: %w", dto.ParticipantID, match.Metadata.MatchID, err)
		}
		participants = append(participants, participant)
	}

	var frames []timeline.Frame
	if matchTimeline != nil {
		frames = matchTimeline.Info.Frames
	}

	return finalize(domain.Match{
		MatchID:             match.Metadata.MatchID,
		Region:              region,
		GameDurationSeconds: durationSeconds,
		GameCreation:        gameCreation,
		GameEnd:             gameEnd,
		GameMode:            info.GameMode,
		GameType:            info.GameType,
		QueueID:             info.QueueID,
		Participants:        participants,
	}, frames, catalog), nil
}

func participantFromAPI(dto riotapi.ParticipantDTO, catalog Catalog) (domain.Participant, error) {
	if dto.PUUID == "" {
		return domain.Participant{}, fmt.Errorf("%w: participant without puuid", domain.ErrValidation)
	}

	champion, err := lookupChampion(catalog, dto.ChampionID)
	if err != nil {
		return domain.Participant{}, err
	}

	items := make([]domain.ItemSlot, 0, 7)
	for slot, id := range dto.Items() {
		if id == 0 {
			continue
		}
		items = append(items, domain.ItemSlot{Slot: slot, Item: item(catalog, id)})
	}

	runes := domain.Runes{
		Selections: []domain.Rune{},
		StatPerks: domain.StatPerks{
			Offense: statPerk(catalog, dto.Perks.StatPerks.Offense),
			Flex:    statPerk(catalog, dto.Perks.StatPerks.Flex),
			Defense: statPerk(catalog, dto.Perks.StatPerks.Defense),
		},
	}
	for i, style := range dto.Perks.Styles {
		switch {
		case style.Description == "primaryStyle" || (style.Description == "" && i == 0):
			runes.PrimaryStyle = runeTree(catalog, style.Style)
		case style.Description == "subStyle" || (style.Description == "" && i == 1):
			runes.SubStyle = runeTree(catalog, style.Style)
		}
		for _, selection := range style.Selections {
			runes.Selections = append(runes.Selections, runeByID(catalog, selection.Perk))
		}
	}

	var arena *domain.ArenaStats
	if dto.Placement > 0 {
		augments := make([]domain.Augment, 0, 6)
		for _, id := range dto.Augments() {
			augments = append(augments, augment(catalog, id))
		}
		arena = &domain.ArenaStats{
			Placement:       dto.Placement,
			PlayerSubteamID: dto.PlayerSubteamID,
			Augments:        augments,
		}
	}

	return domain.Participant{
		PUUID:         dto.PUUID,
		GameName:      dto.RiotIDGameName,
		TagLine:       dto.RiotIDTagline,
		ParticipantID: dto.ParticipantID,
		TeamID:        dto.TeamID,

		Champion:           champion,
		ChampionLevel:      dto.ChampLevel,
		TeamPosition:       dto.TeamPosition,
		IndividualPosition: dto.IndividualPosition,
		Win:                dto.Win,

		Kills:   dto.Kills,
		Deaths:  dto.Deaths,
		Assists: dto.Assists,

		TotalDamageDealtToChampions:    dto.TotalDamageDealtToChampions,
		TotalDamageTaken:               dto.TotalDamageTaken,
		TotalHealsOnTeammates:          dto.TotalHealsOnTeammates,
		TotalDamageShieldedOnTeammates: dto.TotalDamageShieldedOnTeammates,
		GoldEarned:                     dto.GoldEarned,
		VisionScore:                    dto.VisionScore,
		WardsPlaced:                    dto.WardsPlaced,
		WardsKilled:                    dto.WardsKilled,
		TotalMinionsKilled:             dto.TotalMinionsKilled,
		NeutralMinionsKilled:           dto.NeutralMinionsKilled,

		SummonerSpells: [2]domain.SummonerSpell{
			summonerSpell(catalog, dto.Summoner1ID),
			summonerSpell(catalog, dto.Summoner2ID),
		},
		Items: items,
		Runes: runes,
		Arena: arena,
	}, nil
}

// MatchFromRecord converts a stored match. Stored timelines are correlated the same way as upstream ones.
func MatchFromRecord(record matchrepository.MatchRecord, catalog Catalog) (domain.Match, error) {
	participants := make([]domain.Participant, 0, len(record.Participants))
	for _, participantRecord := range record.Participants {
		participant, err := participantFromRecord(participantRecord, catalog)
		if err != nil {
			return domain.Match{}, fmt.Errorf("failed to convert participant %d of match %s: %w", participantRecord.ParticipantID, record.MatchID, err)
		}
		participants = append(participants, participant)
	}

	return finalize(domain.Match{
		MatchID:             record.MatchID,
		Region:              record.Region,
		GameDurationSeconds: record.GameDurationSeconds,
		GameCreation:        record.GameCreation.UTC(),
		GameEnd:             record.GameEnd.UTC(),
		GameMode:            record.GameMode,
		GameType:            record.GameType,
		QueueID:             record.QueueID,
		Participants:        participants,
	}, record.Frames, catalog), nil
}

func participantFromRecord(record matchrepository.ParticipantRecord, catalog Catalog) (domain.Participant, error) {
	if record.PUUID == "" {
		return domain.Participant{}, fmt.Errorf("%w: participant without puuid", domain.ErrValidation)
	}

	champion, err := lookupChampion(catalog, record.ChampionID)
	if err != nil {
		return domain.Participant{}, err
	}

	items := make([]domain.ItemSlot, 0, len(record.Items))
	for _, slot := range record.Items {
		items = append(items, domain.ItemSlot{Slot: slot.Slot, Item: item(catalog, slot.ItemID)})
	}

	selections := make([]domain.Rune, 0, len(record.RuneIDs))
	for _, id := range record.RuneIDs {
		selections = append(selections, runeByID(catalog, id))
	}

	var arena *domain.ArenaStats
	if record.Placement != nil {
		augments := make([]domain.Augment, 0, len(record.AugmentIDs))
		for _, id := range record.AugmentIDs {
			augments = append(augments, augment(catalog, id))
		}
		arena = &domain.ArenaStats{
			Placement: *record.Placement,
			Augments:  augments,
		}
		if record.PlayerSubteamID != nil {
			arena.PlayerSubteamID = *record.PlayerSubteamID
		}
	}

	return domain.Participant{
		PUUID:         record.PUUID,
		GameName:      record.GameName,
		TagLine:       record.TagLine,
		ParticipantID: record.ParticipantID,
		TeamID:        record.TeamID,

		Champion:           champion,
		ChampionLevel:      record.ChampionLevel,
		TeamPosition:       record.TeamPosition,
		IndividualPosition: record.IndividualPosition,
		Win:                record.Win,

		Kills:   record.Kills,
		Deaths:  record.Deaths,
		Assists: record.Assists,

		TotalDamageDealtToChampions:    record.TotalDamageDealtToChampions,
		TotalDamageTaken:               record.TotalDamageTaken,
		TotalHealsOnTeammates:          record.TotalHealsOnTeammates,
		TotalDamageShieldedOnTeammates: record.TotalDamageShieldedOnTeammates,
		GoldEarned:                     record.GoldEarned,
		VisionScore:                    record.VisionScore,
		WardsPlaced:                    record.WardsPlaced,
		WardsKilled:                    record.WardsKilled,
		TotalMinionsKilled:             record.TotalMinionsKilled,
		NeutralMinionsKilled:           record.NeutralMinionsKilled,

		SummonerSpells: [2]domain.SummonerSpell{
			summonerSpell(catalog, record.SummonerSpell1ID),
			summonerSpell(catalog, record.SummonerSpell2ID),
		},
		Items: items,
		Runes: domain.Runes{
			PrimaryStyle: runeTree(catalog, record.PrimaryStyleID),
			SubStyle:     runeTree(catalog, record.SubStyleID),
			Selections:   selections,
			StatPerks: domain.StatPerks{
				Offense: statPerk(catalog, record.StatPerkOffenseID),
				Flex:    statPerk(catalog, record.StatPerkFlexID),
				Defense: statPerk(catalog, record.StatPerkDefenseID),
			},
		},
		Arena: arena,
	}, nil
}

func finalize(match domain.Match, frames []timeline.Frame, catalog Catalog) domain.Match {
	match.Participants = withDerivedStats(match.Participants, match.GameDurationSeconds)

	match.Timelines = []domain.ParticipantTimeline{}
	if frames != nil {
		participantIDs := make([]int, 0, len(match.Participants))
		for _, participant := range match.Participants {
			participantIDs = append(participantIDs, participant.ParticipantID)
		}
		match.Timelines = timeline.ExtractAll(frames, participantIDs, catalog)
	}

	return match
}

// SortNewestFirst orders matches by creation time, newest first
func SortNewestFirst(matches []domain.Match) {
	slices.SortStableFunc(matches, func(a, b domain.Match) int {
		return b.GameCreation.Compare(a.GameCreation)
	})
}
