package ports

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Amund211/riftlight/internal/app"
	"github.com/Amund211/riftlight/internal/domain"
	"github.com/Amund211/riftlight/internal/logging"
	"github.com/Amund211/riftlight/internal/reporting"
	"github.com/Amund211/riftlight/internal/timeline"
	"github.com/goccy/go-json"
)

// Minimap coordinates are returned in percent of the map
const minimapSize = 100

type errorResponse struct {
	Success bool   `json:"success"`
	Cause   string `json:"cause"`
}

type accountJSON struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

type accountResponse struct {
	Success   bool        `json:"success"`
	Source    app.Source  `json:"source"`
	Persisted bool        `json:"persisted"`
	Account   accountJSON `json:"account"`
}

type standingJSON struct {
	QueueType      domain.QueueType `json:"queueType"`
	Tier           string           `json:"tier"`
	Division       string           `json:"division,omitempty"`
	LeaguePoints   int              `json:"leaguePoints"`
	Wins           int              `json:"wins"`
	Losses         int              `json:"losses"`
	WinRatePercent int              `json:"winRatePercent"`
	HotStreak      bool             `json:"hotStreak"`
}

type rankedAccountJSON struct {
	PUUID         string       `json:"puuid"`
	Region        string       `json:"region"`
	Platform      string       `json:"platform"`
	ProfileIconID int          `json:"profileIconId"`
	RevisionDate  time.Time    `json:"revisionDate"`
	SummonerLevel int          `json:"summonerLevel"`
	SoloQueue     standingJSON `json:"soloQueue"`
	FlexQueue     standingJSON `json:"flexQueue"`
	QueriedAt     time.Time    `json:"queriedAt"`
}

type rankedResponse struct {
	Success   bool              `json:"success"`
	Source    app.Source        `json:"source"`
	Persisted bool              `json:"persisted"`
	Ranked    rankedAccountJSON `json:"ranked"`
}

type namedJSON struct {
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

type itemSlotJSON struct {
	Slot int    `json:"slot"`
	ID   int    `json:"id"`
	Name string `json:"name,omitempty"`
}

type runesJSON struct {
	PrimaryStyle namedJSON   `json:"primaryStyle"`
	SubStyle     namedJSON   `json:"subStyle"`
	Selections   []namedJSON `json:"selections"`
	StatPerks    []namedJSON `json:"statPerks"`
}

type augmentJSON struct {
	ID     int    `json:"id"`
	Name   string `json:"name,omitempty"`
	Rarity string `json:"rarity,omitempty"`
}

type arenaJSON struct {
	Placement       int           `json:"placement"`
	PlayerSubteamID int           `json:"playerSubteamId"`
	Augments        []augmentJSON `json:"augments"`
}

type participantJSON struct {
	PUUID         string      `json:"puuid"`
	GameName      string      `json:"gameName,omitempty"`
	TagLine       string      `json:"tagLine,omitempty"`
	ParticipantID int         `json:"participantId"`
	TeamID        int         `json:"teamId"`
	Side          domain.Side `json:"side"`

	Champion           namedJSON `json:"champion"`
	ChampionLevel      int       `json:"championLevel"`
	TeamPosition       string    `json:"teamPosition,omitempty"`
	IndividualPosition string    `json:"individualPosition,omitempty"`
	Win                bool      `json:"win"`

	Kills   int    `json:"kills"`
	Deaths  int    `json:"deaths"`
	Assists int    `json:"assists"`
	KDA     string `json:"kda"`

	TotalDamageDealtToChampions    int `json:"totalDamageDealtToChampions"`
	TotalDamageTaken               int `json:"totalDamageTaken"`
	TotalHealsOnTeammates          int `json:"totalHealsOnTeammates"`
	TotalDamageShieldedOnTeammates int `json:"totalDamageShieldedOnTeammates"`
	GoldEarned                     int `json:"goldEarned"`
	VisionScore                    int `json:"visionScore"`
	WardsPlaced                    int `json:"wardsPlaced"`
	WardsKilled                    int `json:"wardsKilled"`
	CreepScore                     int `json:"creepScore"`

	MinionsPerMinute     float64 `json:"minionsPerMinute"`
	VisionPerMinute      float64 `json:"visionPerMinute"`
	PerformanceScore     int     `json:"performanceScore"`
	PerformancePlacement int     `json:"performancePlacement"`

	SummonerSpells []namedJSON    `json:"summonerSpells"`
	Items          []itemSlotJSON `json:"items"`
	Runes          runesJSON      `json:"runes"`
	Arena          *arenaJSON     `json:"arena,omitempty"`
}

type matchJSON struct {
	MatchID             string            `json:"matchId"`
	Region              string            `json:"region"`
	GameDurationSeconds int               `json:"gameDurationSeconds"`
	GameCreation        time.Time         `json:"gameCreation"`
	GameEnd             time.Time         `json:"gameEnd"`
	GameMode            string            `json:"gameMode"`
	GameType            string            `json:"gameType"`
	QueueID             int               `json:"queueId"`
	Participants        []participantJSON `json:"participants"`
}

type persistenceJSON struct {
	Total          int     `json:"total"`
	Saved          int     `json:"saved"`
	Existed        int     `json:"existed"`
	Failed         int     `json:"failed"`
	Skipped        int     `json:"skipped"`
	ProcessingRate float64 `json:"processingRate"`
	NewSaveRate    float64 `json:"newSaveRate"`
}

type matchHistoryResponse struct {
	Success     bool            `json:"success"`
	Source      app.Source      `json:"source"`
	Matches     []matchJSON     `json:"matches"`
	Persistence persistenceJSON `json:"persistence"`
}

type positionJSON struct {
	X int `json:"x"`
	Y int `json:"y"`
	// Percent of the minimap, origin in the top left corner
	MinimapX float64 `json:"minimapX"`
	MinimapY float64 `json:"minimapY"`
}

type combatLogEntryJSON struct {
	Category                timeline.CombatCategory `json:"category"`
	TimestampMs             int64                   `json:"timestampMs"`
	KillerID                int                     `json:"killerId"`
	KillerSide              domain.Side             `json:"killerSide,omitempty"`
	VictimID                int                     `json:"victimId,omitempty"`
	VictimSide              domain.Side             `json:"victimSide,omitempty"`
	MonsterType             string                  `json:"monsterType,omitempty"`
	MonsterSubType          string                  `json:"monsterSubType,omitempty"`
	AssistingParticipantIDs []int                   `json:"assistingParticipantIds"`
	Position                positionJSON            `json:"position"`
}

type itemEntryJSON struct {
	Type        domain.EventType `json:"type"`
	Item        *namedJSON       `json:"item"`
	Count       int              `json:"count"`
	TimestampMs int64            `json:"timestampMs"`
}

type itemMinuteJSON struct {
	Minute  int             `json:"minute"`
	Entries []itemEntryJSON `json:"entries"`
}

type participantItemsJSON struct {
	ParticipantID int              `json:"participantId"`
	Minutes       []itemMinuteJSON `json:"minutes"`
}

type matchResponse struct {
	Success   bool                   `json:"success"`
	Source    app.Source             `json:"source"`
	Persisted bool                   `json:"persisted"`
	Match     matchJSON              `json:"match"`
	CombatLog []combatLogEntryJSON   `json:"combatLog"`
	Items     []participantItemsJSON `json:"items"`
}

func accountToJSON(account domain.Account) accountJSON {
	return accountJSON{
		PUUID:    account.PUUID,
		GameName: account.GameName,
		TagLine:  account.TagLine,
	}
}

func standingToJSON(standing domain.RankedStanding) standingJSON {
	return standingJSON{
		QueueType:      standing.QueueType,
		Tier:           standing.Tier,
		Division:       standing.Division,
		LeaguePoints:   standing.LeaguePoints,
		Wins:           standing.Wins,
		Losses:         standing.Losses,
		WinRatePercent: standing.WinRatePercent,
		HotStreak:      standing.HotStreak,
	}
}

func rankedAccountToJSON(ranked domain.RankedAccount) rankedAccountJSON {
	return rankedAccountJSON{
		PUUID:         ranked.PUUID,
		Region:        ranked.Region,
		Platform:      ranked.Platform,
		ProfileIconID: ranked.ProfileIconID,
		RevisionDate:  ranked.RevisionDate,
		SummonerLevel: ranked.SummonerLevel,
		SoloQueue:     standingToJSON(ranked.SoloQueue),
		FlexQueue:     standingToJSON(ranked.FlexQueue),
		QueriedAt:     ranked.QueriedAt,
	}
}

func participantToJSON(participant domain.Participant) participantJSON {
	spells := make([]namedJSON, 0, len(participant.SummonerSpells))
	for _, spell := range participant.SummonerSpells {
		spells = append(spells, namedJSON{ID: spell.ID, Name: spell.Name})
	}

	items := make([]itemSlotJSON, 0, len(participant.Items))
	for _, slot := range participant.Items {
		items = append(items, itemSlotJSON{Slot: slot.Slot, ID: slot.Item.ID, Name: slot.Item.Name})
	}

	selections := make([]namedJSON, 0, len(participant.Runes.Selections))
	for _, selection := range participant.Runes.Selections {
		selections = append(selections, namedJSON{ID: selection.ID, Name: selection.Name})
	}

	statPerks := participant.Runes.StatPerks
	var arena *arenaJSON
	if participant.Arena != nil {
		augments := make([]augmentJSON, 0, len(participant.Arena.Augments))
		for _, augment := range participant.Arena.Augments {
			augments = append(augments, augmentJSON{ID: augment.ID, Name: augment.Name, Rarity: augment.Rarity})
		}
		arena = &arenaJSON{
			Placement:       participant.Arena.Placement,
			PlayerSubteamID: participant.Arena.PlayerSubteamID,
			Augments:        augments,
		}
	}

	return participantJSON{
		PUUID:         participant.PUUID,
		GameName:      participant.GameName,
		TagLine:       participant.TagLine,
		ParticipantID: participant.ParticipantID,
		TeamID:        participant.TeamID,
		Side:          domain.SideForTeam(participant.TeamID),

		Champion:           namedJSON{ID: participant.Champion.ID, Name: participant.Champion.Name},
		ChampionLevel:      participant.ChampionLevel,
		TeamPosition:       participant.TeamPosition,
		IndividualPosition: participant.IndividualPosition,
		Win:                participant.Win,

		Kills:   participant.Kills,
		Deaths:  participant.Deaths,
		Assists: participant.Assists,
		KDA:     participant.KDA,

		TotalDamageDealtToChampions:    participant.TotalDamageDealtToChampions,
		TotalDamageTaken:               participant.TotalDamageTaken,
		TotalHealsOnTeammates:          participant.TotalHealsOnTeammates,
		TotalDamageShieldedOnTeammates: participant.TotalDamageShieldedOnTeammates,
		GoldEarned:                     participant.GoldEarned,
		VisionScore:                    participant.VisionScore,
		WardsPlaced:                    participant.WardsPlaced,
		WardsKilled:                    participant.WardsKilled,
		CreepScore:                     participant.TotalMinionsKilled + participant.NeutralMinionsKilled,

		MinionsPerMinute:     participant.MinionsPerMinute,
		VisionPerMinute:      participant.VisionPerMinute,
		PerformanceScore:     participant.PerformanceScore,
		PerformancePlacement: participant.PerformancePlacement,

		SummonerSpells: spells,
		Items:          items,
		Runes: runesJSON{
			PrimaryStyle: namedJSON{ID: participant.Runes.PrimaryStyle.ID, Name: participant.Runes.PrimaryStyle.Name},
			SubStyle:     namedJSON{ID: participant.Runes.SubStyle.ID, Name: participant.Runes.SubStyle.Name},
			Selections:   selections,
			StatPerks: []namedJSON{
				{ID: statPerks.Offense.ID, Name: statPerks.Offense.Name},
				{ID: statPerks.Flex.ID, Name: statPerks.Flex.Name},
				{ID: statPerks.Defense.ID, Name: statPerks.Defense.Name},
			},
		},
		Arena: arena,
	}
}

func matchToJSON(match domain.Match) matchJSON {
	participants := make([]participantJSON, 0, len(match.Participants))
	for _, participant := range match.Participants {
		participants = append(participants, participantToJSON(participant))
	}

	return matchJSON{
		MatchID:             match.MatchID,
		Region:              match.Region,
		GameDurationSeconds: match.GameDurationSeconds,
		GameCreation:        match.GameCreation,
		GameEnd:             match.GameEnd,
		GameMode:            match.GameMode,
		GameType:            match.GameType,
		QueueID:             match.QueueID,
		Participants:        participants,
	}
}

func persistenceToJSON(summary app.PersistSummary) persistenceJSON {
	return persistenceJSON{
		Total:          summary.Total,
		Saved:          summary.Saved,
		Existed:        summary.Existed,
		Failed:         summary.Failed,
		Skipped:        summary.Skipped,
		ProcessingRate: summary.ProcessingRate,
		NewSaveRate:    summary.NewSaveRate,
	}
}

func combatLogToJSON(entries []timeline.CombatLogEntry) []combatLogEntryJSON {
	result := make([]combatLogEntryJSON, 0, len(entries))
	for _, entry := range entries {
		minimapX, minimapY := timeline.ToMinimap(entry.Position, minimapSize)
		assists := entry.AssistingParticipantIDs
		if assists == nil {
			assists = []int{}
		}
		result = append(result, combatLogEntryJSON{
			Category:                entry.Category,
			TimestampMs:             entry.TimestampMs,
			KillerID:                entry.KillerID,
			KillerSide:              entry.KillerSide,
			VictimID:                entry.VictimID,
			VictimSide:              entry.VictimSide,
			MonsterType:             entry.MonsterType,
			MonsterSubType:          entry.MonsterSubType,
			AssistingParticipantIDs: assists,
			Position: positionJSON{
				X:        entry.Position.X,
				Y:        entry.Position.Y,
				MinimapX: minimapX,
				MinimapY: minimapY,
			},
		})
	}
	return result
}

func itemsToJSON(timelines []domain.ParticipantTimeline) []participantItemsJSON {
	result := make([]participantItemsJSON, 0, len(timelines))
	for _, participantTimeline := range timelines {
		grouped := timeline.GroupItemEvents(timeline.Events(participantTimeline))

		minutes := make([]itemMinuteJSON, 0, len(grouped))
		for _, minute := range grouped {
			entries := make([]itemEntryJSON, 0, len(minute.Entries))
			for _, entry := range minute.Entries {
				var item *namedJSON
				if entry.Item != nil {
					item = &namedJSON{ID: entry.Item.ID, Name: entry.Item.Name}
				}
				entries = append(entries, itemEntryJSON{
					Type:        entry.Type,
					Item:        item,
					Count:       entry.Count,
					TimestampMs: entry.TimestampMs,
				})
			}
			minutes = append(minutes, itemMinuteJSON{Minute: minute.Minute, Entries: entries})
		}

		result = append(result, participantItemsJSON{
			ParticipantID: participantTimeline.ParticipantID,
			Minutes:       minutes,
		})
	}
	return result
}

func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, response any) {
	data, err := json.Marshal(response)
	if err != nil {
		reporting.Report(ctx, fmt.Errorf("failed to marshal response: %w", err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"cause":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(data)
}

func writeError(ctx context.Context, w http.ResponseWriter, statusCode int, cause string) {
	logging.FromContext(ctx).InfoContext(ctx, "Returning error", "statusCode", statusCode, "cause", cause)
	writeJSON(ctx, w, statusCode, errorResponse{Success: false, Cause: cause})
}

// writeResolveError maps errors from the resolvers to a response
//
// NOTE: Resolvers handle their own error reporting
func writeResolveError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(ctx, w, http.StatusBadRequest, fmt.Sprintf("invalid request: %s", err.Error()))
	case errors.Is(err, domain.ErrNotFound):
		writeError(ctx, w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrTemporarilyUnavailable):
		writeError(ctx, w, http.StatusServiceUnavailable, "temporarily unavailable")
	default:
		writeError(ctx, w, http.StatusInternalServerError, "internal server error")
	}
}
