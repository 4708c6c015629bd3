package riotapi

import "github.com/Amund211/riftlight/internal/timeline"

type AccountDTO struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

type ActiveShardDTO struct {
	PUUID       string `json:"puuid"`
	Game        string `json:"game"`
	ActiveShard string `json:"activeShard"`
}

type SummonerDTO struct {
	PUUID         string `json:"puuid"`
	ProfileIconID int    `json:"profileIconId"`
	// Epoch milliseconds
	RevisionDate  int64 `json:"revisionDate"`
	SummonerLevel int   `json:"summonerLevel"`
}

type LeagueEntryDTO struct {
	LeagueID     string `json:"leagueId"`
	PUUID        string `json:"puuid"`
	QueueType    string `json:"queueType"`
	Tier         string `json:"tier"`
	Rank         string `json:"rank"`
	LeaguePoints int    `json:"leaguePoints"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	HotStreak    bool   `json:"hotStreak"`
	Veteran      bool   `json:"veteran"`
	FreshBlood   bool   `json:"freshBlood"`
	Inactive     bool   `json:"inactive"`
}

type MatchDTO struct {
	Metadata MatchMetadataDTO `json:"metadata"`
	Info     MatchInfoDTO     `json:"info"`
}

type MatchMetadataDTO struct {
	DataVersion  string   `json:"dataVersion"`
	MatchID      string   `json:"matchId"`
	Participants []string `json:"participants"`
}

type MatchInfoDTO struct {
	// Epoch milliseconds
	GameCreation int64 `json:"gameCreation"`
	// Seconds when GameEndTimestamp is set, milliseconds for older matches
	GameDuration int64 `json:"gameDuration"`

	GameEndTimestamp int64            `json:"gameEndTimestamp"`
	GameMode         string           `json:"gameMode"`
	GameType         string           `json:"gameType"`
	GameVersion      string           `json:"gameVersion"`
	PlatformID       string           `json:"platformId"`
	QueueID          int              `json:"queueId"`
	Participants     []ParticipantDTO `json:"participants"`
}

type ParticipantDTO struct {
	PUUID          string `json:"puuid"`
	RiotIDGameName string `json:"riotIdGameName"`
	RiotIDTagline  string `json:"riotIdTagline"`
	ParticipantID  int    `json:"participantId"`
	TeamID         int    `json:"teamId"`

	ChampionID         int    `json:"championId"`
	ChampLevel         int    `json:"champLevel"`
	TeamPosition       string `json:"teamPosition"`
	IndividualPosition string `json:"individualPosition"`
	Win                bool   `json:"win"`

	Kills   int `json:"kills"`
	Deaths  int `json:"deaths"`
	Assists int `json:"assists"`

	TotalDamageDealtToChampions    int `json:"totalDamageDealtToChampions"`
	TotalDamageTaken               int `json:"totalDamageTaken"`
	TotalHealsOnTeammates          int `json:"totalHealsOnTeammates"`
	TotalDamageShieldedOnTeammates int `json:"totalDamageShieldedOnTeammates"`
	GoldEarned                     int `json:"goldEarned"`
	VisionScore                    int `json:"visionScore"`
	WardsPlaced                    int `json:"wardsPlaced"`
	WardsKilled                    int `json:"wardsKilled"`
	TotalMinionsKilled             int `json:"totalMinionsKilled"`
	NeutralMinionsKilled           int `json:"neutralMinionsKilled"`

	Summoner1ID int `json:"summoner1Id"`
	Summoner2ID int `json:"summoner2Id"`

	Item0 int `json:"item0"`
	Item1 int `json:"item1"`
	Item2 int `json:"item2"`
	Item3 int `json:"item3"`
	Item4 int `json:"item4"`
	Item5 int `json:"item5"`
	Item6 int `json:"item6"`

	Perks PerksDTO `json:"perks"`

	// Arena only
	Placement       int `json:"placement"`
	PlayerSubteamID int `json:"playerSubteamId"`
	PlayerAugment1  int `json:"playerAugment1"`
	PlayerAugment2  int `json:"playerAugment2"`
	PlayerAugment3  int `json:"playerAugment3"`
	PlayerAugment4  int `json:"playerAugment4"`
	PlayerAugment5  int `json:"playerAugment5"`
	PlayerAugment6  int `json:"playerAugment6"`
}

// Items returns the item ids in slot order
func (p ParticipantDTO) Items() [7]int {
	return [7]int{p.Item0, p.Item1, p.Item2, p.Item3, p.Item4, p.Item5, p.Item6}
}

// Augments returns the non-empty augment ids in pick order
func (p ParticipantDTO) Augments() []int {
	augments := make([]int, 0, 6)
	for _, id := range []int{p.PlayerAugment1, p.PlayerAugment2, p.PlayerAugment3, p.PlayerAugment4, p.PlayerAugment5, p.PlayerAugment6} {
		if id != 0 {
			augments = append(augments, id)
		}
	}
	return augments
}

type PerksDTO struct {
	StatPerks PerkStatsDTO   `json:"statPerks"`
	Styles    []PerkStyleDTO `json:"styles"`
}

type PerkStatsDTO struct {
	Defense int `json:"defense"`
	Flex    int `json:"flex"`
	Offense int `json:"offense"`
}

type PerkStyleDTO struct {
	Description string                  `json:"description"`
	Style       int                     `json:"style"`
	Selections  []PerkStyleSelectionDTO `json:"selections"`
}

type PerkStyleSelectionDTO struct {
	Perk int `json:"perk"`
	Var1 int `json:"var1"`
	Var2 int `json:"var2"`
	Var3 int `json:"var3"`
}

type TimelineDTO struct {
	Metadata MatchMetadataDTO `json:"metadata"`
	Info     TimelineInfoDTO  `json:"info"`
}

type TimelineInfoDTO struct {
	FrameInterval int64                    `json:"frameInterval"`
	Frames        []timeline.Frame         `json:"frames"`
	Participants  []TimelineParticipantDTO `json:"participants"`
}

type TimelineParticipantDTO struct {
	ParticipantID int    `json:"participantId"`
	PUUID         string `json:"puuid"`
}
