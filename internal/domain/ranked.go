package domain

import (
	"math"
	"time"
)

type QueueType string

const (
	QueueRankedSolo QueueType = "RANKED_SOLO_5x5"
	QueueRankedFlex QueueType = "RANKED_FLEX_SR"
)

const TierUnranked = "UNRANKED"

type RankedStanding struct {
	QueueType      QueueType
	Tier           string
	Division       string
	LeaguePoints   int
	Wins           int
	Losses         int
	WinRatePercent int
	HotStreak      bool
}

func (s RankedStanding) IsUnranked() bool {
	return s.Tier == TierUnranked
}

func NewRankedStanding(queueType QueueType, tier, division string, leaguePoints, wins, losses int, hotStreak bool) RankedStanding {
	return RankedStanding{
		QueueType:      queueType,
		Tier:           tier,
		Division:       division,
		LeaguePoints:   leaguePoints,
		Wins:           wins,
		Losses:         losses,
		WinRatePercent: WinRatePercent(wins, losses),
		HotStreak:      hotStreak,
	}
}

func UnrankedStanding(queueType QueueType) RankedStanding {
	return RankedStanding{
		QueueType: queueType,
		Tier:      TierUnranked,
	}
}

// WinRatePercent returns round(wins/(wins+losses)*100), or 0 when no games were played
func WinRatePercent(wins, losses int) int {
	games := wins + losses
	if games <= 0 {
		return 0
	}
	return int(math.Round(float64(wins) / float64(games) * 100))
}

// RankedAccount holds the summoner profile of an account on one platform.
//
// SoloQueue and FlexQueue are always set. Queues without games are represented
// by UnrankedStanding.
type RankedAccount struct {
	PUUID         string
	Region        string
	Platform      string
	ProfileIconID int
	RevisionDate  time.Time
	SummonerLevel int

	SoloQueue RankedStanding
	FlexQueue RankedStanding

	QueriedAt time.Time
}

// Standings returns the standings that are not unranked
func (r RankedAccount) Standings() []RankedStanding {
	standings := make([]RankedStanding, 0, 2)
	for _, standing := range []RankedStanding{r.SoloQueue, r.FlexQueue} {
		if !standing.IsUnranked() {
			standings = append(standings, standing)
		}
	}
	return standings
}
