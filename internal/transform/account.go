package transform

import (
	"fmt"
	"time"

	"github.com/Amund211/riftlight/internal/adapters/riotapi"
	"github.com/Amund211/riftlight/internal/domain"
)

func AccountFromAPI(account riotapi.AccountDTO) (domain.Account, error) {
	if account.PUUID == "" {
		return domain.Account{}, fmt.Errorf("%w: account without puuid", domain.ErrValidation)
	}
	if account.GameName == "" || account.TagLine == "" {
		return domain.Account{}, fmt.Errorf("%w: account without riot id", domain.ErrValidation)
	}

	return domain.Account{
		PUUID:    account.PUUID,
		GameName: account.GameName,
		TagLine:  account.TagLine,
	}, nil
}

// RankedAccountFromAPI combines the summoner profile with its league entries.
// Queues without an entry are unranked, other queues are ignored.
func RankedAccountFromAPI(region, platform string, summoner riotapi.SummonerDTO, entries []riotapi.LeagueEntryDTO, queriedAt time.Time) (domain.RankedAccount, error) {
	if summoner.PUUID == "" {
		return domain.RankedAccount{}, fmt.Errorf("%w: summoner without puuid", domain.ErrValidation)
	}

	rankedAccount := domain.RankedAccount{
		PUUID:         summoner.PUUID,
		Region:        region,
		Platform:      platform,
		ProfileIconID: summoner.ProfileIconID,
		RevisionDate:  time.UnixMilli(summoner.RevisionDate).UTC(),
		SummonerLevel: summoner.SummonerLevel,
		SoloQueue:     domain.UnrankedStanding(domain.QueueRankedSolo),
		FlexQueue:     domain.UnrankedStanding(domain.QueueRankedFlex),
		QueriedAt:     queriedAt,
	}

	for _, entry := range entries {
		standing := domain.NewRankedStanding(
			domain.QueueType(entry.QueueType),
			entry.Tier,
			entry.Rank,
			entry.LeaguePoints,
			entry.Wins,
			entry.Losses,
			entry.HotStreak,
		)
		switch standing.QueueType {
		case domain.QueueRankedSolo:
			rankedAccount.SoloQueue = standing
		case domain.QueueRankedFlex:
			rankedAccount.FlexQueue = standing
		}
	}

	return rankedAccount, nil
}
