package transform

import (
	"fmt"
	"math"
	"slices"

	"github.com/Amund211/riftlight/internal/domain"
)

// KDA returns "Perfect" for deathless games, otherwise (kills+assists)/deaths with two decimals
func KDA(kills, deaths, assists int) string {
	if deaths == 0 {
		return "Perfect"
	}
	return fmt.Sprintf("%.2f", float64(kills+assists)/float64(deaths))
}

// GameMinutes returns the whole minutes used as the divisor for per minute rates
func GameMinutes(gameDurationSeconds int) int {
	return (gameDurationSeconds % 3600) / 60
}

// PerMinute returns value per game minute rounded to two decimals, or 0 for games shorter than a minute
func PerMinute(value int, gameDurationSeconds int) float64 {
	minutes := GameMinutes(gameDurationSeconds)
	if minutes == 0 {
		return 0
	}
	return roundTo(float64(value)/float64(minutes), 2)
}

func roundTo(value float64, decimals int) float64 {
	factor := math.Pow(10, float64(decimals))
	return math.Round(value*factor) / factor
}

type performanceRates struct {
	kills      float64
	assists    float64
	deaths     float64
	damage     float64
	gold       float64
	cs         float64
	vision     float64
	healShield float64
}

// Per minute values considered a full contribution
var performanceBenchmarks = performanceRates{
	kills:      0.5,
	assists:    0.7,
	deaths:     0.3,
	damage:     900,
	gold:       450,
	cs:         8,
	vision:     1.5,
	healShield: 400,
}

var supportWeights = performanceRates{
	kills:      0.05,
	assists:    0.20,
	deaths:     0.15,
	damage:     0.05,
	gold:       0.05,
	cs:         0,
	vision:     0.25,
	healShield: 0.25,
}

var defaultWeights = performanceRates{
	kills:      0.20,
	assists:    0.10,
	deaths:     0.10,
	damage:     0.25,
	gold:       0.15,
	cs:         0.15,
	vision:     0.05,
	healShield: 0,
}

func normalized(rate, benchmark float64) float64 {
	return math.Min(rate/benchmark, 1)
}

// PerformanceScore rates the participant from 0 to 100 against fixed per minute benchmarks.
// Supports are weighted on vision, assists and healing instead of kills, gold and farm.
func PerformanceScore(participant domain.Participant, gameDurationSeconds int) int {
	minutes := float64(GameMinutes(gameDurationSeconds))
	if minutes == 0 {
		return 0
	}

	rates := performanceRates{
		kills:      float64(participant.Kills) / minutes,
		assists:    float64(participant.Assists) / minutes,
		deaths:     float64(participant.Deaths) / minutes,
		damage:     float64(participant.TotalDamageDealtToChampions) / minutes,
		gold:       float64(participant.GoldEarned) / minutes,
		cs:         float64(participant.TotalMinionsKilled+participant.NeutralMinionsKilled) / minutes,
		vision:     float64(participant.VisionScore) / minutes,
		healShield: float64(participant.TotalHealsOnTeammates+participant.TotalDamageShieldedOnTeammates) / minutes,
	}

	weights := defaultWeights
	if participant.IsSupport() {
		weights = supportWeights
	}

	b := performanceBenchmarks
	score := weights.kills*normalized(rates.kills, b.kills) +
		weights.assists*normalized(rates.assists, b.assists) +
		weights.deaths*(1-normalized(rates.deaths, b.deaths)) +
		weights.damage*normalized(rates.damage, b.damage) +
		weights.gold*normalized(rates.gold, b.gold) +
		weights.cs*normalized(rates.cs, b.cs) +
		weights.vision*normalized(rates.vision, b.vision) +
		weights.healShield*normalized(rates.healShield, b.healShield)

	return int(math.Round(100 * score))
}

// withDerivedStats fills in the display stats and ranks the participants by performance score.
// Equal scores keep their upstream order.
func withDerivedStats(participants []domain.Participant, gameDurationSeconds int) []domain.Participant {
	for i := range participants {
		participant := &participants[i]
		participant.KDA = KDA(participant.Kills, participant.Deaths, participant.Assists)
		participant.MinionsPerMinute = PerMinute(participant.TotalMinionsKilled+participant.NeutralMinionsKilled, gameDurationSeconds)
		participant.VisionPerMinute = PerMinute(participant.VisionScore, gameDurationSeconds)
		participant.PerformanceScore = PerformanceScore(*participant, gameDurationSeconds)
	}

	order := make([]int, len(participants))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return participants[b].PerformanceScore - participants[a].PerformanceScore
	})
	for rank, i := range order {
		participants[i].PerformancePlacement = rank + 1
	}

	return participants
}
