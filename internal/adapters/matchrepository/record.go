package matchrepository

import (
	"time"

	"github.com/Amund211/riftlight/internal/timeline"
)

// MatchRecord is the relational shape of a stored match. Catalog references are
// plain ids and are resolved by the caller.
type MatchRecord struct {
	MatchID             string    `db:"match_id"`
	Region              string    `db:"region"`
	GameDurationSeconds int       `db:"game_duration_seconds"`
	GameCreation        time.Time `db:"game_creation"`
	GameEnd             time.Time `db:"game_end"`
	GameMode            string    `db:"game_mode"`
	GameType            string    `db:"game_type"`
	QueueID             int       `db:"queue_id"`

	// Ordered by participant id
	Participants []ParticipantRecord `db:"-"`

	// Nil when the timeline was not requested or never stored
	Frames []timeline.Frame `db:"-"`
}

type ParticipantRecord struct {
	MatchID       string `db:"match_id"`
	ParticipantID int    `db:"participant_id"`
	PUUID         string `db:"puuid"`
	GameName      string `db:"game_name"`
	TagLine       string `db:"tag_line"`
	TeamID        int    `db:"team_id"`

	ChampionID         int    `db:"champion_id"`
	ChampionLevel      int    `db:"champion_level"`
	TeamPosition       string `db:"team_position"`
	IndividualPosition string `db:"individual_position"`
	Win                bool   `db:"win"`

	Kills                          int `db:"kills"`
	Deaths                         int `db:"deaths"`
	Assists                        int `db:"assists"`
	TotalDamageDealtToChampions    int `db:"total_damage_dealt_to_champions"`
	TotalDamageTaken               int `db:"total_damage_taken"`
	TotalHealsOnTeammates          int `db:"total_heals_on_teammates"`
	TotalDamageShieldedOnTeammates int `db:"total_damage_shielded_on_teammates"`
	GoldEarned                     int `db:"gold_earned"`
	VisionScore                    int `db:"vision_score"`
	WardsPlaced                    int `db:"wards_placed"`
	WardsKilled                    int `db:"wards_killed"`
	TotalMinionsKilled             int `db:"total_minions_killed"`
	NeutralMinionsKilled           int `db:"neutral_minions_killed"`

	SummonerSpell1ID  int `db:"summoner_spell_1_id"`
	SummonerSpell2ID  int `db:"summoner_spell_2_id"`
	PrimaryStyleID    int `db:"primary_style_id"`
	SubStyleID        int `db:"sub_style_id"`
	StatPerkOffenseID int `db:"stat_perk_offense_id"`
	StatPerkFlexID    int `db:"stat_perk_flex_id"`
	StatPerkDefenseID int `db:"stat_perk_defense_id"`

	Placement       *int `db:"placement"`
	PlayerSubteamID *int `db:"player_subteam_id"`

	// Ordered by slot
	Items []ItemSlotRecord `db:"-"`
	// Ordered by position
	RuneIDs    []int `db:"-"`
	AugmentIDs []int `db:"-"`
}

type ItemSlotRecord struct {
	Slot   int
	ItemID int
}
