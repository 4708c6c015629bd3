package matchrepository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Amund211/riftlight/internal/reporting"
	"github.com/Amund211/riftlight/internal/timeline"
	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Postgres struct {
	db     *sqlx.DB
	schema string

	tracer trace.Tracer
}

func NewPostgres(db *sqlx.DB, schema string) *Postgres {
	tracer := otel.Tracer("riftlight/matchrepository/postgres")

	return &Postgres{
		db:     db,
		schema: schema,

		tracer: tracer,
	}
}

const matchColumns = `match_id, region, game_duration_seconds, game_creation, game_end, game_mode, game_type, queue_id`

const participantColumns = `match_id, participant_id, puuid, game_name, tag_line, team_id,
	champion_id, champion_level, team_position, individual_position, win,
	kills, deaths, assists,
	total_damage_dealt_to_champions, total_damage_taken, total_heals_on_teammates, total_damage_shielded_on_teammates,
	gold_earned, vision_score, wards_placed, wards_killed, total_minions_killed, neutral_minions_killed,
	summoner_spell_1_id, summoner_spell_2_id, primary_style_id, sub_style_id,
	stat_perk_offense_id, stat_perk_flex_id, stat_perk_defense_id,
	placement, player_subteam_id`

func (p *Postgres) MatchExists(ctx context.Context, matchID string) (bool, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.MatchExists")
	defer span.End()

	var exists bool
	err := p.db.GetContext(ctx, &exists, fmt.Sprintf(
		"SELECT EXISTS (SELECT 1 FROM %s.matches WHERE match_id = $1)",
		pq.QuoteIdentifier(p.schema),
	),
		matchID,
	)
	if err != nil {
		err := fmt.Errorf("failed to check if match exists: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"matchID": matchID,
		})
		return false, err
	}

	return exists, nil
}

// FindMatchesByParticipant returns the most recent matches of the player, newest first
func (p *Postgres) FindMatchesByParticipant(ctx context.Context, puuid string, limit int, includeTimeline bool) ([]MatchRecord, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.FindMatchesByParticipant")
	defer span.End()

	var matchIDs []string
	err := p.db.SelectContext(ctx, &matchIDs, fmt.Sprintf(`SELECT
		m.match_id
		FROM %[1]s.matches m
		JOIN %[1]s.match_participants mp ON mp.match_id = m.match_id
		WHERE mp.puuid = $1
		ORDER BY m.game_creation DESC, m.match_id DESC
		LIMIT $2`,
		pq.QuoteIdentifier(p.schema),
	),
		puuid,
		limit,
	)
	if err != nil {
		err := fmt.Errorf("failed to select match ids for participant: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"puuid": puuid,
			"limit": strconv.Itoa(limit),
		})
		return nil, err
	}

	return p.loadMatches(ctx, matchIDs, includeTimeline)
}

// FindMatchesByIDs returns the stored matches among the given ids, newest first.
// Ids that are not stored are skipped.
func (p *Postgres) FindMatchesByIDs(ctx context.Context, matchIDs []string, includeTimeline bool) ([]MatchRecord, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.FindMatchesByIDs")
	defer span.End()

	span.SetAttributes(attribute.Int("matchCount", len(matchIDs)))

	return p.loadMatches(ctx, matchIDs, includeTimeline)
}

type dbItemEntry struct {
	MatchID       string `db:"match_id"`
	ParticipantID int    `db:"participant_id"`
	Slot          int    `db:"slot"`
	ItemID        int    `db:"item_id"`
}

type dbPositionedEntry struct {
	MatchID       string `db:"match_id"`
	ParticipantID int    `db:"participant_id"`
	Position      int    `db:"position"`
	ID            int    `db:"id"`
}

type dbTimelineEntry struct {
	MatchID string `db:"match_id"`
	Frames  []byte `db:"frames"`
}

type participantKey struct {
	matchID       string
	participantID int
}

func (p *Postgres) loadMatches(ctx context.Context, matchIDs []string, includeTimeline bool) ([]MatchRecord, error) {
	if len(matchIDs) == 0 {
		return []MatchRecord{}, nil
	}

	schema := pq.QuoteIdentifier(p.schema)
	ids := pq.Array(matchIDs)

	reportFailure := func(err error) error {
		reporting.Report(ctx, err, map[string]string{
			"matchCount": strconv.Itoa(len(matchIDs)),
		})
		return err
	}

	var matches []MatchRecord
	err := p.db.SelectContext(ctx, &matches, fmt.Sprintf(`SELECT
		%s
		FROM %s.matches
		WHERE match_id = ANY($1)
		ORDER BY game_creation DESC, match_id DESC`,
		matchColumns, schema,
	),
		ids,
	)
	if err != nil {
		return nil, reportFailure(fmt.Errorf("failed to select matches: %w", err))
	}
	if len(matches) == 0 {
		return []MatchRecord{}, nil
	}

	matchIndex := make(map[string]int, len(matches))
	for i, match := range matches {
		matchIndex[match.MatchID] = i
	}

	var participants []ParticipantRecord
	err = p.db.SelectContext(ctx, &participants, fmt.Sprintf(`SELECT
		%s
		FROM %s.match_participants
		WHERE match_id = ANY($1)
		ORDER BY match_id, participant_id`,
		participantColumns, schema,
	),
		ids,
	)
	if err != nil {
		return nil, reportFailure(fmt.Errorf("failed to select match participants: %w", err))
	}
	for _, participant := range participants {
		i, ok := matchIndex[participant.MatchID]
		if !ok {
			continue
		}
		matches[i].Participants = append(matches[i].Participants, participant)
	}

	participantIndex := make(map[participantKey]*ParticipantRecord, len(participants))
	for i := range matches {
		for j := range matches[i].Participants {
			participant := &matches[i].Participants[j]
			participantIndex[participantKey{participant.MatchID, participant.ParticipantID}] = participant
		}
	}

	var items []dbItemEntry
	err = p.db.SelectContext(ctx, &items, fmt.Sprintf(`SELECT
		match_id, participant_id, slot, item_id
		FROM %s.participant_items
		WHERE match_id = ANY($1)
		ORDER BY match_id, participant_id, slot`,
		schema,
	),
		ids,
	)
	if err != nil {
		return nil, reportFailure(fmt.Errorf("failed to select participant items: %w", err))
	}
	for _, item := range items {
		if participant, ok := participantIndex[participantKey{item.MatchID, item.ParticipantID}]; ok {
			participant.Items = append(participant.Items, ItemSlotRecord{Slot: item.Slot, ItemID: item.ItemID})
		}
	}

	var runes []dbPositionedEntry
	err = p.db.SelectContext(ctx, &runes, fmt.Sprintf(`SELECT
		match_id, participant_id, position, rune_id AS id
		FROM %s.participant_runes
		WHERE match_id = ANY($1)
		ORDER BY match_id, participant_id, position`,
		schema,
	),
		ids,
	)
	if err != nil {
		return nil, reportFailure(fmt.Errorf("failed to select participant runes: %w", err))
	}
	for _, r := range runes {
		if participant, ok := participantIndex[participantKey{r.MatchID, r.ParticipantID}]; ok {
			participant.RuneIDs = append(participant.RuneIDs, r.ID)
		}
	}

	var augments []dbPositionedEntry
	err = p.db.SelectContext(ctx, &augments, fmt.Sprintf(`SELECT
		match_id, participant_id, position, augment_id AS id
		FROM %s.participant_augments
		WHERE match_id = ANY($1)
		ORDER BY match_id, participant_id, position`,
		schema,
	),
		ids,
	)
	if err != nil {
		return nil, reportFailure(fmt.Errorf("failed to select participant augments: %w", err))
	}
	for _, augment := range augments {
		if participant, ok := participantIndex[participantKey{augment.MatchID, augment.ParticipantID}]; ok {
			participant.AugmentIDs = append(participant.AugmentIDs, augment.ID)
		}
	}

	if !includeTimeline {
		return matches, nil
	}

	var timelines []dbTimelineEntry
	err = p.db.SelectContext(ctx, &timelines, fmt.Sprintf(`SELECT
		match_id, frames
		FROM %s.match_timelines
		WHERE match_id = ANY($1)`,
		schema,
	),
		ids,
	)
	if err != nil {
		return nil, reportFailure(fmt.Errorf("failed to select match timelines: %w", err))
	}
	for _, entry := range timelines {
		i, ok := matchIndex[entry.MatchID]
		if !ok {
			continue
		}
		var frames []timeline.Frame
		if err := json.Unmarshal(entry.Frames, &frames); err != nil {
			err := fmt.Errorf("failed to parse stored timeline: %w", err)
			reporting.Report(ctx, err, map[string]string{
				"matchID": entry.MatchID,
			})
			return nil, err
		}
		matches[i].Frames = frames
	}

	return matches, nil
}
