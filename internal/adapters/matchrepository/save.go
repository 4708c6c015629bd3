package matchrepository

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/Amund211/riftlight/internal/domain"
	"github.com/Amund211/riftlight/internal/reporting"
	"github.com/Amund211/riftlight/internal/timeline"
	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// SaveMatch stores the match, its participants and its timeline in one transaction.
//
// Returns false without writing anything if the match was already stored.
// Referenced catalog entries and placeholder accounts for unknown participants
// are created as needed.
func (p *Postgres) SaveMatch(ctx context.Context, match domain.Match, frames []timeline.Frame) (bool, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.SaveMatch")
	defer span.End()

	reportFailure := func(err error, extras ...map[string]string) error {
		reporting.Report(ctx, err, append([]map[string]string{{"matchID": match.MatchID}}, extras...)...)
		return err
	}

	txx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, reportFailure(fmt.Errorf("failed to start transaction: %w", err))
	}
	defer txx.Rollback()

	_, err = txx.ExecContext(ctx, fmt.Sprintf("SET search_path TO %s", pq.QuoteIdentifier(p.schema)))
	if err != nil {
		return false, reportFailure(fmt.Errorf("failed to set search path: %w", err), map[string]string{
			"schema": p.schema,
		})
	}

	result, err := txx.ExecContext(
		ctx,
		`INSERT INTO matches
		(match_id, region, game_duration_seconds, game_creation, game_end, game_mode, game_type, queue_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (match_id) DO NOTHING`,
		match.MatchID,
		match.Region,
		match.GameDurationSeconds,
		match.GameCreation,
		match.GameEnd,
		match.GameMode,
		match.GameType,
		match.QueueID,
	)
	if err != nil {
		return false, reportFailure(fmt.Errorf("failed to insert match: %w", err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, reportFailure(fmt.Errorf("failed to get rows affected: %w", err))
	}
	if rowsAffected == 0 {
		// Already stored
		return false, nil
	}

	if err := upsertCatalog(ctx, txx, match); err != nil {
		return false, reportFailure(fmt.Errorf("failed to upsert catalog: %w", err))
	}

	for _, puuid := range placeholderPUUIDs(match) {
		_, err := txx.ExecContext(
			ctx,
			`INSERT INTO accounts (puuid, region) VALUES ($1, $2) ON CONFLICT (puuid) DO NOTHING`,
			puuid,
			match.Region,
		)
		if err != nil {
			return false, reportFailure(fmt.Errorf("failed to insert placeholder account: %w", err))
		}
	}

	for _, participant := range match.Participants {
		if err := insertParticipant(ctx, txx, match, participant); err != nil {
			return false, reportFailure(fmt.Errorf("failed to insert participant: %w", err), map[string]string{
				"participantID": strconv.Itoa(participant.ParticipantID),
			})
		}
	}

	if len(frames) > 0 {
		encoded, err := json.Marshal(frames)
		if err != nil {
			return false, reportFailure(fmt.Errorf("failed to encode timeline: %w", err))
		}

		_, err = txx.ExecContext(
			ctx,
			`INSERT INTO match_timelines (match_id, frames) VALUES ($1, $2)`,
			match.MatchID,
			string(encoded),
		)
		if err != nil {
			return false, reportFailure(fmt.Errorf("failed to insert timeline: %w", err))
		}
	}

	err = txx.Commit()
	if err != nil {
		return false, reportFailure(fmt.Errorf("failed to commit transaction: %w", err))
	}

	return true, nil
}

func insertParticipant(ctx context.Context, txx *sqlx.Tx, match domain.Match, participant domain.Participant) error {
	var placement, playerSubteamID *int
	if participant.Arena != nil {
		placement = &participant.Arena.Placement
		playerSubteamID = &participant.Arena.PlayerSubteamID
	}

	_, err := txx.ExecContext(
		ctx,
		`INSERT INTO match_participants
		(`+participantColumns+`)
		VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13, $14,
			$15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24,
			$25, $26, $27, $28,
			$29, $30, $31,
			$32, $33
		)`,
		match.MatchID,
		participant.ParticipantID,
		participant.PUUID,
		participant.GameName,
		participant.TagLine,
		participant.TeamID,
		participant.Champion.ID,
		participant.ChampionLevel,
		participant.TeamPosition,
		participant.IndividualPosition,
		participant.Win,
		participant.Kills,
		participant.Deaths,
		participant.Assists,
		participant.TotalDamageDealtToChampions,
		participant.TotalDamageTaken,
		participant.TotalHealsOnTeammates,
		participant.TotalDamageShieldedOnTeammates,
		participant.GoldEarned,
		participant.VisionScore,
		participant.WardsPlaced,
		participant.WardsKilled,
		participant.TotalMinionsKilled,
		participant.NeutralMinionsKilled,
		participant.SummonerSpells[0].ID,
		participant.SummonerSpells[1].ID,
		participant.Runes.PrimaryStyle.ID,
		participant.Runes.SubStyle.ID,
		participant.Runes.StatPerks.Offense.ID,
		participant.Runes.StatPerks.Flex.ID,
		participant.Runes.StatPerks.Defense.ID,
		placement,
		playerSubteamID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert match_participants entry: %w", err)
	}

	for _, item := range participant.Items {
		_, err := txx.ExecContext(
			ctx,
			`INSERT INTO participant_items (match_id, participant_id, slot, item_id) VALUES ($1, $2, $3, $4)`,
			match.MatchID,
			participant.ParticipantID,
			item.Slot,
			item.Item.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant_items entry: %w", err)
		}
	}

	for position, r := range participant.Runes.Selections {
		_, err := txx.ExecContext(
			ctx,
			`INSERT INTO participant_runes (match_id, participant_id, position, rune_id) VALUES ($1, $2, $3, $4)`,
			match.MatchID,
			participant.ParticipantID,
			position,
			r.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant_runes entry: %w", err)
		}
	}

	if participant.Arena != nil {
		for position, augment := range participant.Arena.Augments {
			_, err := txx.ExecContext(
				ctx,
				`INSERT INTO participant_augments (match_id, participant_id, position, augment_id) VALUES ($1, $2, $3, $4)`,
				match.MatchID,
				participant.ParticipantID,
				position,
				augment.ID,
			)
			if err != nil {
				return fmt.Errorf("failed to insert participant_augments entry: %w", err)
			}
		}
	}

	return nil
}

type catalogEntries struct {
	champions      []domain.Champion
	items          []domain.Item
	runeTrees      []domain.RuneTree
	runes          []domain.Rune
	statPerks      []domain.StatPerk
	summonerSpells []domain.SummonerSpell
	augments       []domain.Augment
}

func sortedByID[V any](entries map[int]V) []V {
	sorted := make([]V, 0, len(entries))
	for _, id := range slices.Sorted(maps.Keys(entries)) {
		sorted = append(sorted, entries[id])
	}
	return sorted
}

// collectCatalog returns the distinct catalog entries referenced by the match, ordered by id.
// Concurrent saves lock catalog rows in the same order, so they can not deadlock each other.
func collectCatalog(match domain.Match) catalogEntries {
	champions := map[int]domain.Champion{}
	items := map[int]domain.Item{}
	runeTrees := map[int]domain.RuneTree{}
	runes := map[int]domain.Rune{}
	statPerks := map[int]domain.StatPerk{}
	summonerSpells := map[int]domain.SummonerSpell{}
	augments := map[int]domain.Augment{}

	for _, participant := range match.Participants {
		champions[participant.Champion.ID] = participant.Champion
		for _, spell := range participant.SummonerSpells {
			summonerSpells[spell.ID] = spell
		}
		for _, item := range participant.Items {
			items[item.Item.ID] = item.Item
		}
		runeTrees[participant.Runes.PrimaryStyle.ID] = participant.Runes.PrimaryStyle
		runeTrees[participant.Runes.SubStyle.ID] = participant.Runes.SubStyle
		for _, r := range participant.Runes.Selections {
			runes[r.ID] = r
		}
		for _, perk := range []domain.StatPerk{participant.Runes.StatPerks.Offense, participant.Runes.StatPerks.Flex, participant.Runes.StatPerks.Defense} {
			statPerks[perk.ID] = perk
		}
		if participant.Arena != nil {
			for _, augment := range participant.Arena.Augments {
				augments[augment.ID] = augment
			}
		}
	}

	return catalogEntries{
		champions:      sortedByID(champions),
		items:          sortedByID(items),
		runeTrees:      sortedByID(runeTrees),
		runes:          sortedByID(runes),
		statPerks:      sortedByID(statPerks),
		summonerSpells: sortedByID(summonerSpells),
		augments:       sortedByID(augments),
	}
}

// placeholderPUUIDs returns the distinct participant puuids in lock order
func placeholderPUUIDs(match domain.Match) []string {
	puuids := make([]string, 0, len(match.Participants))
	for _, participant := range match.Participants {
		puuids = append(puuids, participant.PUUID)
	}
	slices.Sort(puuids)
	return slices.Compact(puuids)
}

// upsertCatalog makes sure every catalog entry referenced by the match is stored.
// Names are only overwritten by non-empty names.
func upsertCatalog(ctx context.Context, txx *sqlx.Tx, match domain.Match) error {
	catalog := collectCatalog(match)

	for _, champion := range catalog.champions {
		_, err := txx.ExecContext(ctx, `INSERT INTO champions (id, key, name) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET key = EXCLUDED.key, name = EXCLUDED.name
			WHERE EXCLUDED.name <> ''`,
			champion.ID, champion.Key, champion.Name)
		if err != nil {
			return fmt.Errorf("failed to upsert champion %d: %w", champion.ID, err)
		}
	}
	for _, item := range catalog.items {
		_, err := txx.ExecContext(ctx, `INSERT INTO items (id, name, total_gold) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, total_gold = EXCLUDED.total_gold
			WHERE EXCLUDED.name <> ''`,
			item.ID, item.Name, item.TotalGold)
		if err != nil {
			return fmt.Errorf("failed to upsert item %d: %w", item.ID, err)
		}
	}
	for _, tree := range catalog.runeTrees {
		_, err := txx.ExecContext(ctx, `INSERT INTO rune_trees (id, key, name) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET key = EXCLUDED.key, name = EXCLUDED.name
			WHERE EXCLUDED.name <> ''`,
			tree.ID, tree.Key, tree.Name)
		if err != nil {
			return fmt.Errorf("failed to upsert rune tree %d: %w", tree.ID, err)
		}
	}
	for _, r := range catalog.runes {
		_, err := txx.ExecContext(ctx, `INSERT INTO runes (id, key, name, tree_id) VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET key = EXCLUDED.key, name = EXCLUDED.name, tree_id = EXCLUDED.tree_id
			WHERE EXCLUDED.name <> ''`,
			r.ID, r.Key, r.Name, r.TreeID)
		if err != nil {
			return fmt.Errorf("failed to upsert rune %d: %w", r.ID, err)
		}
	}
	for _, perk := range catalog.statPerks {
		_, err := txx.ExecContext(ctx, `INSERT INTO stat_perks (id, name) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name
			WHERE EXCLUDED.name <> ''`,
			perk.ID, perk.Name)
		if err != nil {
			return fmt.Errorf("failed to upsert stat perk %d: %w", perk.ID, err)
		}
	}
	for _, spell := range catalog.summonerSpells {
		_, err := txx.ExecContext(ctx, `INSERT INTO summoner_spells (id, key, name) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET key = EXCLUDED.key, name = EXCLUDED.name
			WHERE EXCLUDED.name <> ''`,
			spell.ID, spell.Key, spell.Name)
		if err != nil {
			return fmt.Errorf("failed to upsert summoner spell %d: %w", spell.ID, err)
		}
	}
	for _, augment := range catalog.augments {
		_, err := txx.ExecContext(ctx, `INSERT INTO augments (id, name, rarity) VALUES ($1, $2, $3)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, rarity = EXCLUDED.rarity
			WHERE EXCLUDED.name <> ''`,
			augment.ID, augment.Name, augment.Rarity)
		if err != nil {
			return fmt.Errorf("failed to upsert augment %d: %w", augment.ID, err)
		}
	}

	return nil
}
