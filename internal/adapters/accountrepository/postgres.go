package accountrepository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Amund211/riftlight/internal/domain"
	"github.com/Amund211/riftlight/internal/reporting"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

type Postgres struct {
	db     *sqlx.DB
	schema string

	tracer trace.Tracer
}

func NewPostgres(db *sqlx.DB, schema string) *Postgres {
	tracer := otel.Tracer("riftlight/accountrepository/postgres")

	return &Postgres{
		db:     db,
		schema: schema,

		tracer: tracer,
	}
}

type dbAccountEntry struct {
	PUUID     string    `db:"puuid"`
	GameName  string    `db:"game_name"`
	TagLine   string    `db:"tag_line"`
	Region    string    `db:"region"`
	UpdatedAt time.Time `db:"updated_at"`
}

type dbRankedAccountEntry struct {
	ID            int64     `db:"id"`
	PUUID         string    `db:"puuid"`
	Region        string    `db:"region"`
	Platform      string    `db:"platform"`
	ProfileIconID int       `db:"profile_icon_id"`
	RevisionDate  time.Time `db:"revision_date"`
	SummonerLevel int       `db:"summoner_level"`
	QueriedAt     time.Time `db:"queried_at"`
}

type dbRankedStandingEntry struct {
	QueueType    string `db:"queue_type"`
	Tier         string `db:"tier"`
	Division     string `db:"division"`
	LeaguePoints int    `db:"league_points"`
	Wins         int    `db:"wins"`
	Losses       int    `db:"losses"`
	HotStreak    bool   `db:"hot_streak"`
}

// FindAccountByRiotID looks up a named account case insensitively.
// Placeholder accounts are never returned.
func (p *Postgres) FindAccountByRiotID(ctx context.Context, region, gameName, tagLine string) (domain.Account, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.FindAccountByRiotID")
	defer span.End()

	var entry dbAccountEntry
	err := p.db.GetContext(ctx, &entry, fmt.Sprintf(`SELECT
		puuid, game_name, tag_line, region, updated_at
		FROM %s.accounts
		WHERE region = $1 AND lower(game_name) = lower($2) AND lower(tag_line) = lower($3) AND game_name <> ''
		ORDER BY updated_at DESC
		LIMIT 1`,
		pq.QuoteIdentifier(p.schema),
	),
		region,
		gameName,
		tagLine,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// No entry found
			return domain.Account{}, domain.ErrAccountNotFound
		}
		err := fmt.Errorf("failed to select accounts entry: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"region":   region,
			"gameName": gameName,
			"tagLine":  tagLine,
		})
		return domain.Account{}, err
	}

	return domain.Account{
		PUUID:    entry.PUUID,
		GameName: entry.GameName,
		TagLine:  entry.TagLine,
	}, nil
}

// SaveAccount stores the riot id of an account, replacing any earlier name
func (p *Postgres) SaveAccount(ctx context.Context, region string, account domain.Account) error {
	ctx, span := p.tracer.Start(ctx, "Postgres.SaveAccount")
	defer span.End()

	if account.PUUID == "" || account.IsPlaceholder() {
		err := fmt.Errorf("%w: refusing to save account without puuid or riot id", domain.ErrValidation)
		reporting.Report(ctx, err, map[string]string{
			"puuid": account.PUUID,
		})
		return err
	}

	txx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("failed to start transaction: %w", err)
		reporting.Report(ctx, err)
		return err
	}
	defer txx.Rollback()

	_, err = txx.ExecContext(ctx, fmt.Sprintf("SET search_path TO %s", pq.QuoteIdentifier(p.schema)))
	if err != nil {
		err := fmt.Errorf("failed to set search path: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"schema": p.schema,
		})
		return err
	}

	// A riot id belongs to at most one account. Clear it from accounts that had it before.
	_, err = txx.ExecContext(
		ctx,
		`UPDATE accounts
		SET game_name = '', tag_line = '', updated_at = NOW()
		WHERE region = $1 AND lower(game_name) = lower($2) AND lower(tag_line) = lower($3) AND puuid <> $4`,
		region,
		account.GameName,
		account.TagLine,
		account.PUUID,
	)
	if err != nil {
		err := fmt.Errorf("failed to clear previous owners of riot id: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"puuid":  account.PUUID,
			"riotID": account.RiotID(),
		})
		return err
	}

	_, err = txx.ExecContext(
		ctx,
		`INSERT INTO accounts
		(puuid, game_name, tag_line, region, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (puuid)
		DO UPDATE SET
			game_name = EXCLUDED.game_name,
			tag_line = EXCLUDED.tag_line,
			region = EXCLUDED.region,
			updated_at = EXCLUDED.updated_at`,
		account.PUUID,
		account.GameName,
		account.TagLine,
		region,
	)
	if err != nil {
		err := fmt.Errorf("failed to upsert accounts entry: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"puuid":  account.PUUID,
			"riotID": account.RiotID(),
			"region": region,
		})
		return err
	}

	err = txx.Commit()
	if err != nil {
		err := fmt.Errorf("failed to commit transaction: %w", err)
		reporting.Report(ctx, err)
		return err
	}

	return nil
}

// FindRankedAccount returns the stored ranked profile of the account.
// An empty platform matches the most recently queried platform in the region.
func (p *Postgres) FindRankedAccount(ctx context.Context, puuid, region, platform string) (domain.RankedAccount, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.FindRankedAccount")
	defer span.End()

	var entry dbRankedAccountEntry
	err := p.db.GetContext(ctx, &entry, fmt.Sprintf(`SELECT
		id, puuid, region, platform, profile_icon_id, revision_date, summoner_level, queried_at
		FROM %s.ranked_accounts
		WHERE puuid = $1 AND region = $2 AND ($3 = '' OR platform = $3)
		ORDER BY queried_at DESC
		LIMIT 1`,
		pq.QuoteIdentifier(p.schema),
	),
		puuid,
		region,
		platform,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// No entry found
			return domain.RankedAccount{}, domain.ErrRankedAccountNotFound
		}
		err := fmt.Errorf("failed to select ranked_accounts entry: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"puuid":    puuid,
			"region":   region,
			"platform": platform,
		})
		return domain.RankedAccount{}, err
	}

	var standings []dbRankedStandingEntry
	err = p.db.SelectContext(ctx, &standings, fmt.Sprintf(`SELECT
		queue_type, tier, division, league_points, wins, losses, hot_streak
		FROM %s.ranked_standings
		WHERE ranked_account_id = $1`,
		pq.QuoteIdentifier(p.schema),
	),
		entry.ID,
	)
	if err != nil {
		err := fmt.Errorf("failed to select ranked_standings entries: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"puuid":           puuid,
			"rankedAccountID": fmt.Sprintf("%d", entry.ID),
		})
		return domain.RankedAccount{}, err
	}

	rankedAccount := domain.RankedAccount{
		PUUID:         entry.PUUID,
		Region:        entry.Region,
		Platform:      entry.Platform,
		ProfileIconID: entry.ProfileIconID,
		RevisionDate:  entry.RevisionDate,
		SummonerLevel: entry.SummonerLevel,
		SoloQueue:     domain.UnrankedStanding(domain.QueueRankedSolo),
		FlexQueue:     domain.UnrankedStanding(domain.QueueRankedFlex),
		QueriedAt:     entry.QueriedAt,
	}

	for _, standing := range standings {
		converted := domain.NewRankedStanding(
			domain.QueueType(standing.QueueType),
			standing.Tier,
			standing.Division,
			standing.LeaguePoints,
			standing.Wins,
			standing.Losses,
			standing.HotStreak,
		)
		switch converted.QueueType {
		case domain.QueueRankedSolo:
			rankedAccount.SoloQueue = converted
		case domain.QueueRankedFlex:
			rankedAccount.FlexQueue = converted
		}
	}

	return rankedAccount, nil
}

// SaveRankedAccount stores the ranked profile and replaces all its standings.
// Standings that are no longer present upstream are deleted.
func (p *Postgres) SaveRankedAccount(ctx context.Context, rankedAccount domain.RankedAccount) error {
	ctx, span := p.tracer.Start(ctx, "Postgres.SaveRankedAccount")
	defer span.End()

	txx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("failed to start transaction: %w", err)
		reporting.Report(ctx, err)
		return err
	}
	defer txx.Rollback()

	_, err = txx.ExecContext(ctx, fmt.Sprintf("SET search_path TO %s", pq.QuoteIdentifier(p.schema)))
	if err != nil {
		err := fmt.Errorf("failed to set search path: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"schema": p.schema,
		})
		return err
	}

	_, err = txx.ExecContext(
		ctx,
		`INSERT INTO accounts
		(puuid, region)
		VALUES ($1, $2)
		ON CONFLICT (puuid) DO NOTHING`,
		rankedAccount.PUUID,
		rankedAccount.Region,
	)
	if err != nil {
		err := fmt.Errorf("failed to insert placeholder account: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"puuid": rankedAccount.PUUID,
		})
		return err
	}

	var rankedAccountID int64
	err = txx.GetContext(
		ctx,
		&rankedAccountID,
		`INSERT INTO ranked_accounts
		(puuid, region, platform, profile_icon_id, revision_date, summoner_level, queried_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (puuid, region, platform)
		DO UPDATE SET
			profile_icon_id = EXCLUDED.profile_icon_id,
			revision_date = EXCLUDED.revision_date,
			summoner_level = EXCLUDED.summoner_level,
			queried_at = EXCLUDED.queried_at
		RETURNING id`,
		rankedAccount.PUUID,
		rankedAccount.Region,
		rankedAccount.Platform,
		rankedAccount.ProfileIconID,
		rankedAccount.RevisionDate,
		rankedAccount.SummonerLevel,
		rankedAccount.QueriedAt,
	)
	if err != nil {
		err := fmt.Errorf("failed to upsert ranked_accounts entry: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"puuid":     rankedAccount.PUUID,
			"region":    rankedAccount.Region,
			"platform":  rankedAccount.Platform,
			"queriedAt": rankedAccount.QueriedAt.Format(time.RFC3339),
		})
		return err
	}

	_, err = txx.ExecContext(ctx, "DELETE FROM ranked_standings WHERE ranked_account_id = $1", rankedAccountID)
	if err != nil {
		err := fmt.Errorf("failed to delete superseded ranked_standings entries: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"puuid": rankedAccount.PUUID,
		})
		return err
	}

	for _, standing := range rankedAccount.Standings() {
		_, err = txx.ExecContext(
			ctx,
			`INSERT INTO ranked_standings
			(ranked_account_id, queue_type, tier, division, league_points, wins, losses, hot_streak)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			rankedAccountID,
			string(standing.QueueType),
			standing.Tier,
			standing.Division,
			standing.LeaguePoints,
			standing.Wins,
			standing.Losses,
			standing.HotStreak,
		)
		if err != nil {
			err := fmt.Errorf("failed to insert ranked_standings entry: %w", err)
			reporting.Report(ctx, err, map[string]string{
				"puuid":     rankedAccount.PUUID,
				"queueType": string(standing.QueueType),
			})
			return err
		}
	}

	err = txx.Commit()
	if err != nil {
		err := fmt.Errorf("failed to commit transaction: %w", err)
		reporting.Report(ctx, err)
		return err
	}

	return nil
}
