package accountrepository

import (
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/Amund211/riftlight/internal/adapters/database"
	"github.com/Amund211/riftlight/internal/domain"
	"github.com/Amund211/riftlight/internal/domaintest"
)

func newPostgres(t *testing.T, db *sqlx.DB, schemaSuffix string) *Postgres {
	require.NotEmpty(t, schemaSuffix, "schemaSuffix must not be empty")
	schema := fmt.Sprintf("account_repo_test_%s", schemaSuffix)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	db.MustExec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", pq.QuoteIdentifier(schema)))

	migrator := database.NewDatabaseMigrator(db, logger)

	err := migrator.Migrate(t.Context(), schema)
	require.NoError(t, err)

	return NewPostgres(db, schema)
}

func TestPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping db tests in short mode.")
	}
	t.Parallel()

	db, err := database.NewPostgresDatabase(database.LOCAL_CONNECTION_STRING)
	require.NoError(t, err)

	now := time.Date(2025, time.March, 14, 12, 0, 0, 0, time.UTC)

	t.Run("Save/FindAccountByRiotID", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		p := newPostgres(t, db, "save_find_account")

		_, err := p.FindAccountByRiotID(ctx, "europe", "Faker", "KR1")
		require.ErrorIs(t, err, domain.ErrAccountNotFound)
		require.ErrorIs(t, err, domain.ErrNotFound)

		account := domain.Account{PUUID: "puuid-1", GameName: "Faker", TagLine: "KR1"}
		require.NoError(t, p.SaveAccount(ctx, "europe", account))

		found, err := p.FindAccountByRiotID(ctx, "europe", "faker", "kr1")
		require.NoError(t, err)
		require.Equal(t, account, found)

		_, err = p.FindAccountByRiotID(ctx, "asia", "Faker", "KR1")
		require.ErrorIs(t, err, domain.ErrAccountNotFound)

		// Saving twice is fine
		require.NoError(t, p.SaveAccount(ctx, "europe", account))

		t.Run("rename", func(t *testing.T) {
			renamed := domain.Account{PUUID: "puuid-1", GameName: "Hide on bush", TagLine: "KR1"}
			require.NoError(t, p.SaveAccount(ctx, "europe", renamed))

			_, err := p.FindAccountByRiotID(ctx, "europe", "Faker", "KR1")
			require.ErrorIs(t, err, domain.ErrAccountNotFound)

			found, err := p.FindAccountByRiotID(ctx, "europe", "Hide on bush", "KR1")
			require.NoError(t, err)
			require.Equal(t, renamed, found)
		})

		t.Run("riot id taken over by another account", func(t *testing.T) {
			require.NoError(t, p.SaveAccount(ctx, "europe", domain.Account{PUUID: "puuid-2", GameName: "Hide on bush", TagLine: "KR1"}))

			found, err := p.FindAccountByRiotID(ctx, "europe", "Hide on bush", "KR1")
			require.NoError(t, err)
			require.Equal(t, "puuid-2", found.PUUID)
		})
	})

	t.Run("SaveAccount rejects placeholders", func(t *testing.T) {
		t.Parallel()

		p := newPostgres(t, db, "save_placeholder")

		err := p.SaveAccount(t.Context(), "europe", domain.Account{PUUID: domaintest.NewPUUID(t)})
		require.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Save/FindRankedAccount", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		p := newPostgres(t, db, "save_find_ranked")

		_, err := p.FindRankedAccount(ctx, "puuid-1", "europe", "")
		require.ErrorIs(t, err, domain.ErrRankedAccountNotFound)

		rankedAccount := domain.RankedAccount{
			PUUID:         "puuid-1",
			Region:        "europe",
			Platform:      "euw1",
			ProfileIconID: 29,
			RevisionDate:  now.Add(-time.Hour),
			SummonerLevel: 412,
			SoloQueue:     domain.NewRankedStanding(domain.QueueRankedSolo, "GOLD", "II", 41, 30, 20, true),
			FlexQueue:     domain.NewRankedStanding(domain.QueueRankedFlex, "SILVER", "I", 0, 3, 1, false),
			QueriedAt:     now,
		}
		require.NoError(t, p.SaveRankedAccount(ctx, rankedAccount))

		found, err := p.FindRankedAccount(ctx, "puuid-1", "europe", "")
		require.NoError(t, err)
		requireRankedAccountEqual(t, rankedAccount, found)

		found, err = p.FindRankedAccount(ctx, "puuid-1", "europe", "euw1")
		require.NoError(t, err)
		requireRankedAccountEqual(t, rankedAccount, found)

		_, err = p.FindRankedAccount(ctx, "puuid-1", "europe", "eun1")
		require.ErrorIs(t, err, domain.ErrRankedAccountNotFound)

		t.Run("superseded standings are removed", func(t *testing.T) {
			refreshed := rankedAccount
			refreshed.FlexQueue = domain.UnrankedStanding(domain.QueueRankedFlex)
			refreshed.SoloQueue = domain.NewRankedStanding(domain.QueueRankedSolo, "GOLD", "I", 12, 31, 20, false)
			refreshed.QueriedAt = now.Add(time.Hour)
			require.NoError(t, p.SaveRankedAccount(ctx, refreshed))

			found, err := p.FindRankedAccount(ctx, "puuid-1", "europe", "")
			require.NoError(t, err)
			requireRankedAccountEqual(t, refreshed, found)
			require.True(t, found.FlexQueue.IsUnranked())

			var count int
			err = db.GetContext(ctx, &count, fmt.Sprintf("SELECT COUNT(*) FROM %s.ranked_standings", pq.QuoteIdentifier(p.schema)))
			require.NoError(t, err)
			require.Equal(t, 1, count)
		})
	})

	t.Run("unranked account", func(t *testing.T) {
		t.Parallel()
		ctx := t.Context()

		p := newPostgres(t, db, "unranked")

		rankedAccount := domain.RankedAccount{
			PUUID:         "puuid-1",
			Region:        "asia",
			Platform:      "kr",
			ProfileIconID: 1,
			RevisionDate:  now,
			SummonerLevel: 30,
			SoloQueue:     domain.UnrankedStanding(domain.QueueRankedSolo),
			FlexQueue:     domain.UnrankedStanding(domain.QueueRankedFlex),
			QueriedAt:     now,
		}
		require.NoError(t, p.SaveRankedAccount(ctx, rankedAccount))

		found, err := p.FindRankedAccount(ctx, "puuid-1", "asia", "kr")
		require.NoError(t, err)
		require.Equal(t, domain.TierUnranked, found.SoloQueue.Tier)
		require.Equal(t, domain.TierUnranked, found.FlexQueue.Tier)
	})
}

func requireRankedAccountEqual(t *testing.T, expected, actual domain.RankedAccount) {
	t.Helper()

	require.WithinDuration(t, expected.RevisionDate, actual.RevisionDate, time.Millisecond)
	require.WithinDuration(t, expected.QueriedAt, actual.QueriedAt, time.Millisecond)

	expected.RevisionDate = time.Time{}
	expected.QueriedAt = time.Time{}
	actual.RevisionDate = time.Time{}
	actual.QueriedAt = time.Time{}

	require.Equal(t, expected, actual)
}
