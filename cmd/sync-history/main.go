package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Amund211/riftlight/internal/adapters/accountrepository"
	"github.com/Amund211/riftlight/internal/adapters/cache"
	"github.com/Amund211/riftlight/internal/adapters/catalog"
	"github.com/Amund211/riftlight/internal/adapters/database"
	"github.com/Amund211/riftlight/internal/adapters/matchrepository"
	"github.com/Amund211/riftlight/internal/adapters/riotapi"
	"github.com/Amund211/riftlight/internal/app"
	"github.com/Amund211/riftlight/internal/config"
	"github.com/Amund211/riftlight/internal/domain"
	"github.com/Amund211/riftlight/internal/logging"
)

// Backfills the stored match history of a player by paging through it with forced refreshes
func main() {
	region := flag.String("region", "europe", "routing region of the account")
	pages := flag.Int("pages", 5, "number of pages to sync")
	pageSize := flag.Int("page-size", 20, "matches per page")
	flag.Parse()

	if flag.NArg() != 2 {
		log.Fatal("Usage: sync-history [flags] <gameName> <tagLine>")
	}
	gameName, tagLine := flag.Arg(0), flag.Arg(1)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := logging.AddToContext(context.Background(), logger)

	err := config.LoadDotEnv(".env")
	if err != nil {
		log.Fatalf("Failed to load .env: %v", err)
	}
	config, err := config.ConfigFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if config.RiotAPIKey() == "" {
		log.Fatal("No Riot API key provided")
	}

	httpClient := &http.Client{Timeout: 10 * time.Second}

	riot, err := riotapi.NewRiot(httpClient, config.RiotAPIKey(), riotapi.Limits{
		RequestsPerSecond:     config.RiotRequestsPerSecond(),
		RequestsPerTwoMinutes: config.RiotRequestsPerTwoMinutes(),
	})
	if err != nil {
		log.Fatalf("Failed to initialize Riot API: %v", err)
	}

	staticCatalog, err := catalog.LoadDataDragon(ctx, httpClient, config.DataDragonVersion(), "en_US")
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}
	err = catalog.LoadArenaAugments(ctx, httpClient, staticCatalog)
	if err != nil {
		logger.Warn("Failed to load arena augments", "error", err.Error())
	}

	db, err := database.NewPostgresDatabase(config.DBConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	schema := database.GetSchemaName(!config.IsProduction())
	err = database.NewDatabaseMigrator(db, logger.With("component", "migrator")).Migrate(ctx, schema)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	matchRepo := matchrepository.NewPostgres(db, schema)
	persistMatches, err := app.BuildPersistMatches(matchRepo, time.After, app.DefaultPersistBackoffStep)
	if err != nil {
		log.Fatalf("Failed to initialize match persistence: %v", err)
	}

	resolveAccount := app.BuildResolveAccount(
		cache.NewBasicCache[app.Resolved[domain.Account]](),
		riot,
		accountrepository.NewPostgres(db, schema),
	)
	resolveMatchHistory := app.BuildResolveMatchHistory(riot, matchRepo, staticCatalog, persistMatches)

	account, err := resolveAccount(ctx, *region, gameName, tagLine, false)
	if err != nil {
		log.Fatalf("Failed to resolve %s#%s: %v", gameName, tagLine, err)
	}
	fmt.Printf("Syncing %s#%s (%s)\n", account.Data.GameName, account.Data.TagLine, account.Data.PUUID)

	for page := range *pages {
		history, err := resolveMatchHistory(ctx, *region, account.Data.PUUID, page*(*pageSize), *pageSize, true)
		if err != nil {
			log.Fatalf("Failed to sync page %d: %v", page, err)
		}

		p := history.Persistence
		fmt.Printf(
			"page %d: %d matches, %d saved, %d existed, %d failed, %d skipped\n",
			page, p.Total, p.Saved, p.Existed, p.Failed, p.Skipped,
		)

		if len(history.Matches) < *pageSize {
			break
		}
	}
}
