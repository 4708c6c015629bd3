package main

import (
	"context"
	"errors"
	"fmt"
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
	"github.com/Amund211/riftlight/internal/ports"
	"github.com/Amund211/riftlight/internal/reporting"
	"github.com/Amund211/riftlight/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	_ "golang.org/x/crypto/x509roots/fallback"
)

// TODO: Put in config
const PROD_DOMAIN_SUFFIX = "riftlight.gg"
const STAGING_DOMAIN_SUFFIX = "riftlight-web.pages.dev"

const DATA_DRAGON_LANGUAGE = "en_US"

func main() {
	instanceID := uuid.New().String()
	logger := slog.New(logging.NewTraceLogHandler(slog.NewJSONHandler(os.Stdout, nil))).With("instanceID", instanceID)

	fail := func(msg string, args ...any) {
		logger.Error(msg, args...)
		os.Exit(1)
	}

	ctx := context.Background()

	err := config.LoadDotEnv(".env")
	if err != nil {
		fail("Failed to load .env", "error", err.Error())
	}

	config, err := config.ConfigFromEnv()
	if err != nil {
		fail("Failed to load config", "error", err.Error())
	}
	logger.Info("Loaded config", "config", config.NonSensitiveString())

	shutdownOTel, err := telemetry.SetupOTelSDK(ctx, "riftlight", config.Environment())
	if err != nil {
		fail("Failed to set up OpenTelemetry", "error", err.Error())
	}
	defer func() {
		err := shutdownOTel(context.Background())
		if err != nil {
			logger.Error("Failed to shut down OpenTelemetry", "error", err.Error())
		}
	}()
	logger.Info("Initialized OpenTelemetry")

	sentryMiddleware, flush, err := reporting.NewSentryMiddlewareOrMock(config)
	if err != nil {
		fail("Failed to initialize Sentry", "error", err.Error())
	}
	defer flush()
	logger.Info("Initialized Sentry middleware")

	httpClient := &http.Client{
		Timeout:   10 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	riot, err := riotapi.NewRiot(httpClient, config.RiotAPIKey(), riotapi.Limits{
		RequestsPerSecond:     config.RiotRequestsPerSecond(),
		RequestsPerTwoMinutes: config.RiotRequestsPerTwoMinutes(),
	})
	if err != nil {
		fail("Failed to initialize Riot API", "error", err.Error())
	}
	logger.Info("Initialized Riot API")

	staticCatalog, err := catalog.LoadDataDragon(ctx, httpClient, config.DataDragonVersion(), DATA_DRAGON_LANGUAGE)
	if err != nil {
		fail("Failed to load catalog from Data Dragon", "error", err.Error())
	}
	err = catalog.LoadArenaAugments(ctx, httpClient, staticCatalog)
	if err != nil {
		// Arena matches still transform without augment names
		logger.Warn("Failed to load arena augments", "error", err.Error())
	}
	logger.Info("Loaded catalog")

	logger.Info("Initializing database connection")
	db, err := database.NewPostgresDatabase(config.DBConnectionString())
	if err != nil {
		fail("Failed to initialize database connection", "error", err.Error())
	}
	logger.Info("Initialized database connection")

	repositorySchemaName := database.GetSchemaName(!config.IsProduction())

	err = database.NewDatabaseMigrator(db, logger.With("component", "migrator")).Migrate(ctx, repositorySchemaName)
	if err != nil {
		fail("Failed to migrate database", "error", err.Error())
	}

	accountRepo := accountrepository.NewPostgres(db, repositorySchemaName)
	matchRepo := matchrepository.NewPostgres(db, repositorySchemaName)
	logger.Info("Initialized repositories")

	accountCache := cache.NewTTLCache[app.Resolved[domain.Account]](10 * time.Minute)
	rankedCache := cache.NewTTLCache[app.Resolved[domain.RankedAccount]](1 * time.Minute)

	allowedOrigins, err := ports.NewDomainSuffixes(PROD_DOMAIN_SUFFIX, STAGING_DOMAIN_SUFFIX)
	if err != nil {
		fail("Failed to initialize allowed origins", "error", err.Error())
	}
	if config.IsDevelopment() {
		allowedOrigins = allowedOrigins.WithLocalhost()
	}

	persistMatches, err := app.BuildPersistMatches(matchRepo, time.After, app.DefaultPersistBackoffStep)
	if err != nil {
		fail("Failed to initialize match persistence", "error", err.Error())
	}

	resolveAccount := app.BuildResolveAccount(accountCache, riot, accountRepo)
	resolveRankedAccount := app.BuildResolveRankedAccount(rankedCache, riot, accountRepo, time.Now)
	resolveMatchHistory := app.BuildResolveMatchHistory(riot, matchRepo, staticCatalog, persistMatches)
	resolveMatch := app.BuildResolveMatch(riot, matchRepo, staticCatalog)

	mux := http.NewServeMux()

	mux.HandleFunc(
		"OPTIONS /v1/account/{region}/{gameName}/{tagLine}",
		ports.BuildCORSHandler(allowedOrigins),
	)
	mux.HandleFunc(
		"GET /v1/account/{region}/{gameName}/{tagLine}",
		ports.MakeGetAccountHandler(
			resolveAccount,
			allowedOrigins,
			logger.With("port", "account"),
			sentryMiddleware,
		),
	)

	mux.HandleFunc(
		"OPTIONS /v1/ranked/{region}/{puuid}",
		ports.BuildCORSHandler(allowedOrigins),
	)
	mux.HandleFunc(
		"GET /v1/ranked/{region}/{puuid}",
		ports.MakeGetRankedAccountHandler(
			resolveRankedAccount,
			allowedOrigins,
			logger.With("port", "ranked"),
			sentryMiddleware,
		),
	)

	mux.HandleFunc(
		"OPTIONS /v1/matches/{region}/{puuid}",
		ports.BuildCORSHandler(allowedOrigins),
	)
	mux.HandleFunc(
		"GET /v1/matches/{region}/{puuid}",
		ports.MakeGetMatchHistoryHandler(
			resolveMatchHistory,
			allowedOrigins,
			logger.With("port", "matches"),
			sentryMiddleware,
		),
	)

	mux.HandleFunc(
		"OPTIONS /v1/match/{region}/{matchId}",
		ports.BuildCORSHandler(allowedOrigins),
	)
	mux.HandleFunc(
		"GET /v1/match/{region}/{matchId}",
		ports.MakeGetMatchHandler(
			resolveMatch,
			allowedOrigins,
			logger.With("port", "match"),
			sentryMiddleware,
		),
	)

	logger.Info("Init complete")
	err = http.ListenAndServe(fmt.Sprintf(":%s", config.Port()), otelhttp.NewHandler(mux, "riftlight"))
	if errors.Is(err, http.ErrServerClosed) {
		logger.Info("Server shutdown")
	} else {
		fail("Server error", "error", err.Error())
	}
}
