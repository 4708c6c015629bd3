package ports

import (
	"log/slog"
	"net/http"

	"github.com/Amund211/riftlight/internal/app"
	"github.com/Amund211/riftlight/internal/logging"
	"github.com/Amund211/riftlight/internal/reporting"
)

func MakeGetRankedAccountHandler(
	resolveRankedAccount app.ResolveRankedAccount,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildPortMiddleware("get_ranked_account", "puuid", allowedOrigins, rootLogger, sentryMiddleware)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		region := r.PathValue("region")
		puuid := r.PathValue("puuid")

		ctx = reporting.SetUserIDInContext(ctx, r.Header.Get("X-User-Id"))
		ctx = logging.AddMetaToContext(ctx, slog.String("region", region))
		ctx = reporting.AddExtrasToContext(ctx, map[string]string{"puuid": puuid})

		refresh, err := parseRefresh(r)
		if err != nil {
			writeError(ctx, w, http.StatusBadRequest, "invalid refresh")
			return
		}

		resolved, err := resolveRankedAccount(ctx, region, puuid, refresh)
		if err != nil {
			// NOTE: ResolveRankedAccount implementations handle their own error reporting
			writeResolveError(ctx, w, err)
			return
		}

		writeJSON(ctx, w, http.StatusOK, rankedResponse{
			Success:   true,
			Source:    resolved.Source,
			Persisted: resolved.Persisted,
			Ranked:    rankedAccountToJSON(resolved.Data),
		})
	}

	return middleware(handler)
}
