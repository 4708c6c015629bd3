package ports

import (
	"log/slog"
	"net/http"

	"github.com/Amund211/riftlight/internal/app"
	"github.com/Amund211/riftlight/internal/logging"
	"github.com/Amund211/riftlight/internal/reporting"
)

func MakeGetAccountHandler(
	resolveAccount app.ResolveAccount,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildPortMiddleware("get_account", "gameName", allowedOrigins, rootLogger, sentryMiddleware)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		region := r.PathValue("region")
		gameName := r.PathValue("gameName")
		tagLine := r.PathValue("tagLine")

		ctx = reporting.SetUserIDInContext(ctx, r.Header.Get("X-User-Id"))
		ctx = logging.AddMetaToContext(ctx,
			slog.String("region", region),
			slog.String("gameName", gameName),
			slog.String("tagLine", tagLine),
		)
		ctx = reporting.AddExtrasToContext(ctx,
			map[string]string{
				"gameName": gameName,
				"tagLine":  tagLine,
			},
		)

		refresh, err := parseRefresh(r)
		if err != nil {
			writeError(ctx, w, http.StatusBadRequest, "invalid refresh")
			return
		}

		resolved, err := resolveAccount(ctx, region, gameName, tagLine, refresh)
		if err != nil {
			// NOTE: ResolveAccount implementations handle their own error reporting
			writeResolveError(ctx, w, err)
			return
		}

		ctx = logging.AddMetaToContext(ctx, slog.String("puuid", resolved.Data.PUUID))

		writeJSON(ctx, w, http.StatusOK, accountResponse{
			Success:   true,
			Source:    resolved.Source,
			Persisted: resolved.Persisted,
			Account:   accountToJSON(resolved.Data),
		})
	}

	return middleware(handler)
}
