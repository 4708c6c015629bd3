package ports

import (
	"log/slog"
	"net/http"

	"github.com/Amund211/riftlight/internal/app"
	"github.com/Amund211/riftlight/internal/logging"
	"github.com/Amund211/riftlight/internal/reporting"
	"github.com/Amund211/riftlight/internal/timeline"
)

func MakeGetMatchHandler(
	resolveMatch app.ResolveMatch,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildPortMiddleware("get_match", "matchId", allowedOrigins, rootLogger, sentryMiddleware)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		region := r.PathValue("region")
		matchID := r.PathValue("matchId")

		ctx = reporting.SetUserIDInContext(ctx, r.Header.Get("X-User-Id"))
		ctx = logging.AddMetaToContext(ctx,
			slog.String("region", region),
			slog.String("matchId", matchID),
		)
		ctx = reporting.AddExtrasToContext(ctx, map[string]string{"matchId": matchID})

		refresh, err := parseRefresh(r)
		if err != nil {
			writeError(ctx, w, http.StatusBadRequest, "invalid refresh")
			return
		}

		resolved, err := resolveMatch(ctx, region, matchID, refresh)
		if err != nil {
			// NOTE: ResolveMatch implementations handle their own error reporting
			writeResolveError(ctx, w, err)
			return
		}

		match := resolved.Data
		writeJSON(ctx, w, http.StatusOK, matchResponse{
			Success:   true,
			Source:    resolved.Source,
			Persisted: resolved.Persisted,
			Match:     matchToJSON(match),
			CombatLog: combatLogToJSON(timeline.CombatLog(match.Timelines, match.Sides())),
			Items:     itemsToJSON(match.Timelines),
		})
	}

	return middleware(handler)
}
