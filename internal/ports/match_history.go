package ports

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Amund211/riftlight/internal/app"
	"github.com/Amund211/riftlight/internal/logging"
	"github.com/Amund211/riftlight/internal/reporting"
)

const defaultMatchHistoryCount = 20

func parseIntQuery(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func MakeGetMatchHistoryHandler(
	resolveMatchHistory app.ResolveMatchHistory,
	allowedOrigins *DomainSuffixes,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware := buildPortMiddleware("get_match_history", "puuid", allowedOrigins, rootLogger, sentryMiddleware)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		region := r.PathValue("region")
		puuid := r.PathValue("puuid")

		ctx = reporting.SetUserIDInContext(ctx, r.Header.Get("X-User-Id"))
		ctx = reporting.AddExtrasToContext(ctx, map[string]string{"puuid": puuid})

		start, err := parseIntQuery(r, "start", 0)
		if err != nil {
			writeError(ctx, w, http.StatusBadRequest, "invalid start")
			return
		}
		count, err := parseIntQuery(r, "count", defaultMatchHistoryCount)
		if err != nil {
			writeError(ctx, w, http.StatusBadRequest, "invalid count")
			return
		}
		refresh, err := parseRefresh(r)
		if err != nil {
			writeError(ctx, w, http.StatusBadRequest, "invalid refresh")
			return
		}

		ctx = logging.AddMetaToContext(ctx,
			slog.String("region", region),
			slog.Int("start", start),
			slog.Int("count", count),
			slog.Bool("refresh", refresh),
		)

		history, err := resolveMatchHistory(ctx, region, puuid, start, count, refresh)
		if err != nil {
			// NOTE: ResolveMatchHistory implementations handle their own error reporting
			writeResolveError(ctx, w, err)
			return
		}

		matches := make([]matchJSON, 0, len(history.Matches))
		for _, match := range history.Matches {
			matches = append(matches, matchToJSON(match))
		}

		writeJSON(ctx, w, http.StatusOK, matchHistoryResponse{
			Success:     true,
			Source:      history.Source,
			Matches:     matches,
			Persistence: persistenceToJSON(history.Persistence),
		})
	}

	return middleware(handler)
}
