package logging

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// NewRequestLoggerMiddleware adds a logger with request details to the request context.
// Each request gets a correlation id, returned in the X-Correlation-Id header.
func NewRequestLoggerMiddleware(logger *slog.Logger) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			puuid := r.PathValue("puuid")
			if puuid == "" {
				puuid = "<missing>"
			}

			userId := r.Header.Get("X-User-Id")
			if userId == "" {
				userId = "<missing>"
			}

			userAgent := r.UserAgent()
			if userAgent == "" {
				userAgent = "<missing>"
			}

			correlationID := uuid.NewString()
			w.Header().Set("X-Correlation-Id", correlationID)

			requestLogger := logger.With(
				slog.String("correlationID", correlationID),
				slog.String("puuid", puuid),
				slog.String("userId", userId),
				slog.String("userAgent", userAgent),
				slog.String("methodPath", fmt.Sprintf("%s %s", r.Method, r.URL.Path)),
			)

			ctx := addCorrelationIDToContext(r.Context(), correlationID)
			ctx = AddToContext(ctx, requestLogger)

			next(w, r.WithContext(ctx))
		}
	}
}
