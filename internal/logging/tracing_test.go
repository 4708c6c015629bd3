package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/Amund211/riftlight/internal/logging"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestTraceLogHandler(t *testing.T) {
	t.Parallel()

	decode := func(t *testing.T, buf *bytes.Buffer) map[string]any {
		t.Helper()
		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		return entry
	}

	t.Run("adds trace fields", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		logger := slog.New(logging.NewTraceLogHandler(slog.NewJSONHandler(buf, nil))).With("component", "test")

		traceID, err := trace.TraceIDFromHex("0123456789abcdef0123456789abcdef")
		require.NoError(t, err)
		spanID, err := trace.SpanIDFromHex("0123456789abcdef")
		require.NoError(t, err)
		ctx := trace.ContextWithSpanContext(t.Context(), trace.NewSpanContext(trace.SpanContextConfig{
			TraceID:    traceID,
			SpanID:     spanID,
			TraceFlags: trace.FlagsSampled,
		}))

		logger.InfoContext(ctx, "traced")

		entry := decode(t, buf)
		require.Equal(t, "0123456789abcdef0123456789abcdef", entry["traceID"])
		require.Equal(t, "0123456789abcdef", entry["spanID"])
		require.Equal(t, true, entry["traceSampled"])
		require.Equal(t, "test", entry["component"])
	})

	t.Run("no span in context", func(t *testing.T) {
		t.Parallel()

		buf := &bytes.Buffer{}
		logger := slog.New(logging.NewTraceLogHandler(slog.NewJSONHandler(buf, nil)))

		logger.InfoContext(t.Context(), "untraced")

		entry := decode(t, buf)
		require.NotContains(t, entry, "traceID")
		require.NotContains(t, entry, "spanID")
	})
}
