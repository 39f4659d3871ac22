package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	context_ "github.com/mkrupp/cryptotracker/internal/infra/context"
	"github.com/mkrupp/cryptotracker/internal/infra/logging"
)

func TestConsoleHandler_PkgLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	handler := &logging.ConsoleHandler{
		Output: &buf,
		Level:  logging.LevelWarn,
		PkgLevels: map[string]slog.Level{
			"svc.marketsvc": logging.LevelDebug,
		},
	}

	ctx := context.Background()

	slog.New(handler).With("logger", "svc.marketsvc.market_service").DebugContext(ctx, "market debug")
	slog.New(handler).With("logger", "svc.authsvc.auth_service").InfoContext(ctx, "auth info")
	slog.New(handler).With("logger", "svc.authsvc.auth_service").WarnContext(ctx, "auth warn")

	out := buf.String()
	assert.Contains(t, out, "market debug")
	assert.NotContains(t, out, "auth info")
	assert.Contains(t, out, "auth warn")
}

func TestContextHandler_AddsRequestValues(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(logging.NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	ctx := context_.WithTraceID(context.Background(), "trace-1")
	ctx = context_.WithUserID(ctx, 7)

	logger.InfoContext(ctx, "hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, map[string]any{"id": "trace-1"}, record["trace"])
	assert.Equal(t, map[string]any{"id": float64(7)}, record["user"])
}

func TestNopLogger(t *testing.T) {
	t.Parallel()

	assert.False(t, logging.NewNopLogger().Enabled(context.Background(), logging.LevelError))
}
