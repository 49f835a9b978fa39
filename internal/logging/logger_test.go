package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/buyerleads/internal/auth"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), in)
	}
}

func captureJSON(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	SetupWriter(&buf, level, "json")
	return &buf
}

func TestFromContextAddsRequestAndUser(t *testing.T) {
	buf := captureJSON(t, "info")

	userID := uuid.New()
	ctx := context.WithValue(context.Background(), middleware.RequestIDKey, "req-123")
	ctx = auth.WithUser(ctx, auth.User{ID: userID, Email: "a@example.com"})

	WithFields(ctx, "buyer_id", "b-1").Info("buyer updated")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "buyer updated", entry["msg"])
	assert.Equal(t, "req-123", entry["request_id"])
	assert.Equal(t, userID.String(), entry["user_id"])
	assert.Equal(t, "b-1", entry["buyer_id"])
}

func TestFromContextPlain(t *testing.T) {
	buf := captureJSON(t, "info")

	FromContext(context.Background()).Info("startup")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotContains(t, entry, "request_id")
	assert.NotContains(t, entry, "user_id")
}

func TestSetupLevelFilters(t *testing.T) {
	buf := captureJSON(t, "warn")

	slog.Info("dropped")
	assert.Zero(t, buf.Len())

	slog.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}
