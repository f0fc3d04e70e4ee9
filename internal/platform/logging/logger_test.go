package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/pscheid92/mediapost/internal/platform/correlation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestInitLogger_JSONWithCorrelation(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	InitLogger("info", "json", &buf)

	ctx := correlation.WithID(context.Background(), "cafe0001")
	slog.InfoContext(ctx, "Refresh completed", "outcome", "success")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "Refresh completed", record["msg"])
	assert.Equal(t, "success", record["outcome"])
	assert.Equal(t, "cafe0001", record["correlation_id"])
}

func TestInitLogger_LevelFiltersDebug(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	InitLogger("warn", "text", &buf)

	slog.Info("hidden")
	slog.Warn("Overlay already closed")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "Overlay already closed")
}
