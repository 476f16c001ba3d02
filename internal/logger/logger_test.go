package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestLogger_JSONEntry(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "debug", Format: "json", ServiceName: "assetdash", Output: &buf})

	ctx := WithCorrelationID(context.Background(), "cid-123")
	log.WithFields(map[string]interface{}{"component": "analytics"}).
		Error(ctx, "fetch failed", errors.New("connection refused"), map[string]interface{}{"kind": "assets"})

	line := decodeLine(t, &buf)
	assert.Equal(t, "fetch failed", line["msg"])
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "assetdash", line["service"])
	assert.Equal(t, "analytics", line["component"])
	assert.Equal(t, "assets", line["kind"])
	assert.Equal(t, "cid-123", line["correlation_id"])
	assert.Equal(t, "connection refused", line["error"])
	assert.Contains(t, line["caller"], "logger_test.go")
}

func TestLogger_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Format: "json", Output: &buf})

	log.Info(context.Background(), "hidden", nil)
	assert.Zero(t, buf.Len())

	log.Warn(context.Background(), "shown", nil)
	assert.NotZero(t, buf.Len())
}

func TestLogPerformance(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Output: &buf})

	LogPerformance(context.Background(), log, "analytics.compute", 1500*time.Millisecond, nil)

	line := decodeLine(t, &buf)
	assert.Equal(t, "performance", line["event_type"])
	assert.Equal(t, "analytics.compute", line["operation"])
	assert.Equal(t, float64(1500), line["duration_ms"])
}

func TestCorrelationID_Missing(t *testing.T) {
	assert.Empty(t, CorrelationID(context.Background()))
}
