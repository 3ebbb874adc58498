package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestJSONLoggerWritesStructuredEntries(t *testing.T) {
	var buf bytes.Buffer
	logger := New(InfoLevel, &buf)

	logger.WithFields(map[string]interface{}{"job_id": "job_1"}).
		Info("Solve started", map[string]interface{}{"rows": 5})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "Solve started", entry["message"])
	assert.Equal(t, "job_1", entry["job_id"])
	assert.Equal(t, float64(5), entry["rows"])
	assert.Contains(t, entry, "timestamp")
	assert.Contains(t, entry, "caller")
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WarnLevel, &buf)

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("kept")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 2)
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithFormat(DebugLevel, FormatText, &buf)

	logger.Info("Run finished", map[string]interface{}{
		"status":      "solved",
		"generations": 42,
	})

	line := buf.String()
	assert.Contains(t, line, "INFO")
	assert.Contains(t, line, "Run finished")
	assert.Contains(t, line, "generations=42")
	assert.Contains(t, line, "status=solved")
	// Fields are sorted by key.
	assert.Less(t, strings.Index(line, "generations="), strings.Index(line, "status="))
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatText, parseFormat("text"))
	assert.Equal(t, FormatText, parseFormat("console"))
	assert.Equal(t, FormatJSON, parseFormat("json"))
	assert.Equal(t, FormatJSON, parseFormat(""))
	assert.Equal(t, FormatJSON, parseFormat("wat"))
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := New(InfoLevel, &buf)
	child := parent.WithField("component", "engine")

	parent.Info("plain")
	child.Info("tagged")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.NotContains(t, lines[0], "component")
	assert.Contains(t, lines[1], "component")
}

func TestContextLoggerRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := &CtxLogger{New(DebugLevel, &buf)}

	ctx := logger.WithContext(context.Background())
	FromContext(ctx).Info("from context")

	assert.Contains(t, buf.String(), "from context")

	// A bare context yields a usable fallback logger.
	assert.NotNil(t, FromContext(context.Background()))
}

func TestZapAdapterForwardsEntries(t *testing.T) {
	var buf bytes.Buffer
	zl := NewZapLogger(New(DebugLevel, &buf))

	zl.Info("zap entry", zap.String("job_id", "job_9"), zap.Int("rows", 5))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, "zap entry", entry["message"])
	assert.Equal(t, "job_9", entry["job_id"])
	assert.Equal(t, float64(5), entry["rows"])
}

func TestZapAdapterRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	zl := NewZapLogger(New(ErrorLevel, &buf))

	zl.Info("dropped")
	assert.Empty(t, buf.String())

	zl.Error("kept")
	assert.Contains(t, buf.String(), "kept")
}
