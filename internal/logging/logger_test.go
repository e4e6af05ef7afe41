package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/fadedpez/placebo/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	dec := json.NewDecoder(buf)
	for dec.More() {
		var m map[string]interface{}
		require.NoError(t, dec.Decode(&m))
		out = append(out, m)
	}
	return out
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(WARN, &buf)

	l.Debug("hidden %d", 1)
	l.Info("hidden %d", 2)
	l.Warn("shown %d", 3)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "warn", lines[0]["level"])
	assert.Equal(t, "shown 3", lines[0]["message"])
}

func TestLogErrorIncludesCode(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(INFO, &buf)

	l.LogError(types.WrapError(types.ErrSyncFailed, "points sync failed", errors.New("502")))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "SYNC_FAILED", lines[0]["code"])
	assert.Equal(t, "points sync failed", lines[0]["message"])
	assert.Equal(t, "502", lines[0]["cause"])
}

func TestWithAddsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := NewLoggerWithWriter(INFO, &buf).With("ledger")

	l.Info("adjusted")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "ledger", lines[0]["component"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, DEBUG, ParseLevel("DEBUG"))
	assert.Equal(t, WARN, ParseLevel("warning"))
	assert.Equal(t, ERROR, ParseLevel(" error "))
	assert.Equal(t, INFO, ParseLevel("nonsense"))
}
