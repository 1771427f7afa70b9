package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormatCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("debug", "json", &buf)

	log.With("category", "Docs").Error("match failed", errors.New("bad pattern"))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "Docs", entry["category"])
	assert.Equal(t, "bad pattern", entry["error"])
	assert.Equal(t, "match failed", entry["message"])
}

func TestLevelFiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("info", "json", &buf)

	log.Debug("hidden")
	assert.Empty(t, buf.String())
	assert.False(t, log.DebugEnabled())

	log.Infof("shown %d", 1)
	assert.Contains(t, buf.String(), "shown 1")
}

func TestUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("loud", "json", &buf)

	log.Debug("hidden")
	log.Warn("visible")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}

func TestAzureFormatEmitsDebugCommands(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("debug", "azure", &buf)

	log.Info("> Executing: git log")

	out := buf.String()
	require.True(t, strings.HasPrefix(out, "##vso[task.debug]"), out)
	assert.Contains(t, out, "> Executing: git log")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}
