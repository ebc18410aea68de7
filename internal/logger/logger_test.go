package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductionLogsJSON(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter("production", &buf)

	log.Debug().Msg("hidden")
	log.Info().Int64("visit_id", 1001).Msg("visit completed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "visit completed", entry["message"])
	assert.Equal(t, "pestcare-visits", entry["service"])
	assert.EqualValues(t, 1001, entry["visit_id"])
}

func TestDevelopmentLogsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := newWithWriter("development", &buf)

	log.Debug().Msg("index rebuilt")
	assert.Contains(t, buf.String(), "index rebuilt")
}
