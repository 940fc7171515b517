package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.Disabled, ParseLevel("off"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("nonsense"))
}

func TestNewWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "info", "json")
	log.Debug().Msg("hidden")
	log.Info().Str("product_id", "SKU_001").Msg("priced")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "priced", entry["message"])
	assert.Equal(t, "SKU_001", entry["product_id"])
	assert.Contains(t, entry, "time")
}

func TestNewWriterConsole(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "debug", "console")
	log.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
}
