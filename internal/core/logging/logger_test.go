package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComponent(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	t.Cleanup(func() { log.Logger = prev })

	logger := Component("loader")
	logger.Info().Msg("batch appended")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "loader", entry["cmp"])
	assert.Equal(t, "batch appended", entry["message"])
}

func TestSub_AddsContextFields(t *testing.T) {
	var buf bytes.Buffer

	logger := Sub(zerolog.New(&buf), "session")
	ctx := WithLoadID(WithSource(t.Context(), "big.csv"), 2)
	logger.Info().Ctx(ctx).Msg("opened")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "session", entry["cmp"])
	assert.Equal(t, "big.csv", entry["source"])
	assert.InDelta(t, 2, entry["load_id"], 0)
}
