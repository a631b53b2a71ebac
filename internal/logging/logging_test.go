package logging

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/mutedvoice/mutedvoice/internal/config"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func TestNewWithWriterFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(config.LoggingConfig{Level: "warn"}, &buf)

	logger.Info().Msg("quiet")
	assert.Empty(t, buf.String())

	logger.Warn().Str("component", "test").Msg("loud")
	assert.Contains(t, buf.String(), `"message":"loud"`)
	assert.Contains(t, buf.String(), `"component":"test"`)
}
