package log_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pozitronik/wayle/internal/log"
)

func TestInit_JSONFormatWritesStructuredLines(t *testing.T) {
	var buf bytes.Buffer
	log.Init(log.Config{Level: log.InfoLevel, Format: log.FormatJSON, Output: &buf})

	log.WithComponent("test").Info().Msg("hello")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "hello", decoded["message"])
	assert.Equal(t, "test", decoded["component"])
}

func TestInit_LevelFiltersBelowThreshold(t *testing.T) {
	var buf bytes.Buffer
	log.Init(log.Config{Level: log.WarnLevel, Format: log.FormatJSON, Output: &buf})

	log.WithComponent("test").Info().Msg("should be dropped")
	assert.Empty(t, buf.Bytes())

	log.WithComponent("test").Warn().Msg("should appear")
	assert.NotEmpty(t, buf.Bytes())
}

func TestWithService_IsAliasForWithComponent(t *testing.T) {
	var buf bytes.Buffer
	log.Init(log.Config{Level: log.InfoLevel, Format: log.FormatJSON, Output: &buf})

	log.WithService("audio").Info().Msg("x")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "audio", decoded["component"])
}
