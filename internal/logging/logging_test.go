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
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{" warn ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"loud", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.input))
		})
	}
}

func TestLevelFromVerbosity(t *testing.T) {
	assert.Equal(t, "warn", LevelFromVerbosity(0))
	assert.Equal(t, "info", LevelFromVerbosity(1))
	assert.Equal(t, "debug", LevelFromVerbosity(2))
	assert.Equal(t, "trace", LevelFromVerbosity(5))
}

func TestGetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetupWithWriter("info", "json", &buf)
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	logger := GetLogger("matcher")
	logger.Info().Str("ptId", "T1").Msg("rules loaded")
	logger.Debug().Msg("filtered out")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "matcher", entry["component"])
	assert.Equal(t, "T1", entry["ptId"])
	assert.Equal(t, "rules loaded", entry["message"])
}
