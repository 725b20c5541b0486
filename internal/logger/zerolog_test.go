package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZerologAdapter_WritesComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.DebugLevel)

	log.Info("Timelapse", "frame saved", map[string]interface{}{
		"path":    "/tmp/image_0000.jpg",
		"counter": 1,
	})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "Timelapse", entry["component"])
	assert.Equal(t, "frame saved", entry["message"])
	assert.Equal(t, "/tmp/image_0000.jpg", entry["path"])
	assert.EqualValues(t, 1, entry["counter"])
}

func TestZerologAdapter_Error(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.InfoLevel)

	log.Error("Encoder", errors.New("exit status 1"), nil)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "exit status 1", entry["error"])
}

func TestZerologAdapter_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewZerolog(&buf, zerolog.WarnLevel)

	log.Debug("Camera", "hidden", nil)
	log.Info("Camera", "hidden", nil)
	assert.Zero(t, buf.Len())

	log.Warning("Camera", "shown", nil)
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warning"))
	assert.Equal(t, zerolog.ErrorLevel, ParseLevel("error"))
	assert.Equal(t, zerolog.Disabled, ParseLevel("off"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("verbose"))
}

func TestNop(t *testing.T) {
	var l Logger = Nop()
	l.Info("Test", "discarded", map[string]interface{}{"k": "v"})
}
