package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := build(&buf, false, true)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Infof("📦 Found %d job cards", 3)
	require.NoError(t, log.Sync())

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "📦 Found 3 job cards", line["msg"])
	assert.Equal(t, "info", line["level"])
}

func TestBuild_DebugConsole(t *testing.T) {
	var buf bytes.Buffer
	log, err := build(&buf, true, false)
	require.NoError(t, err)

	log.Debug("probing modal")
	require.NoError(t, log.Sync())
	assert.Contains(t, buf.String(), "probing modal")
}

func TestBuild_NilWriter(t *testing.T) {
	_, err := build(nil, false, false)
	assert.Error(t, err)
}
