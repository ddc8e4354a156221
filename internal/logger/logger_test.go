package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenFileRedirectsOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "fittrack.log")

	closer, err := OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		closer.Close()
	})

	Get().WithField("routine_id", 9).Info("Routine created")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &line))
	assert.Equal(t, "Routine created", line["msg"])
	assert.EqualValues(t, 9, line["routine_id"])
}

func TestOpenFileStderrIsNoop(t *testing.T) {
	closer, err := OpenFile("stderr")
	require.NoError(t, err)
	assert.NoError(t, closer.Close())
}
