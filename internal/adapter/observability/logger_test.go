package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkyoung/diffnote/internal/adapter/observability"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prevFlags := log.Flags()
	prevWriter := log.Writer()
	log.SetFlags(0)
	log.SetOutput(&buf)
	t.Cleanup(func() {
		log.SetFlags(prevFlags)
		log.SetOutput(prevWriter)
	})
	return &buf
}

func TestHumanFormatSortsFields(t *testing.T) {
	buf := capture(t)
	logger := observability.NewDefaultLogger(observability.LogLevelInfo, observability.LogFormatHuman)

	logger.LogInfo(context.Background(), "parsed diff", map[string]interface{}{
		"files": 3,
		"bytes": 120,
	})

	assert.Equal(t, "[INFO] parsed diff (bytes=120, files=3)\n", buf.String())
}

func TestJSONFormat(t *testing.T) {
	buf := capture(t)
	logger := observability.NewDefaultLogger(observability.LogLevelInfo, observability.LogFormatJSON)

	logger.LogWarning(context.Background(), "hunk malformed", map[string]interface{}{"path": "a.go"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "hunk malformed", entry["message"])
	assert.Equal(t, "a.go", entry["path"])
}

func TestLevelFiltersInfo(t *testing.T) {
	buf := capture(t)
	logger := observability.NewDefaultLogger(observability.LogLevelWarning, observability.LogFormatHuman)

	logger.LogInfo(context.Background(), "chatty", nil)
	assert.Empty(t, buf.String())

	logger.LogWarning(context.Background(), "important", nil)
	assert.Contains(t, buf.String(), "important")
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, observability.LogLevelDebug, observability.ParseLevel("debug"))
	assert.Equal(t, observability.LogLevelWarning, observability.ParseLevel("WARN"))
	assert.Equal(t, observability.LogLevelInfo, observability.ParseLevel("bogus"))
	assert.Equal(t, observability.LogFormatJSON, observability.ParseFormat("json"))
	assert.Equal(t, observability.LogFormatHuman, observability.ParseFormat(""))
}
