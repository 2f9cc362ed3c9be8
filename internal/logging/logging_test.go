package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetOutputCapturesStructuredJSON(t *testing.T) {
	t.Cleanup(Init)

	var structured, human bytes.Buffer
	SetOutput(&structured, &human)

	Info("capture stored", "file", "capture_1.jpg")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(structured.Bytes(), &entry))
	assert.Equal(t, "capture stored", entry["msg"])
	assert.Equal(t, "capture_1.jpg", entry["file"])
}

func TestForServiceAddsServiceAttribute(t *testing.T) {
	t.Cleanup(Init)

	var structured, human bytes.Buffer
	SetOutput(&structured, &human)

	logger := ForService("classifier")
	require.NotNil(t, logger)
	logger.Info("model status")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(structured.Bytes(), &entry))
	assert.Equal(t, "classifier", entry["service"])
}

func TestLevelReplaceAttrNamesCustomLevels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		level slog.Level
		want  string
	}{
		{"fatal", LevelFatal, "FATAL"},
		{"trace", LevelTrace, "TRACE"},
		{"info passthrough", slog.LevelInfo, "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			attr := levelReplaceAttr(nil, slog.Attr{
				Key:   slog.LevelKey,
				Value: slog.AnyValue(tt.level),
			})
			assert.Equal(t, tt.want, attr.Value.String())
		})
	}
}
