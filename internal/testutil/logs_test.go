package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogRecorder_CapturesRecords(t *testing.T) {
	logger, rec := NewLogger()

	logger.Debug("first", "n", 1)
	logger.Warn("second", "code", "X")

	records := rec.Records()
	require.Len(t, records, 2)
	assert.Equal(t, slog.LevelDebug, records[0].Level)
	assert.Equal(t, "first", records[0].Message)
	assert.Equal(t, int64(1), records[0].Attrs["n"])
	assert.Equal(t, "X", records[1].Attrs["code"])
}

func TestLogRecorder_WithAttrsSharesRecords(t *testing.T) {
	logger, rec := NewLogger()

	logger.With("component", "cache").Info("hello")

	records := rec.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "cache", records[0].Attrs["component"])
}

func TestLogRecorder_MessagesFiltersByLevel(t *testing.T) {
	logger, rec := NewLogger()

	logger.Debug("quiet")
	logger.Warn("loud")
	logger.Error("louder")

	assert.Equal(t, []string{"loud", "louder"}, rec.Messages(slog.LevelWarn))
}
