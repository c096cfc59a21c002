package logger_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlphaDigitAll/xQuantum-API/pkg/logger"
)

func TestNewWithOutput(t *testing.T) {
	t.Parallel()

	t.Run("json format with static attrs", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log, err := logger.NewWithOutput(
			logger.Config{Level: "info", Format: logger.FormatJSON},
			&buf,
			slog.String("service", "api"),
		)
		require.NoError(t, err)

		log.Info("hello", slog.String("k", "v"))

		var record map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
		assert.Equal(t, "hello", record["msg"])
		assert.Equal(t, "api", record["service"])
		assert.Equal(t, "v", record["k"])
	})

	t.Run("respects level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log, err := logger.NewWithOutput(logger.Config{Level: "warn", Format: logger.FormatJSON}, &buf)
		require.NoError(t, err)

		log.Debug("dropped")
		log.Info("dropped too")
		assert.Zero(t, buf.Len())

		log.Warn("kept")
		assert.NotZero(t, buf.Len())
	})

	t.Run("rejects unknown level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, err := logger.NewWithOutput(logger.Config{Level: "verbose"}, &buf)
		assert.Error(t, err)
	})

	t.Run("rejects unknown format", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		_, err := logger.NewWithOutput(logger.Config{Level: "info", Format: "xml"}, &buf)
		assert.Error(t, err)
	})
}
