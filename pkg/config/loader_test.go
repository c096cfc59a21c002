package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlphaDigitAll/xQuantum-API/pkg/config"
)

type testConfig struct {
	Host     string   `env:"TEST_CFG_HOST" envDefault:"localhost"`
	Port     int      `env:"TEST_CFG_PORT" envDefault:"5432"`
	Tags     []string `env:"TEST_CFG_TAGS" envSeparator:","`
	Required string   `env:"TEST_CFG_REQUIRED,required"`
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults and env values", func(t *testing.T) {
		t.Setenv("TEST_CFG_PORT", "6543")
		t.Setenv("TEST_CFG_TAGS", "a,b,c")
		t.Setenv("TEST_CFG_REQUIRED", "set")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))

		assert.Equal(t, "localhost", cfg.Host)
		assert.Equal(t, 6543, cfg.Port)
		assert.Equal(t, []string{"a", "b", "c"}, cfg.Tags)
		assert.Equal(t, "set", cfg.Required)
	})

	t.Run("fails on missing required variable", func(t *testing.T) {
		var cfg testConfig
		err := config.Load(&cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("rejects nil pointer", func(t *testing.T) {
		err := config.Load[testConfig](nil)
		assert.ErrorIs(t, err, config.ErrNilPointer)
	})
}
