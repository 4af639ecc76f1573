package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentora/dentkit/pkg/config"
)

type testConfig struct {
	Name    string `env:"TEST_APP_NAME" envDefault:"dentkit"`
	Port    int    `env:"TEST_APP_PORT" envDefault:"8080"`
	Secret  string `env:"TEST_APP_SECRET"`
	Verbose bool   `env:"TEST_APP_VERBOSE" envDefault:"false"`
}

type requiredConfig struct {
	Token string `env:"TEST_REQUIRED_TOKEN,required"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := config.Load[testConfig]()
		require.NoError(t, err)
		assert.Equal(t, "dentkit", cfg.Name)
		assert.Equal(t, 8080, cfg.Port)
		assert.False(t, cfg.Verbose)
	})

	t.Run("env overrides defaults", func(t *testing.T) {
		t.Setenv("TEST_APP_NAME", "practice-api")
		t.Setenv("TEST_APP_PORT", "9090")
		t.Setenv("TEST_APP_VERBOSE", "true")

		cfg, err := config.Load[testConfig]()
		require.NoError(t, err)
		assert.Equal(t, "practice-api", cfg.Name)
		assert.Equal(t, 9090, cfg.Port)
		assert.True(t, cfg.Verbose)
	})

	t.Run("missing required variable fails", func(t *testing.T) {
		_, err := config.Load[requiredConfig]()
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("invalid value fails", func(t *testing.T) {
		t.Setenv("TEST_APP_PORT", "not-a-number")
		_, err := config.Load[testConfig]()
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("returns config", func(t *testing.T) {
		cfg := config.MustLoad[testConfig]()
		assert.Equal(t, "dentkit", cfg.Name)
	})

	t.Run("panics on failure", func(t *testing.T) {
		assert.Panics(t, func() {
			config.MustLoad[requiredConfig]()
		})
	})
}
