package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pimaknn/internal/errors"
)

func TestLoad(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvData, "")
	t.Setenv(EnvSeed, "")
	t.Setenv(EnvLogLevel, "")

	t.Run("missing-file", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("partial-override", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("split:\n  seed: 7\ngrid:\n  folds: 3\n"), 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, int64(7), cfg.Split.Seed)
		assert.Equal(t, 0.25, cfg.Split.TestSize)
		assert.Equal(t, 3, cfg.Grid.Folds)
		assert.Equal(t, 11, cfg.Grid.Neighbors.Max)
		assert.False(t, cfg.Grid.Parallel)
	})

	t.Run("env-override", func(t *testing.T) {
		t.Setenv(EnvSeed, "123")
		t.Setenv(EnvData, "other.csv")

		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, int64(123), cfg.Split.Seed)
		assert.Equal(t, "other.csv", cfg.Data.File)
	})

	t.Run("bad-seed", func(t *testing.T) {
		t.Setenv(EnvSeed, "sixty-six")

		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.True(t, stderrors.Is(err, errors.ErrInvalidInput))
	})

	t.Run("bad-yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("split: [unclosed"), 0644))

		_, err := Load(path)
		assert.True(t, stderrors.Is(err, errors.ErrInvalidInput))
	})
}

func TestShippedConfigMatchesDefaults(t *testing.T) {
	t.Setenv(EnvConfig, "")
	t.Setenv(EnvData, "")
	t.Setenv(EnvSeed, "")
	t.Setenv(EnvLogLevel, "")

	cfg, err := Load(filepath.Join("..", "..", DefaultPath))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.False(t, cfg.Grid.Parallel)
}

func TestValidate(t *testing.T) {

	type test struct {
		mutate func(c *Config)
		valid  bool
	}

	tests := map[string]test{
		"default": {
			mutate: func(c *Config) {},
			valid:  true,
		},
		"test-size-zero": {
			mutate: func(c *Config) { c.Split.TestSize = 0 },
		},
		"test-size-one": {
			mutate: func(c *Config) { c.Split.TestSize = 1 },
		},
		"sweep-reversed": {
			mutate: func(c *Config) { c.Sweep = RangeConfig{Min: 5, Max: 2} },
		},
		"grid-zero": {
			mutate: func(c *Config) { c.Grid.Neighbors.Min = 0 },
		},
		"one-fold": {
			mutate: func(c *Config) { c.Grid.Folds = 1 },
		},
		"cosine": {
			mutate: func(c *Config) { c.Model.Distance = "cosine" },
		},
		"standardized": {
			mutate: func(c *Config) { c.Model.Preprocessing = "standardized" },
			valid:  true,
		},
		"unknown-preprocessing": {
			mutate: func(c *Config) { c.Model.Preprocessing = "log" },
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.True(t, stderrors.Is(err, errors.ErrInvalidInput))
			}
		})
	}
}

func TestRangeValues(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, RangeConfig{Min: 1, Max: 3}.Values())
	assert.Equal(t, []int{4}, RangeConfig{Min: 4, Max: 4}.Values())
	assert.Nil(t, RangeConfig{Min: 4, Max: 3}.Values())
}
