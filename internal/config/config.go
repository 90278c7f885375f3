package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"pimaknn/internal/errors"
)

const (
	DefaultPath = "config/config.yaml"

	EnvConfig   = "KNN_CONFIG"
	EnvData     = "KNN_DATA"
	EnvSeed     = "KNN_SEED"
	EnvLogLevel = "KNN_LOG_LEVEL"
)

// Config holds every literal parameter of a pipeline run.
type Config struct {
	Data       DataConfig       `yaml:"data"`
	Imputation ImputationConfig `yaml:"imputation"`
	Split      SplitConfig      `yaml:"split"`
	Sweep      RangeConfig      `yaml:"sweep"`
	Grid       GridConfig       `yaml:"grid"`
	Model      ModelConfig      `yaml:"model"`
	Output     OutputConfig     `yaml:"output"`
	LogLevel   string           `yaml:"log_level"`
}

type DataConfig struct {
	File          string   `yaml:"file"`
	OutcomeColumn string   `yaml:"outcome_column"`
	Features      []string `yaml:"features"`
}

type ImputationConfig struct {
	ZeroIsMissing []string `yaml:"zero_is_missing"`
}

type SplitConfig struct {
	TestSize float64 `yaml:"test_size"`
	Seed     int64   `yaml:"seed"`
}

// RangeConfig is an inclusive neighbour-count range.
type RangeConfig struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Values expands the range into its candidate list.
func (r RangeConfig) Values() []int {
	if r.Max < r.Min {
		return nil
	}
	values := make([]int, 0, r.Max-r.Min+1)
	for k := r.Min; k <= r.Max; k++ {
		values = append(values, k)
	}
	return values
}

type GridConfig struct {
	Neighbors  RangeConfig `yaml:"neighbors"`
	Folds      int         `yaml:"folds"`
	Parallel   bool        `yaml:"parallel"`
	MaxWorkers int         `yaml:"max_workers"`
}

type ModelConfig struct {
	Distance      string `yaml:"distance"`
	Preprocessing string `yaml:"preprocessing"`
}

type OutputConfig struct {
	Charts    bool   `yaml:"charts"`
	ExportDir string `yaml:"export_dir"`
}

// Default returns the parameters of the reference diabetes analysis.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			File:          "data/diabetes.csv",
			OutcomeColumn: "Outcome",
			Features: []string{
				"Pregnancies", "Glucose", "BloodPressure", "SkinThickness",
				"Insulin", "BMI", "DiabetesPedigreeFunction", "Age",
			},
		},
		Imputation: ImputationConfig{
			ZeroIsMissing: []string{"BloodPressure", "SkinThickness", "Insulin"},
		},
		Split: SplitConfig{
			TestSize: 0.25,
			Seed:     66,
		},
		Sweep: RangeConfig{Min: 1, Max: 10},
		Grid: GridConfig{
			Neighbors:  RangeConfig{Min: 1, Max: 11},
			Folds:      5,
			Parallel:   false,
			MaxWorkers: 4,
		},
		Model: ModelConfig{
			Distance:      "euclidean",
			Preprocessing: "raw",
		},
		Output: OutputConfig{
			Charts: true,
		},
		LogLevel: "info",
	}
}

// Load reads the yaml file at path on top of the defaults and then applies
// environment overrides. A .env file in the working directory is honoured.
// A missing config file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("loaded .env")
	}

	if env := os.Getenv(EnvConfig); env != "" {
		path = env
	}

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(errors.ErrInvalidInput, "could not parse config %s: %v", path, err)
		}
		log.Info().Str("path", path).Msg("loaded config")
	case os.IsNotExist(err):
		log.Debug().Str("path", path).Msg("config file not found, using defaults")
	default:
		return nil, fmt.Errorf("could not read config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvData); v != "" {
		c.Data.File = v
	}
	if v := os.Getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.InvalidInput("%s must be an integer, got %q", EnvSeed, v)
		}
		c.Split.Seed = seed
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks the parameter ranges.
func (c *Config) Validate() error {
	if c.Data.OutcomeColumn == "" {
		return errors.InvalidInput("outcome column must be set")
	}
	if c.Split.TestSize <= 0 || c.Split.TestSize >= 1 {
		return errors.InvalidInput("test size must be between 0 and 1, got %v", c.Split.TestSize)
	}
	if c.Sweep.Min < 1 || c.Sweep.Max < c.Sweep.Min {
		return errors.InvalidInput("invalid sweep range [%d, %d]", c.Sweep.Min, c.Sweep.Max)
	}
	if c.Grid.Neighbors.Min < 1 || c.Grid.Neighbors.Max < c.Grid.Neighbors.Min {
		return errors.InvalidInput("invalid grid range [%d, %d]", c.Grid.Neighbors.Min, c.Grid.Neighbors.Max)
	}
	if c.Grid.Folds < 2 {
		return errors.InvalidInput("folds must be at least 2, got %d", c.Grid.Folds)
	}
	switch c.Model.Distance {
	case "euclidean", "manhattan":
	default:
		return errors.InvalidInput("unknown distance: %s", c.Model.Distance)
	}
	switch c.Model.Preprocessing {
	case "raw", "normalized", "standardized":
	default:
		return errors.InvalidInput("unknown preprocessing: %s", c.Model.Preprocessing)
	}
	return nil
}
