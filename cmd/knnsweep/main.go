package main

import (
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pimaknn/internal/config"
	"pimaknn/internal/experiment"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func main() {
	configFile := flag.String("config", config.DefaultPath, "Path to configuration file")
	dataFile := flag.String("data", "", "Path to diabetes CSV file")
	seed := flag.Int64("seed", 0, "Random seed for splits")
	testSize := flag.Float64("test-size", 0, "Holdout test fraction (0.0-1.0)")
	sweepMin := flag.Int("k-min", 0, "Smallest n_neighbors in the holdout sweep")
	sweepMax := flag.Int("k-max", 0, "Largest n_neighbors in the holdout sweep")
	gridMin := flag.Int("grid-min", 0, "Smallest n_neighbors in the grid search")
	gridMax := flag.Int("grid-max", 0, "Largest n_neighbors in the grid search")
	folds := flag.Int("cv-folds", 0, "Number of stratified cross-validation folds")
	distance := flag.String("distance", "", "Distance metric (euclidean|manhattan)")
	preprocess := flag.String("preprocess", "", "Preprocessing method (raw|normalized|standardized)")
	parallel := flag.Bool("parallel", false, "Evaluate folds on a bounded worker pool")
	charts := flag.Bool("charts", true, "Render terminal charts")
	exportDir := flag.String("export", "", "Directory for chart data CSV export")
	logLevel := flag.String("log-level", "", "Log level (debug|info|warn|error)")

	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("could not load config")
	}

	// flags only override what was set explicitly
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			cfg.Data.File = *dataFile
		case "seed":
			cfg.Split.Seed = *seed
		case "test-size":
			cfg.Split.TestSize = *testSize
		case "k-min":
			cfg.Sweep.Min = *sweepMin
		case "k-max":
			cfg.Sweep.Max = *sweepMax
		case "grid-min":
			cfg.Grid.Neighbors.Min = *gridMin
		case "grid-max":
			cfg.Grid.Neighbors.Max = *gridMax
		case "cv-folds":
			cfg.Grid.Folds = *folds
		case "distance":
			cfg.Model.Distance = *distance
		case "preprocess":
			cfg.Model.Preprocessing = *preprocess
		case "parallel":
			cfg.Grid.Parallel = *parallel
		case "charts":
			cfg.Output.Charts = *charts
		case "export":
			cfg.Output.ExportDir = *exportDir
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal().Err(err).Str("level", cfg.LogLevel).Msg("invalid log level")
	}
	zerolog.SetGlobalLevel(level)

	runner := experiment.NewRunner(cfg, os.Stdout)
	if _, err := runner.Run(); err != nil {
		log.Fatal().Err(err).Str("run", runner.RunID).Msg("pipeline failed")
	}
}
