package experiment

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pimaknn/internal/config"
	"pimaknn/internal/data"
	"pimaknn/internal/errors"
	"pimaknn/internal/evaluation"
	"pimaknn/internal/models"
	"pimaknn/internal/preprocessing"
	"pimaknn/internal/report"
)

// Runner executes the load, impute, split, evaluate and report pipeline once.
type Runner struct {
	Config   *config.Config
	RunID    string
	reporter *report.Reporter
	logger   zerolog.Logger
}

// Result carries everything the pipeline computed.
type Result struct {
	RunID       string
	Stats       *data.DatasetStats
	Rules       []preprocessing.ImputationRule
	Holdout     evaluation.Split
	Sweep       []evaluation.SweepResult
	Grid        *evaluation.GridSearchResult
	Final       evaluation.SweepResult
	FinalReport *evaluation.ClassificationMetrics
	Folds       *evaluation.FoldEvaluation
	Exported    []string
	Duration    time.Duration
}

func NewRunner(cfg *config.Config, out io.Writer) *Runner {
	runID := uuid.New().String()
	return &Runner{
		Config:   cfg,
		RunID:    runID,
		reporter: report.NewReporter(out, cfg.Output.Charts),
		logger:   log.With().Str("run", runID).Logger(),
	}
}

func (r *Runner) Run() (*Result, error) {
	cfg := r.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	result := &Result{RunID: r.RunID}

	r.logger.Info().Str("file", cfg.Data.File).Msg("loading dataset")
	table, err := data.NewCSVReader(cfg.Data.File, cfg.Data.OutcomeColumn, cfg.Data.Features).LoadTable()
	if stderrors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w (point data.file, %s or -data at the diabetes CSV)", err, config.EnvData)
	}
	if err != nil {
		return nil, err
	}

	validator := data.NewDataValidator()
	if err := validator.ValidateTable(table); err != nil {
		return nil, err
	}
	if err := validator.ValidateLabels(table); err != nil {
		return nil, err
	}

	r.logger.Info().Strs("columns", cfg.Imputation.ZeroIsMissing).Msg("imputing zero values")
	imputer := preprocessing.NewZeroImputer(cfg.Imputation.ZeroIsMissing)
	table, err = imputer.FitTransform(table)
	if err != nil {
		return nil, errors.Wrap(err, "imputation failed")
	}
	result.Rules = imputer.Rules

	result.Stats, err = validator.GetDatasetStats(table)
	if err != nil {
		return nil, err
	}
	r.reporter.DatasetInfo("Dataset", result.Stats)
	r.reporter.CountPlot(result.Stats.ClassDistribution)

	X, y := table.Matrix()

	// scaling is fitted inside every model on its training rows only
	factory := preprocessing.ScaledFactory(cfg.Model.Preprocessing, models.KNNFactory(cfg.Model.Distance))
	r.logger.Info().
		Str("distance", cfg.Model.Distance).
		Str("preprocessing", cfg.Model.Preprocessing).
		Msg("model configured")

	r.logger.Info().Float64("test_size", cfg.Split.TestSize).Int64("seed", cfg.Split.Seed).Msg("holdout split")
	result.Holdout, err = evaluation.NewTrainTestSplitter(cfg.Split.TestSize, cfg.Split.Seed, true).StratifiedSplit(y)
	if err != nil {
		return nil, err
	}

	result.Sweep, err = evaluation.SweepNeighbors(factory, X, y, result.Holdout, cfg.Sweep.Values())
	if err != nil {
		return nil, errors.Wrap(err, "neighbour sweep failed")
	}
	r.reporter.Sweep(result.Sweep)

	r.logger.Info().Int("folds", cfg.Grid.Folds).Msg("grid search")
	folds, err := evaluation.NewStratifiedKFold(cfg.Grid.Folds, true, cfg.Split.Seed).Split(y)
	if err != nil {
		return nil, err
	}

	cv := evaluation.NewCrossValidator(factory, cfg.Grid.Parallel, cfg.Grid.MaxWorkers)
	result.Grid, err = cv.GridSearch(X, y, folds, cfg.Grid.Neighbors.Values())
	if err != nil {
		return nil, err
	}
	r.reporter.GridSearch(result.Grid)

	best := result.Grid.BestNeighbors
	result.Final, result.FinalReport, err = evaluation.Holdout(factory, X, y, result.Holdout, best)
	if err != nil {
		return nil, errors.Wrap(err, "holdout evaluation failed")
	}
	r.reporter.Holdout(result.Final, result.FinalReport)

	result.Folds, err = cv.EvaluateFolds(X, y, folds, best)
	if err != nil {
		return nil, err
	}
	r.reporter.Folds(result.Folds)

	if cfg.Output.ExportDir != "" {
		result.Exported, err = report.ExportCharts(cfg.Output.ExportDir, r.RunID, result.Sweep, result.Stats.ClassDistribution)
		if err != nil {
			return nil, err
		}
	}

	result.Duration = time.Since(start)
	r.logger.Info().
		Int("best_k", best).
		Float64("cv_mean", result.Folds.Mean).
		Float64("holdout_test", result.Final.TestAccuracy).
		Dur("took", result.Duration).
		Msg("pipeline finished")

	return result, nil
}
