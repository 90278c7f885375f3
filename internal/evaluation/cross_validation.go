package evaluation

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"pimaknn/internal/errors"
	"pimaknn/internal/models"
)

type CrossValidator struct {
	Factory    models.Factory
	Parallel   bool
	MaxWorkers int
}

func NewCrossValidator(factory models.Factory, parallel bool, maxWorkers int) *CrossValidator {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &CrossValidator{
		Factory:    factory,
		Parallel:   parallel,
		MaxWorkers: maxWorkers,
	}
}

// FoldResult is the outcome of fitting on one fold's training part and
// predicting its held-out part.
type FoldResult struct {
	Fold        int
	Neighbors   int
	Accuracy    float64
	Predictions []int
	Truth       []int
}

// CandidateScore is the cross-validated accuracy of one neighbour count.
type CandidateScore struct {
	Neighbors  int
	FoldScores []float64
	Mean       float64
	Std        float64
}

type GridSearchResult struct {
	BestNeighbors int
	BestScore     float64
	Scores        []CandidateScore
}

// FoldEvaluation is the per-fold report of a refit with a fixed neighbour count.
type FoldEvaluation struct {
	Neighbors int
	Folds     []FoldResult
	Reports   []*ClassificationMetrics
	Mean      float64
	Std       float64
}

// CrossValidate fits one model per fold and returns the fold accuracies in fold order.
func (cv *CrossValidator) CrossValidate(X [][]decimal.Decimal, y []int, folds []Split, neighbors int) ([]FoldResult, error) {
	if len(folds) == 0 {
		return nil, errors.InvalidInput("no folds to evaluate")
	}

	results := make([]FoldResult, len(folds))
	errs := make([]error, len(folds))

	if !cv.Parallel {
		for i, fold := range folds {
			results[i], errs[i] = cv.evaluateFold(X, y, i, fold, neighbors)
		}
		return results, firstError(errs)
	}

	workers := cv.MaxWorkers
	if workers > len(folds) {
		workers = len(folds)
	}

	jobs := make(chan int, len(folds))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = cv.evaluateFold(X, y, i, folds[i], neighbors)
			}
		}()
	}

	for i := range folds {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	return results, firstError(errs)
}

func (cv *CrossValidator) evaluateFold(X [][]decimal.Decimal, y []int, index int, fold Split, neighbors int) (FoldResult, error) {
	XTrain, yTrain := Take(X, y, fold.Train)
	XTest, yTest := Take(X, y, fold.Test)

	model, err := cv.Factory(neighbors)
	if err != nil {
		return FoldResult{}, err
	}
	if err := model.Fit(XTrain, yTrain); err != nil {
		return FoldResult{}, fmt.Errorf("fold %d failed: %w", index, err)
	}

	predictions := model.Predict(XTest)
	result := FoldResult{
		Fold:        index,
		Neighbors:   neighbors,
		Accuracy:    models.Accuracy(yTest, predictions),
		Predictions: predictions,
		Truth:       yTest,
	}

	log.Debug().
		Int("fold", index).
		Interface("params", model.GetParams()).
		Float64("accuracy", result.Accuracy).
		Msg("fold evaluated")

	return result, nil
}

// GridSearch scores every candidate on the folds and picks the highest mean
// accuracy. Ties go to the smallest neighbour count.
func (cv *CrossValidator) GridSearch(X [][]decimal.Decimal, y []int, folds []Split, candidates []int) (*GridSearchResult, error) {
	if len(candidates) == 0 {
		return nil, errors.InvalidInput("no candidate neighbour counts")
	}

	result := &GridSearchResult{
		Scores: make([]CandidateScore, 0, len(candidates)),
	}
	best := -1

	for _, k := range candidates {
		foldResults, err := cv.CrossValidate(X, y, folds, k)
		if err != nil {
			return nil, errors.Wrapf(err, "grid search failed for n_neighbors=%d", k)
		}

		scores := make([]float64, len(foldResults))
		for i, fr := range foldResults {
			scores[i] = fr.Accuracy
		}
		mean, std := calculateStats(scores)

		result.Scores = append(result.Scores, CandidateScore{
			Neighbors:  k,
			FoldScores: scores,
			Mean:       mean,
			Std:        std,
		})

		if best < 0 || mean > result.BestScore || (mean == result.BestScore && k < result.BestNeighbors) {
			best = len(result.Scores) - 1
			result.BestNeighbors = k
			result.BestScore = mean
		}

		log.Info().
			Int("k", k).
			Float64("mean", mean).
			Float64("std", std).
			Msg("grid candidate")
	}

	return result, nil
}

// EvaluateFolds refits with a fixed neighbour count on every fold and reports
// accuracy and a classification report per held-out part.
func (cv *CrossValidator) EvaluateFolds(X [][]decimal.Decimal, y []int, folds []Split, neighbors int) (*FoldEvaluation, error) {
	foldResults, err := cv.CrossValidate(X, y, folds, neighbors)
	if err != nil {
		return nil, err
	}

	classes := models.ExtractClasses(y)
	eval := &FoldEvaluation{
		Neighbors: neighbors,
		Folds:     foldResults,
		Reports:   make([]*ClassificationMetrics, len(foldResults)),
	}

	scores := make([]float64, len(foldResults))
	for i, fr := range foldResults {
		scores[i] = fr.Accuracy
		eval.Reports[i] = CalculateMetrics(fr.Truth, fr.Predictions, classes)
	}
	eval.Mean, eval.Std = calculateStats(scores)

	return eval, nil
}

// calculateStats returns the mean and the population standard deviation of
// the fold scores, matching how cross-validation spreads are usually quoted.
func calculateStats(scores []float64) (mean, std float64) {
	if len(scores) == 0 {
		return 0, 0
	}
	return stat.PopMeanStdDev(scores, nil)
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
