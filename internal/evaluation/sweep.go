package evaluation

import (
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"pimaknn/internal/errors"
	"pimaknn/internal/models"
)

// SweepResult is the train and test accuracy of one neighbour count on a holdout split.
type SweepResult struct {
	Neighbors     int
	TrainAccuracy float64
	TestAccuracy  float64
}

// SweepNeighbors fits one model per candidate on split.Train and scores it on both parts.
func SweepNeighbors(factory models.Factory, X [][]decimal.Decimal, y []int, split Split, candidates []int) ([]SweepResult, error) {
	if len(candidates) == 0 {
		return nil, errors.InvalidInput("no candidate neighbour counts")
	}

	XTrain, yTrain := Take(X, y, split.Train)
	XTest, yTest := Take(X, y, split.Test)

	results := make([]SweepResult, 0, len(candidates))
	for _, k := range candidates {
		model, err := factory(k)
		if err != nil {
			return nil, errors.Wrapf(err, "could not create model with n_neighbors=%d", k)
		}
		if err := model.Fit(XTrain, yTrain); err != nil {
			return nil, errors.Wrapf(err, "could not fit model with n_neighbors=%d", k)
		}

		result := SweepResult{
			Neighbors:     k,
			TrainAccuracy: models.Accuracy(yTrain, model.Predict(XTrain)),
			TestAccuracy:  models.Accuracy(yTest, model.Predict(XTest)),
		}
		results = append(results, result)

		log.Debug().
			Int("k", k).
			Float64("train", result.TrainAccuracy).
			Float64("test", result.TestAccuracy).
			Msg("sweep")
	}

	return results, nil
}

// BestSweep returns the result with the highest test accuracy, smallest k on ties.
func BestSweep(results []SweepResult) (SweepResult, bool) {
	if len(results) == 0 {
		return SweepResult{}, false
	}
	best := results[0]
	for _, r := range results[1:] {
		if r.TestAccuracy > best.TestAccuracy || (r.TestAccuracy == best.TestAccuracy && r.Neighbors < best.Neighbors) {
			best = r
		}
	}
	return best, true
}

// Holdout fits one model with k neighbours and returns train and test
// accuracy with the test-set report.
func Holdout(factory models.Factory, X [][]decimal.Decimal, y []int, split Split, k int) (SweepResult, *ClassificationMetrics, error) {
	XTrain, yTrain := Take(X, y, split.Train)
	XTest, yTest := Take(X, y, split.Test)

	model, err := factory(k)
	if err != nil {
		return SweepResult{}, nil, err
	}
	if err := model.Fit(XTrain, yTrain); err != nil {
		return SweepResult{}, nil, err
	}

	predictions := model.Predict(XTest)
	result := SweepResult{
		Neighbors:     k,
		TrainAccuracy: models.Accuracy(yTrain, model.Predict(XTrain)),
		TestAccuracy:  models.Accuracy(yTest, predictions),
	}

	return result, CalculateMetrics(yTest, predictions, models.ExtractClasses(y)), nil
}
