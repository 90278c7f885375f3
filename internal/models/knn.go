package models

import (
	"sort"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"

	"pimaknn/internal/errors"
)

// KNN is a brute-force nearest-neighbour classifier with uniform voting.
// Ties in distance keep training order; ties in votes go to the smallest label.
type KNN struct {
	BaseModel
	K        int
	Distance string
	XTrain   [][]float64
	yTrain   []int
}

func NewKNN(k int, distance string) *KNN {
	if k <= 0 {
		k = 5
	}

	if distance != "euclidean" && distance != "manhattan" {
		distance = "euclidean"
	}

	return &KNN{
		K:        k,
		Distance: distance,
		BaseModel: BaseModel{
			Params: map[string]any{
				"k":        k,
				"distance": distance,
			},
		},
	}
}

func (knn *KNN) Fit(X [][]decimal.Decimal, y []int) error {
	if len(X) == 0 {
		return errors.InvalidInput("cannot fit on an empty training set")
	}
	if len(X) != len(y) {
		return errors.InvalidInput("feature matrix and labels have different lengths: %d vs %d", len(X), len(y))
	}
	if knn.K > len(X) {
		return errors.InvalidInput("n_neighbors %d exceeds training samples %d", knn.K, len(X))
	}

	knn.XTrain = toFloats(X)

	knn.yTrain = make([]int, len(y))
	copy(knn.yTrain, y)

	knn.Classes = ExtractClasses(y)
	return nil
}

func (knn *KNN) Predict(X [][]decimal.Decimal) []int {
	predictions := make([]int, len(X))

	for i, sample := range toFloats(X) {
		neighbors := knn.findNeighbors(sample)
		predictions[i] = knn.majorityVote(neighbors)
	}

	return predictions
}

func (knn *KNN) findNeighbors(sample []float64) []int {
	type neighbor struct {
		index    int
		distance float64
	}

	neighbors := make([]neighbor, len(knn.XTrain))

	for i, trainSample := range knn.XTrain {
		neighbors[i] = neighbor{index: i, distance: knn.calculateDistance(sample, trainSample)}
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].distance < neighbors[j].distance
	})

	k := knn.K
	if k > len(neighbors) {
		k = len(neighbors)
	}
	kNeighbors := make([]int, k)
	for i := 0; i < k; i++ {
		kNeighbors[i] = neighbors[i].index
	}

	return kNeighbors
}

func (knn *KNN) calculateDistance(a, b []float64) float64 {
	switch knn.Distance {
	case "manhattan":
		return floats.Distance(a, b, 1)
	default:
		return floats.Distance(a, b, 2)
	}
}

func (knn *KNN) majorityVote(neighbors []int) int {
	votes := make(map[int]int)
	for _, neighborIdx := range neighbors {
		votes[knn.yTrain[neighborIdx]]++
	}

	maxVotes := 0
	bestClass := knn.Classes[0]

	for _, class := range knn.Classes {
		if votes[class] > maxVotes {
			maxVotes = votes[class]
			bestClass = class
		}
	}

	return bestClass
}

// Accuracy is the fraction of positions where yPred equals yTrue.
func Accuracy(yTrue, yPred []int) float64 {
	if len(yTrue) == 0 {
		return 0
	}
	correct := 0
	for i, pred := range yPred {
		if pred == yTrue[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue))
}

func toFloats(X [][]decimal.Decimal) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = v.InexactFloat64()
		}
	}
	return out
}
