package evaluation

import (
	"math"
	"math/rand"
	"sort"

	"github.com/shopspring/decimal"

	"pimaknn/internal/errors"
)

// Split holds positions into the source table for one train/test partition.
type Split struct {
	Train []int
	Test  []int
}

type TrainTestSplitter struct {
	testSize   float64
	randomSeed int64
	shuffle    bool
}

func NewTrainTestSplitter(testSize float64, randomSeed int64, shuffle bool) *TrainTestSplitter {
	return &TrainTestSplitter{
		testSize:   testSize,
		randomSeed: randomSeed,
		shuffle:    shuffle,
	}
}

// StratifiedSplit holds out ceil(n*testSize) records, divided among labels by
// largest remainder so each subset keeps the label proportions of y.
func (tts *TrainTestSplitter) StratifiedSplit(y []int) (Split, error) {
	n := len(y)
	if n == 0 {
		return Split{}, errors.InvalidInput("cannot split empty dataset")
	}

	if tts.testSize <= 0 || tts.testSize >= 1 {
		return Split{}, errors.InvalidInput("test size must be between 0 and 1, got %v", tts.testSize)
	}

	testCount := int(math.Ceil(float64(n) * tts.testSize))
	if testCount >= n {
		return Split{}, errors.InvalidInput("test size %v leaves no training records out of %d", tts.testSize, n)
	}

	classes, classIndices := groupByClass(y)
	allocation := allocate(testCount, n, classes, classIndices)

	rng := rand.New(rand.NewSource(tts.randomSeed))

	var split Split
	for _, class := range classes {
		indices := classIndices[class]
		if tts.shuffle {
			rng.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}

		take := allocation[class]
		split.Test = append(split.Test, indices[:take]...)
		split.Train = append(split.Train, indices[take:]...)
	}

	sort.Ints(split.Train)
	sort.Ints(split.Test)

	return split, nil
}

// allocate divides total among the classes in proportion to their size.
func allocate(total, n int, classes []int, classIndices map[int][]int) map[int]int {
	type share struct {
		class     int
		remainder float64
	}

	allocation := make(map[int]int, len(classes))
	shares := make([]share, 0, len(classes))
	assigned := 0

	for _, class := range classes {
		exact := float64(total) * float64(len(classIndices[class])) / float64(n)
		floor := int(math.Floor(exact))
		allocation[class] = floor
		assigned += floor
		shares = append(shares, share{class: class, remainder: exact - float64(floor)})
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].remainder > shares[j].remainder
	})

	for i := 0; assigned < total; i = (i + 1) % len(shares) {
		class := shares[i].class
		if allocation[class] < len(classIndices[class]) {
			allocation[class]++
			assigned++
		}
	}

	return allocation
}

// StratifiedKFold deals each label group round-robin over the folds, so every
// fold keeps the label proportions and fold sizes differ by at most one.
type StratifiedKFold struct {
	NFolds     int
	Shuffle    bool
	RandomSeed int64
}

func NewStratifiedKFold(nFolds int, shuffle bool, randomSeed int64) *StratifiedKFold {
	return &StratifiedKFold{
		NFolds:     nFolds,
		Shuffle:    shuffle,
		RandomSeed: randomSeed,
	}
}

func (kf *StratifiedKFold) Split(y []int) ([]Split, error) {
	if len(y) == 0 {
		return nil, errors.InvalidInput("cannot split empty dataset")
	}

	if kf.NFolds < 2 {
		return nil, errors.InvalidInput("number of folds must be at least 2, got %d", kf.NFolds)
	}

	classes, classIndices := groupByClass(y)
	for _, class := range classes {
		if count := len(classIndices[class]); count < kf.NFolds {
			return nil, errors.DegenerateSplit("n_splits=%d exceeds the %d records of outcome %d", kf.NFolds, count, class)
		}
	}

	rng := rand.New(rand.NewSource(kf.RandomSeed))

	assignment := make([]int, len(y))
	position := 0
	for _, class := range classes {
		indices := classIndices[class]
		if kf.Shuffle {
			rng.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}
		for _, idx := range indices {
			assignment[idx] = position % kf.NFolds
			position++
		}
	}

	folds := make([]Split, kf.NFolds)
	for idx, fold := range assignment {
		for f := range folds {
			if f == fold {
				folds[f].Test = append(folds[f].Test, idx)
			} else {
				folds[f].Train = append(folds[f].Train, idx)
			}
		}
	}

	return folds, nil
}

func groupByClass(y []int) ([]int, map[int][]int) {
	classIndices := make(map[int][]int)
	for i, label := range y {
		classIndices[label] = append(classIndices[label], i)
	}

	classes := make([]int, 0, len(classIndices))
	for class := range classIndices {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	return classes, classIndices
}

// Take selects rows of X and y at the given positions. Rows are shared, not copied.
func Take(X [][]decimal.Decimal, y []int, indices []int) ([][]decimal.Decimal, []int) {
	XOut := make([][]decimal.Decimal, len(indices))
	yOut := make([]int, len(indices))
	for i, idx := range indices {
		XOut[i] = X[idx]
		yOut[i] = y[idx]
	}
	return XOut, yOut
}
