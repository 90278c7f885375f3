package evaluation

import (
	"math"
)

// ClassificationMetrics is a classification report: per-class precision,
// recall, F1 and support, plus accuracy and macro and weighted averages.
type ClassificationMetrics struct {
	Accuracy          float64
	BalancedAccuracy  float64
	MacroPrecision    float64
	MacroRecall       float64
	MacroF1           float64
	WeightedPrecision float64
	WeightedRecall    float64
	WeightedF1        float64
	Classes           []int
	PerClassMetrics   map[int]ClassMetrics
	ConfusionMatrix   [][]int
	NumSamples        int
}

// ClassMetrics treats one class as positive against all the others.
type ClassMetrics struct {
	Precision   float64
	Recall      float64
	F1Score     float64
	Specificity float64
	Support     int
}

// CalculateMetrics builds the report for the given classes, in their given order.
func CalculateMetrics(yTrue, yPred []int, classes []int) *ClassificationMetrics {
	if len(yTrue) != len(yPred) || len(yTrue) == 0 || len(classes) == 0 {
		return nil
	}

	numSamples := len(yTrue)
	numClasses := len(classes)

	confusionMatrix := buildConfusionMatrix(yTrue, yPred, classes)

	classSupport := make(map[int]int)
	for _, class := range yTrue {
		classSupport[class]++
	}

	perClassMetrics := make(map[int]ClassMetrics)
	var macroPrec, macroRec, macroF1 float64
	var weightedPrec, weightedRec, weightedF1 float64
	totalSupport := 0

	for i, class := range classes {
		tp := confusionMatrix[i][i]
		fp, fn, tn := 0, 0, 0

		for j := range classes {
			if j != i {
				fp += confusionMatrix[j][i]
				fn += confusionMatrix[i][j]
			}
		}

		for j := range classes {
			for k := range classes {
				if j != i && k != i {
					tn += confusionMatrix[j][k]
				}
			}
		}

		precision := safeDivide(float64(tp), float64(tp+fp))
		recall := safeDivide(float64(tp), float64(tp+fn))
		f1 := safeDivide(2*precision*recall, precision+recall)
		specificity := safeDivide(float64(tn), float64(tn+fp))

		support := classSupport[class]
		perClassMetrics[class] = ClassMetrics{
			Precision:   precision,
			Recall:      recall,
			F1Score:     f1,
			Specificity: specificity,
			Support:     support,
		}

		macroPrec += precision
		macroRec += recall
		macroF1 += f1

		weightedPrec += precision * float64(support)
		weightedRec += recall * float64(support)
		weightedF1 += f1 * float64(support)
		totalSupport += support
	}

	correct := 0
	for i, pred := range yPred {
		if pred == yTrue[i] {
			correct++
		}
	}

	return &ClassificationMetrics{
		Accuracy:          float64(correct) / float64(numSamples),
		BalancedAccuracy:  macroRec / float64(numClasses),
		MacroPrecision:    macroPrec / float64(numClasses),
		MacroRecall:       macroRec / float64(numClasses),
		MacroF1:           macroF1 / float64(numClasses),
		WeightedPrecision: safeDivide(weightedPrec, float64(totalSupport)),
		WeightedRecall:    safeDivide(weightedRec, float64(totalSupport)),
		WeightedF1:        safeDivide(weightedF1, float64(totalSupport)),
		Classes:           classes,
		PerClassMetrics:   perClassMetrics,
		ConfusionMatrix:   confusionMatrix,
		NumSamples:        numSamples,
	}
}

func buildConfusionMatrix(yTrue, yPred []int, classes []int) [][]int {
	numClasses := len(classes)
	matrix := make([][]int, numClasses)
	for i := range matrix {
		matrix[i] = make([]int, numClasses)
	}

	classToIdx := make(map[int]int)
	for i, class := range classes {
		classToIdx[class] = i
	}

	for i := range yTrue {
		trueIdx, trueOk := classToIdx[yTrue[i]]
		predIdx, predOk := classToIdx[yPred[i]]
		if trueOk && predOk {
			matrix[trueIdx][predIdx]++
		}
	}

	return matrix
}

func safeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0.0
	}
	result := numerator / denominator
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0.0
	}
	return result
}
