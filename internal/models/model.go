package models

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Model is a classifier that is fitted once and then asked for labels.
type Model interface {
	Fit(X [][]decimal.Decimal, y []int) error
	Predict(X [][]decimal.Decimal) []int
	GetParams() map[string]any
	GetClasses() []int
}

// Factory builds an unfitted model for a neighbour count.
type Factory func(neighbors int) (Model, error)

type BaseModel struct {
	Params  map[string]any
	Classes []int
}

func (bm *BaseModel) GetParams() map[string]any {
	return bm.Params
}

func (bm *BaseModel) GetClasses() []int {
	return bm.Classes
}

// ExtractClasses returns the distinct labels of y in ascending order.
func ExtractClasses(y []int) []int {
	classMap := make(map[int]bool)
	for _, label := range y {
		classMap[label] = true
	}

	classes := make([]int, 0, len(classMap))
	for class := range classMap {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	return classes
}
