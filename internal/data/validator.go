package data

import (
	"github.com/montanaflynn/stats"

	"pimaknn/internal/errors"
)

type DataValidator struct{}

func NewDataValidator() *DataValidator {
	return &DataValidator{}
}

func (dv *DataValidator) ValidateTable(t *Table) error {
	if t == nil || t.Len() == 0 {
		return errors.InvalidInput("dataset is empty")
	}

	nFeatures := len(t.Features)
	if nFeatures == 0 {
		return errors.InvalidInput("features cannot be empty")
	}

	for i, r := range t.Records {
		if len(r.Features) != nFeatures {
			return errors.InvalidInput("inconsistent feature count at sample %d: expected %d, got %d", i, nFeatures, len(r.Features))
		}
		if r.Outcome != 0 && r.Outcome != 1 {
			return errors.InvalidInput("outcome must be 0 or 1 at sample %d, got %d", i, r.Outcome)
		}
	}

	return nil
}

func (dv *DataValidator) ValidateLabels(t *Table) error {
	if t.Len() == 0 {
		return errors.InvalidInput("labels are empty")
	}

	if classes := len(t.GroupCounts()); classes < 2 {
		return errors.InvalidInput("dataset must have at least 2 classes, found %d", classes)
	}

	return nil
}

// FeatureSummary describes one feature column.
type FeatureSummary struct {
	Name   string
	Count  int
	Zeros  int
	Mean   float64
	Std    float64
	Min    float64
	Median float64
	Max    float64
}

// DatasetStats is the shape, class balance and per-feature description of a table.
type DatasetStats struct {
	Rows              int
	Cols              int
	ClassDistribution map[int]int
	Classes           []int
	Features          []FeatureSummary
}

func (dv *DataValidator) GetDatasetStats(t *Table) (*DatasetStats, error) {
	rows, cols := t.Shape()
	ds := &DatasetStats{
		Rows:              rows,
		Cols:              cols,
		ClassDistribution: t.GroupCounts(),
		Classes:           t.Classes(),
		Features:          make([]FeatureSummary, len(t.Features)),
	}

	if rows == 0 {
		return ds, nil
	}

	for j, name := range t.Features {
		values := make(stats.Float64Data, rows)
		zeros := 0
		for i, v := range t.Column(j) {
			if v.IsZero() {
				zeros++
			}
			values[i] = v.InexactFloat64()
		}

		summary, err := describe(values)
		if err != nil {
			return nil, errors.Wrapf(err, "could not describe %s", name)
		}
		summary.Name = name
		summary.Zeros = zeros
		ds.Features[j] = summary
	}

	return ds, nil
}

func describe(values stats.Float64Data) (FeatureSummary, error) {
	var (
		s   = FeatureSummary{Count: values.Len()}
		err error
	)
	if s.Mean, err = values.Mean(); err != nil {
		return s, err
	}
	if s.Std, err = values.StandardDeviationSample(); err != nil {
		return s, err
	}
	if s.Min, err = values.Min(); err != nil {
		return s, err
	}
	if s.Median, err = values.Median(); err != nil {
		return s, err
	}
	if s.Max, err = values.Max(); err != nil {
		return s, err
	}
	return s, nil
}
