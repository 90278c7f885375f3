package data

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pimaknn/internal/errors"
)

const sample = `Pregnancies,Glucose,BloodPressure,Outcome
6,148,72,1
1,85,66,0
8,183,0,1
1,89,66,0
`

func TestRead(t *testing.T) {

	type test struct {
		input    string
		required []string
		err      error
		rows     int
		features []string
		labels   []int
	}

	tests := map[string]test{
		"ok": {
			input:    sample,
			required: []string{"Glucose", "BloodPressure"},
			rows:     4,
			features: []string{"Pregnancies", "Glucose", "BloodPressure"},
		},
		"outcome-not-last": {
			input:    "Outcome,Age\n1,50\n0,31\n",
			required: []string{"Age"},
			rows:     2,
			features: []string{"Age"},
		},
		"missing-outcome": {
			input: "Glucose,Age\n148,50\n",
			err:   errors.ErrInvalidInput,
		},
		"missing-required": {
			input:    sample,
			required: []string{"Insulin"},
			err:      errors.ErrInvalidInput,
		},
		"decimal-label": {
			input:    "Glucose,Outcome\n148,1.0\n85,0.00\n",
			rows:     2,
			features: []string{"Glucose"},
			labels:   []int{1, 0},
		},
		"fractional-label": {
			input: "Glucose,Outcome\n148,0.5\n",
			err:   errors.ErrInvalidInput,
		},
		"text-label": {
			input: "Glucose,Outcome\n148,yes\n",
			err:   errors.ErrInvalidInput,
		},
		"bad-label": {
			input: "Glucose,Outcome\n148,2\n",
			err:   errors.ErrInvalidInput,
		},
		"empty": {
			input: "",
			err:   errors.ErrInvalidInput,
		},
		"header-only": {
			input: "Glucose,Outcome\n",
			err:   errors.ErrInvalidInput,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			table, err := NewCSVReader("", "Outcome", tt.required).Read(strings.NewReader(tt.input))
			if tt.err != nil {
				assert.True(t, stderrors.Is(err, tt.err), "unexpected error: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.rows, table.Len())
			assert.Equal(t, tt.features, table.Features)
			if tt.labels != nil {
				assert.Equal(t, tt.labels, table.Labels())
			}
		})
	}
}

func TestReadMalformedNumber(t *testing.T) {
	_, err := NewCSVReader("", "Outcome", nil).Read(strings.NewReader("Glucose,Outcome\nabc,1\n"))
	require.Error(t, err)
	assert.False(t, stderrors.Is(err, errors.ErrInvalidInput))
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diabetes.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0644))

	table, err := NewCSVReader(path, "Outcome", nil).LoadTable()
	require.NoError(t, err)

	rows, cols := table.Shape()
	assert.Equal(t, 4, rows)
	assert.Equal(t, 4, cols)
	assert.Equal(t, map[int]int{0: 2, 1: 2}, table.GroupCounts())
	assert.Equal(t, []int{0, 1}, table.Classes())

	bp, err := table.FeatureIndex("BloodPressure")
	require.NoError(t, err)
	assert.True(t, table.Records[2].Features[bp].IsZero())

	_, err = NewCSVReader(filepath.Join(t.TempDir(), "missing.csv"), "Outcome", nil).LoadTable()
	assert.True(t, stderrors.Is(err, os.ErrNotExist))
}

func TestSubsetAndClone(t *testing.T) {
	table, err := NewCSVReader("", "Outcome", nil).Read(strings.NewReader(sample))
	require.NoError(t, err)

	sub := table.Subset([]int{3, 0})
	assert.Equal(t, 2, sub.Len())
	assert.Equal(t, 0, sub.Records[0].Outcome)
	assert.Equal(t, 1, sub.Records[1].Outcome)

	sub.Records[0].Features[0] = decimal.NewFromInt(99)
	assert.Equal(t, "1", table.Records[3].Features[0].String())

	clone := table.Clone()
	clone.Records[0].Features[0] = decimal.NewFromInt(99)
	assert.Equal(t, "6", table.Records[0].Features[0].String())
}

func TestValidator(t *testing.T) {
	table, err := NewCSVReader("", "Outcome", nil).Read(strings.NewReader(sample))
	require.NoError(t, err)

	dv := NewDataValidator()
	assert.NoError(t, dv.ValidateTable(table))
	assert.NoError(t, dv.ValidateLabels(table))

	single := table.Subset([]int{1, 3})
	assert.True(t, stderrors.Is(dv.ValidateLabels(single), errors.ErrInvalidInput))

	broken := table.Clone()
	broken.Records[0].Features = broken.Records[0].Features[:1]
	assert.True(t, stderrors.Is(dv.ValidateTable(broken), errors.ErrInvalidInput))

	assert.True(t, stderrors.Is(dv.ValidateTable(NewTable([]string{"a"}, "Outcome")), errors.ErrInvalidInput))
}

func TestGetDatasetStats(t *testing.T) {
	table, err := NewCSVReader("", "Outcome", nil).Read(strings.NewReader(sample))
	require.NoError(t, err)

	ds, err := NewDataValidator().GetDatasetStats(table)
	require.NoError(t, err)

	assert.Equal(t, 4, ds.Rows)
	assert.Equal(t, 4, ds.Cols)
	assert.Equal(t, []int{0, 1}, ds.Classes)
	require.Len(t, ds.Features, 3)

	glucose := ds.Features[1]
	assert.Equal(t, "Glucose", glucose.Name)
	assert.Equal(t, 4, glucose.Count)
	assert.InDelta(t, 126.25, glucose.Mean, 1e-9)
	assert.Equal(t, 85.0, glucose.Min)
	assert.Equal(t, 183.0, glucose.Max)
	assert.InDelta(t, 118.5, glucose.Median, 1e-9)

	assert.Equal(t, 1, ds.Features[2].Zeros)
}
