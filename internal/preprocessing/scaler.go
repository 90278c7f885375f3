package preprocessing

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"pimaknn/internal/errors"
)

// Scaling methods accepted by NewScaler.
const (
	ScaleRaw          = "raw"
	ScaleNormalized   = "normalized"
	ScaleStandardized = "standardized"
)

// Scaler maps every feature column through (x - offset) / scale. Fit learns
// the offsets and scales, Transform reuses them unchanged.
type Scaler struct {
	Method   string
	Offset   []float64
	Scale    []float64
	IsFitted bool
}

func NewScaler(method string) *Scaler {
	return &Scaler{Method: method}
}

// Fit learns one offset and scale per column: min and range for normalized,
// mean and population standard deviation for standardized.
func (s *Scaler) Fit(X [][]decimal.Decimal) error {
	if len(X) == 0 {
		return errors.InvalidInput("cannot fit scaler on an empty matrix")
	}
	cols, err := columns(X)
	if err != nil {
		return err
	}

	s.Offset = make([]float64, len(cols))
	s.Scale = make([]float64, len(cols))
	for j, col := range cols {
		switch s.Method {
		case ScaleRaw:
			s.Scale[j] = 1
		case ScaleNormalized:
			s.Offset[j] = floats.Min(col)
			s.Scale[j] = floats.Max(col) - s.Offset[j]
		case ScaleStandardized:
			s.Offset[j], s.Scale[j] = stat.PopMeanStdDev(col, nil)
		default:
			return errors.InvalidInput("unknown preprocessing: %s", s.Method)
		}
		// constant column
		if s.Scale[j] == 0 {
			s.Scale[j] = 1
		}
	}

	s.IsFitted = true
	return nil
}

// Transform returns a scaled copy of X. X is left untouched.
func (s *Scaler) Transform(X [][]decimal.Decimal) ([][]decimal.Decimal, error) {
	if !s.IsFitted {
		return nil, fmt.Errorf("scaler must be fitted before transform")
	}

	out := make([][]decimal.Decimal, len(X))
	for i, row := range X {
		if len(row) != len(s.Scale) {
			return nil, errors.InvalidInput("row %d has %d features, scaler was fitted on %d", i, len(row), len(s.Scale))
		}
		out[i] = make([]decimal.Decimal, len(row))
		for j, v := range row {
			if s.Method == ScaleRaw {
				out[i][j] = v
				continue
			}
			out[i][j] = decimal.NewFromFloat((v.InexactFloat64() - s.Offset[j]) / s.Scale[j])
		}
	}
	return out, nil
}

func (s *Scaler) FitTransform(X [][]decimal.Decimal) ([][]decimal.Decimal, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

func columns(X [][]decimal.Decimal) ([][]float64, error) {
	width := len(X[0])
	cols := make([][]float64, width)
	for j := range cols {
		cols[j] = make([]float64, len(X))
	}
	for i, row := range X {
		if len(row) != width {
			return nil, errors.InvalidInput("row %d has %d features, expected %d", i, len(row), width)
		}
		for j, v := range row {
			cols[j][i] = v.InexactFloat64()
		}
	}
	return cols, nil
}
