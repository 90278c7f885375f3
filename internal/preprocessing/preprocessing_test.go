package preprocessing

import (
	stderrors "errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pimaknn/internal/data"
	"pimaknn/internal/errors"
	"pimaknn/internal/evaluation"
	"pimaknn/internal/models"
)

func table(features []string, rows ...[]int64) *data.Table {
	t := data.NewTable(features, "Outcome")
	for _, row := range rows {
		values := make([]decimal.Decimal, len(row)-1)
		for j := range values {
			values[j] = decimal.NewFromInt(row[j])
		}
		t.Records = append(t.Records, data.Record{Features: values, Outcome: int(row[len(row)-1])})
	}
	return t
}

func diabetesLike() *data.Table {
	return table([]string{"Glucose", "BloodPressure", "Insulin"},
		[]int64{148, 72, 0, 1},
		[]int64{85, 66, 0, 0},
		[]int64{183, 0, 0, 1},
		[]int64{89, 66, 94, 0},
		[]int64{137, 40, 168, 1},
		[]int64{116, 0, 0, 0},
		[]int64{78, 50, 88, 1},
		[]int64{115, 0, 0, 0},
	)
}

func TestZeroImputerMeans(t *testing.T) {
	imputer := NewZeroImputer([]string{"BloodPressure", "Insulin"})
	out, err := imputer.FitTransform(diabetesLike())
	require.NoError(t, err)

	require.Len(t, imputer.Rules, 2)
	bp := imputer.Rules[0]
	assert.Equal(t, "BloodPressure", bp.Feature)
	// outcome 0: 66, 66 ; outcome 1: 72, 40, 50
	assert.Equal(t, "66", bp.Means[0].String())
	assert.Equal(t, "54", bp.Means[1].String())

	insulin := imputer.Rules[1]
	assert.Equal(t, "94", insulin.Means[0].String())
	assert.Equal(t, "128", insulin.Means[1].String())

	assert.Equal(t, "54", out.Records[2].Features[1].String())
	assert.Equal(t, "66", out.Records[5].Features[1].String())
	assert.Equal(t, "128", out.Records[0].Features[2].String())
	assert.Equal(t, "94", out.Records[1].Features[2].String())
}

func TestZeroImputerProperties(t *testing.T) {
	columns := []string{"BloodPressure", "Insulin"}
	in := diabetesLike()

	once, err := NewZeroImputer(columns).FitTransform(in)
	require.NoError(t, err)

	t.Run("positive-minimum", func(t *testing.T) {
		for _, feature := range columns {
			j, err := once.FeatureIndex(feature)
			require.NoError(t, err)
			for _, r := range once.Records {
				assert.True(t, r.Features[j].GreaterThan(decimal.Zero), "%s has a zero for outcome %d", feature, r.Outcome)
			}
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		twice, err := NewZeroImputer(columns).FitTransform(once)
		require.NoError(t, err)
		for i := range once.Records {
			for j := range once.Records[i].Features {
				assert.True(t, once.Records[i].Features[j].Equal(twice.Records[i].Features[j]))
			}
		}
	})

	t.Run("input-untouched", func(t *testing.T) {
		assert.True(t, in.Records[0].Features[2].IsZero())
	})

	t.Run("other-columns-untouched", func(t *testing.T) {
		for i := range in.Records {
			assert.True(t, in.Records[i].Features[0].Equal(once.Records[i].Features[0]))
		}
	})
}

func TestZeroImputerErrors(t *testing.T) {

	type test struct {
		columns []string
		table   *data.Table
	}

	tests := map[string]test{
		"all-zero-group": {
			columns: []string{"Insulin"},
			table: table([]string{"Insulin"},
				[]int64{0, 0},
				[]int64{0, 0},
				[]int64{120, 1},
			),
		},
		"unknown-column": {
			columns: []string{"SkinThickness"},
			table:   diabetesLike(),
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewZeroImputer(tt.columns).FitTransform(tt.table)
			assert.True(t, stderrors.Is(err, errors.ErrInvalidInput), "unexpected error: %v", err)
		})
	}

	_, err := NewZeroImputer(nil).Transform(diabetesLike())
	assert.Error(t, err)
}

func TestScaler(t *testing.T) {

	type test struct {
		method   string
		expected []string
	}

	tests := map[string]test{
		"raw": {
			method:   ScaleRaw,
			expected: []string{"2", "4", "6"},
		},
		"normalized": {
			method:   ScaleNormalized,
			expected: []string{"0", "0.5", "1"},
		},
	}

	X, _ := table([]string{"x"}, []int64{2, 0}, []int64{4, 1}, []int64{6, 0}).Matrix()

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			out, err := NewScaler(tt.method).FitTransform(X)
			require.NoError(t, err)
			for i, want := range tt.expected {
				assert.Equal(t, want, out[i][0].String())
			}
		})
	}

	t.Run("standardized", func(t *testing.T) {
		out, err := NewScaler(ScaleStandardized).FitTransform(X)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, out[1][0].InexactFloat64(), 1e-9)
		// population std of 2, 4, 6 is sqrt(8/3)
		assert.InDelta(t, -1.224744871391589, out[0][0].InexactFloat64(), 1e-9)
		assert.InDelta(t, 1.224744871391589, out[2][0].InexactFloat64(), 1e-9)
	})

	t.Run("constant-column", func(t *testing.T) {
		C, _ := table([]string{"c"}, []int64{3, 0}, []int64{3, 1}).Matrix()
		out, err := NewScaler(ScaleNormalized).FitTransform(C)
		require.NoError(t, err)
		assert.True(t, out[0][0].IsZero())
		assert.True(t, out[1][0].IsZero())
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := NewScaler("log").FitTransform(X)
		assert.True(t, stderrors.Is(err, errors.ErrInvalidInput))
	})

	t.Run("unfitted", func(t *testing.T) {
		_, err := NewScaler(ScaleNormalized).Transform(X)
		assert.Error(t, err)
	})

	t.Run("width-mismatch", func(t *testing.T) {
		s := NewScaler(ScaleNormalized)
		require.NoError(t, s.Fit(X))
		W, _ := table([]string{"a", "b"}, []int64{1, 2, 0}).Matrix()
		_, err := s.Transform(W)
		assert.True(t, stderrors.Is(err, errors.ErrInvalidInput))
	})
}

func TestScaledModelUsesTrainingRowsOnly(t *testing.T) {
	rows := make([][]int64, 40)
	for i := range rows {
		rows[i] = []int64{int64(i % 10), int64(i % 7), int64(i % 2)}
	}
	X, y := table([]string{"a", "b"}, rows...).Matrix()

	split, err := evaluation.NewTrainTestSplitter(0.25, 66, true).StratifiedSplit(y)
	require.NoError(t, err)

	scaledTrain := func(X [][]decimal.Decimal) ([][]decimal.Decimal, []int) {
		model, err := ScaledFactory(ScaleNormalized, models.KNNFactory("euclidean"))(3)
		require.NoError(t, err)
		XTrain, yTrain := evaluation.Take(X, y, split.Train)
		require.NoError(t, model.Fit(XTrain, yTrain))

		scaled, err := model.(*ScaledModel).Scaler.Transform(XTrain)
		require.NoError(t, err)
		XTest, _ := evaluation.Take(X, y, split.Test)
		return scaled, model.Predict(XTest)
	}

	before, predicted := scaledTrain(X)
	assert.Len(t, predicted, len(split.Test))

	X[split.Test[0]][0] = decimal.NewFromInt(1000)
	after, _ := scaledTrain(X)

	assert.Equal(t, before, after)
}

func TestScaledFactory(t *testing.T) {
	inner := models.KNNFactory("manhattan")

	raw, err := ScaledFactory(ScaleRaw, inner)(5)
	require.NoError(t, err)
	assert.IsType(t, &models.KNN{}, raw)

	scaled, err := ScaledFactory(ScaleStandardized, inner)(5)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k": 5, "distance": "manhattan", "preprocessing": ScaleStandardized}, scaled.GetParams())

	_, err = ScaledFactory(ScaleNormalized, inner)(0)
	assert.Error(t, err)

	unfitted := &ScaledModel{Scaler: NewScaler(ScaleNormalized), Model: models.NewKNN(1, "euclidean")}
	assert.Nil(t, unfitted.Predict([][]decimal.Decimal{{decimal.NewFromInt(1)}}))
}
