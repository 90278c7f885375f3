package preprocessing

import (
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"pimaknn/internal/errors"
	"pimaknn/internal/models"
)

// ScaledModel fits its Scaler on the rows handed to Fit and applies the same
// offsets and scales to every matrix passed to Predict. Rows held out of Fit
// never influence the scaling.
type ScaledModel struct {
	Scaler *Scaler
	Model  models.Model
}

func (m *ScaledModel) Fit(X [][]decimal.Decimal, y []int) error {
	scaled, err := m.Scaler.FitTransform(X)
	if err != nil {
		return errors.Wrap(err, "could not scale training rows")
	}
	return m.Model.Fit(scaled, y)
}

// Predict returns nil when X cannot be scaled with the fitted parameters.
func (m *ScaledModel) Predict(X [][]decimal.Decimal) []int {
	scaled, err := m.Scaler.Transform(X)
	if err != nil {
		log.Error().Err(err).Msg("could not scale prediction rows")
		return nil
	}
	return m.Model.Predict(scaled)
}

func (m *ScaledModel) GetParams() map[string]any {
	params := map[string]any{"preprocessing": m.Scaler.Method}
	for k, v := range m.Model.GetParams() {
		params[k] = v
	}
	return params
}

func (m *ScaledModel) GetClasses() []int {
	return m.Model.GetClasses()
}

// ScaledFactory wraps every model built by inner in a ScaledModel using method.
// The raw method returns inner unchanged.
func ScaledFactory(method string, inner models.Factory) models.Factory {
	if method == ScaleRaw || method == "" {
		return inner
	}
	return func(neighbors int) (models.Model, error) {
		model, err := inner(neighbors)
		if err != nil {
			return nil, err
		}
		return &ScaledModel{Scaler: NewScaler(method), Model: model}, nil
	}
}
