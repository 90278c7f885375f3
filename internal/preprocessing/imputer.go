package preprocessing

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"pimaknn/internal/data"
	"pimaknn/internal/errors"
)

// ImputationRule maps each outcome label to the replacement for zeros of one feature.
type ImputationRule struct {
	Feature string
	Means   map[int]decimal.Decimal
}

// ZeroImputer treats zero as missing in the configured columns and replaces it
// with the mean of the non-zero values in the same outcome group.
type ZeroImputer struct {
	Columns  []string
	Rules    []ImputationRule
	IsFitted bool
}

func NewZeroImputer(columns []string) *ZeroImputer {
	return &ZeroImputer{Columns: columns}
}

func (zi *ZeroImputer) Fit(t *data.Table) error {
	zi.Rules = make([]ImputationRule, 0, len(zi.Columns))
	classes := t.Classes()

	for _, feature := range zi.Columns {
		j, err := t.FeatureIndex(feature)
		if err != nil {
			return errors.InvalidInput("cannot impute %s: column not in dataset", feature)
		}

		sums := make(map[int]decimal.Decimal)
		counts := make(map[int]int64)
		for _, r := range t.Records {
			v := r.Features[j]
			if v.IsZero() {
				continue
			}
			sums[r.Outcome] = sums[r.Outcome].Add(v)
			counts[r.Outcome]++
		}

		rule := ImputationRule{Feature: feature, Means: make(map[int]decimal.Decimal, len(classes))}
		for _, class := range classes {
			if counts[class] == 0 {
				return errors.InvalidInput("cannot impute %s for outcome %d: no non-zero values, mean is undefined", feature, class)
			}
			rule.Means[class] = sums[class].Div(decimal.NewFromInt(counts[class]))
		}

		zi.Rules = append(zi.Rules, rule)
		log.Debug().
			Str("feature", feature).
			Str("means", formatMeans(rule.Means)).
			Msg("imputation rule")
	}

	zi.IsFitted = true
	return nil
}

// Transform returns a copy of t with every zero in an imputed column replaced.
func (zi *ZeroImputer) Transform(t *data.Table) (*data.Table, error) {
	if !zi.IsFitted {
		return nil, fmt.Errorf("imputer must be fitted before transform")
	}

	out := t.Clone()
	replaced := 0

	for _, rule := range zi.Rules {
		j, err := out.FeatureIndex(rule.Feature)
		if err != nil {
			return nil, errors.InvalidInput("cannot impute %s: column not in dataset", rule.Feature)
		}
		for i := range out.Records {
			r := &out.Records[i]
			if !r.Features[j].IsZero() {
				continue
			}
			mean, ok := rule.Means[r.Outcome]
			if !ok {
				return nil, errors.InvalidInput("no imputation rule for %s with outcome %d", rule.Feature, r.Outcome)
			}
			r.Features[j] = mean
			replaced++
		}
	}

	log.Info().Int("replaced", replaced).Int("columns", len(zi.Rules)).Msg("imputed zero values")
	return out, nil
}

func (zi *ZeroImputer) FitTransform(t *data.Table) (*data.Table, error) {
	if err := zi.Fit(t); err != nil {
		return nil, err
	}
	return zi.Transform(t)
}

func formatMeans(means map[int]decimal.Decimal) string {
	classes := make([]int, 0, len(means))
	for c := range means {
		classes = append(classes, c)
	}
	sort.Ints(classes)

	s := ""
	for i, c := range classes {
		if i > 0 {
			s += " "
		}
		s += fmt.Sprintf("%d=%s", c, means[c].StringFixed(4))
	}
	return s
}
