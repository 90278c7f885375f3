package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs(t *testing.T) {

	type test struct {
		err     error
		target  error
		matches bool
	}

	tests := map[string]test{
		"invalid-input": {
			err:     InvalidInput("missing column %s", "Outcome"),
			target:  ErrInvalidInput,
			matches: true,
		},
		"degenerate-is-not-invalid": {
			err:     DegenerateSplit("too many folds"),
			target:  ErrInvalidInput,
			matches: false,
		},
		"wrapped-keeps-code": {
			err:     Wrap(DegenerateSplit("too many folds"), "grid search"),
			target:  ErrDegenerateSplit,
			matches: true,
		},
		"fmt-wrapped": {
			err:     fmt.Errorf("loading: %w", InvalidInput("bad label")),
			target:  ErrInvalidInput,
			matches: true,
		},
		"plain-error": {
			err:     stderrors.New("boom"),
			target:  ErrInvalidInput,
			matches: false,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.matches, stderrors.Is(tt.err, tt.target))
		})
	}
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "nothing"))

	cause := stderrors.New("disk gone")
	err := Wrapf(cause, "reading %s", "diabetes.csv")
	assert.Equal(t, CodeInternal, Code(err))
	assert.Equal(t, "reading diabetes.csv: disk gone", err.Error())
	assert.True(t, stderrors.Is(err, cause))
}
