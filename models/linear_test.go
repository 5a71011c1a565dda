package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestLinearModelPredict(t *testing.T) {
	x := mat.NewDense(3, 2, []float64{
		0, 0,
		1, 2,
		-1, 4,
	})

	testData := map[string]struct {
		coef      []float64
		intercept float64
		x         mat.Matrix
		expected  []float64
		err       error
	}{
		"no design matrix": {
			coef: []float64{1, 2},
			err:  ErrNoDesignMatrix,
		},
		"no coefficients": {
			x:   x,
			err: ErrNoCoefficients,
		},
		"feature mismatch": {
			coef: []float64{1, 2, 3},
			x:    x,
			err:  ErrFeatureLenMismatch,
		},
		"with intercept": {
			coef:      []float64{1.0, -2.0},
			intercept: 0.25,
			x:         x,
			expected:  []float64{0.25, -2.75, -8.75},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			model := NewLinearModel(td.coef, td.intercept)
			res, err := model.Predict(td.x)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.InDeltaSlice(t, td.expected, res, 1e-12)
		})
	}
}

func TestLinearModelMatchesOLS(t *testing.T) {
	x := mat.NewDense(5, 2, []float64{
		0, 0,
		3, 5,
		9, 20,
		12, 6,
		15, 10,
	})
	y := mat.NewDense(5, 1, []float64{2, 31, 109, 62, 87})

	ols, err := NewOLSRegression(nil)
	require.Nil(t, err)
	require.Nil(t, ols.Fit(x, y))

	var model Model = NewLinearModel(ols.Coef(), ols.Intercept())
	expected, err := ols.Predict(x)
	require.Nil(t, err)
	res, err := model.Predict(x)
	require.Nil(t, err)
	assert.InDeltaSlice(t, expected, res, 1e-9)

	r2, err := model.Score(x, y)
	require.Nil(t, err)
	assert.InDelta(t, 1.0, r2, 1e-9)

	assert.ErrorIs(t, model.Fit(x, y), ErrFixedParameters)
}
