package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

func TestSimulateOptionsValidate(t *testing.T) {
	testData := map[string]struct {
		opt      *SimulateOptions
		expected *SimulateOptions
		err      error
	}{
		"nil":         {nil, NewDefaultSimulateOptions(), nil},
		"no samples":  {&SimulateOptions{Coef: []float64{1}}, nil, ErrNoSamples},
		"no features": {&SimulateOptions{Samples: 10}, nil, ErrNoFeatures},
		"valid": {
			&SimulateOptions{Samples: 10, Coef: []float64{1}},
			&SimulateOptions{Samples: 10, Coef: []float64{1}},
			nil,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			opt, err := td.opt.Validate()
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, opt)
		})
	}
}

func TestSimulateNoiseless(t *testing.T) {
	opt := &SimulateOptions{
		Samples:   25,
		Coef:      []float64{1.0, -2.0, 3.5},
		Intercept: 0.25,
		Seed:      11,
	}
	x, y, err := Simulate(opt)
	require.Nil(t, err)

	m, n := x.Dims()
	assert.Equal(t, 25, m)
	assert.Equal(t, 3, n)
	for i := 0; i < m; i++ {
		expected := floats.Dot(mat.Row(nil, i, x), opt.Coef) + opt.Intercept
		assert.InDelta(t, expected, y[i], 1e-12)
	}

	x2, y2, err := Simulate(opt)
	require.Nil(t, err)
	assert.True(t, mat.Equal(x, x2))
	assert.Equal(t, y, y2)
}

func TestFeatureNames(t *testing.T) {
	assert.Equal(t, []string{"x0", "x1", "x2"}, FeatureNames(3))
}
