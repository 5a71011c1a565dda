package dataset

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNoSamples  = errors.New("number of samples must be positive")
	ErrNoFeatures = errors.New("no feature coefficients to simulate")
)

// SimulateOptions configures a synthetic linear dataset y = x · Coef + Intercept + noise with
// standard normal features
type SimulateOptions struct {
	Samples   int       `yaml:"samples"`
	Coef      []float64 `yaml:"coef"`
	Intercept float64   `yaml:"intercept"`
	Noise     float64   `yaml:"noise"`
	Seed      uint64    `yaml:"seed"`
}

// NewDefaultSimulateOptions mirrors the shape of the California housing regression task with
// eight features
func NewDefaultSimulateOptions() *SimulateOptions {
	return &SimulateOptions{
		Samples:   20640,
		Coef:      []float64{0.85, 0.12, -0.30, 0.35, -0.002, -0.04, -0.90, -0.87},
		Intercept: 2.07,
		Noise:     0.7,
		Seed:      DefaultSeed,
	}
}

// Validate returns the default options when unset
func (s *SimulateOptions) Validate() (*SimulateOptions, error) {
	if s == nil {
		return NewDefaultSimulateOptions(), nil
	}
	if s.Samples <= 0 {
		return nil, ErrNoSamples
	}
	if len(s.Coef) == 0 {
		return nil, ErrNoFeatures
	}
	return s, nil
}

// Simulate generates features and targets from the options. The same seed always produces the
// same data.
func Simulate(opt *SimulateOptions) (*mat.Dense, []float64, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid simulate options, %w", err)
	}

	r := rand.New(rand.NewPCG(opt.Seed, opt.Seed^0x9e3779b97f4a7c15))
	n := len(opt.Coef)
	x := mat.NewDense(opt.Samples, n, nil)
	y := make([]float64, opt.Samples)

	row := make([]float64, n)
	for i := 0; i < opt.Samples; i++ {
		for j := range row {
			row[j] = r.NormFloat64()
		}
		x.SetRow(i, row)
		y[i] = floats.Dot(row, opt.Coef) + opt.Intercept + r.NormFloat64()*opt.Noise
	}
	return x, y, nil
}

// FeatureNames returns generic names for n simulated features
func FeatureNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("x%d", i)
	}
	return names
}
