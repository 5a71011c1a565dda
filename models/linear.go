package models

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// LinearModel is a fixed set of linear parameters, predicting x · coef + intercept. It is
// used to run inference on parameters loaded back from storage.
type LinearModel struct {
	coef      []float64
	intercept float64
}

// NewLinearModel copies coef and returns a model ready for inference
func NewLinearModel(coef []float64, intercept float64) *LinearModel {
	c := make([]float64, len(coef))
	copy(c, coef)
	return &LinearModel{
		coef:      c,
		intercept: intercept,
	}
}

// Fit is not supported on fixed parameters and always returns an error
func (l *LinearModel) Fit(x, y mat.Matrix) error {
	return ErrFixedParameters
}

func (l *LinearModel) Predict(x mat.Matrix) ([]float64, error) {
	if x == nil {
		return nil, ErrNoDesignMatrix
	}
	if len(l.coef) == 0 {
		return nil, ErrNoCoefficients
	}

	m, n := x.Dims()
	if n != len(l.coef) {
		return nil, fmt.Errorf("got %d features in design matrix, but expected %d, %w", n, len(l.coef), ErrFeatureLenMismatch)
	}

	var res mat.VecDense
	res.MulVec(x, mat.NewVecDense(n, l.coef))

	out := make([]float64, m)
	for i := range out {
		out[i] = res.AtVec(i) + l.intercept
	}
	return out, nil
}

func (l *LinearModel) Score(x, y mat.Matrix) (float64, error) {
	if x == nil {
		return 0.0, ErrNoDesignMatrix
	}
	if y == nil {
		return 0.0, ErrNoTargetMatrix
	}

	m, _ := x.Dims()
	ym, _ := y.Dims()
	if m != ym {
		return 0.0, fmt.Errorf("design matrix has %d rows and target has %d rows, %w", m, ym, ErrTargetLenMismatch)
	}

	res, err := l.Predict(x)
	if err != nil {
		return 0.0, err
	}

	return stat.RSquaredFrom(res, mat.Col(nil, 0, y), nil), nil
}

func (l *LinearModel) Intercept() float64 {
	return l.intercept
}

func (l *LinearModel) Coef() []float64 {
	c := make([]float64, len(l.coef))
	copy(c, l.coef)
	return c
}
