package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// SingularTolerance is the smallest diagonal of R, relative to the largest, accepted before a
// fit is considered rank deficient
const SingularTolerance = 1e-10

type OLSOptions struct {
	FitIntercept bool `yaml:"fit_intercept"`
}

func NewDefaultOLSOptions() *OLSOptions {
	return &OLSOptions{
		FitIntercept: true,
	}
}

// Validate returns the default options when unset
func (o *OLSOptions) Validate() (*OLSOptions, error) {
	if o == nil {
		return NewDefaultOLSOptions(), nil
	}
	return o, nil
}

// OLSRegression computes ordinary least squares using QR factorization
type OLSRegression struct {
	opt *OLSOptions

	fitted bool
	params *LinearModel
}

func NewOLSRegression(opt *OLSOptions) (*OLSRegression, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &OLSRegression{
		opt: opt,
	}, nil
}

// Fit solves for the coefficients, and the intercept when enabled, with y as a single column
// target matrix
func (o *OLSRegression) Fit(x, y mat.Matrix) error {
	if o.opt == nil {
		return ErrNoOptions
	}
	if x == nil {
		return ErrNoTrainingMatrix
	}
	if y == nil {
		return ErrNoTargetMatrix
	}
	m, n := x.Dims()

	ym, _ := y.Dims()
	if ym != m {
		return fmt.Errorf("training data has %d rows and target has %d row, %w", m, ym, ErrTargetLenMismatch)
	}

	if o.opt.FitIntercept {
		x = withOnes(x)
		_, n = x.Dims()
	}
	if m < n {
		return fmt.Errorf("%d observations for %d parameters, %w", m, n, ErrUnderdetermined)
	}

	qr := new(mat.QR)
	qr.Factorize(x)

	q := new(mat.Dense)
	r := new(mat.Dense)

	qr.QTo(q)
	qr.RTo(r)
	yq := new(mat.Dense)
	yq.Mul(y.T(), q)

	// a near zero diagonal in R means some column is a combination of the others
	var maxDiag float64
	for i := 0; i < n; i++ {
		maxDiag = math.Max(maxDiag, math.Abs(r.At(i, i)))
	}
	for i := 0; i < n; i++ {
		if math.Abs(r.At(i, i)) <= SingularTolerance*maxDiag {
			return fmt.Errorf("column %d of the design matrix, %w", i, ErrSingular)
		}
	}

	// back substitution over the upper triangular R
	c := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		c[i] = yq.At(0, i)
		for j := i + 1; j < n; j++ {
			c[i] -= c[j] * r.At(i, j)
		}
		c[i] /= r.At(i, i)
	}

	if o.opt.FitIntercept {
		o.params = NewLinearModel(c[1:], c[0])
	} else {
		o.params = NewLinearModel(c, 0)
	}
	o.fitted = true
	return nil
}

func (o *OLSRegression) Predict(x mat.Matrix) ([]float64, error) {
	if !o.fitted {
		return nil, ErrNotFitted
	}
	return o.params.Predict(x)
}

func (o *OLSRegression) Score(x, y mat.Matrix) (float64, error) {
	if !o.fitted {
		return 0.0, ErrNotFitted
	}
	return o.params.Score(x, y)
}

func (o *OLSRegression) Intercept() float64 {
	if o.params == nil {
		return 0.0
	}
	return o.params.Intercept()
}

func (o *OLSRegression) Coef() []float64 {
	if o.params == nil {
		return nil
	}
	return o.params.Coef()
}

// withOnes prepends a constant 1.0 column to x
func withOnes(x mat.Matrix) mat.Matrix {
	m, n := x.Dims()
	out := mat.NewDense(m, n+1, nil)
	for i := 0; i < m; i++ {
		out.Set(i, 0, 1.0)
	}
	out.Slice(0, m, 1, n+1).(*mat.Dense).Copy(x)
	return out
}
