// Package dataset produces the train and test splits a regression model is fit and
// evaluated against
package dataset

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	mat_ "github.com/aouyang1/go-quantreg/mat"
	"gonum.org/v1/gonum/mat"
)

const (
	DefaultTestFraction = 0.2
	DefaultSeed         = 42
)

var (
	ErrInvalidTestFraction = errors.New("test fraction must be between 0 and 1 exclusive")
	ErrInsufficientSamples = errors.New("insufficient samples for a train and test split")
	ErrTargetLenMismatch   = errors.New("target length does not match feature rows")
)

// Dataset holds a train and test split of features and targets. Row i of a feature matrix
// corresponds to index i of its target slice.
type Dataset struct {
	Features []string

	XTrain *mat.Dense
	YTrain []float64

	XTest *mat.Dense
	YTest []float64
}

// NumFeatures returns the number of feature columns
func (d *Dataset) NumFeatures() int {
	_, n := d.XTrain.Dims()
	return n
}

// YTrainMatrix returns the training targets as a single column matrix
func (d *Dataset) YTrainMatrix() *mat.Dense {
	return mat.NewDense(len(d.YTrain), 1, d.YTrain)
}

// YTestMatrix returns the test targets as a single column matrix
func (d *Dataset) YTestMatrix() *mat.Dense {
	return mat.NewDense(len(d.YTest), 1, d.YTest)
}

// Split shuffles the rows of x and y with the given seed and holds out testFraction of them,
// rounded up, as the test set.
func Split(x mat.Matrix, y []float64, testFraction float64, seed uint64) (*Dataset, error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, fmt.Errorf("got %.3f, %w", testFraction, ErrInvalidTestFraction)
	}
	m, _ := x.Dims()
	if len(y) != m {
		return nil, fmt.Errorf("features have %d rows and target has %d values, %w", m, len(y), ErrTargetLenMismatch)
	}

	nTest := int(math.Ceil(float64(m) * testFraction))
	nTrain := m - nTest
	if nTest < 1 || nTrain < 1 {
		return nil, fmt.Errorf("%d samples with test fraction %.3f, %w", m, testFraction, ErrInsufficientSamples)
	}

	r := rand.New(rand.NewPCG(seed, seed))
	perm := r.Perm(m)
	testIdx, trainIdx := perm[:nTest], perm[nTest:]

	xTrain, err := mat_.SelectRows(x, trainIdx)
	if err != nil {
		return nil, fmt.Errorf("unable to select training rows, %w", err)
	}
	xTest, err := mat_.SelectRows(x, testIdx)
	if err != nil {
		return nil, fmt.Errorf("unable to select test rows, %w", err)
	}

	return &Dataset{
		XTrain: xTrain,
		YTrain: selectValues(y, trainIdx),
		XTest:  xTest,
		YTest:  selectValues(y, testIdx),
	}, nil
}

func selectValues(y []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = y[j]
	}
	return out
}
