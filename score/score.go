// Package score computes accuracy metrics between predicted and actual values
package score

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrResLenMismatch = errors.New("predicted and actual have different lengths")
	ErrNoValues       = errors.New("no comparable values")
)

// Scores tracks the fit scores
type Scores struct {
	R2           float64 `json:"r_squared"`
	MSE          float64 `json:"mean_squared_error"`
	MaxAbsError  float64 `json:"max_absolute_error"`
	MeanAbsError float64 `json:"mean_absolute_error"`
}

// NewScores calculates the fit scores given the predicted and actual input slice values
func NewScores(predicted, actual []float64) (*Scores, error) {
	rs, err := RSquared(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute r-squared, %w", err)
	}
	mse, err := MSE(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean squared error, %w", err)
	}
	maxAbs, err := MaxAbsError(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute max absolute error, %w", err)
	}
	meanAbs, err := MeanAbsError(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean absolute error, %w", err)
	}

	return &Scores{
		R2:           rs,
		MSE:          mse,
		MaxAbsError:  maxAbs,
		MeanAbsError: meanAbs,
	}, nil
}

// AbsDiff returns |a[i] - b[i]| for every index. NaN inputs produce NaN at that index.
func AbsDiff(a, b []float64) ([]float64, error) {
	if len(a) != len(b) {
		return nil, fmt.Errorf("expected %d, but got %d, %w", len(b), len(a), ErrResLenMismatch)
	}
	out := make([]float64, len(a))
	floats.SubTo(out, a, b)
	for i, v := range out {
		out[i] = math.Abs(v)
	}
	return out, nil
}

// MSE computes the mean squared error, mean((y-yhat)^2), skipping NaN pairs. A score of 0
// means a perfect match with no errors.
func MSE(predicted, actual []float64) (float64, error) {
	diff, err := comparableAbsDiff(predicted, actual)
	if err != nil {
		return 0, err
	}
	return floats.Dot(diff, diff) / float64(len(diff)), nil
}

// MaxAbsError returns the largest absolute difference, skipping NaN pairs
func MaxAbsError(predicted, actual []float64) (float64, error) {
	diff, err := comparableAbsDiff(predicted, actual)
	if err != nil {
		return 0, err
	}
	return floats.Max(diff), nil
}

// MeanAbsError returns the mean absolute difference, skipping NaN pairs
func MeanAbsError(predicted, actual []float64) (float64, error) {
	diff, err := comparableAbsDiff(predicted, actual)
	if err != nil {
		return 0, err
	}
	return stat.Mean(diff, nil), nil
}

// RSquared computes the r squared value between the predicted and actual where 1.0 means perfect
// fit and 0 represents no relationship
func RSquared(predicted, actual []float64) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}

	predictCopy := make([]float64, 0, len(predicted))
	actualCopy := make([]float64, 0, len(actual))
	for i := 0; i < len(predicted); i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		predictCopy = append(predictCopy, predicted[i])
		actualCopy = append(actualCopy, actual[i])
	}
	if len(actualCopy) == 0 {
		return 0, ErrNoValues
	}
	r2 := stat.RSquaredFrom(predictCopy, actualCopy, nil)
	if math.IsNaN(r2) {
		return 1.0, nil
	}
	return r2, nil
}

func comparableAbsDiff(predicted, actual []float64) ([]float64, error) {
	if len(predicted) != len(actual) {
		return nil, fmt.Errorf("expected %d, but got %d, %w", len(actual), len(predicted), ErrResLenMismatch)
	}
	diff := make([]float64, 0, len(actual))
	for i := 0; i < len(actual); i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		diff = append(diff, math.Abs(actual[i]-predicted[i]))
	}
	if len(diff) == 0 {
		return nil, ErrNoValues
	}
	return diff, nil
}
