// Package mat holds small helpers for building and slicing gonum dense matrices
package mat

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrEmptyArray     = errors.New("no rows or columns in array")
	ErrColMismatch    = errors.New("column size mismatch")
	ErrRowOutOfBounds = errors.New("row is out of bounds")
)

// NewDenseFromArray builds a row major dense matrix from a slice of rows. Every row must
// have the same, non-zero number of columns.
func NewDenseFromArray(x [][]float64) (*mat.Dense, error) {
	if len(x) == 0 || len(x[0]) == 0 {
		return nil, ErrEmptyArray
	}
	n := len(x[0])

	data := make([]float64, 0, len(x)*n)
	for i, row := range x {
		if len(row) != n {
			return nil, fmt.Errorf("row %d has %d columns, expected %d, %w", i, len(row), n, ErrColMismatch)
		}
		data = append(data, row...)
	}
	return mat.NewDense(len(x), n, data), nil
}

// SelectRows copies the rows of x at the given indices, in order, into a new matrix
func SelectRows(x mat.Matrix, idx []int) (*mat.Dense, error) {
	if len(idx) == 0 {
		return nil, ErrEmptyArray
	}
	m, n := x.Dims()

	out := mat.NewDense(len(idx), n, nil)
	row := make([]float64, n)
	for i, r := range idx {
		if r < 0 || r >= m {
			return nil, fmt.Errorf("row %d with %d rows, %w", r, m, ErrRowOutOfBounds)
		}
		out.SetRow(i, mat.Row(row, r, x))
	}
	return out, nil
}
