// Package quant maps floating point parameters into the uint8 domain with an affine
// min-max transform and reconstructs them from the stored range metadata.
package quant

import (
	"errors"
	"fmt"
	"math"
)

// Levels is the top of the quantized range. Quantized values lie in [0, Levels].
const Levels = 255.0

var (
	ErrInvalidInput  = errors.New("invalid quantization input")
	ErrShapeMismatch = errors.New("metadata length does not match quantized values")
)

// Float is the set of floating point types that can be quantized
type Float interface {
	~float32 | ~float64
}

// RangeMetadata describes one affine transform. A Scale of 0 is the sentinel for a
// constant input, in which case every value reconstructs to Min.
type RangeMetadata[T Float] struct {
	Min   T `json:"min" yaml:"min"`
	Max   T `json:"max" yaml:"max"`
	Scale T `json:"scale" yaml:"scale"`
}

// Degenerate reports whether the metadata was produced from a constant input
func (r RangeMetadata[T]) Degenerate() bool {
	return r.Scale == 0
}

// BinWidth is the width of one quantization bin and the maximum reconstruction error of
// any value quantized with this metadata. Degenerate ranges reconstruct exactly.
func (r RangeMetadata[T]) BinWidth() T {
	if r.Degenerate() {
		return 0
	}
	return (r.Max - r.Min) / Levels
}

func validate[T Float](values []T) error {
	if len(values) == 0 {
		return fmt.Errorf("no values to quantize, %w", ErrInvalidInput)
	}
	for i, v := range values {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("value at index %d is %v, %w", i, f, ErrInvalidInput)
		}
	}
	return nil
}

// Quantize maps values onto [0, 255] using a single range derived from the minimum and
// maximum of values. Scaled values are rounded half away from zero (math.Round). A constant
// input quantizes to all zeros with the sentinel scale 0. values is never modified.
//
// A range whose scale is not representable in T, because max-min overflows or is so small
// that 255/(max-min) overflows, is rejected with ErrInvalidInput.
func Quantize[T Float](values []T) ([]uint8, RangeMetadata[T], error) {
	if err := validate(values); err != nil {
		return nil, RangeMetadata[T]{}, err
	}

	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = min(minVal, v)
		maxVal = max(maxVal, v)
	}

	meta := RangeMetadata[T]{Min: minVal, Max: maxVal}
	q := make([]uint8, len(values))
	if maxVal == minVal {
		return q, meta, nil
	}

	scale := float64(T(Levels / (float64(maxVal) - float64(minVal))))
	if scale == 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
		return nil, RangeMetadata[T]{}, fmt.Errorf("range [%v, %v] has no finite scale, %w", minVal, maxVal, ErrInvalidInput)
	}
	meta.Scale = T(scale)
	for i, v := range values {
		scaled := (float64(v) - float64(minVal)) * scale
		q[i] = uint8(math.Round(math.Min(math.Max(scaled, 0), Levels)))
	}
	return q, meta, nil
}

// Dequantize reconstructs approximate values from q using meta. Every element lies within
// meta.BinWidth() of the value it was quantized from.
func Dequantize[T Float](q []uint8, meta RangeMetadata[T]) []T {
	out := make([]T, len(q))
	if meta.Degenerate() {
		for i := range out {
			out[i] = meta.Min
		}
		return out
	}
	for i, v := range q {
		out[i] = T(float64(v)/float64(meta.Scale) + float64(meta.Min))
	}
	return out
}

// QuantizeScalar quantizes a single value as a one element range. The range is always
// degenerate so the value is carried exactly in the returned metadata.
func QuantizeScalar[T Float](v T) (uint8, RangeMetadata[T], error) {
	q, meta, err := Quantize([]T{v})
	if err != nil {
		return 0, RangeMetadata[T]{}, err
	}
	return q[0], meta, nil
}

// DequantizeScalar is the inverse of QuantizeScalar
func DequantizeScalar[T Float](q uint8, meta RangeMetadata[T]) T {
	return Dequantize([]uint8{q}, meta)[0]
}
