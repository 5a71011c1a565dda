package quant

import "fmt"

// QuantizeIndividual quantizes every element of values as its own one element range,
// producing one metadata record per element.
//
// Each range has Min == Max, so every quantized byte is 0 and every scale is the sentinel.
// The values survive only through the Min/Max fields of their metadata. The payload carries
// no information and the encoding is larger than the raw floats; use Quantize for an actual
// reduction in size.
func QuantizeIndividual[T Float](values []T) ([]uint8, []RangeMetadata[T], error) {
	if err := validate(values); err != nil {
		return nil, nil, err
	}

	q := make([]uint8, len(values))
	meta := make([]RangeMetadata[T], len(values))
	for i, v := range values {
		var err error
		q[i], meta[i], err = QuantizeScalar(v)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to quantize value at index %d, %w", i, err)
		}
	}
	return q, meta, nil
}

// DequantizeIndividual reconstructs values quantized by QuantizeIndividual, applying
// meta[i] to q[i].
func DequantizeIndividual[T Float](q []uint8, meta []RangeMetadata[T]) ([]T, error) {
	if len(q) != len(meta) {
		return nil, fmt.Errorf("got %d quantized values and %d metadata records, %w", len(q), len(meta), ErrShapeMismatch)
	}

	out := make([]T, len(q))
	for i := range q {
		out[i] = DequantizeScalar(q[i], meta[i])
	}
	return out, nil
}
