package quant

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantize(t *testing.T) {
	testData := map[string]struct {
		values   []float64
		expected []uint8
		meta     RangeMetadata[float64]
		err      error
	}{
		"nil": {
			err: ErrInvalidInput,
		},
		"empty": {
			values: []float64{},
			err:    ErrInvalidInput,
		},
		"nan": {
			values: []float64{1.0, math.NaN(), 2.0},
			err:    ErrInvalidInput,
		},
		"positive inf": {
			values: []float64{1.0, math.Inf(1)},
			err:    ErrInvalidInput,
		},
		"negative inf": {
			values: []float64{math.Inf(-1), 1.0},
			err:    ErrInvalidInput,
		},
		"overflowed range": {
			values: []float64{-1e308, 0, 1e308},
			err:    ErrInvalidInput,
		},
		"subnormal range": {
			values: []float64{0, 5e-324},
			err:    ErrInvalidInput,
		},
		"single": {
			values:   []float64{0.25},
			expected: []uint8{0},
			meta:     RangeMetadata[float64]{Min: 0.25, Max: 0.25, Scale: 0},
		},
		"constant": {
			values:   []float64{-3.0, -3.0, -3.0, -3.0},
			expected: []uint8{0, 0, 0, 0},
			meta:     RangeMetadata[float64]{Min: -3.0, Max: -3.0, Scale: 0},
		},
		"unit range": {
			values:   []float64{0.0, 1.0, 0.5},
			expected: []uint8{0, 255, 128},
			meta:     RangeMetadata[float64]{Min: 0.0, Max: 1.0, Scale: 255.0},
		},
		"mixed sign": {
			values:   []float64{1.0, -2.0, 3.5},
			expected: []uint8{139, 0, 255},
			meta:     RangeMetadata[float64]{Min: -2.0, Max: 3.5, Scale: 255.0 / 5.5},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			q, meta, err := Quantize(td.values)
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				assert.Nil(t, q)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.expected, q)
			assert.Equal(t, td.meta.Min, meta.Min)
			assert.Equal(t, td.meta.Max, meta.Max)
			assert.InDelta(t, td.meta.Scale, meta.Scale, 1e-12)
		})
	}
}

func TestQuantizeDoesNotModifyInput(t *testing.T) {
	values := []float64{4.0, -1.0, 2.5}
	_, _, err := Quantize(values)
	require.Nil(t, err)
	assert.Equal(t, []float64{4.0, -1.0, 2.5}, values)
}

func TestQuantizeRoundTrip(t *testing.T) {
	r := rand.New(rand.NewPCG(42, 7))
	for trial := 0; trial < 200; trial++ {
		n := 2 + r.IntN(64)
		values := make([]float64, n)
		spread := math.Pow(10, float64(r.IntN(8)-3))
		for i := range values {
			values[i] = (r.Float64()*2 - 1) * spread
		}

		q, meta, err := Quantize(values)
		require.Nil(t, err)
		require.Len(t, q, n)

		bound := (meta.Max - meta.Min) / Levels
		assert.InDelta(t, bound, meta.BinWidth(), 1e-15)

		out := Dequantize(q, meta)
		require.Len(t, out, n)
		for i := range values {
			assert.LessOrEqual(t, math.Abs(out[i]-values[i]), bound, "trial %d index %d", trial, i)
		}
	}
}

func TestQuantizeExampleReconstruction(t *testing.T) {
	coef := []float64{1.0, -2.0, 3.5}
	q, meta, err := Quantize(coef)
	require.Nil(t, err)

	assert.InDelta(t, 46.3636, meta.Scale, 1e-4)
	assert.InDeltaSlice(t, coef, Dequantize(q, meta), 5.5/255)
}

func TestDequantizeDegenerate(t *testing.T) {
	meta := RangeMetadata[float64]{Min: 7.125, Max: 7.125}
	require.True(t, meta.Degenerate())
	assert.Equal(t, 0.0, meta.BinWidth())

	// payload is ignored for a constant range, whatever the bytes hold
	out := Dequantize([]uint8{0, 17, 255}, meta)
	assert.Equal(t, []float64{7.125, 7.125, 7.125}, out)
}

func TestQuantizeFloat32(t *testing.T) {
	values := []float32{-1.5, 0.0, 2.5, 1.0}
	q, meta, err := Quantize(values)
	require.Nil(t, err)
	assert.Equal(t, float32(-1.5), meta.Min)
	assert.Equal(t, float32(2.5), meta.Max)

	out := Dequantize(q, meta)
	for i := range values {
		assert.InDelta(t, values[i], out[i], float64(meta.BinWidth())+1e-6)
	}
}

func TestQuantizeFloat32ScaleOverflow(t *testing.T) {
	testData := map[string][]float32{
		"tiny range":          {0, 1e-37},
		"tiny negative range": {-1e-37, -2e-38},
	}

	for name, values := range testData {
		t.Run(name, func(t *testing.T) {
			q, _, err := Quantize(values)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Nil(t, q)
		})
	}
}

func TestQuantizeWideFiniteRange(t *testing.T) {
	values := []float64{-1e307, 0, 1e307}
	q, meta, err := Quantize(values)
	require.Nil(t, err)
	assert.False(t, meta.Degenerate())

	out := Dequantize(q, meta)
	for i := range values {
		assert.LessOrEqual(t, math.Abs(out[i]-values[i]), meta.BinWidth())
	}
}

func TestQuantizeScalar(t *testing.T) {
	testData := map[string]float64{
		"zero":     0.0,
		"positive": 0.25,
		"negative": -36.94192020718429,
		"tiny":     math.SmallestNonzeroFloat64,
		"huge":     math.MaxFloat64,
	}

	for name, v := range testData {
		t.Run(name, func(t *testing.T) {
			q, meta, err := QuantizeScalar(v)
			require.Nil(t, err)
			assert.Equal(t, uint8(0), q)
			assert.True(t, meta.Degenerate())
			assert.Equal(t, v, DequantizeScalar(q, meta))
		})
	}

	_, _, err := QuantizeScalar(math.NaN())
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func BenchmarkQuantize(b *testing.B) {
	r := rand.New(rand.NewPCG(1, 2))
	values := make([]float64, 4096)
	for i := range values {
		values[i] = r.NormFloat64()
	}

	b.ResetTimer()
	for b.Loop() {
		q, meta, err := Quantize(values)
		if err != nil {
			b.Fatal(err)
		}
		Dequantize(q, meta)
	}
}
