package artifact

import (
	"errors"
	"fmt"

	"github.com/aouyang1/go-quantreg/quant"
	"github.com/goccy/go-json"
)

const (
	NameUnquantized = "unquant_params.json"
	NameQuantized   = "quant_params.json"
)

var ErrNoCoefficients = errors.New("no coefficients")

// UnquantizedParams are the raw fitted parameters of a linear model
type UnquantizedParams struct {
	Coef      []float64 `json:"coef"`
	Intercept float64   `json:"intercept"`
}

// QuantizedParams are the uint8 encoded parameters of a linear model along with the range
// metadata needed to reconstruct them. In individual mode CoefMetadata holds one record per
// coefficient, in shared mode a single record for the whole vector.
type QuantizedParams struct {
	Mode           quant.Mode                     `json:"mode"`
	QuantCoef      []uint8                        `json:"quant_coef"`
	CoefMetadata   []quant.RangeMetadata[float64] `json:"coef_metadata"`
	QuantIntercept uint8                          `json:"quant_intercept"`
	InterceptMin   float64                        `json:"intercept_min"`
	InterceptMax   float64                        `json:"intercept_max"`
	InterceptScale float64                        `json:"intercept_scale"`
}

// NewQuantizedParams quantizes the coefficients with the given mode and the intercept as a
// single value range
func NewQuantizedParams(coef []float64, intercept float64, mode quant.Mode) (*QuantizedParams, error) {
	if len(coef) == 0 {
		return nil, ErrNoCoefficients
	}

	p := &QuantizedParams{Mode: mode}
	switch mode {
	case quant.ModeIndividual:
		q, meta, err := quant.QuantizeIndividual(coef)
		if err != nil {
			return nil, fmt.Errorf("unable to quantize coefficients, %w", err)
		}
		p.QuantCoef, p.CoefMetadata = q, meta
	case quant.ModeShared:
		q, meta, err := quant.Quantize(coef)
		if err != nil {
			return nil, fmt.Errorf("unable to quantize coefficients, %w", err)
		}
		p.QuantCoef, p.CoefMetadata = q, []quant.RangeMetadata[float64]{meta}
	default:
		return nil, fmt.Errorf("%q, %w", mode, quant.ErrUnknownMode)
	}

	qi, meta, err := quant.QuantizeScalar(intercept)
	if err != nil {
		return nil, fmt.Errorf("unable to quantize intercept, %w", err)
	}
	p.QuantIntercept = qi
	p.InterceptMin = meta.Min
	p.InterceptMax = meta.Max
	p.InterceptScale = meta.Scale
	return p, nil
}

// InterceptMetadata returns the range record of the intercept
func (p *QuantizedParams) InterceptMetadata() quant.RangeMetadata[float64] {
	return quant.RangeMetadata[float64]{
		Min:   p.InterceptMin,
		Max:   p.InterceptMax,
		Scale: p.InterceptScale,
	}
}

// Dequantize reconstructs the coefficients and intercept
func (p *QuantizedParams) Dequantize() (*UnquantizedParams, error) {
	var coef []float64
	switch p.Mode {
	case quant.ModeIndividual:
		var err error
		coef, err = quant.DequantizeIndividual(p.QuantCoef, p.CoefMetadata)
		if err != nil {
			return nil, fmt.Errorf("unable to dequantize coefficients, %w", err)
		}
	case quant.ModeShared:
		if len(p.CoefMetadata) != 1 {
			return nil, fmt.Errorf("shared mode has %d metadata records, %w", len(p.CoefMetadata), quant.ErrShapeMismatch)
		}
		coef = quant.Dequantize(p.QuantCoef, p.CoefMetadata[0])
	default:
		return nil, fmt.Errorf("%q, %w", p.Mode, quant.ErrUnknownMode)
	}

	return &UnquantizedParams{
		Coef:      coef,
		Intercept: quant.DequantizeScalar(p.QuantIntercept, p.InterceptMetadata()),
	}, nil
}

// Save encodes v as json and writes it to the store under name
func Save(store Store, name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("unable to encode %s, %w", name, err)
	}
	return store.Put(name, data)
}

// LoadUnquantized reads raw parameters saved under name
func LoadUnquantized(store Store, name string) (*UnquantizedParams, error) {
	var p UnquantizedParams
	if err := load(store, name, &p); err != nil {
		return nil, err
	}
	if len(p.Coef) == 0 {
		return nil, fmt.Errorf("%s has %w, %w, %w", name, ErrNoCoefficients, ErrCorruptArtifact, ErrArtifactIO)
	}
	return &p, nil
}

// LoadQuantized reads quantized parameters saved under name
func LoadQuantized(store Store, name string) (*QuantizedParams, error) {
	var p QuantizedParams
	if err := load(store, name, &p); err != nil {
		return nil, err
	}
	if _, err := quant.ParseMode(string(p.Mode)); err != nil {
		return nil, fmt.Errorf("%s, %v, %w, %w", name, err, ErrCorruptArtifact, ErrArtifactIO)
	}
	return &p, nil
}

// SizeKB returns the stored size of an artifact in kilobytes
func SizeKB(store Store, name string) (float64, error) {
	size, err := store.Size(name)
	if err != nil {
		return 0, err
	}
	return float64(size) / 1024, nil
}

func load(store Store, name string, v any) error {
	data, err := store.Get(name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unable to decode %s, %v, %w, %w", name, err, ErrCorruptArtifact, ErrArtifactIO)
	}
	return nil
}
