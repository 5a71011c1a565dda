package quantreg

import (
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"

	"github.com/aouyang1/go-quantreg/quant"
	"github.com/aouyang1/go-quantreg/score"
)

// Report summarizes one quantization run: the original and reconstructed parameters, the
// reconstruction error, the test split predictions and scores, and the artifact sizes
type Report struct {
	Mode     quant.Mode
	Features []string

	Coef      []float64
	Intercept float64

	QuantCoef    []uint8
	CoefMetadata []quant.RangeMetadata[float64]

	DequantCoef      []float64
	DequantIntercept float64

	MaxCoefError   float64
	InterceptError float64

	Actual       []float64
	PredOriginal []float64
	PredManual   []float64
	PredDequant  []float64

	OriginalScores *score.Scores
	DequantScores  *score.Scores

	UnquantizedKB float64
	QuantizedKB   float64
}

// CompressionRatio is the raw artifact size over the quantized artifact size. Values below
// 1.0 mean quantization grew the artifact, which is always the case in individual mode.
func (r *Report) CompressionRatio() float64 {
	if r.QuantizedKB == 0 {
		return 0
	}
	return r.UnquantizedKB / r.QuantizedKB
}

// TablePrint writes a human readable summary, listing at most samples test predictions
func (r *Report) TablePrint(w io.Writer, prefix, indent string, samples int) error {
	if _, err := fmt.Fprintf(w, "%sQuantization (%s):\n", prefix, r.Mode); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sCoefficients: %d    Max Coefficient Error: %.8f    Intercept Error: %.8f\n",
		prefix, indentExpand(indent, 1), len(r.Coef), r.MaxCoefError, r.InterceptError); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sIntercept: %.6f    Dequantized: %.6f\n",
		prefix, indentExpand(indent, 1), r.Intercept, r.DequantIntercept); err != nil {
		return err
	}
	if err := r.coefTablePrint(w, prefix, indent, 1); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%sScores:\n", prefix); err != nil {
		return err
	}
	for _, s := range []struct {
		name   string
		scores *score.Scores
	}{
		{"Original", r.OriginalScores},
		{"Dequantized", r.DequantScores},
	} {
		if s.scores == nil {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s%s%s R2: %.4f    MSE: %.4f    Max Abs Error: %.4f    Mean Abs Error: %.4f\n",
			prefix, indentExpand(indent, 1), s.name,
			s.scores.R2, s.scores.MSE, s.scores.MaxAbsError, s.scores.MeanAbsError); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "%sArtifacts:\n", prefix); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s%sRaw: %.1f KB    Quantized: %.1f KB    Compression Ratio: %.3f\n",
		prefix, indentExpand(indent, 1), r.UnquantizedKB, r.QuantizedKB, r.CompressionRatio()); err != nil {
		return err
	}

	return r.predictionTablePrint(w, prefix, indent, samples)
}

func (r *Report) coefTablePrint(w io.Writer, prefix, indent string, indentGrowth int) error {
	if _, err := fmt.Fprintf(w, "%s%sCoefficients:\n", prefix, indentExpand(indent, indentGrowth)); err != nil {
		return err
	}
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%sFeature\tOriginal\tQuantized\tDequantized\tMin\tMax\tScale\t\n",
		prefix, indentExpand(indent, indentGrowth+1)); err != nil {
		return err
	}
	for i, c := range r.Coef {
		meta := r.metadataAt(i)
		if _, err := fmt.Fprintf(tbl, "%s%s%s\t%.6f\t%d\t%.6f\t%.6f\t%.6f\t%.3f\t\n",
			prefix, indentExpand(indent, indentGrowth+1),
			r.featureName(i), c, valueAt(r.QuantCoef, i), valueAt(r.DequantCoef, i),
			meta.Min, meta.Max, meta.Scale,
		); err != nil {
			return err
		}
	}
	return tbl.Flush()
}

func (r *Report) predictionTablePrint(w io.Writer, prefix, indent string, samples int) error {
	samples = min(samples, len(r.Actual), len(r.PredOriginal), len(r.PredManual), len(r.PredDequant))
	if samples <= 0 {
		return nil
	}
	if _, err := fmt.Fprintf(w, "%sPredictions (first %d samples):\n", prefix, samples); err != nil {
		return err
	}
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "%s%sActual\tOriginal\tManual\tDequantized\tOriginal vs Manual\tManual vs Dequantized\t\n",
		prefix, indentExpand(indent, 1)); err != nil {
		return err
	}
	for i := 0; i < samples; i++ {
		if _, err := fmt.Fprintf(tbl, "%s%s%.4f\t%.4f\t%.4f\t%.4f\t%.2e\t%.2e\t\n",
			prefix, indentExpand(indent, 1),
			r.Actual[i], r.PredOriginal[i], r.PredManual[i], r.PredDequant[i],
			math.Abs(r.PredOriginal[i]-r.PredManual[i]), math.Abs(r.PredManual[i]-r.PredDequant[i]),
		); err != nil {
			return err
		}
	}
	return tbl.Flush()
}

// metadataAt returns the range record applied to coefficient i
func (r *Report) metadataAt(i int) quant.RangeMetadata[float64] {
	switch {
	case len(r.CoefMetadata) == 1:
		return r.CoefMetadata[0]
	case i < len(r.CoefMetadata):
		return r.CoefMetadata[i]
	default:
		return quant.RangeMetadata[float64]{}
	}
}

func (r *Report) featureName(i int) string {
	if i < len(r.Features) {
		return r.Features[i]
	}
	return fmt.Sprintf("x%d", i)
}

func valueAt[T any](s []T, i int) T {
	var zero T
	if i < len(s) {
		return s[i]
	}
	return zero
}

func indentExpand(indent string, growth int) string {
	return strings.Repeat(indent, growth)
}
