package quantreg

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aouyang1/go-quantreg/artifact"
	"github.com/aouyang1/go-quantreg/dataset"
	"github.com/aouyang1/go-quantreg/models"
	"github.com/aouyang1/go-quantreg/quant"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions(mode quant.Mode) *Options {
	opt := NewDefaultOptions()
	opt.Mode = mode
	opt.SimulateOptions = &dataset.SimulateOptions{
		Samples:   200,
		Coef:      []float64{1.0, -2.0, 3.5},
		Intercept: 0.25,
		Seed:      3,
	}
	return opt
}

func TestNew(t *testing.T) {
	_, err := New(nil, nil)
	assert.ErrorIs(t, err, ErrNoStore)

	_, err = New(&Options{TestFraction: 0.2, Mode: "log", ArtifactDir: "out"}, artifact.NewMemStore())
	assert.ErrorIs(t, err, quant.ErrUnknownMode)

	p, err := New(nil, artifact.NewMemStore())
	require.Nil(t, err)
	assert.Equal(t, NewDefaultOptions(), p.Options())
}

func TestPipelineRun(t *testing.T) {
	testData := map[string]struct {
		mode quant.Mode
	}{
		"individual": {quant.ModeIndividual},
		"shared":     {quant.ModeShared},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			store := artifact.NewMemStore()
			p, err := New(testOptions(td.mode), store)
			require.Nil(t, err)

			res, r, err := p.Run()
			require.Nil(t, err)

			// noiseless data is recovered exactly by least squares
			assert.InDeltaSlice(t, []float64{1.0, -2.0, 3.5}, res.Model.Coef(), 1e-9)
			assert.InDelta(t, 0.25, res.Model.Intercept(), 1e-9)
			assert.InDelta(t, 1.0, res.Scores.R2, 1e-9)
			assert.Greater(t, res.SizeKB, 0.0)

			assert.Equal(t, td.mode, r.Mode)
			assert.Equal(t, []string{"x0", "x1", "x2"}, r.Features)
			assert.Len(t, r.Actual, 40)
			assert.Len(t, r.PredDequant, 40)
			assert.InDeltaSlice(t, r.PredOriginal, r.PredManual, 1e-12)

			// the intercept is always stored exactly
			assert.Equal(t, r.Intercept, r.DequantIntercept)
			assert.Equal(t, 0.0, r.InterceptError)

			switch td.mode {
			case quant.ModeIndividual:
				assert.Equal(t, r.Coef, r.DequantCoef)
				assert.Equal(t, 0.0, r.MaxCoefError)
				assert.Equal(t, r.PredManual, r.PredDequant)
				assert.Equal(t, make([]uint8, 3), r.QuantCoef)
				assert.Len(t, r.CoefMetadata, 3)
				assert.Less(t, r.CompressionRatio(), 1.0)
			case quant.ModeShared:
				require.Len(t, r.CoefMetadata, 1)
				assert.Greater(t, r.MaxCoefError, 0.0)
				assert.LessOrEqual(t, r.MaxCoefError, r.CoefMetadata[0].BinWidth())
				assert.InDelta(t, 5.5/255, r.CoefMetadata[0].BinWidth(), 1e-9)
				assert.Greater(t, r.DequantScores.R2, 0.99)
			}

			stored, err := artifact.LoadQuantized(store, artifact.NameQuantized)
			require.Nil(t, err)
			assert.Equal(t, td.mode, stored.Mode)
		})
	}
}

func TestPipelineQuantizeWithoutTraining(t *testing.T) {
	p, err := New(testOptions(quant.ModeIndividual), artifact.NewMemStore())
	require.Nil(t, err)

	ds, err := p.LoadDataset()
	require.Nil(t, err)

	_, err = p.Quantize(ds, nil)
	assert.ErrorIs(t, err, artifact.ErrArtifactNotFound)

	_, err = p.Quantize(nil, nil)
	assert.ErrorIs(t, err, ErrNoDataset)

	_, err = p.Train(nil)
	assert.ErrorIs(t, err, ErrNoDataset)
}

func TestPipelineShapeMismatch(t *testing.T) {
	store := artifact.NewMemStore()
	p, err := New(testOptions(quant.ModeIndividual), store)
	require.Nil(t, err)

	ds, err := p.LoadDataset()
	require.Nil(t, err)

	raw := &artifact.UnquantizedParams{Coef: []float64{1, 2}, Intercept: 0.5}
	require.Nil(t, artifact.Save(store, artifact.NameUnquantized, raw))

	_, err = p.Quantize(ds, nil)
	assert.ErrorIs(t, err, models.ErrFeatureLenMismatch)
}

func TestPipelineFileStoreCSV(t *testing.T) {
	dir := t.TempDir()

	var sb strings.Builder
	sb.WriteString("a,b,target\n")
	for i := 0; i < 50; i++ {
		a := float64(i%7) - 3
		b := float64(i%5) * 0.5
		fmt.Fprintf(&sb, "%g,%g,%g\n", a, b, 2*a-b+1)
	}
	csvPath := filepath.Join(dir, "data.csv")
	require.Nil(t, os.WriteFile(csvPath, []byte(sb.String()), 0o644))

	opt := NewDefaultOptions()
	opt.DataPath = csvPath
	opt.Target = "target"
	opt.ArtifactDir = filepath.Join(dir, "models")

	store, err := artifact.NewFileStore(opt.ArtifactDir)
	require.Nil(t, err)
	p, err := New(opt, store)
	require.Nil(t, err)

	_, r, err := p.Run()
	require.Nil(t, err)
	assert.Equal(t, []string{"a", "b"}, r.Features)
	assert.InDeltaSlice(t, []float64{2, -1}, r.DequantCoef, 1e-9)
	assert.InDelta(t, 1.0, r.DequantIntercept, 1e-9)

	_, err = os.Stat(filepath.Join(opt.ArtifactDir, artifact.NameQuantized))
	assert.Nil(t, err)

	opt.DataPath = filepath.Join(dir, "missing.csv")
	_, err = p.LoadDataset()
	assert.ErrorIs(t, err, ErrUnreadableCSV)
}

func TestPipelineCollinearCSV(t *testing.T) {
	dir := t.TempDir()

	var sb strings.Builder
	sb.WriteString("a,a_copy,target\n")
	for i := 0; i < 30; i++ {
		a := float64(i%7) - 3
		fmt.Fprintf(&sb, "%g,%g,%g\n", a, a, 2*a+float64(i%3))
	}
	csvPath := filepath.Join(dir, "data.csv")
	require.Nil(t, os.WriteFile(csvPath, []byte(sb.String()), 0o644))

	opt := NewDefaultOptions()
	opt.DataPath = csvPath
	opt.Target = "target"

	store := artifact.NewMemStore()
	p, err := New(opt, store)
	require.Nil(t, err)

	_, _, err = p.Run()
	assert.ErrorIs(t, err, models.ErrSingular)

	_, err = store.Get(artifact.NameUnquantized)
	assert.ErrorIs(t, err, artifact.ErrArtifactNotFound)
}
