// Package quantreg trains a linear regression model, compresses its coefficients and
// intercept into uint8 with range metadata, and verifies the reconstructed parameters
// against the original model.
package quantreg

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/aouyang1/go-quantreg/artifact"
	"github.com/aouyang1/go-quantreg/dataset"
	"github.com/aouyang1/go-quantreg/models"
	"github.com/aouyang1/go-quantreg/score"
	"gonum.org/v1/gonum/floats"
)

var (
	ErrNoStore         = errors.New("no artifact store")
	ErrNoDataset       = errors.New("no dataset")
	ErrCoefLenMismatch = errors.New("reconstructed coefficients do not match the original shape")
	ErrUnreadableCSV   = errors.New("unable to open dataset file")
)

// Pipeline runs the offline train, quantize and verify steps against an artifact store
type Pipeline struct {
	opt   *Options
	store artifact.Store
}

// TrainResult holds the fitted model and its held out scores
type TrainResult struct {
	Model  models.Model
	Scores *score.Scores
	SizeKB float64
}

// New creates a pipeline. If no options are provided a default is used.
func New(opt *Options, store artifact.Store) (*Pipeline, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid options, %w", err)
	}
	if store == nil {
		return nil, ErrNoStore
	}
	return &Pipeline{
		opt:   opt,
		store: store,
	}, nil
}

// Options returns the validated options of the pipeline
func (p *Pipeline) Options() *Options {
	return p.opt
}

// LoadDataset reads the configured csv file, or simulates data when no path is set, and
// splits it into train and test sets
func (p *Pipeline) LoadDataset() (*dataset.Dataset, error) {
	if p.opt.DataPath == "" {
		x, y, err := dataset.Simulate(p.opt.SimulateOptions)
		if err != nil {
			return nil, err
		}
		ds, err := dataset.Split(x, y, p.opt.TestFraction, p.opt.Seed)
		if err != nil {
			return nil, fmt.Errorf("unable to split simulated dataset, %w", err)
		}
		ds.Features = dataset.FeatureNames(ds.NumFeatures())
		slog.Info("simulated dataset", "train", len(ds.YTrain), "test", len(ds.YTest), "features", ds.NumFeatures())
		return ds, nil
	}

	file, err := os.Open(p.opt.DataPath)
	if err != nil {
		return nil, fmt.Errorf("%s, %v, %w", p.opt.DataPath, err, ErrUnreadableCSV)
	}
	defer file.Close()

	x, y, features, err := dataset.LoadCSV(file, p.opt.Target)
	if err != nil {
		return nil, fmt.Errorf("unable to load %s, %w", p.opt.DataPath, err)
	}
	ds, err := dataset.Split(x, y, p.opt.TestFraction, p.opt.Seed)
	if err != nil {
		return nil, fmt.Errorf("unable to split %s, %w", p.opt.DataPath, err)
	}
	ds.Features = features
	slog.Info("loaded dataset", "path", p.opt.DataPath, "train", len(ds.YTrain), "test", len(ds.YTest), "features", ds.NumFeatures())
	return ds, nil
}

// Train fits an ordinary least squares model on the training split, scores it on the test
// split and persists its raw parameters
func (p *Pipeline) Train(ds *dataset.Dataset) (*TrainResult, error) {
	if ds == nil {
		return nil, ErrNoDataset
	}

	model, err := models.NewOLSRegression(p.opt.OLSOptions)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize model, %w", err)
	}
	if err := model.Fit(ds.XTrain, ds.YTrainMatrix()); err != nil {
		return nil, fmt.Errorf("unable to fit model, %w", err)
	}

	predicted, err := model.Predict(ds.XTest)
	if err != nil {
		return nil, fmt.Errorf("unable to predict test split, %w", err)
	}
	scores, err := score.NewScores(predicted, ds.YTest)
	if err != nil {
		return nil, fmt.Errorf("unable to score model, %w", err)
	}

	raw := &artifact.UnquantizedParams{
		Coef:      model.Coef(),
		Intercept: model.Intercept(),
	}
	if err := artifact.Save(p.store, artifact.NameUnquantized, raw); err != nil {
		return nil, fmt.Errorf("unable to save raw parameters, %w", err)
	}
	sizeKB, err := artifact.SizeKB(p.store, artifact.NameUnquantized)
	if err != nil {
		return nil, err
	}

	slog.Info("trained model", "r2", scores.R2, "mse", scores.MSE, "size_kb", sizeKB)
	return &TrainResult{
		Model:  model,
		Scores: scores,
		SizeKB: sizeKB,
	}, nil
}

// Quantize loads the persisted raw parameters, quantizes and persists them, then reloads and
// dequantizes the stored artifact and evaluates the reconstructed model on the test split.
// The reference model is used for the original predictions; when nil, predictions from the
// raw parameters are used instead.
func (p *Pipeline) Quantize(ds *dataset.Dataset, reference models.Model) (*Report, error) {
	if ds == nil {
		return nil, ErrNoDataset
	}

	raw, err := artifact.LoadUnquantized(p.store, artifact.NameUnquantized)
	if err != nil {
		return nil, fmt.Errorf("unable to load raw parameters, %w", err)
	}

	qp, err := artifact.NewQuantizedParams(raw.Coef, raw.Intercept, p.opt.Mode)
	if err != nil {
		return nil, err
	}
	if err := artifact.Save(p.store, artifact.NameQuantized, qp); err != nil {
		return nil, fmt.Errorf("unable to save quantized parameters, %w", err)
	}
	slog.Info("saved quantized parameters", "name", artifact.NameQuantized, "mode", p.opt.Mode)

	stored, err := artifact.LoadQuantized(p.store, artifact.NameQuantized)
	if err != nil {
		return nil, fmt.Errorf("unable to reload quantized parameters, %w", err)
	}
	dequant, err := stored.Dequantize()
	if err != nil {
		return nil, err
	}
	if len(dequant.Coef) != len(raw.Coef) {
		return nil, fmt.Errorf("got %d coefficients, expected %d, %w", len(dequant.Coef), len(raw.Coef), ErrCoefLenMismatch)
	}

	r := &Report{
		Mode:             p.opt.Mode,
		Features:         ds.Features,
		Coef:             raw.Coef,
		Intercept:        raw.Intercept,
		QuantCoef:        stored.QuantCoef,
		CoefMetadata:     stored.CoefMetadata,
		DequantCoef:      dequant.Coef,
		DequantIntercept: dequant.Intercept,
		Actual:           ds.YTest,
	}

	coefErr, err := score.AbsDiff(raw.Coef, dequant.Coef)
	if err != nil {
		return nil, err
	}
	r.MaxCoefError = floats.Max(coefErr)
	r.InterceptError = math.Abs(raw.Intercept - dequant.Intercept)

	manual := models.NewLinearModel(raw.Coef, raw.Intercept)
	if r.PredManual, err = manual.Predict(ds.XTest); err != nil {
		return nil, fmt.Errorf("unable to predict with raw parameters, %w", err)
	}
	r.PredOriginal = r.PredManual
	if reference != nil {
		if r.PredOriginal, err = reference.Predict(ds.XTest); err != nil {
			return nil, fmt.Errorf("unable to predict with reference model, %w", err)
		}
	}

	reconstructed := models.NewLinearModel(dequant.Coef, dequant.Intercept)
	if r.PredDequant, err = reconstructed.Predict(ds.XTest); err != nil {
		return nil, fmt.Errorf("unable to predict with dequantized parameters, %w", err)
	}

	if r.OriginalScores, err = score.NewScores(r.PredManual, ds.YTest); err != nil {
		return nil, fmt.Errorf("unable to score raw parameters, %w", err)
	}
	if r.DequantScores, err = score.NewScores(r.PredDequant, ds.YTest); err != nil {
		return nil, fmt.Errorf("unable to score dequantized parameters, %w", err)
	}

	if r.UnquantizedKB, err = artifact.SizeKB(p.store, artifact.NameUnquantized); err != nil {
		return nil, err
	}
	if r.QuantizedKB, err = artifact.SizeKB(p.store, artifact.NameQuantized); err != nil {
		return nil, err
	}
	if r.CompressionRatio() < 1 {
		slog.Warn("quantized artifact is larger than the raw parameters",
			"mode", p.opt.Mode, "raw_kb", r.UnquantizedKB, "quantized_kb", r.QuantizedKB)
	}

	slog.Info("verified quantized model",
		"max_coef_error", r.MaxCoefError,
		"intercept_error", r.InterceptError,
		"r2", r.DequantScores.R2,
		"mse", r.DequantScores.MSE,
	)
	return r, nil
}

// Run loads the dataset, trains and then quantizes the model
func (p *Pipeline) Run() (*TrainResult, *Report, error) {
	ds, err := p.LoadDataset()
	if err != nil {
		return nil, nil, err
	}
	res, err := p.Train(ds)
	if err != nil {
		return nil, nil, err
	}
	r, err := p.Quantize(ds, res.Model)
	if err != nil {
		return nil, nil, err
	}
	return res, r, nil
}
