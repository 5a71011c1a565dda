package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	quantreg "github.com/aouyang1/go-quantreg"
	"github.com/aouyang1/go-quantreg/artifact"
	"github.com/aouyang1/go-quantreg/quant"
	"github.com/spf13/cobra"
)

// EnvConfig names the environment variable holding the default config path
const EnvConfig = "QUANTREG_CONFIG"

type flags struct {
	config    string
	artifacts string
	data      string
	target    string
	mode      string
	plot      string
	samples   int
	verbose   bool
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:           "quantreg",
		Short:         "Train a linear regression model and quantize its parameters to uint8",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging(cmd.ErrOrStderr(), f.verbose)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.config, "config", "c", os.Getenv(EnvConfig), "yaml options file")
	pf.StringVar(&f.artifacts, "artifacts", "", "directory for parameter artifacts")
	pf.StringVar(&f.data, "data", "", "csv dataset with a header row, simulated when empty")
	pf.StringVar(&f.target, "target", "", "target column of the csv dataset")
	pf.StringVar(&f.mode, "mode", "", "coefficient quantization mode, shared or individual")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newTrainCmd(f),
		newQuantizeCmd(f),
		newRunCmd(f),
	)
	return root
}

func newTrainCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Fit the model and save its raw parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := f.pipeline()
			if err != nil {
				return err
			}
			ds, err := p.LoadDataset()
			if err != nil {
				return err
			}
			res, err := p.Train(ds)
			if err != nil {
				return err
			}
			return printTrainResult(cmd.OutOrStdout(), res)
		},
	}
}

func newQuantizeCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quantize",
		Short: "Quantize previously saved raw parameters and verify the reconstruction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := f.pipeline()
			if err != nil {
				return err
			}
			ds, err := p.LoadDataset()
			if err != nil {
				return err
			}
			r, err := p.Quantize(ds, nil)
			if err != nil {
				return err
			}
			return f.report(cmd.OutOrStdout(), r)
		},
	}
	addReportFlags(cmd, f)
	return cmd
}

func newRunCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Train, quantize and verify in one pass",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := f.pipeline()
			if err != nil {
				return err
			}
			res, r, err := p.Run()
			if err != nil {
				return err
			}
			if err := printTrainResult(cmd.OutOrStdout(), res); err != nil {
				return err
			}
			return f.report(cmd.OutOrStdout(), r)
		},
	}
	addReportFlags(cmd, f)
	return cmd
}

func addReportFlags(cmd *cobra.Command, f *flags) {
	cmd.Flags().StringVar(&f.plot, "plot", "", "write an html prediction chart to this path")
	cmd.Flags().IntVar(&f.samples, "samples", 10, "number of test predictions to print")
}

// options layers the config file, then command line flags, over the defaults. Validation
// happens once the pipeline is created.
func (f *flags) options() (*quantreg.Options, error) {
	opt := quantreg.NewDefaultOptions()
	if f.config != "" {
		var err error
		if opt, err = quantreg.ReadOptions(f.config); err != nil {
			return nil, err
		}
		slog.Debug("loaded options", "path", f.config)
	}

	if f.artifacts != "" {
		opt.ArtifactDir = f.artifacts
	}
	if f.data != "" {
		opt.DataPath = f.data
	}
	if f.target != "" {
		opt.Target = f.target
	}
	if f.mode != "" {
		m, err := quant.ParseMode(f.mode)
		if err != nil {
			return nil, err
		}
		opt.Mode = m
	}
	return opt, nil
}

func (f *flags) pipeline() (*quantreg.Pipeline, error) {
	opt, err := f.options()
	if err != nil {
		return nil, err
	}
	store, err := artifact.NewFileStore(opt.ArtifactDir)
	if err != nil {
		return nil, err
	}
	return quantreg.New(opt, store)
}

func (f *flags) report(w io.Writer, r *quantreg.Report) error {
	if err := r.TablePrint(w, "", "  ", f.samples); err != nil {
		return err
	}
	if f.plot == "" {
		return nil
	}
	if err := r.PlotPredictions(f.plot, 0); err != nil {
		return fmt.Errorf("unable to plot predictions, %w", err)
	}
	slog.Info("wrote prediction chart", "path", f.plot)
	return nil
}

func printTrainResult(w io.Writer, res *quantreg.TrainResult) error {
	_, err := fmt.Fprintf(w, "Model:\n  R2: %.4f    MSE: %.4f    Max Abs Error: %.4f    Mean Abs Error: %.4f\n  Size: %.1f KB\n",
		res.Scores.R2, res.Scores.MSE, res.Scores.MaxAbsError, res.Scores.MeanAbsError, res.SizeKB)
	return err
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
