package quantreg

import (
	"errors"
	"fmt"
	"os"

	"github.com/aouyang1/go-quantreg/dataset"
	"github.com/aouyang1/go-quantreg/models"
	"github.com/aouyang1/go-quantreg/quant"
	"gopkg.in/yaml.v3"
)

const DefaultArtifactDir = "models"

var (
	ErrNoTarget          = errors.New("data path set without a target column")
	ErrNoArtifactDir     = errors.New("no artifact directory")
	ErrInvalidTestSplit  = errors.New("test fraction must be between 0 and 1 exclusive")
	ErrUnreadableOptions = errors.New("unable to read options file")
)

// Options configures a train, quantize and verify run
type Options struct {
	OLSOptions      *models.OLSOptions       `yaml:"ols"`
	SimulateOptions *dataset.SimulateOptions `yaml:"simulate"`

	// DataPath points at a csv file with a header row. When empty a simulated dataset is used.
	DataPath string `yaml:"data_path"`
	Target   string `yaml:"target"`

	TestFraction float64 `yaml:"test_fraction"`
	Seed         uint64  `yaml:"seed"`

	Mode        quant.Mode `yaml:"mode"`
	ArtifactDir string     `yaml:"artifact_dir"`
}

// NewDefaultOptions quantizes coefficients per element, holding out 20% of a simulated
// dataset for evaluation
func NewDefaultOptions() *Options {
	return &Options{
		OLSOptions:      models.NewDefaultOLSOptions(),
		SimulateOptions: dataset.NewDefaultSimulateOptions(),
		TestFraction:    dataset.DefaultTestFraction,
		Seed:            dataset.DefaultSeed,
		Mode:            quant.ModeIndividual,
		ArtifactDir:     DefaultArtifactDir,
	}
}

// Validate fills unset nested options with defaults and checks the remaining fields
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}

	var err error
	if o.OLSOptions, err = o.OLSOptions.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ols options, %w", err)
	}
	if o.DataPath == "" {
		if o.SimulateOptions, err = o.SimulateOptions.Validate(); err != nil {
			return nil, fmt.Errorf("invalid simulate options, %w", err)
		}
	} else if o.Target == "" {
		return nil, ErrNoTarget
	}

	if o.TestFraction <= 0 || o.TestFraction >= 1 {
		return nil, fmt.Errorf("got %.3f, %w", o.TestFraction, ErrInvalidTestSplit)
	}
	if o.Mode, err = quant.ParseMode(string(o.Mode)); err != nil {
		return nil, err
	}
	if o.ArtifactDir == "" {
		return nil, ErrNoArtifactDir
	}
	return o, nil
}

// LoadOptions reads yaml options from path on top of the defaults and validates the result
func LoadOptions(path string) (*Options, error) {
	opt, err := ReadOptions(path)
	if err != nil {
		return nil, err
	}
	return opt.Validate()
}

// ReadOptions reads yaml options from path on top of the defaults without validating them,
// leaving room for further overrides
func ReadOptions(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s, %v, %w", path, err, ErrUnreadableOptions)
	}
	return DecodeOptions(data)
}

// ParseOptions decodes yaml options on top of the defaults and validates the result
func ParseOptions(data []byte) (*Options, error) {
	opt, err := DecodeOptions(data)
	if err != nil {
		return nil, err
	}
	return opt.Validate()
}

// DecodeOptions decodes yaml options on top of the defaults without validating them
func DecodeOptions(data []byte) (*Options, error) {
	opt := NewDefaultOptions()
	if err := yaml.Unmarshal(data, opt); err != nil {
		return nil, fmt.Errorf("unable to parse options, %w", err)
	}
	return opt, nil
}
