// Package config loads the YAML run configuration of the spoketube command
package config

import (
	"fmt"
	"os"

	"github.com/aouyang1/go-spoketube"
	"github.com/aouyang1/go-spoketube/correction"
	"github.com/aouyang1/go-spoketube/internal/logging"
	"github.com/aouyang1/go-spoketube/stats"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Config is the full run configuration. Unset fields take the values of their default tags.
type Config struct {
	Data struct {
		Train string `yaml:"train" default:"data/train.json" validate:"required"`
		Val   string `yaml:"val" default:"data/val.json"`
		Test  string `yaml:"test" default:"data/test.json"`
	} `yaml:"data"`

	// ResultsRoot is the directory each run creates its timestamped output directory in
	ResultsRoot string `yaml:"results_root" default:"results" validate:"required"`
	Plot        bool   `yaml:"plot" default:"true"`

	Training struct {
		FitRounds       int     `yaml:"fit_rounds" default:"50" validate:"gte=0"`
		RefineRounds    int     `yaml:"refine_rounds" default:"20" validate:"gte=0"`
		LearningRate    float64 `yaml:"learning_rate" default:"0.05" validate:"gt=0"`
		InitScale       float64 `yaml:"init_scale" default:"0.01" validate:"gte=0"`
		WeightDim       int     `yaml:"weight_dim" default:"14" validate:"eq=14"`
		Seed            uint64  `yaml:"seed"`
		Parallelization int     `yaml:"parallelization" default:"1" validate:"gte=1"`
	} `yaml:"training"`

	Correction struct {
		AlignStrength float64 `yaml:"align_strength" default:"0.4" validate:"gte=0,lte=1"`
		TubeOffset    float64 `yaml:"tube_offset" default:"0.1" validate:"gte=0"`
		AngleLimitDeg float64 `yaml:"angle_limit_deg" default:"45" validate:"gte=0,lte=90"`
		TubeDegree    int     `yaml:"tube_degree" default:"2" validate:"gte=0"`
	} `yaml:"correction"`

	// Outliers sets the Tukey fences used to flag training graphs with an unusually high loss
	Outliers struct {
		LowerPercentile float64 `yaml:"lower_percentile" default:"0.25" validate:"gte=0,lte=1"`
		UpperPercentile float64 `yaml:"upper_percentile" default:"0.75" validate:"gte=0,lte=1,gtefield=LowerPercentile"`
		TukeyFactor     float64 `yaml:"tukey_factor" default:"1.5" validate:"gte=0"`
	} `yaml:"outliers"`

	Log logging.Config `yaml:"log"`
}

// Default returns a configuration with every default applied
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("unable to set config defaults, %w", err)
	}
	return &c, nil
}

// Parse decodes YAML on top of the defaults and validates the result
func Parse(b []byte) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("unable to parse config, %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Load reads and parses a YAML configuration file
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config, %w", err)
	}
	return Parse(b)
}

// Validate checks every field against its validate tag
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config, %w", err)
	}
	return nil
}

// Options converts the training and correction sections into trainer options
func (c *Config) Options() *spoketube.Options {
	return &spoketube.Options{
		FitRounds:       c.Training.FitRounds,
		RefineRounds:    c.Training.RefineRounds,
		LearningRate:    c.Training.LearningRate,
		InitScale:       c.Training.InitScale,
		WeightDim:       c.Training.WeightDim,
		Seed:            c.Training.Seed,
		Parallelization: c.Training.Parallelization,
		CorrectionOptions: &correction.Options{
			AlignStrength: c.Correction.AlignStrength,
			TubeOffset:    c.Correction.TubeOffset,
			AngleLimitDeg: c.Correction.AngleLimitDeg,
			TubeDegree:    c.Correction.TubeDegree,
		},
	}
}

// FenceOptions returns the outlier fences applied to the training losses
func (c *Config) FenceOptions() *stats.FenceOptions {
	return &stats.FenceOptions{
		LowerPercentile: c.Outliers.LowerPercentile,
		UpperPercentile: c.Outliers.UpperPercentile,
		TukeyFactor:     c.Outliers.TukeyFactor,
	}
}
