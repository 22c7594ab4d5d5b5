package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aouyang1/go-spoketube"
	"github.com/aouyang1/go-spoketube/stats"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMatchesTrainerDefaults(t *testing.T) {
	c, err := Default()
	require.Nil(t, err)

	assert.Equal(t, "data/train.json", c.Data.Train)
	assert.Equal(t, "results", c.ResultsRoot)
	assert.True(t, c.Plot)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "console", c.Log.Format)
	assert.Equal(t, "stderr", c.Log.Output)
	require.Nil(t, c.Validate())

	assert.Equal(t, spoketube.NewDefaultOptions(), c.Options())
	assert.Equal(t, stats.NewDefaultFenceOptions(), c.FenceOptions())
}

func TestParse(t *testing.T) {
	testData := map[string]struct {
		input    string
		check    func(t *testing.T, c *Config)
		field    string
		parseErr bool
	}{
		"empty uses defaults": {
			input: "",
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, 50, c.Training.FitRounds)
				assert.Equal(t, 0.1, c.Correction.TubeOffset)
			},
		},
		"overrides": {
			input: `
data:
  train: graphs/train.json
  val: ""
plot: false
training:
  fit_rounds: 0
  seed: 9
  parallelization: 4
correction:
  align_strength: 0.5
log:
  format: json
`,
			check: func(t *testing.T, c *Config) {
				assert.Equal(t, "graphs/train.json", c.Data.Train)
				assert.Equal(t, "", c.Data.Val)
				assert.Equal(t, "data/test.json", c.Data.Test)
				assert.False(t, c.Plot)
				assert.Equal(t, 0, c.Training.FitRounds)
				assert.Equal(t, 20, c.Training.RefineRounds)
				assert.Equal(t, uint64(9), c.Training.Seed)
				assert.Equal(t, 4, c.Options().Parallelization)
				assert.Equal(t, 0.5, c.Options().CorrectionOptions.AlignStrength)
				assert.Equal(t, "json", c.Log.Format)
				assert.Equal(t, "info", c.Log.Level)
			},
		},
		"malformed yaml": {
			input:    "training: [",
			parseErr: true,
		},
		"bad weight dim": {
			input: "training:\n  weight_dim: 10\n",
			field: "WeightDim",
		},
		"bad learning rate": {
			input: "training:\n  learning_rate: 0\n",
			field: "LearningRate",
		},
		"align strength out of range": {
			input: "correction:\n  align_strength: 1.5\n",
			field: "AlignStrength",
		},
		"angle limit out of range": {
			input: "correction:\n  angle_limit_deg: 120\n",
			field: "AngleLimitDeg",
		},
		"bad log format": {
			input: "log:\n  format: xml\n",
			field: "Format",
		},
		"inverted outlier percentiles": {
			input: "outliers:\n  lower_percentile: 0.8\n  upper_percentile: 0.2\n",
			field: "UpperPercentile",
		},
		"missing train path": {
			input: "data:\n  train: \"\"\n",
			field: "Train",
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			c, err := Parse([]byte(td.input))
			if td.parseErr {
				assert.Error(t, err)
				return
			}
			if td.field != "" {
				var verrs validator.ValidationErrors
				require.True(t, errors.As(err, &verrs))
				require.Len(t, verrs, 1)
				assert.Equal(t, td.field, verrs[0].Field())
				return
			}
			require.Nil(t, err)
			td.check(t, c)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.Nil(t, os.WriteFile(path, []byte("results_root: out\n"), 0o644))

	c, err := Load(path)
	require.Nil(t, err)
	assert.Equal(t, "out", c.ResultsRoot)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
