package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	testData := map[string]struct {
		cfg      Config
		logInfo  bool
		contains string
		anyErr   bool
		err      error
	}{
		"console": {
			cfg:      Config{Level: "info", Format: FormatConsole},
			logInfo:  true,
			contains: "graph trained",
		},
		"json": {
			cfg:      Config{Level: "debug", Format: FormatJSON},
			logInfo:  true,
			contains: `"message":"graph trained"`,
		},
		"filtered by level": {
			cfg:     Config{Level: "error", Format: FormatJSON},
			logInfo: false,
		},
		"bad level": {
			cfg:    Config{Level: "loud"},
			anyErr: true,
		},
		"bad format": {
			cfg: Config{Format: "xml"},
			err: ErrUnknownFormat,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			l, err := NewWithWriter(td.cfg, &buf)
			if td.anyErr {
				assert.Error(t, err)
				return
			}
			if td.err != nil {
				assert.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)

			l.Info().Int("index", 3).Msg("graph trained")
			if !td.logInfo {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, buf.String(), td.contains)
		})
	}
}

func TestNewJSONFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithWriter(Config{Format: FormatJSON}, &buf)
	require.Nil(t, err)

	l.Info().Float64("mse", 0.25).Msg("done")

	var entry map[string]any
	require.Nil(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, 0.25, entry["mse"])
	assert.Contains(t, entry, "time")
}

func TestNewFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spoketube.log")
	l, err := New(Config{Level: "info", Format: FormatJSON, Output: path})
	require.Nil(t, err)

	l.Info().Msg("to file")
	require.Nil(t, l.Close())

	data, err := os.ReadFile(path)
	require.Nil(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestNewStderrClose(t *testing.T) {
	l, err := New(Config{})
	require.Nil(t, err)
	assert.Nil(t, l.Close())
}
