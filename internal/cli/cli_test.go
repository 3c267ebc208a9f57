package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, exit, err := Parse([]string{
		"-preset", "supervised_16k",
		"-preset-file", "presets/a.hcl",
		"-set", "base.batch_size=32",
		"-set", "train.log_every_steps=10",
		"-format", "JSON",
		"-mixin-prob", "0.5",
		"-train-dataset-dir", "/data/train",
		"-log-level", "debug",
		"presets/extra",
	}, out)
	require.NoError(t, err)
	require.False(t, exit)

	assert.Equal(t, "supervised_16k", cfg.Preset)
	assert.Equal(t, []string{"presets/a.hcl", "presets/extra"}, cfg.PresetFiles)
	assert.Equal(t, []string{"base.batch_size=32", "train.log_every_steps=10"}, cfg.Sets)
	assert.Equal(t, "json", cfg.Format)
	require.NotNil(t, cfg.MixinProb)
	assert.Equal(t, 0.5, *cfg.MixinProb)
	assert.Equal(t, "/data/train", cfg.TrainDatasetDir)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	cfg, exit, err := Parse(nil, &bytes.Buffer{})
	require.NoError(t, err)
	require.False(t, exit)
	assert.Equal(t, "supervised", cfg.Preset)
	assert.Equal(t, "yaml", cfg.Format)
	assert.Nil(t, cfg.MixinProb)
	assert.Empty(t, cfg.PresetFiles)
}

func TestParse_Help(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	cfg, exit, err := Parse([]string{"-h"}, out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		args    []string
		message string
	}{
		{name: "unknown flag", args: []string{"-bogus"}, message: "flag provided but not defined"},
		{name: "bad format", args: []string{"-format", "toml"}, message: "invalid format"},
		{name: "bad log format", args: []string{"-log-format", "xml"}, message: "invalid log-format"},
		{name: "bad log level", args: []string{"-log-level", "loud"}, message: "invalid log-level"},
		{name: "mixin not a number", args: []string{"-mixin-prob", "often"}, message: "must be a number"},
		{name: "mixin out of range", args: []string{"-mixin-prob", "1.5"}, message: "mixin probability"},
		{name: "empty preset", args: []string{"-preset", ""}, message: "Preset is a required"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := Parse(tc.args, &bytes.Buffer{})
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.message)
		})
	}
}
