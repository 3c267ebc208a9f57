package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/chirpcfg/internal/cfgerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// safeBuffer is a thread-safe buffer for capturing log output in tests.
type safeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// setupAppTest creates a new app instance with debug logging captured.
func setupAppTest(t *testing.T, cfg Config) (*App, *bytes.Buffer, *safeBuffer) {
	t.Helper()
	config, err := NewConfig(cfg)
	require.NoError(t, err)
	config.LogLevel = "debug"

	out := &bytes.Buffer{}
	logs := &safeBuffer{}
	a, err := NewApp(out, logs, config)
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("CHIRPCFG_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return a, out, logs
}

type dumped struct {
	Base struct {
		BatchSize int `yaml:"batch_size"`
	} `yaml:"base"`
	Frontend struct {
		Config struct {
			Kind string         `yaml:"kind"`
			Args map[string]any `yaml:"args"`
		} `yaml:"config"`
	} `yaml:"frontend"`
	TrainDataset dataset `yaml:"train_dataset"`
	EvalDataset  dataset `yaml:"eval_dataset"`
}

type dataset struct {
	Pipeline struct {
		Args struct {
			Ops []struct {
				Kind string         `yaml:"kind"`
				Args map[string]any `yaml:"args"`
			} `yaml:"ops"`
		} `yaml:"args"`
	} `yaml:"pipeline"`
	DatasetDirectory string `yaml:"dataset_directory"`
}

func (d dataset) arg(t *testing.T, kind, name string) any {
	t.Helper()
	for _, op := range d.Pipeline.Args.Ops {
		if op.Kind == kind {
			return op.Args[name]
		}
	}
	t.Fatalf("stage %s not found", kind)
	return nil
}

func decode(t *testing.T, out *bytes.Buffer) dumped {
	t.Helper()
	var d dumped
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &d))
	return d
}

func TestApp_RunDefaultPreset(t *testing.T) {
	a, out, logs := setupAppTest(t, Config{Preset: "supervised"})
	require.NoError(t, a.Run(context.Background()))

	d := decode(t, out)
	assert.Equal(t, 64, d.Base.BatchSize)
	assert.Equal(t, "frontend.MelSpectrogram", d.Frontend.Config.Kind)
	assert.Equal(t, 1024, d.Frontend.Config.Args["transform_size"])
	assert.Equal(t, 0.75, d.TrainDataset.arg(t, "pipeline.MixAudio", "mixin_prob"))
	assert.Len(t, d.EvalDataset.Pipeline.Args.Ops, 6)

	assert.Contains(t, logs.String(), "Preset resolved.")
	assert.Contains(t, logs.String(), "Call kinds registered.")
	assert.Regexp(t, `msg="Preset built\." preset=supervised`, logs.String())
}

func TestApp_RunWithOverrides(t *testing.T) {
	mixin := 0.25
	a, out, _ := setupAppTest(t, Config{
		Preset:          "supervised_16k",
		Sets:            []string{"base.batch_size=base.batch_size / 2", "train.log_every_steps=10"},
		TrainDatasetDir: "/data/train",
		EvalDatasetDir:  "/data/eval",
		MixinProb:       &mixin,
	})
	require.Error(t, a.Run(context.Background()), "a self-referencing sweep is a cycle")

	a, out, _ = setupAppTest(t, Config{
		Preset:          "supervised_16k",
		Sets:            []string{"base.batch_size=16"},
		TrainDatasetDir: "/data/train",
		EvalDatasetDir:  "/data/eval",
		MixinProb:       &mixin,
	})
	require.NoError(t, a.Run(context.Background()))

	d := decode(t, out)
	assert.Equal(t, 16, d.Base.BatchSize)
	assert.Equal(t, 16, d.TrainDataset.arg(t, "pipeline.Batch", "batch_size"))
	assert.Equal(t, 16, d.EvalDataset.arg(t, "pipeline.Batch", "batch_size"))
	assert.Equal(t, 0.25, d.TrainDataset.arg(t, "pipeline.MixAudio", "mixin_prob"))
	assert.Equal(t, "/data/train", d.TrainDataset.DatasetDirectory)
	assert.Equal(t, "/data/eval", d.EvalDataset.DatasetDirectory)
	assert.Equal(t, 16000, d.Frontend.Config.Args["sample_rate"])
}

func TestApp_RunFilePreset(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tiny.hcl"), []byte(`
preset "tiny" {
  base {
    batch_size = 8
  }
  train_dataset {
    mixin_prob = 0.1
  }
}
`), 0o600))

	a, out, _ := setupAppTest(t, Config{Preset: "tiny", PresetFiles: []string{dir}, Format: "json"})
	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), `"batch_size": 8`)
	assert.Contains(t, out.String(), `"mixin_prob": 0.1`)

	a, out, _ = setupAppTest(t, Config{List: true, PresetFiles: []string{dir}})
	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, "supervised\nsupervised_16k\ntiny\n", out.String())
}

func TestApp_Errors(t *testing.T) {
	t.Run("unknown preset", func(t *testing.T) {
		a, _, _ := setupAppTest(t, Config{Preset: "nope"})
		err := a.Run(context.Background())
		var cfgErr *cfgerr.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
	})

	t.Run("broken preset file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.hcl"), []byte(`preset "x" {`), 0o600))
		cfg, err := NewConfig(Config{Preset: "x", PresetFiles: []string{dir}})
		require.NoError(t, err)
		_, err = NewApp(&bytes.Buffer{}, &bytes.Buffer{}, cfg)
		require.Error(t, err)
		assert.ErrorContains(t, err, "failed to parse HCL file")
	})

	t.Run("invalid base value through -set", func(t *testing.T) {
		a, out, _ := setupAppTest(t, Config{Preset: "supervised", Sets: []string{"base.batch_size=-5"}})
		err := a.Run(context.Background())
		var cfgErr *cfgerr.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
		assert.Equal(t, "batch_size", cfgErr.Field)
		assert.Empty(t, out.String())
	})

	t.Run("bad assignment", func(t *testing.T) {
		a, _, _ := setupAppTest(t, Config{Preset: "supervised", Sets: []string{"base.batch_size=model.depth"}})
		err := a.Run(context.Background())
		require.Error(t, err)
	})
}

func TestNewConfig(t *testing.T) {
	bad := 1.5
	testCases := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "defaults format", cfg: Config{Preset: "supervised"}},
		{name: "list needs no preset", cfg: Config{List: true}},
		{name: "missing preset", cfg: Config{}, wantErr: "Preset is a required"},
		{name: "bad format", cfg: Config{Preset: "supervised", Format: "xml"}, wantErr: "unknown output format"},
		{name: "bad mixin", cfg: Config{Preset: "supervised", MixinProb: &bad}, wantErr: "mixin probability"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, err := NewConfig(tc.cfg)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "yaml", cfg.Format)
		})
	}
}
