package app

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/chirpcfg/internal/render"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Preset      string   // catalogue or file preset name
	PresetFiles []string // hcl files or directories
	Sets        []string // node.field=expression overrides, applied last
	Format      string
	List        bool

	TrainDatasetDir string
	EvalDatasetDir  string
	MixinProb       *float64

	LogFormat string
	LogLevel  string
}

// NewConfig validates cfg and fills in defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Preset == "" && !cfg.List {
		return nil, errors.New("Preset is a required configuration field and cannot be empty")
	}
	if cfg.Format == "" {
		cfg.Format = string(render.FormatYAML)
	}
	if _, err := render.ParseFormat(cfg.Format); err != nil {
		return nil, err
	}
	if p := cfg.MixinProb; p != nil && (*p < 0 || *p > 1) {
		return nil, fmt.Errorf("mixin probability must lie in [0, 1], got %g", *p)
	}
	return &cfg, nil
}
