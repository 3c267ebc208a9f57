package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/specialistvlad/chirpcfg/internal/ctxlog"
	"github.com/specialistvlad/chirpcfg/internal/hclpreset"
	"github.com/specialistvlad/chirpcfg/internal/preset"
	"github.com/specialistvlad/chirpcfg/internal/refgraph"
	"github.com/specialistvlad/chirpcfg/internal/registry"
	"github.com/specialistvlad/chirpcfg/internal/render"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	files    *hclpreset.File
}

// NewApp is the constructor for the main application. Results go to outW,
// logs to logW. Preset files are loaded here so a broken file fails before
// anything is written.
func NewApp(outW, logW io.Writer, cfg *Config) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	files, err := hclpreset.NewLoader().Load(ctx, cfg.PresetFiles...)
	if err != nil {
		return nil, fmt.Errorf("failed to load preset files: %w", err)
	}

	reg := registry.Default()
	logger.Debug("Call kinds registered.", "count", len(reg.Kinds()))

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		files:    files,
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Run builds, resolves and writes the configured preset.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	if a.config.List {
		return a.list()
	}

	built, err := a.build(ctx)
	if err != nil {
		return err
	}

	for _, s := range a.config.Sets {
		addr, v, err := hclpreset.ParseAssignment(built.Graph, s)
		if err != nil {
			return err
		}
		if err := built.Override(ctx, addr.Node, refgraph.F(addr.Field, v)); err != nil {
			return fmt.Errorf("applying %s: %w", addr, err)
		}
	}

	resolved, err := built.ResolveWith(ctx, a.registry)
	if err != nil {
		return fmt.Errorf("failed to resolve preset %q: %w", built.Name, err)
	}
	a.logger.Info("Preset resolved.", "name", resolved.Name, "nodes", len(resolved.Nodes),
		"train_stages", len(resolved.Train.Stages), "eval_stages", len(resolved.Eval.Stages))

	if err := render.Write(a.outW, render.Format(a.config.Format), resolved.Nodes); err != nil {
		return err
	}
	a.logger.Debug("App.Run method finished.")
	return nil
}

// build assembles the named preset. File presets shadow catalogue presets.
func (a *App) build(ctx context.Context) (*preset.Preset, error) {
	filePreset, fromFile := a.files.Preset(a.config.Preset)

	var opts preset.Options
	var err error
	if fromFile {
		opts, err = filePreset.Options()
	} else {
		opts, err = preset.Lookup(a.config.Preset)
	}
	if err != nil {
		return nil, err
	}

	if a.config.TrainDatasetDir != "" {
		opts.TrainData.DatasetDir = a.config.TrainDatasetDir
	}
	if a.config.EvalDatasetDir != "" {
		opts.EvalData.DatasetDir = a.config.EvalDatasetDir
	}
	if a.config.MixinProb != nil {
		opts.TrainData.MixinProb = *a.config.MixinProb
	}

	built, err := preset.Build(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to build preset %q: %w", opts.Name, err)
	}
	if fromFile {
		if err := filePreset.Apply(ctx, built.Graph); err != nil {
			return nil, err
		}
	}
	return built, nil
}

func (a *App) list() error {
	for _, name := range preset.Names() {
		if _, shadowed := a.files.Preset(name); shadowed {
			continue
		}
		if _, err := fmt.Fprintln(a.outW, name); err != nil {
			return err
		}
	}
	for _, name := range a.files.Names() {
		if _, err := fmt.Fprintln(a.outW, name); err != nil {
			return err
		}
	}
	return nil
}
