package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/specialistvlad/chirpcfg/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("chirpcfg", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
chirpcfg - Build, resolve and print audio model training presets.

Usage:
  chirpcfg [options] [PRESET_PATH...]

Arguments:
  PRESET_PATH
    Path to a single .hcl preset file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	var presetFiles, sets stringList
	var mixinProb *float64

	presetFlag := flagSet.String("preset", "supervised", "Name of the preset to build (catalogue or preset file).")
	flagSet.Var(&presetFiles, "preset-file", "Path to a preset file or directory. May be repeated.")
	flagSet.Var(&sets, "set", "Override a field, e.g. -set base.batch_size=32. May be repeated.")
	formatFlag := flagSet.String("format", "yaml", "Output format. Options: 'yaml' or 'json'.")
	listFlag := flagSet.Bool("list", false, "List the available presets and exit.")
	trainDirFlag := flagSet.String("train-dataset-dir", "", "Dataset directory for the training pipeline.")
	evalDirFlag := flagSet.String("eval-dataset-dir", "", "Dataset directory for the evaluation pipeline.")
	flagSet.Func("mixin-prob", "Probability of mixing a second recording into a training example.", func(s string) error {
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("must be a number: %w", err)
		}
		mixinProb = &p
		return nil
	})
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	presetFiles = append(presetFiles, flagSet.Args()...)
	slog.Debug("Preset paths determined.", "paths", []string(presetFiles))

	format := strings.ToLower(*formatFlag)
	if format != "yaml" && format != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid format: must be 'yaml' or 'json'"}
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		Preset:          *presetFlag,
		PresetFiles:     presetFiles,
		Sets:            sets,
		Format:          format,
		List:            *listFlag,
		TrainDatasetDir: *trainDirFlag,
		EvalDatasetDir:  *evalDirFlag,
		MixinProb:       mixinProb,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
