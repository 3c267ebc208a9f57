package pipeline

import (
	"fmt"

	"github.com/specialistvlad/chirpcfg/internal/cfgerr"
)

// Variant selects the training or evaluation composition.
type Variant string

const (
	Train Variant = "train"
	Eval  Variant = "eval"
)

// Variants lists every variant in composition order.
var Variants = []Variant{Train, Eval}

// NodeName is the graph node a variant is defined under.
func (v Variant) NodeName() string {
	return string(v) + "_dataset"
}

// WindowField is the base field holding the variant's window size.
func (v Variant) WindowField() string {
	return string(v) + "_window_size_s"
}

func (v Variant) String() string { return string(v) }

// ParseVariant parses "train" or "eval".
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case Train, Eval:
		return Variant(s), nil
	}
	return "", cfgerr.Invalid("variant", "unknown pipeline variant %q", s)
}

// Options holds the composer inputs that are not taken from the base
// config. A nil pointer or empty Split selects the default below. MixinProb
// has no default; zero disables mixing.
type Options struct {
	MixinProb         float64
	DatasetDir        string
	Split             string
	ShuffleBufferSize *int
	MinGain           *float64
	MaxGain           *float64
	TargetGain        *float64
}

// Defaults applied to unset options.
const (
	DefaultSplit             = "train"
	DefaultShuffleBufferSize = 512
	DefaultMinGain           = 0.15
	DefaultMaxGain           = 0.25
	DefaultTargetGain        = 0.2
)

// settings are Options with every default filled in.
type settings struct {
	mixinProb         float64
	datasetDir        string
	split             string
	shuffleBufferSize int
	minGain           float64
	maxGain           float64
	targetGain        float64
}

func orDefault[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}

func (o Options) settings() settings {
	s := settings{
		mixinProb:         o.MixinProb,
		datasetDir:        o.DatasetDir,
		split:             o.Split,
		shuffleBufferSize: orDefault(o.ShuffleBufferSize, DefaultShuffleBufferSize),
		minGain:           orDefault(o.MinGain, DefaultMinGain),
		maxGain:           orDefault(o.MaxGain, DefaultMaxGain),
		targetGain:        orDefault(o.TargetGain, DefaultTargetGain),
	}
	if s.split == "" {
		s.split = DefaultSplit
	}
	return s
}

// Validate checks the options after defaults have been applied.
func (o Options) Validate() error {
	s := o.settings()
	switch {
	case s.mixinProb < 0 || s.mixinProb > 1:
		return cfgerr.Invalid("mixin_prob", "must lie in [0, 1], got %g", s.mixinProb)
	case s.shuffleBufferSize < 0:
		return cfgerr.Invalid("shuffle_buffer_size", "must not be negative, got %d", s.shuffleBufferSize)
	case s.minGain < 0:
		return cfgerr.Invalid("min_gain", "must not be negative, got %g", s.minGain)
	case s.maxGain < 0:
		return cfgerr.Invalid("max_gain", "must not be negative, got %g", s.maxGain)
	case s.targetGain < 0:
		return cfgerr.Invalid("target_gain", "must not be negative, got %g", s.targetGain)
	case s.minGain > s.maxGain:
		return cfgerr.Invalid("min_gain", "%g exceeds max_gain %g", s.minGain, s.maxGain)
	}
	return nil
}

func (o Options) String() string {
	return fmt.Sprintf("mixin_prob=%g dataset_dir=%q split=%q", o.MixinProb, o.DatasetDir, o.Split)
}
