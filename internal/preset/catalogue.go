package preset

import (
	"sort"
	"strings"

	"github.com/specialistvlad/chirpcfg/internal/cfgerr"
	"github.com/specialistvlad/chirpcfg/internal/pipeline"
)

// DefaultMixinProb is the mix-in probability of the named training presets.
const DefaultMixinProb = 0.75

var catalogue = map[string]func() Options{
	"supervised":     supervised,
	"supervised_16k": supervised16k,
}

func supervised() Options {
	return Options{
		Name:      "supervised",
		Base:      BaseDefaults(),
		TrainData: pipeline.Options{MixinProb: DefaultMixinProb},
	}
}

func supervised16k() Options {
	opts := supervised()
	opts.Name = "supervised_16k"
	opts.Base.SampleRateHz = 16000
	opts.Base.FrameRateHz = 50
	return opts
}

// Lookup returns the options of a named preset.
func Lookup(name string) (Options, error) {
	factory, ok := catalogue[name]
	if !ok {
		return Options{}, cfgerr.Invalid("preset", "unknown preset %q, known presets: %s", name, strings.Join(Names(), ", "))
	}
	return factory(), nil
}

// Names lists the named presets, sorted.
func Names() []string {
	out := make([]string, 0, len(catalogue))
	for name := range catalogue {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
