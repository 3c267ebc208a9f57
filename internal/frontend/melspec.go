package frontend

import (
	"fmt"

	"github.com/specialistvlad/chirpcfg/internal/refgraph"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Call kinds emitted by this package.
const (
	KindMelSpectrogram = "frontend.MelSpectrogram"
	KindPCENScaling    = "frontend.PCENScalingConfig"
)

// Call returns a descriptor built from already derived parameters, with no
// references. Use it to bypass the base config entirely.
func (p Params) Call() *refgraph.Call {
	return refgraph.NewCall(KindMelSpectrogram,
		refgraph.F("features", refgraph.Int(int64(p.Channels))),
		refgraph.F("stride", refgraph.Int(int64(p.Stride))),
		refgraph.F("kernel_size", refgraph.Int(int64(p.KernelSize))),
		refgraph.F("transform_size", refgraph.Int(int64(p.TransformSize))),
		refgraph.F("sample_rate", refgraph.Int(int64(p.SampleRateHz))),
		refgraph.F("freq_range", refgraph.Ints(int64(p.FreqRange[0]), int64(p.FreqRange[1]))),
		refgraph.F("scaling_config", pcenScaling()),
	)
}

// MelSpectrogram describes the PCEN mel-spectrogram frontend wired to the
// base node. Stride, kernel and transform size are computed from live
// references, so overriding the base rates later still propagates, and a
// bad combination fails at resolution time.
func MelSpectrogram(g *refgraph.Graph, base string) (*refgraph.Call, error) {
	sampleRate, err := g.Ref(base, "sample_rate_hz")
	if err != nil {
		return nil, err
	}
	frameRate, err := g.Ref(base, "frame_rate_hz")
	if err != nil {
		return nil, err
	}
	channels, err := g.Ref(base, "num_channels")
	if err != nil {
		return nil, err
	}

	derived := func(name string, pick func(Params) int) *refgraph.Computed {
		return refgraph.Compute(name, func(args []cty.Value) (cty.Value, error) {
			p, err := deriveFromCty(args)
			if err != nil {
				return cty.NilVal, err
			}
			return cty.NumberIntVal(int64(pick(p))), nil
		}, sampleRate, frameRate, channels)
	}

	return refgraph.NewCall(KindMelSpectrogram,
		refgraph.F("features", channels),
		refgraph.F("stride", derived("stride", func(p Params) int { return p.Stride })),
		refgraph.F("kernel_size", derived("kernel_size", func(p Params) int { return p.KernelSize })),
		refgraph.F("transform_size", derived("transform_size", func(p Params) int { return p.TransformSize })),
		refgraph.F("sample_rate", sampleRate),
		refgraph.F("freq_range", refgraph.Ints(MinFreqHz, MaxFreqHz)),
		refgraph.F("scaling_config", pcenScaling()),
	), nil
}

func pcenScaling() *refgraph.Call {
	return refgraph.NewCall(KindPCENScaling, refgraph.F("conv_width", refgraph.Int(PCENConvWidth)))
}

// deriveFromCty runs Derive on resolved sample rate, frame rate and channel
// count values.
func deriveFromCty(args []cty.Value) (Params, error) {
	names := [3]string{"sample_rate_hz", "frame_rate_hz", "num_channels"}
	var ints [3]int
	for i := range names {
		if err := gocty.FromCtyValue(args[i], &ints[i]); err != nil {
			return Params{}, fmt.Errorf("%s must be a whole number: %w", names[i], err)
		}
	}
	return Derive(ints[0], ints[1], ints[2])
}
