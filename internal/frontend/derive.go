package frontend

import (
	"github.com/specialistvlad/chirpcfg/internal/cfgerr"
)

// TransformSizes is the ladder of sanctioned transform sizes, ascending.
var TransformSizes = []int{256, 512, 1024, 2048, 4096}

const (
	// MinFreqHz and MaxFreqHz bound the mel filterbank.
	MinFreqHz = 60
	MaxFreqHz = 10_000

	// PCENConvWidth is the smoothing width of the PCEN scaling stage.
	PCENConvWidth = 256
)

// Params are the derived frontend parameters. They hold no references and
// can be embedded directly as call arguments.
type Params struct {
	Stride        int
	KernelSize    int
	TransformSize int
	SampleRateHz  int
	FreqRange     [2]int
	Channels      int
}

// Derive maps sampling and framing parameters onto frontend parameters.
// The frame rate must divide the sample rate exactly; truncating would
// silently change the frame rate.
func Derive(sampleRateHz, frameRateHz, channels int) (Params, error) {
	switch {
	case sampleRateHz <= 0:
		return Params{}, cfgerr.Invalid("sample_rate_hz", "must be positive, got %d", sampleRateHz)
	case frameRateHz <= 0:
		return Params{}, cfgerr.Invalid("frame_rate_hz", "must be positive, got %d", frameRateHz)
	case channels <= 0:
		return Params{}, cfgerr.Invalid("num_channels", "must be positive, got %d", channels)
	case sampleRateHz%frameRateHz != 0:
		return Params{}, cfgerr.Invalid("frame_rate_hz", "%d Hz does not evenly divide sample rate %d Hz", frameRateHz, sampleRateHz)
	}

	stride := sampleRateHz / frameRateHz
	if stride <= 0 {
		return Params{}, cfgerr.Invalid("frame_rate_hz", "stride must be positive, got %d", stride)
	}
	kernel := 2 * stride

	transform, err := TransformSizeFor(kernel)
	if err != nil {
		return Params{}, err
	}

	return Params{
		Stride:        stride,
		KernelSize:    kernel,
		TransformSize: transform,
		SampleRateHz:  sampleRateHz,
		FreqRange:     [2]int{MinFreqHz, MaxFreqHz},
		Channels:      channels,
	}, nil
}

// TransformSizeFor returns the smallest ladder entry that is >= kernel.
func TransformSizeFor(kernel int) (int, error) {
	for _, size := range TransformSizes {
		if kernel <= size {
			return size, nil
		}
	}
	return 0, &cfgerr.UnsupportedKernelSizeError{
		KernelSize: kernel,
		Max:        TransformSizes[len(TransformSizes)-1],
	}
}
