package registry

import (
	"github.com/specialistvlad/chirpcfg/internal/frontend"
	"github.com/specialistvlad/chirpcfg/internal/pipeline"
	"github.com/specialistvlad/chirpcfg/internal/refgraph"
)

// Argument structs for the kinds presets emit.
type (
	PipelineArgs struct {
		Ops []*refgraph.ResolvedCall `cty:"ops"`
	}
	ShuffleArgs struct {
		ShuffleBufferSize int `cty:"shuffle_buffer_size"`
	}
	NoArgs            struct{}
	ConvertLabelsArgs struct {
		SourceNamespace    string `cty:"source_namespace"`
		TargetClassList    string `cty:"target_class_list"`
		AddTaxonomicLabels bool   `cty:"add_taxonomic_labels"`
	}
	MixAudioArgs struct {
		MixinProb float64 `cty:"mixin_prob"`
	}
	PadArgs struct {
		PadSize float64 `cty:"pad_size"`
		Random  bool    `cty:"random"`
		AddMask bool    `cty:"add_mask"`
	}
	SliceArgs struct {
		WindowSize float64 `cty:"window_size"`
		Start      float64 `cty:"start"`
	}
	RandomSliceArgs struct {
		WindowSize float64 `cty:"window_size"`
	}
	BatchArgs struct {
		BatchSize          int  `cty:"batch_size"`
		SplitAcrossDevices bool `cty:"split_across_devices"`
	}
	RandomNormalizeArgs struct {
		MinGain float64 `cty:"min_gain"`
		MaxGain float64 `cty:"max_gain"`
	}
	NormalizeArgs struct {
		TargetGain float64 `cty:"target_gain"`
	}
	MelSpectrogramArgs struct {
		Features      int                    `cty:"features"`
		Stride        int                    `cty:"stride"`
		KernelSize    int                    `cty:"kernel_size"`
		TransformSize int                    `cty:"transform_size"`
		SampleRate    int                    `cty:"sample_rate"`
		FreqRange     []int                  `cty:"freq_range"`
		ScalingConfig *refgraph.ResolvedCall `cty:"scaling_config"`
	}
	PCENScalingArgs struct {
		ConvWidth int `cty:"conv_width"`
	}
)

// Default returns a registry holding every kind the frontend and the
// pipeline composer emit.
func Default() *Registry {
	r := New()
	r.Register(pipeline.KindPipeline, PipelineArgs{})
	r.Register(pipeline.KindShuffle, ShuffleArgs{})
	r.Register(pipeline.KindOnlyJaxTypes, NoArgs{})
	r.Register(pipeline.KindConvertLabels, ConvertLabelsArgs{})
	r.Register(pipeline.KindMixAudio, MixAudioArgs{})
	r.Register(pipeline.KindPad, PadArgs{})
	r.Register(pipeline.KindRandomSlice, RandomSliceArgs{})
	r.Register(pipeline.KindSlice, SliceArgs{})
	r.Register(pipeline.KindBatch, BatchArgs{})
	r.Register(pipeline.KindRandomNormalizeAudio, RandomNormalizeArgs{})
	r.Register(pipeline.KindNormalizeAudio, NormalizeArgs{})
	r.Register(pipeline.KindRepeat, NoArgs{})
	r.Register(frontend.KindMelSpectrogram, MelSpectrogramArgs{})
	r.Register(frontend.KindPCENScaling, PCENScalingArgs{})
	return r
}
