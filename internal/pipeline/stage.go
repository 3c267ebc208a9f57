package pipeline

// Stage kinds emitted by the composer.
const (
	KindPipeline             = "pipeline.Pipeline"
	KindShuffle              = "pipeline.Shuffle"
	KindOnlyJaxTypes         = "pipeline.OnlyJaxTypes"
	KindConvertLabels        = "pipeline.ConvertBirdTaxonomyLabels"
	KindMixAudio             = "pipeline.MixAudio"
	KindPad                  = "pipeline.Pad"
	KindRandomSlice          = "pipeline.RandomSlice"
	KindSlice                = "pipeline.Slice"
	KindBatch                = "pipeline.Batch"
	KindRandomNormalizeAudio = "pipeline.RandomNormalizeAudio"
	KindNormalizeAudio       = "pipeline.NormalizeAudio"
	KindRepeat               = "pipeline.Repeat"
)

// SourceNamespace is the label namespace the raw datasets are tagged with.
const SourceNamespace = "ebird2021"

// randomKinds are stages that make a pipeline non-deterministic.
var randomKinds = map[string]bool{
	KindShuffle:              true,
	KindMixAudio:             true,
	KindRandomSlice:          true,
	KindRandomNormalizeAudio: true,
}
