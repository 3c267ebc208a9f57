// Package preset assembles complete training presets on one reference graph.
//
// A preset is a base node of shared parameters plus the configs derived from
// it: model init, the training loop, the evaluation loop, the mel-spectrogram
// frontend and the two data pipelines. Derived configs only hold references
// into the base, so sweeping or overriding a base value after assembly moves
// every consumer together.
//
// # Nodes
//
// Build defines these nodes, in this order:
//
//	base           shared parameters, see BaseDefaults
//	init           input_shape, learning_rate, rng_seed, target_class_list
//	train          num_train_steps, log_every_steps, checkpoint_every_steps
//	eval           num_train_steps, eval_steps_per_checkpoint, tflite_export
//	frontend       config: the frontend.MelSpectrogram call
//	train_dataset  the training pipeline
//	eval_dataset   the evaluation pipeline
//
// Resolve produces the terminal form and checks it: pipeline stage order
// and every call against the kind registry.
package preset
