// Package frontend derives the signal-processing parameters of the
// mel-spectrogram frontend from a handful of base parameters and describes
// the frontend as a deferred call.
//
// The derivation is fixed-ratio arithmetic: the stride is one frame's worth
// of samples, the kernel spans two strides (50% overlap, which gives no
// amplitude distortion under a Hann window) and the transform size is the
// smallest power of two on a fixed ladder that holds the kernel.
package frontend
