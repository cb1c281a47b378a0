// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package fpn

import (
	"github.com/born-ml/pyramid/internal/fpn"
	"github.com/born-ml/pyramid/internal/nn"
	"github.com/born-ml/pyramid/internal/tensor"
)

// Sentinel errors returned by pyramid constructors and forward passes.
// Wrapped errors carry detail; match them with errors.Is.
var (
	ErrConfig   = fpn.ErrConfig
	ErrShape    = fpn.ErrShape
	ErrInternal = fpn.ErrInternal
)

// ShapeSpec describes one backbone output: channel count and stride
// relative to the network input.
type ShapeSpec = fpn.ShapeSpec

// Backbone is the contract a feature extractor must satisfy to feed a
// pyramid: a static shape declaration and a forward pass producing the
// declared feature maps.
type Backbone[B tensor.Backend] = fpn.Backbone[B]

// FuseMode selects how top-down and lateral signals are combined.
type FuseMode = fpn.FuseMode

// Fusion modes.
const (
	FuseSum FuseMode = fpn.FuseSum
	FuseAvg FuseMode = fpn.FuseAvg
)

// Observer is invoked with the pyramid outputs after each successful
// forward pass.
type Observer[B tensor.Backend] = fpn.Observer[B]

// FPN builds a feature pyramid from multi-scale backbone features using
// lateral 1x1 convolutions and a top-down pathway.
type FPN[B tensor.Backend] = fpn.FPN[B]

// NewFPN creates a feature pyramid over the named backbone features.
//
// Example:
//
//	backend := cpu.New()
//	pyramid, err := fpn.NewFPN(backbone, []string{"res2", "res3", "res4"},
//	    256, nn.NormNone, fpn.NewLastLevelMaxPool("p4", backend),
//	    fpn.FuseSum, backend)
func NewFPN[B tensor.Backend](
	bottomUp Backbone[B],
	inFeatures []string,
	outChannels int,
	norm string,
	topBlock TopBlock[B],
	fuse FuseMode,
	backend B,
) (*FPN[B], error) {
	return fpn.NewFPN(bottomUp, inFeatures, outChannels, norm, topBlock, fuse, backend)
}

// TopBlock extends a pyramid with extra coarse levels computed from one
// named input feature.
type TopBlock[B tensor.Backend] = fpn.TopBlock[B]

// LastLevelMaxPool is the standard single-level top block: a stride-2 max
// pool appended after the coarsest pyramid output.
type LastLevelMaxPool[B tensor.Backend] = fpn.LastLevelMaxPool[B]

// NewLastLevelMaxPool creates a top block that downsamples the named
// feature with a 1x1 stride-2 max pool.
func NewLastLevelMaxPool[B tensor.Backend](inFeature string, backend B) *LastLevelMaxPool[B] {
	return fpn.NewLastLevelMaxPool(inFeature, backend)
}

// SubPixel rearranges channel blocks into spatial resolution
// (pixel shuffle) and back.
type SubPixel[B tensor.Backend] = fpn.SubPixel[B]

// NewSubPixel creates a sub-pixel upsampler for inChannels inputs and an
// upscale factor. inChannels must be divisible by factor squared.
func NewSubPixel[B tensor.Backend](inChannels, factor int, backend B) (*SubPixel[B], error) {
	return fpn.NewSubPixel(inChannels, factor, backend)
}

// Extractor is a small residual-free convolutional block applied
// repeatedly to refine features.
type Extractor[B tensor.Backend] = fpn.Extractor[B]

// NewExtractor creates an iterated two-convolution feature extractor.
func NewExtractor[B tensor.Backend](channels, iterations int, norm string, backend B) *Extractor[B] {
	return fpn.NewExtractor(channels, iterations, norm, backend)
}

// DefaultFTTIterations is the extractor iteration count used when a
// non-positive count is requested.
const DefaultFTTIterations = fpn.DefaultFTTIterations

// FTT is the feature texture transfer module: it super-resolves the
// coarse p3 level with sub-pixel convolution and injects texture from the
// finer p2 level.
type FTT[B tensor.Backend] = fpn.FTT[B]

// NewFTT creates a feature texture transfer module for the given p2 and
// p3 level shapes.
//
// Example:
//
//	ftt, err := fpn.NewFTT(
//	    fpn.ShapeSpec{Channels: 256, Stride: 4},
//	    fpn.ShapeSpec{Channels: 256, Stride: 8},
//	    nn.NormNone, 0, backend)
func NewFTT[B tensor.Backend](p2, p3 ShapeSpec, norm string, iterations int, backend B) (*FTT[B], error) {
	return fpn.NewFTT(p2, p3, norm, iterations, backend)
}

// SyntheticLevel declares one output of a synthetic backbone.
type SyntheticLevel = fpn.SyntheticLevel

// SyntheticBackbone is a minimal multi-scale backbone built from strided
// 1x1 convolutions, useful for tests and examples.
type SyntheticBackbone[B tensor.Backend] = fpn.SyntheticBackbone[B]

// NewSyntheticBackbone creates a synthetic backbone producing the
// declared levels from an inChannels input.
func NewSyntheticBackbone[B tensor.Backend](inChannels int, levels []SyntheticLevel, backend B) (*SyntheticBackbone[B], error) {
	return fpn.NewSyntheticBackbone(inChannels, levels, backend)
}

// Parameter is the learnable parameter type returned by the Parameters
// methods, re-exported for weight loading.
type Parameter[B tensor.Backend] = nn.Parameter[B]
