// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package fpn provides feature pyramid networks and feature texture
// transfer for multi-scale feature extraction.
//
// # Overview
//
// This package contains:
//   - FPN: lateral 1x1 + top-down feature pyramid over a Backbone
//   - TopBlock / LastLevelMaxPool: extra coarse pyramid levels
//   - SubPixel: pixel-shuffle upsampling and its inverse
//   - FTT: feature texture transfer between adjacent pyramid levels
//   - SyntheticBackbone: a minimal backbone for tests and examples
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/pyramid/backend/cpu"
//	    "github.com/born-ml/pyramid/fpn"
//	    "github.com/born-ml/pyramid/nn"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    backbone, err := fpn.NewSyntheticBackbone(3, []fpn.SyntheticLevel{
//	        {Name: "res2", Channels: 16, Stride: 4},
//	        {Name: "res3", Channels: 32, Stride: 8},
//	        {Name: "res4", Channels: 64, Stride: 16},
//	    }, backend)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    pyramid, err := fpn.NewFPN(backbone,
//	        []string{"res2", "res3", "res4"}, 256, nn.NormNone,
//	        fpn.NewLastLevelMaxPool("p4", backend), fpn.FuseSum, backend)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    outputs, err := pyramid.Forward(image) // map keyed "p2".."p5"
//	}
//
// # Level Naming
//
// Pyramid outputs are named "p<k>" where k is the base-2 logarithm of the
// level's stride: a stride-4 input feature produces "p2", stride-8
// produces "p3", and so on. Input strides must be powers of two and
// log2-contiguous.
//
// # Errors
//
// Constructors and forward passes return wrapped sentinel errors:
// ErrConfig for invalid construction arguments, ErrShape for inputs that
// do not match the declared shapes, and ErrInternal for broken internal
// postconditions. Match them with errors.Is.
//
// # Feature Texture Transfer
//
// FTT super-resolves the coarse p3 level to p2 resolution: a 1x1
// convolution widens p3 channels, a content extractor refines them, a
// sub-pixel shuffle trades channels for resolution, and a texture
// extractor over the concatenated fine features injects high-frequency
// detail.
//
//	ftt, err := fpn.NewFTT(
//	    fpn.ShapeSpec{Channels: 256, Stride: 4},
//	    fpn.ShapeSpec{Channels: 256, Stride: 8},
//	    nn.NormNone, 0, backend)
//	samples, err := ftt.Forward(outputs["p2"], outputs["p3"])
package fpn
