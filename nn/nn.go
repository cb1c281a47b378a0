// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/pyramid/internal/nn"
	"github.com/born-ml/pyramid/internal/tensor"
)

// Module interface defines the common interface for all neural network modules.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter represents a learnable parameter in a neural network.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Layers

// Conv2D represents a 2D convolutional layer with a square kernel.
type Conv2D[B tensor.Backend] = nn.Conv2D[B]

// NewConv2D creates a new 2D convolutional layer with Xavier initialization.
//
// Example:
//
//	backend := cpu.New()
//	conv := nn.NewConv2D(3, 32, 3, 1, 1, true, backend)  // in_channels=3, out_channels=32, kernel=3x3, stride=1, padding=1, useBias=true
func NewConv2D[B tensor.Backend](
	inChannels, outChannels int,
	kernelSize, stride, padding int,
	useBias bool,
	backend B,
) *Conv2D[B] {
	return nn.NewConv2D(inChannels, outChannels, kernelSize, stride, padding, useBias, backend)
}

// BatchNorm2D represents an inference-mode 2D batch normalization layer.
type BatchNorm2D[B tensor.Backend] = nn.BatchNorm2D[B]

// NewBatchNorm2D creates a new batch normalization layer for [N, C, H, W]
// inputs, initialized to the identity transform.
//
// Example:
//
//	backend := cpu.New()
//	bn := nn.NewBatchNorm2D(32, backend)
func NewBatchNorm2D[B tensor.Backend](numFeatures int, backend B) *BatchNorm2D[B] {
	return nn.NewBatchNorm2D(numFeatures, backend)
}

// Normalization selectors accepted by NewConvNorm.
const (
	NormNone      = nn.NormNone
	NormBatchNorm = nn.NormBatchNorm
)

// ValidNorm reports whether norm names a supported normalization.
func ValidNorm(norm string) bool {
	return nn.ValidNorm(norm)
}

// ConvNorm represents a convolution followed by an optional normalization.
type ConvNorm[B tensor.Backend] = nn.ConvNorm[B]

// NewConvNorm creates a convolution with an attached normalization layer.
// It panics when norm is not one of the Norm* constants.
//
// Example:
//
//	backend := cpu.New()
//	block := nn.NewConvNorm(64, 64, 3, 1, 1, false, nn.NormBatchNorm, backend)
func NewConvNorm[B tensor.Backend](
	inChannels, outChannels int,
	kernelSize, stride, padding int,
	useBias bool,
	norm string,
	backend B,
) *ConvNorm[B] {
	return nn.NewConvNorm(inChannels, outChannels, kernelSize, stride, padding, useBias, norm, backend)
}

// MaxPool2D represents a 2D max pooling layer.
type MaxPool2D[B tensor.Backend] = nn.MaxPool2D[B]

// NewMaxPool2D creates a new 2D max pooling layer.
//
// Example:
//
//	backend := cpu.New()
//	pool := nn.NewMaxPool2D(2, 2, backend)  // kernel=2, stride=2
func NewMaxPool2D[B tensor.Backend](kernelSize, stride int, backend B) *MaxPool2D[B] {
	return nn.NewMaxPool2D(kernelSize, stride, backend)
}

// Activations

// ReLU represents the Rectified Linear Unit activation function.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a new ReLU activation layer.
//
// Example:
//
//	relu := nn.NewReLU[B]()
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// Initialization functions

// Xavier creates a tensor initialized with Xavier/Glorot uniform initialization.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Xavier(fanIn, fanOut, shape, backend)
}

// Zeros creates a zero-initialized float32 tensor.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Zeros(shape, backend)
}

// Ones creates a one-initialized float32 tensor.
func Ones[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.Ones(shape, backend)
}
