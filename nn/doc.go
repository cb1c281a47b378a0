// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides neural network layers and building blocks.
//
// # Overview
//
// This package contains:
//   - Layers: Conv2D, BatchNorm2D, ConvNorm, MaxPool2D
//   - Activations: ReLU
//   - Utilities: Module interface, Parameter
//   - Initialization: Xavier, Zeros, Ones
//
// All layers run in inference mode: batch normalization applies its stored
// running statistics, and no gradients are tracked.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/pyramid/nn"
//	    "github.com/born-ml/pyramid/backend/cpu"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    conv := nn.NewConvNorm(64, 64, 3, 1, 1, false, nn.NormBatchNorm, backend)
//	    relu := nn.NewReLU[*cpu.Backend]()
//
//	    // Forward pass
//	    output := relu.Forward(conv.Forward(input))
//	}
//
// # Layers
//
// Conv2D: 2D convolutional layer with im2col algorithm and a square kernel
//
//	conv := nn.NewConv2D(inChannels, outChannels, kernelSize, stride, padding, useBias, backend)
//
// BatchNorm2D: inference-mode batch normalization over channels
//
//	bn := nn.NewBatchNorm2D(numFeatures, backend)
//
// ConvNorm: convolution with an attached normalization layer
//
//	block := nn.NewConvNorm(in, out, 3, 1, 1, false, nn.NormBatchNorm, backend)
//
// MaxPool2D: 2D max pooling layer
//
//	pool := nn.NewMaxPool2D(kernelSize, stride, backend)
//
// # Parameter Management
//
// Access layer parameters for inspection or weight loading:
//
//	params := conv.Parameters()
//	for _, param := range params {
//	    fmt.Println(param.Name(), param.Tensor().Shape())
//	}
//
// Weights trained elsewhere are installed with SetTensor:
//
//	params[0].SetTensor(weight)
package nn
