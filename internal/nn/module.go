// Package nn implements the neural network layers used by feature pyramids.
//
// This package provides the building blocks the pyramid heads are made of:
//   - Module interface: base interface for all NN components
//   - Parameter: named layer parameters
//   - Conv2D: 2D convolution with optional bias
//   - BatchNorm2D: inference-mode batch normalization
//   - ConvNorm: convolution fused with an optional normalization layer
//   - MaxPool2D, ReLU
//
// Design inspired by PyTorch's nn.Module but adapted for Go generics.
package nn

import (
	"github.com/born-ml/pyramid/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Every NN module must implement:
//   - Forward: compute output from input
//   - Parameters: return all parameters
//
// Modules can be composed to build pyramid heads:
//
//	lateral := nn.NewConv2D(256, 64, 1, 1, 0, true, backend)
//	out := lateral.Forward(feature)
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	//
	// The input tensor should have the appropriate shape for this module.
	// For example, Conv2D expects [batch, in_channels, height, width].
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all parameters of this module, including nested
	// module parameters, in a deterministic order. Returns an empty slice
	// for modules without parameters (e.g. activation functions).
	Parameters() []*Parameter[B]
}
