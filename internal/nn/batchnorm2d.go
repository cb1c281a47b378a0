package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/pyramid/internal/tensor"
)

// BatchNorm2D normalizes each channel of a [N, C, H, W] tensor using
// fixed statistics:
//
//	y = gamma * (x - running_mean) / sqrt(running_var + eps) + beta
//
// This is inference-mode batch normalization: the running statistics
// are parameters loaded from a trained model, never updated from the
// batch. With the identity initialization (gamma=1, beta=0, mean=0,
// var=1) the layer passes values through unchanged, which keeps fused
// pyramid levels comparable before weights are loaded.
type BatchNorm2D[B tensor.Backend] struct {
	numFeatures int
	eps         float32

	gamma       *Parameter[B] // [C] scale
	beta        *Parameter[B] // [C] shift
	runningMean *Parameter[B] // [C]
	runningVar  *Parameter[B] // [C]

	backend B
}

// NewBatchNorm2D creates an inference-mode batch normalization layer
// with identity initialization and eps=1e-5.
func NewBatchNorm2D[B tensor.Backend](numFeatures int, backend B) *BatchNorm2D[B] {
	if numFeatures <= 0 {
		panic(fmt.Sprintf("batchnorm2d: invalid feature count %d", numFeatures))
	}

	shape := tensor.Shape{numFeatures}
	return &BatchNorm2D[B]{
		numFeatures: numFeatures,
		eps:         1e-5,
		gamma:       NewParameter("batchnorm2d.weight", Ones(shape, backend)),
		beta:        NewParameter("batchnorm2d.bias", Zeros(shape, backend)),
		runningMean: NewParameter("batchnorm2d.running_mean", Zeros(shape, backend)),
		runningVar:  NewParameter("batchnorm2d.running_var", Ones(shape, backend)),
		backend:     backend,
	}
}

// Forward normalizes the input per channel.
//
// Input: [batch, num_features, height, width]
// Output: same shape.
func (bn *BatchNorm2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("batchnorm2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}
	if inputShape[1] != bn.numFeatures {
		panic(fmt.Sprintf("batchnorm2d: input channels %d != expected %d", inputShape[1], bn.numFeatures))
	}

	// Fold the four per-channel vectors into y = x*scale + shift with
	// scale = gamma/sqrt(var+eps) and shift = beta - mean*scale.
	gamma := bn.gamma.Tensor().Data()
	beta := bn.beta.Tensor().Data()
	mean := bn.runningMean.Tensor().Data()
	variance := bn.runningVar.Tensor().Data()

	scale := make([]float32, bn.numFeatures)
	shift := make([]float32, bn.numFeatures)
	for c := 0; c < bn.numFeatures; c++ {
		s := gamma[c] / float32(math.Sqrt(float64(variance[c])+float64(bn.eps)))
		scale[c] = s
		shift[c] = beta[c] - mean[c]*s
	}

	broadcastShape := tensor.Shape{1, bn.numFeatures, 1, 1}
	scaleT, err := tensor.FromSlice(scale, broadcastShape, bn.backend)
	if err != nil {
		panic(fmt.Sprintf("batchnorm2d: %v", err))
	}
	shiftT, err := tensor.FromSlice(shift, broadcastShape, bn.backend)
	if err != nil {
		panic(fmt.Sprintf("batchnorm2d: %v", err))
	}

	return input.Mul(scaleT).Add(shiftT)
}

// Parameters returns gamma, beta, running mean and running variance.
func (bn *BatchNorm2D[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{bn.gamma, bn.beta, bn.runningMean, bn.runningVar}
}

// String returns a string representation of the layer.
func (bn *BatchNorm2D[B]) String() string {
	return fmt.Sprintf("BatchNorm2D(num_features=%d, eps=%g)", bn.numFeatures, bn.eps)
}

// NumFeatures returns the channel count this layer normalizes.
func (bn *BatchNorm2D[B]) NumFeatures() int {
	return bn.numFeatures
}
