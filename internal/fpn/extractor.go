package fpn

import (
	"github.com/born-ml/pyramid/internal/nn"
	"github.com/born-ml/pyramid/internal/tensor"
)

// Extractor is the refinement block shared by the texture-transfer
// content and texture paths: a fixed number of iterations of
// {1x1 conv -> ReLU -> 1x1 conv}, channel-preserving and bias-free.
//
// Each iteration's output replaces its input for the next; there is no
// residual accumulation.
type Extractor[B tensor.Backend] struct {
	conv1      *nn.ConvNorm[B]
	conv2      *nn.ConvNorm[B]
	relu       *nn.ReLU[B]
	iterations int
}

// NewExtractor creates a refinement block over the given channel
// width. norm selects the per-conv normalization; the convolutions
// never carry a bias regardless of norm.
func NewExtractor[B tensor.Backend](channels, iterations int, norm string, backend B) *Extractor[B] {
	return &Extractor[B]{
		conv1:      nn.NewConvNorm(channels, channels, 1, 1, 0, false, norm, backend),
		conv2:      nn.NewConvNorm(channels, channels, 1, 1, 0, false, norm, backend),
		relu:       nn.NewReLU[B](),
		iterations: iterations,
	}
}

// Forward applies the refinement iterations.
func (e *Extractor[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	out := x
	for i := 0; i < e.iterations; i++ {
		out = e.conv2.Forward(e.relu.Forward(e.conv1.Forward(out)))
	}
	return out
}

// Parameters returns both convolutions' parameters.
func (e *Extractor[B]) Parameters() []*nn.Parameter[B] {
	return append(e.conv1.Parameters(), e.conv2.Parameters()...)
}
