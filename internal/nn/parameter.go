package nn

import (
	"github.com/born-ml/pyramid/internal/tensor"
)

// Parameter is a named tensor owned by a layer, such as a convolution
// weight or a normalization scale.
//
// The library runs inference-only, so parameters carry no gradient
// state; their values either come from initialization or are copied in
// from a trained model.
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
}

// NewParameter creates a parameter wrapping an initialized tensor.
//
// The name is descriptive and used for inspection only
// (e.g. "fpn_lateral4.weight").
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{name: name, tensor: t}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// SetTensor replaces the parameter value. The new tensor must have the
// same shape as the current one.
func (p *Parameter[B]) SetTensor(t *tensor.Tensor[float32, B]) {
	if !p.tensor.Shape().Equal(t.Shape()) {
		panic("parameter: replacement tensor shape mismatch")
	}
	p.tensor = t
}
