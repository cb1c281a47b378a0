package fpn

import (
	"github.com/born-ml/pyramid/internal/tensor"
)

// ShapeSpec is the structural descriptor of one feature level:
// its channel count and its spatial stride relative to the input
// image. Spatial dimensions are unknown until a forward pass runs.
type ShapeSpec struct {
	Channels int
	Stride   int
}

// Backbone is the bottom-up feature extractor the pyramid is built on.
//
// OutputShape must be callable before any forward pass and must agree
// with what Forward later produces: for every name, Forward returns a
// [batch, Channels, H/Stride, W/Stride] tensor where H and W are the
// input's spatial dimensions.
type Backbone[B tensor.Backend] interface {
	// OutputShape returns the structural descriptor of every feature
	// level the backbone produces, keyed by level name (e.g. "res2").
	OutputShape() map[string]ShapeSpec

	// Forward computes the named feature maps for one input batch.
	Forward(x *tensor.Tensor[float32, B]) (map[string]*tensor.Tensor[float32, B], error)
}
