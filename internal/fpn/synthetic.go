package fpn

import (
	"fmt"

	"github.com/born-ml/pyramid/internal/nn"
	"github.com/born-ml/pyramid/internal/tensor"
)

// SyntheticLevel describes one output level of a SyntheticBackbone.
type SyntheticLevel struct {
	Name     string
	Channels int
	Stride   int
}

// SyntheticBackbone is a minimal stand-in for a real feature
// extractor, used by tests and the demo CLI. Each level is a single
// strided 1x1 convolution of the input, so outputs have exactly the
// declared channel count and stride, and a zero input maps to zero
// features at every level.
type SyntheticBackbone[B tensor.Backend] struct {
	inChannels int
	levels     []SyntheticLevel
	convs      []*nn.Conv2D[B]
}

// NewSyntheticBackbone creates a synthetic backbone consuming
// inChannels-channel images. Returns ErrConfig for an empty level
// list, duplicate names, or non-positive channel or stride values.
func NewSyntheticBackbone[B tensor.Backend](inChannels int, levels []SyntheticLevel, backend B) (*SyntheticBackbone[B], error) {
	if inChannels <= 0 {
		return nil, fmt.Errorf("%w: synthetic backbone input channels must be positive, got %d", ErrConfig, inChannels)
	}
	if len(levels) == 0 {
		return nil, fmt.Errorf("%w: synthetic backbone needs at least one level", ErrConfig)
	}

	seen := make(map[string]bool, len(levels))
	convs := make([]*nn.Conv2D[B], len(levels))
	for i, lvl := range levels {
		if lvl.Channels <= 0 || lvl.Stride <= 0 {
			return nil, fmt.Errorf("%w: synthetic level %q has channels=%d, stride=%d",
				ErrConfig, lvl.Name, lvl.Channels, lvl.Stride)
		}
		if seen[lvl.Name] {
			return nil, fmt.Errorf("%w: duplicate synthetic level %q", ErrConfig, lvl.Name)
		}
		seen[lvl.Name] = true
		convs[i] = nn.NewConv2D(inChannels, lvl.Channels, 1, lvl.Stride, 0, true, backend)
	}

	return &SyntheticBackbone[B]{
		inChannels: inChannels,
		levels:     append([]SyntheticLevel(nil), levels...),
		convs:      convs,
	}, nil
}

// OutputShape returns the declared level descriptors.
func (s *SyntheticBackbone[B]) OutputShape() map[string]ShapeSpec {
	shapes := make(map[string]ShapeSpec, len(s.levels))
	for _, lvl := range s.levels {
		shapes[lvl.Name] = ShapeSpec{Channels: lvl.Channels, Stride: lvl.Stride}
	}
	return shapes
}

// Forward computes every level from the input batch.
//
// The input must be [N, inChannels, H, W] with H and W divisible by
// every level stride; violations return ErrShape.
func (s *SyntheticBackbone[B]) Forward(x *tensor.Tensor[float32, B]) (map[string]*tensor.Tensor[float32, B], error) {
	shape := x.Shape()
	if len(shape) != 4 {
		return nil, fmt.Errorf("%w: synthetic backbone input must be 4D [N,C,H,W], got %dD", ErrShape, len(shape))
	}
	if shape[1] != s.inChannels {
		return nil, fmt.Errorf("%w: synthetic backbone input has %d channels, expected %d",
			ErrShape, shape[1], s.inChannels)
	}

	features := make(map[string]*tensor.Tensor[float32, B], len(s.levels))
	for i, lvl := range s.levels {
		if shape[2]%lvl.Stride != 0 || shape[3]%lvl.Stride != 0 {
			return nil, fmt.Errorf("%w: input %dx%d not divisible by stride %d of level %q",
				ErrShape, shape[2], shape[3], lvl.Stride, lvl.Name)
		}
		features[lvl.Name] = s.convs[i].Forward(x)
	}
	return features, nil
}
