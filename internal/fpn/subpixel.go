package fpn

import (
	"fmt"

	"github.com/born-ml/pyramid/internal/tensor"
)

// SubPixel performs pixel-shuffle upsampling: an exact, parameter-free
// rearrangement of channel blocks into spatial blocks.
//
// For an input of shape (Cin, H, W) with upscale factor r, the output
// has shape (Cin/r², rH, rW) and satisfies
//
//	out[c, i*r+di, j*r+dj] = in[c*r*r + di*r + dj, i, j]
//
// i.e. each group of r² input channels becomes one r x r spatial block,
// row-major. The mapping is bijective: Inverse reproduces the input
// exactly, element for element. A leading batch dimension, when
// present, is processed independently per element.
type SubPixel[B tensor.Backend] struct {
	inChannels  int
	outChannels int
	factor      int
	backend     B
}

// NewSubPixel creates an upsampler for inputs with inChannels channels
// and upscale factor r. Returns ErrConfig unless inChannels is
// divisible by r².
func NewSubPixel[B tensor.Backend](inChannels, factor int, backend B) (*SubPixel[B], error) {
	if inChannels <= 0 {
		return nil, fmt.Errorf("%w: sub-pixel input channels must be positive, got %d", ErrConfig, inChannels)
	}
	if factor <= 0 {
		return nil, fmt.Errorf("%w: sub-pixel upscale factor must be positive, got %d", ErrConfig, factor)
	}
	if inChannels%(factor*factor) != 0 {
		return nil, fmt.Errorf("%w: sub-pixel input channels %d not divisible by factor² = %d",
			ErrConfig, inChannels, factor*factor)
	}

	return &SubPixel[B]{
		inChannels:  inChannels,
		outChannels: inChannels / (factor * factor),
		factor:      factor,
		backend:     backend,
	}, nil
}

// Forward rearranges x from (*, Cin, H, W) to (*, Cin/r², rH, rW).
// Returns ErrShape when the rank or channel count does not match the
// construction contract.
func (s *SubPixel[B]) Forward(x *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	if err := s.checkChannels(x, s.inChannels); err != nil {
		return nil, err
	}
	return tensor.New[float32, B](s.backend.PixelShuffle(x.Raw(), s.factor), s.backend), nil
}

// Inverse applies the exact space-to-depth inverse, mapping
// (*, Cin/r², rH, rW) back to (*, Cin, H, W).
func (s *SubPixel[B]) Inverse(x *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	if err := s.checkChannels(x, s.outChannels); err != nil {
		return nil, err
	}
	shape := x.Shape()
	h, w := shape[len(shape)-2], shape[len(shape)-1]
	if h%s.factor != 0 || w%s.factor != 0 {
		return nil, fmt.Errorf("%w: sub-pixel inverse input %dx%d not divisible by factor %d",
			ErrShape, h, w, s.factor)
	}
	return tensor.New[float32, B](s.backend.SpaceToDepth(x.Raw(), s.factor), s.backend), nil
}

// InChannels returns the configured input channel count.
func (s *SubPixel[B]) InChannels() int {
	return s.inChannels
}

// OutChannels returns InChannels / factor².
func (s *SubPixel[B]) OutChannels() int {
	return s.outChannels
}

// Factor returns the upscale factor.
func (s *SubPixel[B]) Factor() int {
	return s.factor
}

func (s *SubPixel[B]) checkChannels(x *tensor.Tensor[float32, B], want int) error {
	shape := x.Shape()
	var c int
	switch len(shape) {
	case 3:
		c = shape[0]
	case 4:
		c = shape[1]
	default:
		return fmt.Errorf("%w: sub-pixel input must be 3D [C,H,W] or 4D [N,C,H,W], got %dD",
			ErrShape, len(shape))
	}
	if c != want {
		return fmt.Errorf("%w: sub-pixel input has %d channels, expected %d", ErrShape, c, want)
	}
	return nil
}
