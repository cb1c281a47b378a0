package fpn

import (
	"fmt"

	"github.com/born-ml/pyramid/internal/nn"
	"github.com/born-ml/pyramid/internal/parallel"
	"github.com/born-ml/pyramid/internal/tensor"
)

// DefaultFTTIterations is the refinement iteration count used when
// NewFTT is given a non-positive value.
const DefaultFTTIterations = 3

// FTT synthesizes a refined high-resolution level by texture transfer:
// a content signal carried up from the coarser p3 level is fused with
// texture detail already present at the finer p2 level.
//
// Per-sample pipeline:
//  1. Channel-scale the p3 sample from C to 4C (1x1 conv, no bias, no
//     norm) and run the content extractor on 4C channels.
//  2. Pixel-shuffle with r=2, yielding the C-channel, 2x-upsampled
//     "bottom" tensor at p2 resolution.
//  3. Concatenate bottom with the native p2 sample (bottom first) and
//     run the texture extractor on the 2C channels.
//  4. Duplicate bottom along channels to the same 2C width and add it
//     to the texture-extractor output.
//
// Samples are independent; they are processed in parallel and returned
// as an ordered per-sample sequence rather than re-stacked into a
// batch tensor.
type FTT[B tensor.Backend] struct {
	channels   int
	iterations int

	channelScaler    *nn.ConvNorm[B]
	contentExtractor *Extractor[B]
	textureExtractor *Extractor[B]
	subPixel         *SubPixel[B]
	backend          B
}

// NewFTT creates a texture-transfer module for the two pyramid levels
// described by p2 and p3.
//
// Both levels must have the same channel count and p3's stride must be
// double p2's; violations return ErrConfig. norm selects the extractor
// normalization; iterations <= 0 selects DefaultFTTIterations.
func NewFTT[B tensor.Backend](p2, p3 ShapeSpec, norm string, iterations int, backend B) (*FTT[B], error) {
	if p2.Channels != p3.Channels {
		return nil, fmt.Errorf("%w: texture transfer requires equal channel counts, got p2=%d, p3=%d",
			ErrConfig, p2.Channels, p3.Channels)
	}
	if p2.Channels <= 0 {
		return nil, fmt.Errorf("%w: texture transfer channels must be positive, got %d", ErrConfig, p2.Channels)
	}
	if p3.Stride != 2*p2.Stride {
		return nil, fmt.Errorf("%w: texture transfer requires p3 stride double p2 stride, got p2=%d, p3=%d",
			ErrConfig, p2.Stride, p3.Stride)
	}
	if !nn.ValidNorm(norm) {
		return nil, fmt.Errorf("%w: unknown norm %q", ErrConfig, norm)
	}
	if iterations <= 0 {
		iterations = DefaultFTTIterations
	}

	c := p2.Channels
	subPixel, err := NewSubPixel(4*c, 2, backend)
	if err != nil {
		return nil, err
	}

	return &FTT[B]{
		channels:         c,
		iterations:       iterations,
		channelScaler:    nn.NewConvNorm(c, 4*c, 1, 1, 0, false, nn.NormNone, backend),
		contentExtractor: NewExtractor(4*c, iterations, norm, backend),
		textureExtractor: NewExtractor(2*c, iterations, norm, backend),
		subPixel:         subPixel,
		backend:          backend,
	}, nil
}

// Forward refines one batch.
//
// Both inputs must be rank-4 [N, C, H, W] with matching batch size,
// the configured channel count, and p2 spatially double p3; violations
// return ErrShape. The result holds one [2C, 2*H3, 2*W3] tensor per
// sample, in batch order.
func (f *FTT[B]) Forward(p2, p3 *tensor.Tensor[float32, B]) ([]*tensor.Tensor[float32, B], error) {
	p2Shape := p2.Shape()
	p3Shape := p3.Shape()
	if len(p2Shape) != 4 {
		return nil, fmt.Errorf("%w: texture transfer p2 input must be 4D [N,C,H,W], got %dD", ErrShape, len(p2Shape))
	}
	if len(p3Shape) != 4 {
		return nil, fmt.Errorf("%w: texture transfer p3 input must be 4D [N,C,H,W], got %dD", ErrShape, len(p3Shape))
	}
	if p2Shape[0] != p3Shape[0] {
		return nil, fmt.Errorf("%w: texture transfer batch sizes differ: p2=%d, p3=%d", ErrShape, p2Shape[0], p3Shape[0])
	}
	if p2Shape[1] != f.channels || p3Shape[1] != f.channels {
		return nil, fmt.Errorf("%w: texture transfer inputs must have %d channels, got p2=%d, p3=%d",
			ErrShape, f.channels, p2Shape[1], p3Shape[1])
	}
	if p2Shape[2] != 2*p3Shape[2] || p2Shape[3] != 2*p3Shape[3] {
		return nil, fmt.Errorf("%w: texture transfer p2 spatial dims %dx%d are not double p3's %dx%d",
			ErrShape, p2Shape[2], p2Shape[3], p3Shape[2], p3Shape[3])
	}

	n := p2Shape[0]
	p2Samples := p2.Chunk(n, 0)
	p3Samples := p3.Chunk(n, 0)

	results := make([]*tensor.Tensor[float32, B], n)
	errs := make([]error, n)
	parallel.For(n, func(i int) {
		bottom := f.channelScaler.Forward(p3Samples[i])
		bottom = f.contentExtractor.Forward(bottom)

		up, err := f.subPixel.Forward(bottom)
		if err != nil {
			errs[i] = err
			return
		}

		wrapped := tensor.Cat([]*tensor.Tensor[float32, B]{up, p2Samples[i]}, 1)
		textured := f.textureExtractor.Forward(wrapped)

		doubled := tensor.Cat([]*tensor.Tensor[float32, B]{up, up}, 1)
		results[i] = doubled.Add(textured).Squeeze(0)
	}, parallel.Coarse())

	for i, err := range errs {
		if err != nil {
			// Preconditions were checked above, so a per-sample
			// failure means the pipeline itself is inconsistent.
			return nil, fmt.Errorf("%w: sample %d: %v", ErrInternal, i, err)
		}
	}
	return results, nil
}

// Channels returns the per-level channel count C the module was
// constructed for; refined samples carry 2C channels.
func (f *FTT[B]) Channels() int {
	return f.channels
}

// Iterations returns the extractor refinement iteration count.
func (f *FTT[B]) Iterations() int {
	return f.iterations
}

// Parameters returns the channel scaler's parameters followed by the
// content and texture extractors'.
func (f *FTT[B]) Parameters() []*nn.Parameter[B] {
	params := f.channelScaler.Parameters()
	params = append(params, f.contentExtractor.Parameters()...)
	params = append(params, f.textureExtractor.Parameters()...)
	return params
}
