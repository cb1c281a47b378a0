// Package fpn implements feature-pyramid fusion over a bottom-up
// backbone, plus the texture-transfer refinement that synthesizes a
// finer pyramid level.
//
// The pyramid combines multi-scale backbone features via lateral 1x1
// projections and a top-down nearest-neighbor pathway, following
// "Feature Pyramid Networks for Object Detection" (Lin et al., 2017).
package fpn

import (
	"fmt"
	"math/bits"

	"github.com/born-ml/pyramid/internal/nn"
	"github.com/born-ml/pyramid/internal/tensor"
)

// FuseMode selects how lateral and top-down features combine.
type FuseMode int

const (
	// FuseSum adds the lateral and upsampled top-down features.
	FuseSum FuseMode = iota

	// FuseAvg adds them and divides by the constant 2. Division is by
	// the fixed constant, not by a contributor count; fusion is always
	// pairwise so the two coincide.
	FuseAvg
)

// String returns the configuration-surface name of the mode.
func (m FuseMode) String() string {
	switch m {
	case FuseSum:
		return "sum"
	case FuseAvg:
		return "avg"
	default:
		return fmt.Sprintf("FuseMode(%d)", int(m))
	}
}

// Observer is called with the complete output mapping after every
// successful forward pass. Intended for debugging and visualization
// tooling; the forward pass itself performs no I/O.
type Observer[B tensor.Backend] func(outputs map[string]*tensor.Tensor[float32, B])

// FPN builds a top-down lateral-fusion pyramid from bottom-up
// multi-scale features.
//
// Each configured input level gets a lateral 1x1 projection into the
// common channel width and a 3x3 output convolution. The forward pass
// walks the levels from coarse to fine, upsampling the running
// top-down feature 2x at each step and fusing it with the lateral
// projection.
//
// Output levels are named "p<k>" where the level's stride is 2^k.
// All construction-time state is immutable after NewFPN returns;
// forward passes share no mutable state and may run concurrently.
type FPN[B tensor.Backend] struct {
	bottomUp    Backbone[B]
	inFeatures  []string // fine to coarse
	outChannels int
	fuse        FuseMode
	topBlock    TopBlock[B] // may be nil
	backend     B

	// Convolutions in top-down order (coarse to fine), matching the
	// forward iteration.
	lateralConvs []*nn.ConvNorm[B]
	outputConvs  []*nn.ConvNorm[B]

	outFeatures      []string // fine to coarse, top-block levels last
	outStrides       map[string]int
	sizeDivisibility int

	observer Observer[B]
}

// NewFPN constructs a pyramid over the given backbone.
//
// inFeatures names a contiguous sub-range of the backbone's levels,
// ordered from high to low resolution: their strides must double from
// one entry to the next. outChannels is the uniform channel width of
// every pyramid level. norm selects the per-conv normalization
// (nn.NormNone or nn.NormBatchNorm); convolutions carry a bias exactly
// when norm is none. topBlock may be nil.
//
// Returns ErrConfig for an empty level list, a level missing from the
// backbone, non-log2-contiguous strides, an unknown norm, or a
// non-positive channel count.
func NewFPN[B tensor.Backend](
	bottomUp Backbone[B],
	inFeatures []string,
	outChannels int,
	norm string,
	topBlock TopBlock[B],
	fuse FuseMode,
	backend B,
) (*FPN[B], error) {
	if len(inFeatures) == 0 {
		return nil, fmt.Errorf("%w: empty input feature list", ErrConfig)
	}
	if outChannels <= 0 {
		return nil, fmt.Errorf("%w: output channels must be positive, got %d", ErrConfig, outChannels)
	}
	if !nn.ValidNorm(norm) {
		return nil, fmt.Errorf("%w: unknown norm %q", ErrConfig, norm)
	}
	if fuse != FuseSum && fuse != FuseAvg {
		return nil, fmt.Errorf("%w: unknown fuse mode %d", ErrConfig, int(fuse))
	}

	inputShapes := bottomUp.OutputShape()
	stages := make([]int, len(inFeatures))
	channels := make([]int, len(inFeatures))
	for i, name := range inFeatures {
		spec, ok := inputShapes[name]
		if !ok {
			return nil, fmt.Errorf("%w: backbone has no feature %q", ErrConfig, name)
		}
		stage, err := strideStage(spec.Stride)
		if err != nil {
			return nil, fmt.Errorf("%w: feature %q: %v", ErrConfig, name, err)
		}
		if i > 0 && spec.Stride != 2*inputShapes[inFeatures[i-1]].Stride {
			return nil, fmt.Errorf("%w: strides %d and %d of features %q, %q are not log2 contiguous",
				ErrConfig, inputShapes[inFeatures[i-1]].Stride, spec.Stride, inFeatures[i-1], name)
		}
		stages[i] = stage
		channels[i] = spec.Channels
	}

	useBias := norm == nn.NormNone

	// Built fine to coarse, then reversed into top-down order.
	lateralConvs := make([]*nn.ConvNorm[B], 0, len(inFeatures))
	outputConvs := make([]*nn.ConvNorm[B], 0, len(inFeatures))
	for i := range inFeatures {
		lateralConvs = append(lateralConvs,
			nn.NewConvNorm(channels[i], outChannels, 1, 1, 0, useBias, norm, backend))
		outputConvs = append(outputConvs,
			nn.NewConvNorm(outChannels, outChannels, 3, 1, 1, useBias, norm, backend))
	}
	reverse(lateralConvs)
	reverse(outputConvs)

	outFeatures := make([]string, 0, len(inFeatures)+4)
	outStrides := make(map[string]int, len(inFeatures)+4)
	for _, stage := range stages {
		name := fmt.Sprintf("p%d", stage)
		outFeatures = append(outFeatures, name)
		outStrides[name] = 1 << stage
	}
	if topBlock != nil {
		lastStage := stages[len(stages)-1]
		for s := lastStage + 1; s <= lastStage+topBlock.NumLevels(); s++ {
			name := fmt.Sprintf("p%d", s)
			outFeatures = append(outFeatures, name)
			outStrides[name] = 1 << s
		}
	}

	return &FPN[B]{
		bottomUp:         bottomUp,
		inFeatures:       append([]string(nil), inFeatures...),
		outChannels:      outChannels,
		fuse:             fuse,
		topBlock:         topBlock,
		backend:          backend,
		lateralConvs:     lateralConvs,
		outputConvs:      outputConvs,
		outFeatures:      outFeatures,
		outStrides:       outStrides,
		sizeDivisibility: 1 << stages[len(stages)-1],
	}, nil
}

// Forward runs the backbone and fuses its features into the pyramid.
//
// Returns the mapping from registered level names to tensors of
// uniform channel width. Returns ErrShape when the backbone omits a
// configured level and ErrInternal when the produced level set
// diverges from the registered one.
func (f *FPN[B]) Forward(x *tensor.Tensor[float32, B]) (map[string]*tensor.Tensor[float32, B], error) {
	bottomUpFeatures, err := f.bottomUp.Forward(x)
	if err != nil {
		return nil, fmt.Errorf("backbone forward: %w", err)
	}

	// Top-down order: coarsest level first.
	topDown := make([]*tensor.Tensor[float32, B], len(f.inFeatures))
	for i, name := range f.inFeatures {
		feat, ok := bottomUpFeatures[name]
		if !ok {
			return nil, fmt.Errorf("%w: backbone produced no feature %q", ErrShape, name)
		}
		topDown[len(f.inFeatures)-1-i] = feat
	}

	// results holds core pyramid levels in fine-to-coarse order,
	// matching outFeatures.
	results := make([]*tensor.Tensor[float32, B], len(topDown), len(f.outFeatures))
	prev := f.lateralConvs[0].Forward(topDown[0])
	results[len(results)-1] = f.outputConvs[0].Forward(prev)

	for i := 1; i < len(topDown); i++ {
		upsampled := tensor.New[float32, B](f.backend.UpsampleNearest2D(prev.Raw(), 2), f.backend)
		lateral := f.lateralConvs[i].Forward(topDown[i])
		prev = lateral.Add(upsampled)
		if f.fuse == FuseAvg {
			prev = prev.DivScalar(2)
		}
		results[len(results)-1-i] = f.outputConvs[i].Forward(prev)
	}

	if f.topBlock != nil {
		// The top block input may be a raw backbone level or one of
		// the pyramid outputs produced above; backbone levels win.
		in, ok := bottomUpFeatures[f.topBlock.InFeature()]
		if !ok {
			for i, name := range f.outFeatures[:len(results)] {
				if name == f.topBlock.InFeature() {
					in = results[i]
					ok = true
					break
				}
			}
		}
		if !ok {
			return nil, fmt.Errorf("%w: top block input %q not found among backbone or pyramid outputs",
				ErrShape, f.topBlock.InFeature())
		}
		results = append(results, f.topBlock.Forward(in)...)
	}

	if len(results) != len(f.outFeatures) {
		return nil, fmt.Errorf("%w: produced %d levels, registered %d",
			ErrInternal, len(results), len(f.outFeatures))
	}

	outputs := make(map[string]*tensor.Tensor[float32, B], len(results))
	for i, name := range f.outFeatures {
		if results[i] == nil {
			return nil, fmt.Errorf("%w: level %q was registered but not produced", ErrInternal, name)
		}
		outputs[name] = results[i]
	}

	if f.observer != nil {
		f.observer(outputs)
	}
	return outputs, nil
}

// OutputShape returns the structural descriptor of every pyramid
// level, available before any forward pass.
func (f *FPN[B]) OutputShape() map[string]ShapeSpec {
	shapes := make(map[string]ShapeSpec, len(f.outFeatures))
	for _, name := range f.outFeatures {
		shapes[name] = ShapeSpec{Channels: f.outChannels, Stride: f.outStrides[name]}
	}
	return shapes
}

// OutFeatures returns the registered level names from highest to
// lowest resolution, top-block levels last.
func (f *FPN[B]) OutFeatures() []string {
	return append([]string(nil), f.outFeatures...)
}

// SizeDivisibility returns the coarsest input level's stride. Input
// images must be padded so both spatial dimensions are multiples of
// this value before reaching the backbone.
func (f *FPN[B]) SizeDivisibility() int {
	return f.sizeDivisibility
}

// Parameters returns all convolution parameters in deterministic
// order: per level from coarse to fine, lateral conv then output conv.
func (f *FPN[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	for i := range f.lateralConvs {
		params = append(params, f.lateralConvs[i].Parameters()...)
		params = append(params, f.outputConvs[i].Parameters()...)
	}
	return params
}

// SetObserver installs a hook called with the output mapping after
// every successful forward pass. Pass nil to remove it.
func (f *FPN[B]) SetObserver(obs Observer[B]) {
	f.observer = obs
}

// strideStage returns k such that stride == 2^k.
func strideStage(stride int) (int, error) {
	if stride <= 0 {
		return 0, fmt.Errorf("stride %d is not positive", stride)
	}
	stage := bits.TrailingZeros(uint(stride))
	if 1<<stage != stride {
		return 0, fmt.Errorf("stride %d is not a power of two", stride)
	}
	return stage, nil
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
