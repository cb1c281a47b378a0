package fpn

import (
	"github.com/born-ml/pyramid/internal/nn"
	"github.com/born-ml/pyramid/internal/tensor"
)

// TopBlock extends the pyramid with extra levels below the coarsest
// one.
//
// The capability contract is declared up front: NumLevels is the exact
// count of tensors Forward returns, and InFeature names the level the
// block consumes. FPN uses both at construction time to pre-register
// the extra output names before any forward pass occurs.
type TopBlock[B tensor.Backend] interface {
	// NumLevels returns how many extra levels Forward produces.
	NumLevels() int

	// InFeature returns the name of the level this block consumes,
	// either a pyramid output (e.g. "p5") or a raw backbone level.
	InFeature() string

	// Forward produces exactly NumLevels further-downsampled tensors.
	Forward(x *tensor.Tensor[float32, B]) []*tensor.Tensor[float32, B]
}

// LastLevelMaxPool is the canonical TopBlock: a kernel-1 stride-2 max
// pool that subsamples its input into a single extra level with
// doubled stride.
type LastLevelMaxPool[B tensor.Backend] struct {
	inFeature string
	pool      *nn.MaxPool2D[B]
}

// NewLastLevelMaxPool creates the standard one-level top block reading
// from the named pyramid level.
func NewLastLevelMaxPool[B tensor.Backend](inFeature string, backend B) *LastLevelMaxPool[B] {
	return &LastLevelMaxPool[B]{
		inFeature: inFeature,
		pool:      nn.NewMaxPool2D(1, 2, backend),
	}
}

// NumLevels returns 1.
func (l *LastLevelMaxPool[B]) NumLevels() int {
	return 1
}

// InFeature returns the name of the consumed pyramid level.
func (l *LastLevelMaxPool[B]) InFeature() string {
	return l.inFeature
}

// Forward subsamples x by 2 in both spatial dimensions.
func (l *LastLevelMaxPool[B]) Forward(x *tensor.Tensor[float32, B]) []*tensor.Tensor[float32, B] {
	return []*tensor.Tensor[float32, B]{l.pool.Forward(x)}
}
