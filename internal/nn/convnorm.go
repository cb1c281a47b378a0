package nn

import (
	"fmt"

	"github.com/born-ml/pyramid/internal/tensor"
)

// Norm selection strings accepted by NewConvNorm.
const (
	NormNone      = ""
	NormBatchNorm = "BN"
)

// ValidNorm reports whether norm names a supported normalization layer.
func ValidNorm(norm string) bool {
	return norm == NormNone || norm == NormBatchNorm
}

// ConvNorm is a convolution followed by an optional normalization
// layer, the standard building block of pyramid heads.
//
// The bias flag is independent of the normalization choice: callers
// that follow the usual convention drop the bias when normalization is
// present (the shift would be absorbed by it), but blocks that never
// use bias pass false regardless of norm.
type ConvNorm[B tensor.Backend] struct {
	conv *Conv2D[B]
	norm Module[B] // nil when norm == NormNone
}

// NewConvNorm creates a convolution with square kernel and an optional
// normalization layer appended.
//
// norm selects the normalization: NormNone for a bare convolution or
// NormBatchNorm for inference-mode batch normalization. Unknown norm
// strings panic; validate with ValidNorm where a soft failure is
// needed.
func NewConvNorm[B tensor.Backend](
	inChannels, outChannels, kernelSize, stride, padding int,
	useBias bool,
	norm string,
	backend B,
) *ConvNorm[B] {
	cn := &ConvNorm[B]{
		conv: NewConv2D(inChannels, outChannels, kernelSize, stride, padding, useBias, backend),
	}

	switch norm {
	case NormNone:
	case NormBatchNorm:
		cn.norm = NewBatchNorm2D(outChannels, backend)
	default:
		panic(fmt.Sprintf("convnorm: unknown norm %q", norm))
	}

	return cn
}

// Forward applies the convolution, then the normalization when present.
func (cn *ConvNorm[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	out := cn.conv.Forward(input)
	if cn.norm != nil {
		out = cn.norm.Forward(out)
	}
	return out
}

// Parameters returns the convolution parameters followed by the
// normalization parameters, when present.
func (cn *ConvNorm[B]) Parameters() []*Parameter[B] {
	params := cn.conv.Parameters()
	if cn.norm != nil {
		params = append(params, cn.norm.Parameters()...)
	}
	return params
}

// OutChannels returns the number of output channels.
func (cn *ConvNorm[B]) OutChannels() int {
	return cn.conv.OutChannels()
}

// String returns a string representation of the block.
func (cn *ConvNorm[B]) String() string {
	if cn.norm == nil {
		return cn.conv.String()
	}
	return fmt.Sprintf("%s + %v", cn.conv.String(), cn.norm)
}
