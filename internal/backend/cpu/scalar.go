package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/pyramid/internal/tensor"
)

// Scalar operations - element-wise operations with a scalar value.

// MulScalar multiplies each element of the tensor by a scalar value.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("mulScalar: failed to create result tensor: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		s := scalar.(float32)
		src := x.AsFloat32()
		dst := result.AsFloat32()
		for i := range src {
			dst[i] = src[i] * s
		}
	case tensor.Float64:
		floats.ScaleTo(result.AsFloat64(), scalar.(float64), x.AsFloat64())
	default:
		panic(fmt.Sprintf("mulScalar: unsupported dtype %v", x.DType()))
	}

	return result
}

// DivScalar divides each element of the tensor by a scalar value.
func (cpu *CPUBackend) DivScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("divScalar: failed to create result tensor: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		s := scalar.(float32)
		src := x.AsFloat32()
		dst := result.AsFloat32()
		for i := range src {
			dst[i] = src[i] / s
		}
	case tensor.Float64:
		s := scalar.(float64)
		src := x.AsFloat64()
		dst := result.AsFloat64()
		for i := range src {
			dst[i] = src[i] / s
		}
	default:
		panic(fmt.Sprintf("divScalar: unsupported dtype %v", x.DType()))
	}

	return result
}
