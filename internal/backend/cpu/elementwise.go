package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/born-ml/pyramid/internal/tensor"
)

// binOp identifies an element-wise binary operation.
type binOp int

const (
	opAdd binOp = iota
	opSub
	opMul
	opDiv
)

// applyContiguous computes dst = a op b over same-shape contiguous
// operands. dst may alias a for inplace execution.
func applyContiguous(op binOp, dst, a, b *tensor.RawTensor) {
	switch a.DType() {
	case tensor.Float32:
		contiguousKernel(op, asF32(dst), asF32(a), asF32(b))
	case tensor.Float64:
		contiguousFloat64(op, asF64(dst), asF64(a), asF64(b))
	default:
		panic(fmt.Sprintf("elementwise: unsupported dtype %s", a.DType()))
	}
}

func contiguousKernel[E float32 | float64](op binOp, dst, a, b []E) {
	switch op {
	case opAdd:
		for i := range dst {
			dst[i] = a[i] + b[i]
		}
	case opSub:
		for i := range dst {
			dst[i] = a[i] - b[i]
		}
	case opMul:
		for i := range dst {
			dst[i] = a[i] * b[i]
		}
	case opDiv:
		for i := range dst {
			dst[i] = a[i] / b[i]
		}
	}
}

// contiguousFloat64 routes the float64 fast path through gonum. The *To
// variants tolerate dst aliasing a, which covers the inplace case.
func contiguousFloat64(op binOp, dst, a, b []float64) {
	switch op {
	case opAdd:
		floats.AddTo(dst, a, b)
	case opSub:
		floats.SubTo(dst, a, b)
	case opMul:
		floats.MulTo(dst, a, b)
	case opDiv:
		floats.DivTo(dst, a, b)
	}
}

// applyBroadcast computes dst = a op b where at least one operand is
// virtually expanded to outShape.
func applyBroadcast(op binOp, dst, a, b *tensor.RawTensor, outShape tensor.Shape) {
	switch a.DType() {
	case tensor.Float32:
		broadcastKernel(op, asF32(dst), asF32(a), asF32(b), a.Shape(), b.Shape(), outShape)
	case tensor.Float64:
		broadcastKernel(op, asF64(dst), asF64(a), asF64(b), a.Shape(), b.Shape(), outShape)
	default:
		panic(fmt.Sprintf("elementwise: unsupported dtype %s", a.DType()))
	}
}

// broadcastKernel walks the output coordinates like an odometer, carrying
// the flat offsets into a and b along. Broadcast dimensions have stride 0,
// so their offsets simply never advance.
func broadcastKernel[E float32 | float64](op binOp, dst, a, b []E, aShape, bShape, outShape tensor.Shape) {
	aStrides := broadcastStrides(aShape, outShape)
	bStrides := broadcastStrides(bShape, outShape)

	ndim := len(outShape)
	coords := make([]int, ndim)
	ai, bi := 0, 0

	for i := range dst {
		switch op {
		case opAdd:
			dst[i] = a[ai] + b[bi]
		case opSub:
			dst[i] = a[ai] - b[bi]
		case opMul:
			dst[i] = a[ai] * b[bi]
		case opDiv:
			dst[i] = a[ai] / b[bi]
		}

		for d := ndim - 1; d >= 0; d-- {
			coords[d]++
			ai += aStrides[d]
			bi += bStrides[d]
			if coords[d] < outShape[d] {
				break
			}
			coords[d] = 0
			ai -= aStrides[d] * outShape[d]
			bi -= bStrides[d] * outShape[d]
		}
	}
}

// broadcastStrides maps an operand's strides onto the output rank.
// Dimensions the operand lacks, or holds with size 1, get stride 0.
func broadcastStrides(in, out tensor.Shape) []int {
	strides := make([]int, len(out))
	inStrides := in.ComputeStrides()
	shift := len(out) - len(in)

	for d := shift; d < len(out); d++ {
		if in[d-shift] != 1 {
			strides[d] = inStrides[d-shift]
		}
	}
	return strides
}

// transposeKernel permutes src into dst according to axes. The source is
// walked sequentially; the destination offset is carried incrementally
// using the destination strides mapped back onto source dimensions.
func transposeKernel[E float32 | float64](dst, src []E, shape tensor.Shape, axes []int) {
	ndim := len(shape)

	dstShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		dstShape[i] = shape[ax]
	}
	dstStrides := dstShape.ComputeStrides()

	// stridePerSrcDim[d] is how far the destination offset moves when the
	// source coordinate along dimension d advances by one.
	stridePerSrcDim := make([]int, ndim)
	for dstDim, srcDim := range axes {
		stridePerSrcDim[srcDim] = dstStrides[dstDim]
	}

	coords := make([]int, ndim)
	di := 0
	for _, v := range src {
		dst[di] = v

		for d := ndim - 1; d >= 0; d-- {
			coords[d]++
			di += stridePerSrcDim[d]
			if coords[d] < shape[d] {
				break
			}
			coords[d] = 0
			di -= stridePerSrcDim[d] * shape[d]
		}
	}
}
