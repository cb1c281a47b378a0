package cpu

import (
	"fmt"

	"github.com/born-ml/pyramid/internal/tensor"
)

// Cat concatenates tensors along the specified dimension.
//
// All tensors must have the same shape except along the concatenation
// dimension, and the same dtype. Supports negative dim indexing
// (-1 = last dimension).
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}

	shape := tensors[0].Shape()
	ndim := len(shape)
	dtype := tensors[0].DType()

	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("cat: dimension %d out of range for %dD tensor", dim, ndim))
	}

	totalDim := 0
	for i, t := range tensors {
		tShape := t.Shape()
		if len(tShape) != ndim {
			panic(fmt.Sprintf("cat: tensor %d has %d dimensions, expected %d", i, len(tShape), ndim))
		}
		if t.DType() != dtype {
			panic(fmt.Sprintf("cat: tensor %d has dtype %s, expected %s", i, t.DType(), dtype))
		}
		for d := 0; d < ndim; d++ {
			if d == dim {
				totalDim += tShape[d]
			} else if tShape[d] != shape[d] {
				panic(fmt.Sprintf("cat: tensor %d dimension %d is %d, expected %d", i, d, tShape[d], shape[d]))
			}
		}
	}

	outShape := shape.Clone()
	outShape[dim] = totalDim

	result, err := tensor.NewRaw(outShape, dtype, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("cat: %v", err))
	}

	switch dtype {
	case tensor.Float32:
		catBlocks(tensors, result, dim, asF32)
	case tensor.Float64:
		catBlocks(tensors, result, dim, asF64)
	default:
		panic(fmt.Sprintf("cat: unsupported dtype %s", dtype))
	}

	return result
}

// Chunk splits tensor into n equal parts along the specified dimension.
//
// The dimension size must be divisible by n.
// Supports negative dim indexing (-1 = last dimension).
func (cpu *CPUBackend) Chunk(x *tensor.RawTensor, n, dim int) []*tensor.RawTensor {
	if n <= 0 {
		panic(fmt.Sprintf("chunk: n must be positive, got %d", n))
	}

	shape := x.Shape()
	ndim := len(shape)

	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("chunk: dimension %d out of range for %dD tensor", dim, ndim))
	}

	dimSize := shape[dim]
	if dimSize%n != 0 {
		panic(fmt.Sprintf("chunk: dimension %d size %d not divisible by %d", dim, dimSize, n))
	}

	chunkShape := shape.Clone()
	chunkShape[dim] = dimSize / n

	results := make([]*tensor.RawTensor, n)
	for i := range results {
		chunk, err := tensor.NewRaw(chunkShape, x.DType(), cpu.device)
		if err != nil {
			panic(fmt.Sprintf("chunk: %v", err))
		}
		results[i] = chunk
	}

	switch x.DType() {
	case tensor.Float32:
		chunkBlocks(x, results, dim, asF32)
	case tensor.Float64:
		chunkBlocks(x, results, dim, asF64)
	default:
		panic(fmt.Sprintf("chunk: unsupported dtype %s", x.DType()))
	}

	return results
}

// Unsqueeze adds a dimension of size 1 at the specified position.
//
// Supports negative dim indexing; valid positions are [0, ndim].
func (cpu *CPUBackend) Unsqueeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)

	if dim < 0 {
		dim = ndim + 1 + dim
	}
	if dim < 0 || dim > ndim {
		panic(fmt.Sprintf("unsqueeze: dimension %d out of range for %dD tensor (valid: [0, %d])", dim, ndim, ndim))
	}

	newShape := make(tensor.Shape, 0, ndim+1)
	newShape = append(newShape, shape[:dim]...)
	newShape = append(newShape, 1)
	newShape = append(newShape, shape[dim:]...)

	return cpu.Reshape(x, newShape)
}

// Squeeze removes a dimension of size 1 at the specified position.
//
// Panics if the dimension size is not 1. Supports negative dim indexing.
func (cpu *CPUBackend) Squeeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)

	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("squeeze: dimension %d out of range for %dD tensor", dim, ndim))
	}
	if shape[dim] != 1 {
		panic(fmt.Sprintf("squeeze: dimension %d has size %d, must be 1", dim, shape[dim]))
	}

	newShape := make(tensor.Shape, 0, ndim-1)
	newShape = append(newShape, shape[:dim]...)
	newShape = append(newShape, shape[dim+1:]...)

	return cpu.Reshape(x, newShape)
}

func asF32(t *tensor.RawTensor) []float32 { return t.AsFloat32() }
func asF64(t *tensor.RawTensor) []float64 { return t.AsFloat64() }

// catBlocks copies each input as contiguous segments into the output.
//
// For row-major data, concatenation along dim is a sequence of block
// copies: for each of the outer=prod(shape[:dim]) slabs, every input
// contributes one contiguous segment of seg=shape[dim]*prod(shape[dim+1:])
// elements.
func catBlocks[E float32 | float64](tensors []*tensor.RawTensor, result *tensor.RawTensor, dim int, view func(*tensor.RawTensor) []E) {
	outShape := result.Shape()
	out := view(result)

	outer := 1
	for d := 0; d < dim; d++ {
		outer *= outShape[d]
	}
	inner := 1
	for d := dim + 1; d < len(outShape); d++ {
		inner *= outShape[d]
	}
	outSeg := outShape[dim] * inner

	offset := 0
	for _, t := range tensors {
		data := view(t)
		seg := t.Shape()[dim] * inner
		for o := 0; o < outer; o++ {
			copy(out[o*outSeg+offset:o*outSeg+offset+seg], data[o*seg:(o+1)*seg])
		}
		offset += seg
	}
}

// chunkBlocks is the inverse of catBlocks for n equal parts.
func chunkBlocks[E float32 | float64](x *tensor.RawTensor, results []*tensor.RawTensor, dim int, view func(*tensor.RawTensor) []E) {
	shape := x.Shape()
	data := view(x)

	outer := 1
	for d := 0; d < dim; d++ {
		outer *= shape[d]
	}
	inner := 1
	for d := dim + 1; d < len(shape); d++ {
		inner *= shape[d]
	}
	inSeg := shape[dim] * inner
	seg := inSeg / len(results)

	for i, chunk := range results {
		out := view(chunk)
		for o := 0; o < outer; o++ {
			copy(out[o*seg:(o+1)*seg], data[o*inSeg+i*seg:o*inSeg+(i+1)*seg])
		}
	}
}
