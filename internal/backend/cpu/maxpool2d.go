package cpu

import (
	"fmt"

	"github.com/born-ml/pyramid/internal/parallel"
	"github.com/born-ml/pyramid/internal/tensor"
)

// MaxPool2D performs 2D max pooling.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, out_height, out_width]
//
// Where:
//
//	out_height = (height - kernelSize) / stride + 1
//	out_width = (width - kernelSize) / stride + 1
//
// With kernelSize=1 and stride=2 this degenerates to strided
// subsampling, the cheap way to derive an extra coarser pyramid level.
// Channel planes are independent and pooled in parallel.
func (cpu *CPUBackend) MaxPool2D(input *tensor.RawTensor, kernelSize, stride int) *tensor.RawTensor {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("maxpool2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}

	N, C, H, W := inputShape[0], inputShape[1], inputShape[2], inputShape[3]

	if kernelSize <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid kernel size %d", kernelSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid stride %d", stride))
	}
	if kernelSize > H || kernelSize > W {
		panic(fmt.Sprintf("maxpool2d: kernel size %d too large for input %dx%d", kernelSize, H, W))
	}

	HOut := (H-kernelSize)/stride + 1
	WOut := (W-kernelSize)/stride + 1

	output, err := tensor.NewRaw(tensor.Shape{N, C, HOut, WOut}, input.DType(), cpu.Device())
	if err != nil {
		panic(fmt.Sprintf("maxpool2d: failed to create output: %v", err))
	}

	switch input.DType() {
	case tensor.Float32:
		maxpool2dPlanes(output.AsFloat32(), input.AsFloat32(), N, C, H, W, HOut, WOut, kernelSize, stride)
	case tensor.Float64:
		maxpool2dPlanes(output.AsFloat64(), input.AsFloat64(), N, C, H, W, HOut, WOut, kernelSize, stride)
	default:
		panic(fmt.Sprintf("maxpool2d: unsupported dtype %v", input.DType()))
	}

	return output
}

// maxpool2dPlanes pools every channel plane of every batch element.
func maxpool2dPlanes[E float32 | float64](outputData, inputData []E, N, C, H, W, HOut, WOut, kernelSize, stride int) {
	parallel.ForBatch(N, C, func(n, c int) {
		plane := inputData[(n*C+c)*H*W : (n*C+c+1)*H*W]
		out := outputData[(n*C+c)*HOut*WOut : (n*C+c+1)*HOut*WOut]

		for outH := 0; outH < HOut; outH++ {
			hStart := outH * stride
			for outW := 0; outW < WOut; outW++ {
				wStart := outW * stride

				maxVal := plane[hStart*W+wStart]
				for kh := 0; kh < kernelSize; kh++ {
					row := plane[(hStart+kh)*W : (hStart+kh)*W+W]
					for kw := 0; kw < kernelSize; kw++ {
						if v := row[wStart+kw]; v > maxVal {
							maxVal = v
						}
					}
				}
				out[outH*WOut+outW] = maxVal
			}
		}
	}, parallel.Coarse())
}
