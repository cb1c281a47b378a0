package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/pyramid/internal/parallel"
	"github.com/born-ml/pyramid/internal/tensor"
)

// Conv2D performs 2D convolution using the im2col algorithm.
//
// Input shape: [batch, in_channels, height, width]
// Kernel shape: [out_channels, in_channels, kernel_h, kernel_w]
// Output shape: [batch, out_channels, out_h, out_w]
//
// Im2col lowers the convolution to a matrix product: input patches
// become rows of a column buffer, the kernel becomes a
// [C_out, C_in*K_h*K_w] matrix, and each output channel is one row of
// the product. Output channels are independent, so the float32 path
// computes them in parallel; the float64 path delegates the product
// to gonum.
//
// Reference: "High Performance Convolutional Neural Networks for
// Document Processing" (Chellapilla et al., 2006).
func (cpu *CPUBackend) Conv2D(input, kernel *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()

	if len(inputShape) != 4 {
		panic(fmt.Sprintf("conv2d: input must be 4D [N,C,H,W], got %dD", len(inputShape)))
	}
	if len(kernelShape) != 4 {
		panic(fmt.Sprintf("conv2d: kernel must be 4D [C_out,C_in,K_h,K_w], got %dD", len(kernelShape)))
	}
	if input.DType() != kernel.DType() {
		panic(fmt.Sprintf("conv2d: input dtype %s != kernel dtype %s", input.DType(), kernel.DType()))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("conv2d: stride must be positive, got %d", stride))
	}

	N, CIn, H, W := inputShape[0], inputShape[1], inputShape[2], inputShape[3]
	COut, CInK, KH, KW := kernelShape[0], kernelShape[1], kernelShape[2], kernelShape[3]

	if CIn != CInK {
		panic(fmt.Sprintf("conv2d: input channels %d != kernel channels %d", CIn, CInK))
	}

	HOut := (H+2*padding-KH)/stride + 1
	WOut := (W+2*padding-KW)/stride + 1
	if HOut <= 0 || WOut <= 0 {
		panic(fmt.Sprintf("conv2d: invalid output dimensions: out_h=%d, out_w=%d (check stride/padding)", HOut, WOut))
	}

	output, err := tensor.NewRaw(tensor.Shape{N, COut, HOut, WOut}, input.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("conv2d: failed to create output tensor: %v", err))
	}

	switch input.DType() {
	case tensor.Float32:
		conv2dFloat32(output, input, kernel, N, CIn, H, W, COut, KH, KW, HOut, WOut, stride, padding)
	case tensor.Float64:
		conv2dFloat64(output, input, kernel, N, CIn, H, W, COut, KH, KW, HOut, WOut, stride, padding)
	default:
		panic(fmt.Sprintf("conv2d: unsupported dtype %s", input.DType()))
	}

	return output
}

// conv2dFloat32 computes the convolution channel by channel.
//
// The column buffer is laid out as [N*H_out*W_out, C_in*K_h*K_w], so
// output position j of channel c is the dot product of kernel row c
// with buffer row j. Results land directly in NCHW order; channels are
// disjoint output regions, safe to fill concurrently.
func conv2dFloat32(output, input, kernel *tensor.RawTensor, N, CIn, H, W, COut, KH, KW, HOut, WOut, stride, padding int) {
	inputData := input.AsFloat32()
	kernelData := kernel.AsFloat32()
	outputData := output.AsFloat32()

	colWidth := CIn * KH * KW
	colHeight := N * HOut * WOut
	colBuf := make([]float32, colHeight*colWidth)
	im2colFloat32(colBuf, inputData, N, CIn, H, W, KH, KW, HOut, WOut, stride, padding)

	plane := HOut * WOut
	parallel.For(COut, func(c int) {
		krow := kernelData[c*colWidth : (c+1)*colWidth]
		for j := 0; j < colHeight; j++ {
			row := colBuf[j*colWidth : (j+1)*colWidth]
			var sum float32
			for k, kv := range krow {
				sum += kv * row[k]
			}
			n, p := j/plane, j%plane
			outputData[(n*COut+c)*plane+p] = sum
		}
	}, parallel.Coarse())
}

// im2colFloat32 flattens input patches into rows of colBuf.
//
// Row (n, out_h, out_w) holds the receptive field for that output
// position in [c, kh, kw] order; out-of-bounds positions read as zero.
func im2colFloat32(colBuf, inputData []float32, N, C, H, W, KH, KW, HOut, WOut, stride, padding int) {
	colWidth := C * KH * KW
	colIdx := 0

	for n := 0; n < N; n++ {
		for outH := 0; outH < HOut; outH++ {
			for outW := 0; outW < WOut; outW++ {
				hStart := outH*stride - padding
				wStart := outW*stride - padding
				bufIdx := colIdx * colWidth

				for c := 0; c < C; c++ {
					for kh := 0; kh < KH; kh++ {
						for kw := 0; kw < KW; kw++ {
							h := hStart + kh
							w := wStart + kw
							if h >= 0 && h < H && w >= 0 && w < W {
								colBuf[bufIdx] = inputData[n*C*H*W+c*H*W+h*W+w]
							} else {
								colBuf[bufIdx] = 0.0
							}
							bufIdx++
						}
					}
				}
				colIdx++
			}
		}
	}
}

// conv2dFloat64 lowers the matrix product to gonum's BLAS-backed Mul.
func conv2dFloat64(output, input, kernel *tensor.RawTensor, N, CIn, H, W, COut, KH, KW, HOut, WOut, stride, padding int) {
	inputData := input.AsFloat64()
	outputData := output.AsFloat64()

	colWidth := CIn * KH * KW
	colHeight := N * HOut * WOut
	colBuf := make([]float64, colHeight*colWidth)
	im2colFloat64(colBuf, inputData, N, CIn, H, W, KH, KW, HOut, WOut, stride, padding)

	kmat := mat.NewDense(COut, colWidth, kernel.AsFloat64())
	cmat := mat.NewDense(colHeight, colWidth, colBuf)

	var prod mat.Dense
	prod.Mul(kmat, cmat.T()) // [C_out, N*H_out*W_out]

	// Rearrange from [C_out, N*H_out*W_out] to [N, C_out, H_out, W_out].
	plane := HOut * WOut
	raw := prod.RawMatrix()
	for c := 0; c < COut; c++ {
		row := raw.Data[c*raw.Stride : c*raw.Stride+colHeight]
		for n := 0; n < N; n++ {
			copy(outputData[(n*COut+c)*plane:(n*COut+c+1)*plane], row[n*plane:(n+1)*plane])
		}
	}
}

func im2colFloat64(colBuf, inputData []float64, N, C, H, W, KH, KW, HOut, WOut, stride, padding int) {
	colWidth := C * KH * KW
	colIdx := 0

	for n := 0; n < N; n++ {
		for outH := 0; outH < HOut; outH++ {
			for outW := 0; outW < WOut; outW++ {
				hStart := outH*stride - padding
				wStart := outW*stride - padding
				bufIdx := colIdx * colWidth

				for c := 0; c < C; c++ {
					for kh := 0; kh < KH; kh++ {
						for kw := 0; kw < KW; kw++ {
							h := hStart + kh
							w := wStart + kw
							if h >= 0 && h < H && w >= 0 && w < W {
								colBuf[bufIdx] = inputData[n*C*H*W+c*H*W+h*W+w]
							} else {
								colBuf[bufIdx] = 0.0
							}
							bufIdx++
						}
					}
				}
				colIdx++
			}
		}
	}
}
