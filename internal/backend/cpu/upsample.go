package cpu

import (
	"fmt"

	"github.com/born-ml/pyramid/internal/parallel"
	"github.com/born-ml/pyramid/internal/tensor"
)

// UpsampleNearest2D scales the spatial dimensions of a 4D tensor by an
// integer factor using nearest-neighbor interpolation.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, height*scale, width*scale]
//
// Each output pixel copies the input pixel at (h/scale, w/scale), which
// replicates every source pixel into a scale x scale block.
func (cpu *CPUBackend) UpsampleNearest2D(x *tensor.RawTensor, scale int) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("upsample_nearest2d: expected 4D input [N,C,H,W], got %dD", len(shape)))
	}
	if scale <= 0 {
		panic(fmt.Sprintf("upsample_nearest2d: scale must be positive, got %d", scale))
	}

	N, C, H, W := shape[0], shape[1], shape[2], shape[3]
	HOut, WOut := H*scale, W*scale

	output, err := tensor.NewRaw(tensor.Shape{N, C, HOut, WOut}, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("upsample_nearest2d: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		upsampleNearestPlanes(output.AsFloat32(), x.AsFloat32(), N, C, H, W, scale)
	case tensor.Float64:
		upsampleNearestPlanes(output.AsFloat64(), x.AsFloat64(), N, C, H, W, scale)
	default:
		panic(fmt.Sprintf("upsample_nearest2d: unsupported dtype %s", x.DType()))
	}

	return output
}

func upsampleNearestPlanes[E float32 | float64](outputData, inputData []E, N, C, H, W, scale int) {
	WOut := W * scale
	parallel.ForBatch(N, C, func(n, c int) {
		plane := inputData[(n*C+c)*H*W : (n*C+c+1)*H*W]
		out := outputData[(n*C+c)*H*scale*WOut : (n*C+c+1)*H*scale*WOut]

		for h := 0; h < H; h++ {
			// Expand one source row horizontally, then replicate it
			// for the remaining scale-1 output rows.
			first := out[h*scale*WOut : h*scale*WOut+WOut]
			for w := 0; w < W; w++ {
				v := plane[h*W+w]
				for s := 0; s < scale; s++ {
					first[w*scale+s] = v
				}
			}
			for s := 1; s < scale; s++ {
				copy(out[(h*scale+s)*WOut:(h*scale+s+1)*WOut], first)
			}
		}
	}, parallel.Coarse())
}

// PixelShuffle rearranges channel blocks into spatial blocks.
//
// Input shape:  [N, C*r*r, H, W] (or [C*r*r, H, W])
// Output shape: [N, C, H*r, W*r] (or [C, H*r, W*r])
//
// Element mapping, per batch element:
//
//	out[c, i*r+di, j*r+dj] = in[c*r*r + di*r + dj, i, j]
//
// The channel count must be divisible by r*r. SpaceToDepth is the
// exact inverse.
func (cpu *CPUBackend) PixelShuffle(x *tensor.RawTensor, factor int) *tensor.RawTensor {
	if factor <= 0 {
		panic(fmt.Sprintf("pixel_shuffle: factor must be positive, got %d", factor))
	}

	N, C, H, W, batched := splitSpatialShape(x.Shape(), "pixel_shuffle")
	r2 := factor * factor
	if C%r2 != 0 {
		panic(fmt.Sprintf("pixel_shuffle: channels %d not divisible by factor^2 = %d", C, r2))
	}

	outShape := spatialShape(N, C/r2, H*factor, W*factor, batched)
	output, err := tensor.NewRaw(outShape, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("pixel_shuffle: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		pixelShufflePlanes(output.AsFloat32(), x.AsFloat32(), N, C/r2, H, W, factor)
	case tensor.Float64:
		pixelShufflePlanes(output.AsFloat64(), x.AsFloat64(), N, C/r2, H, W, factor)
	default:
		panic(fmt.Sprintf("pixel_shuffle: unsupported dtype %s", x.DType()))
	}

	return output
}

// SpaceToDepth folds spatial blocks back into channel blocks, undoing
// PixelShuffle with the same factor.
//
// Input shape:  [N, C, H*r, W*r] (or [C, H*r, W*r])
// Output shape: [N, C*r*r, H, W] (or [C*r*r, H, W])
//
// Both spatial dimensions must be divisible by the factor.
func (cpu *CPUBackend) SpaceToDepth(x *tensor.RawTensor, factor int) *tensor.RawTensor {
	if factor <= 0 {
		panic(fmt.Sprintf("space_to_depth: factor must be positive, got %d", factor))
	}

	N, C, HIn, WIn, batched := splitSpatialShape(x.Shape(), "space_to_depth")
	if HIn%factor != 0 || WIn%factor != 0 {
		panic(fmt.Sprintf("space_to_depth: spatial dims %dx%d not divisible by factor %d", HIn, WIn, factor))
	}
	H, W := HIn/factor, WIn/factor

	outShape := spatialShape(N, C*factor*factor, H, W, batched)
	output, err := tensor.NewRaw(outShape, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("space_to_depth: %v", err))
	}

	switch x.DType() {
	case tensor.Float32:
		spaceToDepthPlanes(output.AsFloat32(), x.AsFloat32(), N, C, H, W, factor)
	case tensor.Float64:
		spaceToDepthPlanes(output.AsFloat64(), x.AsFloat64(), N, C, H, W, factor)
	default:
		panic(fmt.Sprintf("space_to_depth: unsupported dtype %s", x.DType()))
	}

	return output
}

// splitSpatialShape accepts [N,C,H,W] or [C,H,W] and reports whether
// the leading batch dimension was present.
func splitSpatialShape(shape tensor.Shape, op string) (n, c, h, w int, batched bool) {
	switch len(shape) {
	case 4:
		return shape[0], shape[1], shape[2], shape[3], true
	case 3:
		return 1, shape[0], shape[1], shape[2], false
	default:
		panic(fmt.Sprintf("%s: expected 3D [C,H,W] or 4D [N,C,H,W] input, got %dD", op, len(shape)))
	}
}

func spatialShape(n, c, h, w int, batched bool) tensor.Shape {
	if batched {
		return tensor.Shape{n, c, h, w}
	}
	return tensor.Shape{c, h, w}
}

// pixelShufflePlanes writes output channel planes; COut is the reduced
// channel count, H and W the input spatial dims.
func pixelShufflePlanes[E float32 | float64](outputData, inputData []E, N, COut, H, W, r int) {
	CIn := COut * r * r
	HOut, WOut := H*r, W*r

	parallel.ForBatch(N, COut, func(n, c int) {
		out := outputData[(n*COut+c)*HOut*WOut : (n*COut+c+1)*HOut*WOut]
		for di := 0; di < r; di++ {
			for dj := 0; dj < r; dj++ {
				src := inputData[(n*CIn+c*r*r+di*r+dj)*H*W : (n*CIn+c*r*r+di*r+dj+1)*H*W]
				for i := 0; i < H; i++ {
					for j := 0; j < W; j++ {
						out[(i*r+di)*WOut+(j*r+dj)] = src[i*W+j]
					}
				}
			}
		}
	}, parallel.Coarse())
}

// spaceToDepthPlanes reads input channel planes; CIn is the original
// channel count, H and W the reduced spatial dims.
func spaceToDepthPlanes[E float32 | float64](outputData, inputData []E, N, CIn, H, W, r int) {
	COut := CIn * r * r
	HIn, WIn := H*r, W*r

	parallel.ForBatch(N, CIn, func(n, c int) {
		src := inputData[(n*CIn+c)*HIn*WIn : (n*CIn+c+1)*HIn*WIn]
		for di := 0; di < r; di++ {
			for dj := 0; dj < r; dj++ {
				out := outputData[(n*COut+c*r*r+di*r+dj)*H*W : (n*COut+c*r*r+di*r+dj+1)*H*W]
				for i := 0; i < H; i++ {
					for j := 0; j < W; j++ {
						out[i*W+j] = src[(i*r+di)*WIn+(j*r+dj)]
					}
				}
			}
		}
	}, parallel.Coarse())
}
