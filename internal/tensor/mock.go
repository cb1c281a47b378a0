package tensor

import "fmt"

// Verify that MockBackend implements Backend.
var _ Backend = (*MockBackend)(nil)

// MockBackend is a simple backend for testing.
// It implements all operations naively for correctness verification.
type MockBackend struct{}

// NewMockBackend creates a new MockBackend.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// Name returns the backend name.
func (m *MockBackend) Name() string {
	return "mock"
}

// Device returns the device type.
func (m *MockBackend) Device() Device {
	return CPU
}

// Add performs element-wise addition with broadcasting.
func (m *MockBackend) Add(a, b *RawTensor) *RawTensor {
	return m.elementWise(a, b, func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (m *MockBackend) Sub(a, b *RawTensor) *RawTensor {
	return m.elementWise(a, b, func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (m *MockBackend) Mul(a, b *RawTensor) *RawTensor {
	return m.elementWise(a, b, func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division with broadcasting.
func (m *MockBackend) Div(a, b *RawTensor) *RawTensor {
	return m.elementWise(a, b, func(x, y float64) float64 { return x / y })
}

// elementWise performs element-wise operations with broadcasting.
func (m *MockBackend) elementWise(a, b *RawTensor, op func(float64, float64) float64) *RawTensor {
	outShape, _, err := BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(err)
	}

	result, err := NewRaw(outShape, a.DType(), m.Device())
	if err != nil {
		panic(err)
	}

	numElements := outShape.NumElements()

	aData := m.toFloat64Slice(a)
	bData := m.toFloat64Slice(b)
	resultData := m.toFloat64Slice(result)

	for i := 0; i < numElements; i++ {
		aIdx := m.broadcastIndex(i, outShape, a.Shape())
		bIdx := m.broadcastIndex(i, outShape, b.Shape())

		resultData[i] = op(aData[aIdx], bData[bIdx])
	}

	m.fromFloat64Slice(resultData, result)
	return result
}

// Conv2D performs 2D convolution (naive implementation for testing).
func (m *MockBackend) Conv2D(input, kernel *RawTensor, stride, padding int) *RawTensor {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()

	if len(inputShape) != 4 || len(kernelShape) != 4 {
		panic("Conv2D requires 4D tensors [N,C,H,W]")
	}

	N := inputShape[0]
	CIn := inputShape[1]
	H := inputShape[2]
	W := inputShape[3]
	COut := kernelShape[0]
	KH := kernelShape[2]
	KW := kernelShape[3]

	if CIn != kernelShape[1] {
		panic(fmt.Sprintf("Conv2D: input channels %d != kernel channels %d", CIn, kernelShape[1]))
	}

	HOut := (H+2*padding-KH)/stride + 1
	WOut := (W+2*padding-KW)/stride + 1

	output, err := NewRaw(Shape{N, COut, HOut, WOut}, input.DType(), m.Device())
	if err != nil {
		panic(err)
	}

	inputData := m.toFloat64Slice(input)
	kernelData := m.toFloat64Slice(kernel)
	outputData := m.toFloat64Slice(output)

	for n := 0; n < N; n++ {
		for cOut := 0; cOut < COut; cOut++ {
			for outH := 0; outH < HOut; outH++ {
				for outW := 0; outW < WOut; outW++ {
					sum := 0.0

					for cIn := 0; cIn < CIn; cIn++ {
						for kh := 0; kh < KH; kh++ {
							for kw := 0; kw < KW; kw++ {
								h := outH*stride - padding + kh
								w := outW*stride - padding + kw

								if h >= 0 && h < H && w >= 0 && w < W {
									inputIdx := n*CIn*H*W + cIn*H*W + h*W + w
									kernelIdx := cOut*CIn*KH*KW + cIn*KH*KW + kh*KW + kw
									sum += inputData[inputIdx] * kernelData[kernelIdx]
								}
							}
						}
					}

					outputIdx := n*COut*HOut*WOut + cOut*HOut*WOut + outH*WOut + outW
					outputData[outputIdx] = sum
				}
			}
		}
	}

	m.fromFloat64Slice(outputData, output)
	return output
}

// MaxPool2D performs 2D max pooling (naive implementation for testing).
func (m *MockBackend) MaxPool2D(input *RawTensor, kernelSize, stride int) *RawTensor {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("MaxPool2D: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}

	N := inputShape[0]
	C := inputShape[1]
	H := inputShape[2]
	W := inputShape[3]

	HOut := (H-kernelSize)/stride + 1
	WOut := (W-kernelSize)/stride + 1

	output, err := NewRaw(Shape{N, C, HOut, WOut}, input.DType(), m.Device())
	if err != nil {
		panic(err)
	}

	inputData := m.toFloat64Slice(input)
	outputData := m.toFloat64Slice(output)

	for n := 0; n < N; n++ {
		for c := 0; c < C; c++ {
			for outH := 0; outH < HOut; outH++ {
				for outW := 0; outW < WOut; outW++ {
					maxVal := -1e308
					for kh := 0; kh < kernelSize; kh++ {
						for kw := 0; kw < kernelSize; kw++ {
							h := outH*stride + kh
							w := outW*stride + kw
							inputIdx := n*C*H*W + c*H*W + h*W + w
							if inputData[inputIdx] > maxVal {
								maxVal = inputData[inputIdx]
							}
						}
					}

					outputIdx := n*C*HOut*WOut + c*HOut*WOut + outH*WOut + outW
					outputData[outputIdx] = maxVal
				}
			}
		}
	}

	m.fromFloat64Slice(outputData, output)
	return output
}

// UpsampleNearest2D enlarges the spatial dimensions by integer replication.
func (m *MockBackend) UpsampleNearest2D(x *RawTensor, scale int) *RawTensor {
	shape := x.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("UpsampleNearest2D: expected 4D input [N,C,H,W], got %dD", len(shape)))
	}
	if scale < 1 {
		panic(fmt.Sprintf("UpsampleNearest2D: scale must be >= 1, got %d", scale))
	}

	N, C, H, W := shape[0], shape[1], shape[2], shape[3]
	output, err := NewRaw(Shape{N, C, H * scale, W * scale}, x.DType(), m.Device())
	if err != nil {
		panic(err)
	}

	xData := m.toFloat64Slice(x)
	outData := m.toFloat64Slice(output)

	HOut, WOut := H*scale, W*scale
	for n := 0; n < N; n++ {
		for c := 0; c < C; c++ {
			for i := 0; i < HOut; i++ {
				for j := 0; j < WOut; j++ {
					src := n*C*H*W + c*H*W + (i/scale)*W + j/scale
					outData[n*C*HOut*WOut+c*HOut*WOut+i*WOut+j] = xData[src]
				}
			}
		}
	}

	m.fromFloat64Slice(outData, output)
	return output
}

// PixelShuffle rearranges channel blocks into space.
func (m *MockBackend) PixelShuffle(x *RawTensor, factor int) *RawTensor {
	batch, c, h, w := m.splitSpatial(x, "PixelShuffle")
	if c%(factor*factor) != 0 {
		panic(fmt.Sprintf("PixelShuffle: channels %d not divisible by factor^2 %d", c, factor*factor))
	}

	cOut := c / (factor * factor)
	hOut, wOut := h*factor, w*factor

	outShape := Shape{cOut, hOut, wOut}
	if len(x.Shape()) == 4 {
		outShape = Shape{batch, cOut, hOut, wOut}
	}
	output, err := NewRaw(outShape, x.DType(), m.Device())
	if err != nil {
		panic(err)
	}

	xData := m.toFloat64Slice(x)
	outData := m.toFloat64Slice(output)

	for n := 0; n < batch; n++ {
		for co := 0; co < cOut; co++ {
			for i := 0; i < h; i++ {
				for j := 0; j < w; j++ {
					for di := 0; di < factor; di++ {
						for dj := 0; dj < factor; dj++ {
							ci := co*factor*factor + di*factor + dj
							src := n*c*h*w + ci*h*w + i*w + j
							dst := n*cOut*hOut*wOut + co*hOut*wOut + (i*factor+di)*wOut + (j*factor + dj)
							outData[dst] = xData[src]
						}
					}
				}
			}
		}
	}

	m.fromFloat64Slice(outData, output)
	return output
}

// SpaceToDepth rearranges spatial blocks into channels (inverse of PixelShuffle).
func (m *MockBackend) SpaceToDepth(x *RawTensor, factor int) *RawTensor {
	batch, c, h, w := m.splitSpatial(x, "SpaceToDepth")
	if h%factor != 0 || w%factor != 0 {
		panic(fmt.Sprintf("SpaceToDepth: spatial dims %dx%d not divisible by factor %d", h, w, factor))
	}

	cOut := c * factor * factor
	hOut, wOut := h/factor, w/factor

	outShape := Shape{cOut, hOut, wOut}
	if len(x.Shape()) == 4 {
		outShape = Shape{batch, cOut, hOut, wOut}
	}
	output, err := NewRaw(outShape, x.DType(), m.Device())
	if err != nil {
		panic(err)
	}

	xData := m.toFloat64Slice(x)
	outData := m.toFloat64Slice(output)

	for n := 0; n < batch; n++ {
		for ci := 0; ci < c; ci++ {
			for i := 0; i < hOut; i++ {
				for j := 0; j < wOut; j++ {
					for di := 0; di < factor; di++ {
						for dj := 0; dj < factor; dj++ {
							co := ci*factor*factor + di*factor + dj
							src := n*c*h*w + ci*h*w + (i*factor+di)*w + (j*factor + dj)
							dst := n*cOut*hOut*wOut + co*hOut*wOut + i*wOut + j
							outData[dst] = xData[src]
						}
					}
				}
			}
		}
	}

	m.fromFloat64Slice(outData, output)
	return output
}

// ReLU applies max(0, x) element-wise.
func (m *MockBackend) ReLU(x *RawTensor) *RawTensor {
	result, err := NewRaw(x.Shape(), x.DType(), m.Device())
	if err != nil {
		panic(err)
	}

	xData := m.toFloat64Slice(x)
	resultData := m.toFloat64Slice(result)
	for i, v := range xData {
		if v > 0 {
			resultData[i] = v
		}
	}

	m.fromFloat64Slice(resultData, result)
	return result
}

// Reshape changes tensor shape.
func (m *MockBackend) Reshape(t *RawTensor, newShape Shape) *RawTensor {
	if err := newShape.Validate(); err != nil {
		panic(err)
	}

	if t.NumElements() != newShape.NumElements() {
		panic(fmt.Sprintf("cannot reshape tensor with %d elements to shape %v (%d elements)",
			t.NumElements(), newShape, newShape.NumElements()))
	}

	result, err := NewRaw(newShape, t.DType(), m.Device())
	if err != nil {
		panic(err)
	}

	copy(result.Data(), t.Data())
	return result
}

// Transpose transposes tensor dimensions.
func (m *MockBackend) Transpose(t *RawTensor, axes ...int) *RawTensor {
	shape := t.Shape()

	// Default: reverse all dimensions
	if len(axes) == 0 {
		axes = make([]int, len(shape))
		for i := range axes {
			axes[i] = len(shape) - 1 - i
		}
	}

	if len(axes) != len(shape) {
		panic(fmt.Sprintf("axes length %d doesn't match tensor dimensions %d", len(axes), len(shape)))
	}

	newShape := make(Shape, len(shape))
	for i, axis := range axes {
		if axis < 0 || axis >= len(shape) {
			panic(fmt.Sprintf("axis %d out of bounds for tensor with %d dimensions", axis, len(shape)))
		}
		newShape[i] = shape[axis]
	}

	result, err := NewRaw(newShape, t.DType(), m.Device())
	if err != nil {
		panic(err)
	}

	tData := m.toFloat64Slice(t)
	resultData := m.toFloat64Slice(result)

	oldStrides := shape.ComputeStrides()
	newStrides := newShape.ComputeStrides()

	for i := 0; i < t.NumElements(); i++ {
		indices := make([]int, len(shape))
		temp := i
		for j := 0; j < len(shape); j++ {
			indices[j] = temp / oldStrides[j]
			temp %= oldStrides[j]
		}

		newIdx := 0
		for j, axis := range axes {
			newIdx += indices[axis] * newStrides[j]
		}

		resultData[newIdx] = tData[i]
	}

	m.fromFloat64Slice(resultData, result)
	return result
}

// MulScalar multiplies every element by a scalar.
func (m *MockBackend) MulScalar(x *RawTensor, scalar any) *RawTensor {
	s := m.scalarToFloat64(scalar)
	return m.mapElements(x, func(v float64) float64 { return v * s })
}

// DivScalar divides every element by a scalar.
func (m *MockBackend) DivScalar(x *RawTensor, scalar any) *RawTensor {
	s := m.scalarToFloat64(scalar)
	return m.mapElements(x, func(v float64) float64 { return v / s })
}

func (m *MockBackend) mapElements(x *RawTensor, op func(float64) float64) *RawTensor {
	result, err := NewRaw(x.Shape(), x.DType(), m.Device())
	if err != nil {
		panic(err)
	}

	xData := m.toFloat64Slice(x)
	resultData := m.toFloat64Slice(result)
	for i, v := range xData {
		resultData[i] = op(v)
	}

	m.fromFloat64Slice(resultData, result)
	return result
}

// Cat concatenates tensors along the specified dimension.
func (m *MockBackend) Cat(tensors []*RawTensor, dim int) *RawTensor {
	if len(tensors) == 0 {
		panic("Cat: at least one tensor required")
	}

	first := tensors[0].Shape()
	if dim < 0 {
		dim += len(first)
	}
	if dim < 0 || dim >= len(first) {
		panic(fmt.Sprintf("Cat: dimension %d out of range for %dD tensors", dim, len(first)))
	}

	outShape := first.Clone()
	for _, t := range tensors[1:] {
		outShape[dim] += t.Shape()[dim]
	}

	result, err := NewRaw(outShape, tensors[0].DType(), m.Device())
	if err != nil {
		panic(err)
	}

	resultData := m.toFloat64Slice(result)
	outStrides := outShape.ComputeStrides()

	dimOffset := 0
	for _, t := range tensors {
		tShape := t.Shape()
		tStrides := tShape.ComputeStrides()
		tData := m.toFloat64Slice(t)

		for i := 0; i < t.NumElements(); i++ {
			temp := i
			dst := 0
			for j := 0; j < len(tShape); j++ {
				idx := temp / tStrides[j]
				temp %= tStrides[j]
				if j == dim {
					idx += dimOffset
				}
				dst += idx * outStrides[j]
			}
			resultData[dst] = tData[i]
		}
		dimOffset += tShape[dim]
	}

	m.fromFloat64Slice(resultData, result)
	return result
}

// Chunk splits a tensor into n equal parts along the specified dimension.
func (m *MockBackend) Chunk(x *RawTensor, n, dim int) []*RawTensor {
	shape := x.Shape()
	if dim < 0 {
		dim += len(shape)
	}
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("Chunk: dimension %d out of range for %dD tensor", dim, len(shape)))
	}
	if shape[dim]%n != 0 {
		panic(fmt.Sprintf("Chunk: dimension %d size %d not divisible by %d", dim, shape[dim], n))
	}

	partShape := shape.Clone()
	partShape[dim] = shape[dim] / n

	xData := m.toFloat64Slice(x)
	xStrides := shape.ComputeStrides()
	partStrides := partShape.ComputeStrides()

	parts := make([]*RawTensor, n)
	for p := 0; p < n; p++ {
		part, err := NewRaw(partShape, x.DType(), m.Device())
		if err != nil {
			panic(err)
		}
		partData := m.toFloat64Slice(part)

		for i := 0; i < part.NumElements(); i++ {
			temp := i
			src := 0
			for j := 0; j < len(partShape); j++ {
				idx := temp / partStrides[j]
				temp %= partStrides[j]
				if j == dim {
					idx += p * partShape[dim]
				}
				src += idx * xStrides[j]
			}
			partData[i] = xData[src]
		}

		m.fromFloat64Slice(partData, part)
		parts[p] = part
	}
	return parts
}

// Unsqueeze adds a dimension of size 1 at the specified position.
func (m *MockBackend) Unsqueeze(x *RawTensor, dim int) *RawTensor {
	shape := x.Shape()
	if dim < 0 {
		dim += len(shape) + 1
	}
	if dim < 0 || dim > len(shape) {
		panic(fmt.Sprintf("Unsqueeze: dimension %d out of range for %dD tensor", dim, len(shape)))
	}

	newShape := make(Shape, 0, len(shape)+1)
	newShape = append(newShape, shape[:dim]...)
	newShape = append(newShape, 1)
	newShape = append(newShape, shape[dim:]...)
	return m.Reshape(x, newShape)
}

// Squeeze removes a dimension of size 1 at the specified position.
func (m *MockBackend) Squeeze(x *RawTensor, dim int) *RawTensor {
	shape := x.Shape()
	if dim < 0 {
		dim += len(shape)
	}
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("Squeeze: dimension %d out of range for %dD tensor", dim, len(shape)))
	}
	if shape[dim] != 1 {
		panic(fmt.Sprintf("Squeeze: dimension %d has size %d, expected 1", dim, shape[dim]))
	}

	newShape := make(Shape, 0, len(shape)-1)
	newShape = append(newShape, shape[:dim]...)
	newShape = append(newShape, shape[dim+1:]...)
	return m.Reshape(x, newShape)
}

// Helper functions

func (m *MockBackend) splitSpatial(x *RawTensor, op string) (batch, c, h, w int) {
	shape := x.Shape()
	switch len(shape) {
	case 3:
		return 1, shape[0], shape[1], shape[2]
	case 4:
		return shape[0], shape[1], shape[2], shape[3]
	default:
		panic(fmt.Sprintf("%s: expected 3D or 4D input, got %dD", op, len(shape)))
	}
}

func (m *MockBackend) scalarToFloat64(scalar any) float64 {
	switch s := scalar.(type) {
	case float32:
		return float64(s)
	case float64:
		return s
	default:
		panic(fmt.Sprintf("unsupported scalar type: %T", scalar))
	}
}

func (m *MockBackend) toFloat64Slice(t *RawTensor) []float64 {
	switch t.DType() {
	case Float32:
		src := t.AsFloat32()
		dst := make([]float64, len(src))
		for i, v := range src {
			dst[i] = float64(v)
		}
		return dst
	case Float64:
		return t.AsFloat64()
	default:
		panic(fmt.Sprintf("unsupported dtype: %s", t.DType()))
	}
}

func (m *MockBackend) fromFloat64Slice(src []float64, t *RawTensor) {
	switch t.DType() {
	case Float32:
		dst := t.AsFloat32()
		for i, v := range src {
			dst[i] = float32(v)
		}
	case Float64:
		copy(t.AsFloat64(), src)
	}
}

func (m *MockBackend) broadcastIndex(flatIdx int, outShape, inShape Shape) int {
	outStrides := outShape.ComputeStrides()
	indices := make([]int, len(outShape))

	temp := flatIdx
	for i := 0; i < len(outShape); i++ {
		indices[i] = temp / outStrides[i]
		temp %= outStrides[i]
	}

	inStrides := inShape.ComputeStrides()
	inIdx := 0

	offset := len(outShape) - len(inShape)
	for i := 0; i < len(inShape); i++ {
		outDimIdx := indices[offset+i]

		// If input dimension is 1, always use index 0 (broadcasting)
		if inShape[i] == 1 {
			outDimIdx = 0
		}

		inIdx += outDimIdx * inStrides[i]
	}

	return inIdx
}
