package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations.
//
// The Pyramid library treats the backend as the sole source of parallelism:
// every operation is a pure transform from input tensors to a fresh output
// tensor (modulo the inplace fast path when a buffer is uniquely owned).
//
// Implementations:
//   - CPU: Pure Go (internal/backend/cpu)
type Backend interface {
	// Element-wise binary operations (NumPy-style broadcasting)
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Convolutional operations
	Conv2D(input, kernel *RawTensor, stride, padding int) *RawTensor
	MaxPool2D(input *RawTensor, kernelSize, stride int) *RawTensor

	// Spatial resampling operations
	//
	// UpsampleNearest2D enlarges the two trailing spatial dimensions of a
	// [N, C, H, W] tensor by an integer factor using nearest-neighbor
	// replication.
	//
	// PixelShuffle rearranges channel blocks into space: [*, C·r², H, W] ->
	// [*, C, rH, rW]. SpaceToDepth is its exact inverse. Both accept 3D
	// [C, H, W] and 4D [N, C, H, W] tensors; the batch dimension, when
	// present, is processed independently.
	UpsampleNearest2D(x *RawTensor, scale int) *RawTensor
	PixelShuffle(x *RawTensor, factor int) *RawTensor
	SpaceToDepth(x *RawTensor, factor int) *RawTensor

	// Activation functions
	ReLU(x *RawTensor) *RawTensor

	// Shape operations
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Scalar operations (element-wise with scalar)
	MulScalar(x *RawTensor, scalar any) *RawTensor // multiply by scalar
	DivScalar(x *RawTensor, scalar any) *RawTensor // divide by scalar

	// Manipulation operations
	Cat(tensors []*RawTensor, dim int) *RawTensor // concatenate along dimension
	Chunk(x *RawTensor, n, dim int) []*RawTensor  // split into n equal parts
	Unsqueeze(x *RawTensor, dim int) *RawTensor   // add dimension of size 1
	Squeeze(x *RawTensor, dim int) *RawTensor     // remove dimension of size 1

	// Metadata
	Name() string
	Device() Device
}
