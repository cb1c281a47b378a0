package tensor

import (
	"math"
	"testing"
)

// Test helpers

func assertEqualFloat32(t *testing.T, expected, actual float32, msg string) {
	t.Helper()
	if math.Abs(float64(expected-actual)) > 1e-6 {
		t.Errorf("%s: expected %v, got %v", msg, expected, actual)
	}
}

func assertEqualShape(t *testing.T, expected, actual Shape, msg string) {
	t.Helper()
	if !expected.Equal(actual) {
		t.Errorf("%s: expected shape %v, got %v", msg, expected, actual)
	}
}

// DType Tests

func TestDataTypeSize(t *testing.T) {
	tests := []struct {
		dtype DataType
		size  int
	}{
		{Float32, 4},
		{Float64, 8},
	}

	for _, tt := range tests {
		if got := tt.dtype.Size(); got != tt.size {
			t.Errorf("%s.Size() = %d, want %d", tt.dtype, got, tt.size)
		}
	}
}

func TestDataTypeString(t *testing.T) {
	tests := []struct {
		dtype DataType
		str   string
	}{
		{Float32, "float32"},
		{Float64, "float64"},
	}

	for _, tt := range tests {
		if got := tt.dtype.String(); got != tt.str {
			t.Errorf("DataType.String() = %q, want %q", got, tt.str)
		}
	}
}

// Shape Tests

func TestShapeNumElements(t *testing.T) {
	tests := []struct {
		shape Shape
		want  int
	}{
		{Shape{}, 1}, // Scalar
		{Shape{5}, 5},
		{Shape{2, 3}, 6},
		{Shape{2, 3, 4}, 24},
	}

	for _, tt := range tests {
		if got := tt.shape.NumElements(); got != tt.want {
			t.Errorf("%v.NumElements() = %d, want %d", tt.shape, got, tt.want)
		}
	}
}

func TestShapeValidate(t *testing.T) {
	if err := (Shape{2, 3}).Validate(); err != nil {
		t.Errorf("valid shape rejected: %v", err)
	}
	if err := (Shape{2, 0}).Validate(); err == nil {
		t.Error("zero dimension should be rejected")
	}
	if err := (Shape{2, -1}).Validate(); err == nil {
		t.Error("negative dimension should be rejected")
	}
}

func TestShapeEqual(t *testing.T) {
	if !(Shape{2, 3}).Equal(Shape{2, 3}) {
		t.Error("equal shapes reported unequal")
	}
	if (Shape{2, 3}).Equal(Shape{3, 2}) {
		t.Error("different shapes reported equal")
	}
	if (Shape{2, 3}).Equal(Shape{2, 3, 1}) {
		t.Error("shapes of different rank reported equal")
	}
}

func TestShapeClone(t *testing.T) {
	original := Shape{2, 3}
	clone := original.Clone()
	clone[0] = 99

	if original[0] != 2 {
		t.Error("Clone should not share memory with original")
	}
}

func TestShapeComputeStrides(t *testing.T) {
	tests := []struct {
		shape Shape
		want  []int
	}{
		{Shape{4}, []int{1}},
		{Shape{2, 3}, []int{3, 1}},
		{Shape{2, 3, 4}, []int{12, 4, 1}},
	}

	for _, tt := range tests {
		got := tt.shape.ComputeStrides()
		if len(got) != len(tt.want) {
			t.Errorf("%v.ComputeStrides() = %v, want %v", tt.shape, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%v.ComputeStrides() = %v, want %v", tt.shape, got, tt.want)
				break
			}
		}
	}
}

func TestBroadcastShapes(t *testing.T) {
	tests := []struct {
		a, b      Shape
		want      Shape
		broadcast bool
	}{
		{Shape{3, 5}, Shape{3, 5}, Shape{3, 5}, false},
		{Shape{3, 1}, Shape{3, 5}, Shape{3, 5}, true},
		{Shape{1, 5}, Shape{3, 5}, Shape{3, 5}, true},
		{Shape{5}, Shape{3, 5}, Shape{3, 5}, true},
		{Shape{1, 4, 1, 1}, Shape{2, 4, 8, 8}, Shape{2, 4, 8, 8}, true},
	}

	for _, tt := range tests {
		got, broadcast, err := BroadcastShapes(tt.a, tt.b)
		if err != nil {
			t.Errorf("BroadcastShapes(%v, %v) error: %v", tt.a, tt.b, err)
			continue
		}
		assertEqualShape(t, tt.want, got, "broadcast result")
		if broadcast != tt.broadcast {
			t.Errorf("BroadcastShapes(%v, %v) broadcast = %v, want %v", tt.a, tt.b, broadcast, tt.broadcast)
		}
	}
}

func TestBroadcastShapesIncompatible(t *testing.T) {
	if _, _, err := BroadcastShapes(Shape{3, 4}, Shape{3, 5}); err == nil {
		t.Error("incompatible shapes should return an error")
	}
}

// Tensor Tests

func TestFromSlice(t *testing.T) {
	backend := NewMockBackend()
	tensor, err := FromSlice([]float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, backend)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	assertEqualShape(t, Shape{2, 3}, tensor.Shape(), "tensor shape")
	assertEqualFloat32(t, 1, tensor.At(0, 0), "element (0,0)")
	assertEqualFloat32(t, 6, tensor.At(1, 2), "element (1,2)")
}

func TestFromSliceShapeMismatch(t *testing.T) {
	backend := NewMockBackend()
	if _, err := FromSlice([]float32{1, 2, 3}, Shape{2, 3}, backend); err == nil {
		t.Error("FromSlice should reject mismatched shape and data length")
	}
}

func TestTensorAtSet(t *testing.T) {
	backend := NewMockBackend()
	tensor := Zeros[float32](Shape{3, 4}, backend)

	tensor.Set(42, 1, 2)
	assertEqualFloat32(t, 42, tensor.At(1, 2), "set then get")
	assertEqualFloat32(t, 0, tensor.At(0, 0), "untouched element")
}

func TestTensorAtOutOfBounds(t *testing.T) {
	backend := NewMockBackend()
	tensor := Zeros[float32](Shape{2, 2}, backend)

	defer func() {
		if recover() == nil {
			t.Error("At with out-of-bounds index should panic")
		}
	}()
	tensor.At(2, 0)
}

func TestTensorDataZeroCopy(t *testing.T) {
	backend := NewMockBackend()
	tensor := Zeros[float32](Shape{2, 3}, backend)

	tensor.Data()[0] = 7
	assertEqualFloat32(t, 7, tensor.At(0, 0), "Data should be a zero-copy view")
}

func TestTensorMetadata(t *testing.T) {
	backend := NewMockBackend()
	tensor := Zeros[float64](Shape{2, 3}, backend)

	if tensor.DType() != Float64 {
		t.Errorf("DType = %s, want float64", tensor.DType())
	}
	if tensor.Device() != CPU {
		t.Errorf("Device = %s, want CPU", tensor.Device())
	}
	if tensor.NumElements() != 6 {
		t.Errorf("NumElements = %d, want 6", tensor.NumElements())
	}
}

func TestTensorItem(t *testing.T) {
	backend := NewMockBackend()
	scalar := Full[float32](Shape{}, 3.5, backend)
	assertEqualFloat32(t, 3.5, scalar.Item(), "scalar item")
}

func TestTensorItemNonScalar(t *testing.T) {
	backend := NewMockBackend()
	tensor := Zeros[float32](Shape{2}, backend)

	defer func() {
		if recover() == nil {
			t.Error("Item on non-scalar tensor should panic")
		}
	}()
	tensor.Item()
}

func TestTensorClone(t *testing.T) {
	backend := NewMockBackend()
	original := Zeros[float32](Shape{2, 3}, backend)
	clone := original.Clone()

	assertEqualShape(t, original.Shape(), clone.Shape(), "clone shape")
	if original.Raw().IsUnique() {
		t.Error("buffer should be shared after Clone")
	}
}
