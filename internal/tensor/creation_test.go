package tensor

import (
	"testing"
)

// Creation Tests

func TestZeros(t *testing.T) {
	backend := NewMockBackend()
	tensor := Zeros[float32](Shape{2, 3}, backend)

	assertEqualShape(t, Shape{2, 3}, tensor.Shape(), "zeros shape")
	for i, v := range tensor.Data() {
		if v != 0 {
			t.Errorf("element %d = %v, want 0", i, v)
		}
	}
}

func TestOnes(t *testing.T) {
	backend := NewMockBackend()
	tensor := Ones[float64](Shape{3, 2}, backend)

	if tensor.DType() != Float64 {
		t.Errorf("DType = %s, want float64", tensor.DType())
	}
	for i, v := range tensor.Data() {
		if v != 1 {
			t.Errorf("element %d = %v, want 1", i, v)
		}
	}
}

func TestFull(t *testing.T) {
	backend := NewMockBackend()
	tensor := Full[float32](Shape{2, 2}, 3.14, backend)

	for _, v := range tensor.Data() {
		assertEqualFloat32(t, 3.14, v, "full element")
	}
}

func TestArange(t *testing.T) {
	backend := NewMockBackend()
	tensor := Arange[float32](2, 7, backend)

	assertEqualShape(t, Shape{5}, tensor.Shape(), "arange shape")
	for i, v := range tensor.Data() {
		assertEqualFloat32(t, float32(2+i), v, "arange element")
	}
}

func TestArangeInvalidRange(t *testing.T) {
	backend := NewMockBackend()

	defer func() {
		if recover() == nil {
			t.Error("Arange with end <= start should panic")
		}
	}()
	Arange[float32](5, 5, backend)
}

func TestRandn(t *testing.T) {
	backend := NewMockBackend()
	tensor := Randn[float32](Shape{50, 50}, backend)

	// Sample mean of N(0, 1) over 2500 draws stays well within +-0.5
	sum := 0.0
	for _, v := range tensor.Data() {
		sum += float64(v)
	}
	mean := sum / float64(tensor.NumElements())
	if mean < -0.5 || mean > 0.5 {
		t.Errorf("sample mean = %v, expected near 0", mean)
	}
}

func TestRand(t *testing.T) {
	backend := NewMockBackend()
	tensor := Rand[float64](Shape{100}, backend)

	for i, v := range tensor.Data() {
		if v < 0 || v >= 1 {
			t.Errorf("element %d = %v, want value in [0, 1)", i, v)
		}
	}
}
