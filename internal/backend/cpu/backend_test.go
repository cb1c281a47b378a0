package cpu

import (
	"testing"

	"github.com/born-ml/pyramid/internal/tensor"
)

// TestBackend_Metadata checks name and device reporting.
func TestBackend_Metadata(t *testing.T) {
	backend := New()

	if backend.Name() != "CPU" {
		t.Errorf("Name: expected CPU, got %s", backend.Name())
	}
	if backend.Device() != tensor.CPU {
		t.Errorf("Device: expected CPU, got %v", backend.Device())
	}
}

// TestAdd_SameShape tests element-wise addition.
func TestAdd_SameShape(t *testing.T) {
	backend := New()

	a, _ := tensor.NewRaw(tensor.Shape{2, 2}, tensor.Float32, tensor.CPU)
	b, _ := tensor.NewRaw(tensor.Shape{2, 2}, tensor.Float32, tensor.CPU)
	copy(a.AsFloat32(), []float32{1, 2, 3, 4})
	copy(b.AsFloat32(), []float32{10, 20, 30, 40})

	out := backend.Add(a, b)

	expected := []float32{11, 22, 33, 44}
	outData := out.AsFloat32()
	for i, exp := range expected {
		if outData[i] != exp {
			t.Errorf("Output[%d]: expected %.1f, got %.1f", i, exp, outData[i])
		}
	}
}

// TestAdd_BiasBroadcast tests the [1,C,1,1] broadcast pattern used for
// convolution bias and batch-norm shift.
func TestAdd_BiasBroadcast(t *testing.T) {
	backend := New()

	x, _ := tensor.NewRaw(tensor.Shape{1, 2, 2, 2}, tensor.Float32, tensor.CPU)
	bias, _ := tensor.NewRaw(tensor.Shape{1, 2, 1, 1}, tensor.Float32, tensor.CPU)
	for i := range x.AsFloat32() {
		x.AsFloat32()[i] = float32(i)
	}
	copy(bias.AsFloat32(), []float32{100, 200})

	out := backend.Add(x, bias)

	expected := []float32{100, 101, 102, 103, 204, 205, 206, 207}
	outData := out.AsFloat32()
	for i, exp := range expected {
		if outData[i] != exp {
			t.Errorf("Output[%d]: expected %.1f, got %.1f", i, exp, outData[i])
		}
	}
}

// TestMul_ScaleBroadcast tests the per-channel scale pattern used by
// batch normalization.
func TestMul_ScaleBroadcast(t *testing.T) {
	backend := New()

	x, _ := tensor.NewRaw(tensor.Shape{1, 2, 1, 2}, tensor.Float32, tensor.CPU)
	scale, _ := tensor.NewRaw(tensor.Shape{1, 2, 1, 1}, tensor.Float32, tensor.CPU)
	copy(x.AsFloat32(), []float32{1, 2, 3, 4})
	copy(scale.AsFloat32(), []float32{2, 10})

	out := backend.Mul(x, scale)

	expected := []float32{2, 4, 30, 40}
	outData := out.AsFloat32()
	for i, exp := range expected {
		if outData[i] != exp {
			t.Errorf("Output[%d]: expected %.1f, got %.1f", i, exp, outData[i])
		}
	}
}

// TestDivScalar_FuseAverage tests the divide-by-two used by average
// fusion, on both dtypes.
func TestDivScalar_FuseAverage(t *testing.T) {
	backend := New()

	x32, _ := tensor.NewRaw(tensor.Shape{4}, tensor.Float32, tensor.CPU)
	copy(x32.AsFloat32(), []float32{2, 4, 6, -8})
	out32 := backend.DivScalar(x32, float32(2))
	for i, exp := range []float32{1, 2, 3, -4} {
		if out32.AsFloat32()[i] != exp {
			t.Errorf("float32 output[%d]: expected %.1f, got %.1f", i, exp, out32.AsFloat32()[i])
		}
	}

	x64, _ := tensor.NewRaw(tensor.Shape{2}, tensor.Float64, tensor.CPU)
	copy(x64.AsFloat64(), []float64{3, -5})
	out64 := backend.DivScalar(x64, float64(2))
	for i, exp := range []float64{1.5, -2.5} {
		if out64.AsFloat64()[i] != exp {
			t.Errorf("float64 output[%d]: expected %v, got %v", i, exp, out64.AsFloat64()[i])
		}
	}
}

// TestReLU_Values verifies negatives clamp to zero.
func TestReLU_Values(t *testing.T) {
	backend := New()

	x, _ := tensor.NewRaw(tensor.Shape{5}, tensor.Float32, tensor.CPU)
	copy(x.AsFloat32(), []float32{-2, -0.5, 0, 0.5, 2})

	out := backend.ReLU(x)

	expected := []float32{0, 0, 0, 0.5, 2}
	outData := out.AsFloat32()
	for i, exp := range expected {
		if outData[i] != exp {
			t.Errorf("Output[%d]: expected %.1f, got %.1f", i, exp, outData[i])
		}
	}
}

// TestReshape_PreservesData verifies reshape keeps the element order.
func TestReshape_PreservesData(t *testing.T) {
	backend := New()

	x, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
	copy(x.AsFloat32(), []float32{1, 2, 3, 4, 5, 6})

	out := backend.Reshape(x, tensor.Shape{3, 2})

	if !out.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("Reshape shape: got %v", out.Shape())
	}
	for i, v := range x.AsFloat32() {
		if out.AsFloat32()[i] != v {
			t.Errorf("Element %d: expected %.1f, got %.1f", i, v, out.AsFloat32()[i])
		}
	}
}

// TestTranspose_2D checks a plain matrix transpose.
func TestTranspose_2D(t *testing.T) {
	backend := New()

	x, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
	copy(x.AsFloat32(), []float32{1, 2, 3, 4, 5, 6})

	out := backend.Transpose(x, 1, 0)

	if !out.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("Transpose shape: got %v", out.Shape())
	}
	expected := []float32{1, 4, 2, 5, 3, 6}
	outData := out.AsFloat32()
	for i, exp := range expected {
		if outData[i] != exp {
			t.Errorf("Output[%d]: expected %.1f, got %.1f", i, exp, outData[i])
		}
	}
}
