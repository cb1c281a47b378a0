package cpu

import (
	"testing"

	"github.com/born-ml/pyramid/internal/tensor"
)

// TestMaxPool2D_BasicForward tests basic max pooling correctness.
func TestMaxPool2D_BasicForward(t *testing.T) {
	backend := New()

	// Input: [1, 1, 4, 4] with sequential values 1-16
	input, _ := tensor.NewRaw(tensor.Shape{1, 1, 4, 4}, tensor.Float32, tensor.CPU)
	inputData := input.AsFloat32()
	for i := 0; i < 16; i++ {
		inputData[i] = float32(i + 1)
	}

	output := backend.MaxPool2D(input, 2, 2)

	expectedShape := tensor.Shape{1, 1, 2, 2}
	if !output.Shape().Equal(expectedShape) {
		t.Errorf("Output shape: expected %v, got %v", expectedShape, output.Shape())
	}

	// Max in each 2x2 window.
	expected := []float32{6, 8, 14, 16}
	outputData := output.AsFloat32()
	for i, exp := range expected {
		if outputData[i] != exp {
			t.Errorf("Output[%d]: expected %.1f, got %.1f", i, exp, outputData[i])
		}
	}
}

// TestMaxPool2D_KernelOneStrideTwo tests the degenerate configuration
// used by the pyramid top block: kernel 1, stride 2 subsamples without
// pooling any window.
func TestMaxPool2D_KernelOneStrideTwo(t *testing.T) {
	backend := New()

	input, _ := tensor.NewRaw(tensor.Shape{1, 1, 4, 4}, tensor.Float32, tensor.CPU)
	inputData := input.AsFloat32()
	for i := 0; i < 16; i++ {
		inputData[i] = float32(i)
	}

	output := backend.MaxPool2D(input, 1, 2)

	// out = (4 - 1) / 2 + 1 = 2
	expectedShape := tensor.Shape{1, 1, 2, 2}
	if !output.Shape().Equal(expectedShape) {
		t.Fatalf("Output shape: expected %v, got %v", expectedShape, output.Shape())
	}

	// Picks positions (0,0), (0,2), (2,0), (2,2).
	expected := []float32{0, 2, 8, 10}
	outputData := output.AsFloat32()
	for i, exp := range expected {
		if outputData[i] != exp {
			t.Errorf("Output[%d]: expected %.1f, got %.1f", i, exp, outputData[i])
		}
	}
}

// TestMaxPool2D_MultiChannel verifies channels pool independently.
func TestMaxPool2D_MultiChannel(t *testing.T) {
	backend := New()

	input, _ := tensor.NewRaw(tensor.Shape{1, 2, 2, 2}, tensor.Float32, tensor.CPU)
	inputData := input.AsFloat32()
	// Channel 0: 1..4, channel 1: 10..40.
	copy(inputData, []float32{1, 2, 3, 4, 10, 20, 30, 40})

	output := backend.MaxPool2D(input, 2, 2)

	expectedShape := tensor.Shape{1, 2, 1, 1}
	if !output.Shape().Equal(expectedShape) {
		t.Fatalf("Output shape: expected %v, got %v", expectedShape, output.Shape())
	}

	outputData := output.AsFloat32()
	if outputData[0] != 4 || outputData[1] != 40 {
		t.Errorf("Expected [4 40], got %v", outputData)
	}
}

// TestMaxPool2D_Float64 covers the float64 path.
func TestMaxPool2D_Float64(t *testing.T) {
	backend := New()

	input, _ := tensor.NewRaw(tensor.Shape{1, 1, 2, 2}, tensor.Float64, tensor.CPU)
	copy(input.AsFloat64(), []float64{-4, -3, -2, -1})

	output := backend.MaxPool2D(input, 2, 2)

	if got := output.AsFloat64()[0]; got != -1 {
		t.Errorf("Expected -1, got %v", got)
	}
}

// TestMaxPool2D_InvalidKernel verifies the panic on oversized kernels.
func TestMaxPool2D_InvalidKernel(t *testing.T) {
	backend := New()

	input, _ := tensor.NewRaw(tensor.Shape{1, 1, 2, 2}, tensor.Float32, tensor.CPU)

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for kernel larger than input")
		}
	}()
	backend.MaxPool2D(input, 3, 1)
}
