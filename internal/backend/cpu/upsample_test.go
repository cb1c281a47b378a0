package cpu

import (
	"testing"

	"github.com/born-ml/pyramid/internal/tensor"
)

// TestUpsampleNearest2D_Values verifies each source pixel replicates
// into a scale x scale block.
func TestUpsampleNearest2D_Values(t *testing.T) {
	backend := New()

	input, _ := tensor.NewRaw(tensor.Shape{1, 1, 2, 2}, tensor.Float32, tensor.CPU)
	copy(input.AsFloat32(), []float32{1, 2, 3, 4})

	output := backend.UpsampleNearest2D(input, 2)

	expectedShape := tensor.Shape{1, 1, 4, 4}
	if !output.Shape().Equal(expectedShape) {
		t.Fatalf("Output shape: expected %v, got %v", expectedShape, output.Shape())
	}

	expected := []float32{
		1, 1, 2, 2,
		1, 1, 2, 2,
		3, 3, 4, 4,
		3, 3, 4, 4,
	}
	outputData := output.AsFloat32()
	for i, exp := range expected {
		if outputData[i] != exp {
			t.Errorf("Output[%d]: expected %.1f, got %.1f", i, exp, outputData[i])
		}
	}
}

// TestUpsampleNearest2D_ScaleOne verifies scale 1 is the identity.
func TestUpsampleNearest2D_ScaleOne(t *testing.T) {
	backend := New()

	input, _ := tensor.NewRaw(tensor.Shape{1, 2, 3, 3}, tensor.Float32, tensor.CPU)
	inputData := input.AsFloat32()
	for i := range inputData {
		inputData[i] = float32(i)
	}

	output := backend.UpsampleNearest2D(input, 1)

	if !output.Shape().Equal(input.Shape()) {
		t.Fatalf("Output shape: expected %v, got %v", input.Shape(), output.Shape())
	}
	outputData := output.AsFloat32()
	for i, v := range inputData {
		if outputData[i] != v {
			t.Fatalf("Output[%d]: expected %.1f, got %.1f", i, v, outputData[i])
		}
	}
}

// TestPixelShuffle_ElementMapping verifies the exact channel-to-space
// law: out[c, i*r+di, j*r+dj] = in[c*r*r + di*r + dj, i, j].
func TestPixelShuffle_ElementMapping(t *testing.T) {
	backend := New()

	// [4, 1, 1] with r=2: the four channels become one 2x2 block.
	input, _ := tensor.NewRaw(tensor.Shape{4, 1, 1}, tensor.Float32, tensor.CPU)
	copy(input.AsFloat32(), []float32{1, 2, 3, 4})

	output := backend.PixelShuffle(input, 2)

	expectedShape := tensor.Shape{1, 2, 2}
	if !output.Shape().Equal(expectedShape) {
		t.Fatalf("Output shape: expected %v, got %v", expectedShape, output.Shape())
	}

	// Row-major r x r block.
	expected := []float32{1, 2, 3, 4}
	outputData := output.AsFloat32()
	for i, exp := range expected {
		if outputData[i] != exp {
			t.Errorf("Output[%d]: expected %.1f, got %.1f", i, exp, outputData[i])
		}
	}
}

// TestPixelShuffle_SpatialMapping verifies block placement with a
// larger spatial extent.
func TestPixelShuffle_SpatialMapping(t *testing.T) {
	backend := New()

	// [4, 2, 2] with r=2 -> [1, 4, 4].
	input, _ := tensor.NewRaw(tensor.Shape{4, 2, 2}, tensor.Float32, tensor.CPU)
	inputData := input.AsFloat32()
	// Channel k holds values 10*k + position.
	for c := 0; c < 4; c++ {
		for p := 0; p < 4; p++ {
			inputData[c*4+p] = float32(10*c + p)
		}
	}

	output := backend.PixelShuffle(input, 2)

	expectedShape := tensor.Shape{1, 4, 4}
	if !output.Shape().Equal(expectedShape) {
		t.Fatalf("Output shape: expected %v, got %v", expectedShape, output.Shape())
	}

	// out[(i*2+di)*4 + j*2+dj] = in[(di*2+dj)*4 + i*2+j]
	expected := []float32{
		0, 10, 1, 11,
		20, 30, 21, 31,
		2, 12, 3, 13,
		22, 32, 23, 33,
	}
	outputData := output.AsFloat32()
	for i, exp := range expected {
		if outputData[i] != exp {
			t.Errorf("Output[%d]: expected %.1f, got %.1f", i, exp, outputData[i])
		}
	}
}

// TestPixelShuffle_RoundTrip verifies SpaceToDepth is the exact
// inverse for a grid of factors and channel counts.
func TestPixelShuffle_RoundTrip(t *testing.T) {
	backend := New()

	for _, r := range []int{1, 2, 3, 4} {
		for _, c := range []int{1, 2, 8} {
			input, _ := tensor.NewRaw(tensor.Shape{c * r * r, 3, 5}, tensor.Float32, tensor.CPU)
			inputData := input.AsFloat32()
			for i := range inputData {
				inputData[i] = float32(i) * 0.5
			}

			shuffled := backend.PixelShuffle(input, r)
			restored := backend.SpaceToDepth(shuffled, r)

			if !restored.Shape().Equal(input.Shape()) {
				t.Fatalf("r=%d c=%d: round-trip shape %v != %v", r, c, restored.Shape(), input.Shape())
			}
			restoredData := restored.AsFloat32()
			for i, v := range inputData {
				if restoredData[i] != v {
					t.Fatalf("r=%d c=%d: element %d: expected %v, got %v", r, c, i, v, restoredData[i])
				}
			}
		}
	}
}

// TestPixelShuffle_ElementCount verifies the rearrangement preserves
// the total element count.
func TestPixelShuffle_ElementCount(t *testing.T) {
	backend := New()

	cases := []struct {
		shape tensor.Shape
		r     int
	}{
		{tensor.Shape{4, 3, 3}, 2},
		{tensor.Shape{2, 18, 2, 2}, 3},
		{tensor.Shape{16, 1, 7}, 4},
	}
	for _, tc := range cases {
		input, _ := tensor.NewRaw(tc.shape, tensor.Float32, tensor.CPU)
		output := backend.PixelShuffle(input, tc.r)
		if output.NumElements() != input.NumElements() {
			t.Errorf("shape %v r=%d: element count %d != %d",
				tc.shape, tc.r, output.NumElements(), input.NumElements())
		}
	}
}

// TestPixelShuffle_Batched verifies batch elements shuffle
// independently.
func TestPixelShuffle_Batched(t *testing.T) {
	backend := New()

	input, _ := tensor.NewRaw(tensor.Shape{2, 4, 1, 1}, tensor.Float32, tensor.CPU)
	copy(input.AsFloat32(), []float32{1, 2, 3, 4, 5, 6, 7, 8})

	output := backend.PixelShuffle(input, 2)

	expectedShape := tensor.Shape{2, 1, 2, 2}
	if !output.Shape().Equal(expectedShape) {
		t.Fatalf("Output shape: expected %v, got %v", expectedShape, output.Shape())
	}
	expected := []float32{1, 2, 3, 4, 5, 6, 7, 8}
	outputData := output.AsFloat32()
	for i, exp := range expected {
		if outputData[i] != exp {
			t.Errorf("Output[%d]: expected %.1f, got %.1f", i, exp, outputData[i])
		}
	}
}

// TestPixelShuffle_IndivisibleChannels verifies the panic when the
// channel count is not divisible by factor^2.
func TestPixelShuffle_IndivisibleChannels(t *testing.T) {
	backend := New()

	input, _ := tensor.NewRaw(tensor.Shape{3, 2, 2}, tensor.Float32, tensor.CPU)

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for indivisible channel count")
		}
	}()
	backend.PixelShuffle(input, 2)
}

// TestSpaceToDepth_IndivisibleSpatial verifies the panic when spatial
// dims are not divisible by the factor.
func TestSpaceToDepth_IndivisibleSpatial(t *testing.T) {
	backend := New()

	input, _ := tensor.NewRaw(tensor.Shape{1, 3, 3}, tensor.Float32, tensor.CPU)

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for indivisible spatial dims")
		}
	}()
	backend.SpaceToDepth(input, 2)
}
