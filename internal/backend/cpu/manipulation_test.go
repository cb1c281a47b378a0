package cpu

import (
	"testing"

	"github.com/born-ml/pyramid/internal/tensor"
)

// TestCat_ChannelDim tests concatenation along the channel dimension,
// the texture-transfer "wrap" operation.
func TestCat_ChannelDim(t *testing.T) {
	backend := New()

	a, _ := tensor.NewRaw(tensor.Shape{1, 2, 2, 2}, tensor.Float32, tensor.CPU)
	b, _ := tensor.NewRaw(tensor.Shape{1, 1, 2, 2}, tensor.Float32, tensor.CPU)
	for i := range a.AsFloat32() {
		a.AsFloat32()[i] = float32(i)
	}
	for i := range b.AsFloat32() {
		b.AsFloat32()[i] = float32(100 + i)
	}

	out := backend.Cat([]*tensor.RawTensor{a, b}, 1)

	expectedShape := tensor.Shape{1, 3, 2, 2}
	if !out.Shape().Equal(expectedShape) {
		t.Fatalf("Output shape: expected %v, got %v", expectedShape, out.Shape())
	}

	expected := []float32{0, 1, 2, 3, 4, 5, 6, 7, 100, 101, 102, 103}
	outData := out.AsFloat32()
	for i, exp := range expected {
		if outData[i] != exp {
			t.Errorf("Output[%d]: expected %.1f, got %.1f", i, exp, outData[i])
		}
	}
}

// TestCat_NegativeDim tests negative dimension indexing.
func TestCat_NegativeDim(t *testing.T) {
	backend := New()

	a, _ := tensor.NewRaw(tensor.Shape{2, 2}, tensor.Float32, tensor.CPU)
	b, _ := tensor.NewRaw(tensor.Shape{2, 1}, tensor.Float32, tensor.CPU)
	copy(a.AsFloat32(), []float32{1, 2, 3, 4})
	copy(b.AsFloat32(), []float32{9, 8})

	out := backend.Cat([]*tensor.RawTensor{a, b}, -1)

	expected := []float32{1, 2, 9, 3, 4, 8}
	outData := out.AsFloat32()
	for i, exp := range expected {
		if outData[i] != exp {
			t.Errorf("Output[%d]: expected %.1f, got %.1f", i, exp, outData[i])
		}
	}
}

// TestChunk_BatchDim tests the per-sample split used by texture
// transfer, then verifies Cat restores the original tensor.
func TestChunk_BatchDim(t *testing.T) {
	backend := New()

	x, _ := tensor.NewRaw(tensor.Shape{3, 2, 1, 2}, tensor.Float32, tensor.CPU)
	data := x.AsFloat32()
	for i := range data {
		data[i] = float32(i)
	}

	parts := backend.Chunk(x, 3, 0)

	if len(parts) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(parts))
	}
	expectedShape := tensor.Shape{1, 2, 1, 2}
	for i, p := range parts {
		if !p.Shape().Equal(expectedShape) {
			t.Fatalf("Chunk %d shape: expected %v, got %v", i, expectedShape, p.Shape())
		}
		for j, v := range p.AsFloat32() {
			if want := float32(i*4 + j); v != want {
				t.Errorf("Chunk %d element %d: expected %.1f, got %.1f", i, j, want, v)
			}
		}
	}

	restored := backend.Cat(parts, 0)
	restoredData := restored.AsFloat32()
	for i, v := range data {
		if restoredData[i] != v {
			t.Fatalf("Cat(Chunk(x)) element %d: expected %.1f, got %.1f", i, v, restoredData[i])
		}
	}
}

// TestChunk_Float64 covers the float64 path.
func TestChunk_Float64(t *testing.T) {
	backend := New()

	x, _ := tensor.NewRaw(tensor.Shape{2, 4}, tensor.Float64, tensor.CPU)
	copy(x.AsFloat64(), []float64{1, 2, 3, 4, 5, 6, 7, 8})

	parts := backend.Chunk(x, 2, 1)

	if got := parts[0].AsFloat64(); got[0] != 1 || got[1] != 2 || got[2] != 5 || got[3] != 6 {
		t.Errorf("Chunk 0: got %v", got)
	}
	if got := parts[1].AsFloat64(); got[0] != 3 || got[1] != 4 || got[2] != 7 || got[3] != 8 {
		t.Errorf("Chunk 1: got %v", got)
	}
}

// TestUnsqueezeSqueeze tests the view round-trip on the batch
// dimension.
func TestUnsqueezeSqueeze(t *testing.T) {
	backend := New()

	x, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
	copy(x.AsFloat32(), []float32{1, 2, 3, 4, 5, 6})

	up := backend.Unsqueeze(x, 0)
	if !up.Shape().Equal(tensor.Shape{1, 2, 3}) {
		t.Fatalf("Unsqueeze shape: got %v", up.Shape())
	}

	down := backend.Squeeze(up, 0)
	if !down.Shape().Equal(tensor.Shape{2, 3}) {
		t.Fatalf("Squeeze shape: got %v", down.Shape())
	}
	for i, v := range x.AsFloat32() {
		if down.AsFloat32()[i] != v {
			t.Errorf("Element %d: expected %.1f, got %.1f", i, v, down.AsFloat32()[i])
		}
	}
}

// TestSqueeze_NonUnitDim verifies the panic on squeezing a non-unit
// dimension.
func TestSqueeze_NonUnitDim(t *testing.T) {
	backend := New()

	x, _ := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for squeezing dimension of size 2")
		}
	}()
	backend.Squeeze(x, 0)
}
