package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/pyramid/internal/backend/cpu"
	"github.com/born-ml/pyramid/internal/tensor"
)

// TestConv2D_Creation tests Conv2D layer creation.
func TestConv2D_Creation(t *testing.T) {
	backend := cpu.New()

	conv := NewConv2D(3, 8, 3, 1, 1, true, backend)

	assert.Equal(t, 3, conv.InChannels())
	assert.Equal(t, 8, conv.OutChannels())
	assert.True(t, conv.weight.Tensor().Shape().Equal(tensor.Shape{8, 3, 3, 3}))
	assert.True(t, conv.bias.Tensor().Shape().Equal(tensor.Shape{8}))
	assert.Len(t, conv.Parameters(), 2)
}

// TestConv2D_NoBias verifies the bias-free configuration used when a
// normalization layer follows.
func TestConv2D_NoBias(t *testing.T) {
	backend := cpu.New()

	conv := NewConv2D(3, 8, 1, 1, 0, false, backend)

	assert.Nil(t, conv.bias)
	assert.Len(t, conv.Parameters(), 1)
}

// TestConv2D_ForwardShape tests the shape-preserving 3x3 padding-1
// configuration.
func TestConv2D_ForwardShape(t *testing.T) {
	backend := cpu.New()

	conv := NewConv2D(4, 6, 3, 1, 1, true, backend)
	input := tensor.Zeros[float32](tensor.Shape{2, 4, 8, 8}, backend)

	output := conv.Forward(input)

	assert.True(t, output.Shape().Equal(tensor.Shape{2, 6, 8, 8}))
}

// TestConv2D_KnownWeights verifies the forward computation with
// hand-set weight and bias.
func TestConv2D_KnownWeights(t *testing.T) {
	backend := cpu.New()

	conv := NewConv2D(1, 1, 1, 1, 0, true, backend)
	conv.weight.Tensor().Data()[0] = 2.0
	conv.bias.Tensor().Data()[0] = 3.0

	input, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{1, 1, 2, 2}, backend)
	require.NoError(t, err)

	output := conv.Forward(input)

	expected := []float32{5, 7, 9, 11}
	outputData := output.Data()
	for i, exp := range expected {
		assert.Equal(t, exp, outputData[i], "output mismatch at index %d", i)
	}
}

// TestConv2D_ZeroInputZeroOutput verifies the Xavier/zero-bias
// initialization maps zero inputs to zero outputs.
func TestConv2D_ZeroInputZeroOutput(t *testing.T) {
	backend := cpu.New()

	conv := NewConv2D(2, 4, 3, 1, 1, true, backend)
	input := tensor.Zeros[float32](tensor.Shape{1, 2, 4, 4}, backend)

	output := conv.Forward(input)

	for i, v := range output.Data() {
		require.Zero(t, v, "output[%d]", i)
	}
}
