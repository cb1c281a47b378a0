package fpn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/pyramid/internal/backend/cpu"
	"github.com/born-ml/pyramid/internal/tensor"
)

// TestSubPixel_ConfigErrors verifies the divisibility contract.
func TestSubPixel_ConfigErrors(t *testing.T) {
	backend := cpu.New()

	_, err := NewSubPixel(6, 2, backend)
	assert.ErrorIs(t, err, ErrConfig)

	_, err = NewSubPixel(0, 2, backend)
	assert.ErrorIs(t, err, ErrConfig)

	_, err = NewSubPixel(4, 0, backend)
	assert.ErrorIs(t, err, ErrConfig)
}

// TestSubPixel_DimensionLaw verifies the output dimension law
// Cout = Cin/r², rH, rW.
func TestSubPixel_DimensionLaw(t *testing.T) {
	backend := cpu.New()

	sp, err := NewSubPixel(8, 2, backend)
	require.NoError(t, err)
	assert.Equal(t, 8, sp.InChannels())
	assert.Equal(t, 2, sp.OutChannels())
	assert.Equal(t, 2, sp.Factor())

	input := tensor.Zeros[float32](tensor.Shape{8, 3, 5}, backend)
	output, err := sp.Forward(input)
	require.NoError(t, err)
	assert.True(t, output.Shape().Equal(tensor.Shape{2, 6, 10}))
	assert.Equal(t, input.NumElements(), output.NumElements())
}

// TestSubPixel_RoundTrip verifies Inverse reproduces the input
// exactly for the full factor/channel grid.
func TestSubPixel_RoundTrip(t *testing.T) {
	backend := cpu.New()

	for _, r := range []int{1, 2, 3, 4} {
		for _, c := range []int{1, 2, 8} {
			sp, err := NewSubPixel(c*r*r, r, backend)
			require.NoError(t, err)

			data := make([]float32, c*r*r*2*3)
			for i := range data {
				data[i] = float32(i) + 0.25
			}
			input, err := tensor.FromSlice(data, tensor.Shape{c * r * r, 2, 3}, backend)
			require.NoError(t, err)

			up, err := sp.Forward(input)
			require.NoError(t, err)
			down, err := sp.Inverse(up)
			require.NoError(t, err)

			require.True(t, down.Shape().Equal(input.Shape()), "r=%d c=%d", r, c)
			require.Equal(t, input.Data(), down.Data(), "r=%d c=%d", r, c)
		}
	}
}

// TestSubPixel_ShapeErrors verifies forward-time rank and channel
// checks.
func TestSubPixel_ShapeErrors(t *testing.T) {
	backend := cpu.New()

	sp, err := NewSubPixel(4, 2, backend)
	require.NoError(t, err)

	t.Run("wrong channels", func(t *testing.T) {
		input := tensor.Zeros[float32](tensor.Shape{8, 2, 2}, backend)
		_, err := sp.Forward(input)
		assert.ErrorIs(t, err, ErrShape)
	})

	t.Run("wrong rank", func(t *testing.T) {
		input := tensor.Zeros[float32](tensor.Shape{4, 4}, backend)
		_, err := sp.Forward(input)
		assert.ErrorIs(t, err, ErrShape)
	})

	t.Run("inverse indivisible spatial", func(t *testing.T) {
		input := tensor.Zeros[float32](tensor.Shape{1, 3, 3}, backend)
		_, err := sp.Inverse(input)
		assert.ErrorIs(t, err, ErrShape)
	})
}

// TestSubPixel_Batched verifies the batch dimension is handled
// independently.
func TestSubPixel_Batched(t *testing.T) {
	backend := cpu.New()

	sp, err := NewSubPixel(4, 2, backend)
	require.NoError(t, err)

	input, err := tensor.FromSlice(
		[]float32{1, 2, 3, 4, 5, 6, 7, 8},
		tensor.Shape{2, 4, 1, 1}, backend)
	require.NoError(t, err)

	output, err := sp.Forward(input)
	require.NoError(t, err)

	require.True(t, output.Shape().Equal(tensor.Shape{2, 1, 2, 2}))
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, output.Data())
}
