package tensor

import "fmt"

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
// A rank-0 shape is a scalar with one element.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that every dimension is positive.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// ComputeStrides calculates row-major strides: the stride of a dimension
// is the number of elements spanned by one step along it.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	step := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = step
		step *= s[i]
	}
	return strides
}

// BroadcastShapes implements NumPy-style broadcasting rules.
//
// Shapes are aligned at their trailing dimensions; a missing dimension
// counts as 1. Two aligned dimensions are compatible when they are equal
// or either is 1, and the result takes the larger of the two.
//
// Returns the broadcasted shape, a flag indicating whether any operand
// needs virtual expansion, and an error if the shapes are incompatible.
//
// Examples:
//
//	(3, 1) + (3, 5) → (3, 5), true, nil
//	(1, 5) + (3, 5) → (3, 5), true, nil
//	(3, 5) + (3, 5) → (3, 5), false, nil
//	(3, 4) + (3, 5) → nil, false, Error
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	ndim := max(len(a), len(b))
	result := make(Shape, ndim)
	needsBroadcast := false

	// dimAt reads a dimension counting from the right, padding with 1.
	dimAt := func(s Shape, fromRight int) int {
		idx := len(s) - 1 - fromRight
		if idx < 0 {
			return 1
		}
		return s[idx]
	}

	for i := 0; i < ndim; i++ {
		aDim := dimAt(a, i)
		bDim := dimAt(b, i)

		switch {
		case aDim == bDim:
			result[ndim-1-i] = aDim
		case aDim == 1:
			result[ndim-1-i] = bDim
			needsBroadcast = true
		case bDim == 1:
			result[ndim-1-i] = aDim
			needsBroadcast = true
		default:
			return nil, false, fmt.Errorf("shapes not compatible for broadcasting: %v vs %v (dimension %d: %d vs %d)",
				a, b, ndim-1-i, aDim, bDim)
		}
	}

	return result, needsBroadcast, nil
}
