// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides type-safe tensor operations for the Pyramid library.
//
// # Overview
//
// Tensors are the fundamental data structure in Pyramid. This package provides:
//   - Generic type-safe tensors (Tensor[T, B])
//   - NumPy-style broadcasting
//   - Zero-copy operations where possible
//   - Device abstraction
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/pyramid/tensor"
//	    "github.com/born-ml/pyramid/backend/cpu"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    // Create tensors
//	    x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	    y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//
//	    // Tensor operations
//	    z := x.Add(y)
//	}
//
// # Supported Data Types
//
// The tensor package supports the following data types via the DType constraint:
//   - float32, float64 (floating-point)
//
// # Broadcasting
//
// Tensor operations follow NumPy broadcasting rules:
//
//	a := tensor.Zeros[float32](tensor.Shape{3, 1}, backend)     // (3, 1)
//	b := tensor.Ones[float32](tensor.Shape{3, 4}, backend)      // (3, 4)
//	c := a.Add(b)                                                // (3, 4)
//
// # Memory Management
//
// Tensors use zero-copy operations where possible. The underlying data is
// reference-counted and automatically freed when no longer needed.
//
// # Spatial Operations
//
// Beyond element-wise arithmetic, the package exposes the spatial operations
// used by feature pyramids:
//
//	y := x.Reshape(3, 4)             // Reshape to a new shape
//	y := x.Transpose()               // Transpose dimensions
//	y := x.MulScalar(2.0)            // Multiply by scalar
//	y := x.DivScalar(2.0)            // Divide by scalar
//	parts := x.Chunk(4, 0)           // Split along a dimension
//	y := tensor.Cat(parts, 0)        // Concatenate along a dimension
//
// See method documentation for the full list of operations.
package tensor
