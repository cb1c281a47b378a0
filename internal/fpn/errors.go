package fpn

import "errors"

// Error taxonomy for pyramid construction and forward passes.
//
// All three are fatal for the operation that raised them: no partial
// results are returned and nothing is retried. Callers distinguish
// them with errors.Is.
var (
	// ErrConfig marks construction-time configuration errors, such as
	// non-contiguous strides or mismatched channel counts. A module
	// that failed construction is unusable.
	ErrConfig = errors.New("invalid configuration")

	// ErrShape marks forward-time shape violations, such as a missing
	// named level or an input of the wrong rank.
	ErrShape = errors.New("shape mismatch")

	// ErrInternal marks internal consistency violations that indicate
	// an implementation bug, never expected in correct operation.
	ErrInternal = errors.New("internal inconsistency")
)
