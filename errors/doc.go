// Package errors provides structured error types for the shared-module host.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type carries a field path and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLink, errors.KindSignatureMismatch).
//		Path("env", "send").
//		Detail("requested (i32) -> i32, host exports (i32, i32, i32) -> i32").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.OutOfBounds(errors.PhaseMarshal, offset, count, size)
//	err := errors.HandleNotFound(handle, registered)
//
// All errors implement the standard error interface and support errors.Is/As.
// Two *Error values match under Is when their Phase and Kind are equal.
package errors
