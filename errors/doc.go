// Package errors provides structured error types for the unionfn module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries the operation set and operation names, the Go type involved
// and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDefine, errors.KindOverflow).
//		Set("instr").
//		Op("i64.const").
//		GoType("interp.Const").
//		Detail("arguments need %d bytes, payload holds %d", 16, 8).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Duplicate(errors.PhaseDefine, "counter", "reset")
//	err := errors.Unsupported(errors.PhaseLower, "inconsistent stack height")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
