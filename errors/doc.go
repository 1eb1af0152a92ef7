// Package errors provides structured error types for the pricing bridge.
//
// Errors are categorized by Phase (where in the bootstrap they occurred) and
// Kind (error category). The four bootstrap failure classes map to distinct
// (Phase, Kind) pairs and can be distinguished with errors.Is:
//
//	environment missing    [bridge] runtime_unavailable
//	path resolution        [resolve] not_found
//	binary compatibility   [load] incompatible
//	name resolution        [bind] namespace_missing
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseBind, errors.KindNamespaceMissing).
//		Path("pricing-engines").
//		Detail("renamed or stale build").
//		Build()
//
// Or a convenience constructor:
//
//	err := errors.NamespaceMissing("pricing-engines")
//
// All errors implement the standard error interface and support errors.Is/As.
// Class(phase, kind) produces a bare target for errors.Is checks.
package errors
