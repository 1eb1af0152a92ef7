// Package pricingbridge hosts a compiled pricing library inside a Go
// process and exposes its namespaces to workbench tooling.
//
// The pricing library ships as a WebAssembly artifact built separately
// from the host. A session brings up the embedded engine, loads the
// artifact, binds its declared namespaces, and makes every symbol
// callable by path.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	pricing-bridge/      Root package documentation
//	├── session/         Bootstrap orchestration and symbol dispatch
//	├── bridge/          wazero engine lifecycle and host registration
//	├── artifact/        Artifact resolution, validation, and scanning
//	├── namespace/       Namespace tree, manifests, and bound names
//	├── hostlib/         Host utility namespaces (plot, array, table)
//	├── dateonly/        Calendar date type shared with the artifact
//	├── config/          TOML configuration
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
// Bootstrap a session and price an instrument:
//
//	s := session.New(session.Config{ArtifactPath: "lib/pricing/pricing.wasm"})
//	if err := s.Bootstrap(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close(ctx)
//
//	price, err := s.Call(ctx, "instruments#price-european", 105.5, 100.0)
//
// # Failure Classes
//
// Bootstrap failures carry a phase and kind so callers can tell apart
// the four ways a workbench fails to come up:
//
//   - bridge/runtime_unavailable: the embedded engine could not start
//   - resolve/not_found: the artifact path does not exist
//   - load/incompatible: the file exists but is not a loadable artifact
//   - bind/namespace_missing: the artifact lacks a required namespace
//
// A failed bootstrap binds nothing and the failure is sticky; recovery
// means building a new session.
//
// # Thread Safety
//
// Session is safe for concurrent use; calls into the artifact are
// serialized. Host namespace state (figures, arrays, frames) is guarded
// by its own locks.
package pricingbridge
