// Package session orchestrates the workbench bootstrap: bring up the
// interop bridge, register host namespaces, resolve and load the
// pricing artifact, bind its namespaces, and expose them for calls.
//
// The sequence is strict. The bridge exists before the artifact is
// resolved, required namespaces are verified before instantiation, and
// names become visible only after every step succeeds. A bootstrap
// therefore either binds everything it set out to bind or binds
// nothing.
package session
