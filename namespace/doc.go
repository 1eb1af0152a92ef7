// Package namespace models the named symbol groups a session binds: the
// artifact's declared interfaces (parsed from its manifest), the host
// utility namespaces, and the immutable set of bound names.
//
// Namespaces are versioned; lookup is semver-compatible, so a request
// for instruments@1.0 is satisfied by instruments@1.2.0 but never by a
// different major version. Symbols carry WIT signatures from the
// manifest, which is what lets the bridge coerce call arguments without
// any type metadata in the core binary itself.
package namespace
