// Package artifact resolves, reads and validates the prebuilt pricing
// library binary before the bridge compiles it.
//
// Resolution follows the original script-relative convention: a relative
// path is joined onto a base directory that defaults to the running
// executable's location. Validation is strictly ordered: the wasm magic
// and version are checked before any section is touched, so a file that
// exists but is not a compatible binary fails with a compatibility-class
// error rather than a not-found one.
//
// The scanner extracts two things the session needs before instantiation:
// the exported function names (interpreted as "namespace#function"
// symbols) and the "bridge-manifest" custom section, which carries the
// artifact's declared interface text.
package artifact
