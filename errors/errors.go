package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in the bootstrap sequence the error occurred
type Phase string

const (
	PhaseBridge  Phase = "bridge"  // interop bridge lifecycle
	PhaseResolve Phase = "resolve" // artifact path resolution
	PhaseLoad    Phase = "load"    // artifact reading and validation
	PhaseBind    Phase = "bind"    // namespace and symbol binding
	PhaseHost    Phase = "host"    // host function registration
	PhaseSession Phase = "session" // session sequencing
	PhaseCall    Phase = "call"    // invoking artifact exports
)

// Kind categorizes the error
type Kind string

const (
	KindRuntimeUnavailable Kind = "runtime_unavailable"
	KindNotFound           Kind = "not_found"
	KindIncompatible       Kind = "incompatible"
	KindNamespaceMissing   Kind = "namespace_missing"
	KindSymbolMissing      Kind = "symbol_missing"
	KindInvalidInput       Kind = "invalid_input"
	KindTypeMismatch       Kind = "type_mismatch"
	KindInstantiation      Kind = "instantiation"
	KindRegistration       Kind = "registration"
	KindNotInitialized     Kind = "not_initialized"
	KindAlreadyClosed      Kind = "already_closed"
	KindTrap               Kind = "trap"
)

// Error is the structured error type used throughout the bridge
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "/"))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error. Two errors match when
// their Phase and Kind agree, so failure classes can be tested without
// comparing messages.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Class returns a bare (Phase, Kind) error usable as an errors.Is target.
func Class(phase Phase, kind Kind) *Error {
	return &Error{Phase: phase, Kind: kind}
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the namespace path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for the bootstrap failure classes

// RuntimeUnavailable creates an environment-missing error: the hosted
// runtime could not be brought up at all.
func RuntimeUnavailable(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseBridge,
		Kind:   KindRuntimeUnavailable,
		Detail: detail,
		Cause:  cause,
	}
}

// ArtifactNotFound creates a path-resolution error
func ArtifactNotFound(path string, cause error) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("artifact %q not found", path),
		Cause:  cause,
	}
}

// Incompatible creates a binary-compatibility error: the artifact exists
// but is not loadable by the active bridge.
func Incompatible(detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindIncompatible,
		Detail: detail,
		Cause:  cause,
	}
}

// NamespaceMissing creates a name-resolution error: the artifact loaded
// but does not declare an expected namespace.
func NamespaceMissing(name string) *Error {
	return &Error{
		Phase:  PhaseBind,
		Kind:   KindNamespaceMissing,
		Path:   []string{name},
		Detail: fmt.Sprintf("artifact does not declare namespace %q", name),
	}
}

// SymbolMissing creates a symbol lookup error
func SymbolMissing(namespace, name string) *Error {
	return &Error{
		Phase:  PhaseCall,
		Kind:   KindSymbolMissing,
		Path:   []string{namespace},
		Detail: fmt.Sprintf("symbol %q not found", name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// TypeMismatch creates an argument coercion error
func TypeMismatch(phase Phase, path []string, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Detail: detail,
	}
}

// Instantiation creates an artifact instantiation error
func Instantiation(cause error) *Error {
	return &Error{
		Phase:  PhaseLoad,
		Kind:   KindInstantiation,
		Detail: "instantiate artifact",
		Cause:  cause,
	}
}

// Registration creates a host function registration error
func Registration(namespace, name string, cause error) *Error {
	return &Error{
		Phase:  PhaseHost,
		Kind:   KindRegistration,
		Path:   []string{namespace},
		Detail: fmt.Sprintf("register %s#%s", namespace, name),
		Cause:  cause,
	}
}

// NotInitialized creates a not-initialized error for a component used
// before the bootstrap completed.
func NotInitialized(component string) *Error {
	return &Error{
		Phase:  PhaseSession,
		Kind:   KindNotInitialized,
		Detail: fmt.Sprintf("%s not initialized", component),
	}
}

// Wrap wraps an existing error with phase and kind context. If cause is
// already a structured Error it is returned unchanged so the original
// failure class survives propagation.
func Wrap(phase Phase, kind Kind, cause error, detail string) error {
	if cause == nil {
		return nil
	}
	if structured, ok := cause.(*Error); ok {
		return structured
	}
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
