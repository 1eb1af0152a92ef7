package bridge

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/tetratelabs/wazero"

	"github.com/derivalab/pricing-bridge/errors"
)

// Host is the interface for struct-based host namespaces. All exported
// methods (except Namespace) are registered as guest-callable functions
// with PascalCase converted to kebab-case, unless the host implements
// ExplicitRegistrar.
type Host interface {
	// Namespace returns the host module name, e.g. "workbench:utils/plot@0.1.0".
	Namespace() string
}

// ExplicitRegistrar lets hosts provide exact function names and keep
// Go-side helper methods off the guest surface.
type ExplicitRegistrar interface {
	Register() map[string]any
}

// Registry collects host functions by namespace until the bridge binds
// them into the engine.
type Registry struct {
	funcs map[string]map[string]any
	mu    sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]map[string]any)}
}

func (r *Registry) RegisterHost(h Host) error {
	ns := h.Namespace()
	if ns == "" {
		return errors.InvalidInput(errors.PhaseHost, "namespace cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.funcs[ns] == nil {
		r.funcs[ns] = make(map[string]any)
	}

	if er, ok := h.(ExplicitRegistrar); ok {
		for name, handler := range er.Register() {
			r.funcs[ns][name] = handler
		}
		return nil
	}

	rv := reflect.ValueOf(h)
	rt := rv.Type()

	for i := 0; i < rt.NumMethod(); i++ {
		method := rt.Method(i)
		if !method.IsExported() || method.Name == "Namespace" {
			continue
		}
		r.funcs[ns][toKebabCase(method.Name)] = rv.Method(i).Interface()
	}

	return nil
}

func (r *Registry) RegisterFunc(namespace, name string, fn any) error {
	if namespace == "" {
		return errors.InvalidInput(errors.PhaseHost, "namespace cannot be empty")
	}
	if name == "" {
		return errors.InvalidInput(errors.PhaseHost, "function name cannot be empty")
	}
	if reflect.ValueOf(fn).Kind() != reflect.Func {
		return errors.TypeMismatch(errors.PhaseHost, []string{namespace, name},
			"handler must be a function")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.funcs[namespace] == nil {
		r.funcs[namespace] = make(map[string]any)
	}
	r.funcs[namespace][name] = fn
	return nil
}

// Namespaces returns the registered namespace names, sorted.
func (r *Registry) Namespaces() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.funcs))
	for ns := range r.funcs {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// bind instantiates one host module per namespace in the engine.
func (r *Registry) bind(ctx context.Context, runtime wazero.Runtime) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	namespaces := make([]string, 0, len(r.funcs))
	for ns := range r.funcs {
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)

	for _, ns := range namespaces {
		funcs := r.funcs[ns]
		if len(funcs) == 0 {
			continue
		}

		builder := runtime.NewHostModuleBuilder(ns)
		names := make([]string, 0, len(funcs))
		for name := range funcs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			builder = builder.NewFunctionBuilder().WithFunc(funcs[name]).Export(name)
		}

		if _, err := builder.Instantiate(ctx); err != nil {
			return errors.Registration(ns, strings.Join(names, ","), err)
		}
	}
	return nil
}

// toKebabCase converts PascalCase to kebab-case.
// Handles acronyms: GetSVG -> get-svg
func toKebabCase(s string) string {
	if len(s) == 0 {
		return ""
	}

	runes := []rune(s)
	var result strings.Builder

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if unicode.IsUpper(r) {
			acronymEnd := i + 1
			for acronymEnd < len(runes) && unicode.IsUpper(runes[acronymEnd]) {
				acronymEnd++
			}

			if acronymEnd > i+1 {
				// Last uppercase before lowercase starts the next word
				if acronymEnd < len(runes) && unicode.IsLower(runes[acronymEnd]) {
					acronymEnd--
				}
			}

			if i > 0 {
				result.WriteByte('-')
			}

			for j := i; j < acronymEnd; j++ {
				result.WriteRune(unicode.ToLower(runes[j]))
			}
			i = acronymEnd - 1
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}
