package namespace

import (
	"sort"
	"strings"
	"sync"

	"go.bytecodealliance.org/wit"

	"github.com/derivalab/pricing-bridge/errors"
)

// Symbol describes one callable or type binding inside a namespace.
// Params and Results carry the WIT types from the artifact manifest;
// they are nil for symbols seen only in the export scan.
type Symbol struct {
	Name       string
	ParamNames []string
	Params     []wit.Type
	Results    []wit.Type

	// ExportName is the artifact export this symbol dispatches to, as
	// seen in the export scan. Empty for symbols known only from the
	// manifest.
	ExportName string

	// Builtin marks host-provided symbols (utility namespaces, the
	// date value type) that do not dispatch into the artifact.
	Builtin bool
}

// Export returns the artifact export name for a symbol bound under ns.
// The scanned name wins when present; otherwise the conventional
// unversioned "namespace#function" form is assumed, since artifact
// builds keep versions in the manifest rather than in export names.
func (s *Symbol) Export(ns *Namespace) string {
	if s.ExportName != "" {
		return s.ExportName
	}
	return ns.Name() + "#" + s.Name
}

// Namespace is one named, optionally versioned group of symbols.
type Namespace struct {
	name    string
	version *Version
	symbols map[string]*Symbol
	mu      sync.RWMutex
}

func (ns *Namespace) Name() string {
	return ns.name
}

func (ns *Namespace) Version() *Version {
	return ns.version
}

// FullPath returns "name" or "name@major.minor.patch".
func (ns *Namespace) FullPath() string {
	if ns.version == nil {
		return ns.name
	}
	return ns.name + "@" + ns.version.String()
}

// Define adds or replaces a symbol.
func (ns *Namespace) Define(sym *Symbol) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	ns.symbols[sym.Name] = sym
}

// Symbol returns a symbol by name.
func (ns *Namespace) Symbol(name string) (*Symbol, bool) {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	sym, ok := ns.symbols[name]
	return sym, ok
}

// Symbols returns all symbols sorted by name.
func (ns *Namespace) Symbols() []*Symbol {
	ns.mu.RLock()
	defer ns.mu.RUnlock()

	out := make([]*Symbol, 0, len(ns.symbols))
	for _, sym := range ns.symbols {
		out = append(out, sym)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Tree is the root of all namespaces bound in a session.
type Tree struct {
	children map[string]*Namespace
	mu       sync.RWMutex
}

func NewTree() *Tree {
	return &Tree{children: make(map[string]*Namespace)}
}

// Instance returns or creates a namespace. The name may carry a version:
// "instruments@1.0.0".
func (t *Tree) Instance(name string) *Namespace {
	parsed, version := splitNameVersion(name)
	key := parsed
	if version != nil {
		key = parsed + "@" + version.String()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if ns, ok := t.children[key]; ok {
		return ns
	}
	ns := &Namespace{
		name:    parsed,
		version: version,
		symbols: make(map[string]*Symbol),
	}
	t.children[key] = ns
	return ns
}

// Lookup finds a namespace by name with semver-compatible matching.
// An unversioned request matches the newest version of that name; a
// versioned request matches exactly first, then the newest compatible
// version.
func (t *Tree) Lookup(name string) *Namespace {
	wantName, wantVersion := splitNameVersion(name)

	t.mu.RLock()
	defer t.mu.RUnlock()

	if wantVersion != nil {
		if ns, ok := t.children[wantName+"@"+wantVersion.String()]; ok {
			return ns
		}
	} else if ns, ok := t.children[wantName]; ok {
		return ns
	}

	var best *Namespace
	for _, ns := range t.children {
		if ns.name != wantName {
			continue
		}
		if wantVersion != nil {
			if ns.version == nil || !ns.version.Compatible(*wantVersion) {
				continue
			}
		}
		if best == nil || betterVersion(ns.version, best.version) {
			best = ns
		}
	}
	return best
}

func betterVersion(candidate, incumbent *Version) bool {
	if candidate == nil {
		return false
	}
	if incumbent == nil {
		return true
	}
	if candidate.Major != incumbent.Major {
		return candidate.Major > incumbent.Major
	}
	return candidate.newer(*incumbent)
}

// Has reports whether a namespace with the given name is present, under
// any version.
func (t *Tree) Has(name string) bool {
	return t.Lookup(name) != nil
}

// Namespaces returns every namespace sorted by full path.
func (t *Tree) Namespaces() []*Namespace {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*Namespace, 0, len(t.children))
	for _, ns := range t.children {
		out = append(out, ns)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullPath() < out[j].FullPath() })
	return out
}

// Resolve looks up a symbol by full path: "instruments@1.0.0#price".
func (t *Tree) Resolve(path string) (*Namespace, *Symbol, error) {
	nsPath, symName, found := strings.Cut(path, "#")
	if !found || nsPath == "" || symName == "" {
		return nil, nil, errors.InvalidInput(errors.PhaseCall,
			"symbol path must have the form namespace#function")
	}

	ns := t.Lookup(nsPath)
	if ns == nil {
		return nil, nil, errors.New(errors.PhaseCall, errors.KindSymbolMissing).
			Path(nsPath).
			Detail("namespace %q not bound", nsPath).
			Build()
	}

	sym, ok := ns.Symbol(symName)
	if !ok {
		return nil, nil, errors.SymbolMissing(ns.FullPath(), symName)
	}
	return ns, sym, nil
}
