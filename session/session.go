package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/derivalab/pricing-bridge/artifact"
	"github.com/derivalab/pricing-bridge/bridge"
	"github.com/derivalab/pricing-bridge/dateonly"
	"github.com/derivalab/pricing-bridge/errors"
	"github.com/derivalab/pricing-bridge/hostlib/array"
	"github.com/derivalab/pricing-bridge/hostlib/plot"
	"github.com/derivalab/pricing-bridge/hostlib/table"
	"github.com/derivalab/pricing-bridge/namespace"
)

// Defaults for the workbench layout: the pricing library sits next to
// the host binary under lib/pricing/, and both pricing namespaces must
// be present for a session to come up.
const DefaultArtifactPath = "lib/pricing/pricing.wasm"

// DefaultRequire lists the namespaces a pricing artifact must declare.
func DefaultRequire() []string {
	return []string{"instruments", "pricing-engines"}
}

// Config controls one session bootstrap.
type Config struct {
	// ArtifactPath locates the pricing library, relative to BaseDir
	// unless absolute. Empty means DefaultArtifactPath.
	ArtifactPath string

	// BaseDir anchors relative artifact paths. Empty means the running
	// executable's directory.
	BaseDir string

	// Require lists namespaces the artifact must declare. Nil means
	// DefaultRequire(); an explicit empty slice requires nothing.
	Require []string

	// Hosts are the host namespaces to register before the artifact is
	// loaded. Nil means DefaultHosts().
	Hosts []bridge.Host

	Bridge bridge.Config
	Logger *zap.Logger
}

// DefaultHosts returns the standard workbench utility namespaces.
func DefaultHosts() []bridge.Host {
	return []bridge.Host{plot.NewHost(), array.NewHost(), table.NewHost()}
}

// Seams for tests. Production code never touches these.
var (
	newBridge       = bridge.New
	resolveArtifact = artifact.Resolve
	loadArtifact    = artifact.Load
)

type state int

const (
	stateNew state = iota
	stateReady
	stateFailed
	stateClosed
)

// Session owns one bridge, one loaded artifact, and the namespace tree
// bound from it. The bootstrap runs at most once: a successful outcome
// is cached, and a failed outcome is sticky. Recovering from a failed
// bootstrap means building a new Session.
type Session struct {
	cfg Config
	log *zap.Logger

	mu      sync.Mutex
	callMu  sync.Mutex
	state   state
	err     error
	bridge  *bridge.Bridge
	library *bridge.Library
	tree    *namespace.Tree
	bound   *namespace.BoundSet
}

// New prepares an unstarted session. Nothing is initialized until
// Bootstrap runs.
func New(cfg Config) *Session {
	if cfg.ArtifactPath == "" {
		cfg.ArtifactPath = DefaultArtifactPath
	}
	if cfg.Require == nil {
		cfg.Require = DefaultRequire()
	}
	if cfg.Hosts == nil {
		cfg.Hosts = DefaultHosts()
	}
	log := cfg.Logger
	if log == nil {
		log = bridge.Logger()
	}
	return &Session{cfg: cfg, log: log}
}

// Bootstrap runs the full initialization sequence: bridge first, host
// registration, artifact resolution and load, namespace binding, then
// instantiation. It is idempotent: a second call on a ready session
// returns nil with the bound names unchanged, and a second call on a
// failed session returns the recorded error without retrying.
func (s *Session) Bootstrap(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateReady:
		return nil
	case stateFailed:
		return s.err
	case stateClosed:
		return errors.New(errors.PhaseSession, errors.KindAlreadyClosed).
			Detail("session is closed").
			Build()
	}

	if err := s.bootstrap(ctx); err != nil {
		s.state = stateFailed
		s.err = err
		if s.bridge != nil {
			_ = s.bridge.Close(ctx)
			s.bridge = nil
		}
		s.library = nil
		s.tree = nil
		s.bound = nil
		s.log.Error("bootstrap failed", zap.Error(err))
		return err
	}

	s.state = stateReady
	s.log.Info("session ready", zap.Int("bound", s.bound.Len()))
	return nil
}

func (s *Session) bootstrap(ctx context.Context) error {
	// The bridge comes up before the artifact is even resolved. If the
	// hosted engine is unavailable, no artifact work happens at all.
	b, err := newBridge(ctx, &s.cfg.Bridge)
	if err != nil {
		return err
	}
	s.bridge = b

	for _, h := range s.cfg.Hosts {
		if err := b.RegisterHost(h); err != nil {
			return err
		}
	}

	path, err := resolveArtifact(s.cfg.BaseDir, s.cfg.ArtifactPath)
	if err != nil {
		return err
	}

	art, err := loadArtifact(path)
	if err != nil {
		return err
	}

	tree, err := buildTree(art)
	if err != nil {
		return err
	}

	// Required namespaces are checked against the artifact's declared
	// surface before instantiation. An artifact that loads but lacks a
	// namespace fails here, and nothing gets bound.
	for _, req := range s.cfg.Require {
		if !art.HasNamespace(req) || !tree.Has(req) {
			return errors.NamespaceMissing(req)
		}
	}

	lib, err := b.Load(ctx, art)
	if err != nil {
		return err
	}

	names := make([]string, 0, 8)
	for _, ns := range tree.Namespaces() {
		names = append(names, ns.Name())
	}
	names = append(names, b.HostNamespaces()...)
	names = append(names, dateonly.TypeName)

	// Commit point. Everything above either all succeeded or returned
	// before any of these fields were set.
	s.library = lib
	s.tree = tree
	s.bound = namespace.NewBoundSet(names...)
	return nil
}

// buildTree derives the namespace tree from the artifact: the manifest
// supplies typed signatures, and the raw export scan backfills any
// symbol the manifest omits.
func buildTree(art *artifact.Artifact) (*namespace.Tree, error) {
	tree := namespace.NewTree()

	if art.Manifest != "" {
		ifaces, err := namespace.ParseManifest(art.Manifest)
		if err != nil {
			return nil, err
		}
		for _, iface := range ifaces {
			full := iface.Name
			if iface.Version != nil {
				full = iface.Name + "@" + iface.Version.String()
			}
			ns := tree.Instance(full)
			for _, sym := range iface.Funcs {
				ns.Define(sym)
			}
		}
	}

	for _, export := range art.Exports() {
		nsName, symName, ok := splitExport(export)
		if !ok {
			continue
		}
		ns := tree.Lookup(nsName)
		if ns == nil {
			ns = tree.Instance(nsName)
		}
		if sym, defined := ns.Symbol(symName); defined {
			// Remember the artifact's spelling, version prefix and all.
			if sym.ExportName == "" {
				sym.ExportName = export
			}
		} else {
			ns.Define(&namespace.Symbol{Name: symName, ExportName: export})
		}
	}

	return tree, nil
}

func splitExport(export string) (ns, sym string, ok bool) {
	for i := 0; i < len(export); i++ {
		if export[i] == '#' {
			if i == 0 || i == len(export)-1 {
				return "", "", false
			}
			return export[:i], export[i+1:], true
		}
	}
	return "", "", false
}

// Names returns every bound name, sorted. It is empty unless the
// session is ready; a failed bootstrap binds nothing.
func (s *Session) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateReady {
		return nil
	}
	return s.bound.Names()
}

// Bound returns the bound-name snapshot, or nil unless ready.
func (s *Session) Bound() *namespace.BoundSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateReady {
		return nil
	}
	return s.bound
}

// Namespaces returns every bound namespace sorted by full path, or nil
// unless ready.
func (s *Session) Namespaces() []*namespace.Namespace {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateReady {
		return nil
	}
	return s.tree.Namespaces()
}

// Namespace looks up a bound namespace by name, with semver-compatible
// version matching.
func (s *Session) Namespace(name string) (*namespace.Namespace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != stateReady {
		return nil, s.notReadyErr()
	}
	ns := s.tree.Lookup(name)
	if ns == nil {
		return nil, errors.NamespaceMissing(name)
	}
	return ns, nil
}

// Call resolves a symbol path like "instruments#price-european" and
// invokes it on the loaded artifact.
func (s *Session) Call(ctx context.Context, path string, args ...any) (any, error) {
	s.mu.Lock()
	if s.state != stateReady {
		err := s.notReadyErr()
		s.mu.Unlock()
		return nil, err
	}
	tree, lib := s.tree, s.library
	s.mu.Unlock()

	ns, sym, err := tree.Resolve(path)
	if err != nil {
		return nil, err
	}
	if sym.Builtin {
		return nil, errors.InvalidInput(errors.PhaseCall,
			"symbol "+path+" is host-provided and not callable through the artifact")
	}

	// The instantiated artifact is single-threaded; calls take turns.
	s.callMu.Lock()
	defer s.callMu.Unlock()
	return lib.Call(ctx, sym.Export(ns), sym.Params, sym.Results, args...)
}

func (s *Session) notReadyErr() error {
	switch s.state {
	case stateFailed:
		return s.err
	case stateClosed:
		return errors.New(errors.PhaseSession, errors.KindAlreadyClosed).
			Detail("session is closed").
			Build()
	default:
		return errors.NotInitialized("session")
	}
}

// Close releases the artifact and the bridge. Close is idempotent, and
// the session cannot be bootstrapped again afterward.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateClosed {
		return nil
	}
	prev := s.state
	s.state = stateClosed
	s.bound = nil
	s.tree = nil

	if prev != stateReady && s.bridge == nil {
		return nil
	}
	if s.library != nil {
		if err := s.library.Close(ctx); err != nil {
			s.library = nil
			_ = s.bridge.Close(ctx)
			s.bridge = nil
			return err
		}
		s.library = nil
	}
	if s.bridge != nil {
		err := s.bridge.Close(ctx)
		s.bridge = nil
		return err
	}
	return nil
}
