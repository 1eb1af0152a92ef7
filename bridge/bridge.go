package bridge

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero"
	"go.uber.org/zap"

	"github.com/derivalab/pricing-bridge/artifact"
	"github.com/derivalab/pricing-bridge/errors"
)

// Config holds bridge creation options.
type Config struct {
	// MemoryLimitPages caps artifact memory in 64KB pages. 0 means the
	// engine default.
	MemoryLimitPages uint32

	// CacheDir enables a persistent compilation cache.
	CacheDir string

	Logger *zap.Logger
}

// Bridge is the interop layer between the host process and the loaded
// pricing artifact. It owns the embedded wasm engine; it must exist
// before any artifact is referenced, and hosts must be registered
// before the artifact is loaded.
type Bridge struct {
	runtime wazero.Runtime
	cache   wazero.CompilationCache
	hosts   *Registry
	log     *zap.Logger

	mu         sync.Mutex
	hostsBound bool
	closed     bool
}

// New initializes the interop bridge. Failure here is an
// environment-class error: the hosted engine could not be brought up,
// and nothing further (artifact resolution included) may proceed.
func New(ctx context.Context, cfg *Config) (*Bridge, error) {
	runtimeCfg := wazero.NewRuntimeConfig()

	var cache wazero.CompilationCache
	log := Logger()

	if cfg != nil {
		if cfg.MemoryLimitPages > 0 {
			runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
		}
		if cfg.CacheDir != "" {
			c, err := wazero.NewCompilationCacheWithDir(cfg.CacheDir)
			if err != nil {
				return nil, errors.RuntimeUnavailable("create compilation cache", err)
			}
			cache = c
			runtimeCfg = runtimeCfg.WithCompilationCache(c)
		}
		if cfg.Logger != nil {
			log = cfg.Logger
		}
	}

	b := &Bridge{
		runtime: wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		cache:   cache,
		hosts:   NewRegistry(),
		log:     log,
	}
	log.Debug("bridge initialized")
	return b, nil
}

// RegisterHost registers all functions of h under its namespace.
// Must be called before Load.
func (b *Bridge) RegisterHost(h Host) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.hostsBound {
		return errors.InvalidInput(errors.PhaseHost,
			"hosts must be registered before the artifact is loaded")
	}
	return b.hosts.RegisterHost(h)
}

// RegisterFunc registers a single host function.
func (b *Bridge) RegisterFunc(namespace, name string, fn any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.hostsBound {
		return errors.InvalidInput(errors.PhaseHost,
			"hosts must be registered before the artifact is loaded")
	}
	return b.hosts.RegisterFunc(namespace, name, fn)
}

// HostNamespaces returns the registered host namespace names, sorted.
func (b *Bridge) HostNamespaces() []string {
	return b.hosts.Namespaces()
}

// Load compiles the validated artifact, instantiates the registered
// host modules, then instantiates the artifact itself. A binary the
// header check accepted can still fail compilation; that remains a
// compatibility-class failure.
func (b *Bridge) Load(ctx context.Context, art *artifact.Artifact) (*Library, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, errors.New(errors.PhaseBridge, errors.KindAlreadyClosed).
			Detail("bridge is closed").
			Build()
	}

	compiled, err := b.runtime.CompileModule(ctx, art.Bytes)
	if err != nil {
		return nil, errors.Incompatible("compile artifact", err)
	}

	if !b.hostsBound {
		if err := b.hosts.bind(ctx, b.runtime); err != nil {
			return nil, err
		}
		b.hostsBound = true
	}

	mod, err := b.runtime.InstantiateModule(ctx, compiled,
		wazero.NewModuleConfig().WithName("pricing-artifact"))
	if err != nil {
		return nil, errors.Instantiation(err)
	}

	b.log.Info("artifact loaded",
		zap.String("path", art.Path),
		zap.Int("exports", len(art.Exports())))

	return &Library{
		bridge:   b,
		compiled: compiled,
		module:   mod,
		log:      b.log,
	}, nil
}

// Close releases the engine and any compilation cache. All libraries
// loaded through this bridge become unusable.
func (b *Bridge) Close(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	if err := b.runtime.Close(ctx); err != nil {
		return errors.Wrap(errors.PhaseBridge, errors.KindAlreadyClosed, err, "close engine")
	}
	if b.cache != nil {
		if err := b.cache.Close(ctx); err != nil {
			return errors.Wrap(errors.PhaseBridge, errors.KindAlreadyClosed, err, "close cache")
		}
	}
	return nil
}
