package bridge

import (
	"context"
	"sort"
	"strings"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"
	"go.uber.org/zap"

	"github.com/derivalab/pricing-bridge/errors"
)

// Library is an instantiated pricing artifact. It is not safe for
// concurrent calls; the session serializes access.
type Library struct {
	bridge   *Bridge
	compiled wazero.CompiledModule
	module   api.Module
	log      *zap.Logger
}

// ExportNames returns the artifact's exported function names, sorted.
func (l *Library) ExportNames() []string {
	defs := l.compiled.ExportedFunctions()
	out := make([]string, 0, len(defs))
	for name := range defs {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Call invokes an exported function, coercing args through the declared
// WIT signature. Strings are lowered into guest memory via the
// artifact's allocator; results must flatten to a single value.
func (l *Library) Call(ctx context.Context, export string, params, results []wit.Type, args ...any) (any, error) {
	fn := l.module.ExportedFunction(export)
	if fn == nil {
		ns, name, _ := strings.Cut(export, "#")
		return nil, errors.SymbolMissing(ns, name)
	}

	if len(args) != len(params) {
		return nil, errors.New(errors.PhaseCall, errors.KindInvalidInput).
			Path(export).
			Detail("want %d arguments, got %d", len(params), len(args)).
			Build()
	}

	stack, err := lowerArgs(ctx, l.module, params, args)
	if err != nil {
		return nil, err
	}

	raw, err := fn.Call(ctx, stack...)
	if err != nil {
		return nil, errors.New(errors.PhaseCall, errors.KindTrap).
			Path(export).
			Detail("artifact call trapped").
			Cause(err).
			Build()
	}

	l.log.Debug("artifact call",
		zap.String("export", export),
		zap.Int("args", len(args)))

	return liftResult(results, raw)
}

// Memory exposes the artifact's linear memory for host functions.
func (l *Library) Memory() api.Memory {
	return l.module.Memory()
}

// Close releases the instantiated artifact. The owning bridge stays
// usable.
func (l *Library) Close(ctx context.Context) error {
	return l.module.Close(ctx)
}
