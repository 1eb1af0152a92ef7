package bridge

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/derivalab/pricing-bridge/dateonly"
	"github.com/derivalab/pricing-bridge/errors"
)

// The bridge ABI flattens WIT-typed arguments onto the core wasm call
// stack: scalars take one slot, strings take (ptr, len) via the guest
// allocator. Results must flatten to at most one slot.

const allocExport = "alloc"

func lowerArgs(ctx context.Context, mod api.Module, params []wit.Type, args []any) ([]uint64, error) {
	stack := make([]uint64, 0, len(args))
	for i, t := range params {
		slots, err := lower(ctx, mod, t, args[i])
		if err != nil {
			return nil, errors.New(errors.PhaseCall, errors.KindTypeMismatch).
				Detail("argument %d: %v", i, err).
				Value(args[i]).
				Build()
		}
		stack = append(stack, slots...)
	}
	return stack, nil
}

func lower(ctx context.Context, mod api.Module, t wit.Type, v any) ([]uint64, error) {
	switch t.(type) {
	case wit.Bool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("want bool, got %T", v)
		}
		if b {
			return []uint64{1}, nil
		}
		return []uint64{0}, nil

	case wit.U8, wit.U16, wit.U32, wit.Char:
		u, err := toUint32(v)
		if err != nil {
			return nil, err
		}
		return []uint64{api.EncodeU32(u)}, nil

	case wit.S8, wit.S16, wit.S32:
		s, err := toInt32(v)
		if err != nil {
			return nil, err
		}
		return []uint64{api.EncodeI32(s)}, nil

	case wit.U64:
		switch n := v.(type) {
		case uint64:
			return []uint64{n}, nil
		case uint:
			return []uint64{uint64(n)}, nil
		case int:
			if n < 0 {
				return nil, fmt.Errorf("negative value %d for u64", n)
			}
			return []uint64{uint64(n)}, nil
		}
		return nil, fmt.Errorf("want u64, got %T", v)

	case wit.S64:
		switch n := v.(type) {
		case int64:
			return []uint64{api.EncodeI64(n)}, nil
		case int:
			return []uint64{api.EncodeI64(int64(n))}, nil
		}
		return nil, fmt.Errorf("want s64, got %T", v)

	case wit.F32:
		switch f := v.(type) {
		case float32:
			return []uint64{api.EncodeF32(f)}, nil
		case float64:
			return []uint64{api.EncodeF32(float32(f))}, nil
		}
		return nil, fmt.Errorf("want f32, got %T", v)

	case wit.F64:
		switch f := v.(type) {
		case float64:
			return []uint64{api.EncodeF64(f)}, nil
		case float32:
			return []uint64{api.EncodeF64(float64(f))}, nil
		case int:
			return []uint64{api.EncodeF64(float64(f))}, nil
		}
		return nil, fmt.Errorf("want f64, got %T", v)

	case wit.String:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("want string, got %T", v)
		}
		ptr, length, err := lowerString(ctx, mod, s)
		if err != nil {
			return nil, err
		}
		return []uint64{ptr, length}, nil
	}

	return nil, fmt.Errorf("unsupported parameter type %T", t)
}

func toUint32(v any) (uint32, error) {
	switch n := v.(type) {
	case uint8:
		return uint32(n), nil
	case uint16:
		return uint32(n), nil
	case uint32:
		return n, nil
	case uint:
		return uint32(n), nil
	case int:
		if n < 0 {
			return 0, fmt.Errorf("negative value %d for unsigned type", n)
		}
		return uint32(n), nil
	case rune:
		return uint32(n), nil
	case dateonly.Date:
		// Dates cross the boundary as day numbers.
		return n.DayNumber(), nil
	}
	return 0, fmt.Errorf("want unsigned integer, got %T", v)
}

func toInt32(v any) (int32, error) {
	switch n := v.(type) {
	case int8:
		return int32(n), nil
	case int16:
		return int32(n), nil
	case int32:
		return n, nil
	case int:
		return int32(n), nil
	}
	return 0, fmt.Errorf("want signed integer, got %T", v)
}

// lowerString copies s into guest memory through the artifact's
// allocator export and returns the (ptr, len) pair.
func lowerString(ctx context.Context, mod api.Module, s string) (uint64, uint64, error) {
	alloc := mod.ExportedFunction(allocExport)
	if alloc == nil {
		return 0, 0, fmt.Errorf("artifact exports no %q function for string arguments", allocExport)
	}

	res, err := alloc.Call(ctx, uint64(len(s)))
	if err != nil {
		return 0, 0, fmt.Errorf("guest allocation failed: %w", err)
	}
	if len(res) != 1 {
		return 0, 0, fmt.Errorf("allocator returned %d values", len(res))
	}

	ptr := api.DecodeU32(res[0])
	if len(s) > 0 && !mod.Memory().Write(ptr, []byte(s)) {
		return 0, 0, fmt.Errorf("string of %d bytes does not fit at guest offset %d", len(s), ptr)
	}

	return api.EncodeU32(ptr), uint64(len(s)), nil
}

func liftResult(results []wit.Type, raw []uint64) (any, error) {
	if len(results) == 0 {
		return nil, nil
	}
	if len(results) > 1 {
		return nil, errors.TypeMismatch(errors.PhaseCall, nil,
			"multi-value results not supported by the bridge ABI")
	}
	if len(raw) == 0 {
		return nil, errors.TypeMismatch(errors.PhaseCall, nil,
			"artifact returned no value for a typed result")
	}

	switch results[0].(type) {
	case wit.Bool:
		return raw[0] != 0, nil
	case wit.U8, wit.U16, wit.U32, wit.Char:
		return api.DecodeU32(raw[0]), nil
	case wit.S8, wit.S16, wit.S32:
		return api.DecodeI32(raw[0]), nil
	case wit.U64:
		return raw[0], nil
	case wit.S64:
		return int64(raw[0]), nil
	case wit.F32:
		return api.DecodeF32(raw[0]), nil
	case wit.F64:
		return api.DecodeF64(raw[0]), nil
	}

	return nil, errors.TypeMismatch(errors.PhaseCall, nil,
		fmt.Sprintf("unsupported result type %T", results[0]))
}
