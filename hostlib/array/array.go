// Package array provides the workbench numeric array host namespace.
// Guests build float64 vectors through handles and run summary
// statistics on them host-side.
package array

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/derivalab/pricing-bridge/hostlib"
)

// Namespace is the array host module name.
const Namespace = "workbench:utils/array@0.1.0"

type Host struct {
	arrays *hostlib.Table[[]float64]
}

func NewHost() *Host {
	return &Host{arrays: hostlib.NewTable[[]float64]()}
}

func (h *Host) Namespace() string {
	return Namespace
}

// Register exposes the guest-facing surface. Reads on a bad handle or
// index return NaN instead of trapping the artifact.
func (h *Host) Register() map[string]any {
	return map[string]any{
		"new":      h.newArray,
		"linspace": h.linspace,
		"set":      h.set,
		"get":      h.get,
		"len":      h.length,
		"mean":     h.mean,
		"stddev":   h.stddev,
		"dot":      h.dot,
		"scale":    h.scale,
	}
}

func (h *Host) newArray(_ context.Context, size uint32) uint32 {
	return h.arrays.Insert(make([]float64, size))
}

func (h *Host) linspace(_ context.Context, from, to float64, count uint32) uint32 {
	if count == 0 {
		return 0
	}
	dst := make([]float64, count)
	if count == 1 {
		dst[0] = from
	} else {
		floats.Span(dst, from, to)
	}
	return h.arrays.Insert(dst)
}

func (h *Host) set(_ context.Context, handle, index uint32, value float64) {
	a, ok := h.arrays.Get(handle)
	if !ok || int(index) >= len(a) {
		return
	}
	a[index] = value
}

func (h *Host) get(_ context.Context, handle, index uint32) float64 {
	a, ok := h.arrays.Get(handle)
	if !ok || int(index) >= len(a) {
		return math.NaN()
	}
	return a[index]
}

func (h *Host) length(_ context.Context, handle uint32) uint32 {
	a, ok := h.arrays.Get(handle)
	if !ok {
		return 0
	}
	return uint32(len(a))
}

func (h *Host) mean(_ context.Context, handle uint32) float64 {
	a, ok := h.arrays.Get(handle)
	if !ok || len(a) == 0 {
		return math.NaN()
	}
	return stat.Mean(a, nil)
}

func (h *Host) stddev(_ context.Context, handle uint32) float64 {
	a, ok := h.arrays.Get(handle)
	if !ok || len(a) < 2 {
		return math.NaN()
	}
	return stat.StdDev(a, nil)
}

func (h *Host) dot(_ context.Context, left, right uint32) float64 {
	a, okA := h.arrays.Get(left)
	b, okB := h.arrays.Get(right)
	if !okA || !okB || len(a) != len(b) {
		return math.NaN()
	}
	return floats.Dot(a, b)
}

func (h *Host) scale(_ context.Context, handle uint32, factor float64) {
	a, ok := h.arrays.Get(handle)
	if !ok {
		return
	}
	floats.Scale(factor, a)
}

// Values returns a copy of the array backing a handle for host-side
// inspection.
func (h *Host) Values(handle hostlib.Handle) ([]float64, bool) {
	a, ok := h.arrays.Get(handle)
	if !ok {
		return nil, false
	}
	out := make([]float64, len(a))
	copy(out, a)
	return out, true
}
