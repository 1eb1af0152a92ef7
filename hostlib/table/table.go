// Package table provides the workbench tabular data host namespace.
// Guests assemble column-oriented frames of float64 values through
// handles; the host side renders frames as text or CSV.
package table

import (
	"context"
	"strconv"

	gptable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/tetratelabs/wazero/api"

	"github.com/derivalab/pricing-bridge/errors"
	"github.com/derivalab/pricing-bridge/hostlib"
)

// Namespace is the table host module name.
const Namespace = "workbench:utils/table@0.1.0"

// Frame is a column-oriented table. Columns may have uneven lengths
// while the guest is appending; rendering pads short columns.
type Frame struct {
	Title   string
	Columns []string
	Data    [][]float64
}

// Rows returns the length of the longest column.
func (f *Frame) Rows() int {
	rows := 0
	for _, col := range f.Data {
		if len(col) > rows {
			rows = len(col)
		}
	}
	return rows
}

type Host struct {
	frames *hostlib.Table[*Frame]
}

func NewHost() *Host {
	return &Host{frames: hostlib.NewTable[*Frame]()}
}

func (h *Host) Namespace() string {
	return Namespace
}

// Register exposes the guest-facing surface.
func (h *Host) Register() map[string]any {
	return map[string]any{
		"new":        h.newFrame,
		"add-column": h.addColumn,
		"append":     h.appendValue,
		"rows":       h.rows,
	}
}

func (h *Host) newFrame(_ context.Context, mod api.Module, titlePtr, titleLen uint32) uint32 {
	title, ok := hostlib.ReadString(mod, titlePtr, titleLen)
	if !ok {
		return 0
	}
	return h.frames.Insert(&Frame{Title: title})
}

func (h *Host) addColumn(_ context.Context, mod api.Module, frame, namePtr, nameLen uint32) uint32 {
	f, ok := h.frames.Get(frame)
	if !ok {
		return 0
	}
	name, ok := hostlib.ReadString(mod, namePtr, nameLen)
	if !ok {
		return 0
	}
	f.Columns = append(f.Columns, name)
	f.Data = append(f.Data, nil)
	return uint32(len(f.Columns))
}

func (h *Host) appendValue(_ context.Context, frame, column uint32, value float64) {
	f, ok := h.frames.Get(frame)
	if !ok || column == 0 || int(column) > len(f.Data) {
		return
	}
	f.Data[column-1] = append(f.Data[column-1], value)
}

func (h *Host) rows(_ context.Context, frame uint32) uint32 {
	f, ok := h.frames.Get(frame)
	if !ok {
		return 0
	}
	return uint32(f.Rows())
}

// Frame returns a recorded frame for host-side inspection.
func (h *Host) Frame(handle hostlib.Handle) (*Frame, bool) {
	return h.frames.Get(handle)
}

func (h *Host) writer(handle hostlib.Handle) (gptable.Writer, error) {
	f, ok := h.frames.Get(handle)
	if !ok {
		return nil, errors.New(errors.PhaseHost, errors.KindNotFound).
			Detail("frame handle %d", handle).
			Build()
	}

	w := gptable.NewWriter()
	if f.Title != "" {
		w.SetTitle(f.Title)
	}

	header := make(gptable.Row, len(f.Columns))
	for i, name := range f.Columns {
		header[i] = name
	}
	w.AppendHeader(header)

	for r := 0; r < f.Rows(); r++ {
		row := make(gptable.Row, len(f.Data))
		for c, col := range f.Data {
			if r < len(col) {
				row[c] = strconv.FormatFloat(col[r], 'g', -1, 64)
			} else {
				row[c] = ""
			}
		}
		w.AppendRow(row)
	}
	return w, nil
}

// Render renders a frame as an aligned text table.
func (h *Host) Render(handle hostlib.Handle) (string, error) {
	w, err := h.writer(handle)
	if err != nil {
		return "", err
	}
	return w.Render(), nil
}

// RenderCSV renders a frame as CSV.
func (h *Host) RenderCSV(handle hostlib.Handle) (string, error) {
	w, err := h.writer(handle)
	if err != nil {
		return "", err
	}
	return w.RenderCSV(), nil
}
