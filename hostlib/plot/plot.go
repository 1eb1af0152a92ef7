// Package plot provides the workbench plotting host namespace. The
// guest records figures and line series through handle-based calls; the
// host side renders recorded figures to SVG.
package plot

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/tetratelabs/wazero/api"

	"github.com/derivalab/pricing-bridge/errors"
	"github.com/derivalab/pricing-bridge/hostlib"
)

// Namespace is the plot host module name.
const Namespace = "workbench:utils/plot@0.1.0"

// SVG canvas geometry.
const (
	svgWidth  = 640
	svgHeight = 400
	svgPad    = 40
)

// Series is one recorded line series.
type Series struct {
	Name string
	X    []float64
	Y    []float64
}

// Figure is a titled collection of series.
type Figure struct {
	Title  string
	Series []*Series
}

type Host struct {
	figures *hostlib.Table[*Figure]
}

func NewHost() *Host {
	return &Host{figures: hostlib.NewTable[*Figure]()}
}

func (h *Host) Namespace() string {
	return Namespace
}

// Register exposes the guest-facing surface. Handle-returning calls
// yield 0 on invalid input rather than trapping the artifact.
func (h *Host) Register() map[string]any {
	return map[string]any{
		"new-figure": h.newFigure,
		"add-series": h.addSeries,
		"push":       h.push,
	}
}

func (h *Host) newFigure(_ context.Context, mod api.Module, titlePtr, titleLen uint32) uint32 {
	title, ok := hostlib.ReadString(mod, titlePtr, titleLen)
	if !ok {
		return 0
	}
	return h.figures.Insert(&Figure{Title: title})
}

func (h *Host) addSeries(_ context.Context, mod api.Module, fig, namePtr, nameLen uint32) uint32 {
	f, ok := h.figures.Get(fig)
	if !ok {
		return 0
	}
	name, ok := hostlib.ReadString(mod, namePtr, nameLen)
	if !ok {
		return 0
	}
	f.Series = append(f.Series, &Series{Name: name})
	return uint32(len(f.Series))
}

func (h *Host) push(_ context.Context, fig, series uint32, x, y float64) {
	f, ok := h.figures.Get(fig)
	if !ok || series == 0 || int(series) > len(f.Series) {
		return
	}
	s := f.Series[series-1]
	s.X = append(s.X, x)
	s.Y = append(s.Y, y)
}

// Figure returns a recorded figure for host-side inspection.
func (h *Host) Figure(handle hostlib.Handle) (*Figure, bool) {
	return h.figures.Get(handle)
}

// Figures returns the number of recorded figures.
func (h *Host) Figures() int {
	return h.figures.Len()
}

// SVG renders a recorded figure as an SVG document with one polyline
// per series.
func (h *Host) SVG(handle hostlib.Handle) (string, error) {
	f, ok := h.figures.Get(handle)
	if !ok {
		return "", errors.New(errors.PhaseHost, errors.KindNotFound).
			Detail("figure handle %d", handle).
			Build()
	}

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range f.Series {
		for i := range s.X {
			minX = math.Min(minX, s.X[i])
			maxX = math.Max(maxX, s.X[i])
			minY = math.Min(minY, s.Y[i])
			maxY = math.Max(maxY, s.Y[i])
		}
	}
	if minX > maxX {
		// No points recorded; render an empty frame.
		minX, maxX, minY, maxY = 0, 1, 0, 1
	}
	if maxX == minX {
		maxX = minX + 1
	}
	if maxY == minY {
		maxY = minY + 1
	}

	plotW := float64(svgWidth - 2*svgPad)
	plotH := float64(svgHeight - 2*svgPad)
	toX := func(x float64) float64 { return svgPad + (x-minX)/(maxX-minX)*plotW }
	toY := func(y float64) float64 { return svgHeight - svgPad - (y-minY)/(maxY-minY)*plotH }

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`, svgWidth, svgHeight)
	b.WriteByte('\n')
	if f.Title != "" {
		fmt.Fprintf(&b, `  <text x="%d" y="20" text-anchor="middle">%s</text>`, svgWidth/2, f.Title)
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, `  <rect x="%d" y="%d" width="%.0f" height="%.0f" fill="none" stroke="black"/>`,
		svgPad, svgPad, plotW, plotH)
	b.WriteByte('\n')

	for _, s := range f.Series {
		var points []string
		for i := range s.X {
			points = append(points, fmt.Sprintf("%.1f,%.1f", toX(s.X[i]), toY(s.Y[i])))
		}
		fmt.Fprintf(&b, `  <polyline fill="none" stroke="steelblue" points="%s"><title>%s</title></polyline>`,
			strings.Join(points, " "), s.Name)
		b.WriteByte('\n')
	}

	b.WriteString("</svg>\n")
	return b.String(), nil
}
