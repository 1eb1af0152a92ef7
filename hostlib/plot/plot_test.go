package plot

import (
	"context"
	"strings"
	"testing"
)

func TestNewFigureAndPush(t *testing.T) {
	h := NewHost()

	f := &Figure{Title: "payoff"}
	fig := h.figures.Insert(f)
	if fig == 0 {
		t.Fatal("expected non-zero figure handle")
	}

	f.Series = append(f.Series, &Series{Name: "call"})
	h.push(context.Background(), fig, 1, 90, 0)
	h.push(context.Background(), fig, 1, 110, 10)

	got, ok := h.Figure(fig)
	if !ok {
		t.Fatal("figure not found")
	}
	s := got.Series[0]
	if len(s.X) != 2 || s.X[1] != 110 || s.Y[1] != 10 {
		t.Errorf("unexpected series data: x=%v y=%v", s.X, s.Y)
	}
}

func TestPushIgnoresBadHandles(t *testing.T) {
	h := NewHost()
	fig := h.figures.Insert(&Figure{Title: "t"})

	h.push(context.Background(), 999, 1, 1, 1)
	h.push(context.Background(), fig, 0, 1, 1)
	h.push(context.Background(), fig, 5, 1, 1)

	f, _ := h.Figure(fig)
	if len(f.Series) != 0 {
		t.Errorf("expected no series, got %d", len(f.Series))
	}
}

func TestSVGRendersSeries(t *testing.T) {
	h := NewHost()
	fig := h.figures.Insert(&Figure{
		Title: "delta",
		Series: []*Series{
			{Name: "bs", X: []float64{0, 1, 2}, Y: []float64{0, 0.5, 1}},
		},
	})

	svg, err := h.SVG(fig)
	if err != nil {
		t.Fatalf("SVG: %v", err)
	}
	for _, want := range []string{"<svg", "delta", "polyline", "<title>bs</title>", "</svg>"} {
		if !strings.Contains(svg, want) {
			t.Errorf("SVG output missing %q", want)
		}
	}
}

func TestSVGUnknownFigure(t *testing.T) {
	h := NewHost()
	if _, err := h.SVG(42); err == nil {
		t.Fatal("expected error for unknown figure")
	}
}

func TestSVGEmptyFigure(t *testing.T) {
	h := NewHost()
	fig := h.figures.Insert(&Figure{Title: "empty"})
	svg, err := h.SVG(fig)
	if err != nil {
		t.Fatalf("SVG: %v", err)
	}
	if !strings.Contains(svg, "<rect") {
		t.Error("expected frame rect in empty figure")
	}
}
