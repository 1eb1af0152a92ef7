package table

import (
	"context"
	"strings"
	"testing"
)

func buildFrame(t *testing.T, h *Host) uint32 {
	t.Helper()
	ctx := context.Background()

	fr := h.frames.Insert(&Frame{Title: "greeks"})
	f, _ := h.Frame(fr)
	f.Columns = []string{"spot", "delta"}
	f.Data = [][]float64{nil, nil}

	h.appendValue(ctx, fr, 1, 90)
	h.appendValue(ctx, fr, 1, 110)
	h.appendValue(ctx, fr, 2, 0.35)
	h.appendValue(ctx, fr, 2, 0.72)
	return fr
}

func TestAppendAndRows(t *testing.T) {
	h := NewHost()
	fr := buildFrame(t, h)

	if got := h.rows(context.Background(), fr); got != 2 {
		t.Errorf("rows = %d, want 2", got)
	}

	f, ok := h.Frame(fr)
	if !ok {
		t.Fatal("frame not found")
	}
	if f.Data[0][1] != 110 || f.Data[1][0] != 0.35 {
		t.Errorf("unexpected data: %v", f.Data)
	}
}

func TestAppendIgnoresBadHandles(t *testing.T) {
	h := NewHost()
	fr := buildFrame(t, h)
	ctx := context.Background()

	h.appendValue(ctx, 99, 1, 1)
	h.appendValue(ctx, fr, 0, 1)
	h.appendValue(ctx, fr, 7, 1)

	if got := h.rows(ctx, fr); got != 2 {
		t.Errorf("rows after bad appends = %d, want 2", got)
	}
	if h.rows(ctx, 99) != 0 {
		t.Error("rows of bad handle should be 0")
	}
}

func TestRender(t *testing.T) {
	h := NewHost()
	fr := buildFrame(t, h)

	out, err := h.Render(fr)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{"greeks", "SPOT", "DELTA", "110", "0.72"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered table missing %q:\n%s", want, out)
		}
	}
}

func TestRenderCSV(t *testing.T) {
	h := NewHost()
	fr := buildFrame(t, h)

	out, err := h.RenderCSV(fr)
	if err != nil {
		t.Fatalf("RenderCSV: %v", err)
	}
	if !strings.Contains(out, "spot,delta") {
		t.Errorf("CSV missing header:\n%s", out)
	}
	if !strings.Contains(out, "110,0.72") {
		t.Errorf("CSV missing data row:\n%s", out)
	}
}

func TestRenderUnknownFrame(t *testing.T) {
	h := NewHost()
	if _, err := h.Render(42); err == nil {
		t.Fatal("expected error for unknown frame")
	}
}

func TestRenderPadsShortColumns(t *testing.T) {
	h := NewHost()
	ctx := context.Background()

	fr := h.frames.Insert(&Frame{
		Columns: []string{"a", "b"},
		Data:    [][]float64{nil, nil},
	})
	h.appendValue(ctx, fr, 1, 1)
	h.appendValue(ctx, fr, 1, 2)
	h.appendValue(ctx, fr, 2, 3)

	out, err := h.RenderCSV(fr)
	if err != nil {
		t.Fatalf("RenderCSV: %v", err)
	}
	if !strings.Contains(out, "2,") {
		t.Errorf("expected padded second column:\n%s", out)
	}
}
