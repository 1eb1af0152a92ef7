package bridge

import (
	"context"
	stderrors "errors"
	"testing"

	"go.bytecodealliance.org/wit"

	"github.com/derivalab/pricing-bridge/artifact"
	"github.com/derivalab/pricing-bridge/dateonly"
	"github.com/derivalab/pricing-bridge/errors"
	"github.com/derivalab/pricing-bridge/internal/testartifact"
)

func loadTestLibrary(t *testing.T) (*Bridge, *Library) {
	t.Helper()
	ctx := context.Background()

	br, err := New(ctx, nil)
	if err != nil {
		t.Fatalf("create bridge: %v", err)
	}
	t.Cleanup(func() { br.Close(ctx) })

	art, err := artifact.Read(testartifact.Build())
	if err != nil {
		t.Fatalf("read artifact: %v", err)
	}

	lib, err := br.Load(ctx, art)
	if err != nil {
		t.Fatalf("load artifact: %v", err)
	}
	return br, lib
}

func TestLibrary_CallScalar(t *testing.T) {
	_, lib := loadTestLibrary(t)
	ctx := context.Background()

	params := []wit.Type{wit.F64{}, wit.F64{}}
	results := []wit.Type{wit.F64{}}

	got, err := lib.Call(ctx, "instruments#price-european", params, results, 105.5, 100.0)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got.(float64) != 105.5 {
		t.Errorf("result = %v, want 105.5", got)
	}
}

func TestLibrary_CallString(t *testing.T) {
	_, lib := loadTestLibrary(t)
	ctx := context.Background()

	params := []wit.Type{wit.String{}}
	results := []wit.Type{wit.U32{}}

	got, err := lib.Call(ctx, "instruments#describe", params, results, "call-option")
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got.(uint32) != uint32(len("call-option")) {
		t.Errorf("result = %v, want %d", got, len("call-option"))
	}
}

func TestLibrary_CallDate(t *testing.T) {
	_, lib := loadTestLibrary(t)
	ctx := context.Background()

	// The describe export echoes its second stack slot; a (date, date)
	// signature against black-scholes' (f64,f64) core type would trap,
	// so use the (i32,i32)->i32 echo export to check date lowering.
	expiry := dateonly.New(2027, 6, 18)
	params := []wit.Type{wit.U32{}, wit.U32{}}
	results := []wit.Type{wit.U32{}}

	got, err := lib.Call(ctx, "instruments#describe", params, results, expiry, expiry)
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if got.(uint32) != expiry.DayNumber() {
		t.Errorf("result = %v, want day number %d", got, expiry.DayNumber())
	}
}

func TestLibrary_MissingExport(t *testing.T) {
	_, lib := loadTestLibrary(t)

	_, err := lib.Call(context.Background(), "instruments#gamma", nil, nil)
	if !stderrors.Is(err, errors.Class(errors.PhaseCall, errors.KindSymbolMissing)) {
		t.Errorf("want symbol_missing, got %v", err)
	}
}

func TestLibrary_ArityMismatch(t *testing.T) {
	_, lib := loadTestLibrary(t)

	params := []wit.Type{wit.F64{}, wit.F64{}}
	_, err := lib.Call(context.Background(), "instruments#price-european", params, nil, 1.0)
	if !stderrors.Is(err, errors.Class(errors.PhaseCall, errors.KindInvalidInput)) {
		t.Errorf("want invalid_input, got %v", err)
	}
}

func TestLibrary_ArgumentTypeMismatch(t *testing.T) {
	_, lib := loadTestLibrary(t)

	params := []wit.Type{wit.F64{}, wit.F64{}}
	_, err := lib.Call(context.Background(), "instruments#price-european", params, nil, "nope", 1.0)
	if !stderrors.Is(err, errors.Class(errors.PhaseCall, errors.KindTypeMismatch)) {
		t.Errorf("want type_mismatch, got %v", err)
	}
}

func TestBridge_CompileGarbage(t *testing.T) {
	ctx := context.Background()
	br, err := New(ctx, nil)
	if err != nil {
		t.Fatalf("create bridge: %v", err)
	}
	defer br.Close(ctx)

	// Valid header, truncated body: passes artifact.Read's concern but
	// must still fail compilation as a compatibility-class error.
	bad := &artifact.Artifact{Bytes: append([]byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}, 0x01, 0x02, 0x60)}
	_, err = br.Load(ctx, bad)
	if !stderrors.Is(err, errors.Class(errors.PhaseLoad, errors.KindIncompatible)) {
		t.Errorf("want compatibility class, got %v", err)
	}
}

func TestBridge_HostRegistrationAfterLoad(t *testing.T) {
	br, _ := loadTestLibrary(t)

	err := br.RegisterFunc("workbench:utils/late", "noop", func() {})
	if !stderrors.Is(err, errors.Class(errors.PhaseHost, errors.KindInvalidInput)) {
		t.Errorf("want invalid_input, got %v", err)
	}
}

func TestBridge_CloseTwice(t *testing.T) {
	ctx := context.Background()
	br, err := New(ctx, nil)
	if err != nil {
		t.Fatalf("create bridge: %v", err)
	}
	if err := br.Close(ctx); err != nil {
		t.Fatalf("first close: %v", err)
	}
	if err := br.Close(ctx); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

type demoHost struct{}

func (demoHost) Namespace() string { return "workbench:test/demo@0.1.0" }

func (demoHost) AddPrices(a, b float64) float64 { return a + b }

func (demoHost) GetSVG() uint32 { return 0 }

func TestRegistry_ReflectedNames(t *testing.T) {
	r := NewRegistry()
	if err := r.RegisterHost(demoHost{}); err != nil {
		t.Fatalf("register: %v", err)
	}

	ns := r.Namespaces()
	if len(ns) != 1 || ns[0] != "workbench:test/demo@0.1.0" {
		t.Fatalf("namespaces = %v", ns)
	}

	funcs := r.funcs[ns[0]]
	for _, want := range []string{"add-prices", "get-svg"} {
		if _, ok := funcs[want]; !ok {
			t.Errorf("function %q not registered (have %v)", want, funcs)
		}
	}
	if _, ok := funcs["namespace"]; ok {
		t.Error("Namespace method leaked into registration")
	}
}

func TestToKebabCase(t *testing.T) {
	tests := []struct{ in, want string }{
		{"NewFigure", "new-figure"},
		{"Push", "push"},
		{"GetSVG", "get-svg"},
		{"RenderCSVTable", "render-csv-table"},
	}
	for _, tt := range tests {
		if got := toKebabCase(tt.in); got != tt.want {
			t.Errorf("toKebabCase(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
