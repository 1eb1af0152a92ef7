package artifact

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/derivalab/pricing-bridge/errors"
	"github.com/derivalab/pricing-bridge/internal/testartifact"
)

func writeArtifact(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pricing.wasm")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

func TestRead_ValidArtifact(t *testing.T) {
	a, err := Read(testartifact.Build())
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	wantNS := []string{"instruments", "pricing-engines"}
	if got := a.Namespaces(); !reflect.DeepEqual(got, wantNS) {
		t.Errorf("namespaces = %v, want %v", got, wantNS)
	}

	if !a.HasNamespace("instruments") || a.HasNamespace("curves") {
		t.Error("HasNamespace wrong")
	}

	if a.Manifest == "" {
		t.Error("manifest custom section not extracted")
	}

	exports := a.Exports()
	found := false
	for _, e := range exports {
		if e == "alloc" {
			found = true
		}
	}
	if !found {
		t.Errorf("allocator export missing from %v", exports)
	}
}

func TestRead_BadMagic(t *testing.T) {
	data := []byte("MZ\x90\x00 definitely not wasm")
	_, err := Read(data)
	if err == nil {
		t.Fatal("expected error")
	}
	if !stderrors.Is(err, errors.Class(errors.PhaseLoad, errors.KindIncompatible)) {
		t.Errorf("want compatibility class, got %v", err)
	}
	if !stderrors.Is(err, ErrBadMagic) {
		t.Errorf("want ErrBadMagic in chain, got %v", err)
	}
}

func TestRead_BadVersion(t *testing.T) {
	data := testartifact.Build()
	data[4] = 0x02 // bump version field

	_, err := Read(data)
	if !stderrors.Is(err, ErrBadVersion) {
		t.Errorf("want ErrBadVersion, got %v", err)
	}
	if !stderrors.Is(err, errors.Class(errors.PhaseLoad, errors.KindIncompatible)) {
		t.Errorf("want compatibility class, got %v", err)
	}
}

func TestRead_Truncated(t *testing.T) {
	data := testartifact.Build()
	for _, cut := range []int{0, 3, 6, len(data) / 2, len(data) - 1} {
		if _, err := Read(data[:cut]); err == nil {
			t.Errorf("truncation at %d not detected", cut)
		} else if !stderrors.Is(err, errors.Class(errors.PhaseLoad, errors.KindIncompatible)) {
			t.Errorf("truncation at %d: want compatibility class, got %v", cut, err)
		}
	}
}

func TestRead_OmittedNamespace(t *testing.T) {
	a, err := Read(testartifact.Build(testartifact.OmitNamespace("pricing-engines")))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if a.HasNamespace("pricing-engines") {
		t.Error("omitted namespace still visible")
	}
	if !a.HasNamespace("instruments") {
		t.Error("surviving namespace lost")
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lib", "pricing.wasm")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, testartifact.Build(), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := Resolve(dir, filepath.Join("lib", "pricing.wasm"))
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != path {
		t.Errorf("resolved %q, want %q", got, path)
	}

	// Absolute paths bypass the base directory.
	if got, err := Resolve("/nowhere", path); err != nil || got != path {
		t.Errorf("absolute resolve: %q, %v", got, err)
	}
}

func TestResolve_Missing(t *testing.T) {
	_, err := Resolve(t.TempDir(), "lib/pricing.wasm")
	if err == nil {
		t.Fatal("expected error")
	}
	if !stderrors.Is(err, errors.Class(errors.PhaseResolve, errors.KindNotFound)) {
		t.Errorf("want path-resolution class, got %v", err)
	}
}

func TestResolve_Directory(t *testing.T) {
	dir := t.TempDir()
	_, err := Resolve(filepath.Dir(dir), filepath.Base(dir))
	if !stderrors.Is(err, errors.Class(errors.PhaseResolve, errors.KindNotFound)) {
		t.Errorf("want path-resolution class for directory, got %v", err)
	}
}

func TestResolve_Empty(t *testing.T) {
	_, err := Resolve("", "")
	if !stderrors.Is(err, errors.Class(errors.PhaseResolve, errors.KindInvalidInput)) {
		t.Errorf("want invalid input, got %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeArtifact(t, testartifact.Build())
	a, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if a.Path != path {
		t.Errorf("path not recorded: %q", a.Path)
	}

	_, err = Load(filepath.Join(t.TempDir(), "missing.wasm"))
	if !stderrors.Is(err, errors.Class(errors.PhaseResolve, errors.KindNotFound)) {
		t.Errorf("want not-found class, got %v", err)
	}
}
