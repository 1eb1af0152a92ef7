package config

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/derivalab/pricing-bridge/errors"
	"github.com/derivalab/pricing-bridge/session"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workbench.toml")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[artifact]
path = "build/pricing.wasm"
base = "/opt/workbench"
require = ["instruments"]

[bridge]
memory_limit_pages = 256
cache_dir = "/tmp/cache"

[log]
level = "debug"
`)

	f, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	cfg := f.SessionConfig()
	if cfg.ArtifactPath != "build/pricing.wasm" || cfg.BaseDir != "/opt/workbench" {
		t.Errorf("artifact settings = %q %q", cfg.ArtifactPath, cfg.BaseDir)
	}
	if !reflect.DeepEqual(cfg.Require, []string{"instruments"}) {
		t.Errorf("require = %v", cfg.Require)
	}
	if cfg.Bridge.MemoryLimitPages != 256 || cfg.Bridge.CacheDir != "/tmp/cache" {
		t.Errorf("bridge settings = %+v", cfg.Bridge)
	}
	if f.ZapLevel() != zap.DebugLevel {
		t.Errorf("level = %v", f.ZapLevel())
	}
}

func TestLoadDefaultsFillGaps(t *testing.T) {
	f, err := Load(writeConfig(t, "[log]\nlevel = \"warn\"\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.Artifact.Path != session.DefaultArtifactPath {
		t.Errorf("artifact path = %q", f.Artifact.Path)
	}
	if !reflect.DeepEqual(f.Artifact.Require, session.DefaultRequire()) {
		t.Errorf("require = %v", f.Artifact.Require)
	}
	if f.ZapLevel() != zap.WarnLevel {
		t.Errorf("level = %v", f.ZapLevel())
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if !stderrors.Is(err, errors.Class(errors.PhaseResolve, errors.KindNotFound)) {
		t.Fatalf("expected not_found, got %v", err)
	}
}

func TestLoadMalformed(t *testing.T) {
	_, err := Load(writeConfig(t, "[artifact\npath ="))
	if !stderrors.Is(err, errors.Class(errors.PhaseResolve, errors.KindInvalidInput)) {
		t.Fatalf("expected invalid_input, got %v", err)
	}
}

func TestZapLevelUnknownFallsBack(t *testing.T) {
	f := Default()
	f.Log.Level = "shouty"
	if f.ZapLevel() != zap.InfoLevel {
		t.Errorf("unknown level mapped to %v", f.ZapLevel())
	}
}
