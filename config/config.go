// Package config loads workbench settings from a TOML file and turns
// them into a session configuration.
package config

import (
	"os"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/derivalab/pricing-bridge/bridge"
	"github.com/derivalab/pricing-bridge/errors"
	"github.com/derivalab/pricing-bridge/session"
)

// File mirrors the workbench TOML layout:
//
//	[artifact]
//	path = "lib/pricing/pricing.wasm"
//	base = ""
//	require = ["instruments", "pricing-engines"]
//
//	[bridge]
//	memory_limit_pages = 256
//	cache_dir = ""
//
//	[log]
//	level = "info"
type File struct {
	Artifact ArtifactSection `toml:"artifact"`
	Bridge   BridgeSection   `toml:"bridge"`
	Log      LogSection      `toml:"log"`
}

type ArtifactSection struct {
	Path    string   `toml:"path"`
	Base    string   `toml:"base"`
	Require []string `toml:"require"`
}

type BridgeSection struct {
	MemoryLimitPages uint32 `toml:"memory_limit_pages"`
	CacheDir         string `toml:"cache_dir"`
}

type LogSection struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() *File {
	return &File{
		Artifact: ArtifactSection{
			Path:    session.DefaultArtifactPath,
			Require: session.DefaultRequire(),
		},
		Log: LogSection{Level: "info"},
	}
}

// Load reads a TOML config file. A missing file is a not-found error; a
// file that exists but does not parse is invalid input.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.PhaseResolve, errors.KindNotFound).
				Detail("config file %q not found", path).
				Cause(err).
				Build()
		}
		return nil, errors.New(errors.PhaseResolve, errors.KindInvalidInput).
			Detail("read config %q", path).
			Cause(err).
			Build()
	}

	f := Default()
	if err := toml.Unmarshal(data, f); err != nil {
		return nil, errors.New(errors.PhaseResolve, errors.KindInvalidInput).
			Detail("parse config %q", path).
			Cause(err).
			Build()
	}
	return f, nil
}

// SessionConfig converts the file into a session configuration.
func (f *File) SessionConfig() session.Config {
	return session.Config{
		ArtifactPath: f.Artifact.Path,
		BaseDir:      f.Artifact.Base,
		Require:      f.Artifact.Require,
		Bridge: bridge.Config{
			MemoryLimitPages: f.Bridge.MemoryLimitPages,
			CacheDir:         f.Bridge.CacheDir,
		},
	}
}

// ZapLevel maps the configured log level onto a zap level. Unknown
// levels fall back to info.
func (f *File) ZapLevel() zapcore.Level {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(f.Log.Level)); err != nil {
		return zap.InfoLevel
	}
	return lvl
}
