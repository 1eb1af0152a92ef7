package artifact

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/derivalab/pricing-bridge/errors"
)

// WebAssembly binary format magic number and version.
const (
	// Magic is the wasm binary magic number ("\0asm" in little-endian).
	Magic uint32 = 0x6D736100

	// Version is the supported wasm binary format version.
	Version uint32 = 0x01
)

// ManifestSection is the custom section carrying the artifact's declared
// interface text.
const ManifestSection = "bridge-manifest"

// Section IDs the scanner cares about. Everything else is skipped.
const (
	sectionCustom byte = 0
	sectionExport byte = 7
)

// Export descriptor kinds.
const (
	kindFunc   byte = 0
	kindTable  byte = 1
	kindMemory byte = 2
	kindGlobal byte = 3
	kindTag    byte = 4
)

// Header validation sentinels, reachable through errors.Is on the
// compatibility-class error Read returns.
var (
	ErrBadMagic   = stderrors.New("invalid artifact magic number")
	ErrBadVersion = stderrors.New("unsupported artifact binary version")
)

// Artifact is a loaded, header-validated pricing library binary.
type Artifact struct {
	Path     string
	Bytes    []byte
	Manifest string
	exports  []string
}

// Resolve turns a relative artifact path into an absolute one. An empty
// base defaults to the running executable's directory, mirroring the
// original script-relative convention. The resolved path must exist and
// be a regular file; a miss is a path-resolution failure.
func Resolve(base, rel string) (string, error) {
	if rel == "" {
		return "", errors.InvalidInput(errors.PhaseResolve, "artifact path is empty")
	}

	path := rel
	if !filepath.IsAbs(rel) {
		if base == "" {
			exe, err := os.Executable()
			if err != nil {
				return "", errors.New(errors.PhaseResolve, errors.KindInvalidInput).
					Detail("cannot determine executable directory").
					Cause(err).
					Build()
			}
			base = filepath.Dir(exe)
		}
		path = filepath.Join(base, rel)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", errors.ArtifactNotFound(path, err)
	}
	if info.IsDir() {
		return "", errors.New(errors.PhaseResolve, errors.KindNotFound).
			Detail("artifact path %q is a directory", path).
			Build()
	}

	return path, nil
}

// Load reads and validates the artifact at path.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ArtifactNotFound(path, err)
		}
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidInput).
			Detail("read artifact %q", path).
			Cause(err).
			Build()
	}

	a, err := Read(data)
	if err != nil {
		return nil, err
	}
	a.Path = path
	return a, nil
}

// Read validates the artifact header and scans its sections. The header
// is checked before anything else: a file that exists but is not a wasm
// binary for the active bridge fails with a compatibility-class error,
// never a not-found one. The scan collects exported function names and
// the manifest custom section.
func Read(data []byte) (*Artifact, error) {
	r := &reader{data: data}

	magic, err := r.readU32LE()
	if err != nil {
		return nil, errors.Incompatible("artifact truncated before header", err)
	}
	if magic != Magic {
		return nil, errors.Incompatible("not a wasm binary", ErrBadMagic)
	}

	version, err := r.readU32LE()
	if err != nil {
		return nil, errors.Incompatible("artifact truncated before version", err)
	}
	if version != Version {
		return nil, errors.New(errors.PhaseLoad, errors.KindIncompatible).
			Detail("wasm binary version %d, want %d", version, Version).
			Value(version).
			Cause(ErrBadVersion).
			Build()
	}

	a := &Artifact{Bytes: data}

	for r.remaining() > 0 {
		id, err := r.readByte()
		if err != nil {
			return nil, errors.Incompatible("section header truncated", err)
		}
		size, err := r.readUint()
		if err != nil {
			return nil, errors.Incompatible("section size truncated", err)
		}
		payload, err := r.readBytes(int(size))
		if err != nil {
			return nil, errors.New(errors.PhaseLoad, errors.KindIncompatible).
				Detail("section %d truncated", id).
				Cause(err).
				Build()
		}

		switch id {
		case sectionCustom:
			if err := a.scanCustomSection(payload); err != nil {
				return nil, err
			}
		case sectionExport:
			if err := a.scanExportSection(payload); err != nil {
				return nil, err
			}
		}
	}

	return a, nil
}

func (a *Artifact) scanCustomSection(payload []byte) error {
	r := &reader{data: payload}
	name, err := r.readName()
	if err != nil {
		return errors.Incompatible("custom section name truncated", err)
	}
	if name == ManifestSection {
		a.Manifest = string(payload[r.off:])
	}
	return nil
}

func (a *Artifact) scanExportSection(payload []byte) error {
	r := &reader{data: payload}
	count, err := r.readUint()
	if err != nil {
		return errors.Incompatible("export count truncated", err)
	}
	for i := uint32(0); i < count; i++ {
		name, err := r.readName()
		if err != nil {
			return errors.Incompatible("export name truncated", err)
		}
		kind, err := r.readByte()
		if err != nil {
			return errors.Incompatible("export kind truncated", err)
		}
		if kind > kindTag {
			return errors.New(errors.PhaseLoad, errors.KindIncompatible).
				Detail("unknown export kind 0x%02x", kind).
				Build()
		}
		if _, err := r.readUint(); err != nil {
			return errors.Incompatible("export index truncated", err)
		}
		if kind == kindFunc {
			a.exports = append(a.exports, name)
		}
	}
	return nil
}

// Exports returns the exported function names in declaration order.
func (a *Artifact) Exports() []string {
	out := make([]string, len(a.exports))
	copy(out, a.exports)
	return out
}

// Namespaces returns the distinct namespaces the artifact exports
// symbols under, sorted. Exports without a "namespace#function" shape
// (allocator, start function) are module plumbing and not namespaces.
func (a *Artifact) Namespaces() []string {
	seen := make(map[string]struct{})
	for _, name := range a.exports {
		ns, _, found := strings.Cut(name, "#")
		if !found || ns == "" {
			continue
		}
		if at := strings.LastIndex(ns, "@"); at >= 0 {
			ns = ns[:at]
		}
		seen[ns] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for ns := range seen {
		out = append(out, ns)
	}
	sort.Strings(out)
	return out
}

// HasNamespace reports whether the artifact exports at least one symbol
// under the given namespace.
func (a *Artifact) HasNamespace(name string) bool {
	for _, ns := range a.Namespaces() {
		if ns == name {
			return true
		}
	}
	return false
}
