// Package testartifact assembles small, valid pricing library binaries
// for tests. The produced module exports two pricing namespaces, a bump
// allocator and linear memory, and carries a manifest custom section,
// the same shape a real artifact build would have.
package testartifact

import "strings"

// Wasm binary encoding constants, local to the assembler.
const (
	secType   byte = 1
	secFunc   byte = 3
	secMemory byte = 5
	secExport byte = 7
	secCode   byte = 10
	secCustom byte = 0

	kindFunc   byte = 0
	kindMemory byte = 2
)

// Manifest is the interface text embedded by default. It matches the
// functions Build exports.
const Manifest = `interface instruments@1.0.0 {
  price-european: func(spot: f64, strike: f64) -> f64;
  describe: func(label: string) -> u32;
}

interface pricing-engines@1.0.0 {
  black-scholes: func(spot: f64, vol: f64) -> f64;
}
`

type cfg struct {
	manifest string
	omitted  map[string]bool
}

// Option adjusts the assembled module.
type Option func(*cfg)

// WithManifest replaces the embedded manifest text. Empty means no
// manifest custom section at all.
func WithManifest(text string) Option {
	return func(c *cfg) { c.manifest = text }
}

// OmitExport drops a named export, simulating a stale or renamed build.
func OmitExport(name string) Option {
	return func(c *cfg) { c.omitted[name] = true }
}

// OmitNamespace drops every export under the given namespace.
func OmitNamespace(ns string) Option {
	return func(c *cfg) { c.omitted["ns:"+ns] = true }
}

type funcDef struct {
	export  string
	typeIdx byte
	body    []byte
}

// Build assembles a valid wasm module. Exported functions:
//
//	instruments#price-european   (f64, f64) -> f64, returns spot
//	instruments#describe         (i32, i32) -> i32, returns label length
//	pricing-engines#black-scholes (f64, f64) -> f64, returns vol
//	alloc                        (i32) -> i32, bump allocator stub
//	memory                       one page of linear memory
func Build(opts ...Option) []byte {
	c := &cfg{manifest: Manifest, omitted: make(map[string]bool)}
	for _, opt := range opts {
		opt(c)
	}

	funcs := []funcDef{
		// local.get 0
		{export: "instruments#price-european", typeIdx: 0, body: []byte{0x00, 0x20, 0x00, 0x0B}},
		// local.get 1 (string is passed as ptr+len; return len)
		{export: "instruments#describe", typeIdx: 2, body: []byte{0x00, 0x20, 0x01, 0x0B}},
		// local.get 1
		{export: "pricing-engines#black-scholes", typeIdx: 0, body: []byte{0x00, 0x20, 0x01, 0x0B}},
		// i32.const 1024
		{export: "alloc", typeIdx: 1, body: []byte{0x00, 0x41, 0x80, 0x08, 0x0B}},
	}

	var mod []byte
	mod = append(mod, 0x00, 0x61, 0x73, 0x6D) // "\0asm"
	mod = append(mod, 0x01, 0x00, 0x00, 0x00) // version 1

	// Type section: (f64,f64)->f64, (i32)->i32, (i32,i32)->i32
	mod = append(mod, section(secType, concat(
		uleb(3),
		[]byte{0x60, 0x02, 0x7C, 0x7C, 0x01, 0x7C},
		[]byte{0x60, 0x01, 0x7F, 0x01, 0x7F},
		[]byte{0x60, 0x02, 0x7F, 0x7F, 0x01, 0x7F},
	))...)

	// Function section
	fn := uleb(uint32(len(funcs)))
	for _, f := range funcs {
		fn = append(fn, f.typeIdx)
	}
	mod = append(mod, section(secFunc, fn)...)

	// Memory section: one page, no max
	mod = append(mod, section(secMemory, []byte{0x01, 0x00, 0x01})...)

	// Export section
	var entries [][]byte
	for i, f := range funcs {
		if c.skips(f.export) {
			continue
		}
		entries = append(entries, exportEntry(f.export, kindFunc, uint32(i)))
	}
	entries = append(entries, exportEntry("memory", kindMemory, 0))
	exp := uleb(uint32(len(entries)))
	for _, e := range entries {
		exp = append(exp, e...)
	}
	mod = append(mod, section(secExport, exp)...)

	// Code section
	code := uleb(uint32(len(funcs)))
	for _, f := range funcs {
		code = append(code, uleb(uint32(len(f.body)))...)
		code = append(code, f.body...)
	}
	mod = append(mod, section(secCode, code)...)

	// Manifest custom section
	if c.manifest != "" {
		mod = append(mod, section(secCustom, concat(
			name("bridge-manifest"),
			[]byte(c.manifest),
		))...)
	}

	return mod
}

func (c *cfg) skips(export string) bool {
	if c.omitted[export] {
		return true
	}
	if ns, _, ok := strings.Cut(export, "#"); ok && c.omitted["ns:"+ns] {
		return true
	}
	return false
}

func uleb(n uint32) []byte {
	var out []byte
	for {
		b := byte(n & 0x7F)
		n >>= 7
		if n != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if n == 0 {
			return out
		}
	}
}

func name(s string) []byte {
	return append(uleb(uint32(len(s))), s...)
}

func section(id byte, payload []byte) []byte {
	out := []byte{id}
	out = append(out, uleb(uint32(len(payload)))...)
	return append(out, payload...)
}

func exportEntry(exportName string, kind byte, index uint32) []byte {
	out := name(exportName)
	out = append(out, kind)
	return append(out, uleb(index)...)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
