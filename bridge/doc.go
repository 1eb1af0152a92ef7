// Package bridge is the interop layer between the host process and the
// prebuilt pricing artifact.
//
// A Bridge wraps an embedded wazero engine. Its lifecycle is strictly
// ordered: create the bridge, register host namespaces, then load the
// artifact. Loading compiles the validated binary, instantiates the
// registered host modules, and instantiates the artifact into a Library
// whose exports are invoked through WIT-typed signatures:
//
//	br, err := bridge.New(ctx, nil)
//	br.RegisterHost(plot.NewHost())
//	lib, err := br.Load(ctx, art)
//	v, err := lib.Call(ctx, "instruments#price-european", params, results, 105.0, 100.0)
//
// The ABI is deliberately small: scalar WIT types map to single stack
// slots, strings are lowered into guest memory through the artifact's
// "alloc" export, and results flatten to at most one value. Calendar
// dates cross the boundary as u32 day numbers.
package bridge
