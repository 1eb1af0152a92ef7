package namespace

import (
	"sort"
	"strings"
)

// BoundSet is the immutable snapshot of every name a bootstrap bound.
// It is built once, after all namespaces resolve, and never mutated.
// A failed bootstrap has no BoundSet at all.
type BoundSet struct {
	names []string
}

// NewBoundSet builds a set from names, deduplicated and sorted.
func NewBoundSet(names ...string) *BoundSet {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup || n == "" {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return &BoundSet{names: out}
}

// Names returns a copy of the bound names in sorted order.
func (b *BoundSet) Names() []string {
	out := make([]string, len(b.names))
	copy(out, b.names)
	return out
}

// Has reports whether name is bound.
func (b *BoundSet) Has(name string) bool {
	i := sort.SearchStrings(b.names, name)
	return i < len(b.names) && b.names[i] == name
}

func (b *BoundSet) Len() int {
	return len(b.names)
}

func (b *BoundSet) String() string {
	return strings.Join(b.names, ", ")
}
