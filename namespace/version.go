package namespace

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a semantic version attached to a namespace.
type Version struct {
	Major uint32
	Minor uint32
	Patch uint32
}

// ParseVersion parses "1.2.0" or "1.2" forms.
func ParseVersion(s string) (Version, bool) {
	if s == "" {
		return Version{}, false
	}

	parts := strings.Split(s, ".")
	if len(parts) > 3 {
		return Version{}, false
	}

	var nums [3]uint32
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return Version{}, false
		}
		nums[i] = uint32(n)
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, true
}

// Compatible reports whether v satisfies a request for want: same major,
// and v at least as new in minor/patch.
func (v Version) Compatible(want Version) bool {
	if v.Major != want.Major {
		return false
	}
	if v.Minor < want.Minor {
		return false
	}
	if v.Minor == want.Minor && v.Patch < want.Patch {
		return false
	}
	return true
}

// newer reports whether v is strictly newer than o within a major line.
func (v Version) newer(o Version) bool {
	if v.Minor != o.Minor {
		return v.Minor > o.Minor
	}
	return v.Patch > o.Patch
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// splitNameVersion separates "instruments@1.0.0" into name and version.
func splitNameVersion(s string) (string, *Version) {
	at := strings.LastIndex(s, "@")
	if at < 0 {
		return s, nil
	}
	if v, ok := ParseVersion(s[at+1:]); ok {
		return s[:at], &v
	}
	return s, nil
}
