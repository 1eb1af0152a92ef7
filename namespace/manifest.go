package namespace

import (
	"regexp"
	"strings"

	"go.bytecodealliance.org/wit"

	"github.com/derivalab/pricing-bridge/errors"
)

// Interface is one namespace declaration parsed from the artifact's
// manifest text.
type Interface struct {
	Name    string
	Version *Version
	Funcs   map[string]*Symbol
}

// Manifest declaration patterns:
//
//	interface instruments@1.0.0 { ... }
//	price-european: func(spot: f64, strike: f64) -> f64;
var (
	interfacePattern = regexp.MustCompile(`interface\s+([a-zA-Z_][a-zA-Z0-9_-]*)(?:@([0-9][0-9.]*))?\s*\{([^}]*)\}`)
	funcPattern      = regexp.MustCompile(`([a-zA-Z_][a-zA-Z0-9_-]*)\s*:\s*func\s*\(([^)]*)\)(?:\s*->\s*([^;]+))?;`)
)

// ParseManifest extracts interface declarations from the artifact's
// manifest text. The result maps namespace name (without version) to its
// declaration. A manifest with no interfaces is a malformed build.
func ParseManifest(text string) (map[string]*Interface, error) {
	ifaces := make(map[string]*Interface)

	for _, match := range interfacePattern.FindAllStringSubmatch(text, -1) {
		iface := &Interface{
			Name:  match[1],
			Funcs: make(map[string]*Symbol),
		}
		if match[2] != "" {
			if v, ok := ParseVersion(match[2]); ok {
				iface.Version = &v
			}
		}

		for _, fm := range funcPattern.FindAllStringSubmatch(match[3], -1) {
			sym, err := parseFunc(fm)
			if err != nil {
				return nil, err
			}
			iface.Funcs[sym.Name] = sym
		}

		ifaces[iface.Name] = iface
	}

	if len(ifaces) == 0 {
		return nil, errors.InvalidInput(errors.PhaseBind, "no interfaces found in manifest")
	}
	return ifaces, nil
}

func parseFunc(match []string) (*Symbol, error) {
	sym := &Symbol{Name: match[1]}

	params := strings.TrimSpace(match[2])
	if params != "" {
		for _, p := range splitParams(params) {
			pname := ""
			typStr := p
			if idx := strings.LastIndex(p, ":"); idx != -1 {
				pname = strings.TrimSpace(p[:idx])
				typStr = strings.TrimSpace(p[idx+1:])
			}
			t, err := wit.ParseType(typStr)
			if err != nil {
				return nil, errors.New(errors.PhaseBind, errors.KindInvalidInput).
					Path(sym.Name).
					Detail("parse param type %q", typStr).
					Cause(err).
					Build()
			}
			sym.ParamNames = append(sym.ParamNames, pname)
			sym.Params = append(sym.Params, t)
		}
	}

	result := strings.TrimSpace(match[3])
	if result != "" && result != "()" {
		t, err := wit.ParseType(result)
		if err != nil {
			return nil, errors.New(errors.PhaseBind, errors.KindInvalidInput).
				Path(sym.Name).
				Detail("parse result type %q", result).
				Cause(err).
				Build()
		}
		sym.Results = []wit.Type{t}
	}

	return sym, nil
}

// splitParams splits a parameter list on top-level commas, leaving any
// nested parens intact.
func splitParams(s string) []string {
	var result []string
	var current strings.Builder
	depth := 0

	for _, ch := range s {
		switch ch {
		case '(', '<':
			depth++
			current.WriteRune(ch)
		case ')', '>':
			depth--
			current.WriteRune(ch)
		case ',':
			if depth == 0 {
				if str := strings.TrimSpace(current.String()); str != "" {
					result = append(result, str)
				}
				current.Reset()
			} else {
				current.WriteRune(ch)
			}
		default:
			current.WriteRune(ch)
		}
	}

	if str := strings.TrimSpace(current.String()); str != "" {
		result = append(result, str)
	}

	return result
}
