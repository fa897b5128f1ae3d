package lib

import (
	"fmt"
	"strings"
)

const tupleType = "tuple"

// CanonicalType returns the signature spelling of a parameter type.
// Elementary types are returned as declared; tuples are expanded into their
// parenthesised component list followed by any array suffix.
func CanonicalType(p Parameter) (string, error) {
	if p.Type == "" {
		return "", fmt.Errorf("%w: parameter '%s' has no type", ErrMalformedEntry, p.Name)
	}

	suffix, ok := tupleSuffix(p.Type)
	if !ok {
		if strings.HasPrefix(p.Type, tupleType) {
			return "", fmt.Errorf("%w: parameter '%s' has invalid tuple type '%s'", ErrMalformedType, p.Name, p.Type)
		}
		return p.Type, nil
	}
	if len(p.Components) == 0 {
		return "", fmt.Errorf("%w: tuple parameter '%s' has no components", ErrMalformedType, p.Name)
	}

	inner, err := canonicalList(p.Components)
	if err != nil {
		return "", err
	}
	return "(" + inner + ")" + suffix, nil
}

func canonicalList(params []Parameter) (string, error) {
	types := make([]string, 0, len(params))
	for _, p := range params {
		t, err := CanonicalType(p)
		if err != nil {
			return "", err
		}
		types = append(types, t)
	}
	return strings.Join(types, ","), nil
}

// tupleSuffix reports whether typ is "tuple" optionally followed by array
// suffixes, and returns those suffixes.
func tupleSuffix(typ string) (string, bool) {
	if !strings.HasPrefix(typ, tupleType) {
		return "", false
	}
	suffix := typ[len(tupleType):]
	if !isArraySuffix(suffix) {
		return "", false
	}
	return suffix, true
}

// isArraySuffix matches zero or more groups of "[]" or "[N]".
func isArraySuffix(s string) bool {
	for len(s) > 0 {
		if s[0] != '[' {
			return false
		}
		end := strings.IndexByte(s, ']')
		if end == -1 {
			return false
		}
		for _, c := range s[1:end] {
			if c < '0' || c > '9' {
				return false
			}
		}
		s = s[end+1:]
	}
	return true
}
