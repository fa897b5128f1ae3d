package lib

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

const (
	FunctionSelectorLength = 4
	EventSelectorLength    = 32
)

// Hasher is a 256-bit Keccak compatible hash, with the signature of crypto.Keccak256.
type Hasher func(data ...[]byte) []byte

// Keccak256 is the default Hasher.
var Keccak256 Hasher = crypto.Keccak256

// Selector identifies a function (4 bytes) or an event (32 bytes).
type Selector struct {
	Kind string
	ID   []byte
}

// Hex renders the selector as 0x followed by lowercase hex digits.
func (s Selector) Hex() string {
	return hexutil.Encode(s.ID)
}

func (s Selector) String() string {
	return s.Hex()
}

// ParseSelectorHex decodes a 0x-prefixed selector. The kind follows from its length.
func ParseSelectorHex(s string) (Selector, error) {
	id, err := hexutil.Decode(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return Selector{}, fmt.Errorf("invalid selector '%s': %w", s, err)
	}

	switch len(id) {
	case FunctionSelectorLength:
		return Selector{Kind: KindFunction, ID: id}, nil
	case EventSelectorLength:
		return Selector{Kind: KindEvent, ID: id}, nil
	}
	return Selector{}, fmt.Errorf("invalid selector '%s': expected %d or %d bytes, got %d", s, FunctionSelectorLength, EventSelectorLength, len(id))
}

// CanonicalSignature renders name(type1,type2,...) from the entry's inputs.
// Output types, indexed flags and state mutability never take part.
func CanonicalSignature(e *Entry) (string, error) {
	if e.Name == "" {
		return "", fmt.Errorf("%w: %s entry has no name", ErrMalformedEntry, e.Type)
	}
	inner, err := canonicalList(e.Inputs)
	if err != nil {
		return "", fmt.Errorf("%s: %w", e.Name, err)
	}
	return e.Name + "(" + inner + ")", nil
}

// SelectorOf computes the selector of a function or event entry with Keccak256.
func SelectorOf(e *Entry) (Selector, error) {
	return ComputeSelector(Keccak256, e)
}

// ComputeSelector computes the selector of a function or event entry with h.
func ComputeSelector(h Hasher, e *Entry) (Selector, error) {
	sig, err := CanonicalSignature(e)
	if err != nil {
		return Selector{}, err
	}
	return selectorFromSignature(h, e.Type, sig)
}

// SignatureSelector computes the selector of a textual signature such as
// "transfer(address, uint256)". The text is normalised through abi.ParseSelector.
func SignatureSelector(kind, text string) (Selector, string, error) {
	compact := compactSignature(text)
	if !strings.Contains(compact, "(") {
		return Selector{}, "", fmt.Errorf("%w: signature '%s' has no parameter list", ErrMalformedType, text)
	}
	parsed, err := abi.ParseSelector(compact)
	if err != nil {
		return Selector{}, "", fmt.Errorf("%w: %v", ErrMalformedType, err)
	}

	e, err := NewEntry(kind, parsed.Name, parsed.Inputs)
	if err != nil {
		return Selector{}, "", err
	}
	sig, err := CanonicalSignature(e)
	if err != nil {
		return Selector{}, "", err
	}
	sel, err := selectorFromSignature(Keccak256, kind, sig)
	if err != nil {
		return Selector{}, "", err
	}
	return sel, sig, nil
}

// compactSignature drops whitespace and, inside the parameter list, everything
// following an argument's type up to the next ',' or ')', so parameter names
// and the indexed keyword do not end up glued to the type.
func compactSignature(text string) string {
	text = strings.TrimSpace(text)

	var b strings.Builder
	depth := 0
	skipping := false
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '(':
			depth++
			skipping = false
		case c == ')':
			depth--
			skipping = false
		case c == ',':
			skipping = false
		case unicode.IsSpace(rune(c)):
			if skipping || depth == 0 || b.Len() == 0 {
				continue
			}
			next := nextNonSpace(text[i:])
			if next == '[' || next == ',' || next == ')' || next == '(' {
				continue
			}
			if last := b.String()[b.Len()-1]; last != '(' && last != ',' {
				skipping = true
			}
			continue
		}
		if !skipping {
			b.WriteByte(c)
		}
	}
	return b.String()
}

func nextNonSpace(s string) byte {
	for i := 0; i < len(s); i++ {
		if !unicode.IsSpace(rune(s[i])) {
			return s[i]
		}
	}
	return 0
}

func selectorFromSignature(h Hasher, kind, sig string) (Selector, error) {
	sum := h([]byte(sig))
	if len(sum) < EventSelectorLength {
		return Selector{}, fmt.Errorf("hash of '%s' is %d bytes, expected %d", sig, len(sum), EventSelectorLength)
	}
	switch kind {
	case KindFunction:
		return Selector{Kind: kind, ID: sum[:FunctionSelectorLength]}, nil
	case KindEvent:
		return Selector{Kind: kind, ID: sum[:EventSelectorLength]}, nil
	}
	return Selector{}, fmt.Errorf("%w: no selector for %s entries", ErrMalformedEntry, kind)
}
