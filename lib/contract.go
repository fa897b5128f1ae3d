package lib

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Entry kinds as they appear in the "type" field of an ABI member.
const (
	KindFunction    = "function"
	KindConstructor = "constructor"
	KindEvent       = "event"
	KindFallback    = "fallback"
	KindReceive     = "receive"
	KindError       = "error"
)

// ContractNameKey is the field attached to every member of a selector group.
const ContractNameKey = "$contractName"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parameter is one input/output slot of an ABI entry.
// Only Type and Components take part in the canonical signature.
type Parameter = abi.ArgumentMarshaling

// In-memory representation of a single ABI member.
// The raw fields and their order are kept so that a member can be written back out unchanged.
type Entry struct {
	Type            string
	Name            string
	Inputs          []Parameter // nil when the field is absent, non-nil (possibly empty) when present
	Outputs         []Parameter
	StateMutability string
	Anonymous       bool

	fields object
}

type entryFields struct {
	Type            string      `json:"type"`
	Name            string      `json:"name"`
	Inputs          []Parameter `json:"inputs"`
	Outputs         []Parameter `json:"outputs"`
	StateMutability string      `json:"stateMutability"`
	Anonymous       bool        `json:"anonymous"`
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return err
	}

	var f entryFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}

	*e = Entry{
		Type:            f.Type,
		Name:            f.Name,
		Inputs:          f.Inputs,
		Outputs:         f.Outputs,
		StateMutability: f.StateMutability,
		Anonymous:       f.Anonymous,
		fields:          fields,
	}
	return nil
}

func (e *Entry) MarshalJSON() ([]byte, error) {
	return e.fields.encode()
}

// NewEntry builds an entry in code. inputs may be nil to leave the field out.
func NewEntry(kind, name string, inputs []Parameter) (*Entry, error) {
	var fields object
	if err := fields.set("type", kind); err != nil {
		return nil, err
	}
	if name != "" {
		if err := fields.set("name", name); err != nil {
			return nil, err
		}
	}
	if inputs != nil {
		if err := fields.set("inputs", encodeParams(inputs)); err != nil {
			return nil, err
		}
	}

	b, err := fields.encode()
	if err != nil {
		return nil, err
	}
	out := new(Entry)
	if err := json.Unmarshal(b, out); err != nil {
		return nil, err
	}
	return out, nil
}

// go-ethereum's ArgumentMarshaling carries no json tags, so encode it by hand
func encodeParams(params []Parameter) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(params))
	for _, p := range params {
		m := map[string]interface{}{"name": p.Name, "type": p.Type}
		if p.InternalType != "" {
			m["internalType"] = p.InternalType
		}
		if p.Components != nil {
			m["components"] = encodeParams(p.Components)
		}
		if p.Indexed {
			m["indexed"] = true
		}
		out = append(out, m)
	}
	return out
}

// Tagged returns a copy of the entry's JSON object with $contractName set.
// Keys keep their source order; the tag is appended last, or replaced in place
// if the entry already carries one. The entry itself is left untouched.
func (e *Entry) Tagged(contractName string) (json.RawMessage, error) {
	fields := e.fields.clone()
	if err := fields.set(ContractNameKey, contractName); err != nil {
		return nil, err
	}
	return fields.encode()
}

// object is a JSON object that remembers the order of its keys.
type object struct {
	keys   []string
	values map[string]json.RawMessage
}

func decodeObject(data []byte) (object, error) {
	out := object{values: make(map[string]json.RawMessage)}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return out, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return out, fmt.Errorf("expected JSON object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return out, err
		}
		key, ok := tok.(string)
		if !ok {
			return out, fmt.Errorf("expected object key, got %v", tok)
		}
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return out, err
		}
		// a repeated key keeps its first position and its last value, like encoding/json
		if _, seen := out.values[key]; !seen {
			out.keys = append(out.keys, key)
		}
		out.values[key] = val
	}

	if _, err := dec.Token(); err != nil {
		return out, err
	}
	return out, nil
}

func (o *object) set(key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if o.values == nil {
		o.values = make(map[string]json.RawMessage)
	}
	if _, seen := o.values[key]; !seen {
		o.keys = append(o.keys, key)
	}
	o.values[key] = b
	return nil
}

func (o object) clone() object {
	out := object{
		keys:   make([]string, len(o.keys), len(o.keys)+1),
		values: make(map[string]json.RawMessage, len(o.values)+1),
	}
	copy(out.keys, o.keys)
	for k, v := range o.values {
		out.values[k] = v
	}
	return out
}

func (o object) encode() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(o.values[k])
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Compact(&out, buf.Bytes()); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// In-memory representation of a single ABI source file
type Contract struct {
	Name    string
	Entries []*Entry
}

// ContractName derives a contract name from a file name by removing only the final extension.
func ContractName(fileName string) string {
	base := filepath.Base(fileName)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ParseContract parses the ABI document in data. The document must be a JSON array of objects.
func ParseContract(name string, data []byte) (*Contract, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidJSON, name, err)
	}

	items, ok := doc.([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidABIShape, name)
	}

	out := new(Contract)
	out.Name = name
	out.Entries = make([]*Entry, 0, len(items))

	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidABIShape, name, err)
	}
	for i, elem := range elems {
		if _, ok := items[i].(map[string]interface{}); !ok {
			return nil, fmt.Errorf("%w: %s[%d] is not an object", ErrMalformedEntry, name, i)
		}

		entry := new(Entry)
		if err := json.Unmarshal(elem, entry); err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %v", ErrMalformedEntry, name, i, err)
		}
		out.Entries = append(out.Entries, entry)
	}

	return out, nil
}
