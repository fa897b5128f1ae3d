package lib

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const maxFileNameLength = 256

var validKinds = map[string]struct{}{
	KindFunction:    {},
	KindConstructor: {},
	KindEvent:       {},
	KindFallback:    {},
	KindReceive:     {},
	KindError:       {},
}

var validStateMutability = map[string]struct{}{
	"pure":       {},
	"view":       {},
	"nonpayable": {},
	"payable":    {},
}

// Finding is one validation problem. Index is -1 for problems with the file as a whole.
type Finding struct {
	File    string
	Index   int
	Rule    string
	Message string
}

func (f Finding) String() string {
	if f.Index < 0 {
		return fmt.Sprintf("%s: %s: %s", f.File, f.Rule, f.Message)
	}
	return fmt.Sprintf("%s[%d]: %s: %s", f.File, f.Index, f.Rule, f.Message)
}

// Stats counts the members of an ABI by kind.
type Stats struct {
	Functions int
	Events    int
	Errors    int
}

func (s *Stats) Add(o Stats) {
	s.Functions += o.Functions
	s.Events += o.Events
	s.Errors += o.Errors
}

// CountKinds tallies functions, events and errors declared by c.
func CountKinds(c *Contract) Stats {
	var out Stats
	for _, e := range c.Entries {
		switch e.Type {
		case KindFunction:
			out.Functions++
		case KindEvent:
			out.Events++
		case KindError:
			out.Errors++
		}
	}
	return out
}

// Validate checks an ABI file beyond what selector computation needs.
// With strict set the document must also load with go-ethereum's abi.JSON.
func Validate(fileName string, data []byte, strict bool) []Finding {
	v := &validator{file: fileName}

	// File-level checks
	{
		if strings.IndexFunc(fileName, unicode.IsSpace) != -1 {
			v.add(-1, "file-name", "contains whitespace")
		}
		if len(fileName) >= maxFileNameLength {
			v.add(-1, "file-name", fmt.Sprintf("longer than %d characters", maxFileNameLength-1))
		}
		if len(bytes.TrimSpace(data)) == 0 {
			v.add(-1, "empty", "file is empty")
			return v.findings
		}
	}

	var doc interface{}
	if err := json.Unmarshal(bytes.TrimPrefix(data, utf8BOM), &doc); err != nil {
		v.add(-1, "json", err.Error())
		return v.findings
	}
	items, ok := doc.([]interface{})
	if !ok {
		v.add(-1, "shape", ErrInvalidABIShape.Error())
		return v.findings
	}

	for i, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			v.add(i, "shape", "entry is not an object")
			continue
		}
		v.entry(i, obj)
	}

	if len(v.findings) == 0 {
		v.signatures(data)
	}
	if strict && len(v.findings) == 0 {
		if _, err := abi.JSON(bytes.NewReader(data)); err != nil {
			v.add(-1, "go-ethereum", err.Error())
		}
	}

	return v.findings
}

type validator struct {
	file     string
	findings []Finding
}

func (v *validator) add(index int, rule, msg string) {
	v.findings = append(v.findings, Finding{File: v.file, Index: index, Rule: rule, Message: msg})
}

func (v *validator) entry(i int, obj map[string]interface{}) {
	kind, _ := obj["type"].(string)
	if _, ok := obj["type"]; ok {
		if _, valid := validKinds[kind]; !valid {
			v.add(i, "type", fmt.Sprintf("invalid entry type %v", obj["type"]))
		}
	}

	if kind == KindFunction || kind == KindEvent {
		if _, ok := obj["name"].(string); !ok {
			v.add(i, "name", fmt.Sprintf("%s without a string name", kind))
		}
	}

	if kind == KindFunction {
		if sm, ok := obj["stateMutability"]; ok {
			s, _ := sm.(string)
			if _, valid := validStateMutability[s]; !valid {
				v.add(i, "stateMutability", fmt.Sprintf("invalid value %v", sm))
			}
		}
	}

	raw, present := obj["inputs"]
	if !present {
		return
	}
	inputs, ok := raw.([]interface{})
	if !ok {
		v.add(i, "inputs", "inputs is not an array")
		return
	}
	for j, in := range inputs {
		param, ok := in.(map[string]interface{})
		if !ok {
			v.add(i, "inputs", fmt.Sprintf("inputs[%d] is not an object", j))
			continue
		}
		if _, ok := param["type"].(string); !ok {
			v.add(i, "inputs", fmt.Sprintf("inputs[%d] missing type", j))
		}
		if kind == KindEvent {
			if idx, ok := param["indexed"]; ok {
				if _, isBool := idx.(bool); !isBool {
					v.add(i, "indexed", fmt.Sprintf("inputs[%d].indexed is not a boolean", j))
				}
			}
		}
	}
}

func (v *validator) signatures(data []byte) {
	c, err := ParseContract(v.file, data)
	if err != nil {
		v.add(-1, "parse", err.Error())
		return
	}
	for i, e := range c.Entries {
		if !IsEligible(e) {
			continue
		}
		if _, err := SelectorOf(e); err != nil {
			v.add(i, "signature", err.Error())
		}
	}
}
