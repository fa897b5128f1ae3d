package lib

import (
	"encoding/json"
	"fmt"
)

// Member is one recorded entry of a selector group.
type Member struct {
	ContractName string
	Entry        *Entry
}

// Signature is the canonical signature of the member's entry.
func (m *Member) Signature() (string, error) {
	return CanonicalSignature(m.Entry)
}

// Resolver answers selector queries against a built index.
type Resolver struct {
	agg *Aggregator
}

func NewResolver(store Store, layout Layout) *Resolver {
	return &Resolver{agg: NewAggregator(store, layout)}
}

// Resolve returns every member recorded for sel, in recorded order.
func (r *Resolver) Resolve(sel Selector) ([]*Member, error) {
	raw, err := r.agg.ReadGroup(sel)
	if err != nil {
		return nil, err
	}

	out := make([]*Member, 0, len(raw))
	for i, item := range raw {
		m, err := decodeMember(item)
		if err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %v", ErrCorruptIndex, sel.Hex(), i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// ResolveCalldata resolves the function selector heading a call's input data.
func (r *Resolver) ResolveCalldata(data []byte) ([]*Member, error) {
	if len(data) < FunctionSelectorLength {
		return nil, fmt.Errorf("calldata too short: %d bytes", len(data))
	}
	sel := Selector{Kind: KindFunction, ID: data[:FunctionSelectorLength]}
	return r.Resolve(sel)
}

func decodeMember(item json.RawMessage) (*Member, error) {
	var tag struct {
		ContractName string `json:"$contractName"`
	}
	if err := json.Unmarshal(item, &tag); err != nil {
		return nil, err
	}

	entry := new(Entry)
	if err := json.Unmarshal(item, entry); err != nil {
		return nil, err
	}
	return &Member{ContractName: tag.ContractName, Entry: entry}, nil
}
