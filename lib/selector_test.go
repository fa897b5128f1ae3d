package lib

import (
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"
)

const erc20ABI = `[
 {"type":"function","name":"totalSupply","inputs":[],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
 {"type":"function","name":"balanceOf","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}],"stateMutability":"view"},
 {"type":"function","name":"transfer","inputs":[{"name":"to","type":"address"},{"name":"value","type":"uint256"}],"outputs":[{"name":"","type":"bool"}],"stateMutability":"nonpayable"},
 {"type":"event","name":"Transfer","anonymous":false,"inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]},
 {"type":"event","name":"Approval","anonymous":false,"inputs":[{"name":"owner","type":"address","indexed":true},{"name":"spender","type":"address","indexed":true},{"name":"value","type":"uint256","indexed":false}]},
 {"type":"function","name":"submit","inputs":[{"name":"orders","type":"tuple[]","components":[{"name":"maker","type":"address"},{"name":"amounts","type":"uint256[2]"},{"name":"inner","type":"tuple","components":[{"name":"flag","type":"bool"},{"name":"data","type":"bytes"}]}]}],"outputs":[],"stateMutability":"payable"}
]`

func TestKnownVectors(t *testing.T) {
	c, err := ParseContract("erc20", []byte(erc20ABI))
	require.NoError(t, err)

	want := map[string]string{
		"totalSupply": "0x18160ddd",
		"balanceOf":   "0x70a08231",
		"transfer":    "0xa9059cbb",
		"Transfer":    "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef",
		"Approval":    "0x8c5be1e5ebec7d5bd14f71427d1e84f3dd0314c0f7b2291e5b200ac8c7c3b925",
	}

	for _, e := range c.Entries {
		exp, ok := want[e.Name]
		if !ok {
			continue
		}
		sel, err := SelectorOf(e)
		require.NoError(t, err)
		assert.Equal(t, exp, sel.Hex(), e.Name)
		assert.Equal(t, e.Type, sel.Kind)
	}
}

func TestSelectorLengths(t *testing.T) {
	c, err := ParseContract("erc20", []byte(erc20ABI))
	require.NoError(t, err)

	for _, e := range c.Entries {
		sel, err := SelectorOf(e)
		require.NoError(t, err)
		switch e.Type {
		case KindFunction:
			assert.Len(t, sel.ID, FunctionSelectorLength)
			assert.Len(t, sel.Hex(), 2+2*FunctionSelectorLength)
		case KindEvent:
			assert.Len(t, sel.ID, EventSelectorLength)
			assert.Len(t, sel.Hex(), 2+2*EventSelectorLength)
		}
		assert.Equal(t, strings.ToLower(sel.Hex()), sel.Hex())
	}
}

// go-ethereum computes the same ids from the same document
func TestSelectorsMatchGoEthereum(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	require.NoError(t, err)

	c, err := ParseContract("erc20", []byte(erc20ABI))
	require.NoError(t, err)

	for _, e := range c.Entries {
		sel, err := SelectorOf(e)
		require.NoError(t, err)
		sig, err := CanonicalSignature(e)
		require.NoError(t, err)

		switch e.Type {
		case KindFunction:
			m, ok := parsed.Methods[e.Name]
			require.True(t, ok, e.Name)
			assert.Equal(t, m.ID, sel.ID, e.Name)
			assert.Equal(t, m.Sig, sig)
		case KindEvent:
			ev, ok := parsed.Events[e.Name]
			require.True(t, ok, e.Name)
			assert.Equal(t, ev.ID.Bytes(), sel.ID, e.Name)
			assert.Equal(t, ev.Sig, sig)
		}
	}
}

func TestCanonicalSignatureTuple(t *testing.T) {
	c, err := ParseContract("erc20", []byte(erc20ABI))
	require.NoError(t, err)

	sig, err := CanonicalSignature(c.Entries[5])
	require.NoError(t, err)
	assert.Equal(t, "submit((address,uint256[2],(bool,bytes))[])", sig)
}

func TestSelectorIndependentHash(t *testing.T) {
	e := mustEntry(t, KindFunction, "transfer", []Parameter{{Type: "address"}, {Type: "uint256"}})
	sel, err := SelectorOf(e)
	require.NoError(t, err)

	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write([]byte("transfer(address,uint256)"))
	sum := h.Sum(nil)
	assert.Equal(t, hex.EncodeToString(sum[:4]), hex.EncodeToString(sel.ID))
}

func TestSelectorDeterminism(t *testing.T) {
	a := `{"type":"event","name":"Transfer","inputs":[{"name":"from","type":"address","indexed":true},{"name":"to","type":"address","indexed":true},{"name":"value","type":"uint256"}]}`
	b := `{"type":"event","name":"Transfer","anonymous":false,"inputs":[{"name":"src","type":"address"},{"name":"dst","type":"address","indexed":false},{"name":"wad","type":"uint256","indexed":true}]}`

	var ea, eb Entry
	require.NoError(t, json.Unmarshal([]byte(a), &ea))
	require.NoError(t, json.Unmarshal([]byte(b), &eb))

	sa, err := SelectorOf(&ea)
	require.NoError(t, err)
	sb, err := SelectorOf(&eb)
	require.NoError(t, err)
	assert.Equal(t, sa, sb)

	again, err := SelectorOf(&ea)
	require.NoError(t, err)
	assert.Equal(t, sa, again)

	f1 := `{"type":"function","name":"balanceOf","inputs":[{"name":"owner","type":"address"}],"stateMutability":"view","outputs":[{"type":"uint256"}]}`
	f2 := `{"type":"function","name":"balanceOf","inputs":[{"name":"who","type":"address"}],"stateMutability":"nonpayable","outputs":[]}`
	var e1, e2 Entry
	require.NoError(t, json.Unmarshal([]byte(f1), &e1))
	require.NoError(t, json.Unmarshal([]byte(f2), &e2))
	s1, err := SelectorOf(&e1)
	require.NoError(t, err)
	s2, err := SelectorOf(&e2)
	require.NoError(t, err)
	assert.Equal(t, "0x70a08231", s1.Hex())
	assert.Equal(t, s1, s2)
}

func TestSelectorErrors(t *testing.T) {
	_, err := SelectorOf(mustEntry(t, KindFunction, "", []Parameter{}))
	assert.ErrorIs(t, err, ErrMalformedEntry)

	_, err = SelectorOf(mustEntry(t, KindFunction, "f", []Parameter{{Name: "p", Type: "tuple"}}))
	assert.ErrorIs(t, err, ErrMalformedType)

	_, err = SelectorOf(mustEntry(t, KindError, "Unauthorized", []Parameter{}))
	assert.ErrorIs(t, err, ErrMalformedEntry)
}

func TestComputeSelectorWithHasher(t *testing.T) {
	var seen string
	fake := func(data ...[]byte) []byte {
		seen = string(data[0])
		out := make([]byte, 32)
		out[0] = 0xab
		return out
	}

	sel, err := ComputeSelector(fake, mustEntry(t, KindFunction, "f", []Parameter{{Type: "uint8"}}))
	require.NoError(t, err)
	assert.Equal(t, "f(uint8)", seen)
	assert.Equal(t, "0xab000000", sel.Hex())

	short := func(data ...[]byte) []byte { return []byte{1, 2} }
	_, err = ComputeSelector(short, mustEntry(t, KindFunction, "f", []Parameter{}))
	assert.Error(t, err)
}

func TestSignatureSelector(t *testing.T) {
	sel, sig, err := SignatureSelector(KindFunction, "transfer(address, uint256)")
	require.NoError(t, err)
	assert.Equal(t, "transfer(address,uint256)", sig)
	assert.Equal(t, "0xa9059cbb", sel.Hex())

	sel, _, err = SignatureSelector(KindFunction, "totalSupply()")
	require.NoError(t, err)
	assert.Equal(t, "0x18160ddd", sel.Hex())

	sel, _, err = SignatureSelector(KindEvent, "Transfer(address,address,uint256)")
	require.NoError(t, err)
	assert.Equal(t, "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef", sel.Hex())

	_, sig, err = SignatureSelector(KindFunction, "f((uint256,address),bool)")
	require.NoError(t, err)
	assert.Equal(t, "f((uint256,address),bool)", sig)

	sel, sig, err = SignatureSelector(KindFunction, "transfer(address to, uint256 amount)")
	require.NoError(t, err)
	assert.Equal(t, "transfer(address,uint256)", sig)
	assert.Equal(t, "0xa9059cbb", sel.Hex())

	sel, sig, err = SignatureSelector(KindEvent, " Transfer(address indexed from, address indexed to, uint256 value) ")
	require.NoError(t, err)
	assert.Equal(t, "Transfer(address,address,uint256)", sig)
	assert.Equal(t, "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef", sel.Hex())

	_, sig, err = SignatureSelector(KindFunction, "f((uint256 a, address b) c, bool [2] d)")
	require.NoError(t, err)
	assert.Equal(t, "f((uint256,address),bool[2])", sig)

	for _, text := range []string{"not a signature", "transfer", "", "transfer(address", "transfer(address,)"} {
		_, _, err = SignatureSelector(KindFunction, text)
		assert.ErrorIs(t, err, ErrMalformedType, text)
	}
}

func TestParseSelectorHex(t *testing.T) {
	sel, err := ParseSelectorHex("0xA9059CBB")
	require.NoError(t, err)
	assert.Equal(t, KindFunction, sel.Kind)
	assert.Equal(t, "0xa9059cbb", sel.Hex())

	sel, err = ParseSelectorHex("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")
	require.NoError(t, err)
	assert.Equal(t, KindEvent, sel.Kind)

	for _, bad := range []string{"", "a9059cbb", "0xa9059c", "0xzz059cbb", "0x" + strings.Repeat("00", 8)} {
		_, err := ParseSelectorHex(bad)
		assert.Error(t, err, bad)
	}
}
