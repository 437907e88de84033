package dsl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Sale(t *testing.T) {
	b := New("sale").As("0xadmin")

	b.Add("grant").Do("access.add_role", Args{"role": "tokenizer", "account": "0xfarmer"})
	b.Do("tokenizer.mint", Args{"name": "cashew", "amount": 10, "unit": "kg"}).As("0xfarmer")
	b.As("0xbuyer").
		Add("early payment").
		Do("tokenizer.payment", Args{"id": 0, "value": 1}).
		Rejected("No sale initialized for token")

	sc, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, "sale", sc.Name)
	require.Len(t, sc.Steps, 3)

	assert.Equal(t, "grant", sc.Steps[0].Label())
	assert.Equal(t, "0xadmin", sc.Steps[0].Caller)
	assert.Equal(t, "tokenizer.mint", sc.Steps[1].Label())
	assert.Equal(t, "0xfarmer", sc.Steps[1].Caller)
	assert.Equal(t, "0xbuyer", sc.Steps[2].Caller)
	assert.Equal(t, "No sale initialized for token", sc.Steps[2].ExpectError)
}

func TestBuilder_MissingOp(t *testing.T) {
	b := New("broken")
	b.Add("nothing")
	_, err := b.Build()
	assert.ErrorContains(t, err, `scenario "broken": step 1: op is required`)
}

func TestParse_RoundTripsBuiltScenario(t *testing.T) {
	b := New("burn")
	b.Add("stranger").As("0xbuyer").Do("tokenizer.burn", Args{"id": 0}).Rejected("Not the owner")
	built, err := b.Build()
	require.NoError(t, err)

	data, err := built.Marshal()
	require.NoError(t, err)
	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, built, parsed)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ok.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: mint
steps:
  - op: tokenizer.mint
    caller: "0xfarmer"
    args: {name: cashew, amount: 10, unit: kg}
`), 0o644))

	sc, err := Load(path)
	require.NoError(t, err)
	require.Len(t, sc.Steps, 1)
	assert.Equal(t, 10, sc.Steps[0].Args["amount"])

	missing := filepath.Join(dir, "missing-op.yaml")
	require.NoError(t, os.WriteFile(missing, []byte("steps:\n  - caller: x\n"), 0o644))
	_, err = Load(missing)
	assert.ErrorContains(t, err, "op is required")

	_, err = Load(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}
