package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/tradecoin"
	"github.com/aretw0/tradecoin/pkg/domain"
	"github.com/aretw0/tradecoin/pkg/dsl"
	"github.com/aretw0/tradecoin/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runFile(t *testing.T, path string) (Report, *tradecoin.Ledger, string) {
	t.Helper()
	sc, err := dsl.Load(path)
	require.NoError(t, err)

	l := tradecoin.New(tradecoin.WithAdmin("0xadmin"))
	var out bytes.Buffer
	report, err := RunScenario(context.Background(), registry.ForLedger(l), l, sc, &out)
	require.NoError(t, err)
	return report, l, out.String()
}

func TestRunScenario_CashewSale(t *testing.T) {
	report, l, out := runFile(t, filepath.Join("..", "..", "examples", "scenarios", "cashew-sale.yaml"))
	require.True(t, report.OK(), out)

	c, err := l.Commodities().Commodity(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(4), c.Amount)
	assert.Equal(t, domain.StateStored, c.State)

	_, ok := l.Tokenizer().Escrow(0)
	assert.False(t, ok, "payment was withdrawn")

	assert.Contains(t, out, "cashew sale")
	assert.Contains(t, out, "(rejected: Not payed for yet)")
	assert.Contains(t, out, "SplitCommodity")
	assert.Contains(t, out, "15 steps, 0 failed")
}

func TestRunScenario_Composition(t *testing.T) {
	report, l, out := runFile(t, filepath.Join("..", "..", "examples", "scenarios", "composition.yaml"))
	require.True(t, report.OK(), out)

	for id, amount := range map[uint64]uint64{0: 10, 1: 30, 2: 55} {
		owner, err := l.Commodities().OwnerOf(id)
		require.NoError(t, err)
		assert.Equal(t, domain.Address("0xfarmer"), owner)
		c, _ := l.Commodities().Commodity(id)
		assert.Equal(t, amount, c.Amount)
	}
	_, err := l.Compositions().Composition(0)
	assert.ErrorIs(t, err, domain.ErrNonexistentToken)
	assert.Contains(t, out, "-> [1,2]", "members after removing index 0")
}

func TestRunScenario_ReportsMismatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
steps:
  - op: tokenizer.mint
    caller: "0xnobody"
    args: {name: x, amount: 1, unit: kg}
  - op: tokenizer.mint
    caller: "0xadmin"
    args: {name: x, amount: 1, unit: kg}
    expect_error: Restricted to Tokenizers and admin
  - op: tokenizer.mint
    caller: "0xadmin"
    args: {name: x, amount: 1, unit: kg}
`), 0o644))

	report, _, out := runFile(t, path)
	assert.False(t, report.OK())
	assert.Equal(t, 2, report.Failed)
	require.Len(t, report.Results, 3)
	assert.False(t, report.Results[0].Passed)
	assert.False(t, report.Results[1].Passed)
	assert.True(t, report.Results[2].Passed)
	assert.Contains(t, out, "unexpected error: Restricted to Tokenizers and admin")
	assert.Contains(t, out, `expected error "Restricted to Tokenizers and admin"`)
	assert.True(t, strings.HasSuffix(out, "3 steps, 2 failed\n"))
}

func TestRunScenario_Canceled(t *testing.T) {
	l := tradecoin.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := RunScenario(ctx, registry.ForLedger(l), l, dsl.Scenario{Steps: []dsl.Step{{Op: "ledger.events"}}}, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunScenario_Built(t *testing.T) {
	b := dsl.New("built").As("0xadmin")
	b.Add("grant").Do("access.add_role", dsl.Args{"role": "tokenizer", "account": "0xfarmer"})
	b.Do("tokenizer.mint", dsl.Args{"name": "cashew", "amount": 10, "unit": "kg"}).As("0xfarmer")
	b.Add("stranger cannot burn").As("0xbuyer").Do("tokenizer.burn", dsl.Args{"id": 0}).Rejected("Not the owner")
	sc, err := b.Build()
	require.NoError(t, err)

	l := tradecoin.New(tradecoin.WithAdmin("0xadmin"))
	var out bytes.Buffer
	report, err := RunScenario(context.Background(), registry.ForLedger(l), l, sc, &out)
	require.NoError(t, err)
	assert.True(t, report.OK(), out.String())
	assert.Contains(t, out.String(), "grant")
	assert.Contains(t, out.String(), "(rejected: Not the owner)")
}
