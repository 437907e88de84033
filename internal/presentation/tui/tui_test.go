package tui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/tradecoin/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestDescribe(t *testing.T) {
	stored := domain.StateStored
	paid := true
	e := domain.Event{
		Ledger: domain.LedgerCommodity, Name: domain.EventChangeStateAndHandler, AssetID: 4,
		Actor: "0xowner", Handler: "0xhandler", State: &stored,
	}
	assert.Equal(t, "commodity #4, by 0xowner, handler 0xhandler, state Stored", Describe(e))

	sale := domain.Event{
		Ledger: domain.LedgerTokenizer, Name: domain.EventInitializeSale, AssetID: 0,
		Actor: "0xseller", Counterparty: "0xbuyer", Amount: 100, Paid: &paid, Label: "fiat",
	}
	assert.Equal(t, `tokenizer #0, by 0xseller, to 0xbuyer, "fiat", 100, paid`, Describe(sale))

	role := domain.Event{Name: domain.EventRoleGranted, Role: domain.RoleTokenizer, Registry: domain.RegistryCommodity, Actor: "0xadmin"}
	assert.Equal(t, "tokenizer on commodity registry, by 0xadmin", Describe(role))
}

func TestEventLine_Ascii(t *testing.T) {
	line := EventLine(termenv.Ascii, domain.Event{Seq: 7, Ledger: domain.LedgerTokenizer, Name: domain.EventMintToken, Amount: 30, Unit: "kg"})
	assert.True(t, strings.HasPrefix(line, "#7    MintToken"))
	assert.Contains(t, line, "30 kg")
}

func TestJourneyMarkdown(t *testing.T) {
	assert.Contains(t, JourneyMarkdown(domain.LedgerCommodity, 9, nil), "_No events recorded._")

	md := JourneyMarkdown(domain.LedgerCommodity, 0, []domain.Event{
		{Seq: 3, Timestamp: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), Ledger: domain.LedgerCommodity,
			Name: domain.EventAddInformation, AssetID: 0, Label: "a|b"},
	})
	assert.Contains(t, md, "# Journey of commodity #0")
	assert.Contains(t, md, "| 3 | 2024-05-01 12:00:00 | AddInformation |")
	assert.Contains(t, md, `a\|b`)
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	assert.Greater(t, strings.Count(buf.String(), "\n"), 5)
}

func TestNewRenderer(t *testing.T) {
	out, err := NewRenderer()("# Title")
	assert.NoError(t, err)
	assert.Contains(t, out, "Title")
}
