package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/tradecoin"
	"github.com/aretw0/tradecoin/pkg/adapters/sqlite"
	"github.com/aretw0/tradecoin/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func journeyLedger(t *testing.T) *tradecoin.Ledger {
	t.Helper()
	ctx := context.Background()
	l := tradecoin.New(tradecoin.WithAdmin("0xadmin"))
	require.NoError(t, l.Access(domain.RegistryCommodity).AddTokenizer(ctx, "0xadmin", "0xfarmer"))
	_, err := l.Tokenizer().Mint(ctx, "0xfarmer", "cashew", 10, "kg")
	require.NoError(t, err)
	require.NoError(t, l.Tokenizer().IncreaseAmount(ctx, "0xfarmer", 0, 5))
	return l
}

func TestPrintJourney(t *testing.T) {
	l := journeyLedger(t)
	j := LedgerJournal(l)
	ctx := context.Background()

	var md bytes.Buffer
	require.NoError(t, PrintJourney(ctx, &md, j, domain.LedgerTokenizer, 0, JourneyMarkdown))
	assert.Contains(t, md.String(), "# Journey of tokenizer #0")
	assert.Contains(t, md.String(), "| MintToken |")

	var plain bytes.Buffer
	require.NoError(t, PrintJourney(ctx, &plain, j, domain.LedgerTokenizer, 0, JourneyPlain))
	assert.Contains(t, plain.String(), "IncreaseCommodity tokenizer #0")

	var mermaid bytes.Buffer
	require.NoError(t, PrintJourney(ctx, &mermaid, j, domain.LedgerTokenizer, 0, JourneyMermaid))
	assert.Contains(t, mermaid.String(), "class tokenizer_0 current;")
}

func TestPrintJourney_FromSQLiteJournal(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer store.Close()

	l := tradecoin.New(tradecoin.WithAdmin("0xadmin"), tradecoin.WithStore(store))
	require.NoError(t, l.Access(domain.RegistryCommodity).AddTokenizer(ctx, "0xadmin", "0xfarmer"))
	_, err = l.Tokenizer().Mint(ctx, "0xfarmer", "cashew", 10, "kg")
	require.NoError(t, err)
	require.NoError(t, l.Tokenizer().DecreaseAmount(ctx, "0xfarmer", 0, 4))

	var fromStore, fromLedger bytes.Buffer
	require.NoError(t, PrintJourney(ctx, &fromStore, store, domain.LedgerTokenizer, 0, JourneyPlain))
	require.NoError(t, PrintJourney(ctx, &fromLedger, LedgerJournal(l), domain.LedgerTokenizer, 0, JourneyPlain))
	assert.Equal(t, fromLedger.String(), fromStore.String())
	assert.Contains(t, fromStore.String(), "DecreaseCommodity")
}
