package commodity

import (
	"context"
	"testing"

	"github.com/aretw0/tradecoin/internal/runtime"
	"github.com/aretw0/tradecoin/internal/state"
	"github.com/aretw0/tradecoin/pkg/access"
	"github.com/aretw0/tradecoin/pkg/domain"
	"github.com/aretw0/tradecoin/pkg/tokenizer"
	"github.com/stretchr/testify/require"
)

const (
	admin     domain.Address = "0xadmin"
	tokenizr  domain.Address = "0xtokenizer"
	owner     domain.Address = "0xowner"
	tHandler  domain.Address = "0xthandler"
	iHandler  domain.Address = "0xihandler"
	stranger  domain.Address = "0xstranger"
	otherTHdl domain.Address = "0xotherthandler"
)

type fixture struct {
	exec   *runtime.Executor
	tokens *tokenizer.Ledger
	ledger *Ledger
}

func setup(t *testing.T) *fixture {
	t.Helper()
	exec := runtime.New()
	err := exec.Execute(context.Background(), "bootstrap", admin, func(tx *state.Tx) error {
		r := domain.RegistryCommodity
		access.Grant(tx, r, domain.RoleAdmin, admin, admin)
		access.Grant(tx, r, domain.RoleTokenizer, tokenizr, admin)
		access.Grant(tx, r, domain.RoleTransformationHandler, tHandler, admin)
		access.Grant(tx, r, domain.RoleTransformationHandler, otherTHdl, admin)
		access.Grant(tx, r, domain.RoleInformationHandler, iHandler, admin)
		return nil
	})
	require.NoError(t, err)
	return &fixture{exec: exec, tokens: tokenizer.New(exec), ledger: New(exec)}
}

// mint runs the free three-party sale and returns the new commodity id.
func (f *fixture) mint(t *testing.T, name string, amount uint64, unit string) uint64 {
	t.Helper()
	ctx := context.Background()
	claim, err := f.tokens.Mint(ctx, tokenizr, name, amount, unit)
	require.NoError(t, err)
	require.NoError(t, f.tokens.InitializeSale(ctx, tokenizr, owner, tHandler, claim, 0))
	id, err := f.ledger.MintCommodity(ctx, tHandler, claim)
	require.NoError(t, err)
	return id
}

func (f *fixture) events() []domain.Event {
	return f.exec.Snapshot().Events
}

func (f *fixture) last() domain.Event {
	events := f.events()
	return events[len(events)-1]
}
