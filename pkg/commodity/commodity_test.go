package commodity

import (
	"context"
	"testing"

	"github.com/aretw0/tradecoin/internal/state"
	"github.com/aretw0/tradecoin/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMintCommodity_FreeSale(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	claim, err := f.tokens.Mint(ctx, tokenizr, "cashew", 10, "kg")
	require.NoError(t, err)
	require.NoError(t, f.tokens.InitializeSale(ctx, tokenizr, owner, tHandler, claim, 0))

	id, err := f.ledger.MintCommodity(ctx, tHandler, claim)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), id)

	ev := f.last()
	assert.Equal(t, domain.EventMintCommodity, ev.Name)
	assert.Equal(t, []uint64{claim}, ev.RelatedIDs)
	assert.Equal(t, tHandler, ev.Actor)
	assert.Equal(t, uint64(0), ev.AssetID)
	assert.Equal(t, "cashew", ev.Label)
	assert.Equal(t, uint64(10), ev.Amount)
	assert.Equal(t, "kg", ev.Unit)

	c, err := f.ledger.Commodity(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), c.Amount)
	assert.Equal(t, domain.StateConfirmed, c.State)
	assert.Equal(t, tHandler, c.CurrentHandler)
	assert.Equal(t, owner, c.Owner)
	assert.NotEmpty(t, c.PropertiesHash)

	_, err = f.tokens.OwnerOf(claim)
	assert.EqualError(t, err, "owner query for nonexistent token")
}

func TestMintCommodity_Rejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	claim, _ := f.tokens.Mint(ctx, tokenizr, "cashew", 10, "kg")
	require.NoError(t, f.tokens.InitializeSale(ctx, tokenizr, owner, tHandler, claim, 1000))

	_, err := f.ledger.MintCommodity(ctx, iHandler, claim)
	assert.EqualError(t, err, "Restricted to Transformation Handlers or admins")

	_, err = f.ledger.MintCommodity(ctx, otherTHdl, claim)
	assert.EqualError(t, err, "Not a handler")

	_, err = f.ledger.MintCommodity(ctx, tHandler, claim)
	assert.EqualError(t, err, "Not payed for yet")

	_, err = f.ledger.MintCommodity(ctx, tHandler, 99)
	assert.ErrorIs(t, err, domain.ErrNoSaleOrder)

	require.NoError(t, f.tokens.Payment(ctx, owner, claim, 1000))
	id, err := f.ledger.MintCommodity(ctx, tHandler, claim)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), id, "rejected mints must not consume ids")

	amount, err := f.tokens.WithdrawPayment(ctx, tokenizr, claim)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), amount)
}

func TestChangeCurrentHandlerAndState(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.mint(t, "cashew", 10, "kg")

	require.NoError(t, f.ledger.ChangeCurrentHandlerAndState(ctx, owner, id, iHandler, domain.StateTransporting))
	ev := f.last()
	assert.Equal(t, domain.EventChangeStateAndHandler, ev.Name)
	assert.Equal(t, iHandler, ev.Handler)
	require.NotNil(t, ev.State)
	assert.Equal(t, domain.StateTransporting, *ev.State)

	// any order of states is accepted
	require.NoError(t, f.ledger.ChangeCurrentHandlerAndState(ctx, owner, id, iHandler, domain.StatePendingConfirmation))
	c, _ := f.ledger.Commodity(id)
	assert.Equal(t, domain.StatePendingConfirmation, c.State)
	assert.Equal(t, iHandler, c.CurrentHandler)

	assert.EqualError(t, f.ledger.ChangeCurrentHandlerAndState(ctx, tHandler, id, tHandler, domain.StateStored), "Not the owner")
	assert.ErrorIs(t, f.ledger.ChangeCurrentHandlerAndState(ctx, owner, id, tHandler, domain.CommodityState(9)), domain.ErrInvalidState)
}

func TestBurn(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.mint(t, "cashew", 10, "kg")

	assert.EqualError(t, f.ledger.Burn(ctx, stranger, id), "Not the owner")
	require.NoError(t, f.ledger.Burn(ctx, owner, id))
	assert.Equal(t, domain.EventCommodityOutOfChain, f.last().Name)

	_, err := f.ledger.OwnerOf(id)
	assert.EqualError(t, err, "owner query for nonexistent token")
}

func TestTransferFrom(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.mint(t, "cashew", 10, "kg")

	assert.ErrorIs(t, f.ledger.TransferFrom(ctx, stranger, owner, stranger, id), domain.ErrNotApproved)
	require.NoError(t, f.ledger.Approve(ctx, owner, id, stranger))
	assert.Equal(t, stranger, f.ledger.Approved(id))
	require.NoError(t, f.ledger.TransferFrom(ctx, stranger, owner, stranger, id))

	got, _ := f.ledger.OwnerOf(id)
	assert.Equal(t, stranger, got)
	assert.ErrorIs(t, f.ledger.Burn(ctx, owner, id), domain.ErrNotOwner)
}

func TestCustody_FreezesTheCommodity(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.mint(t, "cashew", 10, "kg")
	holder := domain.CompositionLedgerAddress
	require.NoError(t, f.exec.Execute(ctx, "take", owner, func(tx *state.Tx) error {
		_, err := TakeCustody(tx, id, owner, holder)
		return err
	}))
	before := f.exec.Snapshot()

	assert.ErrorIs(t, f.ledger.TransferFrom(ctx, holder, holder, stranger, id), domain.ErrCustodianCaller)
	assert.ErrorIs(t, f.ledger.Burn(ctx, holder, id), domain.ErrCustodianCaller)
	assert.ErrorIs(t, f.ledger.Approve(ctx, holder, id, stranger), domain.ErrCustodianCaller)
	assert.ErrorIs(t, f.ledger.ChangeCurrentHandlerAndState(ctx, holder, id, stranger, domain.StateStored), domain.ErrCustodianCaller)
	assert.ErrorIs(t, f.ledger.AddTransformationDecrease(ctx, tHandler, id, "drying", 1), domain.ErrInCustody)
	assert.ErrorIs(t, f.ledger.AddTransformation(ctx, tHandler, id, "drying"), domain.ErrInCustody)
	assert.Equal(t, domain.KindAuthorization, domain.KindOf(f.ledger.AddTransformation(ctx, tHandler, id, "drying")))
	assert.Equal(t, before, f.exec.Snapshot())

	require.NoError(t, f.exec.Execute(ctx, "release", owner, func(tx *state.Tx) error {
		return ReleaseCustody(tx, id, holder, owner)
	}))
	require.NoError(t, f.ledger.AddTransformationDecrease(ctx, tHandler, id, "drying", 1))
	c, _ := f.ledger.Commodity(id)
	assert.Equal(t, uint64(9), c.Amount)
}

func TestCustodianCannotBecomeHandlerOrOwner(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.mint(t, "cashew", 10, "kg")

	assert.ErrorIs(t, f.ledger.ChangeCurrentHandlerAndState(ctx, owner, id, domain.CommodityLedgerAddress, domain.StateStored), domain.ErrCustodianAddress)
	assert.ErrorIs(t, f.ledger.TransferFrom(ctx, owner, owner, domain.CompositionLedgerAddress, id), domain.ErrCustodianAddress)
	assert.ErrorIs(t, f.ledger.Approve(ctx, owner, id, domain.CompositionLedgerAddress), domain.ErrCustodianAddress)

	got, _ := f.ledger.OwnerOf(id)
	assert.Equal(t, owner, got)
}
