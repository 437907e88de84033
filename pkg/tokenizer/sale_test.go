package tokenizer

import (
	"context"
	"testing"

	"github.com/aretw0/tradecoin/internal/runtime"
	"github.com/aretw0/tradecoin/internal/state"
	"github.com/aretw0/tradecoin/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redeem(t *testing.T, exec *runtime.Executor, id uint64, caller domain.Address) error {
	t.Helper()
	return exec.Execute(context.Background(), "redeem", caller, func(tx *state.Tx) error {
		_, _, err := Redeem(tx, id, caller)
		return err
	})
}

func TestSale_FreeTransferIsPaid(t *testing.T) {
	exec, l := setup(t)
	ctx := context.Background()
	id, _ := l.Mint(ctx, tokenizer, "cashew", 10, "kg")

	require.NoError(t, l.InitializeSale(ctx, tokenizer, owner, handler, id, 0))

	ev := lastEvent(exec)
	assert.Equal(t, domain.EventInitializeSale, ev.Name)
	assert.Equal(t, tokenizer, ev.Actor)
	assert.Equal(t, owner, ev.Counterparty)
	require.NotNil(t, ev.Paid)
	assert.True(t, *ev.Paid)

	order, err := l.SaleOrder(id)
	require.NoError(t, err)
	assert.Equal(t, domain.SaleOrder{ClaimID: id, Seller: tokenizer, NewOwner: owner, Handler: handler, IsPaid: true}, order)

	got, _ := l.OwnerOf(id)
	assert.Equal(t, domain.CommodityLedgerAddress, got)

	assert.EqualError(t, l.Payment(ctx, owner, id, 0), "Token is already paid for")
}

func TestSale_Authorization(t *testing.T) {
	_, l := setup(t)
	ctx := context.Background()
	id, _ := l.Mint(ctx, tokenizer, "cashew", 10, "kg")

	err := l.InitializeSale(ctx, handler, owner, handler, id, 0)
	assert.EqualError(t, err, "Restricted to Tokenizers and admin")

	err = l.InitializeSale(ctx, admin, owner, handler, id, 0)
	assert.EqualError(t, err, "Not the owner")

	err = l.InitializeSale(ctx, tokenizer, domain.ZeroAddress, handler, id, 0)
	assert.ErrorIs(t, err, domain.ErrZeroAddress)

	require.NoError(t, l.InitializeSale(ctx, tokenizer, owner, handler, id, 0))
	err = l.InitializeSale(ctx, tokenizer, owner, handler, id, 0)
	assert.ErrorIs(t, err, domain.ErrNotOwner, "the claim is in escrow")
}

func TestSale_PaidFlow(t *testing.T) {
	exec, l := setup(t)
	ctx := context.Background()
	id, _ := l.Mint(ctx, tokenizer, "cashew", 10, "kg")

	assert.ErrorIs(t, l.Payment(ctx, owner, id, 1000), domain.ErrNoSaleOrder)

	require.NoError(t, l.InitializeSale(ctx, tokenizer, owner, handler, id, 1000))
	order, _ := l.SaleOrder(id)
	assert.False(t, order.IsPaid)

	assert.EqualError(t, redeem(t, exec, id, handler), "Not payed for yet")
	assert.ErrorIs(t, l.Payment(ctx, stranger, id, 1000), domain.ErrNotNewOwner)
	assert.EqualError(t, l.Payment(ctx, owner, id, 500), "Not enough Ether")

	require.NoError(t, l.Payment(ctx, owner, id, 1200))
	ev := lastEvent(exec)
	assert.Equal(t, domain.EventPaymentOfToken, ev.Name)
	assert.Equal(t, owner, ev.Actor)
	assert.Equal(t, uint64(1200), ev.Amount)

	assert.ErrorIs(t, l.Payment(ctx, owner, id, 1000), domain.ErrAlreadyPaid)

	_, err := l.WithdrawPayment(ctx, tokenizer, id)
	assert.EqualError(t, err, "Commodity not minted yet")

	assert.ErrorIs(t, redeem(t, exec, id, stranger), domain.ErrNotNamedHandler)
	require.NoError(t, redeem(t, exec, id, handler))

	_, err = l.Claim(id)
	assert.ErrorIs(t, err, domain.ErrNonexistentToken)
	_, err = l.SaleOrder(id)
	assert.ErrorIs(t, err, domain.ErrNoSaleOrder)

	_, err = l.WithdrawPayment(ctx, owner, id)
	assert.ErrorIs(t, err, domain.ErrNotSeller)

	amount, err := l.WithdrawPayment(ctx, tokenizer, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1200), amount)

	_, err = l.WithdrawPayment(ctx, tokenizer, id)
	assert.ErrorIs(t, err, domain.ErrNothingToWithdraw)
}

func TestSale_Fiat(t *testing.T) {
	exec, l := setup(t)
	ctx := context.Background()
	id, _ := l.Mint(ctx, tokenizer, "olive oil", 5, "l")

	require.NoError(t, l.InitializeSaleInFiat(ctx, tokenizer, owner, handler, id))
	order, err := l.SaleOrder(id)
	require.NoError(t, err)
	assert.True(t, order.IsPaid)
	assert.True(t, order.Fiat)
	assert.Equal(t, "fiat", lastEvent(exec).Label)

	require.NoError(t, redeem(t, exec, id, handler))
	_, ok := l.Escrow(id)
	assert.False(t, ok)
	_, err = l.WithdrawPayment(ctx, tokenizer, id)
	assert.ErrorIs(t, err, domain.ErrNothingToWithdraw)
}

func TestSale_RejectedOperationHasNoEffect(t *testing.T) {
	exec, l := setup(t)
	ctx := context.Background()
	id, _ := l.Mint(ctx, tokenizer, "cashew", 10, "kg")
	require.NoError(t, l.InitializeSale(ctx, tokenizer, owner, handler, id, 1000))
	before := exec.Snapshot()

	require.Error(t, l.Payment(ctx, owner, id, 10))
	assert.Equal(t, before, exec.Snapshot())
}

func TestSale_EscrowedClaimIsOutOfReach(t *testing.T) {
	exec, l := setup(t)
	ctx := context.Background()
	id, _ := l.Mint(ctx, tokenizer, "cashew", 10, "kg")
	require.NoError(t, l.InitializeSale(ctx, tokenizer, owner, handler, id, 100))
	before := exec.Snapshot()

	custodian := domain.CommodityLedgerAddress
	assert.ErrorIs(t, l.Burn(ctx, custodian, id), domain.ErrCustodianCaller)
	assert.ErrorIs(t, l.TransferFrom(ctx, custodian, custodian, stranger, id), domain.ErrCustodianCaller)
	assert.ErrorIs(t, l.Approve(ctx, custodian, id, stranger), domain.ErrCustodianCaller)
	assert.ErrorIs(t, l.DecreaseAmount(ctx, custodian, id, 1), domain.ErrCustodianCaller)
	assert.Equal(t, before, exec.Snapshot())

	require.NoError(t, l.Payment(ctx, owner, id, 100))
	require.NoError(t, redeem(t, exec, id, handler))
}

func TestSale_CustodianParties(t *testing.T) {
	_, l := setup(t)
	ctx := context.Background()
	id, _ := l.Mint(ctx, tokenizer, "cashew", 10, "kg")

	assert.ErrorIs(t, l.InitializeSale(ctx, tokenizer, domain.CompositionLedgerAddress, handler, id, 0), domain.ErrCustodianAddress)
	assert.ErrorIs(t, l.InitializeSaleInFiat(ctx, tokenizer, owner, domain.CommodityLedgerAddress, id), domain.ErrCustodianAddress)
	assert.ErrorIs(t, l.TransferFrom(ctx, tokenizer, tokenizer, domain.CommodityLedgerAddress, id), domain.ErrCustodianAddress)

	got, _ := l.OwnerOf(id)
	assert.Equal(t, tokenizer, got)
}
