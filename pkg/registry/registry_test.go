package registry_test

import (
	"context"
	"testing"

	"github.com/aretw0/tradecoin"
	"github.com/aretw0/tradecoin/pkg/domain"
	"github.com/aretw0/tradecoin/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	admin  = domain.Address("0xadmin")
	farmer = domain.Address("0xfarmer")
	buyer  = domain.Address("0xbuyer")
)

func newRegistry(t *testing.T) (*registry.Registry, *tradecoin.Ledger) {
	t.Helper()
	l := tradecoin.New(tradecoin.WithAdmin(admin))
	return registry.ForLedger(l), l
}

func exec(t *testing.T, r *registry.Registry, op string, caller domain.Address, args map[string]any) any {
	t.Helper()
	out, err := r.Execute(context.Background(), op, caller, args)
	require.NoError(t, err, op)
	return out
}

func TestRegistry_SaleFlow(t *testing.T) {
	r, l := newRegistry(t)

	exec(t, r, "access.add_role", "0xADMIN", map[string]any{"role": "tokenizer", "account": "0xFarmer"})
	assert.True(t, l.Access(domain.RegistryCommodity).IsTokenizer(farmer), "addresses are normalized")

	minted := exec(t, r, "tokenizer.mint", farmer, map[string]any{"name": "cashew", "amount": 30, "unit": "kg"})
	assert.Equal(t, registry.IDResult{ID: 0}, minted)

	exec(t, r, "tokenizer.initialize_sale", farmer, map[string]any{
		"id": 0, "new_owner": buyer, "handler": buyer, "price_in_wei": float64(100),
	})
	exec(t, r, "tokenizer.payment", buyer, map[string]any{"id": 0, "value": 100})
	exec(t, r, "access.add_role", admin, map[string]any{"role": "transformation-handler", "account": buyer})

	commodity := exec(t, r, "commodity.mint", buyer, map[string]any{"claim_id": 0})
	assert.Equal(t, registry.IDResult{ID: 0}, commodity)

	exec(t, r, "commodity.change_handler_and_state", buyer, map[string]any{"id": 0, "handler": buyer, "state": "Stored"})
	got := exec(t, r, "commodity.get", "", map[string]any{"id": 0}).(domain.Commodity)
	assert.Equal(t, domain.StateStored, got.State)

	withdrawn := exec(t, r, "tokenizer.withdraw_payment", farmer, map[string]any{"id": 0})
	assert.Equal(t, registry.AmountResult{Amount: 100}, withdrawn)

	journey := exec(t, r, "ledger.journey", "", map[string]any{"ledger": "commodity", "id": 0}).([]domain.Event)
	assert.NotEmpty(t, journey)
}

func TestRegistry_LedgerErrorsPassThrough(t *testing.T) {
	r, _ := newRegistry(t)
	_, err := r.Execute(context.Background(), "tokenizer.mint", farmer, map[string]any{"name": "x", "amount": 1, "unit": "kg"})
	assert.ErrorIs(t, err, domain.ErrNotTokenizer)

	_, err = r.Execute(context.Background(), "commodity.get", "", map[string]any{"id": 9})
	assert.ErrorIs(t, err, domain.ErrNonexistentToken)
}

func TestRegistry_InvalidArguments(t *testing.T) {
	r, _ := newRegistry(t)
	ctx := context.Background()

	cases := map[string]map[string]any{
		"unknown key":  {"role": "admin", "account": "0x1", "extra": true},
		"unknown role": {"role": "janitor", "account": "0x1"},
		"wrong type":   {"role": "admin", "account": []int{1}},
		"bad registry": {"registry": "bank", "role": "admin", "account": "0x1"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := r.Execute(ctx, "access.add_role", admin, args)
			assert.ErrorIs(t, err, registry.ErrInvalidArguments)
		})
	}

	_, err := r.Execute(ctx, "commodity.change_handler_and_state", admin, map[string]any{"id": 0, "handler": "0x1", "state": "Melted"})
	assert.ErrorIs(t, err, registry.ErrInvalidArguments)
}

func TestRegistry_UnknownOperation(t *testing.T) {
	r, _ := newRegistry(t)
	_, err := r.Execute(context.Background(), "tokenizer.print_money", admin, nil)
	assert.ErrorIs(t, err, registry.ErrUnknownOperation)
}

func TestRegistry_Describe(t *testing.T) {
	r, _ := newRegistry(t)

	ops := r.List()
	require.NotEmpty(t, ops)
	for i := 1; i < len(ops); i++ {
		assert.Less(t, ops[i-1].Name, ops[i].Name)
	}

	sale, ok := r.Lookup("tokenizer.initialize_sale")
	require.True(t, ok)
	assert.True(t, sale.Mutating)
	byName := map[string]registry.Param{}
	for _, p := range sale.Params {
		byName[p.Name] = p
	}
	assert.Equal(t, "number", byName["id"].Type)
	assert.True(t, byName["new_owner"].Required)
	assert.False(t, byName["price_in_wei"].Required)

	state, _ := r.Lookup("commodity.change_handler_and_state")
	assert.Equal(t, "string", state.Params[2].Type)

	get, _ := r.Lookup("composition.members")
	assert.False(t, get.Mutating)
}
