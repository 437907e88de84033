package commodity

import (
	"context"
	"testing"

	"github.com/aretw0/tradecoin/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransformations(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.mint(t, "cashew", 10, "kg")
	before, _ := f.ledger.Commodity(id)

	require.NoError(t, f.ledger.AddTransformation(ctx, tHandler, id, "Roasting"))
	ev := f.last()
	assert.Equal(t, domain.EventCommodityTransformation, ev.Name)
	assert.Equal(t, "Roasting", ev.Label)
	assert.Equal(t, tHandler, ev.Actor)

	require.NoError(t, f.ledger.AddTransformationDecrease(ctx, tHandler, id, "Washing", 1))
	ev = f.last()
	assert.Equal(t, domain.EventCommodityTransformationDecrease, ev.Name)
	assert.Equal(t, uint64(1), ev.Amount)

	after, _ := f.ledger.Commodity(id)
	assert.Equal(t, uint64(9), after.Amount)
	assert.Equal(t, before.State, after.State)
	assert.Equal(t, before.Owner, after.Owner)
	assert.NotEqual(t, before.PropertiesHash, after.PropertiesHash)
	assert.Len(t, after.History, 3)

	assert.ErrorIs(t, f.ledger.AddTransformationDecrease(ctx, tHandler, id, "Spill", 10), domain.ErrAmountUnderflow)
}

func TestTransformations_Authorization(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.mint(t, "cashew", 10, "kg")

	assert.EqualError(t, f.ledger.AddTransformation(ctx, otherTHdl, id, "Roasting"), "Caller is not the current handler")
	assert.EqualError(t, f.ledger.AddTransformationDecrease(ctx, otherTHdl, id, "Washing", 1), "Caller is not the current handler")
	assert.EqualError(t, f.ledger.AddTransformation(ctx, iHandler, id, "Roasting"), "Restricted to Transformation Handlers or admins")
	assert.ErrorIs(t, f.ledger.AddTransformation(ctx, tHandler, 42, "Roasting"), domain.ErrNonexistentToken)
}

func TestAnnotations(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	id := f.mint(t, "cashew", 10, "kg")
	require.NoError(t, f.ledger.ChangeCurrentHandlerAndState(ctx, owner, id, iHandler, domain.StateConfirmed))

	require.NoError(t, f.ledger.AddInformation(ctx, iHandler, id, "Organic"))
	assert.Equal(t, domain.EventAddInformation, f.last().Name)
	require.NoError(t, f.ledger.CheckQuality(ctx, iHandler, id, "Grade A"))
	assert.Equal(t, domain.EventQualityCheckCommodity, f.last().Name)
	require.NoError(t, f.ledger.ConfirmLocation(ctx, iHandler, id, 52_379_189, -4_899_431, 1_000_000_000_000))
	ev := f.last()
	assert.Equal(t, domain.EventLocationOfCommodity, ev.Name)
	require.NotNil(t, ev.Location)
	assert.Equal(t, int64(-4_899_431), ev.Location.Longitude)

	c, _ := f.ledger.Commodity(id)
	assert.Equal(t, uint64(10), c.Amount)
	assert.Equal(t, domain.StateConfirmed, c.State)

	assert.EqualError(t, f.ledger.AddInformation(ctx, tHandler, id, "x"), "Restricted to Information Handlers or admins")
	assert.EqualError(t, f.ledger.CheckQuality(ctx, stranger, id, "x"), "Restricted to Information Handlers or admins")
	assert.EqualError(t, f.ledger.ConfirmLocation(ctx, stranger, id, 1, 1, 1), "Restricted to Information Handlers or admins")

	require.NoError(t, f.ledger.ChangeCurrentHandlerAndState(ctx, owner, id, tHandler, domain.StateConfirmed))
	assert.EqualError(t, f.ledger.AddInformation(ctx, iHandler, id, "x"), "Caller is not the current handler")
	assert.EqualError(t, f.ledger.CheckQuality(ctx, iHandler, id, "x"), "Caller is not the current handler")
	assert.EqualError(t, f.ledger.ConfirmLocation(ctx, iHandler, id, 1, 1, 1), "Caller is not the current handler")
}
