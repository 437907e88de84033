// Package commodity implements the ledger of custody-bearing commodities: minting
// from a paid sale, the handler-attributed lifecycle, split, batch and burn.
package commodity

import (
	"context"
	"fmt"

	"github.com/aretw0/tradecoin/internal/custody"
	"github.com/aretw0/tradecoin/internal/runtime"
	"github.com/aretw0/tradecoin/internal/state"
	"github.com/aretw0/tradecoin/pkg/access"
	"github.com/aretw0/tradecoin/pkg/domain"
	"github.com/aretw0/tradecoin/pkg/tokenizer"
)

const (
	ledger   = domain.LedgerCommodity
	registry = domain.RegistryCommodity
)

// Ledger is the commodity ledger.
type Ledger struct {
	exec *runtime.Executor
}

// New binds the ledger to its executor.
func New(exec *runtime.Executor) *Ledger {
	return &Ledger{exec: exec}
}

// MintCommodity converts a paid claim into a commodity. The caller must be a
// transformation handler and the handler named in the sale order. The claim is
// destroyed in the same step.
func (l *Ledger) MintCommodity(ctx context.Context, caller domain.Address, claimID uint64) (uint64, error) {
	var id uint64
	err := l.exec.Execute(ctx, "mint_commodity", caller, func(tx *state.Tx) error {
		if err := access.Require(tx, registry, domain.RoleTransformationHandler, caller); err != nil {
			return err
		}
		claim, order, err := tokenizer.Redeem(tx, claimID, caller)
		if err != nil {
			return err
		}

		id = tx.NextID(ledger)
		c := domain.Commodity{
			ID:             id,
			Name:           claim.CommodityName,
			Amount:         claim.Amount,
			Unit:           claim.Unit,
			State:          domain.StateConfirmed,
			CurrentHandler: caller,
			Owner:          order.NewOwner,
		}
		c.Record(domain.HistoryEntry{Kind: domain.HistoryOrigin, Text: claim.CommodityName + "\x00" + claim.Unit})
		tx.PutCommodity(c)

		tx.Emit(domain.Event{
			Ledger:       ledger,
			Name:         domain.EventMintCommodity,
			AssetID:      id,
			Actor:        caller,
			Counterparty: order.NewOwner,
			RelatedIDs:   []uint64{claimID},
			Label:        claim.CommodityName,
			Amount:       claim.Amount,
			Unit:         claim.Unit,
		})
		return nil
	})
	return id, err
}

// ChangeCurrentHandlerAndState hands the commodity to a new handler in a new state.
// Only the owner may do this; any valid state is accepted in any order.
func (l *Ledger) ChangeCurrentHandlerAndState(ctx context.Context, caller domain.Address, id uint64, handler domain.Address, st domain.CommodityState) error {
	return l.exec.Execute(ctx, "change_handler_and_state", caller, func(tx *state.Tx) error {
		c, err := owned(tx, id, caller)
		if err != nil {
			return err
		}
		if !st.Valid() {
			return domain.ErrInvalidState
		}
		if err := custody.CheckParty(handler); err != nil {
			return err
		}
		c.CurrentHandler = handler
		c.State = st
		tx.PutCommodity(c)
		tx.Emit(domain.Event{
			Ledger:  ledger,
			Name:    domain.EventChangeStateAndHandler,
			AssetID: id,
			Actor:   caller,
			Handler: handler,
			State:   &st,
		})
		return nil
	})
}

// Split replaces a commodity by one new commodity per partition. Partitions must be
// non-zero and add up to the source amount; the children inherit the source's
// owner, handler, state and history. It returns the new ids in partition order.
func (l *Ledger) Split(ctx context.Context, caller domain.Address, id uint64, partitions []uint64) ([]uint64, error) {
	var ids []uint64
	err := l.exec.Execute(ctx, "split_commodity", caller, func(tx *state.Tx) error {
		src, err := owned(tx, id, caller)
		if err != nil {
			return err
		}
		if len(partitions) <= 1 {
			return domain.ErrSplitTooShort
		}
		var sum uint64
		for _, p := range partitions {
			if p == 0 {
				return domain.ErrZeroPartition
			}
			if sum+p < sum {
				return domain.ErrAmountsDontAddUp
			}
			sum += p
		}
		if sum != src.Amount {
			return domain.ErrAmountsDontAddUp
		}

		tx.DeleteCommodity(id)
		ids = make([]uint64, len(partitions))
		for i, p := range partitions {
			child := src.Clone()
			child.ID = tx.NextID(ledger)
			child.Amount = p
			tx.PutCommodity(child)
			ids[i] = child.ID
		}
		tx.Emit(domain.Event{
			Ledger:     ledger,
			Name:       domain.EventSplitCommodity,
			AssetID:    id,
			Actor:      caller,
			RelatedIDs: ids,
		})
		return nil
	})
	return ids, err
}

// Batch merges commodities with identical properties into one whose amount is the
// sum of theirs. The caller must own every input; the result inherits the first
// input's handler, state and history.
func (l *Ledger) Batch(ctx context.Context, caller domain.Address, ids []uint64) (uint64, error) {
	var id uint64
	err := l.exec.Execute(ctx, "batch_commodities", caller, func(tx *state.Tx) error {
		if len(ids) <= 1 {
			return domain.ErrBatchTooShort
		}
		inputs := make([]domain.Commodity, 0, len(ids))
		seen := make(map[uint64]struct{}, len(ids))
		for _, in := range ids {
			if _, dup := seen[in]; dup {
				return domain.ErrDuplicateID
			}
			seen[in] = struct{}{}
			c, err := owned(tx, in, caller)
			if err != nil {
				return err
			}
			inputs = append(inputs, c)
		}

		merged := inputs[0].Clone()
		merged.Amount = 0
		for _, c := range inputs {
			if !domain.PropertiesHash(c.PropertiesHash).Equal(merged.PropertiesHash) {
				return domain.ErrPropertiesMismatch
			}
			if merged.Amount+c.Amount < merged.Amount {
				return domain.ErrAmountOverflow
			}
			merged.Amount += c.Amount
		}

		for _, in := range ids {
			tx.DeleteCommodity(in)
		}
		merged.ID = tx.NextID(ledger)
		id = merged.ID
		tx.PutCommodity(merged)
		tx.Emit(domain.Event{
			Ledger:     ledger,
			Name:       domain.EventBatchCommodities,
			AssetID:    id,
			Actor:      caller,
			RelatedIDs: append([]uint64(nil), ids...),
			Amount:     merged.Amount,
		})
		return nil
	})
	return id, err
}

// Burn removes a commodity from the chain for good.
func (l *Ledger) Burn(ctx context.Context, caller domain.Address, id uint64) error {
	return l.exec.Execute(ctx, "burn_commodity", caller, func(tx *state.Tx) error {
		if _, err := owned(tx, id, caller); err != nil {
			return err
		}
		tx.DeleteCommodity(id)
		tx.Emit(domain.Event{Ledger: ledger, Name: domain.EventCommodityOutOfChain, AssetID: id, Actor: caller})
		return nil
	})
}

// Approve lets `to` transfer the commodity.
func (l *Ledger) Approve(ctx context.Context, caller domain.Address, id uint64, to domain.Address) error {
	return l.exec.Execute(ctx, "approve_commodity", caller, func(tx *state.Tx) error {
		c, ok := tx.Commodity(id)
		if !ok {
			return domain.ErrNonexistentToken
		}
		return custody.Approve(tx, ledger, id, c.Owner, caller, to)
	})
}

// TransferFrom moves a commodity from its owner to `to`; the caller must be the owner or approved.
func (l *Ledger) TransferFrom(ctx context.Context, caller, from, to domain.Address, id uint64) error {
	return l.exec.Execute(ctx, "transfer_commodity", caller, func(tx *state.Tx) error {
		c, ok := tx.Commodity(id)
		if !ok {
			return domain.ErrNonexistentToken
		}
		if err := custody.CheckTransfer(tx, ledger, id, c.Owner, caller, from, to); err != nil {
			return err
		}
		c.Owner = to
		tx.PutCommodity(c)
		custody.Move(tx, ledger, id, from, to)
		return nil
	})
}

// Commodity returns a live commodity.
func (l *Ledger) Commodity(id uint64) (domain.Commodity, error) {
	var c domain.Commodity
	var ok bool
	l.exec.View(func(w *state.World) { c, ok = w.Commodity(id) })
	if !ok {
		return domain.Commodity{}, domain.ErrNonexistentToken
	}
	return c, nil
}

// OwnerOf returns the owner of a live commodity.
func (l *Ledger) OwnerOf(id uint64) (domain.Address, error) {
	c, err := l.Commodity(id)
	return c.Owner, err
}

// Approved returns the address approved to transfer a commodity, if any.
func (l *Ledger) Approved(id uint64) domain.Address {
	var a domain.Address
	l.exec.View(func(w *state.World) { a = w.Approved(ledger, id) })
	return a
}

func owned(tx *state.Tx, id uint64, caller domain.Address) (domain.Commodity, error) {
	c, ok := tx.Commodity(id)
	if !ok {
		return domain.Commodity{}, domain.ErrNonexistentToken
	}
	if c.Owner != caller {
		return domain.Commodity{}, domain.ErrNotOwner
	}
	return c, nil
}

// TakeCustody moves a commodity owned by from into the custody of holder. It runs
// inside the caller's transaction.
func TakeCustody(tx *state.Tx, id uint64, from, holder domain.Address) (domain.Commodity, error) {
	c, ok := tx.Commodity(id)
	if !ok {
		return domain.Commodity{}, domain.ErrNonexistentToken
	}
	if c.Owner != from {
		return domain.Commodity{}, domain.ErrIncorrectOwner
	}
	c.Owner = holder
	tx.PutCommodity(c)
	custody.Move(tx, ledger, id, from, holder)
	return c, nil
}

// ReleaseCustody hands a commodity held by holder back to `to`.
func ReleaseCustody(tx *state.Tx, id uint64, holder, to domain.Address) error {
	c, ok := tx.Commodity(id)
	if !ok {
		return domain.ErrNonexistentToken
	}
	if c.Owner != holder {
		return fmt.Errorf("commodity %d is not held by %s: %w", id, holder, domain.ErrIncorrectOwner)
	}
	c.Owner = to
	tx.PutCommodity(c)
	custody.Move(tx, ledger, id, holder, to)
	return nil
}

// Destroy burns a commodity held by holder.
func Destroy(tx *state.Tx, id uint64, holder domain.Address) error {
	c, ok := tx.Commodity(id)
	if !ok {
		return domain.ErrNonexistentToken
	}
	if c.Owner != holder {
		return fmt.Errorf("commodity %d is not held by %s: %w", id, holder, domain.ErrIncorrectOwner)
	}
	tx.DeleteCommodity(id)
	tx.Emit(domain.Event{Ledger: ledger, Name: domain.EventCommodityOutOfChain, AssetID: id, Actor: holder})
	return nil
}
