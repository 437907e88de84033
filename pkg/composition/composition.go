// Package composition implements the ledger of compositions: aggregates of stored
// commodities held in the composition ledger's custody until decomposed or burnt.
package composition

import (
	"context"
	"slices"

	"github.com/aretw0/tradecoin/internal/custody"
	"github.com/aretw0/tradecoin/internal/runtime"
	"github.com/aretw0/tradecoin/internal/state"
	"github.com/aretw0/tradecoin/pkg/commodity"
	"github.com/aretw0/tradecoin/pkg/domain"
)

const (
	ledger   = domain.LedgerComposition
	registry = domain.RegistryComposition
	holder   = domain.CompositionLedgerAddress
)

// Ledger is the composition ledger. Role checks use the composition registry.
type Ledger struct {
	exec *runtime.Executor
}

// New binds the ledger to its executor.
func New(exec *runtime.Executor) *Ledger {
	return &Ledger{exec: exec}
}

// Create composes at least two stored commodities owned by the caller. The members
// move into the ledger's custody; the composition starts pending confirmation with
// the given handler.
func (l *Ledger) Create(ctx context.Context, caller domain.Address, name string, ids []uint64, handler domain.Address) (uint64, error) {
	var id uint64
	err := l.exec.Execute(ctx, "create_composition", caller, func(tx *state.Tx) error {
		if len(ids) < 2 {
			return domain.ErrCompositionTooFew
		}
		if err := custody.CheckParty(handler); err != nil {
			return err
		}
		var amount uint64
		for i, member := range ids {
			if slices.Contains(ids[:i], member) {
				return domain.ErrDuplicateID
			}
			c, err := takeMember(tx, member, caller)
			if err != nil {
				return err
			}
			if amount+c.Amount < amount {
				return domain.ErrAmountOverflow
			}
			amount += c.Amount
		}

		id = tx.NextID(ledger)
		comp := domain.Composition{
			ID:             id,
			Name:           name,
			Amount:         amount,
			State:          domain.StatePendingConfirmation,
			CurrentHandler: handler,
			Owner:          caller,
			Members:        slices.Clone(ids),
		}
		comp.Record(domain.HistoryEntry{Kind: domain.HistoryOrigin, Text: name})
		tx.PutComposition(comp)
		tx.Emit(domain.Event{
			Ledger:     ledger,
			Name:       domain.EventMintComposition,
			AssetID:    id,
			Actor:      caller,
			Handler:    handler,
			RelatedIDs: slices.Clone(ids),
			Label:      name,
			Amount:     amount,
		})
		return nil
	})
	return id, err
}

// Append adds a stored commodity owned by the caller to a composition the caller owns.
func (l *Ledger) Append(ctx context.Context, caller domain.Address, compID, commodityID uint64) error {
	return l.exec.Execute(ctx, "append_commodity", caller, func(tx *state.Tx) error {
		comp, err := owned(tx, compID, caller)
		if err != nil {
			return err
		}
		if _, err := takeMember(tx, commodityID, caller); err != nil {
			return err
		}
		comp.Members = append(comp.Members, commodityID)
		if comp.Amount, err = amountOf(tx, comp); err != nil {
			return err
		}
		tx.PutComposition(comp)
		tx.Emit(domain.Event{
			Ledger:     ledger,
			Name:       domain.EventAppendCommodityToComposition,
			AssetID:    compID,
			Actor:      caller,
			RelatedIDs: []uint64{commodityID},
			Amount:     comp.Amount,
		})
		return nil
	})
}

// Remove takes the member at index out of a composition and returns it to the owner.
// At least two members must remain; the order of the others is preserved.
func (l *Ledger) Remove(ctx context.Context, caller domain.Address, compID uint64, index int) error {
	return l.exec.Execute(ctx, "remove_commodity", caller, func(tx *state.Tx) error {
		comp, err := owned(tx, compID, caller)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(comp.Members) {
			return domain.ErrIndexOutOfRange
		}
		if len(comp.Members) <= 2 {
			return domain.ErrCompositionTooSmall
		}
		member := comp.Members[index]
		if err := commodity.ReleaseCustody(tx, member, holder, caller); err != nil {
			return err
		}
		comp.Members = slices.Delete(comp.Members, index, index+1)
		if comp.Amount, err = amountOf(tx, comp); err != nil {
			return err
		}
		tx.PutComposition(comp)
		tx.Emit(domain.Event{
			Ledger:     ledger,
			Name:       domain.EventRemoveCommodityFromComposition,
			AssetID:    compID,
			Actor:      caller,
			RelatedIDs: []uint64{member},
			Amount:     comp.Amount,
		})
		return nil
	})
}

// Decompose dissolves a composition and hands every member back to the caller with
// its own history intact.
func (l *Ledger) Decompose(ctx context.Context, caller domain.Address, id uint64) error {
	return l.exec.Execute(ctx, "decomposition", caller, func(tx *state.Tx) error {
		comp, err := owned(tx, id, caller)
		if err != nil {
			return err
		}
		for _, member := range comp.Members {
			if err := commodity.ReleaseCustody(tx, member, holder, caller); err != nil {
				return err
			}
		}
		tx.DeleteComposition(id)
		tx.Emit(domain.Event{
			Ledger:     ledger,
			Name:       domain.EventDecomposition,
			AssetID:    id,
			Actor:      caller,
			RelatedIDs: slices.Clone(comp.Members),
		})
		return nil
	})
}

// Burn destroys a composition together with every member commodity.
func (l *Ledger) Burn(ctx context.Context, caller domain.Address, id uint64) error {
	return l.exec.Execute(ctx, "burn_composition", caller, func(tx *state.Tx) error {
		comp, err := owned(tx, id, caller)
		if err != nil {
			return err
		}
		for _, member := range comp.Members {
			if err := commodity.Destroy(tx, member, holder); err != nil {
				return err
			}
		}
		tx.DeleteComposition(id)
		tx.Emit(domain.Event{
			Ledger:     ledger,
			Name:       domain.EventBurnComposition,
			AssetID:    id,
			Actor:      caller,
			RelatedIDs: slices.Clone(comp.Members),
		})
		return nil
	})
}

// ChangeCurrentHandlerAndState hands the composition to a new handler in a new state.
func (l *Ledger) ChangeCurrentHandlerAndState(ctx context.Context, caller domain.Address, id uint64, handler domain.Address, st domain.CommodityState) error {
	return l.exec.Execute(ctx, "change_composition_handler_and_state", caller, func(tx *state.Tx) error {
		comp, err := owned(tx, id, caller)
		if err != nil {
			return err
		}
		if !st.Valid() {
			return domain.ErrInvalidState
		}
		if err := custody.CheckParty(handler); err != nil {
			return err
		}
		comp.CurrentHandler = handler
		comp.State = st
		tx.PutComposition(comp)
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

// Approve lets `to` transfer the composition.
func (l *Ledger) Approve(ctx context.Context, caller domain.Address, id uint64, to domain.Address) error {
	return l.exec.Execute(ctx, "approve_composition", caller, func(tx *state.Tx) error {
		comp, ok := tx.Composition(id)
		if !ok {
			return domain.ErrNonexistentToken
		}
		return custody.Approve(tx, ledger, id, comp.Owner, caller, to)
	})
}

// TransferFrom moves a composition, members included, from its owner to `to`.
func (l *Ledger) TransferFrom(ctx context.Context, caller, from, to domain.Address, id uint64) error {
	return l.exec.Execute(ctx, "transfer_composition", caller, func(tx *state.Tx) error {
		comp, ok := tx.Composition(id)
		if !ok {
			return domain.ErrNonexistentToken
		}
		if err := custody.CheckTransfer(tx, ledger, id, comp.Owner, caller, from, to); err != nil {
			return err
		}
		comp.Owner = to
		tx.PutComposition(comp)
		custody.Move(tx, ledger, id, from, to)
		return nil
	})
}

// Composition returns a live composition.
func (l *Ledger) Composition(id uint64) (domain.Composition, error) {
	var c domain.Composition
	var ok bool
	l.exec.View(func(w *state.World) { c, ok = w.Composition(id) })
	if !ok {
		return domain.Composition{}, domain.ErrNonexistentToken
	}
	return c, nil
}

// OwnerOf returns the owner of a live composition.
func (l *Ledger) OwnerOf(id uint64) (domain.Address, error) {
	c, err := l.Composition(id)
	return c.Owner, err
}

// Members returns the commodity ids of a composition in order.
func (l *Ledger) Members(id uint64) ([]uint64, error) {
	c, err := l.Composition(id)
	return c.Members, err
}

// Approved returns the address approved to transfer a composition, if any.
func (l *Ledger) Approved(id uint64) domain.Address {
	var a domain.Address
	l.exec.View(func(w *state.World) { a = w.Approved(ledger, id) })
	return a
}

func owned(tx *state.Tx, id uint64, caller domain.Address) (domain.Composition, error) {
	c, ok := tx.Composition(id)
	if !ok {
		return domain.Composition{}, domain.ErrNonexistentToken
	}
	if c.Owner != caller {
		return domain.Composition{}, domain.ErrNotOwner
	}
	return c, nil
}

// takeMember moves a commodity owned by caller into custody. Only stored commodities
// can join a composition.
func takeMember(tx *state.Tx, id uint64, caller domain.Address) (domain.Commodity, error) {
	c, err := commodity.TakeCustody(tx, id, caller, holder)
	if err != nil {
		return domain.Commodity{}, err
	}
	if c.State != domain.StateStored {
		return domain.Commodity{}, domain.ErrNotStored
	}
	return c, nil
}

// amountOf re-derives the amount of a composition: the sum of its members less the
// decreases recorded on the composition itself.
func amountOf(tx *state.Tx, comp domain.Composition) (uint64, error) {
	var sum uint64
	for _, id := range comp.Members {
		c, ok := tx.Commodity(id)
		if !ok {
			return 0, domain.ErrNonexistentToken
		}
		if sum+c.Amount < sum {
			return 0, domain.ErrAmountOverflow
		}
		sum += c.Amount
	}
	var lost uint64
	for _, h := range comp.History {
		lost += h.Decrease
	}
	if lost > sum {
		return 0, domain.ErrAmountUnderflow
	}
	return sum - lost, nil
}
