// Package tokenizer implements the ledger of raw commodity claims and the
// three-party escrowed sale that hands a claim over to the commodity ledger.
package tokenizer

import (
	"context"

	"github.com/aretw0/tradecoin/internal/custody"
	"github.com/aretw0/tradecoin/internal/runtime"
	"github.com/aretw0/tradecoin/internal/state"
	"github.com/aretw0/tradecoin/pkg/access"
	"github.com/aretw0/tradecoin/pkg/domain"
)

const ledger = domain.LedgerTokenizer

// Ledger is the tokenizer ledger. Role checks use the commodity registry.
type Ledger struct {
	exec *runtime.Executor
}

// New binds the ledger to its executor.
func New(exec *runtime.Executor) *Ledger {
	return &Ledger{exec: exec}
}

// Mint creates a claim owned by the caller, who must be a tokenizer.
func (l *Ledger) Mint(ctx context.Context, caller domain.Address, name string, amount uint64, unit string) (uint64, error) {
	var id uint64
	err := l.exec.Execute(ctx, "mint_token", caller, func(tx *state.Tx) error {
		if err := access.Require(tx, domain.RegistryCommodity, domain.RoleTokenizer, caller); err != nil {
			return err
		}
		id = tx.NextID(ledger)
		tx.PutClaim(domain.Claim{ID: id, CommodityName: name, Amount: amount, Unit: unit, Owner: caller})
		tx.Emit(domain.Event{
			Ledger:  ledger,
			Name:    domain.EventMintToken,
			AssetID: id,
			Actor:   caller,
			Label:   name,
			Amount:  amount,
			Unit:    unit,
		})
		return nil
	})
	return id, err
}

// IncreaseAmount adds delta to a claim owned by the caller.
func (l *Ledger) IncreaseAmount(ctx context.Context, caller domain.Address, id, delta uint64) error {
	return l.exec.Execute(ctx, "increase_amount", caller, func(tx *state.Tx) error {
		c, err := ownedClaim(tx, id, caller)
		if err != nil {
			return err
		}
		if c.Amount+delta < c.Amount {
			return domain.ErrAmountOverflow
		}
		c.Amount += delta
		tx.PutClaim(c)
		tx.Emit(domain.Event{Ledger: ledger, Name: domain.EventIncreaseCommodity, AssetID: id, Actor: caller, Amount: delta})
		return nil
	})
}

// DecreaseAmount subtracts delta from a claim owned by the caller. The amount never
// goes below zero.
func (l *Ledger) DecreaseAmount(ctx context.Context, caller domain.Address, id, delta uint64) error {
	return l.exec.Execute(ctx, "decrease_amount", caller, func(tx *state.Tx) error {
		c, err := ownedClaim(tx, id, caller)
		if err != nil {
			return err
		}
		if delta > c.Amount {
			return domain.ErrAmountUnderflow
		}
		c.Amount -= delta
		tx.PutClaim(c)
		tx.Emit(domain.Event{Ledger: ledger, Name: domain.EventDecreaseCommodity, AssetID: id, Actor: caller, Amount: delta})
		return nil
	})
}

// Burn destroys a claim owned by the caller.
func (l *Ledger) Burn(ctx context.Context, caller domain.Address, id uint64) error {
	return l.exec.Execute(ctx, "burn_token", caller, func(tx *state.Tx) error {
		if _, err := ownedClaim(tx, id, caller); err != nil {
			return err
		}
		tx.DeleteClaim(id)
		tx.Emit(domain.Event{Ledger: ledger, Name: domain.EventBurnToken, AssetID: id, Actor: caller})
		return nil
	})
}

// Approve lets `to` transfer the claim.
func (l *Ledger) Approve(ctx context.Context, caller domain.Address, id uint64, to domain.Address) error {
	return l.exec.Execute(ctx, "approve_token", caller, func(tx *state.Tx) error {
		c, ok := tx.Claim(id)
		if !ok {
			return domain.ErrNonexistentToken
		}
		return custody.Approve(tx, ledger, id, c.Owner, caller, to)
	})
}

// TransferFrom moves a claim from its owner to `to`; the caller must be the owner or approved.
func (l *Ledger) TransferFrom(ctx context.Context, caller, from, to domain.Address, id uint64) error {
	return l.exec.Execute(ctx, "transfer_token", caller, func(tx *state.Tx) error {
		c, ok := tx.Claim(id)
		if !ok {
			return domain.ErrNonexistentToken
		}
		if err := custody.CheckTransfer(tx, ledger, id, c.Owner, caller, from, to); err != nil {
			return err
		}
		c.Owner = to
		tx.PutClaim(c)
		custody.Move(tx, ledger, id, from, to)
		return nil
	})
}

// Claim returns a live claim.
func (l *Ledger) Claim(id uint64) (domain.Claim, error) {
	var c domain.Claim
	var ok bool
	l.exec.View(func(w *state.World) { c, ok = w.Claim(id) })
	if !ok {
		return domain.Claim{}, domain.ErrNonexistentToken
	}
	return c, nil
}

// OwnerOf returns the owner of a live claim. Claims in escrow are owned by the commodity ledger.
func (l *Ledger) OwnerOf(id uint64) (domain.Address, error) {
	c, err := l.Claim(id)
	return c.Owner, err
}

// Approved returns the address approved to transfer a claim, if any.
func (l *Ledger) Approved(id uint64) domain.Address {
	var a domain.Address
	l.exec.View(func(w *state.World) { a = w.Approved(ledger, id) })
	return a
}

func ownedClaim(tx *state.Tx, id uint64, caller domain.Address) (domain.Claim, error) {
	c, ok := tx.Claim(id)
	if !ok {
		return domain.Claim{}, domain.ErrNonexistentToken
	}
	if c.Owner != caller {
		return domain.Claim{}, domain.ErrNotOwner
	}
	return c, nil
}
