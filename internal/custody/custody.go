// Package custody holds the ownership rules shared by the three ledgers: single
// address approval and owner-or-approved transfers.
package custody

import (
	"github.com/aretw0/tradecoin/internal/state"
	"github.com/aretw0/tradecoin/pkg/domain"
)

// CheckTransfer validates moving asset id of ledger l from `from` to `to`, currently
// owned by owner, on behalf of caller.
func CheckTransfer(tx *state.Tx, l domain.Ledger, id uint64, owner, caller, from, to domain.Address) error {
	if caller != owner && tx.Approved(l, id) != caller {
		return domain.ErrNotApproved
	}
	if owner != from {
		return domain.ErrIncorrectOwner
	}
	return CheckParty(to)
}

// CheckParty rejects the zero address and the custodian addresses as the new owner,
// handler or recipient of an asset.
func CheckParty(addrs ...domain.Address) error {
	for _, a := range addrs {
		if a.IsZero() {
			return domain.ErrZeroAddress
		}
		if a.IsCustodian() {
			return domain.ErrCustodianAddress
		}
	}
	return nil
}

// Move records a completed ownership change: the approval is cleared and a
// Transfer event from `from` to `to` is queued.
func Move(tx *state.Tx, l domain.Ledger, id uint64, from, to domain.Address) {
	tx.SetApproval(l, id, domain.ZeroAddress)
	tx.Emit(domain.Event{
		Ledger:       l,
		Name:         domain.EventTransfer,
		AssetID:      id,
		Actor:        from,
		Counterparty: to,
	})
}

// Approve lets `to` transfer asset id once. Only the owner may approve; the zero
// address clears the approval.
func Approve(tx *state.Tx, l domain.Ledger, id uint64, owner, caller, to domain.Address) error {
	if caller != owner {
		return domain.ErrNotOwner
	}
	if to.IsCustodian() {
		return domain.ErrCustodianAddress
	}
	tx.SetApproval(l, id, to)
	tx.Emit(domain.Event{
		Ledger:       l,
		Name:         domain.EventApproval,
		AssetID:      id,
		Actor:        caller,
		Counterparty: to,
	})
	return nil
}
