package state

import (
	"github.com/aretw0/tradecoin/pkg/domain"
)

// Tx is a write transaction against a World. Every mutation records its inverse so
// that a failed operation can be unwound completely; nothing is visible outside the
// executor until Commit.
type Tx struct {
	*World
	undo   []func()
	events []domain.Event
	done   bool
}

// Begin starts a transaction. The caller must hold the executor lock.
func (w *World) Begin() *Tx {
	return &Tx{World: w}
}

// Emit queues an event; it is appended to the audit trail only on commit.
func (tx *Tx) Emit(e domain.Event) {
	tx.events = append(tx.events, e)
}

// Pending returns the events queued so far.
func (tx *Tx) Pending() []domain.Event { return tx.events }

// NextID allocates the next dense id of a ledger.
func (tx *Tx) NextID(l domain.Ledger) uint64 {
	id := tx.counters[l]
	tx.undo = append(tx.undo, func() { tx.counters[l] = id })
	tx.counters[l] = id + 1
	return id
}

// PutClaim stores a claim.
func (tx *Tx) PutClaim(c domain.Claim) { put(tx, tx.claims, c.ID, c) }

// DeleteClaim removes a claim and any approval on it.
func (tx *Tx) DeleteClaim(id uint64) {
	del(tx, tx.claims, id)
	tx.clearApproval(domain.LedgerTokenizer, id)
}

// PutSale stores a sale order.
func (tx *Tx) PutSale(o domain.SaleOrder) { put(tx, tx.sales, o.ClaimID, o) }

// DeleteSale clears a consumed sale order slot.
func (tx *Tx) DeleteSale(claimID uint64) { del(tx, tx.sales, claimID) }

// PutEscrow stores an escrowed payment.
func (tx *Tx) PutEscrow(e domain.Escrow) { put(tx, tx.escrows, e.ClaimID, e) }

// DeleteEscrow removes an escrow entry.
func (tx *Tx) DeleteEscrow(claimID uint64) { del(tx, tx.escrows, claimID) }

// PutCommodity stores a commodity.
func (tx *Tx) PutCommodity(c domain.Commodity) { put(tx, tx.commodities, c.ID, c.Clone()) }

// DeleteCommodity removes a commodity and any approval on it.
func (tx *Tx) DeleteCommodity(id uint64) {
	del(tx, tx.commodities, id)
	tx.clearApproval(domain.LedgerCommodity, id)
}

// PutComposition stores a composition.
func (tx *Tx) PutComposition(c domain.Composition) { put(tx, tx.compositions, c.ID, c.Clone()) }

// DeleteComposition removes a composition and any approval on it.
func (tx *Tx) DeleteComposition(id uint64) {
	del(tx, tx.compositions, id)
	tx.clearApproval(domain.LedgerComposition, id)
}

// SetApproval records the single address allowed to transfer an asset.
func (tx *Tx) SetApproval(l domain.Ledger, id uint64, to domain.Address) {
	if tx.approvals[l] == nil {
		tx.approvals[l] = map[uint64]domain.Address{}
	}
	if to == domain.ZeroAddress {
		del(tx, tx.approvals[l], id)
		return
	}
	put(tx, tx.approvals[l], id, to)
}

func (tx *Tx) clearApproval(l domain.Ledger, id uint64) {
	if m := tx.approvals[l]; m != nil {
		del(tx, m, id)
	}
}

// GrantRole adds who to role. It reports whether membership changed.
func (tx *Tx) GrantRole(r domain.Registry, role domain.Role, who domain.Address) bool {
	if tx.HasRole(r, role, who) {
		return false
	}
	if tx.roles[r] == nil {
		tx.roles[r] = roleTable{}
	}
	if tx.roles[r][role] == nil {
		tx.roles[r][role] = map[domain.Address]struct{}{}
	}
	put(tx, tx.roles[r][role], who, struct{}{})
	return true
}

// RevokeRole removes who from role. It reports whether membership changed.
func (tx *Tx) RevokeRole(r domain.Registry, role domain.Role, who domain.Address) bool {
	if !tx.HasRole(r, role, who) {
		return false
	}
	del(tx, tx.roles[r][role], who)
	return true
}

// Rollback unwinds every mutation in reverse order and drops queued events.
func (tx *Tx) Rollback() {
	if tx.done {
		return
	}
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
	tx.events = nil
	tx.done = true
}

// Commit appends the (already stamped) events to the audit trail and bumps the
// world version. It returns an undo function that reverts the whole transaction,
// used when persisting the committed state fails.
func (tx *Tx) Commit(stamped []domain.Event) (revert func()) {
	tx.done = true
	prevVersion := tx.version
	prevLen := len(tx.World.events)
	tx.World.events = append(tx.World.events, stamped...)
	tx.version++
	undo := tx.undo
	w := tx.World
	return func() {
		w.events = w.events[:prevLen]
		w.version = prevVersion
		for i := len(undo) - 1; i >= 0; i-- {
			undo[i]()
		}
	}
}

func put[K comparable, V any](tx *Tx, m map[K]V, k K, v V) {
	prev, existed := m[k]
	tx.undo = append(tx.undo, func() {
		if existed {
			m[k] = prev
		} else {
			delete(m, k)
		}
	})
	m[k] = v
}

func del[K comparable, V any](tx *Tx, m map[K]V, k K) {
	prev, existed := m[k]
	if !existed {
		return
	}
	tx.undo = append(tx.undo, func() { m[k] = prev })
	delete(m, k)
}
