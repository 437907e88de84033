// Package state holds the authoritative in-memory ledger and the undo-journaled
// transactions every operation runs in.
package state

import (
	"maps"
	"slices"

	"github.com/aretw0/tradecoin/pkg/domain"
)

type roleTable map[domain.Role]map[domain.Address]struct{}

// World is the single authoritative store shared by all ledgers. It is not safe for
// concurrent use; the runtime executor serializes access.
type World struct {
	version      uint64
	counters     map[domain.Ledger]uint64
	roles        map[domain.Registry]roleTable
	claims       map[uint64]domain.Claim
	sales        map[uint64]domain.SaleOrder
	escrows      map[uint64]domain.Escrow
	commodities  map[uint64]domain.Commodity
	compositions map[uint64]domain.Composition
	approvals    map[domain.Ledger]map[uint64]domain.Address
	events       []domain.Event
}

// NewWorld returns an empty ledger.
func NewWorld() *World {
	return &World{
		counters:     map[domain.Ledger]uint64{},
		roles:        map[domain.Registry]roleTable{},
		claims:       map[uint64]domain.Claim{},
		sales:        map[uint64]domain.SaleOrder{},
		escrows:      map[uint64]domain.Escrow{},
		commodities:  map[uint64]domain.Commodity{},
		compositions: map[uint64]domain.Composition{},
		approvals:    map[domain.Ledger]map[uint64]domain.Address{},
	}
}

// Version increases by one with every committed transaction.
func (w *World) Version() uint64 { return w.version }

// LastSeq is the sequence number of the most recent event, 0 if none.
func (w *World) LastSeq() uint64 {
	if len(w.events) == 0 {
		return 0
	}
	return w.events[len(w.events)-1].Seq
}

// Claim returns a copy of a live claim.
func (w *World) Claim(id uint64) (domain.Claim, bool) {
	c, ok := w.claims[id]
	return c, ok
}

// Sale returns the sale order of a claim.
func (w *World) Sale(claimID uint64) (domain.SaleOrder, bool) {
	s, ok := w.sales[claimID]
	return s, ok
}

// Escrow returns the escrowed payment of a claim.
func (w *World) Escrow(claimID uint64) (domain.Escrow, bool) {
	e, ok := w.escrows[claimID]
	return e, ok
}

// Commodity returns a copy of a live commodity.
func (w *World) Commodity(id uint64) (domain.Commodity, bool) {
	c, ok := w.commodities[id]
	if !ok {
		return domain.Commodity{}, false
	}
	return c.Clone(), true
}

// Composition returns a copy of a live composition.
func (w *World) Composition(id uint64) (domain.Composition, bool) {
	c, ok := w.compositions[id]
	if !ok {
		return domain.Composition{}, false
	}
	return c.Clone(), true
}

// Approved returns the address approved to transfer an asset, if any.
func (w *World) Approved(l domain.Ledger, id uint64) domain.Address {
	return w.approvals[l][id]
}

// HasRole reports membership of who in role of registry r.
func (w *World) HasRole(r domain.Registry, role domain.Role, who domain.Address) bool {
	_, ok := w.roles[r][role][who]
	return ok
}

// Members lists a role's members in sorted order.
func (w *World) Members(r domain.Registry, role domain.Role) []domain.Address {
	return slices.Sorted(maps.Keys(w.roles[r][role]))
}

// Events returns every committed event in commit order.
func (w *World) Events() []domain.Event {
	return slices.Clone(w.events)
}

// EventsSince returns the committed events with a sequence number above seq.
func (w *World) EventsSince(seq uint64) []domain.Event {
	return domain.EventsAfter(w.events, seq)
}

// Journey returns the committed events touching asset id of ledger l.
func (w *World) Journey(l domain.Ledger, id uint64) []domain.Event {
	var out []domain.Event
	for _, e := range w.events {
		if e.Touches(l, id) {
			out = append(out, e)
		}
	}
	return out
}

// Snapshot exports the world.
func (w *World) Snapshot() *domain.Snapshot {
	s := &domain.Snapshot{
		Version:   w.version,
		Counters:  maps.Clone(w.counters),
		Roles:     map[domain.Registry]domain.RoleSet{},
		Approvals: map[domain.Ledger]map[uint64]domain.Address{},
		Events:    slices.Clone(w.events),
	}
	for reg, table := range w.roles {
		set := domain.RoleSet{}
		for role := range table {
			if members := w.Members(reg, role); len(members) > 0 {
				set[role] = members
			}
		}
		s.Roles[reg] = set
	}
	for _, id := range sortedKeys(w.claims) {
		s.Claims = append(s.Claims, w.claims[id])
	}
	for _, id := range sortedKeys(w.sales) {
		s.Sales = append(s.Sales, w.sales[id])
	}
	for _, id := range sortedKeys(w.escrows) {
		s.Escrows = append(s.Escrows, w.escrows[id])
	}
	for _, id := range sortedKeys(w.commodities) {
		s.Commodities = append(s.Commodities, w.commodities[id].Clone())
	}
	for _, id := range sortedKeys(w.compositions) {
		s.Compositions = append(s.Compositions, w.compositions[id].Clone())
	}
	for l, approved := range w.approvals {
		if len(approved) > 0 {
			s.Approvals[l] = maps.Clone(approved)
		}
	}
	return s
}

// Restore replaces the world's contents with a snapshot.
func (w *World) Restore(s *domain.Snapshot) {
	fresh := NewWorld()
	fresh.version = s.Version
	maps.Copy(fresh.counters, s.Counters)
	for reg, set := range s.Roles {
		table := roleTable{}
		for role, members := range set {
			table[role] = map[domain.Address]struct{}{}
			for _, m := range members {
				table[role][m] = struct{}{}
			}
		}
		fresh.roles[reg] = table
	}
	for _, c := range s.Claims {
		fresh.claims[c.ID] = c
	}
	for _, o := range s.Sales {
		fresh.sales[o.ClaimID] = o
	}
	for _, e := range s.Escrows {
		fresh.escrows[e.ClaimID] = e
	}
	for _, c := range s.Commodities {
		fresh.commodities[c.ID] = c.Clone()
	}
	for _, c := range s.Compositions {
		fresh.compositions[c.ID] = c.Clone()
	}
	for l, approved := range s.Approvals {
		fresh.approvals[l] = maps.Clone(approved)
	}
	fresh.events = slices.Clone(s.Events)
	*w = *fresh
}

func sortedKeys[V any](m map[uint64]V) []uint64 {
	return slices.Sorted(maps.Keys(m))
}
