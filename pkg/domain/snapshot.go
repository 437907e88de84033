package domain

import "slices"

// RoleSet holds the members of each role in one registry.
type RoleSet map[Role][]Address

// Snapshot is the serialisable representation of the whole ledger.
type Snapshot struct {
	Version      uint64                        `json:"version" cbor:"version"`
	Counters     map[Ledger]uint64             `json:"counters" cbor:"counters"`
	Roles        map[Registry]RoleSet          `json:"roles" cbor:"roles"`
	Claims       []Claim                       `json:"claims" cbor:"claims"`
	Sales        []SaleOrder                   `json:"sales" cbor:"sales"`
	Escrows      []Escrow                      `json:"escrows" cbor:"escrows"`
	Commodities  []Commodity                   `json:"commodities" cbor:"commodities"`
	Compositions []Composition                 `json:"compositions" cbor:"compositions"`
	Approvals    map[Ledger]map[uint64]Address `json:"approvals,omitempty" cbor:"approvals,omitempty"`
	Events       []Event                       `json:"events" cbor:"events"`

	// Sealed carries an encrypted snapshot; when set every other field is empty.
	Sealed []byte `json:"sealed,omitempty" cbor:"sealed,omitempty"`
}

// EventsSince returns the events with a sequence number strictly greater than seq.
func (s *Snapshot) EventsSince(seq uint64) []Event {
	return EventsAfter(s.Events, seq)
}

// EventsAfter returns a copy of the tail of events, ordered by Seq, whose sequence
// number is strictly greater than seq.
func EventsAfter(events []Event, seq uint64) []Event {
	i, _ := slices.BinarySearchFunc(events, seq+1, func(e Event, target uint64) int {
		switch {
		case e.Seq < target:
			return -1
		case e.Seq > target:
			return 1
		}
		return 0
	})
	return slices.Clone(events[i:])
}
