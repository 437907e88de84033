package domain

import "slices"

// Claim is a raw commodity claim minted by a tokenizer.
type Claim struct {
	ID            uint64  `json:"id" cbor:"id"`
	CommodityName string  `json:"commodity_name" cbor:"commodity_name"`
	Amount        uint64  `json:"amount" cbor:"amount"`
	Unit          string  `json:"unit" cbor:"unit"`
	Owner         Address `json:"owner" cbor:"owner"`
}

// SaleOrder is the escrow slot of a claim. It is consumed when the handler mints the commodity.
type SaleOrder struct {
	ClaimID    uint64  `json:"claim_id" cbor:"claim_id"`
	Seller     Address `json:"seller" cbor:"seller"`
	NewOwner   Address `json:"new_owner" cbor:"new_owner"`
	Handler    Address `json:"handler" cbor:"handler"`
	IsPaid     bool    `json:"is_paid" cbor:"is_paid"`
	PriceInWei uint64  `json:"price_in_wei" cbor:"price_in_wei"`
	Fiat       bool    `json:"fiat,omitempty" cbor:"fiat,omitempty"`
}

// Escrow holds a payment until the seller withdraws it.
type Escrow struct {
	ClaimID  uint64  `json:"claim_id" cbor:"claim_id"`
	Seller   Address `json:"seller" cbor:"seller"`
	Amount   uint64  `json:"amount" cbor:"amount"`
	Released bool    `json:"released" cbor:"released"` // set once the commodity is minted
}

// HistoryKind classifies an entry of an asset's properties history.
type HistoryKind string

const (
	HistoryOrigin         HistoryKind = "origin"
	HistoryTransformation HistoryKind = "transformation"
	HistoryInformation    HistoryKind = "information"
	HistoryQuality        HistoryKind = "quality"
	HistoryLocation       HistoryKind = "location"
)

// Location is a reported position with a confidence radius. Values are not range checked.
type Location struct {
	Latitude  int64 `json:"latitude" cbor:"latitude"`
	Longitude int64 `json:"longitude" cbor:"longitude"`
	Radius    int64 `json:"radius" cbor:"radius"`
}

// HistoryEntry is one recorded transformation or annotation.
type HistoryEntry struct {
	Kind     HistoryKind `json:"kind" cbor:"kind"`
	Handler  Address     `json:"handler,omitempty" cbor:"handler,omitempty"`
	Text     string      `json:"text,omitempty" cbor:"text,omitempty"`
	Decrease uint64      `json:"decrease,omitempty" cbor:"decrease,omitempty"`
	Location *Location   `json:"location,omitempty" cbor:"location,omitempty"`
}

// Commodity is a custody-bearing asset.
type Commodity struct {
	ID             uint64         `json:"id" cbor:"id"`
	Name           string         `json:"name" cbor:"name"`
	Amount         uint64         `json:"amount" cbor:"amount"`
	Unit           string         `json:"unit" cbor:"unit"`
	State          CommodityState `json:"state" cbor:"state"`
	PropertiesHash []byte         `json:"properties_hash" cbor:"properties_hash"`
	CurrentHandler Address        `json:"current_handler" cbor:"current_handler"`
	Owner          Address        `json:"owner" cbor:"owner"`
	History        []HistoryEntry `json:"history,omitempty" cbor:"history,omitempty"`
}

// Clone returns a deep copy.
func (c Commodity) Clone() Commodity {
	c.PropertiesHash = slices.Clone(c.PropertiesHash)
	c.History = cloneHistory(c.History)
	return c
}

// Record appends e to the history and chains it into the properties hash.
func (c *Commodity) Record(e HistoryEntry) {
	c.History = append(c.History, e)
	c.PropertiesHash = Extend(c.PropertiesHash, e)
}

// Composition aggregates commodities held in custody by the composition ledger.
type Composition struct {
	ID             uint64         `json:"id" cbor:"id"`
	Name           string         `json:"name" cbor:"name"`
	Amount         uint64         `json:"amount" cbor:"amount"`
	State          CommodityState `json:"state" cbor:"state"`
	PropertiesHash []byte         `json:"properties_hash" cbor:"properties_hash"`
	CurrentHandler Address        `json:"current_handler" cbor:"current_handler"`
	Owner          Address        `json:"owner" cbor:"owner"`
	Members        []uint64       `json:"members" cbor:"members"`
	History        []HistoryEntry `json:"history,omitempty" cbor:"history,omitempty"`
}

// Clone returns a deep copy.
func (c Composition) Clone() Composition {
	c.PropertiesHash = slices.Clone(c.PropertiesHash)
	c.Members = slices.Clone(c.Members)
	c.History = cloneHistory(c.History)
	return c
}

// Record appends e to the history and chains it into the properties hash.
func (c *Composition) Record(e HistoryEntry) {
	c.History = append(c.History, e)
	c.PropertiesHash = Extend(c.PropertiesHash, e)
}

func cloneHistory(in []HistoryEntry) []HistoryEntry {
	if in == nil {
		return nil
	}
	out := make([]HistoryEntry, len(in))
	for i, e := range in {
		if e.Location != nil {
			loc := *e.Location
			e.Location = &loc
		}
		out[i] = e
	}
	return out
}
