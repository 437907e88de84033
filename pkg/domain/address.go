package domain

import "strings"

// Address identifies a participant (or a ledger acting as custodian).
type Address string

// ZeroAddress is the empty identity.
const ZeroAddress Address = ""

// Ledger names one of the three asset id spaces.
type Ledger string

const (
	LedgerTokenizer   Ledger = "tokenizer"
	LedgerCommodity   Ledger = "commodity"
	LedgerComposition Ledger = "composition"
)

// Custodian addresses. Assets held in escrow or inside a composition are owned by the
// ledger that holds them, so their former owner can no longer act on them.
const (
	CommodityLedgerAddress   Address = "ledger:commodity"
	CompositionLedgerAddress Address = "ledger:composition"
)

// Normalize trims whitespace and lower-cases hex-style addresses so that
// "0xABC" and "0xabc" compare equal.
func (a Address) Normalize() Address {
	s := strings.TrimSpace(string(a))
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = strings.ToLower(s)
	}
	return Address(s)
}

func (a Address) String() string { return string(a) }

// IsCustodian reports whether a is one of the ledger custodian addresses. Those
// only ever hold assets; no caller may act as them.
func (a Address) IsCustodian() bool {
	switch a.Normalize() {
	case CommodityLedgerAddress, CompositionLedgerAddress:
		return true
	}
	return false
}

// IsZero reports whether a is the empty identity or an all-zero hex address.
func (a Address) IsZero() bool {
	s := string(a.Normalize())
	if s == "" {
		return true
	}
	return strings.HasPrefix(s, "0x") && strings.Trim(s[2:], "0") == "" && len(s) > 2
}

// ParseLedger validates a ledger name.
func ParseLedger(s string) (Ledger, bool) {
	switch l := Ledger(strings.ToLower(strings.TrimSpace(s))); l {
	case LedgerTokenizer, LedgerCommodity, LedgerComposition:
		return l, true
	}
	return "", false
}
