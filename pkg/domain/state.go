package domain

import "fmt"

// CommodityState is the stored lifecycle position of a commodity or composition.
// It is not enforced transition-wise: the owner may set any valid state at any time.
type CommodityState uint8

const (
	StatePendingConfirmation CommodityState = iota
	StateConfirmed
	StatePendingProcess
	StateProcessing
	StatePendingTransport
	StateTransporting
	StatePendingStorage
	StateStored
	StateEOL
)

var stateNames = [...]string{
	"PendingConfirmation",
	"Confirmed",
	"PendingProcess",
	"Processing",
	"PendingTransport",
	"Transporting",
	"PendingStorage",
	"Stored",
	"EOL",
}

// Valid reports whether s is one of the nine enumerated states.
func (s CommodityState) Valid() bool { return int(s) < len(stateNames) }

func (s CommodityState) String() string {
	if !s.Valid() {
		return fmt.Sprintf("CommodityState(%d)", uint8(s))
	}
	return stateNames[s]
}

// ParseState accepts either the numeric value or the state name.
func ParseState(v string) (CommodityState, bool) {
	for i, name := range stateNames {
		if v == name || v == fmt.Sprint(i) {
			return CommodityState(i), true
		}
	}
	return 0, false
}
