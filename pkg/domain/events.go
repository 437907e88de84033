package domain

import (
	"context"
	"slices"
	"time"
)

// EventName identifies what happened.
type EventName string

const (
	EventRoleGranted EventName = "RoleGranted"
	EventRoleRevoked EventName = "RoleRevoked"
	EventTransfer    EventName = "Transfer"
	EventApproval    EventName = "Approval"

	EventMintToken         EventName = "MintToken"
	EventIncreaseCommodity EventName = "IncreaseCommodity"
	EventDecreaseCommodity EventName = "DecreaseCommodity"
	EventBurnToken         EventName = "BurnToken"
	EventInitializeSale    EventName = "InitializeSale"
	EventPaymentOfToken    EventName = "PaymentOfToken"
	EventWithdrawPayment   EventName = "WithdrawPayment"

	EventMintCommodity                   EventName = "MintCommodity"
	EventCommodityTransformation         EventName = "CommodityTransformation"
	EventCommodityTransformationDecrease EventName = "CommodityTransformationDecrease"
	EventAddInformation                  EventName = "AddInformation"
	EventQualityCheckCommodity           EventName = "QualityCheckCommodity"
	EventLocationOfCommodity             EventName = "LocationOfCommodity"
	EventChangeStateAndHandler           EventName = "ChangeStateAndHandler"
	EventSplitCommodity                  EventName = "SplitCommodity"
	EventBatchCommodities                EventName = "BatchCommodities"
	EventCommodityOutOfChain             EventName = "CommodityOutOfChain"

	EventMintComposition                   EventName = "MintComposition"
	EventAppendCommodityToComposition      EventName = "AppendCommodityToComposition"
	EventRemoveCommodityFromComposition    EventName = "RemoveCommodityFromComposition"
	EventCompositionTransformation         EventName = "CompositionTransformation"
	EventCompositionTransformationDecrease EventName = "CompositionTransformationDecrease"
	EventQualityCheckComposition           EventName = "QualityCheckComposition"
	EventLocationOfComposition             EventName = "LocationOfComposition"
	EventDecomposition                     EventName = "Decomposition"
	EventBurnComposition                   EventName = "BurnComposition"
)

// Event is a committed fact. Only the fields meaningful for Name are populated.
type Event struct {
	ID        string    `json:"id" cbor:"id"`
	Seq       uint64    `json:"seq" cbor:"seq"`
	Timestamp time.Time `json:"timestamp" cbor:"timestamp"`

	Ledger  Ledger    `json:"ledger" cbor:"ledger"`
	Name    EventName `json:"name" cbor:"name"`
	AssetID uint64    `json:"asset_id" cbor:"asset_id"`
	Actor   Address   `json:"actor" cbor:"actor"`

	Counterparty Address         `json:"counterparty,omitempty" cbor:"counterparty,omitempty"`
	Handler      Address         `json:"handler,omitempty" cbor:"handler,omitempty"`
	RelatedIDs   []uint64        `json:"related_ids,omitempty" cbor:"related_ids,omitempty"`
	Label        string          `json:"label,omitempty" cbor:"label,omitempty"`
	Amount       uint64          `json:"amount,omitempty" cbor:"amount,omitempty"`
	Unit         string          `json:"unit,omitempty" cbor:"unit,omitempty"`
	State        *CommodityState `json:"state,omitempty" cbor:"state,omitempty"`
	Paid         *bool           `json:"paid,omitempty" cbor:"paid,omitempty"`
	Location     *Location       `json:"location,omitempty" cbor:"location,omitempty"`
	Registry     Registry        `json:"registry,omitempty" cbor:"registry,omitempty"`
	Role         Role            `json:"role,omitempty" cbor:"role,omitempty"`
}

// AssetRef names one asset of one ledger.
type AssetRef struct {
	Ledger Ledger
	ID     uint64
}

// Assets lists the assets the event concerns: its subject first, then its related ids.
// Role events concern none.
func (e Event) Assets() []AssetRef {
	if e.Name == EventRoleGranted || e.Name == EventRoleRevoked {
		return nil
	}
	out := []AssetRef{{Ledger: e.Ledger, ID: e.AssetID}}
	if rl := e.relatedLedger(); rl != "" {
		for _, id := range e.RelatedIDs {
			out = append(out, AssetRef{Ledger: rl, ID: id})
		}
	}
	return out
}

// Touches reports whether the event concerns asset id on ledger l, either as its
// subject or as one of its related ids.
func (e Event) Touches(l Ledger, id uint64) bool {
	return slices.Contains(e.Assets(), AssetRef{Ledger: l, ID: id})
}

// relatedLedger is the id space RelatedIDs refer to. A minted commodity refers back
// to its claim; every other multi-asset event refers to commodities.
func (e Event) relatedLedger() Ledger {
	switch e.Name {
	case EventMintCommodity:
		return LedgerTokenizer
	case EventSplitCommodity, EventBatchCommodities,
		EventMintComposition, EventAppendCommodityToComposition, EventRemoveCommodityFromComposition,
		EventDecomposition, EventBurnComposition:
		return LedgerCommodity
	}
	return ""
}

// OperationEvent describes one executed ledger operation, committed or rejected.
type OperationEvent struct {
	Op       string
	Caller   Address
	Duration time.Duration
	Events   int
	Err      error
}

// Hooks defines callbacks for ledger observability. They run after the operation
// has committed (or been rejected) and outside of the serialization lock.
type Hooks struct {
	OnEvent     func(context.Context, Event)
	OnOperation func(context.Context, OperationEvent)
}

// Merge combines hooks so that every non-nil callback runs in order.
func Merge(all ...Hooks) Hooks {
	return Hooks{
		OnEvent: func(ctx context.Context, e Event) {
			for _, h := range all {
				if h.OnEvent != nil {
					h.OnEvent(ctx, e)
				}
			}
		},
		OnOperation: func(ctx context.Context, op OperationEvent) {
			for _, h := range all {
				if h.OnOperation != nil {
					h.OnOperation(ctx, op)
				}
			}
		},
	}
}
