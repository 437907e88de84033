package commodity

import (
	"context"

	"github.com/aretw0/tradecoin/internal/state"
	"github.com/aretw0/tradecoin/pkg/access"
	"github.com/aretw0/tradecoin/pkg/domain"
)

// AddTransformation records a physical change performed by the current handler.
func (l *Ledger) AddTransformation(ctx context.Context, caller domain.Address, id uint64, description string) error {
	return l.handle(ctx, "add_transformation", caller, id, domain.RoleTransformationHandler, func(c *domain.Commodity) (domain.Event, error) {
		c.Record(domain.HistoryEntry{Kind: domain.HistoryTransformation, Handler: caller, Text: description})
		return domain.Event{Name: domain.EventCommodityTransformation, Label: description}, nil
	})
}

// AddTransformationDecrease records a transformation that lost part of the quantity.
func (l *Ledger) AddTransformationDecrease(ctx context.Context, caller domain.Address, id uint64, description string, decrease uint64) error {
	return l.handle(ctx, "add_transformation_decrease", caller, id, domain.RoleTransformationHandler, func(c *domain.Commodity) (domain.Event, error) {
		if decrease > c.Amount {
			return domain.Event{}, domain.ErrAmountUnderflow
		}
		c.Amount -= decrease
		c.Record(domain.HistoryEntry{Kind: domain.HistoryTransformation, Handler: caller, Text: description, Decrease: decrease})
		return domain.Event{Name: domain.EventCommodityTransformationDecrease, Label: description, Amount: decrease}, nil
	})
}

// AddInformation annotates the commodity.
func (l *Ledger) AddInformation(ctx context.Context, caller domain.Address, id uint64, text string) error {
	return l.handle(ctx, "add_information", caller, id, domain.RoleInformationHandler, func(c *domain.Commodity) (domain.Event, error) {
		c.Record(domain.HistoryEntry{Kind: domain.HistoryInformation, Handler: caller, Text: text})
		return domain.Event{Name: domain.EventAddInformation, Label: text}, nil
	})
}

// CheckQuality records a quality assessment.
func (l *Ledger) CheckQuality(ctx context.Context, caller domain.Address, id uint64, text string) error {
	return l.handle(ctx, "check_quality", caller, id, domain.RoleInformationHandler, func(c *domain.Commodity) (domain.Event, error) {
		c.Record(domain.HistoryEntry{Kind: domain.HistoryQuality, Handler: caller, Text: text})
		return domain.Event{Name: domain.EventQualityCheckCommodity, Label: text}, nil
	})
}

// ConfirmLocation records where the commodity is. Coordinates are not range checked.
func (l *Ledger) ConfirmLocation(ctx context.Context, caller domain.Address, id uint64, latitude, longitude, radius int64) error {
	return l.handle(ctx, "confirm_location", caller, id, domain.RoleInformationHandler, func(c *domain.Commodity) (domain.Event, error) {
		loc := domain.Location{Latitude: latitude, Longitude: longitude, Radius: radius}
		c.Record(domain.HistoryEntry{Kind: domain.HistoryLocation, Handler: caller, Location: &loc})
		return domain.Event{Name: domain.EventLocationOfCommodity, Location: &loc}, nil
	})
}

// handle runs a handler-gated mutation: the caller must hold role (or be an admin)
// and be the commodity's current handler. A commodity held by a ledger is frozen.
func (l *Ledger) handle(ctx context.Context, op string, caller domain.Address, id uint64, role domain.Role, mutate func(*domain.Commodity) (domain.Event, error)) error {
	return l.exec.Execute(ctx, op, caller, func(tx *state.Tx) error {
		if err := access.Require(tx, registry, role, caller); err != nil {
			return err
		}
		c, ok := tx.Commodity(id)
		if !ok {
			return domain.ErrNonexistentToken
		}
		if c.CurrentHandler != caller {
			return domain.ErrNotCurrentHandler
		}
		if c.Owner.IsCustodian() {
			return domain.ErrInCustody
		}
		ev, err := mutate(&c)
		if err != nil {
			return err
		}
		tx.PutCommodity(c)
		ev.Ledger = ledger
		ev.AssetID = id
		ev.Actor = caller
		tx.Emit(ev)
		return nil
	})
}
