package composition

import (
	"context"

	"github.com/aretw0/tradecoin/internal/state"
	"github.com/aretw0/tradecoin/pkg/access"
	"github.com/aretw0/tradecoin/pkg/domain"
)

// AddTransformation records a physical change of the whole composition.
func (l *Ledger) AddTransformation(ctx context.Context, caller domain.Address, id uint64, description string) error {
	return l.handle(ctx, "add_composition_transformation", caller, id, domain.RoleTransformationHandler, func(c *domain.Composition) (domain.Event, error) {
		c.Record(domain.HistoryEntry{Kind: domain.HistoryTransformation, Handler: caller, Text: description})
		return domain.Event{Name: domain.EventCompositionTransformation, Label: description}, nil
	})
}

// AddTransformationDecrease records a transformation that lost part of the quantity.
// Member amounts are left as they are.
func (l *Ledger) AddTransformationDecrease(ctx context.Context, caller domain.Address, id uint64, description string, decrease uint64) error {
	return l.handle(ctx, "add_composition_transformation_decrease", caller, id, domain.RoleTransformationHandler, func(c *domain.Composition) (domain.Event, error) {
		if decrease > c.Amount {
			return domain.Event{}, domain.ErrAmountUnderflow
		}
		c.Amount -= decrease
		c.Record(domain.HistoryEntry{Kind: domain.HistoryTransformation, Handler: caller, Text: description, Decrease: decrease})
		return domain.Event{Name: domain.EventCompositionTransformationDecrease, Label: description, Amount: decrease}, nil
	})
}

// AddInformation attaches free text to the composition's history.
func (l *Ledger) AddInformation(ctx context.Context, caller domain.Address, id uint64, text string) error {
	return l.handle(ctx, "add_composition_information", caller, id, domain.RoleInformationHandler, func(c *domain.Composition) (domain.Event, error) {
		c.Record(domain.HistoryEntry{Kind: domain.HistoryInformation, Handler: caller, Text: text})
		return domain.Event{Name: domain.EventAddInformation, Label: text}, nil
	})
}

// CheckQuality records the outcome of a quality inspection of the composition.
func (l *Ledger) CheckQuality(ctx context.Context, caller domain.Address, id uint64, text string) error {
	return l.handle(ctx, "check_composition_quality", caller, id, domain.RoleInformationHandler, func(c *domain.Composition) (domain.Event, error) {
		c.Record(domain.HistoryEntry{Kind: domain.HistoryQuality, Handler: caller, Text: text})
		return domain.Event{Name: domain.EventQualityCheckComposition, Label: text}, nil
	})
}

// ConfirmLocation records where the composition was seen, as a point and a radius.
func (l *Ledger) ConfirmLocation(ctx context.Context, caller domain.Address, id uint64, latitude, longitude, radius int64) error {
	return l.handle(ctx, "confirm_composition_location", caller, id, domain.RoleInformationHandler, func(c *domain.Composition) (domain.Event, error) {
		loc := domain.Location{Latitude: latitude, Longitude: longitude, Radius: radius}
		c.Record(domain.HistoryEntry{Kind: domain.HistoryLocation, Handler: caller, Location: &loc})
		return domain.Event{Name: domain.EventLocationOfComposition, Location: &loc}, nil
	})
}

func (l *Ledger) handle(ctx context.Context, op string, caller domain.Address, id uint64, role domain.Role, mutate func(*domain.Composition) (domain.Event, error)) error {
	return l.exec.Execute(ctx, op, caller, func(tx *state.Tx) error {
		if err := access.Require(tx, registry, role, caller); err != nil {
			return err
		}
		c, ok := tx.Composition(id)
		if !ok {
			return domain.ErrNonexistentToken
		}
		if c.CurrentHandler != caller {
			return domain.ErrNotCurrentHandler
		}
		ev, err := mutate(&c)
		if err != nil {
			return err
		}
		tx.PutComposition(c)
		ev.Ledger = ledger
		ev.AssetID = id
		ev.Actor = caller
		tx.Emit(ev)
		return nil
	})
}
