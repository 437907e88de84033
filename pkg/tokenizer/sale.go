package tokenizer

import (
	"context"

	"github.com/aretw0/tradecoin/internal/custody"
	"github.com/aretw0/tradecoin/internal/state"
	"github.com/aretw0/tradecoin/pkg/access"
	"github.com/aretw0/tradecoin/pkg/domain"
)

// InitializeSale opens the escrowed sale of a claim. The caller must be a tokenizer
// (or admin) and own the claim, whose custody moves to the commodity ledger. A zero
// price marks the order paid immediately.
func (l *Ledger) InitializeSale(ctx context.Context, caller, newOwner, handler domain.Address, id, priceInWei uint64) error {
	return l.exec.Execute(ctx, "initialize_sale", caller, func(tx *state.Tx) error {
		return openSale(tx, caller, newOwner, handler, id, priceInWei, false)
	})
}

// InitializeSaleInFiat opens a sale settled outside the ledger. The order is paid
// from the start and no escrow is held.
func (l *Ledger) InitializeSaleInFiat(ctx context.Context, caller, newOwner, handler domain.Address, id uint64) error {
	return l.exec.Execute(ctx, "initialize_sale_in_fiat", caller, func(tx *state.Tx) error {
		return openSale(tx, caller, newOwner, handler, id, 0, true)
	})
}

func openSale(tx *state.Tx, caller, newOwner, handler domain.Address, id, price uint64, fiat bool) error {
	if err := access.Require(tx, domain.RegistryCommodity, domain.RoleTokenizer, caller); err != nil {
		return err
	}
	c, err := ownedClaim(tx, id, caller)
	if err != nil {
		return err
	}
	if err := custody.CheckParty(newOwner, handler); err != nil {
		return err
	}

	order := domain.SaleOrder{
		ClaimID:    id,
		Seller:     caller,
		NewOwner:   newOwner,
		Handler:    handler,
		IsPaid:     price == 0,
		PriceInWei: price,
		Fiat:       fiat,
	}
	tx.PutSale(order)

	c.Owner = domain.CommodityLedgerAddress
	tx.PutClaim(c)
	custody.Move(tx, ledger, id, caller, domain.CommodityLedgerAddress)

	paid := order.IsPaid
	tx.Emit(domain.Event{
		Ledger:       ledger,
		Name:         domain.EventInitializeSale,
		AssetID:      id,
		Actor:        caller,
		Counterparty: newOwner,
		Handler:      handler,
		Amount:       price,
		Paid:         &paid,
		Label:        saleLabel(fiat),
	})
	return nil
}

func saleLabel(fiat bool) string {
	if fiat {
		return "fiat"
	}
	return ""
}

// Payment settles an open sale. Only the designated new owner may pay, once, with at
// least the asking price; the whole value sent is held in escrow for the seller.
func (l *Ledger) Payment(ctx context.Context, caller domain.Address, id, value uint64) error {
	return l.exec.Execute(ctx, "payment", caller, func(tx *state.Tx) error {
		order, ok := tx.Sale(id)
		if !ok {
			return domain.ErrNoSaleOrder
		}
		if order.NewOwner != caller {
			return domain.ErrNotNewOwner
		}
		if order.IsPaid {
			return domain.ErrAlreadyPaid
		}
		if value < order.PriceInWei {
			return domain.ErrNotEnoughEther
		}
		order.IsPaid = true
		tx.PutSale(order)
		tx.PutEscrow(domain.Escrow{ClaimID: id, Seller: order.Seller, Amount: value})
		tx.Emit(domain.Event{
			Ledger:       ledger,
			Name:         domain.EventPaymentOfToken,
			AssetID:      id,
			Actor:        caller,
			Counterparty: order.Seller,
			Amount:       value,
		})
		return nil
	})
}

// WithdrawPayment releases the escrowed payment of a claim to its seller once the
// commodity has been minted. It returns the amount paid out.
func (l *Ledger) WithdrawPayment(ctx context.Context, caller domain.Address, id uint64) (uint64, error) {
	var amount uint64
	err := l.exec.Execute(ctx, "withdraw_payment", caller, func(tx *state.Tx) error {
		e, ok := tx.Escrow(id)
		if !ok {
			return domain.ErrNothingToWithdraw
		}
		if e.Seller != caller {
			return domain.ErrNotSeller
		}
		if !e.Released {
			return domain.ErrNotMinted
		}
		if e.Amount == 0 {
			return domain.ErrNothingToWithdraw
		}
		amount = e.Amount
		tx.DeleteEscrow(id)
		tx.Emit(domain.Event{Ledger: ledger, Name: domain.EventWithdrawPayment, AssetID: id, Actor: caller, Amount: amount})
		return nil
	})
	return amount, err
}

// SaleOrder returns the open sale order of a claim.
func (l *Ledger) SaleOrder(id uint64) (domain.SaleOrder, error) {
	var o domain.SaleOrder
	var ok bool
	l.exec.View(func(w *state.World) { o, ok = w.Sale(id) })
	if !ok {
		return domain.SaleOrder{}, domain.ErrNoSaleOrder
	}
	return o, nil
}

// Escrow returns the payment held for a claim's seller.
func (l *Ledger) Escrow(id uint64) (domain.Escrow, bool) {
	var e domain.Escrow
	var ok bool
	l.exec.View(func(w *state.World) { e, ok = w.Escrow(id) })
	return e, ok
}

// Redeem consumes a paid sale on behalf of the commodity ledger: the named handler
// must be caller, the order must be paid, and the claim is destroyed. The escrow, if
// any, becomes withdrawable. It runs inside the caller's transaction.
func Redeem(tx *state.Tx, claimID uint64, caller domain.Address) (domain.Claim, domain.SaleOrder, error) {
	order, ok := tx.Sale(claimID)
	if !ok {
		return domain.Claim{}, domain.SaleOrder{}, domain.ErrNoSaleOrder
	}
	if order.Handler != caller {
		return domain.Claim{}, domain.SaleOrder{}, domain.ErrNotNamedHandler
	}
	if !order.IsPaid {
		return domain.Claim{}, domain.SaleOrder{}, domain.ErrNotPaid
	}
	c, ok := tx.Claim(claimID)
	if !ok {
		return domain.Claim{}, domain.SaleOrder{}, domain.ErrNonexistentToken
	}
	tx.DeleteSale(claimID)
	tx.DeleteClaim(claimID)
	if e, ok := tx.Escrow(claimID); ok {
		e.Released = true
		tx.PutEscrow(e)
	}
	tx.Emit(domain.Event{Ledger: ledger, Name: domain.EventBurnToken, AssetID: claimID, Actor: domain.CommodityLedgerAddress})
	return c, order, nil
}
