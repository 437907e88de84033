package registry

import (
	"context"

	"github.com/aretw0/tradecoin"
	"github.com/aretw0/tradecoin/pkg/domain"
)

type (
	roleArgs struct {
		Registry domain.Registry `mapstructure:"registry" desc:"Role registry: commodity (default) or composition" optional:"true"`
		Role     domain.Role     `mapstructure:"role" desc:"admin, tokenizer, transformation_handler or information_handler"`
		Account  domain.Address  `mapstructure:"account" desc:"Address to grant, revoke or check"`
	}
	membersArgs struct {
		Registry domain.Registry `mapstructure:"registry" desc:"Role registry: commodity (default) or composition" optional:"true"`
		Role     domain.Role     `mapstructure:"role" desc:"Role to list"`
	}
	idArgs struct {
		ID uint64 `mapstructure:"id" desc:"Asset id"`
	}
	mintArgs struct {
		Name   string `mapstructure:"name" desc:"Commodity name"`
		Amount uint64 `mapstructure:"amount" desc:"Quantity in unit"`
		Unit   string `mapstructure:"unit" desc:"Unit of measure"`
	}
	amountArgs struct {
		ID     uint64 `mapstructure:"id" desc:"Claim id"`
		Amount uint64 `mapstructure:"amount" desc:"Amount to add or remove"`
	}
	approveArgs struct {
		ID uint64         `mapstructure:"id" desc:"Asset id"`
		To domain.Address `mapstructure:"to" desc:"Address allowed to transfer the asset"`
	}
	transferArgs struct {
		ID   uint64         `mapstructure:"id" desc:"Asset id"`
		From domain.Address `mapstructure:"from" desc:"Current owner"`
		To   domain.Address `mapstructure:"to" desc:"New owner"`
	}
	saleArgs struct {
		ID         uint64         `mapstructure:"id" desc:"Claim id"`
		NewOwner   domain.Address `mapstructure:"new_owner" desc:"Buyer"`
		Handler    domain.Address `mapstructure:"handler" desc:"Handler that will mint the commodity"`
		PriceInWei uint64         `mapstructure:"price_in_wei" desc:"Price the buyer must pay" optional:"true"`
	}
	paymentArgs struct {
		ID    uint64 `mapstructure:"id" desc:"Claim id"`
		Value uint64 `mapstructure:"value" desc:"Value sent with the payment"`
	}
	claimArgs struct {
		ClaimID uint64 `mapstructure:"claim_id" desc:"Paid claim to redeem"`
	}
	handlerStateArgs struct {
		ID      uint64                `mapstructure:"id" desc:"Asset id"`
		Handler domain.Address        `mapstructure:"handler" desc:"New current handler"`
		State   domain.CommodityState `mapstructure:"state" desc:"New state, by name (Stored) or number (7)"`
	}
	splitArgs struct {
		ID         uint64   `mapstructure:"id" desc:"Commodity to split"`
		Partitions []uint64 `mapstructure:"partitions" desc:"Amounts of the new commodities"`
	}
	idsArgs struct {
		IDs []uint64 `mapstructure:"ids" desc:"Commodity ids"`
	}
	transformationArgs struct {
		ID          uint64 `mapstructure:"id" desc:"Asset id"`
		Description string `mapstructure:"description" desc:"What was done"`
	}
	decreaseArgs struct {
		ID          uint64 `mapstructure:"id" desc:"Asset id"`
		Description string `mapstructure:"description" desc:"What was done"`
		Decrease    uint64 `mapstructure:"decrease" desc:"Amount lost in the transformation"`
	}
	textArgs struct {
		ID   uint64 `mapstructure:"id" desc:"Asset id"`
		Text string `mapstructure:"text" desc:"Free text"`
	}
	locationArgs struct {
		ID        uint64 `mapstructure:"id" desc:"Asset id"`
		Latitude  int64  `mapstructure:"latitude" desc:"Latitude"`
		Longitude int64  `mapstructure:"longitude" desc:"Longitude"`
		Radius    int64  `mapstructure:"radius" desc:"Confidence radius"`
	}
	createArgs struct {
		Name    string         `mapstructure:"name" desc:"Composition name"`
		IDs     []uint64       `mapstructure:"ids" desc:"Stored commodities to include (at least 2)"`
		Handler domain.Address `mapstructure:"handler" desc:"Current handler of the composition"`
	}
	appendArgs struct {
		ID          uint64 `mapstructure:"id" desc:"Composition id"`
		CommodityID uint64 `mapstructure:"commodity_id" desc:"Stored commodity to add"`
	}
	removeArgs struct {
		ID    uint64 `mapstructure:"id" desc:"Composition id"`
		Index int    `mapstructure:"index" desc:"Position of the member to remove"`
	}
	journeyArgs struct {
		Ledger domain.Ledger `mapstructure:"ledger" desc:"tokenizer, commodity or composition"`
		ID     uint64        `mapstructure:"id" desc:"Asset id"`
	}
	eventsArgs struct {
		Since uint64 `mapstructure:"since" desc:"Return events with a greater sequence number" optional:"true"`
	}
)

// IDResult is returned by operations that create an asset.
type IDResult struct {
	ID uint64 `json:"id"`
}

// IDsResult is returned by Split.
type IDsResult struct {
	IDs []uint64 `json:"ids"`
}

// AmountResult is returned by WithdrawPayment.
type AmountResult struct {
	Amount uint64 `json:"amount"`
}

// OwnerResult is returned by owner queries.
type OwnerResult struct {
	Owner    domain.Address `json:"owner"`
	Approved domain.Address `json:"approved,omitempty"`
}

func registryOf(r domain.Registry) domain.Registry {
	if r == "" {
		return domain.RegistryCommodity
	}
	return r
}

// ForLedger registers every operation of l.
func ForLedger(l *tradecoin.Ledger) *Registry {
	r := NewRegistry()
	registerAccess(r, l)
	registerTokenizer(r, l)
	registerCommodity(r, l)
	registerComposition(r, l)

	r.Register(Query("ledger.journey", "Replay every committed event touching one asset",
		func(_ context.Context, _ domain.Address, a journeyArgs) (any, error) {
			return l.Journey(a.Ledger, a.ID), nil
		}))
	r.Register(Query("ledger.events", "List committed events after a sequence number",
		func(_ context.Context, _ domain.Address, a eventsArgs) (any, error) {
			return l.Events(a.Since), nil
		}))
	return r
}

func registerAccess(r *Registry, l *tradecoin.Ledger) {
	r.Register(Command("access.add_role", "Grant a role (admins only)",
		func(ctx context.Context, caller domain.Address, a roleArgs) (any, error) {
			return nil, l.Access(registryOf(a.Registry)).Add(ctx, caller, a.Role, a.Account)
		}))
	r.Register(Command("access.remove_role", "Revoke a role (admins only)",
		func(ctx context.Context, caller domain.Address, a roleArgs) (any, error) {
			return nil, l.Access(registryOf(a.Registry)).Remove(ctx, caller, a.Role, a.Account)
		}))
	r.Register(Query("access.has_role", "Check whether an account holds a role",
		func(_ context.Context, _ domain.Address, a roleArgs) (any, error) {
			return l.Access(registryOf(a.Registry)).Has(a.Role, a.Account), nil
		}))
	r.Register(Query("access.members", "List the members of a role",
		func(_ context.Context, _ domain.Address, a membersArgs) (any, error) {
			return l.Access(registryOf(a.Registry)).Members(a.Role), nil
		}))
}

func registerTokenizer(r *Registry, l *tradecoin.Ledger) {
	t := l.Tokenizer()
	r.Register(Command("tokenizer.mint", "Mint a commodity claim (tokenizers only)",
		func(ctx context.Context, caller domain.Address, a mintArgs) (any, error) {
			id, err := t.Mint(ctx, caller, a.Name, a.Amount, a.Unit)
			if err != nil {
				return nil, err
			}
			return IDResult{ID: id}, nil
		}))
	r.Register(Command("tokenizer.increase_amount", "Increase the amount of an owned claim",
		func(ctx context.Context, caller domain.Address, a amountArgs) (any, error) {
			return nil, t.IncreaseAmount(ctx, caller, a.ID, a.Amount)
		}))
	r.Register(Command("tokenizer.decrease_amount", "Decrease the amount of an owned claim",
		func(ctx context.Context, caller domain.Address, a amountArgs) (any, error) {
			return nil, t.DecreaseAmount(ctx, caller, a.ID, a.Amount)
		}))
	r.Register(Command("tokenizer.burn", "Burn an owned claim",
		func(ctx context.Context, caller domain.Address, a idArgs) (any, error) {
			return nil, t.Burn(ctx, caller, a.ID)
		}))
	r.Register(Command("tokenizer.approve", "Allow an address to transfer a claim",
		func(ctx context.Context, caller domain.Address, a approveArgs) (any, error) {
			return nil, t.Approve(ctx, caller, a.ID, a.To)
		}))
	r.Register(Command("tokenizer.transfer_from", "Transfer a claim",
		func(ctx context.Context, caller domain.Address, a transferArgs) (any, error) {
			return nil, t.TransferFrom(ctx, caller, a.From, a.To, a.ID)
		}))
	r.Register(Command("tokenizer.initialize_sale", "Put a claim in escrow for a buyer",
		func(ctx context.Context, caller domain.Address, a saleArgs) (any, error) {
			return nil, t.InitializeSale(ctx, caller, a.NewOwner, a.Handler, a.ID, a.PriceInWei)
		}))
	r.Register(Command("tokenizer.initialize_sale_in_fiat", "Put a claim in escrow, paid off-ledger",
		func(ctx context.Context, caller domain.Address, a saleArgs) (any, error) {
			return nil, t.InitializeSaleInFiat(ctx, caller, a.NewOwner, a.Handler, a.ID)
		}))
	r.Register(Command("tokenizer.payment", "Pay for a claim in escrow (buyer only)",
		func(ctx context.Context, caller domain.Address, a paymentArgs) (any, error) {
			return nil, t.Payment(ctx, caller, a.ID, a.Value)
		}))
	r.Register(Command("tokenizer.withdraw_payment", "Withdraw the escrowed payment (seller only)",
		func(ctx context.Context, caller domain.Address, a idArgs) (any, error) {
			amount, err := t.WithdrawPayment(ctx, caller, a.ID)
			if err != nil {
				return nil, err
			}
			return AmountResult{Amount: amount}, nil
		}))
	r.Register(Query("tokenizer.claim", "Get a claim",
		func(_ context.Context, _ domain.Address, a idArgs) (any, error) {
			return t.Claim(a.ID)
		}))
	r.Register(Query("tokenizer.owner_of", "Get the owner of a claim",
		func(_ context.Context, _ domain.Address, a idArgs) (any, error) {
			owner, err := t.OwnerOf(a.ID)
			if err != nil {
				return nil, err
			}
			return OwnerResult{Owner: owner, Approved: t.Approved(a.ID)}, nil
		}))
	r.Register(Query("tokenizer.sale_order", "Get the sale order of a claim",
		func(_ context.Context, _ domain.Address, a idArgs) (any, error) {
			return t.SaleOrder(a.ID)
		}))
	r.Register(Query("tokenizer.escrow", "Get the escrowed payment of a claim",
		func(_ context.Context, _ domain.Address, a idArgs) (any, error) {
			e, ok := t.Escrow(a.ID)
			if !ok {
				return nil, domain.ErrNothingToWithdraw
			}
			return e, nil
		}))
}

func registerCommodity(r *Registry, l *tradecoin.Ledger) {
	c := l.Commodities()
	r.Register(Command("commodity.mint", "Mint the commodity of a paid claim (named handler only)",
		func(ctx context.Context, caller domain.Address, a claimArgs) (any, error) {
			id, err := c.MintCommodity(ctx, caller, a.ClaimID)
			if err != nil {
				return nil, err
			}
			return IDResult{ID: id}, nil
		}))
	r.Register(Command("commodity.change_handler_and_state", "Hand a commodity over and set its state (owner only)",
		func(ctx context.Context, caller domain.Address, a handlerStateArgs) (any, error) {
			return nil, c.ChangeCurrentHandlerAndState(ctx, caller, a.ID, a.Handler, a.State)
		}))
	r.Register(Command("commodity.split", "Split a commodity into partitions",
		func(ctx context.Context, caller domain.Address, a splitArgs) (any, error) {
			ids, err := c.Split(ctx, caller, a.ID, a.Partitions)
			if err != nil {
				return nil, err
			}
			return IDsResult{IDs: ids}, nil
		}))
	r.Register(Command("commodity.batch", "Merge commodities with identical properties",
		func(ctx context.Context, caller domain.Address, a idsArgs) (any, error) {
			id, err := c.Batch(ctx, caller, a.IDs)
			if err != nil {
				return nil, err
			}
			return IDResult{ID: id}, nil
		}))
	r.Register(Command("commodity.burn", "Take a commodity out of the chain",
		func(ctx context.Context, caller domain.Address, a idArgs) (any, error) {
			return nil, c.Burn(ctx, caller, a.ID)
		}))
	r.Register(Command("commodity.approve", "Allow an address to transfer a commodity",
		func(ctx context.Context, caller domain.Address, a approveArgs) (any, error) {
			return nil, c.Approve(ctx, caller, a.ID, a.To)
		}))
	r.Register(Command("commodity.transfer_from", "Transfer a commodity",
		func(ctx context.Context, caller domain.Address, a transferArgs) (any, error) {
			return nil, c.TransferFrom(ctx, caller, a.From, a.To, a.ID)
		}))
	r.Register(Command("commodity.add_transformation", "Record a transformation (current handler only)",
		func(ctx context.Context, caller domain.Address, a transformationArgs) (any, error) {
			return nil, c.AddTransformation(ctx, caller, a.ID, a.Description)
		}))
	r.Register(Command("commodity.add_transformation_decrease", "Record a transformation that loses amount",
		func(ctx context.Context, caller domain.Address, a decreaseArgs) (any, error) {
			return nil, c.AddTransformationDecrease(ctx, caller, a.ID, a.Description, a.Decrease)
		}))
	r.Register(Command("commodity.add_information", "Attach information (current handler only)",
		func(ctx context.Context, caller domain.Address, a textArgs) (any, error) {
			return nil, c.AddInformation(ctx, caller, a.ID, a.Text)
		}))
	r.Register(Command("commodity.check_quality", "Record a quality check (current handler only)",
		func(ctx context.Context, caller domain.Address, a textArgs) (any, error) {
			return nil, c.CheckQuality(ctx, caller, a.ID, a.Text)
		}))
	r.Register(Command("commodity.confirm_location", "Record a location (current handler only)",
		func(ctx context.Context, caller domain.Address, a locationArgs) (any, error) {
			return nil, c.ConfirmLocation(ctx, caller, a.ID, a.Latitude, a.Longitude, a.Radius)
		}))
	r.Register(Query("commodity.get", "Get a commodity",
		func(_ context.Context, _ domain.Address, a idArgs) (any, error) {
			return c.Commodity(a.ID)
		}))
	r.Register(Query("commodity.owner_of", "Get the owner of a commodity",
		func(_ context.Context, _ domain.Address, a idArgs) (any, error) {
			owner, err := c.OwnerOf(a.ID)
			if err != nil {
				return nil, err
			}
			return OwnerResult{Owner: owner, Approved: c.Approved(a.ID)}, nil
		}))
}

func registerComposition(r *Registry, l *tradecoin.Ledger) {
	c := l.Compositions()
	r.Register(Command("composition.create", "Bundle stored commodities into a composition",
		func(ctx context.Context, caller domain.Address, a createArgs) (any, error) {
			id, err := c.Create(ctx, caller, a.Name, a.IDs, a.Handler)
			if err != nil {
				return nil, err
			}
			return IDResult{ID: id}, nil
		}))
	r.Register(Command("composition.append", "Add a stored commodity to a composition",
		func(ctx context.Context, caller domain.Address, a appendArgs) (any, error) {
			return nil, c.Append(ctx, caller, a.ID, a.CommodityID)
		}))
	r.Register(Command("composition.remove", "Return one member to the owner",
		func(ctx context.Context, caller domain.Address, a removeArgs) (any, error) {
			return nil, c.Remove(ctx, caller, a.ID, a.Index)
		}))
	r.Register(Command("composition.decompose", "Return every member and delete the composition",
		func(ctx context.Context, caller domain.Address, a idArgs) (any, error) {
			return nil, c.Decompose(ctx, caller, a.ID)
		}))
	r.Register(Command("composition.burn", "Take a composition and its members out of the chain",
		func(ctx context.Context, caller domain.Address, a idArgs) (any, error) {
			return nil, c.Burn(ctx, caller, a.ID)
		}))
	r.Register(Command("composition.change_handler_and_state", "Hand a composition over and set its state (owner only)",
		func(ctx context.Context, caller domain.Address, a handlerStateArgs) (any, error) {
			return nil, c.ChangeCurrentHandlerAndState(ctx, caller, a.ID, a.Handler, a.State)
		}))
	r.Register(Command("composition.approve", "Allow an address to transfer a composition",
		func(ctx context.Context, caller domain.Address, a approveArgs) (any, error) {
			return nil, c.Approve(ctx, caller, a.ID, a.To)
		}))
	r.Register(Command("composition.transfer_from", "Transfer a composition",
		func(ctx context.Context, caller domain.Address, a transferArgs) (any, error) {
			return nil, c.TransferFrom(ctx, caller, a.From, a.To, a.ID)
		}))
	r.Register(Command("composition.add_transformation", "Record a transformation (current handler only)",
		func(ctx context.Context, caller domain.Address, a transformationArgs) (any, error) {
			return nil, c.AddTransformation(ctx, caller, a.ID, a.Description)
		}))
	r.Register(Command("composition.add_transformation_decrease", "Record a transformation that loses amount",
		func(ctx context.Context, caller domain.Address, a decreaseArgs) (any, error) {
			return nil, c.AddTransformationDecrease(ctx, caller, a.ID, a.Description, a.Decrease)
		}))
	r.Register(Command("composition.add_information", "Attach information (current handler only)",
		func(ctx context.Context, caller domain.Address, a textArgs) (any, error) {
			return nil, c.AddInformation(ctx, caller, a.ID, a.Text)
		}))
	r.Register(Command("composition.check_quality", "Record a quality check (current handler only)",
		func(ctx context.Context, caller domain.Address, a textArgs) (any, error) {
			return nil, c.CheckQuality(ctx, caller, a.ID, a.Text)
		}))
	r.Register(Command("composition.confirm_location", "Record a location (current handler only)",
		func(ctx context.Context, caller domain.Address, a locationArgs) (any, error) {
			return nil, c.ConfirmLocation(ctx, caller, a.ID, a.Latitude, a.Longitude, a.Radius)
		}))
	r.Register(Query("composition.get", "Get a composition",
		func(_ context.Context, _ domain.Address, a idArgs) (any, error) {
			return c.Composition(a.ID)
		}))
	r.Register(Query("composition.members", "List the commodity ids of a composition",
		func(_ context.Context, _ domain.Address, a idArgs) (any, error) {
			return c.Members(a.ID)
		}))
	r.Register(Query("composition.owner_of", "Get the owner of a composition",
		func(_ context.Context, _ domain.Address, a idArgs) (any, error) {
			owner, err := c.OwnerOf(a.ID)
			if err != nil {
				return nil, err
			}
			return OwnerResult{Owner: owner, Approved: c.Approved(a.ID)}, nil
		}))
}
