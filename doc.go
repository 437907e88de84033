/*
Package tradecoin is a custody ledger for physical commodities moving through a supply chain.

A raw commodity claim is tokenized, sold through an escrowed three-party sale and minted into a
custody-bearing commodity. From there a commodity is transformed, annotated and handed between
handlers, split into parts, batched with identical goods, or composed with others into a
composition that can later be decomposed or burnt.

# Concept

Every operation runs as one serialized, all-or-nothing transaction against a single in-memory
world. A rejected operation leaves no trace; a committed one appends events to the audit trail,
which is the only history the ledger keeps. Journeys of individual assets are replayed from it.

# Components

  - Access: two independent role registries (commodity and composition) with four roles each.
  - Tokenizer: raw claims and the escrowed sale.
  - Commodities: minting from a paid sale and the handler-attributed lifecycle.
  - Compositions: aggregates of stored commodities.

# Usage

	ledger := tradecoin.New(tradecoin.WithAdmin("0xadmin"))
	ctx := context.Background()

	_ = ledger.Access(domain.RegistryCommodity).AddTokenizer(ctx, "0xadmin", "0xfarm")
	_ = ledger.Access(domain.RegistryCommodity).AddTransformationHandler(ctx, "0xadmin", "0xmill")

	claim, _ := ledger.Tokenizer().Mint(ctx, "0xfarm", "cashew", 10, "kg")
	_ = ledger.Tokenizer().InitializeSale(ctx, "0xfarm", "0xbuyer", "0xmill", claim, 0)
	id, _ := ledger.Commodities().MintCommodity(ctx, "0xmill", claim)

	for _, e := range ledger.Journey(domain.LedgerCommodity, id) {
		fmt.Println(e.Seq, e.Name)
	}

Persist the ledger by passing a ports.SnapshotStore (memory, file, redis or sqlite adapters) and
use Open to restore it. Replicas sharing a store coordinate through a ports.DistributedLocker.
*/
package tradecoin
