/*
Package domain contains the core records and rules of the commodity custody ledger.

It defines the assets tracked through the supply chain, the roles that gate who may act on
them, and the events that make up the audit trail. This package is kept pure and free of
external dependencies like I/O or persistence, following Hexagonal Architecture principles.

# Key Entities

  - Claim: a raw tokenized commodity claim, prior to custody handoff.
  - SaleOrder: the three-party escrow record (seller, new owner, handler) gating a claim's conversion.
  - Commodity: a custody-bearing asset with a lifecycle State and a properties hash.
  - Composition: an aggregate of two or more commodities held in custody.
  - Event: a committed, replayable fact about an asset.
*/
package domain
