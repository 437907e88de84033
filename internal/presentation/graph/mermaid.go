package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/tradecoin/pkg/domain"
)

// Asset names one asset across the three id spaces.
type Asset struct {
	Ledger domain.Ledger
	ID     uint64
}

func (a Asset) nodeID() string {
	return sanitizeMermaidID(fmt.Sprintf("%s-%d", a.Ledger, a.ID))
}

// GenerateMermaid produces a Mermaid flowchart of asset provenance from the event log.
// It applies semantic styling:
// - Claim: [/Parallelogram/]
// - Commodity: [Rectangle]
// - Composition: [[Subroutine]]
// Burned assets get the "burned" class and focus, if set, the "current" class.
func GenerateMermaid(events []domain.Event, focus *Asset) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	seen := make(map[Asset]bool)
	burned := make(map[Asset]bool)
	node := func(a Asset, label string) {
		if seen[a] {
			return
		}
		seen[a] = true
		opener, closer := "[", "]"
		switch a.Ledger {
		case domain.LedgerTokenizer:
			opener, closer = "[/", "/]"
		case domain.LedgerComposition:
			opener, closer = "[[", "]]"
		}
		if label == "" {
			label = fmt.Sprintf("%s #%d", a.Ledger, a.ID)
		} else {
			label = fmt.Sprintf("%s #%d %s", a.Ledger, a.ID, strings.ReplaceAll(label, "\"", "'"))
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", a.nodeID(), opener, label, closer))
	}
	edge := func(from, to Asset, arrow string) {
		sb.WriteString(fmt.Sprintf("    %s %s %s\n", from.nodeID(), arrow, to.nodeID()))
	}

	for _, e := range events {
		subject := Asset{Ledger: e.Ledger, ID: e.AssetID}
		switch e.Name {
		case domain.EventMintToken:
			node(subject, e.Label)
		case domain.EventMintCommodity:
			node(subject, e.Label)
			for _, claim := range e.RelatedIDs {
				from := Asset{Ledger: domain.LedgerTokenizer, ID: claim}
				node(from, "")
				edge(from, subject, "-- mint -->")
			}
		case domain.EventSplitCommodity:
			node(subject, e.Label)
			for _, child := range e.RelatedIDs {
				to := Asset{Ledger: domain.LedgerCommodity, ID: child}
				node(to, "")
				edge(subject, to, "-- split -->")
			}
		case domain.EventBatchCommodities:
			node(subject, e.Label)
			for _, input := range e.RelatedIDs {
				from := Asset{Ledger: domain.LedgerCommodity, ID: input}
				node(from, "")
				edge(from, subject, "-- batch -->")
			}
		case domain.EventMintComposition, domain.EventAppendCommodityToComposition:
			node(subject, e.Label)
			for _, member := range e.RelatedIDs {
				from := Asset{Ledger: domain.LedgerCommodity, ID: member}
				node(from, "")
				edge(from, subject, "-.->")
			}
		case domain.EventRemoveCommodityFromComposition, domain.EventDecomposition:
			for _, member := range e.RelatedIDs {
				to := Asset{Ledger: domain.LedgerCommodity, ID: member}
				node(to, "")
				edge(subject, to, "-. released .->")
			}
		case domain.EventBurnToken, domain.EventCommodityOutOfChain, domain.EventBurnComposition:
			burned[subject] = true
		}
	}

	if len(burned) > 0 || focus != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef burned fill:#eeeeee,stroke:#9e9e9e,stroke-dasharray:4,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		for _, e := range events {
			a := Asset{Ledger: e.Ledger, ID: e.AssetID}
			if burned[a] && seen[a] {
				sb.WriteString(fmt.Sprintf("    class %s burned;\n", a.nodeID()))
				delete(burned, a)
			}
		}
		if focus != nil && seen[*focus] {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", focus.nodeID()))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
