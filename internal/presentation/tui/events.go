package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/tradecoin/pkg/domain"
	"github.com/muesli/termenv"
)

// EventLine formats one committed event on a single line, colored by ledger.
func EventLine(p termenv.Profile, e domain.Event) string {
	color := map[domain.Ledger]string{
		domain.LedgerTokenizer:   "#ca8a04",
		domain.LedgerCommodity:   "#16a34a",
		domain.LedgerComposition: "#2563eb",
	}[e.Ledger]

	head := p.String(fmt.Sprintf("#%-4d %-34s", e.Seq, e.Name)).Foreground(p.Color(color)).Bold()
	return fmt.Sprintf("%s %s", head, Describe(e))
}

// Describe summarizes the fields an event populates.
func Describe(e domain.Event) string {
	parts := []string{fmt.Sprintf("%s #%d", e.Ledger, e.AssetID)}
	if e.Name == domain.EventRoleGranted || e.Name == domain.EventRoleRevoked {
		parts = []string{fmt.Sprintf("%s on %s registry", e.Role, e.Registry)}
	}
	if e.Actor != "" {
		parts = append(parts, "by "+string(e.Actor))
	}
	if e.Counterparty != "" {
		parts = append(parts, "to "+string(e.Counterparty))
	}
	if e.Handler != "" {
		parts = append(parts, "handler "+string(e.Handler))
	}
	if e.Label != "" {
		parts = append(parts, fmt.Sprintf("%q", e.Label))
	}
	if e.Amount != 0 {
		parts = append(parts, strings.TrimSpace(fmt.Sprintf("%d %s", e.Amount, e.Unit)))
	}
	if e.State != nil {
		parts = append(parts, "state "+e.State.String())
	}
	if e.Paid != nil && *e.Paid {
		parts = append(parts, "paid")
	}
	if e.Location != nil {
		parts = append(parts, fmt.Sprintf("at (%d, %d) ±%d", e.Location.Latitude, e.Location.Longitude, e.Location.Radius))
	}
	if len(e.RelatedIDs) > 0 {
		parts = append(parts, fmt.Sprintf("related %v", e.RelatedIDs))
	}
	return strings.Join(parts, ", ")
}

// JourneyMarkdown renders the journey of one asset as a markdown table.
func JourneyMarkdown(ledger domain.Ledger, id uint64, events []domain.Event) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Journey of %s #%d\n\n", ledger, id)
	if len(events) == 0 {
		sb.WriteString("_No events recorded._\n")
		return sb.String()
	}
	sb.WriteString("| # | When | Event | Details |\n|---|---|---|---|\n")
	for _, e := range events {
		when := ""
		if !e.Timestamp.IsZero() {
			when = e.Timestamp.UTC().Format("2006-01-02 15:04:05")
		}
		details := strings.ReplaceAll(Describe(e), "|", "\\|")
		fmt.Fprintf(&sb, "| %d | %s | %s | %s |\n", e.Seq, when, e.Name, details)
	}
	return sb.String()
}
