package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/tradecoin"
	"github.com/aretw0/tradecoin/internal/presentation/graph"
	"github.com/aretw0/tradecoin/internal/presentation/tui"
	"github.com/aretw0/tradecoin/pkg/domain"
	"github.com/aretw0/tradecoin/pkg/ports"
)

// JourneyFormat selects how PrintJourney renders.
type JourneyFormat string

const (
	JourneyMarkdown JourneyFormat = "markdown"
	JourneyMermaid  JourneyFormat = "mermaid"
	JourneyPlain    JourneyFormat = "plain"
)

// LedgerJournal reads the journal of an in-process ledger.
func LedgerJournal(l *tradecoin.Ledger) ports.Journal {
	return ledgerJournal{l}
}

type ledgerJournal struct {
	l *tradecoin.Ledger
}

func (j ledgerJournal) EventsSince(_ context.Context, seq uint64) ([]domain.Event, error) {
	return j.l.Events(seq), nil
}

func (j ledgerJournal) Journey(_ context.Context, l domain.Ledger, id uint64) ([]domain.Event, error) {
	return j.l.Journey(l, id), nil
}

// PrintJourney writes the journey of one asset. Markdown is rendered with glamour
// when stdout is a terminal.
func PrintJourney(ctx context.Context, w io.Writer, j ports.Journal, ledger domain.Ledger, id uint64, format JourneyFormat) error {
	if format == JourneyMermaid {
		all, err := j.EventsSince(ctx, 0)
		if err != nil {
			return fmt.Errorf("error reading journal: %w", err)
		}
		_, err = io.WriteString(w, graph.GenerateMermaid(all, &graph.Asset{Ledger: ledger, ID: id}))
		return err
	}

	events, err := j.Journey(ctx, ledger, id)
	if err != nil {
		return fmt.Errorf("error reading journal: %w", err)
	}
	if format == JourneyPlain {
		for _, e := range events {
			if _, err := fmt.Fprintf(w, "%d %s %s\n", e.Seq, e.Name, tui.Describe(e)); err != nil {
				return err
			}
		}
		return nil
	}

	md := tui.JourneyMarkdown(ledger, id, events)
	if tui.IsTerminal() {
		rendered, err := tui.NewRenderer()(md)
		if err == nil {
			md = rendered
		}
	}
	_, err = io.WriteString(w, md)
	return err
}
