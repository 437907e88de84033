package main

import (
	"fmt"
	"strconv"

	"github.com/aretw0/tradecoin/internal/cli"
	"github.com/aretw0/tradecoin/pkg/domain"
	"github.com/spf13/cobra"
)

var journeyCmd = &cobra.Command{
	Use:   "journey <tokenizer|commodity|composition> <id>",
	Short: "Print the history of one asset",
	Long: `Replays the committed events of one asset from the configured store.

Formats:
- markdown (default): a table, rendered when stdout is a terminal.
- mermaid: the provenance graph around the asset (graph TD).
- plain: one line per event.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ledger, ok := domain.ParseLedger(args[0])
		if !ok {
			return fmt.Errorf("unknown ledger %q", args[0])
		}
		id, err := strconv.ParseUint(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q: %w", args[1], err)
		}
		format, _ := cmd.Flags().GetString("format")
		switch cli.JourneyFormat(format) {
		case cli.JourneyMarkdown, cli.JourneyMermaid, cli.JourneyPlain:
		default:
			return fmt.Errorf("unknown format %q", format)
		}

		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		l, backend, err := cli.OpenLedger(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer backend.Close()

		journal := cli.LedgerJournal(l)
		if backend.Journal != nil {
			journal = backend.Journal
		}
		return cli.PrintJourney(cmd.Context(), cmd.OutOrStdout(), journal, ledger, id, cli.JourneyFormat(format))
	},
}

func init() {
	rootCmd.AddCommand(journeyCmd)
	journeyCmd.Flags().StringP("format", "f", string(cli.JourneyMarkdown), "Output format: markdown, mermaid or plain")
}
