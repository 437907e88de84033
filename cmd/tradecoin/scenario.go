package main

import (
	"fmt"

	"github.com/aretw0/tradecoin/internal/cli"
	"github.com/aretw0/tradecoin/pkg/dsl"
	"github.com/aretw0/tradecoin/pkg/registry"
	"github.com/spf13/cobra"
)

var scenarioCmd = &cobra.Command{
	Use:   "scenario <file.yaml>...",
	Short: "Run scripted operations against the ledger",
	Long: `Runs each step of a YAML scenario as the named caller and checks its outcome.
A step with expect_error passes only when the operation is rejected with that reason.

The ledger is opened from the configured store, so scenarios against a file, sqlite or
redis store leave their effects behind.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup(cmd)
		if err != nil {
			return err
		}
		l, backend, err := cli.OpenLedger(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer backend.Close()

		ops := registry.ForLedger(l)
		failed := 0
		for _, path := range args {
			sc, err := dsl.Load(path)
			if err != nil {
				return err
			}
			report, err := cli.RunScenario(cmd.Context(), ops, l, sc, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			failed += report.Failed
		}
		if failed > 0 {
			return fmt.Errorf("%d steps failed", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scenarioCmd)
}
