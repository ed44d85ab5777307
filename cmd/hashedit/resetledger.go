package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetLedgerCmd = &cobra.Command{
	Use:   "reset-ledger",
	Short: "Clear the missing-lines failure ledger (used between independent sessions)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng.ResetFailureLedger()
		fmt.Println("failure ledger reset")
		return nil
	},
}
