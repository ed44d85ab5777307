package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/xonecas/hashedit/internal/editop"
)

var (
	editPayloadFile  string
	editExpectedHash string
)

var editCmd = &cobra.Command{
	Use:   "edit <path>",
	Short: "Apply a batch of hash-anchored edits to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		var r io.Reader = os.Stdin
		if editPayloadFile != "" {
			f, err := os.Open(editPayloadFile)
			if err != nil {
				return fmt.Errorf("opening edits payload: %w", err)
			}
			defer f.Close()
			r = f
		}
		return runEdit(path, r, editExpectedHash)
	},
}

func runEdit(path string, r io.Reader, expectedHash string) error {
	var edits []editop.RawEdit
	if err := json.NewDecoder(r).Decode(&edits); err != nil {
		return fmt.Errorf("decoding edit batch: %w", err)
	}

	summary, err := eng.ExecuteEdit(path, edits, expectedHash)
	if err != nil {
		return err
	}
	if summary.SoftReject != "" {
		fmt.Println(summary.SoftReject)
		return nil
	}

	fmt.Printf("%s %s: %d edit(s) applied, line delta %+d\n", summary.Action, path, summary.EditsApplied, summary.LineDelta)
	for _, w := range summary.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
	return nil
}

func init() {
	editCmd.Flags().StringVar(&editPayloadFile, "edits", "", "path to a JSON file with the edit batch (default: read JSON array from stdin)")
	editCmd.Flags().StringVar(&editExpectedHash, "expected-hash", "", "optional file_hash from a prior read, to guard against stale edits")
}
