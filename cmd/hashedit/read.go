package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xonecas/hashedit/internal/fsread"
)

var (
	readLimit      int
	readOffset     int
	readAroundLine int
	readBefore     int
	readAfter      int
	readIgnore     bool
)

var readCmd = &cobra.Command{
	Use:   "read <path>",
	Short: "Read a file's hashline-tagged content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		res, err := eng.ReadFileHashlined(path, fsread.WindowOptions{
			Limit:            readLimit,
			Offset:           readOffset,
			AroundLine:       readAroundLine,
			Before:           readBefore,
			After:            readAfter,
			RespectGitIgnore: readIgnore,
		})
		if err != nil {
			return err
		}

		fmt.Println(res.NumberedContent)
		fmt.Printf("\n-- lines %d-%d of %d, file_hash=%s, truncated=%v\n", res.StartLine, res.EndLine, res.TotalLines, res.FileHash, res.Truncated)
		return nil
	},
}

func init() {
	readCmd.Flags().IntVar(&readLimit, "limit", 0, "maximum lines to return (default 2000)")
	readCmd.Flags().IntVar(&readOffset, "offset", 0, "0-based line offset to start from")
	readCmd.Flags().IntVar(&readAroundLine, "around-line", 0, "center the window on this line instead of offset/limit")
	readCmd.Flags().IntVar(&readBefore, "before", 0, "lines of context before --around-line")
	readCmd.Flags().IntVar(&readAfter, "after", 0, "lines of context after --around-line")
	readCmd.Flags().BoolVar(&readIgnore, "respect-gitignore", true, "skip files excluded by layered ignore rules")
}
