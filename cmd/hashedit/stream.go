package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/xonecas/hashedit/internal/hashline"
)

var (
	streamStartLine     int
	streamMaxChunkLines int
	streamMaxChunkBytes int
)

var streamCmd = &cobra.Command{
	Use:   "stream [path]",
	Short: "Stream hashline-tagged chunks of stdin or a file, without loading it whole",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var r io.Reader = os.Stdin
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening %s: %w", args[0], err)
			}
			defer f.Close()
			r = f
		}

		opts := hashline.StreamOptions{
			StartLine:     streamStartLine,
			MaxChunkLines: streamMaxChunkLines,
			MaxChunkBytes: streamMaxChunkBytes,
		}
		return hashline.StreamRecords(r, opts, func(chunk string) bool {
			fmt.Print(chunk)
			return true
		})
	},
}

func init() {
	streamCmd.Flags().IntVar(&streamStartLine, "start-line", 1, "1-based line number of the first record")
	streamCmd.Flags().IntVar(&streamMaxChunkLines, "max-chunk-lines", 0, "cap on lines per emitted chunk (0 = no limit)")
	streamCmd.Flags().IntVar(&streamMaxChunkBytes, "max-chunk-bytes", 0, "cap on bytes per emitted chunk (0 = no limit)")
}
