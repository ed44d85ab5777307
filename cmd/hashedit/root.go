package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xonecas/hashedit/internal/config"
	"github.com/xonecas/hashedit/internal/engine"
)

var (
	cfgFile  string
	rootFlag string
	eng      *engine.Engine
)

var rootCmd = &cobra.Command{
	Use:   "hashedit",
	Short: "hashedit — a hash-anchored, line-level file editor for model-driven edits",
	Long:  "A deterministic, stale-safe editing engine that identifies lines by a short content hash instead of exact text, so a caller can apply targeted edits without reproducing whole files.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if rootFlag != "" {
			cfg.Engine.ProjectRoot = rootFlag
		}
		eng = engine.New(cfg)
		return nil
	},
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (TOML); unset uses built-in defaults")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "project root to bound path resolution (default: working directory)")

	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(streamCmd)
	rootCmd.AddCommand(resetLedgerCmd)
}
