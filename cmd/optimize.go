package cmd

import (
	"github.com/spf13/cobra"
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize",
	Short: "Run the dispatch optimization",
	RunE:  run,
}

func init() {
	rootCmd.AddCommand(optimizeCmd)
}
