package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mlaoire/pvdispatch/core/model"
	"github.com/mlaoire/pvdispatch/pkg/export"
	"github.com/mlaoire/pvdispatch/pkg/summary"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <results.csv>",
	Short: "Summarize a previously exported schedule",
	Args:  cobra.ExactArgs(1),
	RunE:  summarize,
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}

func summarize(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open results: %w", err)
	}
	defer f.Close()

	res, err := export.ReadCSV(f)
	if err != nil {
		return fmt.Errorf("read results: %w", err)
	}
	step := model.DefaultStepMinutes
	if res.Steps() >= 2 {
		step = res.Times[1].Sub(res.Times[0]).Minutes()
	}
	return summary.Compute(res, step).Write(os.Stdout)
}
