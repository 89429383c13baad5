package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mlaoire/pvdispatch/app"
	"github.com/mlaoire/pvdispatch/config"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "pvdispatch",
	Short: "Cost-optimal PV/battery/grid dispatch",
	Long: `pvdispatch computes the cost-optimal minute-by-minute dispatch of
electricity among a solar array, a battery, a household load and a grid
connection over a finite horizon, formulated as a mixed-integer linear
program.`,
	RunE: run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config.yaml", "configuration file")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if _, err := app.Run(ctx, cfg); err != nil {
		return err
	}
	return nil
}
