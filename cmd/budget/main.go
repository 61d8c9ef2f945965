// Package main 是账本命令行工具 budget 的入口。
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wyfcoding/budget/cmd/budget/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "budget",
		Short: "Range-indexed budget ledger",
		Long: `budget keeps per-day income and spending over a fixed calendar horizon
and answers net-income queries for any date range in logarithmic time.

Commands:
  run       Execute a text request stream and print ComputeIncome results
  serve     Serve the ledger over HTTP
  token     Issue a bearer token for the HTTP write endpoints`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewRunCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewTokenCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
