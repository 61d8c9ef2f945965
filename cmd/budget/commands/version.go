// Package commands 实现 budget 命令行的各个子命令。
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// 构建信息，通过 -ldflags "-X github.com/wyfcoding/budget/cmd/budget/commands.Version=..." 注入。
var (
	Version = "dev"
	Commit  = "none"
)

// NewVersionCommand 创建 version 命令。
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "budget %s (commit: %s)\n", Version, Commit)
		},
	}
}
