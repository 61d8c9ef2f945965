package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wyfcoding/budget/config"
	"github.com/wyfcoding/budget/jwt"
)

// NewTokenCommand 创建 token 命令：用 server.auth_secret 签发写接口使用的 Bearer 令牌。
func NewTokenCommand() *cobra.Command {
	var (
		configPath string
		subject    string
		roles      []string
		ttl        time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token signed with server.auth_secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.Load(configPath)
			if err != nil {
				return err
			}
			token, err := jwt.GenerateToken(subject, roles, conf.Server.AuthSecret, conf.Server.Name, ttl)
			if err != nil {
				return fmt.Errorf("issue token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a TOML config file")
	cmd.Flags().StringVar(&subject, "subject", "operator", "token subject")
	cmd.Flags().StringSliceVar(&roles, "roles", []string{jwt.RoleWriter}, "granted roles ("+strings.Join([]string{jwt.RoleWriter, jwt.RoleAdmin}, ", ")+")")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime, 0 for no expiry")

	return cmd
}
