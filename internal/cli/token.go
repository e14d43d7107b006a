package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"casr-tracker/internal/config"
	"casr-tracker/internal/utils"
)

func addToken(topLevel *cobra.Command) {
	var (
		username string
		role     string
		tenant   string
		secret   string
		ttl      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a gateway token for local testing.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				cfg, err := config.Load("")
				if err != nil {
					return err
				}
				secret = cfg.JWTSecret
			}
			if secret == "" {
				return errors.New("no secret: pass --secret or set JWT_SECRET")
			}
			tok, err := utils.GenerateToken([]byte(secret), username, role, tenant, ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tok)
			return err
		},
	}
	cmd.Flags().StringVar(&username, "user", "", "username claim")
	cmd.Flags().StringVar(&role, "role", "member", "role claim: manager or member")
	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant claim")
	cmd.Flags().StringVar(&secret, "secret", "", "HS256 secret (default: JWT_SECRET)")
	cmd.Flags().DurationVar(&ttl, "ttl", 8*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("tenant")
	topLevel.AddCommand(cmd)
}
