package cli

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"tablehub/internal/middleware"
)

func newTokenCmd(e *env) *cobra.Command {
	var userID int64
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token --user ID",
		Short: "Mint an HS256 bearer token for local development",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := mustPositive("user", userID); err != nil {
				return err
			}
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cfg.Auth.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set; tokens for an OIDC issuer cannot be minted here")
			}
			token, err := middleware.SignHS256(cfg.Auth.JWTSecret, cfg.Auth.UserClaim, userID, ttl)
			if err != nil {
				return err
			}
			expires := time.Now().Add(ttl).UTC().Format(time.RFC3339)
			return render(cmd, e, map[string]any{"token": token, "expiresAt": expires}, func() [][2]string {
				return [][2]string{{"token", token}, {"expires", expires}}
			})
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "user id carried by the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
