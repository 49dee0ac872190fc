package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
	"github.com/noah-isme/pacs-worklist-api/internal/service"
	"github.com/noah-isme/pacs-worklist-api/pkg/config"
)

var (
	tokenUser   string
	tokenRole   string
	tokenEmail  string
	tokenSecret string
	tokenTTL    time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an access token for local testing",
	Long: `Sign an access token with the configured JWT secret. The secret and issuer are
read from the environment (JWT_SECRET, JWT_ISSUER) unless --secret is given.`,
	RunE: runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "User id (required)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", string(models.RoleRadiologist), "ADMIN, RADIOLOGIST or TECHNOLOGIST")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "Email claim")
	tokenCmd.Flags().StringVar(&tokenSecret, "secret", "", "Signing secret, overrides configuration")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", time.Hour, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired("user")
}

func runToken(cmd *cobra.Command, args []string) error {
	authCfg := service.AuthConfig{AccessTokenSecret: tokenSecret, AccessTokenExpiry: tokenTTL}
	if tokenSecret == "" {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		authCfg.AccessTokenSecret = cfg.JWT.Secret
		authCfg.Issuer = cfg.JWT.Issuer
	}

	auth := service.NewAuthService(nil, authCfg)
	token, expires, err := auth.IssueToken(service.Principal{
		UserID: tokenUser,
		Role:   models.UserRole(tokenRole),
		Email:  tokenEmail,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expires.Format(time.RFC3339))
	return nil
}
