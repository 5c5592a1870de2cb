package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"storefront/internal/domain/entity"
	"storefront/internal/infrastructure/firebase"
)

var (
	tokenUID   string
	tokenEmail string
	tokenRole  string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development bearer token",
	Long: `token signs an HS256 token with JWT_SECRET that the catalog API accepts
when it runs with ENVIRONMENT=development and no Firebase project.`,
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringVar(&tokenUID, "uid", "", "User id")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "User email")
	tokenCmd.Flags().StringVar(&tokenRole, "role", entity.RoleCustomer, "admin or customer")
	tokenCmd.MarkFlagRequired("uid")
}

func runToken(cmd *cobra.Command, args []string) error {
	if !cfg.IsDevelopment() {
		return fmt.Errorf("development tokens are only available with ENVIRONMENT=development")
	}
	if tokenRole != entity.RoleAdmin && tokenRole != entity.RoleCustomer {
		return fmt.Errorf("invalid role %q", tokenRole)
	}

	issuer := firebase.NewDevTokenIssuer(cfg.JWTSecret, time.Duration(cfg.JWTExpiry)*time.Second)
	token, err := issuer.GenerateToken(tokenUID, tokenEmail, tokenRole)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
