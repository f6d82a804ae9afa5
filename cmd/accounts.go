/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/accountsvc/apiserver/internal/auth"
	"github.com/accountsvc/apiserver/internal/db"
	"github.com/accountsvc/apiserver/internal/ids"
	"github.com/accountsvc/apiserver/internal/services"
	"github.com/accountsvc/apiserver/internal/storage"
	"github.com/accountsvc/apiserver/internal/store"
	"github.com/accountsvc/apiserver/types"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var (
	exportKey    string
	promoteEmail string
)

// accountsCmd groups operator tasks that act on stored accounts.
var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Operator tasks for stored accounts",
}

var accountsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Upload a JSON snapshot of all accounts to object storage",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		conn, err := db.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer conn.Close()

		objects, err := storage.Open(ctx, cfg.Storage)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer objects.Close()

		accounts := services.NewAccountService(
			store.NewAccountRepository(conn),
			ids.NewUUIDGenerator(),
			auth.NewBcryptHasher(bcrypt.DefaultCost),
			auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
		)

		result, err := services.NewExportService(accounts, objects).Export(ctx, exportKey)
		if err != nil {
			return err
		}
		logger.Info().
			Str("bucket", objects.Bucket()).
			Str("key", result.Key).
			Int("accounts", result.Accounts).
			Int64("bytes", result.Bytes).
			Msg("accounts exported")
		return nil
	},
}

var accountsPromoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Grant the ADMIN role to an existing account",
	RunE: func(cmd *cobra.Command, args []string) error {
		email := strings.TrimSpace(promoteEmail)
		if email == "" {
			return errors.New("--email is required")
		}

		cfg, logger, err := setup()
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		conn, err := db.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer conn.Close()

		if err := store.NewAccountRepository(conn).SetRole(ctx, email, types.RoleAdmin); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no account registered for %s", email)
			}
			return err
		}
		logger.Info().Str("email", email).Msg("account promoted to ADMIN")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(accountsCmd)
	accountsCmd.AddCommand(accountsExportCmd, accountsPromoteCmd)

	accountsExportCmd.Flags().StringVar(&exportKey, "key", "", "object key (defaults to exports/accounts-<timestamp>.json)")
	accountsPromoteCmd.Flags().StringVar(&promoteEmail, "email", "", "email of the account to promote")
}
