package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jonathan/hiring-tracker/internal/db"
	"github.com/jonathan/hiring-tracker/internal/types"
	"github.com/spf13/cobra"
)

var (
	adminName     string
	adminEmail    string
	adminPassword string
)

// Staff accounts are created by admins over the API, so the first admin comes from here.
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin account",
	RunE:  runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().StringVar(&adminName, "name", "", "Display name (required)")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "Login email (required)")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "Password, at least 8 characters (required)")
	_ = createAdminCmd.MarkFlagRequired("name")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(createAdminCmd)
}

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	req := &types.CreateStaffRequest{
		Name:     adminName,
		Email:    adminEmail,
		Password: adminPassword,
		Role:     string(types.RoleAdmin),
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid admin: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	passwords, err := cfg.Passwords()
	if err != nil {
		return err
	}
	hash, err := passwords.HashPassword(req.Password)
	if err != nil {
		return err
	}

	ctx := context.Background()
	database, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	id, err := database.CreateUser(ctx, strings.TrimSpace(req.Name), email, "", types.RoleAdmin, hash)
	if errors.Is(err, db.ErrDuplicate) {
		return fmt.Errorf("an account with email %s already exists", email)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", email, id)
	return nil
}
