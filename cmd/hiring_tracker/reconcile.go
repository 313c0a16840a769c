package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/hiring-tracker/internal/db"
	"github.com/jonathan/hiring-tracker/internal/reconcile"
	"github.com/spf13/cobra"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Repair drifted projection tables once and print what changed",
	RunE:  runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := context.Background()
	database, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	report, err := reconcile.NewRunner(database, 0).RunOnce(ctx)
	if perr := printReport(cmd, report); perr != nil {
		return perr
	}
	return err
}

func printReport(cmd *cobra.Command, report db.RepairReport) error {
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
