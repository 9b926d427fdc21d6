package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"facegate/internal/infrastructure/postgres"
)

var auditLimit int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "List recent verification decisions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if auditLimit < 1 {
			return fmt.Errorf("--limit must be at least 1, got %d", auditLimit)
		}
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required")
		}

		store, err := postgres.NewAuditStore(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer store.Close()

		records, err := store.Recent(cmd.Context(), auditLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(out, "No verifications recorded.")
			return nil
		}

		w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tCREATED\tVERIFIED\tREASON\tAGREE\tAVG DIST\tELAPSED")
		fmt.Fprintln(w, "--\t-------\t--------\t------\t-----\t--------\t-------")
		for _, r := range records {
			reason := string(r.Reason)
			if r.Role != "" {
				reason += " (" + string(r.Role) + ")"
			}
			fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%d/%d\t%.3f\t%s\n",
				r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04:05"), r.Verified, reason,
				r.AgreeCount, r.TotalModels, r.AverageDistance, r.Elapsed)
		}
		return w.Flush()
	},
}

func init() {
	auditCmd.Flags().IntVar(&auditLimit, "limit", 20, "number of records to show")
	rootCmd.AddCommand(auditCmd)
}
