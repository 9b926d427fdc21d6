package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"facegate/internal/container"
	"facegate/internal/domain/entity"
	"facegate/internal/infrastructure/storage"
)

// errRejected makes the process exit with status 2 after a negative verdict.
var errRejected = errors.New("verification rejected")

var (
	referencePath string
	probePath     string
	jsonOutput    bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Compare a reference photo with a live capture",
	RunE: func(cmd *cobra.Command, args []string) error {
		reference, err := os.ReadFile(referencePath)
		if err != nil {
			return fmt.Errorf("read reference: %w", err)
		}
		probe, err := os.ReadFile(probePath)
		if err != nil {
			return fmt.Errorf("read probe: %w", err)
		}

		c, err := container.New(cmd.Context(), cfg, log, storage.NewMemoryUserRepository())
		if err != nil {
			return err
		}
		defer c.Close()

		outcome, err := c.VerificationService.Verify(cmd.Context(), reference, probe)
		if err != nil {
			return err
		}

		if err := printOutcome(cmd, outcome); err != nil {
			return err
		}
		if !outcome.Verified() {
			return errRejected
		}
		return nil
	},
}

func init() {
	verifyCmd.Flags().StringVar(&referencePath, "reference", "", "reference photo (ID document)")
	verifyCmd.Flags().StringVar(&probePath, "probe", "", "live capture")
	verifyCmd.Flags().BoolVar(&jsonOutput, "json", false, "print the full result as JSON")
	_ = verifyCmd.MarkFlagRequired("reference")
	_ = verifyCmd.MarkFlagRequired("probe")
	rootCmd.AddCommand(verifyCmd)
}

type verifyResult struct {
	Verified bool           `json:"verified"`
	Result   entity.Outcome `json:"result"`
}

func printOutcome(cmd *cobra.Command, outcome entity.Outcome) error {
	out := cmd.OutOrStdout()
	if !jsonOutput {
		_, err := fmt.Fprintln(out, outcome.Text())
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(verifyResult{Verified: outcome.Verified(), Result: outcome})
}
