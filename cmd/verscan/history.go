package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/verscan/internal/config"
	"github.com/nao1215/verscan/internal/database"
	"github.com/nao1215/verscan/internal/model"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [base-url]",
		Short: "Show the scan history of a target",
		Long: `Show the scan history of a target from the local database.

Every scan is recorded automatically. The history lists each scan's
identified version next to the newest published release at the time, so
a deployment's patching cadence is visible at a glance.

Examples:
  # List all targets with recorded scans
  verscan history --list-targets

  # Show the scan history of one target
  verscan history https://sso.example.com`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-targets", "l", false, "list all scanned targets instead of one target's history")

	return cmd
}

// runHistoryCmd is the entry point for the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listTargets, err := cmd.Flags().GetBool("list-targets")
	if err != nil {
		return err
	}

	var target string
	if !listTargets {
		if len(args) == 0 {
			return errors.New("base URL is required (use --list-targets to see available targets)")
		}
		normalized, err := model.NewTarget(args[0])
		if err != nil {
			return fmt.Errorf("invalid base URL: %w", err)
		}
		target = normalized.String()
	}

	db, err := database.Open(config.XDGDataDir(), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		_ = db.Close() //nolint:errcheck // Best effort close
	}()

	ctx := context.Background()
	if listTargets {
		return listScannedTargets(ctx, db)
	}
	return listScanHistory(ctx, db, target)
}

// listScannedTargets prints the registry of every scanned target.
func listScannedTargets(ctx context.Context, db *database.ScanDB) error {
	targets, err := db.ListScannedTargets(ctx)
	if err != nil {
		return fmt.Errorf("failed to list targets: %w", err)
	}

	if len(targets) == 0 {
		fmt.Println("No scanned targets found in the database.")
		fmt.Println("\nUse 'verscan scan <base-url>' to fingerprint a deployment.")
		return nil
	}

	fmt.Printf("Scanned targets (%d):\n\n", len(targets))
	fmt.Printf("  %-40s  %-6s  %-12s  %-12s  %s\n", "Target", "Scans", "Identified", "Latest", "Last Scanned")
	fmt.Printf("  %s\n", strings.Repeat("-", 90))
	for _, t := range targets {
		fmt.Printf("  %-40s  %-6d  %-12s  %-12s  %s\n",
			t.Target,
			t.ScanCount,
			valueOrDash(t.LastIdentified),
			valueOrDash(t.LastLatest),
			t.LastScanned.Format("2006-01-02 15:04:05"),
		)
	}
	fmt.Println("\nUse 'verscan history <base-url>' to see a target's scan history.")

	return nil
}

// listScanHistory prints the recorded scans for one target.
func listScanHistory(ctx context.Context, db *database.ScanDB, target string) error {
	history, err := db.GetScanHistoryWithMetadata(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to get scan history: %w", err)
	}

	if len(history) == 0 {
		fmt.Printf("No scan history found for %s\n", target)
		fmt.Println("\nUse 'verscan scan <base-url>' to fingerprint this deployment.")
		return nil
	}

	fmt.Printf("Scan history for %s (%d scans):\n\n", target, len(history))
	fmt.Printf("  %-6s  %-20s  %-12s  %-12s  %s\n", "ID", "Date", "Identified", "Latest", "Findings")
	fmt.Printf("  %s\n", strings.Repeat("-", 70))
	for _, meta := range history {
		fmt.Printf("  %-6d  %-20s  %-12s  %-12s  %s\n",
			meta.ID,
			meta.Timestamp.Format("2006-01-02 15:04:05"),
			valueOrDash(meta.IdentifiedVersion),
			valueOrDash(meta.LatestVersion),
			formatRiskSummary(meta.RiskSummary),
		)
	}
	fmt.Println("\nUse 'verscan compare <base-url>' to diff the two most recent scans.")
	fmt.Println("Use 'verscan compare <base-url> --with-scan-id <id>' to diff against a specific scan.")

	return nil
}
