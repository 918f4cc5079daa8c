package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"listing-mirror/core/reconcile"
	"listing-mirror/feature/mirror"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dryRunSync        bool
	allowTeardownSync bool
	concurrencySync   int
	jsonOutput        bool
)

// syncCmd runs one mirror pass.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Mirror the remote listing into the bucket once",
	Long: `Reads the remote directory listing and the bucket, deletes withdrawn and
changed objects, then uploads new and changed files.

Examples:
  # Apply
  listing-mirror sync

  # Show what would change
  listing-mirror sync --dry-run

  # Let an empty listing empty the mirror
  listing-mirror sync --allow-teardown`,
	RunE: runSync,
}

// planCmd prints the pending plan.
var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the actions the next sync would take",
	RunE: func(cmd *cobra.Command, args []string) error {
		dryRunSync = true
		return runSync(cmd, args)
	},
}

func init() {
	syncCmd.Flags().BoolVar(&dryRunSync, "dry-run", false, "Compute the plan without applying it")
	syncCmd.Flags().BoolVar(&allowTeardownSync, "allow-teardown", false, "Allow an empty listing to delete every mirrored object")
	syncCmd.Flags().IntVar(&concurrencySync, "concurrency", 0, "Override the configured action concurrency")
	for _, c := range []*cobra.Command{syncCmd, planCmd} {
		c.Flags().BoolVar(&jsonOutput, "json", false, "Print the run as JSON")
	}

	RootCmd.AddCommand(syncCmd)
	RootCmd.AddCommand(planCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	s, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer s.logger.Sync()

	svc, err := s.mirrorService()
	if err != nil {
		return err
	}

	run, err := svc.Sync(ctx, mirror.SyncOptions{
		DryRun:        dryRunSync,
		AllowTeardown: allowTeardownSync,
		Concurrency:   concurrencySync,
	})
	if errors.Is(err, mirror.ErrTeardownRefused) {
		printPlanReport(s.logger, run.Plan)
		return fmt.Errorf("%w (pass --allow-teardown to apply)", err)
	}
	if err != nil {
		return fmt.Errorf("mirror run failed: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}

	printPlanReport(s.logger, run.Plan)
	for _, a := range run.Anomalies {
		s.logger.Warn("Record anomaly",
			zap.String("kind", string(a.Kind)),
			zap.String("key", a.Key),
			zap.Int("index", a.Index),
			zap.String("detail", a.Detail))
	}

	if run.DryRun {
		s.logger.Info("Dry-run mode: No changes were made.")
		return nil
	}

	printRunReport(s.logger, run.Report)
	if !run.Converged() {
		return fmt.Errorf("%d of %d actions failed", run.Report.Summary.Failed, run.Report.Summary.Attempted)
	}
	return nil
}

// printPlanReport prints a formatted plan summary and a sample of actions.
func printPlanReport(l *zap.Logger, plan *reconcile.Plan) {
	s := plan.Summary

	l.Info("Mirror plan",
		zap.Int("source_items", s.SourceItems),
		zap.Int("store_items", s.StoreItems),
		zap.Int("withdrawn", s.Withdrawn),
		zap.Int("changed", s.Changed),
		zap.Int("new", s.New),
		zap.Int("unchanged", s.Unchanged),
	)

	maxShow := 10
	if len(plan.Actions) < maxShow {
		maxShow = len(plan.Actions)
	}
	for _, action := range plan.Actions[:maxShow] {
		l.Info("Planned action",
			zap.String("type", string(action.Type)),
			zap.String("key", action.Key),
			zap.String("reason", action.Reason),
		)
	}
	if len(plan.Actions) > maxShow {
		l.Info("Additional actions not shown", zap.Int("count", len(plan.Actions)-maxShow))
	}
}

// printRunReport prints execution totals and every failure.
func printRunReport(l *zap.Logger, report *reconcile.Report) {
	l.Info("Mirror run report",
		zap.Int("attempted", report.Summary.Attempted),
		zap.Int("succeeded", report.Summary.Succeeded),
		zap.Int("failed", report.Summary.Failed),
	)
	for _, item := range report.Failures() {
		l.Error("Action failed",
			zap.String("type", string(item.Action)),
			zap.String("key", item.Key),
			zap.String("stage", string(item.Stage)),
			zap.String("reason", item.Reason),
		)
	}
}
