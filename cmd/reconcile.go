package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory-reconciler/core/reconcile"
	"inventory-reconciler/feature/report"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the reconcile command
	organization string
	csvPath      string
	comparisons  string
	timeout      time.Duration
	upload       bool
	persist      bool
	strict       bool
	quiet        bool
)

// errIndeterminate makes --strict runs exit non-zero.
var errIndeterminate = errors.New("reconciliation is incomplete")

// reconcileCmd runs one reconciliation from the command line.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile device inventories of one organization",
	Long: `Collects the device inventory of an organization from the directory,
the RMM platform and the endpoint-protection console, then reports the
devices missing from each comparison.

A source that cannot be collected never counts as empty: the comparisons
depending on it are reported as indeterminate with their cause.

Examples:
  # Default comparisons, rendered in the terminal
  reconcile --organization "Contoso"

  # Write the CSV report and keep an audit trail
  reconcile --organization "Contoso" --csv contoso.csv --persist

  # Custom comparison set, failing when anything is indeterminate
  reconcile --organization "Contoso" --comparisons directory:rmm,directory:edr --strict`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVarP(&organization, "organization", "o", "", "Organization to reconcile (defaults to RECONCILE_ORGANIZATION)")
	reconcileCmd.Flags().StringVar(&csvPath, "csv", "", "Write the CSV report to this file")
	reconcileCmd.Flags().StringVar(&comparisons, "comparisons", "", "Comma-separated source:against pairs (default directory:rmm,rmm:endpoint_protection)")
	reconcileCmd.Flags().DurationVar(&timeout, "timeout", 0, "Per-source timeout (defaults to RECONCILE_TIMEOUT_SECONDS)")
	reconcileCmd.Flags().BoolVar(&upload, "upload", false, "Upload the CSV report to object storage")
	reconcileCmd.Flags().BoolVar(&persist, "persist", false, "Record the run in the report database")
	reconcileCmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when any comparison is indeterminate")
	reconcileCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not render the report in the terminal")

	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	cfg, l, err := bootstrap()
	if err != nil {
		return err
	}
	defer l.Sync()

	org := organization
	if org == "" {
		org = cfg.Reconcile.Organization
	}

	spec, err := buildSpec(cfg, l, comparisons, timeout)
	if err != nil {
		return err
	}

	var sinks report.MultiSink
	if !quiet {
		sinks = append(sinks, report.NewConsoleSink(cmd.OutOrStdout()))
	}
	if csvPath != "" {
		sinks = append(sinks, report.NewCSVSink(csvPath))
	}
	if upload {
		if !cfg.Storage.Enabled() {
			return fmt.Errorf("--upload requires STORAGE_ENDPOINT")
		}
		store, err := openReports(cfg, l)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}
		sinks = append(sinks, store)
	}
	if persist {
		if !cfg.Database.Enabled() {
			return fmt.Errorf("--persist requires DATABASE_DRIVER")
		}
		history, err := openHistory(cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		sinks = append(sinks, history)
	}

	runner, err := reconcile.NewRunner(spec, l)
	if err != nil {
		return err
	}

	// Ctrl+C cancels every in-flight source call
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := runner.Run(ctx, org)
	if err != nil {
		return err
	}

	if err := sinks.Write(ctx, result); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	summary := result.Summary()
	l.Info("Reconciliation finished",
		zap.String("run_id", result.RunID),
		zap.Int("comparisons", summary.Comparisons),
		zap.Int("indeterminate", summary.Indeterminate),
		zap.Int("rows", len(result.Rows())),
	)

	if strict && !result.Complete() {
		return fmt.Errorf("%w: %w", errIndeterminate, result.Indeterminate())
	}
	return nil
}
