package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory-reconciler/core/reconcile"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var sourcesOrganization string

// sourcesCmd checks that every configured source can be reached for an organization.
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Check that every configured source answers for an organization",
	Long: `Authenticates against every configured source and resolves the
organization in each of them, without computing any comparison.`,
	RunE: runSources,
}

func init() {
	sourcesCmd.Flags().StringVarP(&sourcesOrganization, "organization", "o", "", "Organization to resolve (defaults to RECONCILE_ORGANIZATION)")
	RootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg, l, err := bootstrap()
	if err != nil {
		return err
	}
	defer l.Sync()

	org := sourcesOrganization
	if org == "" {
		org = cfg.Reconcile.Organization
	}
	if org == "" {
		return reconcile.ErrEmptyOrganization
	}

	adapters, err := buildAdapters(cfg, l)
	if err != nil {
		return err
	}
	if len(adapters) == 0 {
		return fmt.Errorf("no source is configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	perSource := cfg.Reconcile.Timeout()
	out := cmd.OutOrStdout()
	failed := 0

	for _, a := range adapters {
		err := checkSource(ctx, a, org, perSource, func(devices int) {
			fmt.Fprintf(out, "ok   %-20s %d devices\n", a.Kind().DisplayName(), devices)
		})
		if err != nil {
			failed++
			fmt.Fprintf(out, "fail %-20s %s: %v\n", a.Kind().DisplayName(), reconcile.Classify(err), err)
			l.Warn("Source check failed", zap.String("source", a.Name()), zap.Error(err))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d sources failed", failed, len(adapters))
	}
	return nil
}

func checkSource(ctx context.Context, a reconcile.Adapter, org string, limit time.Duration, ok func(devices int)) error {
	if limit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, limit)
		defer cancel()
	}

	inv, err := a.LoadInventory(ctx, org)
	if err != nil {
		return err
	}
	ok(inv.Identities().Len())
	return nil
}
