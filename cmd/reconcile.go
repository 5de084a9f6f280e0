package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prostaff-av/riskdash/internal/daterange"
	"github.com/prostaff-av/riskdash/internal/fetch"
	"github.com/prostaff-av/riskdash/internal/reconcile"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Repair stored risk levels that disagree with their scores",
	Long: `Scan opportunities for stored risk_level labels that no longer match
the tier their risk_score maps to (records touched by older tooling or
edited by hand), and rewrite the label.

Examples:
  riskdash reconcile --dry-run
  riskdash reconcile --range all --concurrency 8`,
	RunE: runReconcile,
}

func init() {
	f := reconcileCmd.Flags()
	f.String("range", "all", "date range: 0-30, 30-60, 60-90, all, custom")
	f.String("start", "", "custom range start (YYYY-MM-DD)")
	f.String("end", "", "custom range end (YYYY-MM-DD)")
	f.Bool("dry-run", false, "report stale records without patching them")
	f.Int("concurrency", 4, "maximum concurrent updates")

	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := initEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	client, err := e.requireClient()
	if err != nil {
		return err
	}

	selector, _ := cmd.Flags().GetString("range")
	var customStart, customEnd *time.Time
	if s, _ := cmd.Flags().GetString("start"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return fmt.Errorf("invalid --start date %q", s)
		}
		customStart = &t
	}
	if s, _ := cmd.Flags().GetString("end"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return fmt.Errorf("invalid --end date %q", s)
		}
		customEnd = &t
	}
	window, err := daterange.Resolve(selector, time.Now(), customStart, customEnd)
	if err != nil {
		return err
	}

	raw, err := fetch.FetchAll(ctx, fetch.ListPager(client, window.StartDate(), window.EndDate(), cfg.Fetch.PerPage), cfg.Fetch.PerPage, nil)
	if err != nil {
		return err
	}

	stale := reconcile.FindStale(raw)
	if len(stale) == 0 {
		fmt.Println("All risk levels are consistent.")
		return nil
	}

	fmt.Printf("%d stale record(s):\n", len(stale))
	for _, s := range stale {
		stored := s.Stored
		if stored == "" {
			stored = "(none)"
		}
		fmt.Printf("  %d %-40s %s -> %s\n", s.ID, s.Subject, stored, s.Want)
	}

	if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
		fmt.Println("\nDry run, nothing patched.")
		return nil
	}

	concurrency, _ := cmd.Flags().GetInt("concurrency")
	n, err := reconcile.Run(ctx, client, stale, concurrency)
	if err != nil {
		return err
	}

	zap.L().Info("reconcile complete", zap.Int("repaired", n))
	fmt.Printf("\nRepaired %d record(s).\n", n)
	return nil
}
