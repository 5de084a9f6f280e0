package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/prostaff-av/riskdash/internal/pipeline"
	"github.com/prostaff-av/riskdash/internal/scoring"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch opportunities and print the tier summary",
	Long: `Fetch opportunities for a date range and print per-tier counts and
charge totals. Falls back to the cached snapshot or the built-in demo
dataset when the API is unreachable.

Examples:
  # Next 30 days (default)
  riskdash fetch

  # A later window
  riskdash fetch --range 60-90

  # Custom window, unreviewed only
  riskdash fetch --range custom --start 2026-04-01 --end 2026-06-30 --review not_reviewed`,
	RunE: runFetch,
}

func init() {
	f := fetchCmd.Flags()
	f.String("range", "0-30", "date range: 0-30, 30-60, 60-90, all, custom")
	f.String("start", "", "custom range start (YYYY-MM-DD)")
	f.String("end", "", "custom range end (YYYY-MM-DD)")
	f.String("review", "", "review filter: all, reviewed, not_reviewed")
	f.String("mitigation", "", "mitigation filter: all, none, partial, complete, incomplete")
	f.Bool("needs-reassessment", false, "only opportunities whose data changed since scoring")

	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e, err := initEnv(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	filters, err := filtersFromFlags(cmd, time.Now())
	if err != nil {
		return err
	}

	view, err := e.Board.View(ctx, filters)
	if err != nil {
		return err
	}

	printTierSummary(view.Result, string(view.Source), view.FetchedAt)
	return nil
}

var printer = message.NewPrinter(language.English)

func printTierSummary(res pipeline.Result, source string, fetchedAt time.Time) {
	fmt.Printf("Source: %s (fetched %s)\n\n", source, fetchedAt.Format(time.RFC3339))
	fmt.Printf("%-10s %-30s %8s %16s\n", "Tier", "Approval", "Count", "Total charge")
	fmt.Println(strings.Repeat("-", 68))
	for _, b := range res.Buckets {
		printer.Printf("%-10s %-30s %8d %16.2f\n",
			string(b.Tier), string(scoring.ApprovalForTier(b.Tier)), b.Count, b.TotalCharge)
	}
	fmt.Println(strings.Repeat("-", 68))
	printer.Printf("%-10s %-30s %8d %16.2f\n", "TOTAL", "", res.TotalCount, res.TotalCharge)
}
