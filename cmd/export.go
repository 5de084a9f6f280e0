package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prostaff-av/riskdash/internal/report"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the tiered risk view as an XLSX workbook",
	Long: `Export the filtered dashboard view to an XLSX workbook with a summary
sheet and one sheet per risk tier.

Examples:
  riskdash export --output risk.xlsx
  riskdash export --range all --mitigation incomplete --output open-risks.xlsx`,
	RunE: runExport,
}

func init() {
	f := exportCmd.Flags()
	f.String("range", "0-30", "date range: 0-30, 30-60, 60-90, all, custom")
	f.String("start", "", "custom range start (YYYY-MM-DD)")
	f.String("end", "", "custom range end (YYYY-MM-DD)")
	f.String("review", "", "review filter: all, reviewed, not_reviewed")
	f.String("mitigation", "", "mitigation filter: all, none, partial, complete, incomplete")
	f.Bool("needs-reassessment", false, "only opportunities whose data changed since scoring")
	f.String("output", "risk-report.xlsx", "output file path")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
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

	output, _ := cmd.Flags().GetString("output")
	if err := report.Write(view, output); err != nil {
		return err
	}

	zap.L().Info("report written",
		zap.String("path", output),
		zap.String("source", string(view.Source)),
		zap.Int("opportunities", view.Result.TotalCount),
	)
	fmt.Printf("Wrote %s (%d opportunities, source: %s)\n", output, view.Result.TotalCount, view.Source)
	return nil
}
