package main

import (
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/prostaff-av/riskdash/internal/assess"
	"github.com/prostaff-av/riskdash/internal/catalog"
	"github.com/prostaff-av/riskdash/internal/model"
	"github.com/prostaff-av/riskdash/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Compute a risk score from factor selections",
	Long: `Compute the weighted risk score, tier, and approval authority for a
set of factor selections. Each factor takes a level from 1 to 5.

Examples:
  # List the factors and their scales
  riskdash score --list

  # Score a full selection
  riskdash score --set project_novelty=4 --set technical_complexity=5 \
    --set resource_utilization=3 --set client_sophistication=2 \
    --set budget_size=4 --set timeframe_pressure=3 \
    --set team_experience=2 --set subhire_availability=3

  # Start from all-midpoints and override a few factors
  riskdash score --defaults --set technical_complexity=5

  # Save the assessment to an opportunity
  riskdash score --defaults --save --id 1234 --reviewed --notes "walked site with client"`,
	RunE: runScoreCmd,
}

func init() {
	f := scoreCmd.Flags()
	f.Bool("list", false, "list factors, weights, and scale levels")
	f.StringArray("set", nil, "factor selection as key=level (repeatable)")
	f.Bool("defaults", false, "start from the midpoint level for every factor")
	f.Bool("save", false, "save the assessment to Current RMS")
	f.Int64("id", 0, "opportunity id to save to (required with --save)")
	f.Bool("reviewed", false, "mark the assessment as reviewed")
	f.Int("mitigation", 0, "mitigation status: 0=none, 1=partial, 2=complete")
	f.String("notes", "", "mitigation notes")

	rootCmd.AddCommand(scoreCmd)
}

func runScoreCmd(cmd *cobra.Command, _ []string) error {
	if list, _ := cmd.Flags().GetBool("list"); list {
		printFactorCatalog()
		return nil
	}

	selection, err := selectionFromFlags(cmd)
	if err != nil {
		return err
	}

	a, err := scoring.Compute(selection)
	if err != nil {
		return err
	}

	fmt.Printf("Score:    %.2f / 5\n", a.Score)
	fmt.Printf("Tier:     %s\n", a.Tier)
	fmt.Printf("Approval: %s\n", a.Approval)

	save, _ := cmd.Flags().GetBool("save")
	if !save {
		return nil
	}

	id, _ := cmd.Flags().GetInt64("id")
	if id <= 0 {
		return eris.New("score: --save requires --id")
	}
	mitigation, _ := cmd.Flags().GetInt("mitigation")
	if mitigation < int(model.MitigationNone) || mitigation > int(model.MitigationComplete) {
		return eris.Errorf("score: --mitigation must be 0, 1, or 2 (got %d)", mitigation)
	}
	reviewed, _ := cmd.Flags().GetBool("reviewed")
	notes, _ := cmd.Flags().GetString("notes")

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

	_, err = assess.NewService(client).Save(ctx, id, assess.Input{
		Selection:  selection,
		Reviewed:   reviewed,
		Mitigation: model.MitigationStatus(mitigation),
		Notes:      notes,
	})
	if err != nil {
		return err
	}
	fmt.Printf("\nAssessment saved to opportunity %d\n", id)
	return nil
}

func selectionFromFlags(cmd *cobra.Command) (scoring.Selection, error) {
	selection := scoring.Selection{}
	if defaults, _ := cmd.Flags().GetBool("defaults"); defaults {
		selection = catalog.DefaultSelection()
	}

	pairs, _ := cmd.Flags().GetStringArray("set")
	for _, pair := range pairs {
		key, val, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, eris.Errorf("score: --set expects key=level (got %q)", pair)
		}
		if _, known := catalog.ByKey(key); !known {
			return nil, eris.Errorf("score: unknown factor %q", key)
		}
		level, err := strconv.Atoi(val)
		if err != nil {
			return nil, eris.Errorf("score: level for %s must be a number (got %q)", key, val)
		}
		selection[key] = level
	}

	if len(selection) == 0 {
		return nil, eris.New("score: no selection given (use --set or --defaults)")
	}
	return selection, nil
}

func printFactorCatalog() {
	for _, f := range catalog.Factors() {
		fmt.Printf("%s (weight %.2f)\n", f.Key, f.Weight)
		fmt.Printf("  %s\n", f.Description)
		levels := make([]string, 0, len(f.Scale))
		for _, l := range f.Scale {
			levels = append(levels, fmt.Sprintf("%d=%s", l.Value, l.Label))
		}
		fmt.Printf("  %s\n\n", strings.Join(levels, ", "))
	}
	fmt.Printf("Total weight: %.2f\n", catalog.TotalWeight())
}
