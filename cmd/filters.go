package main

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/prostaff-av/riskdash/internal/daterange"
	"github.com/prostaff-av/riskdash/internal/pipeline"
)

// filtersFromFlags builds pipeline filters from the shared command flags.
func filtersFromFlags(cmd *cobra.Command, today time.Time) (pipeline.Filters, error) {
	selector, _ := cmd.Flags().GetString("range")

	var customStart, customEnd *time.Time
	if s, _ := cmd.Flags().GetString("start"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return pipeline.Filters{}, eris.Errorf("invalid --start date %q", s)
		}
		customStart = &t
	}
	if s, _ := cmd.Flags().GetString("end"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return pipeline.Filters{}, eris.Errorf("invalid --end date %q", s)
		}
		customEnd = &t
	}

	window, err := daterange.Resolve(selector, today, customStart, customEnd)
	if err != nil {
		return pipeline.Filters{}, err
	}

	reviewFlag, _ := cmd.Flags().GetString("review")
	review, err := pipeline.ParseReviewFilter(reviewFlag)
	if err != nil {
		return pipeline.Filters{}, err
	}

	mitigationFlag, _ := cmd.Flags().GetString("mitigation")
	mitigation, err := pipeline.ParseMitigationFilter(mitigationFlag)
	if err != nil {
		return pipeline.Filters{}, err
	}

	needs, _ := cmd.Flags().GetBool("needs-reassessment")

	return pipeline.Filters{
		Window:            window,
		Review:            review,
		Mitigation:        mitigation,
		NeedsReassessment: needs,
	}, nil
}
