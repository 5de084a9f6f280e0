// Package demo provides a built-in opportunity dataset so the dashboard can
// be explored without Current RMS credentials. The records span every tier,
// review state, and mitigation state, with start dates placed relative to
// the current day so the range selectors always have something to show.
package demo

import (
	"time"

	"github.com/prostaff-av/riskdash/internal/model"
)

// Opportunities returns the demonstration dataset anchored at now.
func Opportunities(now time.Time) []model.Opportunity {
	day := func(offset int) time.Time {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
	}

	return []model.Opportunity{
		{
			ID:            9001,
			Subject:       "Riverside Jazz Festival main stage",
			StartsAt:      day(12),
			Charge:        185000,
			EstimatedCost: 121000,
			Owner:         "Dana Whitfield",
			Organisation:  "Riverside Events Ltd",
			UpdatedAt:     day(-3),
			Risk: model.RiskRecord{
				Score: 4.33,
				Selection: map[string]int{
					"project_novelty":       5,
					"technical_complexity":  5,
					"resource_utilization":  4,
					"client_sophistication": 3,
					"budget_size":           5,
					"timeframe_pressure":    4,
					"team_experience":       4,
					"subhire_availability":  4,
				},
				Reviewed:        true,
				Mitigation:      model.MitigationPartial,
				MitigationNotes: "Secondary rigging crew on standby; generator redundancy confirmed.",
				LastUpdated:     day(-2),
			},
		},
		{
			ID:            9002,
			Subject:       "TechNova product launch keynote",
			StartsAt:      day(21),
			Charge:        96000,
			EstimatedCost: 58000,
			Owner:         "Miguel Arroyo",
			Organisation:  "TechNova Inc",
			UpdatedAt:     day(-1),
			Risk: model.RiskRecord{
				Score: 3.56,
				Selection: map[string]int{
					"project_novelty":       4,
					"technical_complexity":  4,
					"resource_utilization":  3,
					"client_sophistication": 2,
					"budget_size":           4,
					"timeframe_pressure":    4,
					"team_experience":       3,
					"subhire_availability":  4,
				},
				Reviewed:    false,
				Mitigation:  model.MitigationNone,
				LastUpdated: day(-8),
			},
		},
		{
			ID:            9003,
			Subject:       "Grand Hotel winter gala",
			StartsAt:      day(38),
			Charge:        52000,
			EstimatedCost: 31000,
			Owner:         "Dana Whitfield",
			Organisation:  "Grand Hotel Group",
			UpdatedAt:     day(-14),
			Risk: model.RiskRecord{
				Score: 2.67,
				Selection: map[string]int{
					"project_novelty":       2,
					"technical_complexity":  3,
					"resource_utilization":  3,
					"client_sophistication": 2,
					"budget_size":           3,
					"timeframe_pressure":    2,
					"team_experience":       3,
					"subhire_availability":  3,
				},
				Reviewed:        true,
				Mitigation:      model.MitigationComplete,
				MitigationNotes: "Repeat venue, house crew briefed.",
				LastUpdated:     day(-10),
			},
		},
		{
			ID:            9004,
			Subject:       "Northfield college graduation AV",
			StartsAt:      day(47),
			Charge:        18500,
			EstimatedCost: 9800,
			Owner:         "Priya Nair",
			Organisation:  "Northfield College",
			UpdatedAt:     day(-20),
			Risk: model.RiskRecord{
				Score: 1.64,
				Selection: map[string]int{
					"project_novelty":       1,
					"technical_complexity":  2,
					"resource_utilization":  2,
					"client_sophistication": 1,
					"budget_size":           2,
					"timeframe_pressure":    2,
					"team_experience":       1,
					"subhire_availability":  2,
				},
				Reviewed:    true,
				Mitigation:  model.MitigationComplete,
				LastUpdated: day(-18),
			},
		},
		{
			ID:            9005,
			Subject:       "Meridian Pharma investor summit",
			StartsAt:      day(66),
			Charge:        74000,
			EstimatedCost: 47000,
			Owner:         "Miguel Arroyo",
			Organisation:  "Meridian Pharma",
			UpdatedAt:     day(-2),
			Risk:          model.RiskRecord{},
		},
		{
			ID:            9006,
			Subject:       "Harbourfront drone light show",
			StartsAt:      day(74),
			Charge:        240000,
			EstimatedCost: 176000,
			Owner:         "Priya Nair",
			Organisation:  "City of Harbourfront",
			UpdatedAt:     day(-1),
			Risk: model.RiskRecord{
				Score: 4.67,
				Selection: map[string]int{
					"project_novelty":       5,
					"technical_complexity":  5,
					"resource_utilization":  5,
					"client_sophistication": 4,
					"budget_size":           5,
					"timeframe_pressure":    5,
					"team_experience":       4,
					"subhire_availability":  4,
				},
				Reviewed:    false,
				Mitigation:  model.MitigationNone,
				LastUpdated: day(-6),
			},
		},
		{
			ID:            9007,
			Subject:       "Ashworth wedding marquee",
			StartsAt:      day(85),
			Charge:        31000,
			EstimatedCost: 17500,
			Owner:         "Dana Whitfield",
			Organisation:  "",
			UpdatedAt:     day(-30),
			Risk: model.RiskRecord{
				Score: 2.0,
				Selection: map[string]int{
					"project_novelty":       2,
					"technical_complexity":  2,
					"resource_utilization":  2,
					"client_sophistication": 2,
					"budget_size":           2,
					"timeframe_pressure":    2,
					"team_experience":       2,
					"subhire_availability":  2,
				},
				Reviewed:    true,
				Mitigation:  model.MitigationPartial,
				LastUpdated: day(-28),
			},
		},
		{
			ID:            9008,
			Subject:       "Velocity Motors dealer conference",
			StartsAt:      day(110),
			Charge:        134000,
			EstimatedCost: 89000,
			Owner:         "Priya Nair",
			Organisation:  "Velocity Motors",
			UpdatedAt:     day(-4),
			Risk: model.RiskRecord{
				Score: 3.11,
				Selection: map[string]int{
					"project_novelty":       3,
					"technical_complexity":  3,
					"resource_utilization":  4,
					"client_sophistication": 3,
					"budget_size":           4,
					"timeframe_pressure":    2,
					"team_experience":       3,
					"subhire_availability":  3,
				},
				Reviewed:    false,
				Mitigation:  model.MitigationNone,
				LastUpdated: day(-40),
			},
		},
	}
}
