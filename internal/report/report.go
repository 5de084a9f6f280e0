// Package report renders a filtered dashboard result as an XLSX workbook:
// a summary sheet of per-tier aggregates followed by one sheet per tier
// listing its opportunities.
package report

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/prostaff-av/riskdash/internal/dashboard"
	"github.com/prostaff-av/riskdash/internal/pipeline"
	"github.com/prostaff-av/riskdash/internal/scoring"
)

var money = message.NewPrinter(language.English)

// Build renders the view into an in-memory workbook.
func Build(view dashboard.View) (*xlsx.File, error) {
	f := xlsx.NewFile()

	if err := addSummarySheet(f, view); err != nil {
		return nil, err
	}
	for _, bucket := range view.Result.Buckets {
		if err := addTierSheet(f, bucket); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Write renders the view and saves it to path.
func Write(view dashboard.View, path string) error {
	f, err := Build(view)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	return nil
}

func addSummarySheet(f *xlsx.File, view dashboard.View) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "report: add summary sheet")
	}

	meta := sheet.AddRow()
	meta.AddCell().Value = "Data source"
	meta.AddCell().Value = string(view.Source)
	meta = sheet.AddRow()
	meta.AddCell().Value = "Fetched at"
	meta.AddCell().Value = view.FetchedAt.Format(time.RFC3339)
	sheet.AddRow()

	header := sheet.AddRow()
	for _, h := range []string{"Tier", "Approval", "Opportunities", "Total charge"} {
		header.AddCell().Value = h
	}

	for _, b := range view.Result.Buckets {
		row := sheet.AddRow()
		row.AddCell().Value = string(b.Tier)
		row.AddCell().Value = string(scoring.ApprovalForTier(b.Tier))
		row.AddCell().SetInt(b.Count)
		row.AddCell().Value = formatMoney(b.TotalCharge)
	}

	total := sheet.AddRow()
	total.AddCell().Value = "TOTAL"
	total.AddCell()
	total.AddCell().SetInt(view.Result.TotalCount)
	total.AddCell().Value = formatMoney(view.Result.TotalCharge)
	return nil
}

func addTierSheet(f *xlsx.File, b pipeline.Bucket) error {
	sheet, err := f.AddSheet(string(b.Tier))
	if err != nil {
		return eris.Wrapf(err, "report: add sheet %s", b.Tier)
	}

	header := sheet.AddRow()
	for _, h := range []string{"ID", "Subject", "Starts", "Charge", "Score", "Owner", "Organisation", "Reviewed", "Mitigation"} {
		header.AddCell().Value = h
	}

	for _, o := range b.Opportunities {
		row := sheet.AddRow()
		row.AddCell().SetInt64(o.ID)
		row.AddCell().Value = o.Subject
		row.AddCell().Value = o.StartsAt.Format("2006-01-02")
		row.AddCell().Value = formatMoney(o.Charge)
		row.AddCell().SetFloatWithFormat(o.Risk.Score, "0.00")
		row.AddCell().Value = o.Owner
		row.AddCell().Value = o.Organisation
		row.AddCell().Value = yesNo(o.Risk.Reviewed)
		row.AddCell().Value = o.Risk.Mitigation.String()
	}
	return nil
}

func formatMoney(v float64) string {
	return money.Sprintf("$%.2f", v)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
