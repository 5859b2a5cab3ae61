// Package export renders portfolio history as an XLSX workbook.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"cryptofolio/internal/core"
	"cryptofolio/internal/timeseries"
)

const (
	HistorySheet = "History"
	SummarySheet = "Summary"

	usdFormat = `"$"#,##0.00;-"$"#,##0.00`
)

var historyHeader = []any{"Date", timeseries.TitleTotal, timeseries.TitleNetSpent, timeseries.TitleProfit}

// ContentType is the media type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Filename suggests a download name for the portfolio export.
func Filename(p core.Portfolio, intervalDays int, now time.Time) string {
	return fmt.Sprintf("portfolio-%d-%dd-%s.xlsx", p.ID, intervalDays, core.FormatDate(now))
}

// WriteHistory writes a workbook with one row per aggregated point, oldest
// first, and a summary sheet with the three cards of the window.
func WriteHistory(w io.Writer, p core.Portfolio, points []timeseries.Point, intervalDays int) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), HistorySheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(usdFormat)})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create style: %w", err)
	}

	if err := f.SetSheetRow(HistorySheet, "A1", &historyHeader); err != nil {
		return err
	}
	if err := f.SetCellStyle(HistorySheet, "A1", "D1", bold); err != nil {
		return err
	}

	dates := make([]time.Time, len(points))
	total := make([]decimal.Decimal, len(points))
	netSpent := make([]decimal.Decimal, len(points))
	profit := make([]decimal.Decimal, len(points))
	for i, pt := range points {
		dates[i], total[i], netSpent[i], profit[i] = pt.Date, pt.Total, pt.NetSpent, pt.Profit

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			core.FormatDate(pt.Date),
			pt.Total.InexactFloat64(),
			pt.NetSpent.InexactFloat64(),
			pt.Profit.InexactFloat64(),
		}
		if err := f.SetSheetRow(HistorySheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if len(points) > 0 {
		last := fmt.Sprintf("D%d", len(points)+1)
		if err := f.SetCellStyle(HistorySheet, "B2", last, money); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(HistorySheet, "A", "D", 16)

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}
	summary := [][]any{
		{"Portfolio", p.Name},
		{"Interval", intervalDays},
		{},
		{"Series", "Value", "Change", "Change (USD)", "Trend"},
	}
	cards, err := timeseries.BuildCards(dates, total, netSpent, profit, intervalDays)
	if err != nil {
		return err
	}
	for _, card := range cards {
		summary = append(summary, []any{card.Title, card.Value, card.FormattedPercent, card.FormattedUSD, string(card.Trend)})
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}
	_ = f.SetCellStyle(SummarySheet, "A4", "E4", bold)
	_ = f.SetColWidth(SummarySheet, "A", "E", 16)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func strPtr(s string) *string { return &s }
