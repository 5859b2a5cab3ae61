package google

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"cryptofolio/internal/core"
)

// parseHistoryRows converts a values matrix (as returned by Sheets API) into
// history records. A leading header row is skipped. Rows that cannot be parsed
// are counted and dropped.
func parseHistoryRows(values [][]any, portfolioID int64) ([]core.HistoryRecord, int) {
	var (
		out     []core.HistoryRecord
		skipped int
	)
	for i, raw := range values {
		row := toStrings(raw)
		if len(row) == 0 || strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}
		if i == 0 && strings.EqualFold(safeGet(row, 0), "date") {
			continue
		}
		rec, err := parseHistoryRow(row)
		if err != nil {
			skipped++
			continue
		}
		if portfolioID != 0 && rec.OwnerID != portfolioID {
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, skipped
}

func parseHistoryRow(row []string) (core.HistoryRecord, error) {
	if len(row) < 4 {
		return core.HistoryRecord{}, fmt.Errorf("short row: %d columns", len(row))
	}
	date, err := core.ParseDate(row[0])
	if err != nil {
		return core.HistoryRecord{}, err
	}
	owner, err := strconv.ParseInt(row[1], 10, 64)
	if err != nil {
		return core.HistoryRecord{}, fmt.Errorf("portfolio column: %w", err)
	}
	// history id may be blank for rows typed by hand
	id, _ := strconv.ParseInt(safeGet(row, 2), 10, 64)

	rec := core.HistoryRecord{ID: id, OwnerID: owner, Date: date}
	if rec.Total, err = parseAmount(safeGet(row, 3)); err != nil {
		return core.HistoryRecord{}, fmt.Errorf("total column: %w", err)
	}
	if rec.NetSpent, err = parseAmount(safeGet(row, 4)); err != nil {
		return core.HistoryRecord{}, fmt.Errorf("net spent column: %w", err)
	}
	if rec.Profit, err = parseAmount(safeGet(row, 5)); err != nil {
		return core.HistoryRecord{}, fmt.Errorf("profit column: %w", err)
	}
	return rec, nil
}

// parseAmount accepts plain decimals and the "$1,234.56" form Sheets renders.
// A blank cell is zero.
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}
