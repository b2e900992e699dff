package exports

import (
	"time"

	"capworks/internal/domain/wages"
)

// WageSheetRows flattens slips into spreadsheet rows:
// week ending, worker, units, dozens, amount.
func WageSheetRows(slips []wages.WageSlip, weekEnding time.Time) [][]interface{} {
	rows := make([][]interface{}, 0, len(slips))
	day := weekEnding.Format("2006-01-02")
	for _, slip := range slips {
		units, dozens := 0, 0
		for _, line := range slip.Lines {
			units += line.Units
			dozens += line.Dozens
		}
		rows = append(rows, []interface{}{day, slip.WorkerID, units, dozens, slip.Total.StringFixed(2)})
	}
	return rows
}
