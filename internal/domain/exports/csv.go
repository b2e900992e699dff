package exports

import (
	"encoding/csv"
	"io"
	"strconv"

	"capworks/internal/domain/wages"
)

var WageCSVHeader = []string{"worker_id", "cap_type", "units", "dozens", "rate_per_dozen", "amount"}

const TotalLabel = "TOTAL"

// WriteWageCSV writes one row per wage line followed by a total row for each
// worker.
func WriteWageCSV(w io.Writer, slips []wages.WageSlip) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(WageCSVHeader); err != nil {
		return err
	}
	for _, slip := range slips {
		for _, line := range slip.Lines {
			row := []string{
				slip.WorkerID,
				line.CapTypeName,
				strconv.Itoa(line.Units),
				strconv.Itoa(line.Dozens),
				line.RatePerDozen.StringFixed(2),
				line.Amount.StringFixed(2),
			}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
		if err := writer.Write([]string{slip.WorkerID, TotalLabel, "", "", "", slip.Total.StringFixed(2)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
