package jobs

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"capworks/internal/domain/exports"
	"capworks/internal/domain/workshop"
	"capworks/internal/platform/sheets"
)

// Mailer sends plain-text mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LowStockAlert mails the scan result to To when Mailer is set.
type LowStockAlert struct {
	Mailer Mailer
	To     string
}

func (a LowStockAlert) enabled() bool {
	return a.Mailer != nil && strings.TrimSpace(a.To) != ""
}

// LowStockScan logs every stock item at or below its reorder level and sends
// one alert listing them.
func LowStockScan(svc *workshop.Service, logger *zap.Logger, alert LowStockAlert) Func {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(ctx context.Context) (any, error) {
		low := svc.Stock.LowStock()
		names := make([]string, 0, len(low))
		var body strings.Builder
		for _, item := range low {
			names = append(names, item.Name)
			fmt.Fprintf(&body, "%s: %d left, reorder level %d\n", item.Name, item.Quantity, item.ReorderLevel)
			logger.Warn("stock below reorder level",
				zap.String("item", item.Name),
				zap.Int("quantity", item.Quantity),
				zap.Int("reorderLevel", item.ReorderLevel),
			)
		}
		details := map[string]any{"lowStock": len(low), "items": names, "alerted": false}
		if len(low) == 0 || !alert.enabled() {
			return details, nil
		}
		subject := fmt.Sprintf("Low stock: %d item(s) at or below reorder level", len(low))
		if err := alert.Mailer.Send(ctx, alert.To, subject, body.String()); err != nil {
			return details, fmt.Errorf("send low stock alert: %w", err)
		}
		details["alerted"] = true
		return details, nil
	}
}

// WagePublish archives the current wage sheet and, when a publisher is set,
// appends a summary row per worker to the spreadsheet.
type WagePublish struct {
	Workshop   *workshop.Service
	Publisher  sheets.Publisher
	SheetRange string
	ExportDir  string
	Currency   string
	Now        func() time.Time
}

func (p WagePublish) Run(ctx context.Context) (any, error) {
	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}
	slips := p.Workshop.Ledger.WageSlips()
	stamp := now.Format("20060102")

	pdfPath, err := exports.SaveFile(p.ExportDir, fmt.Sprintf("wages-%s.pdf", stamp), func(w io.Writer) error {
		return exports.WriteWageSheetPDF(w, slips, p.Currency, now)
	})
	if err != nil {
		return nil, fmt.Errorf("archive wage sheet pdf: %w", err)
	}
	csvPath, err := exports.SaveFile(p.ExportDir, fmt.Sprintf("wages-%s.csv", stamp), func(w io.Writer) error {
		return exports.WriteWageCSV(w, slips)
	})
	if err != nil {
		return nil, fmt.Errorf("archive wage sheet csv: %w", err)
	}

	details := map[string]any{
		"workers":   len(slips),
		"pdf":       pdfPath,
		"csv":       csvPath,
		"published": false,
	}
	if p.Publisher == nil {
		return details, nil
	}
	if err := p.Publisher.AppendRows(ctx, p.SheetRange, exports.WageSheetRows(slips, now)); err != nil {
		return details, fmt.Errorf("publish wage sheet: %w", err)
	}
	details["published"] = true
	return details, nil
}
