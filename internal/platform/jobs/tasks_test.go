package jobs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"capworks/internal/domain/stock"
	"capworks/internal/domain/workshop"
	"capworks/internal/storage/memory"
)

type recordingPublisher struct {
	sheetRange string
	rows       [][]interface{}
	err        error
}

func (r *recordingPublisher) AppendRows(ctx context.Context, sheetRange string, rows [][]interface{}) error {
	r.sheetRange = sheetRange
	r.rows = rows
	return r.err
}

func loadedWorkshop(t *testing.T) *workshop.Service {
	t.Helper()
	svc := workshop.NewService(memory.New(), nil, workshop.Options{SeedDefaultCatalog: true})
	if err := svc.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	return svc
}

func TestLowStockScan(t *testing.T) {
	svc := loadedWorkshop(t)
	_, _ = svc.Stock.AddItem(stock.Item{Name: "Buckram", Quantity: 1, ReorderLevel: 5})
	_, _ = svc.Stock.AddItem(stock.Item{Name: "Thread", Quantity: 40, ReorderLevel: 5})

	details, err := LowStockScan(svc, nil, LowStockAlert{})(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	got := details.(map[string]any)
	if got["lowStock"] != 1 || got["alerted"] != false {
		t.Fatalf("unexpected details: %v", got)
	}
}

type recordingMailer struct {
	to, subject, body string
	sent              int
	err               error
}

func (m *recordingMailer) Send(ctx context.Context, to, subject, body string) error {
	m.to, m.subject, m.body = to, subject, body
	m.sent++
	return m.err
}

func TestLowStockScanSendsAlert(t *testing.T) {
	svc := loadedWorkshop(t)
	mailer := &recordingMailer{}
	scan := LowStockScan(svc, nil, LowStockAlert{Mailer: mailer, To: "owner@example.com"})

	if _, err := scan(context.Background()); err != nil {
		t.Fatal(err)
	}
	if mailer.sent != 0 {
		t.Fatal("expected no alert while stock is healthy")
	}

	_, _ = svc.Stock.AddItem(stock.Item{Name: "Buckram", Quantity: 1, ReorderLevel: 5})
	details, err := scan(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if mailer.sent != 1 || mailer.to != "owner@example.com" || !strings.Contains(mailer.body, "Buckram: 1 left") {
		t.Fatalf("unexpected alert %+v", mailer)
	}
	if details.(map[string]any)["alerted"] != true {
		t.Fatalf("expected alerted details, got %v", details)
	}

	mailer.err = errors.New("smtp down")
	if _, err := scan(context.Background()); err == nil {
		t.Fatal("expected mail failure to fail the run")
	}
}

func TestWagePublish(t *testing.T) {
	svc := loadedWorkshop(t)
	plane := svc.Ledger.CapTypes()[0]
	_ = svc.Ledger.AddWorker("W1")
	_ = svc.Ledger.RecordProduction("W1", plane.ID, 36)

	dir := t.TempDir()
	publisher := &recordingPublisher{}
	task := WagePublish{
		Workshop:   svc,
		Publisher:  publisher,
		SheetRange: "Wages!A:E",
		ExportDir:  dir,
		Currency:   "INR",
		Now:        func() time.Time { return time.Date(2024, 3, 2, 20, 0, 0, 0, time.UTC) },
	}
	details, err := task.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details.(map[string]any)["published"] != true {
		t.Fatalf("expected published, got %v", details)
	}
	if publisher.sheetRange != "Wages!A:E" || len(publisher.rows) != 1 || publisher.rows[0][4] != "180.00" {
		t.Fatalf("unexpected publish call: %q %v", publisher.sheetRange, publisher.rows)
	}
	for _, name := range []string{"wages-20240302.pdf", "wages-20240302.csv"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
}

func TestWagePublishWithoutSheets(t *testing.T) {
	svc := loadedWorkshop(t)
	details, err := WagePublish{Workshop: svc, ExportDir: t.TempDir(), Currency: "INR"}.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if details.(map[string]any)["published"] != false {
		t.Fatalf("expected unpublished, got %v", details)
	}
}

func TestWagePublishError(t *testing.T) {
	svc := loadedWorkshop(t)
	boom := errors.New("quota exceeded")
	_, err := WagePublish{Workshop: svc, Publisher: &recordingPublisher{err: boom}, SheetRange: "Wages!A:E", ExportDir: t.TempDir()}.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected publish error, got %v", err)
	}
}
