package dashboardhandler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"capworks/internal/domain/customers"
	"capworks/internal/domain/stock"
	"capworks/internal/domain/workshop"
	"capworks/internal/storage/memory"
)

func TestDashboard(t *testing.T) {
	svc := workshop.NewService(memory.New(), nil, workshop.Options{SeedDefaultCatalog: true})
	if err := svc.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	c, err := svc.Customers.AddCustomer(customers.Customer{Name: "A", Phone: "1", Location: "X"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Customers.CreateOrder(c.ID, "caps"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Customers.RecordPayment(customers.Payment{
		CustomerID:     c.ID,
		TotalAmount:    decimal.RequireFromString("100"),
		ReceivedAmount: decimal.RequireFromString("99.95"),
		Mode:           customers.PaymentModeCash,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Stock.AddItem(stock.Item{Name: "Thread", Quantity: 2, ReorderLevel: 5}); err != nil {
		t.Fatal(err)
	}

	r := chi.NewRouter()
	NewHandler(svc, "INR").RegisterRoutes(r)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/dashboard", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	var env struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	want := map[string]string{
		"totalOrders":   "1",
		"pendingOrders": "1",
		"totalRevenue":  "99.95",
		"lowStockItems": "1",
		"stockUnits":    "2",
		"wageBill":      "0",
		"currency":      `"INR"`,
	}
	for key, value := range want {
		if got := string(env.Data[key]); got != value {
			t.Fatalf("%s: expected %s, got %s", key, value, got)
		}
	}
}
