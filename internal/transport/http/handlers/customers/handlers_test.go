package customershandler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"capworks/internal/domain/customers"
	"capworks/internal/domain/workshop"
	"capworks/internal/storage/memory"
	"capworks/internal/transport/http/middleware"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Details struct {
			Fields []struct {
				Field string `json:"field"`
			} `json:"fields"`
		} `json:"details"`
	} `json:"error"`
}

func (e envelope) fields() map[string]bool {
	out := map[string]bool{}
	if e.Error != nil {
		for _, f := range e.Error.Details.Fields {
			out[f.Field] = true
		}
	}
	return out
}

type testEnv struct {
	svc    *workshop.Service
	router http.Handler
}

func newTestEnv(t *testing.T) testEnv {
	t.Helper()
	svc := workshop.NewService(memory.New(), nil, workshop.Options{})
	if err := svc.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	NewHandler(svc, "INR", middleware.NewIdempotencyStore(time.Hour)).RegisterRoutes(r)
	return testEnv{svc: svc, router: r}
}

func (e testEnv) do(t *testing.T, method, path, body string, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return rec, env
}

func (e testEnv) createCustomer(t *testing.T, body string) customers.Customer {
	t.Helper()
	rec, env := e.do(t, http.MethodPost, "/customers", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create customer: %d %s", rec.Code, rec.Body.String())
	}
	var c customers.Customer
	if err := json.Unmarshal(env.Data, &c); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCustomerSearchFilters(t *testing.T) {
	e := newTestEnv(t)
	e.createCustomer(t, `{"name":"Sharma Traders","phone":"9811122233","email":"orders@sharma.in","location":"Delhi"}`)
	e.createCustomer(t, `{"name":"Kapoor Caps","phone":"9988776655","location":"Mumbai","dateOfBirth":"1980-01-02"}`)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"all", "", 2},
		{"name", "?filter=name&q=sharma", 1},
		{"location", "?filter=location&q=mumbai", 1},
		{"contact phone", "?filter=contact&q=99887", 1},
		{"contact email", "?filter=contact&q=SHARMA.IN", 1},
		{"no match", "?filter=name&q=gupta", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, env := e.do(t, http.MethodGet, "/customers"+tc.query, "")
			var list struct {
				Total int `json:"total"`
			}
			_ = json.Unmarshal(env.Data, &list)
			if list.Total != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, list.Total)
			}
		})
	}

	if rec, _ := e.do(t, http.MethodGet, "/customers?filter=age&q=3", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected unknown filter rejected, got %d", rec.Code)
	}
}

func TestCustomerValidationAndUpdate(t *testing.T) {
	e := newTestEnv(t)
	rec, env := e.do(t, http.MethodPost, "/customers", `{"name":" "}`)
	if rec.Code != http.StatusBadRequest || !env.fields()["phone"] || !env.fields()["location"] {
		t.Fatalf("expected phone and location issues, got %d %v", rec.Code, env.fields())
	}
	rec, env = e.do(t, http.MethodPost, "/customers", `{"name":"A","phone":"1","location":"X","dateOfBirth":"02-01-1980"}`)
	if rec.Code != http.StatusBadRequest || !env.fields()["dateOfBirth"] {
		t.Fatalf("expected dateOfBirth issue, got %d %v", rec.Code, env.fields())
	}

	c := e.createCustomer(t, `{"name":"A","phone":"1","location":"X"}`)
	rec, env = e.do(t, http.MethodPut, "/customers/"+c.ID, `{"name":"A2","phone":"2","location":"Y"}`)
	var updated customers.Customer
	_ = json.Unmarshal(env.Data, &updated)
	if rec.Code != http.StatusOK || updated.Location != "Y" || !updated.CreatedAt.Equal(c.CreatedAt) {
		t.Fatalf("unexpected update: %d %+v", rec.Code, updated)
	}
	if rec, _ := e.do(t, http.MethodPut, "/customers/missing", `{"name":"A","phone":"1","location":"X"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec, _ := e.do(t, http.MethodDelete, "/customers/"+c.ID, ""); rec.Code != http.StatusOK {
		t.Fatalf("delete: %d", rec.Code)
	}
	if rec, _ := e.do(t, http.MethodDelete, "/customers/"+c.ID, ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected second delete 404, got %d", rec.Code)
	}
}

func TestOrderLifecycle(t *testing.T) {
	e := newTestEnv(t)
	c := e.createCustomer(t, `{"name":"A","phone":"1","location":"X"}`)

	if rec, _ := e.do(t, http.MethodPost, "/orders", `{"customerId":"ghost","items":"50 Net caps"}`); rec.Code != http.StatusNotFound {
		t.Fatalf("expected unknown customer 404, got %d", rec.Code)
	}
	rec, env := e.do(t, http.MethodPost, "/orders", `{"customerId":"`+c.ID+`","items":"50 Net caps"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create order: %d", rec.Code)
	}
	var order customers.Order
	_ = json.Unmarshal(env.Data, &order)
	if order.Status != customers.OrderStatusPending {
		t.Fatalf("expected new order pending, got %s", order.Status)
	}

	if rec, _ := e.do(t, http.MethodPatch, "/orders/"+order.ID+"/status", `{"status":"Lost"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected unknown status 400, got %d", rec.Code)
	}
	rec, env = e.do(t, http.MethodPatch, "/orders/"+order.ID+"/status", `{"status":"Dispatched"}`)
	_ = json.Unmarshal(env.Data, &order)
	if rec.Code != http.StatusOK || order.Status != customers.OrderStatusDispatched {
		t.Fatalf("unexpected status update: %d %+v", rec.Code, order)
	}

	rec, env = e.do(t, http.MethodPost, "/orders/"+order.ID+"/deliver", `{"details":"handed to Ramesh"}`)
	_ = json.Unmarshal(env.Data, &order)
	if rec.Code != http.StatusOK || order.Status != customers.OrderStatusDelivered || order.DeliveredAt == nil || order.DeliveryDetails != "handed to Ramesh" {
		t.Fatalf("unexpected delivery: %d %+v", rec.Code, order)
	}

	_, env = e.do(t, http.MethodGet, "/orders?status=delivered", "")
	var orders []customers.Order
	_ = json.Unmarshal(env.Data, &orders)
	if len(orders) != 1 {
		t.Fatalf("expected one delivered order, got %d", len(orders))
	}
	if rec, _ := e.do(t, http.MethodPost, "/orders/ghost/deliver", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRecordPayment(t *testing.T) {
	e := newTestEnv(t)
	c := e.createCustomer(t, `{"name":"A","phone":"1","location":"X"}`)

	rec, env := e.do(t, http.MethodPost, "/payments", `{"customerId":"`+c.ID+`","totalAmount":1000,"receivedAmount":"750.50","mode":"UPI","reference":"UTR123"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("record payment: %d %s", rec.Code, rec.Body.String())
	}
	var view struct {
		ID          string      `json:"id"`
		Outstanding json.Number `json:"outstanding"`
	}
	_ = json.Unmarshal(env.Data, &view)
	if view.Outstanding.String() != "249.5" {
		t.Fatalf("expected outstanding 249.5, got %s", view.Outstanding)
	}

	rec, env = e.do(t, http.MethodPost, "/payments", `{"totalAmount":-1,"receivedAmount":"abc","mode":"Cheque"}`)
	got := env.fields()
	if rec.Code != http.StatusBadRequest || !got["customerId"] || !got["totalAmount"] || !got["receivedAmount"] || !got["mode"] {
		t.Fatalf("expected all payment fields reported, got %d %v", rec.Code, got)
	}

	receipt, _ := e.do(t, http.MethodGet, "/payments/"+view.ID+"/receipt.pdf", "")
	if receipt.Code != http.StatusOK || !bytes.HasPrefix(receipt.Body.Bytes(), []byte("%PDF")) {
		t.Fatalf("expected receipt pdf, got %d", receipt.Code)
	}
	if rec, _ := e.do(t, http.MethodGet, "/payments/ghost/receipt.pdf", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	// Receipts survive removal of the customer.
	e.do(t, http.MethodDelete, "/customers/"+c.ID, "")
	receipt, _ = e.do(t, http.MethodGet, "/payments/"+view.ID+"/receipt.pdf", "")
	if receipt.Code != http.StatusOK {
		t.Fatalf("expected receipt after customer removal, got %d", receipt.Code)
	}
}

func TestPaymentIdempotencyKey(t *testing.T) {
	e := newTestEnv(t)
	c := e.createCustomer(t, `{"name":"A","phone":"1","location":"X"}`)
	body := `{"customerId":"` + c.ID + `","totalAmount":500,"receivedAmount":500,"mode":"Cash"}`

	first, _ := e.do(t, http.MethodPost, "/payments", body, middleware.IdempotencyHeader, "pay-1")
	second, _ := e.do(t, http.MethodPost, "/payments", body, middleware.IdempotencyHeader, "pay-1")
	if first.Code != http.StatusCreated || second.Code != http.StatusCreated {
		t.Fatalf("unexpected codes %d %d", first.Code, second.Code)
	}
	if second.Header().Get("Idempotent-Replay") != "true" {
		t.Fatal("expected replayed response")
	}
	if n := len(e.svc.Customers.Payments()); n != 1 {
		t.Fatalf("expected one stored payment, got %d", n)
	}

	other := strings.Replace(body, `"Cash"`, `"Card"`, 1)
	conflict, env := e.do(t, http.MethodPost, "/payments", other, middleware.IdempotencyHeader, "pay-1")
	if conflict.Code != http.StatusConflict || env.Error.Code != "idempotency_conflict" {
		t.Fatalf("expected idempotency conflict, got %d", conflict.Code)
	}
}
