package customershandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"capworks/internal/domain/customers"
	"capworks/internal/domain/exports"
	"capworks/internal/domain/validation"
	"capworks/internal/domain/workshop"
	"capworks/internal/requestctx"
	"capworks/internal/transport/http/api"
	"capworks/internal/transport/http/middleware"
	"capworks/internal/transport/http/shared"
)

type Handler struct {
	Workshop    *workshop.Service
	Currency    string
	Idempotency *middleware.IdempotencyStore
}

func NewHandler(svc *workshop.Service, currency string, idem *middleware.IdempotencyStore) *Handler {
	return &Handler{Workshop: svc, Currency: currency, Idempotency: idem}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.handleListCustomers)
		r.Post("/", h.handleCreateCustomer)
		r.Get("/{customerID}", h.handleGetCustomer)
		r.Put("/{customerID}", h.handleUpdateCustomer)
		r.Delete("/{customerID}", h.handleDeleteCustomer)
	})
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.handleListOrders)
		r.With(middleware.Idempotency(h.Idempotency)).Post("/", h.handleCreateOrder)
		r.Patch("/{orderID}/status", h.handleOrderStatus)
		r.Post("/{orderID}/deliver", h.handleDeliver)
	})
	r.Route("/payments", func(r chi.Router) {
		r.Get("/", h.handleListPayments)
		r.With(middleware.Idempotency(h.Idempotency)).Post("/", h.handleRecordPayment)
		r.Get("/{paymentID}", h.handleGetPayment)
		r.Get("/{paymentID}/receipt.pdf", h.handleReceipt)
	})
}

type customerRequest struct {
	Name        string `json:"name"`
	DateOfBirth string `json:"dateOfBirth"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Location    string `json:"location"`
}

// toCustomer converts the payload. Date of birth is optional but must parse
// when present.
func (p customerRequest) toCustomer() (customers.Customer, error) {
	c := customers.Customer{Name: p.Name, Phone: p.Phone, Email: p.Email, Location: p.Location}
	if raw := strings.TrimSpace(p.DateOfBirth); raw != "" {
		dob, err := shared.ParseDate(raw)
		if err != nil {
			return customers.Customer{}, validation.New("dateOfBirth")
		}
		c.DateOfBirth = &dob
	}
	return c, nil
}

func (h *Handler) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := strings.ToLower(strings.TrimSpace(query.Get("filter")))
	if filter != "" && !slices.Contains(customers.Filters, filter) {
		shared.WriteError(w, r, validation.New("filter"))
		return
	}
	list := h.Workshop.Customers.Customers(filter, query.Get("q"))
	page := shared.ParsePagination(r, 100, 500)
	api.Success(w, map[string]any{
		"items": shared.Page(list, page),
		"total": len(list),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.Workshop.Customers.Customer(chi.URLParam(r, "customerID"))
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, c, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var payload customerRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	c, err := payload.toCustomer()
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	if !shared.Apply(w, r, h.Workshop, func() (err error) {
		c, err = h.Workshop.Customers.AddCustomer(c)
		return err
	}) {
		return
	}
	api.Created(w, c, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var payload customerRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	c, err := payload.toCustomer()
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	if !shared.Apply(w, r, h.Workshop, func() (err error) {
		c, err = h.Workshop.Customers.UpdateCustomer(chi.URLParam(r, "customerID"), c)
		return err
	}) {
		return
	}
	api.Success(w, c, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "customerID")
	if !shared.Apply(w, r, h.Workshop, func() error {
		return h.Workshop.Customers.RemoveCustomer(id)
	}) {
		return
	}
	api.Success(w, map[string]string{"deleted": id}, middleware.GetRequestID(r.Context()))
}

type orderRequest struct {
	CustomerID string `json:"customerId"`
	Items      string `json:"items"`
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	orders := h.Workshop.Customers.Orders()
	if status := strings.TrimSpace(r.URL.Query().Get("status")); status != "" {
		filtered := make([]customers.Order, 0, len(orders))
		for _, o := range orders {
			if strings.EqualFold(o.Status, status) {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}
	api.Success(w, orders, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var payload orderRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	var order customers.Order
	if !shared.Apply(w, r, h.Workshop, func() (err error) {
		order, err = h.Workshop.Customers.CreateOrder(payload.CustomerID, payload.Items)
		return err
	}) {
		return
	}
	requestctx.Logger(r.Context()).Info("order created",
		zap.String("orderId", order.ID),
		zap.String("customerId", order.CustomerID),
	)
	api.Created(w, order, middleware.GetRequestID(r.Context()))
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	var payload statusRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	var order customers.Order
	if !shared.Apply(w, r, h.Workshop, func() (err error) {
		order, err = h.Workshop.Customers.UpdateOrderStatus(chi.URLParam(r, "orderID"), payload.Status)
		return err
	}) {
		return
	}
	api.Success(w, order, middleware.GetRequestID(r.Context()))
}

type deliverRequest struct {
	Details string `json:"details"`
}

func (h *Handler) handleDeliver(w http.ResponseWriter, r *http.Request) {
	var payload deliverRequest
	if r.ContentLength != 0 && !shared.DecodeJSON(w, r, &payload) {
		return
	}
	var order customers.Order
	if !shared.Apply(w, r, h.Workshop, func() (err error) {
		order, err = h.Workshop.Customers.ConfirmDelivery(chi.URLParam(r, "orderID"), payload.Details)
		return err
	}) {
		return
	}
	api.Success(w, order, middleware.GetRequestID(r.Context()))
}

type paymentRequest struct {
	CustomerID     string          `json:"customerId"`
	TotalAmount    json.RawMessage `json:"totalAmount"`
	ReceivedAmount json.RawMessage `json:"receivedAmount"`
	Mode           string          `json:"mode"`
	Reference      string          `json:"reference"`
}

type paymentView struct {
	ID             string      `json:"id"`
	CustomerID     string      `json:"customerId"`
	TotalAmount    json.Number `json:"totalAmount"`
	ReceivedAmount json.Number `json:"receivedAmount"`
	Outstanding    json.Number `json:"outstanding"`
	Mode           string      `json:"mode"`
	Reference      string      `json:"reference,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
}

func newPaymentView(p customers.Payment) paymentView {
	return paymentView{
		ID:             p.ID,
		CustomerID:     p.CustomerID,
		TotalAmount:    shared.Number(p.TotalAmount),
		ReceivedAmount: shared.Number(p.ReceivedAmount),
		Outstanding:    shared.Number(p.Outstanding()),
		Mode:           p.Mode,
		Reference:      p.Reference,
		CreatedAt:      p.CreatedAt,
	}
}

// toPayment parses the amounts and reports every invalid field at once.
func (p paymentRequest) toPayment() (customers.Payment, error) {
	var c validation.Collector
	c.Required("customerId", p.CustomerID)
	total, err := shared.ParseAmount("totalAmount", p.TotalAmount)
	if err != nil {
		c.Add("totalAmount")
	}
	received, err := shared.ParseAmount("receivedAmount", p.ReceivedAmount)
	if err != nil {
		c.Add("receivedAmount")
	}
	mode := strings.TrimSpace(p.Mode)
	if !slices.Contains(customers.PaymentModes, mode) {
		c.Add("mode")
	}
	if err := c.Err(); err != nil {
		return customers.Payment{}, err
	}
	return customers.Payment{
		CustomerID:     strings.TrimSpace(p.CustomerID),
		TotalAmount:    total,
		ReceivedAmount: received,
		Mode:           mode,
		Reference:      p.Reference,
	}, nil
}

func (h *Handler) handleListPayments(w http.ResponseWriter, r *http.Request) {
	customerID := strings.TrimSpace(r.URL.Query().Get("customerId"))
	views := []paymentView{}
	for _, p := range h.Workshop.Customers.Payments() {
		if customerID != "" && p.CustomerID != customerID {
			continue
		}
		views = append(views, newPaymentView(p))
	}
	api.Success(w, views, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var payload paymentRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	payment, err := payload.toPayment()
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	if !shared.Apply(w, r, h.Workshop, func() (err error) {
		payment, err = h.Workshop.Customers.RecordPayment(payment)
		return err
	}) {
		return
	}
	requestctx.Logger(r.Context()).Info("payment recorded",
		zap.String("paymentId", payment.ID),
		zap.String("received", payment.ReceivedAmount.String()),
	)
	api.Created(w, newPaymentView(payment), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	payment, err := h.Workshop.Customers.Payment(chi.URLParam(r, "paymentID"))
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, newPaymentView(payment), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleReceipt(w http.ResponseWriter, r *http.Request) {
	payment, err := h.Workshop.Customers.Payment(chi.URLParam(r, "paymentID"))
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	var customer *customers.Customer
	c, err := h.Workshop.Customers.Customer(payment.CustomerID)
	switch {
	case err == nil:
		customer = &c
	case !errors.Is(err, customers.ErrCustomerNotFound):
		shared.WriteError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=receipt-%s.pdf", payment.ID))
	if err := exports.WriteReceiptPDF(w, payment, customer, h.Currency); err != nil {
		requestctx.Logger(r.Context()).Warn("receipt export failed", zap.Error(err))
	}
}
