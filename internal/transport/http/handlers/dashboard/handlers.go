package dashboardhandler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"capworks/internal/domain/workshop"
	"capworks/internal/transport/http/api"
	"capworks/internal/transport/http/middleware"
	"capworks/internal/transport/http/shared"
)

type Handler struct {
	Workshop *workshop.Service
	Currency string
}

func NewHandler(svc *workshop.Service, currency string) *Handler {
	return &Handler{Workshop: svc, Currency: currency}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.handleDashboard)
}

type dashboardView struct {
	TotalOrders   int         `json:"totalOrders"`
	PendingOrders int         `json:"pendingOrders"`
	TotalRevenue  json.Number `json:"totalRevenue"`
	ActiveWorkers int         `json:"activeWorkers"`
	LowStockItems int         `json:"lowStockItems"`
	StockUnits    int         `json:"stockUnits"`
	WageBill      json.Number `json:"wageBill"`
	Currency      string      `json:"currency"`
	Version       int64       `json:"version"`
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d := h.Workshop.Dashboard()
	api.Success(w, dashboardView{
		TotalOrders:   d.TotalOrders,
		PendingOrders: d.PendingOrders,
		TotalRevenue:  shared.Number(d.TotalRevenue),
		ActiveWorkers: d.ActiveWorkers,
		LowStockItems: d.LowStockItems,
		StockUnits:    d.StockUnits,
		WageBill:      shared.Number(d.WageBill),
		Currency:      h.Currency,
		Version:       h.Workshop.Version(),
	}, middleware.GetRequestID(r.Context()))
}
