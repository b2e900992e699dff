package stockhandler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"capworks/internal/domain/stock"
	"capworks/internal/domain/validation"
	"capworks/internal/domain/workshop"
	"capworks/internal/requestctx"
	"capworks/internal/transport/http/api"
	"capworks/internal/transport/http/middleware"
	"capworks/internal/transport/http/shared"
)

type Handler struct {
	Workshop *workshop.Service
}

func NewHandler(svc *workshop.Service) *Handler {
	return &Handler{Workshop: svc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/stock", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/low", h.handleLow)
		r.Get("/trending", h.handleTrending)
		r.Get("/{itemID}", h.handleGet)
		r.Patch("/{itemID}", h.handleUpdate)
		r.Patch("/{itemID}/reorder-level", h.handleReorderLevel)
		r.Delete("/{itemID}", h.handleDelete)
	})
}

type itemView struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	ReorderLevel int    `json:"reorderLevel"`
	OrderCount   int    `json:"orderCount"`
	Status       string `json:"status"`
}

func newItemView(item stock.Item) itemView {
	return itemView{
		ID:           item.ID,
		Name:         item.Name,
		Quantity:     item.Quantity,
		ReorderLevel: item.ReorderLevel,
		OrderCount:   item.OrderCount,
		Status:       item.Status(),
	}
}

func viewsOf(items []stock.Item) []itemView {
	out := make([]itemView, 0, len(items))
	for _, item := range items {
		out = append(out, newItemView(item))
	}
	return out
}

type itemRequest struct {
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	ReorderLevel int    `json:"reorderLevel"`
	OrderCount   int    `json:"orderCount"`
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	api.Success(w, viewsOf(h.Workshop.Stock.Items()), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleLow(w http.ResponseWriter, r *http.Request) {
	api.Success(w, viewsOf(h.Workshop.Stock.LowStock()), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleTrending(w http.ResponseWriter, r *http.Request) {
	n := stock.DefaultTrending
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			shared.WriteError(w, r, validation.New("n"))
			return
		}
		n = parsed
	}
	api.Success(w, viewsOf(h.Workshop.Stock.Trending(n)), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	item, err := h.Workshop.Stock.Item(chi.URLParam(r, "itemID"))
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, newItemView(item), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload itemRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	var item stock.Item
	if !shared.Apply(w, r, h.Workshop, func() (err error) {
		item, err = h.Workshop.Stock.AddItem(stock.Item{
			Name:         payload.Name,
			Quantity:     payload.Quantity,
			ReorderLevel: payload.ReorderLevel,
			OrderCount:   payload.OrderCount,
		})
		return err
	}) {
		return
	}
	requestctx.Logger(r.Context()).Info("stock item added", zap.String("itemId", item.ID), zap.String("name", item.Name))
	api.Created(w, newItemView(item), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload stock.Update
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	h.applyUpdate(w, r, payload)
}

type reorderRequest struct {
	ReorderLevel *int `json:"reorderLevel"`
}

func (h *Handler) handleReorderLevel(w http.ResponseWriter, r *http.Request) {
	var payload reorderRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	if payload.ReorderLevel == nil {
		shared.WriteError(w, r, validation.New("reorderLevel"))
		return
	}
	h.applyUpdate(w, r, stock.Update{ReorderLevel: payload.ReorderLevel})
}

func (h *Handler) applyUpdate(w http.ResponseWriter, r *http.Request, upd stock.Update) {
	var item stock.Item
	if !shared.Apply(w, r, h.Workshop, func() (err error) {
		item, err = h.Workshop.Stock.UpdateItem(chi.URLParam(r, "itemID"), upd)
		return err
	}) {
		return
	}
	api.Success(w, newItemView(item), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "itemID")
	if !shared.Apply(w, r, h.Workshop, func() error {
		return h.Workshop.Stock.RemoveItem(id)
	}) {
		return
	}
	api.Success(w, map[string]string{"deleted": id}, middleware.GetRequestID(r.Context()))
}
