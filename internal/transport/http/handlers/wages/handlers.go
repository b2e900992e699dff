package wageshandler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"capworks/internal/domain/exports"
	"capworks/internal/domain/validation"
	"capworks/internal/domain/wages"
	"capworks/internal/domain/workshop"
	"capworks/internal/requestctx"
	"capworks/internal/transport/http/api"
	"capworks/internal/transport/http/middleware"
	"capworks/internal/transport/http/shared"
)

type Handler struct {
	Workshop *workshop.Service
	Currency string
	Now      func() time.Time
}

func NewHandler(svc *workshop.Service, currency string) *Handler {
	return &Handler{Workshop: svc, Currency: currency, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/cap-types", func(r chi.Router) {
		r.Get("/", h.handleListCapTypes)
		r.Post("/", h.handleCreateCapType)
		r.Get("/{capTypeID}", h.handleGetCapType)
		r.Patch("/{capTypeID}", h.handleUpdateRate)
		r.Delete("/{capTypeID}", h.handleDeleteCapType)
	})
	r.Route("/workers", func(r chi.Router) {
		r.Get("/", h.handleListWorkers)
		r.Post("/", h.handleAddWorker)
	})
	r.Route("/production", func(r chi.Router) {
		r.Get("/{workerID}", h.handleWorkerProduction)
		r.Put("/{workerID}/{capTypeID}", h.handleRecordProduction)
	})
	r.Route("/wages", func(r chi.Router) {
		r.Get("/", h.handleListSlips)
		r.Get("/export.csv", h.handleExportCSV)
		r.Get("/export.pdf", h.handleExportPDF)
		r.Get("/{workerID}", h.handleWage)
		r.Get("/{workerID}/slip", h.handleSlip)
	})
}

type capTypeView struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	RatePerDozen json.Number `json:"ratePerDozen"`
}

func newCapTypeView(c wages.CapType) capTypeView {
	return capTypeView{ID: c.ID, Name: c.Name, RatePerDozen: shared.Number(c.RatePerDozen)}
}

type wageLineView struct {
	CapTypeID    string      `json:"capTypeId"`
	CapTypeName  string      `json:"capTypeName"`
	Units        int         `json:"units"`
	Dozens       int         `json:"dozens"`
	LooseUnits   int         `json:"looseUnits"`
	RatePerDozen json.Number `json:"ratePerDozen"`
	Amount       json.Number `json:"amount"`
}

type slipView struct {
	WorkerID string         `json:"workerId"`
	Lines    []wageLineView `json:"lines"`
	Total    json.Number    `json:"total"`
}

func newSlipView(slip wages.WageSlip) slipView {
	lines := make([]wageLineView, 0, len(slip.Lines))
	for _, line := range slip.Lines {
		lines = append(lines, wageLineView{
			CapTypeID:    line.CapTypeID,
			CapTypeName:  line.CapTypeName,
			Units:        line.Units,
			Dozens:       line.Dozens,
			LooseUnits:   line.LooseUnits,
			RatePerDozen: shared.Number(line.RatePerDozen),
			Amount:       shared.Number(line.Amount),
		})
	}
	return slipView{WorkerID: slip.WorkerID, Lines: lines, Total: shared.Number(slip.Total)}
}

func rateFrom(raw json.RawMessage) (string, bool) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return "", false
	}
	return strings.Trim(text, `"`), true
}

func (h *Handler) handleListCapTypes(w http.ResponseWriter, r *http.Request) {
	capTypes := h.Workshop.Ledger.CapTypes()
	out := make([]capTypeView, 0, len(capTypes))
	for _, c := range capTypes {
		out = append(out, newCapTypeView(c))
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetCapType(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "capTypeID")
	capType, ok := h.Workshop.Ledger.CapType(id)
	if !ok {
		shared.WriteError(w, r, fmt.Errorf("%w: %s", wages.ErrCapTypeNotFound, id))
		return
	}
	api.Success(w, newCapTypeView(capType), middleware.GetRequestID(r.Context()))
}

type createCapTypeRequest struct {
	Name         string          `json:"name"`
	RatePerDozen json.RawMessage `json:"ratePerDozen"`
}

func (h *Handler) handleCreateCapType(w http.ResponseWriter, r *http.Request) {
	var payload createCapTypeRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}

	raw, _ := rateFrom(payload.RatePerDozen)
	rate, rateErr := wages.ParseRate(raw)
	if rateErr != nil {
		var c validation.Collector
		c.Required("name", payload.Name)
		c.Add("ratePerDozen")
		shared.WriteError(w, r, c.Err())
		return
	}

	var capType wages.CapType
	if !shared.Apply(w, r, h.Workshop, func() (err error) {
		capType, err = h.Workshop.Ledger.AddCapType(payload.Name, rate)
		return err
	}) {
		return
	}
	requestctx.Logger(r.Context()).Info("cap type added", zap.String("capTypeId", capType.ID), zap.String("name", capType.Name))
	api.Created(w, newCapTypeView(capType), middleware.GetRequestID(r.Context()))
}

type updateRateRequest struct {
	RatePerDozen json.RawMessage `json:"ratePerDozen"`
}

func (h *Handler) handleUpdateRate(w http.ResponseWriter, r *http.Request) {
	var payload updateRateRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	raw, _ := rateFrom(payload.RatePerDozen)
	rate, err := wages.ParseRate(raw)
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}

	var capType wages.CapType
	if !shared.Apply(w, r, h.Workshop, func() (err error) {
		capType, err = h.Workshop.Ledger.UpdateRate(chi.URLParam(r, "capTypeID"), rate)
		return err
	}) {
		return
	}
	api.Success(w, newCapTypeView(capType), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteCapType(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "capTypeID")
	if !shared.Apply(w, r, h.Workshop, func() error {
		return h.Workshop.Ledger.RemoveCapType(id)
	}) {
		return
	}
	requestctx.Logger(r.Context()).Info("cap type removed", zap.String("capTypeId", id))
	api.Success(w, map[string]string{"deleted": id}, middleware.GetRequestID(r.Context()))
}

type workerView struct {
	ID   string      `json:"id"`
	Wage json.Number `json:"wage"`
}

func (h *Handler) handleListWorkers(w http.ResponseWriter, r *http.Request) {
	workers := h.Workshop.Ledger.Workers()
	out := make([]workerView, 0, len(workers))
	for _, id := range workers {
		out = append(out, workerView{ID: id, Wage: shared.Number(h.Workshop.Ledger.ComputeWage(id))})
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

type addWorkerRequest struct {
	ID string `json:"id"`
}

func (h *Handler) handleAddWorker(w http.ResponseWriter, r *http.Request) {
	var payload addWorkerRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	id := strings.TrimSpace(payload.ID)
	if !shared.Apply(w, r, h.Workshop, func() error {
		return h.Workshop.Ledger.AddWorker(id)
	}) {
		return
	}
	api.Created(w, workerView{ID: id, Wage: shared.Number(h.Workshop.Ledger.ComputeWage(id))}, middleware.GetRequestID(r.Context()))
}

type productionRequest struct {
	TotalUnits json.RawMessage `json:"totalUnits"`
	Dozens     json.RawMessage `json:"dozens"`
}

type productionView struct {
	WorkerID   string `json:"workerId"`
	CapTypeID  string `json:"capTypeId"`
	Units      int    `json:"units"`
	Dozens     int    `json:"dozens"`
	LooseUnits int    `json:"looseUnits"`
}

func newProductionView(workerID, capTypeID string, units int) productionView {
	return productionView{
		WorkerID:   workerID,
		CapTypeID:  capTypeID,
		Units:      units,
		Dozens:     wages.DozensFromUnits(units),
		LooseUnits: wages.LooseUnits(units),
	}
}

// handleRecordProduction overwrites the cell with totalUnits, or with dozens
// converted to units when only dozens is sent.
func (h *Handler) handleRecordProduction(w http.ResponseWriter, r *http.Request) {
	var payload productionRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	workerID := chi.URLParam(r, "workerID")
	capTypeID := chi.URLParam(r, "capTypeID")

	if !shared.Apply(w, r, h.Workshop, func() error {
		if len(payload.TotalUnits) == 0 && len(payload.Dozens) > 0 {
			return h.Workshop.Ledger.RecordDozens(workerID, capTypeID, shared.ParseCount(payload.Dozens))
		}
		return h.Workshop.Ledger.RecordProduction(workerID, capTypeID, shared.ParseCount(payload.TotalUnits))
	}) {
		return
	}
	units := h.Workshop.Ledger.Units(workerID, capTypeID)
	api.Success(w, newProductionView(workerID, capTypeID, units), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleWorkerProduction(w http.ResponseWriter, r *http.Request) {
	entries := h.Workshop.Ledger.Production(chi.URLParam(r, "workerID"))
	out := make([]productionView, 0, len(entries))
	for _, e := range entries {
		out = append(out, newProductionView(e.WorkerID, e.CapTypeID, e.Units))
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

type wageView struct {
	WorkerID string      `json:"workerId"`
	Wage     json.Number `json:"wage"`
}

func (h *Handler) handleWage(w http.ResponseWriter, r *http.Request) {
	workerID := chi.URLParam(r, "workerID")
	api.Success(w, wageView{WorkerID: workerID, Wage: shared.Number(h.Workshop.Ledger.ComputeWage(workerID))}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSlip(w http.ResponseWriter, r *http.Request) {
	api.Success(w, newSlipView(h.Workshop.Ledger.WageSlip(chi.URLParam(r, "workerID"))), middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListSlips(w http.ResponseWriter, r *http.Request) {
	slips := h.Workshop.Ledger.WageSlips()
	out := make([]slipView, 0, len(slips))
	for _, slip := range slips {
		out = append(out, newSlipView(slip))
	}
	api.Success(w, out, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=wage-sheet.csv")
	if err := exports.WriteWageCSV(w, h.Workshop.Ledger.WageSlips()); err != nil {
		requestctx.Logger(r.Context()).Warn("wage csv export failed", zap.Error(err))
	}
}

func (h *Handler) handleExportPDF(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=wage-sheet.pdf")
	if err := exports.WriteWageSheetPDF(w, h.Workshop.Ledger.WageSlips(), h.Currency, h.Now()); err != nil {
		requestctx.Logger(r.Context()).Warn("wage pdf export failed", zap.Error(err))
	}
}
