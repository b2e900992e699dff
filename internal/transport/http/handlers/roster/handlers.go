package rosterhandler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"capworks/internal/domain/roster"
	"capworks/internal/domain/validation"
	"capworks/internal/domain/workshop"
	"capworks/internal/requestctx"
	"capworks/internal/transport/http/api"
	"capworks/internal/transport/http/middleware"
	"capworks/internal/transport/http/shared"
)

type Handler struct {
	Workshop *workshop.Service
	Now      func() time.Time
}

func NewHandler(svc *workshop.Service) *Handler {
	return &Handler{Workshop: svc, Now: time.Now}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/profiles", func(r chi.Router) {
		r.Get("/", h.handleListProfiles)
		r.Post("/", h.handleCreateProfile)
		r.Get("/{profileID}", h.handleGetProfile)
		r.Put("/{profileID}", h.handleUpdateProfile)
		r.Delete("/{profileID}", h.handleDeleteProfile)
	})
	r.Route("/attendance", func(r chi.Router) {
		r.Get("/", h.handleAttendance)
		r.Put("/{profileID}/{date}", h.handleMark)
	})
}

type profileRequest struct {
	Name        string `json:"name"`
	DateOfBirth string `json:"dateOfBirth"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photoUrl"`
}

// toProfile converts the payload; an unparseable date of birth is left zero
// so the book reports it together with any other missing field.
func (p profileRequest) toProfile() roster.Profile {
	dob, err := shared.ParseDate(strings.TrimSpace(p.DateOfBirth))
	if err != nil {
		dob = time.Time{}
	}
	return roster.Profile{
		Name:        p.Name,
		DateOfBirth: dob,
		Phone:       p.Phone,
		Email:       p.Email,
		PhotoURL:    p.PhotoURL,
	}
}

func (h *Handler) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles := h.Workshop.Roster.Profiles(r.URL.Query().Get("search"))
	page := shared.ParsePagination(r, 100, 500)
	api.Success(w, map[string]any{
		"items": shared.Page(profiles, page),
		"total": len(profiles),
	}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, err := h.Workshop.Roster.Profile(chi.URLParam(r, "profileID"))
	if err != nil {
		shared.WriteError(w, r, err)
		return
	}
	api.Success(w, profile, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreateProfile(w http.ResponseWriter, r *http.Request) {
	var payload profileRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	var profile roster.Profile
	if !shared.Apply(w, r, h.Workshop, func() (err error) {
		profile, err = h.Workshop.Roster.AddProfile(payload.toProfile())
		return err
	}) {
		return
	}
	requestctx.Logger(r.Context()).Info("worker profile added", zap.String("profileId", profile.ID))
	api.Created(w, profile, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var payload profileRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	var profile roster.Profile
	if !shared.Apply(w, r, h.Workshop, func() (err error) {
		profile, err = h.Workshop.Roster.UpdateProfile(chi.URLParam(r, "profileID"), payload.toProfile())
		return err
	}) {
		return
	}
	api.Success(w, profile, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "profileID")
	if !shared.Apply(w, r, h.Workshop, func() error {
		return h.Workshop.Roster.RemoveProfile(id)
	}) {
		return
	}
	api.Success(w, map[string]string{"deleted": id}, middleware.GetRequestID(r.Context()))
}

type markRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleMark(w http.ResponseWriter, r *http.Request) {
	var payload markRequest
	if !shared.DecodeJSON(w, r, &payload) {
		return
	}
	day, err := shared.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		day = time.Time{}
	}
	var mark roster.Mark
	if !shared.Apply(w, r, h.Workshop, func() (err error) {
		mark, err = h.Workshop.Roster.MarkAttendance(chi.URLParam(r, "profileID"), day, payload.Status)
		return err
	}) {
		return
	}
	api.Success(w, mark, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAttendance(w http.ResponseWriter, r *http.Request) {
	day := shared.Today(h.Now())
	if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil {
			shared.WriteError(w, r, validation.New("date"))
			return
		}
		day = parsed
	}
	api.Success(w, h.Workshop.Roster.Attendance(day), middleware.GetRequestID(r.Context()))
}
