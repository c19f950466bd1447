package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/graziabaiamonte/Appointments-App-zm/internal/domain"
	"github.com/graziabaiamonte/Appointments-App-zm/internal/service/bookings"
	"github.com/graziabaiamonte/Appointments-App-zm/internal/store"
)

type bookingsService interface {
	Create(ctx context.Context, in bookings.CreateInput) (domain.Appointment, error)
	List(ctx context.Context) ([]domain.Appointment, error)
	Cancel(ctx context.Context, id int64) error
	AvailableSlots(ctx context.Context, date string) ([]string, error)
	Stats(ctx context.Context) (bookings.Stats, error)
}

type AppointmentsHandler struct {
	svc bookingsService
	log *slog.Logger
}

func NewAppointmentsHandler(svc bookingsService, log *slog.Logger) *AppointmentsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &AppointmentsHandler{
		svc: svc,
		log: log.With(slog.String("component", "rest.appointments")),
	}
}

func (h *AppointmentsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/appointments", h.list)
	mux.HandleFunc("POST /api/appointments", h.create)
	mux.HandleFunc("DELETE /api/appointments/{id}", h.cancel)
	mux.HandleFunc("GET /api/appointments/available-slots", h.availableSlots)
	mux.HandleFunc("GET /api/stats", h.stats)
}

type createAppointmentRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
	Time        string `json:"time"`
}

type appointmentItem struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Email        string `json:"email"`
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Date         string `json:"appointment_date"`
	Time         string `json:"appointment_time"`
	CreatedAt    string `json:"created_at"`
	CalendarLink string `json:"calendar_link,omitempty"`
}

type statsResponse struct {
	Total        int `json:"total"`
	Upcoming     int `json:"upcoming"`
	Past         int `json:"past"`
	PeopleServed int `json:"people_served"`
}

func (h *AppointmentsHandler) list(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(slog.String("op", "list"))

	appts, err := h.svc.List(r.Context())
	if err != nil {
		log.Error("appointments list failed", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "failed to fetch appointments")
		return
	}

	items := make([]appointmentItem, 0, len(appts))
	for _, a := range appts {
		items = append(items, toItem(a))
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *AppointmentsHandler) create(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(slog.String("op", "create"))

	var req createAppointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("invalid request body", slog.Any("err", err))
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	appt, err := h.svc.Create(r.Context(), bookings.CreateInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			log.Info("slot already booked",
				slog.String("date", req.Date),
				slog.String("time", req.Time),
			)
			writeError(w, http.StatusConflict, "This time slot is already booked")
			return
		}
		var vErr *bookings.ValidationError
		if errors.As(err, &vErr) {
			log.Warn("booking rejected", slog.String("reason", vErr.Error()))
			writeError(w, http.StatusBadRequest, vErr.Error())
			return
		}
		log.Error("appointment create failed", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "failed to create appointment")
		return
	}

	writeJSON(w, http.StatusCreated, toItem(appt))
}

func (h *AppointmentsHandler) cancel(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(slog.String("op", "cancel"))

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		log.Warn("invalid appointment id", slog.String("id", r.PathValue("id")))
		writeError(w, http.StatusBadRequest, "invalid appointment id")
		return
	}

	if err := h.svc.Cancel(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Appointment not found")
			return
		}
		if errors.Is(err, bookings.ErrTooLateToCancel) {
			log.Info("cancellation inside cutoff", slog.Int64("appointment_id", id))
			writeError(w, http.StatusConflict, "Cannot cancel appointments within 24 hours")
			return
		}
		log.Error("appointment cancel failed", slog.Any("err", err), slog.Int64("appointment_id", id))
		writeError(w, http.StatusInternalServerError, "failed to cancel appointment")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Appointment cancelled successfully"})
}

func (h *AppointmentsHandler) availableSlots(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(slog.String("op", "available_slots"))

	slots, err := h.svc.AvailableSlots(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		var vErr *bookings.ValidationError
		if errors.As(err, &vErr) {
			log.Warn("invalid slots query", slog.String("reason", vErr.Error()))
			writeError(w, http.StatusBadRequest, vErr.Error())
			return
		}
		log.Error("available slots failed", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "failed to fetch available slots")
		return
	}

	writeJSON(w, http.StatusOK, slots)
}

func (h *AppointmentsHandler) stats(w http.ResponseWriter, r *http.Request) {
	log := h.log.With(slog.String("op", "stats"))

	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		log.Error("stats failed", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "failed to fetch stats")
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		Total:        stats.Total,
		Upcoming:     stats.Upcoming,
		Past:         stats.Past,
		PeopleServed: stats.PeopleServed,
	})
}

func toItem(a domain.Appointment) appointmentItem {
	return appointmentItem{
		ID:           a.ID,
		FirstName:    a.FirstName,
		LastName:     a.LastName,
		Email:        a.Email,
		Title:        a.Title,
		Description:  a.Description,
		Date:         a.Date,
		Time:         a.Time,
		CreatedAt:    a.CreatedAt.UTC().Format(time.RFC3339),
		CalendarLink: domain.GoogleCalendarLink(a),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
