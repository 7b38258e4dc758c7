package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ms-cinema/internal/apperr"
	"ms-cinema/internal/bookings"
	"ms-cinema/internal/logger"
	"ms-cinema/internal/models"
	"ms-cinema/internal/utils"
)

type Handler struct {
	Service *bookings.Service
	Logger  *logger.Logger
}

func NewHandler(service *bookings.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/bookings", func(r chi.Router) {
		r.Post("/", h.BookTicket)
		r.Get("/all", h.ListBookings)
		r.Get("/user/{userId}", h.ListByUser)
		r.Get("/showtime/{showtimeId}", h.ListByShowtime)
		r.Get("/{bookingId}", h.GetBookingByID)
		r.Get("/{bookingId}/qr", h.ConfirmationQR)
		r.Delete("/{bookingId}", h.CancelBooking)
	})
}

func (h *Handler) BookTicket(w http.ResponseWriter, r *http.Request) {
	var req models.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("BOOKING", fmt.Sprintf("BookTicket: invalid request body: %v", err))
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bookingID, err := h.Service.BookTicket(req)
	if err != nil {
		h.Logger.Error("BOOKING", fmt.Sprintf("BookTicket: %v", err))
		utils.WriteError(w, apperr.HTTPStatus(err), err.Error())
		return
	}

	h.Logger.Info("BOOKING", fmt.Sprintf("BookTicket: booked seat %d on showtime %d as %s", req.SeatNumber, req.ShowtimeID, bookingID))
	utils.WriteJSON(w, http.StatusCreated, models.BookingResponse{BookingID: bookingID})
}

func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingID := chi.URLParam(r, "bookingId")

	if err := h.Service.CancelBooking(bookingID); err != nil {
		h.Logger.Error("BOOKING", fmt.Sprintf("CancelBooking: %v", err))
		utils.WriteError(w, apperr.HTTPStatus(err), err.Error())
		return
	}

	h.Logger.Info("BOOKING", fmt.Sprintf("CancelBooking: cancelled %s", bookingID))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetBookingByID(w http.ResponseWriter, r *http.Request) {
	booking, err := h.Service.GetBookingByID(chi.URLParam(r, "bookingId"))
	if err != nil {
		utils.WriteError(w, apperr.HTTPStatus(err), err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, booking)
}

func (h *Handler) ListBookings(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListBookings()
	if err != nil {
		utils.WriteError(w, apperr.HTTPStatus(err), err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) ListByUser(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListByUser(chi.URLParam(r, "userId"))
	if err != nil {
		utils.WriteError(w, apperr.HTTPStatus(err), err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) ListByShowtime(w http.ResponseWriter, r *http.Request) {
	showtimeID, err := strconv.ParseInt(chi.URLParam(r, "showtimeId"), 10, 64)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid showtime id")
		return
	}

	list, err := h.Service.ListByShowtime(showtimeID)
	if err != nil {
		utils.WriteError(w, apperr.HTTPStatus(err), err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) ConfirmationQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.Service.ConfirmationQR(chi.URLParam(r, "bookingId"))
	if err != nil {
		h.Logger.Error("BOOKING", fmt.Sprintf("ConfirmationQR: %v", err))
		utils.WriteError(w, apperr.HTTPStatus(err), err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(png); err != nil {
		h.Logger.Error("BOOKING", fmt.Sprintf("ConfirmationQR: failed to write response: %v", err))
	}
}
