package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ms-cinema/internal/apperr"
	"ms-cinema/internal/logger"
	"ms-cinema/internal/models"
	"ms-cinema/internal/showtimes"
	"ms-cinema/internal/utils"
)

type Handler struct {
	Service *showtimes.Service
	Logger  *logger.Logger
}

func NewHandler(service *showtimes.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/showtimes", func(r chi.Router) {
		r.Get("/all", h.ListShowtimes)
		r.Get("/{id}", h.GetShowtimeByID)
		r.Get("/movie/{movieId}", h.ListByMovie)
		r.Get("/theater/{theater}", h.ListByTheater)
		r.Post("/", h.AddShowtime)
		r.Post("/update/{id}", h.UpdateShowtime)
		r.Delete("/{id}", h.DeleteShowtime)
	})
}

func (h *Handler) AddShowtime(w http.ResponseWriter, r *http.Request) {
	var showtime models.Showtime
	if err := json.NewDecoder(r.Body).Decode(&showtime); err != nil {
		h.Logger.Error("SHOWTIME", fmt.Sprintf("AddShowtime: invalid request body: %v", err))
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.AddShowtime(showtime)
	if err != nil {
		h.Logger.Error("SHOWTIME", fmt.Sprintf("AddShowtime: %v", err))
		utils.WriteError(w, apperr.HTTPStatus(err), err.Error())
		return
	}

	h.Logger.Info("SHOWTIME", fmt.Sprintf("AddShowtime: scheduled showtime %d in %q", created.ID, created.Theater))
	utils.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateShowtime(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid showtime id")
		return
	}

	var showtime models.Showtime
	if err := json.NewDecoder(r.Body).Decode(&showtime); err != nil {
		h.Logger.Error("SHOWTIME", fmt.Sprintf("UpdateShowtime: invalid request body: %v", err))
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.UpdateShowtime(id, showtime)
	if err != nil {
		h.Logger.Error("SHOWTIME", fmt.Sprintf("UpdateShowtime: %v", err))
		utils.WriteError(w, apperr.HTTPStatus(err), err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteShowtime(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid showtime id")
		return
	}

	if err := h.Service.DeleteShowtime(id); err != nil {
		h.Logger.Error("SHOWTIME", fmt.Sprintf("DeleteShowtime: %v", err))
		utils.WriteError(w, apperr.HTTPStatus(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetShowtimeByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid showtime id")
		return
	}

	showtime, err := h.Service.GetShowtimeByID(id)
	if err != nil {
		utils.WriteError(w, apperr.HTTPStatus(err), err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, showtime)
}

func (h *Handler) ListShowtimes(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListShowtimes()
	if err != nil {
		utils.WriteError(w, apperr.HTTPStatus(err), err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) ListByMovie(w http.ResponseWriter, r *http.Request) {
	movieID, err := strconv.ParseInt(chi.URLParam(r, "movieId"), 10, 64)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid movie id")
		return
	}

	list, err := h.Service.ListByMovie(movieID)
	if err != nil {
		utils.WriteError(w, apperr.HTTPStatus(err), err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) ListByTheater(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListByTheater(chi.URLParam(r, "theater"))
	if err != nil {
		utils.WriteError(w, apperr.HTTPStatus(err), err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}
