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
	"ms-cinema/internal/movies"
	"ms-cinema/internal/utils"
)

type Handler struct {
	Service *movies.Service
	Logger  *logger.Logger
}

func NewHandler(service *movies.Service, log *logger.Logger) *Handler {
	return &Handler{Service: service, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/movies", func(r chi.Router) {
		r.Get("/all", h.ListMovies)
		r.Get("/{id}", h.GetMovieByID)
		r.Get("/title/{title}", h.GetMovieByTitle)
		r.Get("/genre/{genre}", h.ListByGenre)
		r.Get("/year/{year}", h.ListByReleaseYear)
		r.Post("/", h.AddMovie)
		r.Post("/update/{title}", h.UpdateMovie)
		r.Delete("/{id}", h.DeleteMovieByID)
		r.Delete("/title/{title}", h.DeleteMovieByTitle)
	})
}

func (h *Handler) AddMovie(w http.ResponseWriter, r *http.Request) {
	var movie models.Movie
	if err := json.NewDecoder(r.Body).Decode(&movie); err != nil {
		h.Logger.Error("MOVIE", fmt.Sprintf("AddMovie: invalid request body: %v", err))
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.Service.AddMovie(movie)
	if err != nil {
		h.Logger.Error("MOVIE", fmt.Sprintf("AddMovie: %v", err))
		utils.WriteError(w, apperr.HTTPStatus(err), err.Error())
		return
	}

	h.Logger.Info("MOVIE", fmt.Sprintf("AddMovie: created movie %d (%s)", created.ID, created.Title))
	utils.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")

	var movie models.Movie
	if err := json.NewDecoder(r.Body).Decode(&movie); err != nil {
		h.Logger.Error("MOVIE", fmt.Sprintf("UpdateMovie: invalid request body: %v", err))
		utils.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.Service.UpdateMovie(title, movie)
	if err != nil {
		h.Logger.Error("MOVIE", fmt.Sprintf("UpdateMovie: %v", err))
		utils.WriteError(w, apperr.HTTPStatus(err), err.Error())
		return
	}

	utils.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteMovieByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid movie id")
		return
	}

	if err := h.Service.DeleteMovieByID(id); err != nil {
		h.Logger.Error("MOVIE", fmt.Sprintf("DeleteMovieByID: %v", err))
		utils.WriteError(w, apperr.HTTPStatus(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteMovieByTitle(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "title")

	if err := h.Service.DeleteMovieByTitle(title); err != nil {
		h.Logger.Error("MOVIE", fmt.Sprintf("DeleteMovieByTitle: %v", err))
		utils.WriteError(w, apperr.HTTPStatus(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetMovieByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid movie id")
		return
	}

	movie, err := h.Service.GetMovieByID(id)
	if err != nil {
		utils.WriteError(w, apperr.HTTPStatus(err), err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, movie)
}

func (h *Handler) GetMovieByTitle(w http.ResponseWriter, r *http.Request) {
	movie, err := h.Service.GetMovieByTitle(chi.URLParam(r, "title"))
	if err != nil {
		utils.WriteError(w, apperr.HTTPStatus(err), err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, movie)
}

func (h *Handler) ListMovies(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListMovies()
	if err != nil {
		utils.WriteError(w, apperr.HTTPStatus(err), err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) ListByGenre(w http.ResponseWriter, r *http.Request) {
	list, err := h.Service.ListByGenre(chi.URLParam(r, "genre"))
	if err != nil {
		utils.WriteError(w, apperr.HTTPStatus(err), err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) ListByReleaseYear(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid release year")
		return
	}

	list, err := h.Service.ListByReleaseYear(year)
	if err != nil {
		utils.WriteError(w, apperr.HTTPStatus(err), err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, list)
}
