package showtimes

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"ms-cinema/internal/apperr"
	"ms-cinema/internal/clock"
	"ms-cinema/internal/kafka"
	"ms-cinema/internal/logger"
	"ms-cinema/internal/models"
	showtimedb "ms-cinema/internal/showtimes/db"
)

type DBLayer interface {
	InsertShowtime(showtime *models.Showtime) error
	UpdateShowtime(showtime models.Showtime) error
	DeleteShowtime(id int64) error
	GetShowtimeByID(id int64) (*models.Showtime, error)
	ListShowtimes() ([]models.Showtime, error)
	ListShowtimesByMovie(movieID int64) ([]models.Showtime, error)
	ListShowtimesByTheater(theater string) ([]models.Showtime, error)
}

// MovieStore is the read-only slice of the movie catalog the scheduler needs.
type MovieStore interface {
	MovieExistsByID(id int64) (bool, error)
}

type Publisher interface {
	Publish(topic string, key string, value []byte) error
}

// Service schedules showtimes. It owns two invariants: a showtime's interval
// is valid and in the future, and no two showtimes in one theater intersect.
type Service struct {
	DB     DBLayer
	Movies MovieStore
	Clock  clock.Clock
	Kafka  Publisher
	Logger *logger.Logger
}

func NewService(db DBLayer, movies MovieStore, clk clock.Clock, pub Publisher, log *logger.Logger) *Service {
	return &Service{DB: db, Movies: movies, Clock: clk, Kafka: pub, Logger: log}
}

func (s *Service) validate(showtime models.Showtime) error {
	if showtime.Theater == "" {
		return apperr.Invalid("theater is required")
	}
	if showtime.Price < 0 {
		return apperr.Invalid("price must not be negative")
	}

	exists, err := s.Movies.MovieExistsByID(showtime.MovieID)
	if err != nil {
		return apperr.Unexpected(err, "failed to check movie %d", showtime.MovieID)
	}
	if !exists {
		return apperr.NotFound("movie with id %d not found", showtime.MovieID)
	}

	if !showtime.StartTime.Before(showtime.EndTime) {
		return apperr.Invalid("start time must be before end time")
	}
	if !showtime.StartTime.After(s.Clock.Now()) {
		return apperr.Invalid("showtime must be scheduled in the future")
	}
	return nil
}

func (s *Service) AddShowtime(showtime models.Showtime) (*models.Showtime, error) {
	if err := s.validate(showtime); err != nil {
		return nil, err
	}

	showtime.ID = 0
	if err := s.DB.InsertShowtime(&showtime); err != nil {
		if errors.Is(err, showtimedb.ErrOverlap) {
			return nil, apperr.Conflict("theater %q already has a showtime at the selected time", showtime.Theater)
		}
		return nil, apperr.Unexpected(err, "failed to create showtime")
	}

	s.publish(kafka.TopicShowtimeCreated, showtime)
	return &showtime, nil
}

func (s *Service) UpdateShowtime(id int64, showtime models.Showtime) (*models.Showtime, error) {
	if _, err := s.DB.GetShowtimeByID(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("showtime with id %d not found", id)
		}
		return nil, apperr.Unexpected(err, "failed to load showtime %d", id)
	}

	if err := s.validate(showtime); err != nil {
		return nil, err
	}

	showtime.ID = id
	if err := s.DB.UpdateShowtime(showtime); err != nil {
		if errors.Is(err, showtimedb.ErrOverlap) {
			return nil, apperr.Conflict("theater %q already has a showtime at the selected time", showtime.Theater)
		}
		return nil, apperr.Unexpected(err, "failed to update showtime %d", id)
	}

	s.publish(kafka.TopicShowtimeUpdated, showtime)
	return &showtime, nil
}

// DeleteShowtime removes the showtime unconditionally; the storage layer
// cascade-deletes any bookings that reference it.
func (s *Service) DeleteShowtime(id int64) error {
	showtime, err := s.DB.GetShowtimeByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("showtime with id %d not found", id)
		}
		return apperr.Unexpected(err, "failed to load showtime %d", id)
	}

	if err := s.DB.DeleteShowtime(id); err != nil {
		return apperr.Unexpected(err, "failed to delete showtime %d", id)
	}

	s.publish(kafka.TopicShowtimeDeleted, *showtime)
	return nil
}

func (s *Service) GetShowtimeByID(id int64) (*models.Showtime, error) {
	showtime, err := s.DB.GetShowtimeByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("showtime with id %d not found", id)
		}
		return nil, apperr.Unexpected(err, "failed to load showtime %d", id)
	}
	return showtime, nil
}

func (s *Service) ListShowtimes() ([]models.Showtime, error) {
	showtimes, err := s.DB.ListShowtimes()
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to list showtimes")
	}
	return showtimes, nil
}

// ListByMovie fails only when the movie itself is unknown; a scheduled movie
// with no showtimes yields an empty list.
func (s *Service) ListByMovie(movieID int64) ([]models.Showtime, error) {
	exists, err := s.Movies.MovieExistsByID(movieID)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to check movie %d", movieID)
	}
	if !exists {
		return nil, apperr.NotFound("movie with id %d not found", movieID)
	}

	showtimes, err := s.DB.ListShowtimesByMovie(movieID)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to list showtimes for movie %d", movieID)
	}
	return showtimes, nil
}

func (s *Service) ListByTheater(theater string) ([]models.Showtime, error) {
	showtimes, err := s.DB.ListShowtimesByTheater(theater)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to list showtimes for theater %q", theater)
	}
	if len(showtimes) == 0 {
		return nil, apperr.NotFound("no showtimes found for theater %q", theater)
	}
	return showtimes, nil
}

func (s *Service) publish(topic string, showtime models.Showtime) {
	if s.Kafka == nil {
		return
	}
	value, err := json.Marshal(showtime)
	if err != nil {
		s.Logger.Error("SHOWTIME", fmt.Sprintf("failed to marshal event for showtime %d: %v", showtime.ID, err))
		return
	}
	if err := s.Kafka.Publish(topic, strconv.FormatInt(showtime.ID, 10), value); err != nil {
		s.Logger.Warn("KAFKA", fmt.Sprintf("failed to publish %s for showtime %d: %v", topic, showtime.ID, err))
	}
}
