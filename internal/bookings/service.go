package bookings

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"ms-cinema/internal/apperr"
	bookingdb "ms-cinema/internal/bookings/db"
	"ms-cinema/internal/bookings/qr"
	"ms-cinema/internal/clock"
	"ms-cinema/internal/kafka"
	"ms-cinema/internal/logger"
	"ms-cinema/internal/models"
)

type DBLayer interface {
	CreateBooking(booking models.Booking) error
	DeleteBooking(id string) error
	GetBookingByID(id string) (*models.Booking, error)
	ListBookings() ([]models.Booking, error)
	ListBookingsByShowtime(showtimeID int64) ([]models.Booking, error)
	ListBookingsByUser(userID string) ([]models.Booking, error)
	SeatTaken(showtimeID int64, seatNumber int) (bool, error)
}

// ShowtimeStore is the read-only slice of the scheduler the ledger needs.
type ShowtimeStore interface {
	GetShowtimeByID(id int64) (*models.Showtime, error)
}

// SeatLock is the advisory hold guarding the check-then-insert window.
type SeatLock interface {
	Hold(showtimeID int64, seatNumber int, holder string) (bool, error)
	Release(showtimeID int64, seatNumber int, holder string) error
}

type Publisher interface {
	Publish(topic string, key string, value []byte) error
}

// Service is the booking ledger. Its invariant: at most one live booking per
// (showtime, seat) pair.
type Service struct {
	DB        DBLayer
	Showtimes ShowtimeStore
	Lock      SeatLock
	Clock     clock.Clock
	Kafka     Publisher
	QR        *qr.Generator
	Logger    *logger.Logger
}

func NewService(db DBLayer, showtimes ShowtimeStore, lock SeatLock, clk clock.Clock, pub Publisher, qrGen *qr.Generator, log *logger.Logger) *Service {
	return &Service{DB: db, Showtimes: showtimes, Lock: lock, Clock: clk, Kafka: pub, QR: qrGen, Logger: log}
}

func (s *Service) BookTicket(req models.BookingRequest) (string, error) {
	if req.SeatNumber < 1 {
		return "", apperr.Invalid("seat number must be at least 1")
	}
	if req.UserID == "" {
		return "", apperr.Invalid("user id is required")
	}

	showtime, err := s.Showtimes.GetShowtimeByID(req.ShowtimeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperr.NotFound("showtime with id %d not found", req.ShowtimeID)
		}
		return "", apperr.Unexpected(err, "failed to load showtime %d", req.ShowtimeID)
	}

	if !showtime.StartTime.After(s.Clock.Now()) {
		return "", apperr.Invalid("cannot book tickets for a showtime that has already started")
	}

	bookingID := uuid.NewString()

	held, err := s.Lock.Hold(req.ShowtimeID, req.SeatNumber, bookingID)
	if err != nil {
		return "", apperr.Unexpected(err, "failed to hold seat %d for showtime %d", req.SeatNumber, req.ShowtimeID)
	}
	if !held {
		return "", apperr.Conflict("seat %d is being booked by another request", req.SeatNumber)
	}
	defer func() {
		if err := s.Lock.Release(req.ShowtimeID, req.SeatNumber, bookingID); err != nil {
			s.Logger.Warn("BOOKING", fmt.Sprintf("failed to release seat hold %d/%d: %v", req.ShowtimeID, req.SeatNumber, err))
		}
	}()

	taken, err := s.DB.SeatTaken(req.ShowtimeID, req.SeatNumber)
	if err != nil {
		return "", apperr.Unexpected(err, "failed to check seat %d for showtime %d", req.SeatNumber, req.ShowtimeID)
	}
	if taken {
		return "", apperr.Conflict("seat %d is already booked for showtime %d", req.SeatNumber, req.ShowtimeID)
	}

	booking := models.Booking{
		BookingID:  bookingID,
		ShowtimeID: req.ShowtimeID,
		SeatNumber: req.SeatNumber,
		UserID:     req.UserID,
	}
	if err := s.DB.CreateBooking(booking); err != nil {
		if errors.Is(err, bookingdb.ErrDuplicateSeat) {
			// Lost the race after the pre-check passed; same Conflict either way.
			return "", apperr.Conflict("seat %d is already booked for showtime %d", req.SeatNumber, req.ShowtimeID)
		}
		return "", apperr.Unexpected(err, "failed to create booking for showtime %d", req.ShowtimeID)
	}

	s.publish(kafka.TopicBookingCreated, booking)
	return bookingID, nil
}

func (s *Service) CancelBooking(id string) error {
	booking, err := s.DB.GetBookingByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("booking with id %s not found", id)
		}
		return apperr.Unexpected(err, "failed to load booking %s", id)
	}

	showtime, err := s.Showtimes.GetShowtimeByID(booking.ShowtimeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("showtime for booking %s not found", id)
		}
		return apperr.Unexpected(err, "failed to load showtime %d", booking.ShowtimeID)
	}

	if !showtime.StartTime.After(s.Clock.Now()) {
		return apperr.Invalid("cannot cancel a booking for a showtime that has already started")
	}

	if err := s.DB.DeleteBooking(id); err != nil {
		return apperr.Unexpected(err, "failed to delete booking %s", id)
	}

	s.publish(kafka.TopicBookingCancelled, *booking)
	return nil
}

func (s *Service) GetBookingByID(id string) (*models.Booking, error) {
	booking, err := s.DB.GetBookingByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("booking with id %s not found", id)
		}
		return nil, apperr.Unexpected(err, "failed to load booking %s", id)
	}
	return booking, nil
}

func (s *Service) ListBookings() ([]models.Booking, error) {
	bookings, err := s.DB.ListBookings()
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to list bookings")
	}
	return bookings, nil
}

func (s *Service) ListByUser(userID string) ([]models.Booking, error) {
	bookings, err := s.DB.ListBookingsByUser(userID)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to list bookings for user %s", userID)
	}
	return bookings, nil
}

func (s *Service) ListByShowtime(showtimeID int64) ([]models.Booking, error) {
	bookings, err := s.DB.ListBookingsByShowtime(showtimeID)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to list bookings for showtime %d", showtimeID)
	}
	return bookings, nil
}

// ConfirmationQR renders the booking's door-scan QR code as PNG bytes.
func (s *Service) ConfirmationQR(id string) ([]byte, error) {
	booking, err := s.GetBookingByID(id)
	if err != nil {
		return nil, err
	}

	png, err := s.QR.GenerateBookingQR(*booking)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to generate QR for booking %s", id)
	}
	return png, nil
}

func (s *Service) publish(topic string, booking models.Booking) {
	if s.Kafka == nil {
		return
	}
	value, err := json.Marshal(booking)
	if err != nil {
		s.Logger.Error("BOOKING", fmt.Sprintf("failed to marshal event for booking %s: %v", booking.BookingID, err))
		return
	}
	if err := s.Kafka.Publish(topic, booking.BookingID, value); err != nil {
		s.Logger.Warn("KAFKA", fmt.Sprintf("failed to publish %s for booking %s: %v", topic, booking.BookingID, err))
	}
}
