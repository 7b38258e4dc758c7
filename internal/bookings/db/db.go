package db

import (
	"context"
	"errors"

	"github.com/uptrace/bun"

	"ms-cinema/internal/database"
	"ms-cinema/internal/models"
)

// ErrDuplicateSeat surfaces the (showtime_id, seat_number) unique constraint.
// The constraint, not the pre-check, is the authoritative double-booking
// signal under concurrency.
var ErrDuplicateSeat = errors.New("seat already booked for this showtime")

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateBooking(booking models.Booking) error {
	_, err := d.Bun.NewInsert().Model(&booking).Exec(context.Background())
	if database.IsUniqueViolation(err) {
		return ErrDuplicateSeat
	}
	return err
}

func (d *DB) DeleteBooking(id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Booking)(nil)).
		Where("booking_id = ?", id).
		Exec(context.Background())
	return err
}

func (d *DB) GetBookingByID(id string) (*models.Booking, error) {
	var booking models.Booking
	err := d.Bun.NewSelect().
		Model(&booking).
		Where("booking_id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (d *DB) ListBookings() ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Order("booking_id ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (d *DB) ListBookingsByShowtime(showtimeID int64) ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Where("showtime_id = ?", showtimeID).
		Order("seat_number ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (d *DB) ListBookingsByUser(userID string) ([]models.Booking, error) {
	var bookings []models.Booking
	err := d.Bun.NewSelect().
		Model(&bookings).
		Where("user_id = ?", userID).
		Order("booking_id ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (d *DB) SeatTaken(showtimeID int64, seatNumber int) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Booking)(nil)).
		Where("showtime_id = ?", showtimeID).
		Where("seat_number = ?", seatNumber).
		Exists(context.Background())
}
