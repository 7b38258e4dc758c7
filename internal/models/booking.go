package models

import (
	"github.com/uptrace/bun"
)

type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	BookingID  string `bun:"booking_id,pk" json:"bookingId"`
	ShowtimeID int64  `bun:"showtime_id,notnull,unique:showtime_seat" json:"showtimeId"`
	SeatNumber int    `bun:"seat_number,notnull,unique:showtime_seat" json:"seatNumber"`
	UserID     string `bun:"user_id,notnull" json:"userId"`
}

// BookingRequest is the shape the booking endpoint accepts. The booking
// identity is generated server side, so the request carries none.
type BookingRequest struct {
	ShowtimeID int64  `json:"showtimeId"`
	SeatNumber int    `json:"seatNumber"`
	UserID     string `json:"userId"`
}

type BookingResponse struct {
	BookingID string `json:"bookingId"`
}
