package db_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	bookingdb "ms-cinema/internal/bookings/db"
	"ms-cinema/internal/models"
	showtimedb "ms-cinema/internal/showtimes/db"
)

func setupTestDB(t *testing.T) (*bookingdb.DB, *bun.DB) {
	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = bunDB.NewCreateTable().Model((*models.Booking)(nil)).Exec(context.Background())
	if err != nil {
		t.Fatalf("Failed to create bookings table: %v", err)
	}

	return &bookingdb.DB{Bun: bunDB}, bunDB
}

// setupRelationalDB builds the schema with the same referential policy the
// migrations declare, so the FK behavior itself is under test.
func setupRelationalDB(t *testing.T) *bun.DB {
	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	// A single connection keeps the in-memory schema and the PRAGMA alive.
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	ddl := []string{
		"PRAGMA foreign_keys = ON",
		`CREATE TABLE movies (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL UNIQUE,
			genre TEXT NOT NULL,
			duration INTEGER NOT NULL,
			rating REAL NOT NULL,
			release_year INTEGER NOT NULL
		)`,
		`CREATE TABLE showtimes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			movie_id INTEGER NOT NULL REFERENCES movies (id) ON DELETE RESTRICT,
			theater TEXT NOT NULL,
			start_time TIMESTAMP NOT NULL,
			end_time TIMESTAMP NOT NULL,
			price REAL NOT NULL
		)`,
		`CREATE TABLE bookings (
			booking_id TEXT PRIMARY KEY,
			showtime_id INTEGER NOT NULL REFERENCES showtimes (id) ON DELETE CASCADE,
			seat_number INTEGER NOT NULL,
			user_id TEXT NOT NULL,
			UNIQUE (showtime_id, seat_number)
		)`,
	}
	for _, stmt := range ddl {
		if _, err := bunDB.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("Failed to create schema: %v", err)
		}
	}

	return bunDB
}

func TestDeleteShowtime_CascadesBookings(t *testing.T) {
	bunDB := setupRelationalDB(t)
	defer bunDB.Close()

	store := &bookingdb.DB{Bun: bunDB}
	showtimeStore := &showtimedb.DB{Bun: bunDB}

	ctx := context.Background()
	movie := models.Movie{Title: "Inception", Genre: "Sci-Fi", Duration: 148, Rating: 8.8, ReleaseYear: 2010}
	_, err := bunDB.NewInsert().Model(&movie).Exec(ctx)
	assert.NoError(t, err)

	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	showtime := models.Showtime{MovieID: movie.ID, Theater: "Theater 1", StartTime: start, EndTime: start.Add(2 * time.Hour), Price: 12.5}
	assert.NoError(t, showtimeStore.InsertShowtime(&showtime))

	assert.NoError(t, store.CreateBooking(booking("b-1", showtime.ID, 7, "user-1")))
	assert.NoError(t, store.CreateBooking(booking("b-2", showtime.ID, 8, "user-2")))

	assert.NoError(t, showtimeStore.DeleteShowtime(showtime.ID))

	// The bookings go with the showtime; no orphans remain.
	left, err := store.ListBookingsByShowtime(showtime.ID)
	assert.NoError(t, err)
	assert.Empty(t, left)

	all, err := store.ListBookings()
	assert.NoError(t, err)
	assert.Empty(t, all)
}

func booking(id string, showtimeID int64, seat int, userID string) models.Booking {
	return models.Booking{BookingID: id, ShowtimeID: showtimeID, SeatNumber: seat, UserID: userID}
}

func TestCreateAndGetBooking(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	b := booking("b-1", 1, 7, "user-1")
	assert.NoError(t, store.CreateBooking(b))

	got, err := store.GetBookingByID("b-1")
	assert.NoError(t, err)
	assert.Equal(t, b, *got)
}

func TestCreateBooking_DuplicateSeat(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	assert.NoError(t, store.CreateBooking(booking("b-1", 1, 7, "user-1")))

	// Second booking for the same (showtime, seat) hits the unique constraint.
	err := store.CreateBooking(booking("b-2", 1, 7, "user-2"))
	assert.True(t, errors.Is(err, bookingdb.ErrDuplicateSeat))

	// First booking is untouched.
	got, err := store.GetBookingByID("b-1")
	assert.NoError(t, err)
	assert.Equal(t, "user-1", got.UserID)
}

func TestCreateBooking_SameSeatOtherShowtime(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	assert.NoError(t, store.CreateBooking(booking("b-1", 1, 7, "user-1")))
	assert.NoError(t, store.CreateBooking(booking("b-2", 2, 7, "user-1")))
}

func TestSeatTaken(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	assert.NoError(t, store.CreateBooking(booking("b-1", 1, 7, "user-1")))

	taken, err := store.SeatTaken(1, 7)
	assert.NoError(t, err)
	assert.True(t, taken)

	taken, err = store.SeatTaken(1, 8)
	assert.NoError(t, err)
	assert.False(t, taken)
}

func TestGetBooking_NotFound(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	_, err := store.GetBookingByID("missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestDeleteBooking_FreesSeat(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	assert.NoError(t, store.CreateBooking(booking("b-1", 1, 7, "user-1")))
	assert.NoError(t, store.DeleteBooking("b-1"))

	taken, err := store.SeatTaken(1, 7)
	assert.NoError(t, err)
	assert.False(t, taken)

	// The seat can be booked again once the old booking is gone.
	assert.NoError(t, store.CreateBooking(booking("b-2", 1, 7, "user-2")))
}

func TestListBookings(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	assert.NoError(t, store.CreateBooking(booking("b-1", 1, 7, "user-1")))
	assert.NoError(t, store.CreateBooking(booking("b-2", 1, 8, "user-2")))
	assert.NoError(t, store.CreateBooking(booking("b-3", 2, 7, "user-1")))

	all, err := store.ListBookings()
	assert.NoError(t, err)
	assert.Len(t, all, 3)

	byShowtime, err := store.ListBookingsByShowtime(1)
	assert.NoError(t, err)
	assert.Len(t, byShowtime, 2)

	byUser, err := store.ListBookingsByUser("user-1")
	assert.NoError(t, err)
	assert.Len(t, byUser, 2)
}
