package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"ms-cinema/internal/models"
)

// ErrOverlap is returned when an insert or update would put two showtimes in
// the same theater at intersecting times.
var ErrOverlap = errors.New("overlapping showtime in theater")

type DB struct {
	Bun *bun.DB
	// TxOptions applies to the overlap-check transactions. Production wiring
	// sets serializable isolation so two concurrent proposals cannot both
	// observe zero conflicts; SQLite tests leave it nil since SQLite
	// transactions are serializable already.
	TxOptions *sql.TxOptions
}

// overlapQuery selects showtimes in theater whose [start_time, end_time)
// interval intersects [start, end). Touching endpoints do not intersect.
// excludeID > 0 leaves that row out of the conflict set.
func overlapQuery(idb bun.IDB, theater string, start, end time.Time, excludeID int64) *bun.SelectQuery {
	q := idb.NewSelect().
		Model((*models.Showtime)(nil)).
		Where("theater = ?", theater).
		Where("NOT (end_time <= ? OR start_time >= ?)", start, end)
	if excludeID > 0 {
		q = q.Where("id != ?", excludeID)
	}
	return q
}

// FindOverlapping returns every stored showtime in theater intersecting
// [start, end).
func (d *DB) FindOverlapping(theater string, start, end time.Time) ([]models.Showtime, error) {
	var showtimes []models.Showtime
	err := overlapQuery(d.Bun, theater, start, end, 0).
		Order("start_time ASC").
		Scan(context.Background(), &showtimes)
	if err != nil {
		return nil, err
	}
	return showtimes, nil
}

// InsertShowtime checks for overlaps and inserts in one transaction. Returns
// ErrOverlap if the theater already has an intersecting showtime.
func (d *DB) InsertShowtime(showtime *models.Showtime) error {
	return d.Bun.RunInTx(context.Background(), d.TxOptions, func(ctx context.Context, tx bun.Tx) error {
		count, err := overlapQuery(tx, showtime.Theater, showtime.StartTime, showtime.EndTime, 0).Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrOverlap
		}
		_, err = tx.NewInsert().Model(showtime).Exec(ctx)
		return err
	})
}

// UpdateShowtime re-checks the overlap invariant against the new values,
// excluding the row being updated, and applies the change in one transaction.
func (d *DB) UpdateShowtime(showtime models.Showtime) error {
	return d.Bun.RunInTx(context.Background(), d.TxOptions, func(ctx context.Context, tx bun.Tx) error {
		count, err := overlapQuery(tx, showtime.Theater, showtime.StartTime, showtime.EndTime, showtime.ID).Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrOverlap
		}
		_, err = tx.NewUpdate().
			Model(&showtime).
			Column("movie_id", "theater", "start_time", "end_time", "price").
			Where("id = ?", showtime.ID).
			Exec(ctx)
		return err
	})
}

func (d *DB) DeleteShowtime(id int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Showtime)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	return err
}

func (d *DB) GetShowtimeByID(id int64) (*models.Showtime, error) {
	var showtime models.Showtime
	err := d.Bun.NewSelect().
		Model(&showtime).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &showtime, nil
}

func (d *DB) ShowtimeExistsByID(id int64) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Showtime)(nil)).
		Where("id = ?", id).
		Exists(context.Background())
}

func (d *DB) ListShowtimes() ([]models.Showtime, error) {
	var showtimes []models.Showtime
	err := d.Bun.NewSelect().
		Model(&showtimes).
		Order("start_time ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return showtimes, nil
}

func (d *DB) ListShowtimesByMovie(movieID int64) ([]models.Showtime, error) {
	var showtimes []models.Showtime
	err := d.Bun.NewSelect().
		Model(&showtimes).
		Where("movie_id = ?", movieID).
		Order("start_time ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return showtimes, nil
}

func (d *DB) ListShowtimesByTheater(theater string) ([]models.Showtime, error) {
	var showtimes []models.Showtime
	err := d.Bun.NewSelect().
		Model(&showtimes).
		Where("theater = ?", theater).
		Order("start_time ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return showtimes, nil
}
