package db

import (
	"context"
	"errors"

	"github.com/uptrace/bun"

	"ms-cinema/internal/database"
	"ms-cinema/internal/models"
)

// ErrDuplicateTitle surfaces the movies.title unique constraint so the
// service can report a Conflict no matter which layer caught the duplicate.
var ErrDuplicateTitle = errors.New("movie title already exists")

// ErrMovieInUse means showtimes still reference the movie; the schema
// restricts the delete instead of cascading it.
var ErrMovieInUse = errors.New("movie has scheduled showtimes")

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateMovie(movie *models.Movie) error {
	_, err := d.Bun.NewInsert().Model(movie).Exec(context.Background())
	if database.IsUniqueViolation(err) {
		return ErrDuplicateTitle
	}
	return err
}

func (d *DB) UpdateMovie(movie models.Movie) error {
	_, err := d.Bun.NewUpdate().
		Model(&movie).
		Column("title", "genre", "duration", "rating", "release_year").
		Where("id = ?", movie.ID).
		Exec(context.Background())
	if database.IsUniqueViolation(err) {
		return ErrDuplicateTitle
	}
	return err
}

func (d *DB) DeleteMovieByID(id int64) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Movie)(nil)).
		Where("id = ?", id).
		Exec(context.Background())
	if database.IsForeignKeyViolation(err) {
		return ErrMovieInUse
	}
	return err
}

func (d *DB) DeleteMovieByTitle(title string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Movie)(nil)).
		Where("title = ?", title).
		Exec(context.Background())
	if database.IsForeignKeyViolation(err) {
		return ErrMovieInUse
	}
	return err
}

func (d *DB) GetMovieByID(id int64) (*models.Movie, error) {
	var movie models.Movie
	err := d.Bun.NewSelect().
		Model(&movie).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

func (d *DB) GetMovieByTitle(title string) (*models.Movie, error) {
	var movie models.Movie
	err := d.Bun.NewSelect().
		Model(&movie).
		Where("title = ?", title).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

func (d *DB) ListMovies() ([]models.Movie, error) {
	var movies []models.Movie
	err := d.Bun.NewSelect().
		Model(&movies).
		Order("id ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return movies, nil
}

func (d *DB) ListMoviesByGenre(genre string) ([]models.Movie, error) {
	var movies []models.Movie
	err := d.Bun.NewSelect().
		Model(&movies).
		Where("genre = ?", genre).
		Order("id ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return movies, nil
}

func (d *DB) ListMoviesByReleaseYear(year int) ([]models.Movie, error) {
	var movies []models.Movie
	err := d.Bun.NewSelect().
		Model(&movies).
		Where("release_year = ?", year).
		Order("id ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return movies, nil
}

func (d *DB) MovieExistsByTitle(title string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Movie)(nil)).
		Where("title = ?", title).
		Exists(context.Background())
}

func (d *DB) MovieExistsByID(id int64) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Movie)(nil)).
		Where("id = ?", id).
		Exists(context.Background())
}
