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

	"ms-cinema/internal/models"
	moviedb "ms-cinema/internal/movies/db"
)

func setupTestDB(t *testing.T) (*moviedb.DB, *bun.DB) {
	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = bunDB.NewCreateTable().Model((*models.Movie)(nil)).Exec(context.Background())
	if err != nil {
		t.Fatalf("Failed to create movies table: %v", err)
	}

	return &moviedb.DB{Bun: bunDB}, bunDB
}

func TestCreateAndGetMovie(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	movie := models.Movie{
		Title:       "Inception",
		Genre:       "Sci-Fi",
		Duration:    148,
		Rating:      8.8,
		ReleaseYear: 2010,
	}
	assert.NoError(t, store.CreateMovie(&movie))
	assert.NotZero(t, movie.ID)

	byID, err := store.GetMovieByID(movie.ID)
	assert.NoError(t, err)
	assert.Equal(t, movie, *byID)

	byTitle, err := store.GetMovieByTitle("Inception")
	assert.NoError(t, err)
	assert.Equal(t, movie.ID, byTitle.ID)
}

func TestCreateMovie_DuplicateTitle(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	first := models.Movie{Title: "Dune", Genre: "Sci-Fi", Duration: 155, Rating: 8.1, ReleaseYear: 2021}
	assert.NoError(t, store.CreateMovie(&first))

	second := models.Movie{Title: "Dune", Genre: "Adventure", Duration: 140, Rating: 6.0, ReleaseYear: 1984}
	err := store.CreateMovie(&second)
	assert.True(t, errors.Is(err, moviedb.ErrDuplicateTitle))

	// First record stays untouched.
	stored, err := store.GetMovieByTitle("Dune")
	assert.NoError(t, err)
	assert.Equal(t, "Sci-Fi", stored.Genre)
	assert.Equal(t, 2021, stored.ReleaseYear)
}

func TestUpdateMovie_DuplicateTitle(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	dune := models.Movie{Title: "Dune", Genre: "Sci-Fi", Duration: 155, Rating: 8.1, ReleaseYear: 2021}
	alien := models.Movie{Title: "Alien", Genre: "Horror", Duration: 117, Rating: 8.5, ReleaseYear: 1979}
	assert.NoError(t, store.CreateMovie(&dune))
	assert.NoError(t, store.CreateMovie(&alien))

	alien.Title = "Dune"
	err := store.UpdateMovie(alien)
	assert.True(t, errors.Is(err, moviedb.ErrDuplicateTitle))
}

func TestGetMovie_NotFound(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	_, err := store.GetMovieByID(42)
	assert.True(t, errors.Is(err, sql.ErrNoRows))

	_, err = store.GetMovieByTitle("Missing")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestListAndExists(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	seed := []models.Movie{
		{Title: "Inception", Genre: "Sci-Fi", Duration: 148, Rating: 8.8, ReleaseYear: 2010},
		{Title: "Interstellar", Genre: "Sci-Fi", Duration: 169, Rating: 8.7, ReleaseYear: 2014},
		{Title: "Heat", Genre: "Crime", Duration: 170, Rating: 8.3, ReleaseYear: 1995},
	}
	for i := range seed {
		assert.NoError(t, store.CreateMovie(&seed[i]))
	}

	all, err := store.ListMovies()
	assert.NoError(t, err)
	assert.Len(t, all, 3)

	scifi, err := store.ListMoviesByGenre("Sci-Fi")
	assert.NoError(t, err)
	assert.Len(t, scifi, 2)

	from2014, err := store.ListMoviesByReleaseYear(2014)
	assert.NoError(t, err)
	assert.Len(t, from2014, 1)
	assert.Equal(t, "Interstellar", from2014[0].Title)

	exists, err := store.MovieExistsByTitle("Heat")
	assert.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.MovieExistsByID(seed[0].ID)
	assert.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.MovieExistsByTitle("Missing")
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestDeleteMovie(t *testing.T) {
	store, bunDB := setupTestDB(t)
	defer bunDB.Close()

	movie := models.Movie{Title: "Heat", Genre: "Crime", Duration: 170, Rating: 8.3, ReleaseYear: 1995}
	assert.NoError(t, store.CreateMovie(&movie))

	assert.NoError(t, store.DeleteMovieByTitle("Heat"))

	exists, err := store.MovieExistsByID(movie.ID)
	assert.NoError(t, err)
	assert.False(t, exists)
}

// setupRelationalDB builds the schema with the same referential policy the
// migrations declare: showtimes.movie_id restricts the movie delete.
func setupRelationalDB(t *testing.T) (*moviedb.DB, *bun.DB) {
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
	}
	for _, stmt := range ddl {
		if _, err := bunDB.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("Failed to create schema: %v", err)
		}
	}

	return &moviedb.DB{Bun: bunDB}, bunDB
}

func TestDeleteMovie_WithScheduledShowtimes(t *testing.T) {
	store, bunDB := setupRelationalDB(t)
	defer bunDB.Close()

	movie := models.Movie{Title: "Dune", Genre: "Sci-Fi", Duration: 155, Rating: 8.0, ReleaseYear: 2021}
	assert.NoError(t, store.CreateMovie(&movie))

	ctx := context.Background()
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	showtime := models.Showtime{MovieID: movie.ID, Theater: "Theater 1", StartTime: start, EndTime: start.Add(2 * time.Hour), Price: 12.5}
	_, err := bunDB.NewInsert().Model(&showtime).Exec(ctx)
	assert.NoError(t, err)

	assert.True(t, errors.Is(store.DeleteMovieByID(movie.ID), moviedb.ErrMovieInUse))
	assert.True(t, errors.Is(store.DeleteMovieByTitle("Dune"), moviedb.ErrMovieInUse))

	// The movie survives the refused deletes.
	exists, err := store.MovieExistsByID(movie.ID)
	assert.NoError(t, err)
	assert.True(t, exists)

	// Dropping the showtime unblocks the delete.
	_, err = bunDB.NewDelete().Model((*models.Showtime)(nil)).Where("id = ?", showtime.ID).Exec(ctx)
	assert.NoError(t, err)
	assert.NoError(t, store.DeleteMovieByID(movie.ID))
}
