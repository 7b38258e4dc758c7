package movies

import (
	"database/sql"
	"errors"

	"ms-cinema/internal/apperr"
	"ms-cinema/internal/models"
	moviedb "ms-cinema/internal/movies/db"
)

type DBLayer interface {
	CreateMovie(movie *models.Movie) error
	UpdateMovie(movie models.Movie) error
	DeleteMovieByID(id int64) error
	DeleteMovieByTitle(title string) error
	GetMovieByID(id int64) (*models.Movie, error)
	GetMovieByTitle(title string) (*models.Movie, error)
	ListMovies() ([]models.Movie, error)
	ListMoviesByGenre(genre string) ([]models.Movie, error)
	ListMoviesByReleaseYear(year int) ([]models.Movie, error)
	MovieExistsByTitle(title string) (bool, error)
	MovieExistsByID(id int64) (bool, error)
}

// Service is the movie catalog. Title uniqueness is its standing invariant.
type Service struct {
	DB DBLayer
}

func NewService(db DBLayer) *Service {
	return &Service{DB: db}
}

func validateMovie(m models.Movie) error {
	if m.Title == "" {
		return apperr.Invalid("movie title is required")
	}
	if m.Genre == "" {
		return apperr.Invalid("movie genre is required")
	}
	if m.Duration < 1 {
		return apperr.Invalid("movie duration must be at least 1 minute")
	}
	if m.Rating < 0 || m.Rating > 10 {
		return apperr.Invalid("movie rating must be between 0 and 10")
	}
	if m.ReleaseYear < 1888 || m.ReleaseYear > 2100 {
		return apperr.Invalid("release year must be between 1888 and 2100")
	}
	return nil
}

func (s *Service) AddMovie(m models.Movie) (*models.Movie, error) {
	if err := validateMovie(m); err != nil {
		return nil, err
	}

	exists, err := s.DB.MovieExistsByTitle(m.Title)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to check title %q", m.Title)
	}
	if exists {
		return nil, apperr.Conflict("movie with title %q already exists", m.Title)
	}

	m.ID = 0
	if err := s.DB.CreateMovie(&m); err != nil {
		if errors.Is(err, moviedb.ErrDuplicateTitle) {
			return nil, apperr.Conflict("movie with title %q already exists", m.Title)
		}
		return nil, apperr.Unexpected(err, "failed to create movie %q", m.Title)
	}
	return &m, nil
}

func (s *Service) UpdateMovie(currentTitle string, m models.Movie) (*models.Movie, error) {
	if err := validateMovie(m); err != nil {
		return nil, err
	}

	existing, err := s.DB.GetMovieByTitle(currentTitle)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("movie with title %q not found", currentTitle)
		}
		return nil, apperr.Unexpected(err, "failed to load movie %q", currentTitle)
	}

	if m.Title != currentTitle {
		taken, err := s.DB.MovieExistsByTitle(m.Title)
		if err != nil {
			return nil, apperr.Unexpected(err, "failed to check title %q", m.Title)
		}
		if taken {
			return nil, apperr.Conflict("movie with title %q already exists", m.Title)
		}
	}

	m.ID = existing.ID
	if err := s.DB.UpdateMovie(m); err != nil {
		if errors.Is(err, moviedb.ErrDuplicateTitle) {
			return nil, apperr.Conflict("movie with title %q already exists", m.Title)
		}
		return nil, apperr.Unexpected(err, "failed to update movie %q", currentTitle)
	}
	return &m, nil
}

func (s *Service) DeleteMovieByTitle(title string) error {
	exists, err := s.DB.MovieExistsByTitle(title)
	if err != nil {
		return apperr.Unexpected(err, "failed to check title %q", title)
	}
	if !exists {
		return apperr.NotFound("movie with title %q not found", title)
	}
	if err := s.DB.DeleteMovieByTitle(title); err != nil {
		if errors.Is(err, moviedb.ErrMovieInUse) {
			return apperr.Conflict("movie %q still has scheduled showtimes", title)
		}
		return apperr.Unexpected(err, "failed to delete movie %q", title)
	}
	return nil
}

func (s *Service) DeleteMovieByID(id int64) error {
	exists, err := s.DB.MovieExistsByID(id)
	if err != nil {
		return apperr.Unexpected(err, "failed to check movie %d", id)
	}
	if !exists {
		return apperr.NotFound("movie with id %d not found", id)
	}
	if err := s.DB.DeleteMovieByID(id); err != nil {
		if errors.Is(err, moviedb.ErrMovieInUse) {
			return apperr.Conflict("movie with id %d still has scheduled showtimes", id)
		}
		return apperr.Unexpected(err, "failed to delete movie %d", id)
	}
	return nil
}

func (s *Service) GetMovieByID(id int64) (*models.Movie, error) {
	movie, err := s.DB.GetMovieByID(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("movie with id %d not found", id)
		}
		return nil, apperr.Unexpected(err, "failed to load movie %d", id)
	}
	return movie, nil
}

func (s *Service) GetMovieByTitle(title string) (*models.Movie, error) {
	movie, err := s.DB.GetMovieByTitle(title)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("movie with title %q not found", title)
		}
		return nil, apperr.Unexpected(err, "failed to load movie %q", title)
	}
	return movie, nil
}

func (s *Service) ListMovies() ([]models.Movie, error) {
	movies, err := s.DB.ListMovies()
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to list movies")
	}
	return movies, nil
}

// ListByGenre treats an empty result as NotFound, matching the other
// natural-key lookups on the catalog.
func (s *Service) ListByGenre(genre string) ([]models.Movie, error) {
	movies, err := s.DB.ListMoviesByGenre(genre)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to list movies by genre %q", genre)
	}
	if len(movies) == 0 {
		return nil, apperr.NotFound("no movies found for genre %q", genre)
	}
	return movies, nil
}

func (s *Service) ListByReleaseYear(year int) ([]models.Movie, error) {
	movies, err := s.DB.ListMoviesByReleaseYear(year)
	if err != nil {
		return nil, apperr.Unexpected(err, "failed to list movies by year %d", year)
	}
	if len(movies) == 0 {
		return nil, apperr.NotFound("no movies found for release year %d", year)
	}
	return movies, nil
}
