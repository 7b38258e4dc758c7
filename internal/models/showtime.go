package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Showtime struct {
	bun.BaseModel `bun:"table:showtimes"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	MovieID   int64     `bun:"movie_id,notnull" json:"movieId"`
	Theater   string    `bun:"theater,notnull" json:"theater"`
	StartTime time.Time `bun:"start_time,notnull" json:"startTime"`
	EndTime   time.Time `bun:"end_time,notnull" json:"endTime"`
	Price     float64   `bun:"price,notnull" json:"price"`
}
