package models

import (
	"github.com/uptrace/bun"
)

type Movie struct {
	bun.BaseModel `bun:"table:movies"`

	ID          int64   `bun:"id,pk,autoincrement" json:"id"`
	Title       string  `bun:"title,notnull,unique" json:"title"`
	Genre       string  `bun:"genre,notnull" json:"genre"`
	Duration    int     `bun:"duration,notnull" json:"duration"`
	Rating      float64 `bun:"rating,notnull" json:"rating"`
	ReleaseYear int     `bun:"release_year,notnull" json:"releaseYear"`
}
