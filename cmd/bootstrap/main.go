// Command bootstrap rebuilds the schema from the bun models and seeds sample
// data. Development helper only; production schema comes from migrations/.
package main

import (
	"context"
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-cinema/internal/config"
	"ms-cinema/internal/models"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	sqldb, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer sqldb.Close()

	if err := sqldb.PingContext(ctx); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	db := bun.NewDB(sqldb, pgdialect.New())

	log.Println("Dropping tables...")
	dropTables(ctx, db)

	log.Println("Creating tables...")
	createTables(ctx, db)

	log.Println("Seeding sample data...")
	seedData(ctx, db)

	log.Println("Done.")
}

func dropTables(ctx context.Context, db *bun.DB) {
	tables := []interface{}{(*models.Booking)(nil), (*models.Showtime)(nil), (*models.Movie)(nil)}
	for _, m := range tables {
		_, _ = db.NewDropTable().Model(m).IfExists().Cascade().Exec(ctx)
	}
}

func createTables(ctx context.Context, db *bun.DB) {
	tables := []interface{}{(*models.Movie)(nil), (*models.Showtime)(nil), (*models.Booking)(nil)}
	for _, m := range tables {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			log.Fatalf("Failed to create table for %T: %v", m, err)
		}
	}
}

func seedData(ctx context.Context, db *bun.DB) {
	movies := []models.Movie{
		{Title: "Interstellar", Genre: "Sci-Fi", Duration: 169, Rating: 8.7, ReleaseYear: 2014},
		{Title: "The Godfather", Genre: "Crime", Duration: 175, Rating: 9.2, ReleaseYear: 1972},
	}
	if _, err := db.NewInsert().Model(&movies).Exec(ctx); err != nil {
		log.Fatalf("Failed to seed movies: %v", err)
	}

	base := time.Now().Add(24 * time.Hour).Truncate(time.Hour)
	showtimes := []models.Showtime{
		{MovieID: movies[0].ID, Theater: "Theater 1", StartTime: base, EndTime: base.Add(3 * time.Hour), Price: 12.5},
		{MovieID: movies[1].ID, Theater: "Theater 2", StartTime: base, EndTime: base.Add(3 * time.Hour), Price: 10.0},
	}
	if _, err := db.NewInsert().Model(&showtimes).Exec(ctx); err != nil {
		log.Fatalf("Failed to seed showtimes: %v", err)
	}

	booking := models.Booking{
		BookingID:  "seed-booking-1",
		ShowtimeID: showtimes[0].ID,
		SeatNumber: 1,
		UserID:     "84438967-f68f-4fa0-b620-0f08217e76af",
	}
	if _, err := db.NewInsert().Model(&booking).Exec(ctx); err != nil {
		log.Fatalf("Failed to seed booking: %v", err)
	}
}
