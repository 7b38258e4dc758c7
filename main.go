package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-cinema/internal/bookings"
	booking_api "ms-cinema/internal/bookings/api"
	bookingdb "ms-cinema/internal/bookings/db"
	"ms-cinema/internal/bookings/qr"
	rediswrap "ms-cinema/internal/bookings/redis"
	"ms-cinema/internal/clock"
	"ms-cinema/internal/config"
	"ms-cinema/internal/database/migrations"
	"ms-cinema/internal/kafka"
	"ms-cinema/internal/logger"
	"ms-cinema/internal/movies"
	movie_api "ms-cinema/internal/movies/api"
	moviedb "ms-cinema/internal/movies/db"
	"ms-cinema/internal/showtimes"
	showtime_api "ms-cinema/internal/showtimes/api"
	showtimedb "ms-cinema/internal/showtimes/db"
)

func verifyConnections(ctx context.Context, cfg *config.Config, log *logger.Logger) (*bun.DB, *redis.Client) {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		log.Info("DATABASE", fmt.Sprintf("Connecting to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN)
		if err == nil {
			err = sqldb.Ping()
			if err == nil {
				break
			}
		}
		log.Error("DATABASE", fmt.Sprintf("PostgreSQL not ready: %v", err))
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)
	log.Info("DATABASE", "PostgreSQL connection successful")

	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	log.Info("DATABASE", fmt.Sprintf("Redis connection successful to %s", cfg.Redis.Addr))

	return bunDB, redisClient
}

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Cinema Service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()

	ctx := context.Background()
	bunDB, redisClient := verifyConnections(ctx, cfg, log)
	defer bunDB.Close()
	defer redisClient.Close()

	log.Info("DATABASE", "Running schema migrations")
	if err := migrations.NewRunner(bunDB, cfg.Database.MigrationsDir).Up(); err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
	}

	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, kafka.AllTopics()); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			log.Info("KAFKA", "Required topics ensured successfully")
		}
	} else {
		log.Warn("KAFKA", "Kafka disabled, domain events will not be published")
	}

	// The conflict-checking transactions need serializable isolation so two
	// concurrent proposals cannot both observe zero overlaps.
	showtimeStore := &showtimedb.DB{
		Bun:       bunDB,
		TxOptions: &sql.TxOptions{Isolation: sql.LevelSerializable},
	}
	movieStore := &moviedb.DB{Bun: bunDB}
	bookingStore := &bookingdb.DB{Bun: bunDB}

	sysClock := clock.System{}
	seatHold := rediswrap.NewSeatHold(redisClient, cfg.Booking.SeatHoldTTL)
	qrGen := qr.NewGenerator(cfg.Booking.QRSecret)

	movieService := movies.NewService(movieStore)
	showtimeService := showtimes.NewService(showtimeStore, movieStore, sysClock, publisherOrNil(producer), log)
	bookingService := bookings.NewService(bookingStore, showtimeStore, seatHold, sysClock, publisherOrNil(producer), qrGen, log)

	log.Info("HTTP", "Setting up router")
	r := chi.NewRouter()
	movie_api.NewHandler(movieService, log).RegisterRoutes(r)
	showtime_api.NewHandler(showtimeService, log).RegisterRoutes(r)
	booking_api.NewHandler(bookingService, log).RegisterRoutes(r)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Cinema Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	} else {
		log.Info("HTTP", "Cinema Service shutdown complete")
	}
}

// publisherOrNil avoids handing the services a non-nil interface wrapping a
// nil *kafka.Producer when Kafka is disabled.
func publisherOrNil(p *kafka.Producer) showtimes.Publisher {
	if p == nil {
		return nil
	}
	return p
}
