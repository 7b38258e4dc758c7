package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// SeatHold is a short-TTL advisory hold on a (showtime, seat) pair. It
// shrinks the window between the seat-availability check and the insert; the
// database unique constraint stays the source of truth.
type SeatHold struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewSeatHold(client *redis.Client, ttl time.Duration) *SeatHold {
	return &SeatHold{Client: client, TTL: ttl}
}

func holdKey(showtimeID int64, seatNumber int) string {
	return fmt.Sprintf("seat_hold:%d:%d", showtimeID, seatNumber)
}

// Hold claims the seat for holder. Returns false if another booking attempt
// already holds it.
func (s *SeatHold) Hold(showtimeID int64, seatNumber int, holder string) (bool, error) {
	return s.Client.SetNX(context.Background(), holdKey(showtimeID, seatNumber), holder, s.TTL).Result()
}

// Release drops the hold if holder still owns it. A hold that already
// expired is not an error.
func (s *SeatHold) Release(showtimeID int64, seatNumber int, holder string) error {
	ctx := context.Background()
	key := holdKey(showtimeID, seatNumber)

	val, err := s.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if val == holder {
		_, err := s.Client.Del(ctx, key).Result()
		return err
	}
	return nil
}
