package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ms-cinema/internal/clock"
)

func TestFixed(t *testing.T) {
	instant := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	c := clock.Fixed{T: instant}

	assert.True(t, c.Now().Equal(instant))
	assert.True(t, c.Now().Equal(c.Now()))
}

func TestSystem(t *testing.T) {
	before := time.Now()
	now := clock.System{}.Now()
	after := time.Now()

	assert.False(t, now.Before(before))
	assert.False(t, now.After(after))
}
