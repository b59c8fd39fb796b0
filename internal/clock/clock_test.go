package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeAdvance(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := NewFake(start)

	assert.Equal(t, start, f.Now())

	f.Advance(100 * time.Millisecond)
	assert.Equal(t, start.Add(100*time.Millisecond), f.Now())

	f.Advance(-50 * time.Millisecond)
	assert.Equal(t, start.Add(50*time.Millisecond), f.Now())
}

func TestRealTracksWallClock(t *testing.T) {
	var r Real
	before := time.Now()
	got := r.Now()
	after := time.Now()

	assert.False(t, got.Before(before))
	assert.False(t, got.After(after))
}
