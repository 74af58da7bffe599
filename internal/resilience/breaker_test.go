package resilience

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBreaker_StartsClosed(t *testing.T) {
	b := NewBreaker(nil)
	assert.False(t, b.Tripped())
}

func TestBreaker_TripIsPermanent(t *testing.T) {
	b := NewBreaker(nil)
	b.Trip()
	assert.True(t, b.Tripped())
	b.Trip()
	assert.True(t, b.Tripped())
}

func TestBreaker_OnTripRunsOnce(t *testing.T) {
	calls := 0
	b := NewBreaker(func() { calls++ })

	b.Trip()
	b.Trip()
	b.Trip()

	assert.Equal(t, 1, calls)
}

func TestBreaker_ConcurrentTrip(t *testing.T) {
	calls := 0
	b := NewBreaker(func() { calls++ })

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Trip()
		}()
	}
	wg.Wait()

	assert.True(t, b.Tripped())
	assert.Equal(t, 1, calls)
}

func TestIsTerminalStatus(t *testing.T) {
	for _, code := range []int{401, 403, 429, 500, 502, 503, 529} {
		assert.True(t, IsTerminalStatus(code), "status %d", code)
	}
	for _, code := range []int{200, 400, 404, 422} {
		assert.False(t, IsTerminalStatus(code), "status %d", code)
	}
}
