package live_test

import (
	"testing"
	"time"

	"github.com/mbolis/quick-vote/live"
	"github.com/stretchr/testify/assert"
)

func tick(t *testing.T, ch <-chan struct{}) bool {
	t.Helper()
	select {
	case <-ch:
		return true
	case <-time.After(100 * time.Millisecond):
		return false
	}
}

func TestPublishWakesSubscriber(t *testing.T) {
	hub := live.NewHub()

	updates, unsubscribe := hub.Subscribe(1)
	defer unsubscribe()

	hub.Publish(1)
	assert.True(t, tick(t, updates))
}

func TestPublishCoalesces(t *testing.T) {
	hub := live.NewHub()

	updates, unsubscribe := hub.Subscribe(1)
	defer unsubscribe()

	hub.Publish(1)
	hub.Publish(1)
	hub.Publish(1)

	assert.True(t, tick(t, updates))
	assert.False(t, tick(t, updates))
}

func TestPublishIsScopedToPoll(t *testing.T) {
	hub := live.NewHub()

	updates, unsubscribe := hub.Subscribe(1)
	defer unsubscribe()

	hub.Publish(2)
	assert.False(t, tick(t, updates))
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	hub := live.NewHub()

	first, stopFirst := hub.Subscribe(1)
	defer stopFirst()
	second, stopSecond := hub.Subscribe(1)
	defer stopSecond()

	hub.Publish(1)
	assert.True(t, tick(t, first))
	assert.True(t, tick(t, second))
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := live.NewHub()

	updates, unsubscribe := hub.Subscribe(1)
	unsubscribe()

	hub.Publish(1)
	assert.False(t, tick(t, updates))
}
