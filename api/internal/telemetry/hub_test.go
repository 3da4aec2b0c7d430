package telemetry

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishRoutesByTopic(t *testing.T) {
	hub := NewHub()
	listingA, listingB := uuid.New(), uuid.New()

	all := hub.Subscribe(AllSales)
	onA := hub.Subscribe(listingA.String())
	onB := hub.Subscribe(listingB.String())

	hub.Publish(SaleEvent{PurchaseID: uuid.New(), ListingIDs: []uuid.UUID{listingA}})

	assert.Len(t, all, 1)
	assert.Len(t, onA, 1)
	assert.Len(t, onB, 0)
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub()
	ch := hub.Subscribe(AllSales)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			hub.Publish(SaleEvent{PurchaseID: uuid.New()})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
	assert.Equal(t, cap(ch), len(ch))
}

func TestHub_UnsubscribeAndClose(t *testing.T) {
	hub := NewHub()
	a := hub.Subscribe(AllSales)
	b := hub.Subscribe(AllSales)
	require.Equal(t, 2, hub.Subscribers(AllSales))

	hub.Unsubscribe(AllSales, a)
	_, open := <-a
	assert.False(t, open)
	assert.Equal(t, 1, hub.Subscribers(AllSales))

	hub.Close()
	_, open = <-b
	assert.False(t, open)
	assert.Zero(t, hub.Subscribers(AllSales))

	// Unsubscribing after Close must not double-close.
	assert.NotPanics(t, func() { hub.Unsubscribe(AllSales, b) })
	assert.NotPanics(t, func() { hub.Publish(SaleEvent{}) })
}
