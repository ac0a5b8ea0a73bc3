package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogRecordsAndFilters(t *testing.T) {
	log := NewLog("token", nil)
	log.Emit(Event{Type: EventMint, To: "alice", Amount: "100"})
	log.Emit(Event{Type: EventTransfer, From: "alice", To: "bob", Amount: "40"})
	log.Emit(Event{Type: EventTransfer, From: "bob", To: "alice", Amount: "1"})

	all := log.Events()
	assert.Len(t, all, 3)
	assert.Equal(t, "token", all[0].Component)
	assert.False(t, all[0].Timestamp.IsZero())

	transfers := log.ByType(EventTransfer)
	assert.Len(t, transfers, 2)
	assert.Empty(t, log.ByType(EventWithdrawn))
}

func TestBusFanOut(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	var seen []Event
	done := make(chan struct{}, 2)
	handler := func(e Event) {
		mu.Lock()
		seen = append(seen, e)
		mu.Unlock()
		done <- struct{}{}
	}
	bus.RegisterHandler(handler)
	bus.RegisterHandler(handler)

	log := NewLog("sale", bus)
	log.Emit(Event{Type: EventPhaseAdvanced})

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("handler was not invoked")
		}
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, seen, 2)
	assert.Equal(t, EventPhaseAdvanced, seen[0].Type)
}
