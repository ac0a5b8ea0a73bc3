package events

import (
	"sync"
	"time"
)

type Type string

const (
	EventTransfer     Type = "Transfer"
	EventMint         Type = "Mint"
	EventApproval     Type = "Approval"
	EventTaxCollected Type = "TaxCollected"

	EventContributionRecorded Type = "ContributionRecorded"
	EventRedemptionCompleted  Type = "RedemptionCompleted"
	EventPhaseAdvanced        Type = "PhaseAdvanced"
	EventSalePaused           Type = "SalePaused"
	EventSaleUnpaused         Type = "SaleUnpaused"
	EventInvestorAdded        Type = "InvestorAdded"

	EventSharesMinted Type = "SharesMinted"
	EventSharesBurned Type = "SharesBurned"

	EventStaked           Type = "Staked"
	EventWithdrawn        Type = "Withdrawn"
	EventSwappedEthForTom Type = "SwappedEthForTom"
	EventSwappedTomForEth Type = "SwappedTomForEth"
)

// Event is a fire-and-forget notification for the presentation layer. Core
// correctness never depends on one being observed.
type Event struct {
	Type      Type                   `json:"type"`
	Component string                 `json:"component"`
	From      string                 `json:"from,omitempty"`
	To        string                 `json:"to,omitempty"`
	Amount    string                 `json:"amount,omitempty"` // decimal, 18 implied decimals
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type Handler func(Event)

// Bus fans events out to registered handlers without blocking the emitting
// call.
type Bus struct {
	mu       sync.RWMutex
	handlers []Handler
}

func NewBus() *Bus {
	return &Bus{handlers: make([]Handler, 0)}
}

func (b *Bus) RegisterHandler(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, h)
}

func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, h := range b.handlers {
		go h(event)
	}
}

// Log accumulates a component's emitted events and forwards them to an
// optional bus. Components keep their own log so tests can observe emissions
// without wiring a bus.
type Log struct {
	mu        sync.RWMutex
	component string
	entries   []Event
	bus       *Bus
}

func NewLog(component string, bus *Bus) *Log {
	return &Log{component: component, bus: bus}
}

// Emit stamps the event with the component name and time, records it, and
// publishes it when a bus is wired.
func (l *Log) Emit(event Event) {
	event.Component = l.component
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	l.mu.Lock()
	l.entries = append(l.entries, event)
	l.mu.Unlock()

	if l.bus != nil {
		l.bus.Publish(event)
	}
}

// Events returns a copy of everything emitted so far.
func (l *Log) Events() []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Event, len(l.entries))
	copy(out, l.entries)
	return out
}

// ByType returns emitted events filtered by type.
func (l *Log) ByType(t Type) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []Event
	for _, e := range l.entries {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
