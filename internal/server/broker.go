package server

import (
	"encoding/json"
	"sync"
)

// SSEEvent is the payload published to a pool's subscribers.
type SSEEvent struct {
	Type    string `json:"type"`
	CellID  string `json:"cellId,omitempty"`
	Owner   string `json:"owner,omitempty"`
	Quarter string `json:"quarter,omitempty"`
	Locked  bool   `json:"locked,omitempty"`
}

// Event types carried on the stream.
const (
	eventSquareClaimed   = "square_claimed"
	eventSquareDeleted   = "square_deleted"
	eventSquaresRestored = "squares_restored"
	eventPaymentVerified = "payment_verified"
	eventGridLock        = "grid_lock"
	eventNumbersRolled   = "numbers_rolled"
	eventScoreUpdated    = "score_updated"
	eventQuarterWinner   = "quarter_winner"
	eventPoolReset       = "pool_reset"
)

// Broker is an in-process pub/sub for SSE events, keyed by pool id.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel receiving JSON-encoded events for the pool.
func (b *Broker) Subscribe(poolID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[poolID] == nil {
		b.subs[poolID] = make(map[chan []byte]struct{})
	}
	b.subs[poolID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the pool's subscribers.
func (b *Broker) Unsubscribe(poolID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[poolID], ch)
	if len(b.subs[poolID]) == 0 {
		delete(b.subs, poolID)
	}
	b.mu.Unlock()
}

// Publish sends an event to all subscribers of the pool.
func (b *Broker) Publish(poolID string, event SSEEvent) {
	data, _ := json.Marshal(event)
	b.mu.RLock()
	for ch := range b.subs[poolID] {
		select {
		case ch <- data:
		default:
			// Drop if subscriber is slow.
		}
	}
	b.mu.RUnlock()
}
