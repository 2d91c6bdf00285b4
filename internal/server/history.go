package server

import (
	"sync"

	"github.com/7LayerLabs/SundaySquares/internal/squares"
)

// historySet holds one undo stack per pool, serialized behind a single
// mutex. Process-local: snapshots do not survive a restart, which is
// acceptable for an in-game convenience.
type historySet struct {
	mu    sync.Mutex
	depth int
	pools map[string]*squares.Stack
}

func newHistorySet(depth int) *historySet {
	return &historySet{
		depth: depth,
		pools: make(map[string]*squares.Stack),
	}
}

func (h *historySet) stack(poolID string) *squares.Stack {
	st, ok := h.pools[poolID]
	if !ok {
		st = squares.NewStack(h.depth)
		h.pools[poolID] = st
	}
	return st
}

func (h *historySet) push(poolID string, snapshot map[string]squares.Square) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stack(poolID).Push(snapshot)
}

func (h *historySet) pop(poolID string) (map[string]squares.Square, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stack(poolID).Pop()
}

func (h *historySet) len(poolID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stack(poolID).Len()
}

// drop discards a pool's stack entirely (full reset).
func (h *historySet) drop(poolID string) {
	h.mu.Lock()
	delete(h.pools, poolID)
	h.mu.Unlock()
}
