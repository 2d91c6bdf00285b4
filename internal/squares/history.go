package squares

// History records grid snapshots taken before each successful claim so
// a host can step backwards. Implementations are process-local; a full
// pool reset clears them.
type History interface {
	Push(squares map[string]Square)
	Pop() (map[string]Square, bool)
	Len() int
	Clear()
}

// Stack is the default History: a plain LIFO, unbounded unless a cap is
// given, in which case the oldest snapshots fall off the bottom.
type Stack struct {
	max   int
	items []map[string]Square
}

// NewStack returns a stack holding at most max snapshots; max <= 0
// means unbounded.
func NewStack(max int) *Stack {
	return &Stack{max: max}
}

func (s *Stack) Push(squares map[string]Square) {
	cp := make(map[string]Square, len(squares))
	for id, sq := range squares {
		cp[id] = sq
	}
	s.items = append(s.items, cp)
	if s.max > 0 && len(s.items) > s.max {
		s.items = s.items[len(s.items)-s.max:]
	}
}

func (s *Stack) Pop() (map[string]Square, bool) {
	if len(s.items) == 0 {
		return nil, false
	}
	top := s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return top, true
}

func (s *Stack) Len() int { return len(s.items) }

func (s *Stack) Clear() { s.items = nil }
