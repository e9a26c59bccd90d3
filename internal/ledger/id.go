package ledger

import (
	"sync"
	"time"
)

type IDGenerator interface {
	NextID() int64
}

// ClockIDGenerator hands out Unix-millisecond ids. Two calls in the same
// millisecond still get distinct ids because the sequence never repeats or
// goes backwards.
type ClockIDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func NewClockIDGenerator(now func() time.Time) *ClockIDGenerator {
	if now == nil {
		now = time.Now
	}
	return &ClockIDGenerator{now: now}
}

func (g *ClockIDGenerator) NextID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}
