package trend

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/frahmantamala/budget-story/internal/core/events"
	"github.com/frahmantamala/budget-story/internal/ledger"
	"github.com/frahmantamala/budget-story/internal/summary"
)

// Synthesizer keeps the latest trend series and rebuilds it from scratch on
// every ledger change.
type Synthesizer struct {
	mu     sync.RWMutex
	src    VariationSource
	series []Point
	logger *slog.Logger
}

func NewSynthesizer(src VariationSource, logger *slog.Logger) *Synthesizer {
	return &Synthesizer{
		src:    src,
		series: Synthesize(0, 0, src),
		logger: logger,
	}
}

func (s *Synthesizer) Regenerate(l ledger.Ledger) []Point {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.series = Synthesize(summary.TotalExpenses(l), l.Income, s.src)
	return s.copySeries()
}

func (s *Synthesizer) Series() []Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copySeries()
}

func (s *Synthesizer) copySeries() []Point {
	out := make([]Point, len(s.series))
	copy(out, s.series)
	return out
}

func (s *Synthesizer) HandleLedgerChanged(ctx context.Context, event events.Event) error {
	changed, ok := event.(*ledger.ChangedEvent)
	if !ok {
		return fmt.Errorf("unexpected event payload %T", event)
	}
	s.Regenerate(changed.Ledger)
	s.logger.Debug("trend regenerated",
		"reason", string(changed.Reason),
		"event_id", changed.EventID())
	return nil
}

func (s *Synthesizer) RegisterEventHandlers(bus *events.EventBus) {
	bus.Subscribe(ledger.EventTypeLedgerChanged, s.HandleLedgerChanged)
}
