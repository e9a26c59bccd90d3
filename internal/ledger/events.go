package ledger

import (
	"github.com/frahmantamala/budget-story/internal/core/events"
)

const EventTypeLedgerChanged = "ledger.changed"

type ChangeReason string

const (
	ReasonLoad   ChangeReason = "load"
	ReasonIncome ChangeReason = "income"
	ReasonAdd    ChangeReason = "add"
	ReasonUpdate ChangeReason = "update"
	ReasonDelete ChangeReason = "delete"
	ReasonClear  ChangeReason = "clear"
)

// ChangedEvent carries the snapshot produced by a load or a mutation.
type ChangedEvent struct {
	events.BaseEvent
	Reason ChangeReason `json:"reason"`
	Ledger Ledger       `json:"ledger"`
}

func NewChangedEvent(reason ChangeReason, l Ledger) *ChangedEvent {
	snapshot := l.Clone()
	return &ChangedEvent{
		BaseEvent: events.NewBaseEvent(EventTypeLedgerChanged, map[string]interface{}{
			"reason":        string(reason),
			"income":        snapshot.Income,
			"expense_count": len(snapshot.Expenses),
			"is_demo":       snapshot.IsDemo,
		}),
		Reason: reason,
		Ledger: snapshot,
	}
}
