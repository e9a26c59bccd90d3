package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/frahmantamala/budget-story/internal"
	"github.com/frahmantamala/budget-story/internal/category"
	"github.com/frahmantamala/budget-story/internal/core/common/validation"
	"github.com/frahmantamala/budget-story/internal/core/events"
)

// CatalogAPI resolves category names to their display color.
type CatalogAPI interface {
	Lookup(name string) (category.Category, bool)
}

// SnapshotStore is the durable side of the ledger.
type SnapshotStore interface {
	Load(ctx context.Context) (Ledger, error)
	Save(ctx context.Context, l Ledger) error
}

// Store owns the canonical Ledger. Mutations are serialized by writeMu and
// applied in submission order; readers load an immutable snapshot and never
// wait on storage I/O.
type Store struct {
	writeMu   sync.Mutex
	current   atomic.Pointer[Ledger]
	persist   SnapshotStore
	catalog   CatalogAPI
	ids       IDGenerator
	publisher events.Publisher
	logger    *slog.Logger
}

func NewStore(persist SnapshotStore, catalog CatalogAPI, ids IDGenerator, publisher events.Publisher, logger *slog.Logger) *Store {
	if ids == nil {
		ids = NewClockIDGenerator(nil)
	}
	s := &Store{
		persist:   persist,
		catalog:   catalog,
		ids:       ids,
		publisher: publisher,
		logger:    logger,
	}
	demo := Demo()
	s.current.Store(&demo)
	return s
}

// Load replaces the in-memory ledger with the persisted snapshot, or with
// demo data when nothing usable is stored. It never fails.
func (s *Store) Load(ctx context.Context) Ledger {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	loaded, err := s.persist.Load(ctx)
	if err == nil {
		loaded, err = s.conform(loaded)
	}
	switch {
	case err == nil:
		s.logger.Info("ledger loaded from storage",
			"income", loaded.Income,
			"expense_count", loaded.Len())
	case errors.Is(err, ErrSnapshotNotFound):
		s.logger.Info("no saved ledger, using demo data")
		loaded = Demo()
	default:
		s.logger.Warn("saved ledger unusable, using demo data", "error", err)
		loaded = Demo()
	}

	s.current.Store(&loaded)
	s.publish(ctx, ReasonLoad, loaded)
	return loaded.Clone()
}

// Current returns a copy of the latest snapshot.
func (s *Store) Current() Ledger {
	return s.current.Load().Clone()
}

func (s *Store) SetIncome(ctx context.Context, income float64) (Ledger, error) {
	if appErr := validation.ValidateIncome(income); appErr != nil {
		s.logger.Debug("income rejected", "income", income, "error", appErr)
		return s.Current(), appErr
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := s.current.Load().Clone()
	next.Income = income
	next.IsDemo = false

	s.logger.Info("income updated", "income", income)
	return s.commit(ctx, ReasonIncome, next)
}

func (s *Store) AddExpense(ctx context.Context, name string, value float64, categoryName string) (Ledger, error) {
	cat, appErr := s.validateEntry(name, value, categoryName)
	if appErr != nil {
		return s.Current(), appErr
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := s.current.Load().Clone()
	id := s.ids.NextID()
	for next.IndexOf(id) >= 0 {
		id = s.ids.NextID()
	}

	next.Expenses = append(next.Expenses, ExpenseEntry{
		ID:       id,
		Name:     strings.TrimSpace(name),
		Value:    value,
		Category: cat.Name,
		Color:    cat.Color,
	})
	next.IsDemo = false

	s.logger.Info("expense added",
		"expense_id", id,
		"category", cat.Name,
		"value", value)
	return s.commit(ctx, ReasonAdd, next)
}

func (s *Store) UpdateExpense(ctx context.Context, id int64, name string, value float64, categoryName string) (Ledger, error) {
	cat, appErr := s.validateEntry(name, value, categoryName)
	if appErr != nil {
		return s.Current(), appErr
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := s.current.Load().Clone()
	i := next.IndexOf(id)
	if i < 0 {
		s.logger.Debug("update of unknown expense", "expense_id", id)
		return next, internal.ErrExpenseNotFound
	}

	next.Expenses[i] = ExpenseEntry{
		ID:       id,
		Name:     strings.TrimSpace(name),
		Value:    value,
		Category: cat.Name,
		Color:    cat.Color,
	}
	next.IsDemo = false

	s.logger.Info("expense updated",
		"expense_id", id,
		"category", cat.Name,
		"value", value)
	return s.commit(ctx, ReasonUpdate, next)
}

// DeleteExpense removes id if present. Deleting an absent id changes
// nothing and is not an error.
func (s *Store) DeleteExpense(ctx context.Context, id int64) (Ledger, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	current := s.current.Load()
	i := current.IndexOf(id)
	if i < 0 {
		s.logger.Debug("delete of unknown expense ignored", "expense_id", id)
		return current.Clone(), nil
	}

	next := current.Clone()
	next.Expenses = append(next.Expenses[:i], next.Expenses[i+1:]...)
	next.IsDemo = false

	s.logger.Info("expense deleted", "expense_id", id)
	return s.commit(ctx, ReasonDelete, next)
}

// ClearAll discards income and every expense. There is no undo.
func (s *Store) ClearAll(ctx context.Context) (Ledger, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.logger.Info("ledger cleared")
	return s.commit(ctx, ReasonClear, Empty())
}

func (s *Store) knownCategory(name string) bool {
	_, ok := s.catalog.Lookup(name)
	return ok
}

// conform holds a stored ledger to the same rules as live input. Colors are
// taken from the catalog, so only names, values and categories can fail.
func (s *Store) conform(l Ledger) (Ledger, error) {
	for i, e := range l.Expenses {
		if appErr := validation.ValidateExpense(e.Name, e.Value, e.Category, s.knownCategory); appErr != nil {
			return Ledger{}, fmt.Errorf("%w: expense %d: %s", ErrSnapshotCorrupt, e.ID, appErr.GetDetailedMessage())
		}
		cat, _ := s.catalog.Lookup(e.Category)
		l.Expenses[i].Name = strings.TrimSpace(e.Name)
		l.Expenses[i].Color = cat.Color
	}
	return l, nil
}

func (s *Store) validateEntry(name string, value float64, categoryName string) (category.Category, *internal.AppError) {
	if appErr := validation.ValidateExpense(name, value, categoryName, s.knownCategory); appErr != nil {
		s.logger.Debug("expense rejected",
			"category", categoryName,
			"error", appErr.GetDetailedMessage())
		return category.Category{}, appErr
	}
	cat, _ := s.catalog.Lookup(categoryName)
	return cat, nil
}

// commit installs next, writes it through and notifies subscribers. Callers
// hold writeMu. A failed write keeps the in-memory change and is reported
// as ErrPersistFailed alongside the new ledger.
func (s *Store) commit(ctx context.Context, reason ChangeReason, next Ledger) (Ledger, error) {
	s.current.Store(&next)

	var persistErr error
	if err := s.persist.Save(ctx, next); err != nil {
		s.logger.Warn("ledger change kept in memory but not persisted",
			"reason", string(reason),
			"error", err)
		persistErr = internal.ErrPersistFailed.WithCause(err)
	}

	s.publish(ctx, reason, next)
	return next.Clone(), persistErr
}

func (s *Store) publish(ctx context.Context, reason ChangeReason, l Ledger) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSync(ctx, NewChangedEvent(reason, l)); err != nil {
		s.logger.Error("ledger change subscribers failed",
			"reason", string(reason),
			"error", err)
	}
}
