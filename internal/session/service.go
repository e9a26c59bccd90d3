package session

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/frahmantamala/budget-story/internal"
	"github.com/frahmantamala/budget-story/internal/ledger"
)

// LedgerAPI is the part of the Ledger Store a commit needs.
type LedgerAPI interface {
	Current() ledger.Ledger
	AddExpense(ctx context.Context, name string, value float64, category string) (ledger.Ledger, error)
	UpdateExpense(ctx context.Context, id int64, name string, value float64, category string) (ledger.Ledger, error)
}

type CommitResult struct {
	State  State
	Ledger ledger.Ledger
}

// Controller drives the Idle / Staging / Editing(id) state machine.
type Controller struct {
	mu     sync.Mutex
	state  State
	ledger LedgerAPI
	logger *slog.Logger
}

func NewController(l LedgerAPI, logger *slog.Logger) *Controller {
	return &Controller{
		state:  Idle(),
		ledger: l,
		logger: logger,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stage records typed input. From Idle a non-empty draft moves to Staging;
// while editing the draft is replaced and the target kept.
func (c *Controller) Stage(d Draft) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state.Mode {
	case ModeIdle:
		if d.IsEmpty() {
			return c.state
		}
		c.state = State{Mode: ModeStaging, Draft: d}
		c.logger.Debug("session staging new expense")
	default:
		c.state.Draft = d
	}
	return c.state
}

// BeginEdit switches to Editing(id) with the draft pre-filled from the entry.
// Unknown ids leave the session unchanged.
func (c *Controller) BeginEdit(id int64) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.ledger.Current().Find(id)
	if !ok {
		c.logger.Debug("edit of unknown expense", "expense_id", id)
		return c.state, internal.ErrExpenseNotFound
	}

	c.state = State{
		Mode:     ModeEditing,
		TargetID: id,
		Draft: Draft{
			Name:     entry.Name,
			Value:    FormValue(strconv.FormatFloat(entry.Value, 'f', -1, 64)),
			Category: entry.Category,
		},
	}
	c.logger.Debug("session editing expense", "expense_id", id)
	return c.state, nil
}

// Cancel leaves Editing(id) for Idle. It does nothing in other modes.
func (c *Controller) Cancel() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.IsEditing() {
		c.logger.Debug("session edit cancelled", "expense_id", c.state.TargetID)
		c.state = Idle()
	}
	return c.state
}

// Reset returns to Idle from any mode and drops the draft.
func (c *Controller) Reset() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = Idle()
	return c.state
}

// Commit submits the draft: Staging adds an expense, Editing(id) updates it.
// On success, including a change that could not be persisted, the session
// returns to Idle. Any other failure keeps mode and draft for correction.
func (c *Controller) Commit(ctx context.Context) (CommitResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Mode == ModeIdle {
		return CommitResult{State: c.state, Ledger: c.ledger.Current()}, internal.ErrNothingStaged
	}

	value, appErr := parseValue(c.state.Draft.Value)
	if appErr != nil {
		return CommitResult{State: c.state, Ledger: c.ledger.Current()}, appErr
	}

	d := c.state.Draft
	var (
		l   ledger.Ledger
		err error
	)
	if c.state.IsEditing() {
		l, err = c.ledger.UpdateExpense(ctx, c.state.TargetID, d.Name, value, d.Category)
	} else {
		l, err = c.ledger.AddExpense(ctx, d.Name, value, d.Category)
	}

	if err != nil && !errors.Is(err, internal.ErrPersistFailed) {
		c.logger.Debug("session commit rejected", "mode", string(c.state.Mode), "error", err)
		return CommitResult{State: c.state, Ledger: l}, err
	}

	c.logger.Debug("session committed", "mode", string(c.state.Mode))
	c.state = Idle()
	return CommitResult{State: c.state, Ledger: l}, err
}

func parseValue(raw FormValue) (float64, *internal.AppError) {
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return 0, internal.NewValidationFieldError("value", "value is required", internal.ErrCodeInvalidValue)
	}
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, internal.NewValidationFieldError("value", "value must be a number", internal.ErrCodeInvalidValue)
	}
	return v, nil
}
