package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/frahmantamala/budget-story/internal"
	"github.com/frahmantamala/budget-story/internal/storage"
	"github.com/sethvargo/go-retry"
)

var (
	ErrSnapshotNotFound = errors.New("ledger snapshot not found")
	ErrSnapshotCorrupt  = errors.New("ledger snapshot is corrupt")
)

const (
	ThemeDark  = "dark"
	ThemeLight = "light"

	defaultRetryBaseDelay = 50 * time.Millisecond
)

// snapshot is the persisted record. isDemo is always written as false: a
// stored ledger is user data by definition.
type snapshot struct {
	Expenses []ExpenseEntry `json:"expenses"`
	Income   float64        `json:"income"`
	IsDemo   bool           `json:"isDemo"`
}

// SnapshotAdapter reads and writes the ledger snapshot under a single key of
// a key-value store. It holds no business rules beyond shape checks.
type SnapshotAdapter struct {
	kv         storage.KeyValueAPI
	ledgerKey  string
	themeKey   string
	retries    uint64
	retryDelay time.Duration
	timeout    time.Duration
	logger     *slog.Logger
}

func NewSnapshotAdapter(kv storage.KeyValueAPI, cfg internal.StorageConfig, logger *slog.Logger) *SnapshotAdapter {
	ledgerKey := cfg.LedgerKey
	if ledgerKey == "" {
		ledgerKey = internal.DefaultLedgerKey
	}
	themeKey := cfg.ThemeKey
	if themeKey == "" {
		themeKey = internal.DefaultThemeKey
	}
	delay := cfg.RetryBaseDelay
	if delay <= 0 {
		delay = defaultRetryBaseDelay
	}
	return &SnapshotAdapter{
		kv:         kv,
		ledgerKey:  ledgerKey,
		themeKey:   themeKey,
		retries:    cfg.WriteRetries,
		retryDelay: delay,
		timeout:    cfg.OperationTimeout,
		logger:     logger,
	}
}

// Load returns the stored ledger with IsDemo cleared. An absent key yields
// ErrSnapshotNotFound and an unusable record yields ErrSnapshotCorrupt.
func (a *SnapshotAdapter) Load(ctx context.Context) (Ledger, error) {
	ctx, cancel := internal.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := a.kv.Get(ctx, a.ledgerKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Ledger{}, ErrSnapshotNotFound
		}
		return Ledger{}, fmt.Errorf("read ledger snapshot: %w", err)
	}

	return decodeSnapshot(raw)
}

// Save writes the whole ledger, retrying transient failures with
// exponential backoff.
func (a *SnapshotAdapter) Save(ctx context.Context, l Ledger) error {
	data, err := encodeSnapshot(l)
	if err != nil {
		return err
	}

	ctx, cancel := internal.WithTimeout(ctx, a.timeout)
	defer cancel()

	attempt := 0
	backoff := retry.WithMaxRetries(a.retries, retry.NewExponential(a.retryDelay))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := a.kv.Put(ctx, a.ledgerKey, data); err != nil {
			a.logger.Debug("ledger snapshot write failed",
				"key", a.ledgerKey,
				"attempt", attempt,
				"error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
}

// Forget removes the stored snapshot so the next load falls back to demo data.
func (a *SnapshotAdapter) Forget(ctx context.Context) error {
	ctx, cancel := internal.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.kv.Delete(ctx, a.ledgerKey)
}

// LoadTheme returns the stored theme preference, "dark" when none is usable.
func (a *SnapshotAdapter) LoadTheme(ctx context.Context) string {
	ctx, cancel := internal.WithTimeout(ctx, a.timeout)
	defer cancel()

	raw, err := a.kv.Get(ctx, a.themeKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			a.logger.Warn("failed to read theme preference", "key", a.themeKey, "error", err)
		}
		return ThemeDark
	}
	switch theme := strings.Trim(strings.TrimSpace(string(raw)), `"`); theme {
	case ThemeDark, ThemeLight:
		return theme
	default:
		return ThemeDark
	}
}

func encodeSnapshot(l Ledger) ([]byte, error) {
	expenses := l.Expenses
	if expenses == nil {
		expenses = []ExpenseEntry{}
	}
	data, err := json.Marshal(snapshot{
		Expenses: expenses,
		Income:   l.Income,
		IsDemo:   false,
	})
	if err != nil {
		return nil, fmt.Errorf("encode ledger snapshot: %w", err)
	}
	return data, nil
}

func decodeSnapshot(raw []byte) (Ledger, error) {
	var s *snapshot
	if err := json.Unmarshal(raw, &s); err != nil {
		return Ledger{}, fmt.Errorf("%w: %v", ErrSnapshotCorrupt, err)
	}
	if s == nil {
		return Ledger{}, fmt.Errorf("%w: record is null", ErrSnapshotCorrupt)
	}
	if !validAmount(s.Income) {
		return Ledger{}, fmt.Errorf("%w: income %v", ErrSnapshotCorrupt, s.Income)
	}

	seen := make(map[int64]struct{}, len(s.Expenses))
	for _, e := range s.Expenses {
		if !validAmount(e.Value) {
			return Ledger{}, fmt.Errorf("%w: expense %d has value %v", ErrSnapshotCorrupt, e.ID, e.Value)
		}
		if _, dup := seen[e.ID]; dup {
			return Ledger{}, fmt.Errorf("%w: duplicate expense id %d", ErrSnapshotCorrupt, e.ID)
		}
		seen[e.ID] = struct{}{}
	}

	l := Ledger{Income: s.Income, Expenses: s.Expenses, IsDemo: false}
	if l.Expenses == nil {
		l.Expenses = []ExpenseEntry{}
	}
	return l, nil
}

func validAmount(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
