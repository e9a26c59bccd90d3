package ledger

// ExpenseEntry is one categorized expense line. Color is a copy of the
// category color taken whenever the entry is written.
type ExpenseEntry struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	Category string  `json:"category"`
	Color    string  `json:"color"`
}

// Ledger is the aggregate root: monthly income plus expenses in display order.
type Ledger struct {
	Income   float64        `json:"income"`
	Expenses []ExpenseEntry `json:"expenses"`
	IsDemo   bool           `json:"isDemo"`
}

// Demo returns the built-in seed ledger shown before any user data exists.
func Demo() Ledger {
	return Ledger{
		Income: 2500,
		Expenses: []ExpenseEntry{
			{ID: 1, Name: "Rent", Value: 1200, Category: "Housing", Color: "#6366F1"},
			{ID: 2, Name: "Groceries", Value: 400, Category: "Food", Color: "#EC4899"},
			{ID: 3, Name: "Transportation", Value: 200, Category: "Transport", Color: "#14B8A6"},
			{ID: 4, Name: "Entertainment", Value: 150, Category: "Leisure", Color: "#F59E0B"},
		},
		IsDemo: true,
	}
}

// Empty is the result of clearing everything.
func Empty() Ledger {
	return Ledger{Expenses: []ExpenseEntry{}}
}

// Clone returns a deep copy; the expenses slice is never shared.
func (l Ledger) Clone() Ledger {
	out := l
	out.Expenses = make([]ExpenseEntry, len(l.Expenses))
	copy(out.Expenses, l.Expenses)
	return out
}

func (l Ledger) IndexOf(id int64) int {
	for i, e := range l.Expenses {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (l Ledger) Find(id int64) (ExpenseEntry, bool) {
	if i := l.IndexOf(id); i >= 0 {
		return l.Expenses[i], true
	}
	return ExpenseEntry{}, false
}

func (l Ledger) Len() int {
	return len(l.Expenses)
}
