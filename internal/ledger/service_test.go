package ledger_test

import (
	"context"
	"strings"
	"sync"

	"github.com/frahmantamala/budget-story/internal"
	"github.com/frahmantamala/budget-story/internal/category"
	"github.com/frahmantamala/budget-story/internal/core/events"
	"github.com/frahmantamala/budget-story/internal/ledger"
	"github.com/frahmantamala/budget-story/internal/storage/memory"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Ledger Store", func() {
	var (
		ctx     context.Context
		kv      *memory.Store
		adapter *ledger.SnapshotAdapter
		catalog *category.Service
		bus     *events.EventBus
		ids     *sequenceIDs
		store   *ledger.Store
		seen    []ledger.ChangeReason
		mu      sync.Mutex
	)

	newStore := func(persist ledger.SnapshotStore) *ledger.Store {
		return ledger.NewStore(persist, catalog, ids, bus, quietLogger())
	}

	BeforeEach(func() {
		var err error
		ctx = context.Background()
		kv = memory.NewStore()
		adapter = ledger.NewSnapshotAdapter(kv, testStorageConfig(), quietLogger())
		catalog, err = category.NewService(category.DefaultCategories(), quietLogger())
		Expect(err).NotTo(HaveOccurred())

		seen = nil
		bus = events.NewEventBus(quietLogger())
		bus.Subscribe(ledger.EventTypeLedgerChanged, func(_ context.Context, e events.Event) error {
			changed, ok := e.(*ledger.ChangedEvent)
			Expect(ok).To(BeTrue())
			mu.Lock()
			seen = append(seen, changed.Reason)
			mu.Unlock()
			return nil
		})

		ids = &sequenceIDs{next: 100}
		store = newStore(adapter)
	})

	Describe("Load", func() {
		It("should fall back to the exact demo data when nothing is stored", func() {
			l := store.Load(ctx)

			Expect(l.IsDemo).To(BeTrue())
			Expect(l.Income).To(Equal(2500.0))
			Expect(l.Expenses).To(Equal([]ledger.ExpenseEntry{
				{ID: 1, Name: "Rent", Value: 1200, Category: "Housing", Color: "#6366F1"},
				{ID: 2, Name: "Groceries", Value: 400, Category: "Food", Color: "#EC4899"},
				{ID: 3, Name: "Transportation", Value: 200, Category: "Transport", Color: "#14B8A6"},
				{ID: 4, Name: "Entertainment", Value: 150, Category: "Leisure", Color: "#F59E0B"},
			}))
			Expect(seen).To(Equal([]ledger.ChangeReason{ledger.ReasonLoad}))
		})

		It("should fall back to demo data when the snapshot is corrupt", func() {
			Expect(kv.Put(ctx, internal.DefaultLedgerKey, []byte("not json"))).To(Succeed())

			l := store.Load(ctx)
			Expect(l.IsDemo).To(BeTrue())
			Expect(l.Expenses).To(HaveLen(4))
		})

		DescribeTable("should fall back to demo data for records that break entry rules",
			func(raw string) {
				Expect(kv.Put(ctx, internal.DefaultLedgerKey, []byte(raw))).To(Succeed())

				l := store.Load(ctx)
				Expect(l.IsDemo).To(BeTrue())
				Expect(l.Expenses).To(Equal(ledger.Demo().Expenses))
			},
			Entry("null record", `null`),
			Entry("blank name", `{"income":1,"expenses":[{"id":9,"name":"  ","value":5,"category":"Food","color":"#EC4899"}]}`),
			Entry("unknown category", `{"income":1,"expenses":[{"id":9,"name":"Gift","value":5,"category":"Bogus","color":"#EC4899"}]}`),
			Entry("overlong name", `{"income":1,"expenses":[{"id":9,"name":"`+strings.Repeat("n", 200)+`","value":5,"category":"Food"}]}`),
		)

		It("should take colors from the catalog rather than the stored record", func() {
			raw := `{"income":10,"expenses":[{"id":9,"name":" Gift ","value":5,"category":"Leisure","color":"x"}]}`
			Expect(kv.Put(ctx, internal.DefaultLedgerKey, []byte(raw))).To(Succeed())

			l := store.Load(ctx)
			Expect(l.IsDemo).To(BeFalse())
			Expect(l.Expenses).To(Equal([]ledger.ExpenseEntry{
				{ID: 9, Name: "Gift", Value: 5, Category: "Leisure", Color: "#F59E0B"},
			}))
		})

		It("should fall back to demo data when storage cannot be read", func() {
			broken := &flakyKV{inner: kv, getErr: errDiskFull}
			store = newStore(ledger.NewSnapshotAdapter(broken, testStorageConfig(), quietLogger()))

			Expect(store.Load(ctx).IsDemo).To(BeTrue())
		})

		It("should restore a stored snapshot as non-demo", func() {
			_, err := store.SetIncome(ctx, 3000)
			Expect(err).NotTo(HaveOccurred())

			reloaded := newStore(adapter).Load(ctx)
			Expect(reloaded.IsDemo).To(BeFalse())
			Expect(reloaded.Income).To(Equal(3000.0))
			Expect(reloaded.Expenses).To(HaveLen(4))
		})
	})

	Describe("SetIncome", func() {
		BeforeEach(func() {
			store.Load(ctx)
		})

		It("should replace income and clear the demo flag", func() {
			l, err := store.SetIncome(ctx, 4200.5)
			Expect(err).NotTo(HaveOccurred())
			Expect(l.Income).To(Equal(4200.5))
			Expect(l.IsDemo).To(BeFalse())
			Expect(store.Current().Income).To(Equal(4200.5))
		})

		It("should accept zero", func() {
			l, err := store.SetIncome(ctx, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(l.Income).To(BeZero())
		})

		It("should keep prior income on negative input", func() {
			l, err := store.SetIncome(ctx, -10)
			Expect(err).To(HaveOccurred())
			Expect(internal.IsValidation(err)).To(BeTrue())
			Expect(l.Income).To(Equal(2500.0))
			Expect(l.IsDemo).To(BeTrue())

			_, getErr := kv.Get(ctx, internal.DefaultLedgerKey)
			Expect(getErr).To(HaveOccurred())
		})
	})

	Describe("AddExpense", func() {
		BeforeEach(func() {
			store.Load(ctx)
		})

		It("should append one entry with the catalog color", func() {
			before := store.Current().Len()

			l, err := store.AddExpense(ctx, "Power bill", 80, "Utilities")
			Expect(err).NotTo(HaveOccurred())
			Expect(l.Len()).To(Equal(before + 1))

			last := l.Expenses[l.Len()-1]
			Expect(last.ID).To(Equal(int64(101)))
			Expect(last.Name).To(Equal("Power bill"))
			Expect(last.Color).To(Equal("#8B5CF6"))
			Expect(l.IsDemo).To(BeFalse())
			Expect(seen).To(Equal([]ledger.ChangeReason{ledger.ReasonLoad, ledger.ReasonAdd}))
		})

		It("should accept a name that only exceeds the limit through padding", func() {
			name := strings.Repeat("y", 119)

			l, err := store.AddExpense(ctx, "  "+name+"   ", 1, "Food")
			Expect(err).NotTo(HaveOccurred())
			Expect(l.Expenses[l.Len()-1].Name).To(Equal(name))
		})

		It("should set every catalog color for its category", func() {
			for _, c := range category.DefaultCategories() {
				l, err := store.AddExpense(ctx, c.Name+" item", 1, c.Name)
				Expect(err).NotTo(HaveOccurred())
				Expect(l.Expenses[l.Len()-1].Color).To(Equal(c.Color))
			}
		})

		It("should skip ids already in the ledger", func() {
			ids.ids = []int64{3, 4, 500}

			l, err := store.AddExpense(ctx, "Taxi", 12, "Transport")
			Expect(err).NotTo(HaveOccurred())
			Expect(l.Expenses[l.Len()-1].ID).To(Equal(int64(500)))
		})

		DescribeTable("should reject invalid input without touching the ledger",
			func(name string, value float64, cat string, code string) {
				before := store.Current()

				l, err := store.AddExpense(ctx, name, value, cat)
				Expect(err).To(HaveOccurred())

				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				details, ok := appErr.Details.(internal.ValidationErrors)
				Expect(ok).To(BeTrue())
				Expect(details.Errors[0].Code).To(Equal(code))

				Expect(l).To(Equal(before))
				Expect(store.Current()).To(Equal(before))
				Expect(seen).To(Equal([]ledger.ChangeReason{ledger.ReasonLoad}))
			},
			Entry("empty name", "", 10.0, "Food", "INVALID_NAME"),
			Entry("blank name", "   ", 10.0, "Food", "INVALID_NAME"),
			Entry("negative value", "Lunch", -1.0, "Food", "INVALID_VALUE"),
			Entry("unknown category", "Lunch", 10.0, "Travel", "INVALID_CATEGORY"),
			Entry("wrong case category", "Lunch", 10.0, "food", "INVALID_CATEGORY"),
		)
	})

	Describe("UpdateExpense", func() {
		BeforeEach(func() {
			store.Load(ctx)
		})

		It("should keep id, position and length", func() {
			l, err := store.UpdateExpense(ctx, 2, "Market", 420, "Food")
			Expect(err).NotTo(HaveOccurred())
			Expect(l.Len()).To(Equal(4))
			Expect(l.IndexOf(2)).To(Equal(1))
			Expect(l.Expenses[1]).To(Equal(ledger.ExpenseEntry{
				ID: 2, Name: "Market", Value: 420, Category: "Food", Color: "#EC4899",
			}))
		})

		It("should re-derive the color when the category changes", func() {
			l, err := store.UpdateExpense(ctx, 4, "Doctor", 150, "Healthcare")
			Expect(err).NotTo(HaveOccurred())
			Expect(l.Expenses[3].Color).To(Equal("#F43F5E"))
		})

		It("should report unknown ids and leave the ledger alone", func() {
			before := store.Current()

			_, err := store.UpdateExpense(ctx, 999, "Ghost", 1, "Food")
			Expect(err).To(MatchError(internal.ErrExpenseNotFound))
			Expect(store.Current()).To(Equal(before))
		})

		It("should update a freshly added entry in place", func() {
			added, err := store.AddExpense(ctx, "Gym", 50, "Leisure")
			Expect(err).NotTo(HaveOccurred())
			gym := added.Expenses[added.Len()-1]
			pos := added.IndexOf(gym.ID)

			l, err := store.UpdateExpense(ctx, gym.ID, "Gym", 60, "Leisure")
			Expect(err).NotTo(HaveOccurred())

			updated, ok := l.Find(gym.ID)
			Expect(ok).To(BeTrue())
			Expect(updated.Value).To(Equal(60.0))
			Expect(updated.Color).To(Equal(gym.Color))
			Expect(l.IndexOf(gym.ID)).To(Equal(pos))
			Expect(l.Len()).To(Equal(added.Len()))
		})
	})

	Describe("DeleteExpense", func() {
		BeforeEach(func() {
			store.Load(ctx)
		})

		It("should remove the entry and keep survivor order", func() {
			l, err := store.DeleteExpense(ctx, 2)
			Expect(err).NotTo(HaveOccurred())

			names := make([]string, 0, l.Len())
			for _, e := range l.Expenses {
				names = append(names, e.Name)
			}
			Expect(names).To(Equal([]string{"Rent", "Transportation", "Entertainment"}))
			Expect(l.IsDemo).To(BeFalse())
		})

		It("should be idempotent", func() {
			first, err := store.DeleteExpense(ctx, 3)
			Expect(err).NotTo(HaveOccurred())

			second, err := store.DeleteExpense(ctx, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
			Expect(seen).To(Equal([]ledger.ChangeReason{ledger.ReasonLoad, ledger.ReasonDelete}))
		})
	})

	Describe("ClearAll", func() {
		It("should empty the demo ledger and survive a reload", func() {
			store.Load(ctx)

			l, err := store.ClearAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(l).To(Equal(ledger.Ledger{Income: 0, Expenses: []ledger.ExpenseEntry{}, IsDemo: false}))

			reloaded := newStore(adapter).Load(ctx)
			Expect(reloaded).To(Equal(ledger.Ledger{Income: 0, Expenses: []ledger.ExpenseEntry{}, IsDemo: false}))
		})
	})

	Context("when storage keeps failing", func() {
		var flaky *flakyKV

		BeforeEach(func() {
			flaky = &flakyKV{inner: kv, failPuts: 1000}
			store = newStore(ledger.NewSnapshotAdapter(flaky, testStorageConfig(), quietLogger()))
			store.Load(ctx)
		})

		It("should keep the change in memory and report a persist failure", func() {
			l, err := store.AddExpense(ctx, "Books", 30, "Leisure")
			Expect(err).To(MatchError(internal.ErrPersistFailed))
			Expect(internal.IsValidation(err)).To(BeFalse())
			Expect(l.Len()).To(Equal(5))
			Expect(store.Current().Len()).To(Equal(5))
			Expect(seen).To(ContainElement(ledger.ReasonAdd))
		})

		It("should heal storage on the next successful write", func() {
			_, err := store.AddExpense(ctx, "Books", 30, "Leisure")
			Expect(err).To(HaveOccurred())

			flaky.failPuts = 0
			_, err = store.SetIncome(ctx, 2600)
			Expect(err).NotTo(HaveOccurred())

			reloaded := newStore(adapter).Load(ctx)
			Expect(reloaded.Len()).To(Equal(5))
			Expect(reloaded.Income).To(Equal(2600.0))
		})
	})

	It("should return snapshots that callers cannot mutate", func() {
		store.Load(ctx)
		snap := store.Current()
		snap.Expenses[0].Name = "Changed"

		Expect(store.Current().Expenses[0].Name).To(Equal("Rent"))
	})

	It("should apply concurrent mutations without losing any", func() {
		store = ledger.NewStore(adapter, catalog, ledger.NewClockIDGenerator(nil), bus, quietLogger())
		store.Load(ctx)

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				_, err := store.AddExpense(ctx, "Coffee", 3, "Food")
				Expect(err).NotTo(HaveOccurred())
			}()
		}
		wg.Wait()

		l := store.Current()
		Expect(l.Len()).To(Equal(24))
		unique := map[int64]bool{}
		for _, e := range l.Expenses {
			unique[e.ID] = true
		}
		Expect(unique).To(HaveLen(24))
	})
})
