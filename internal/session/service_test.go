package session_test

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/frahmantamala/budget-story/internal"
	"github.com/frahmantamala/budget-story/internal/category"
	"github.com/frahmantamala/budget-story/internal/ledger"
	"github.com/frahmantamala/budget-story/internal/session"
	"github.com/frahmantamala/budget-story/internal/storage/memory"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// failingSnapshots never persists anything.
type failingSnapshots struct{}

func (failingSnapshots) Load(context.Context) (ledger.Ledger, error) {
	return ledger.Ledger{}, ledger.ErrSnapshotNotFound
}

func (failingSnapshots) Save(context.Context, ledger.Ledger) error {
	return errors.New("storage offline")
}

func newLedgerStore(persist ledger.SnapshotStore) *ledger.Store {
	catalog, err := category.NewService(category.DefaultCategories(), quietLogger())
	Expect(err).NotTo(HaveOccurred())
	store := ledger.NewStore(persist, catalog, nil, nil, quietLogger())
	store.Load(context.Background())
	return store
}

func memorySnapshots() ledger.SnapshotStore {
	return ledger.NewSnapshotAdapter(memory.NewStore(), internal.StorageConfig{}, quietLogger())
}

var _ = Describe("Edit-Session Controller", func() {
	var (
		ctx        context.Context
		store      *ledger.Store
		controller *session.Controller
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = newLedgerStore(memorySnapshots())
		controller = session.NewController(store, quietLogger())
	})

	It("should start idle with an empty draft", func() {
		state := controller.State()
		Expect(state.Mode).To(Equal(session.ModeIdle))
		Expect(state.Draft.IsEmpty()).To(BeTrue())
	})

	Describe("Stage", func() {
		It("should move from idle to staging once input arrives", func() {
			state := controller.Stage(session.Draft{Name: "G"})
			Expect(state.Mode).To(Equal(session.ModeStaging))
			Expect(state.Draft.Name).To(Equal("G"))
		})

		It("should stay idle for an empty draft", func() {
			Expect(controller.Stage(session.Draft{}).Mode).To(Equal(session.ModeIdle))
		})

		It("should keep the edit target while editing", func() {
			_, err := controller.BeginEdit(2)
			Expect(err).NotTo(HaveOccurred())

			state := controller.Stage(session.Draft{Name: "Market", Value: "450", Category: "Food"})
			Expect(state.Mode).To(Equal(session.ModeEditing))
			Expect(state.TargetID).To(Equal(int64(2)))
			Expect(state.Draft.Value).To(Equal(session.FormValue("450")))
		})
	})

	Describe("BeginEdit", func() {
		It("should pre-fill the draft from the entry", func() {
			state, err := controller.BeginEdit(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(state).To(Equal(session.State{
				Mode:     session.ModeEditing,
				TargetID: 1,
				Draft:    session.Draft{Name: "Rent", Value: "1200", Category: "Housing"},
			}))
		})

		It("should take over a staged draft", func() {
			controller.Stage(session.Draft{Name: "half typed"})

			state, err := controller.BeginEdit(3)
			Expect(err).NotTo(HaveOccurred())
			Expect(state.Draft.Name).To(Equal("Transportation"))
		})

		It("should refuse unknown ids and keep the session", func() {
			controller.Stage(session.Draft{Name: "Gym"})

			state, err := controller.BeginEdit(404)
			Expect(err).To(MatchError(internal.ErrExpenseNotFound))
			Expect(state.Mode).To(Equal(session.ModeStaging))
			Expect(state.Draft.Name).To(Equal("Gym"))
		})
	})

	Describe("Cancel and Reset", func() {
		It("should cancel an edit back to idle", func() {
			_, err := controller.BeginEdit(1)
			Expect(err).NotTo(HaveOccurred())

			Expect(controller.Cancel()).To(Equal(session.Idle()))
		})

		It("should leave staging alone on cancel", func() {
			controller.Stage(session.Draft{Name: "Gym"})
			Expect(controller.Cancel().Mode).To(Equal(session.ModeStaging))
		})

		It("should reset staging to idle", func() {
			controller.Stage(session.Draft{Name: "Gym"})
			Expect(controller.Reset()).To(Equal(session.Idle()))
		})
	})

	Describe("Commit", func() {
		It("should refuse to commit while idle", func() {
			_, err := controller.Commit(ctx)
			Expect(err).To(MatchError(internal.ErrNothingStaged))
		})

		It("should add a staged expense and return to idle", func() {
			controller.Stage(session.Draft{Name: "Gym", Value: "50", Category: "Leisure"})

			result, err := controller.Commit(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.State).To(Equal(session.Idle()))
			Expect(result.Ledger.Expenses).To(HaveLen(5))
			Expect(store.Current().Expenses[4].Name).To(Equal("Gym"))
		})

		It("should update the target when editing", func() {
			_, err := controller.BeginEdit(4)
			Expect(err).NotTo(HaveOccurred())
			controller.Stage(session.Draft{Name: "Cinema", Value: "90", Category: "Leisure"})

			result, err := controller.Commit(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(result.State.Mode).To(Equal(session.ModeIdle))

			entry, ok := store.Current().Find(4)
			Expect(ok).To(BeTrue())
			Expect(entry.Name).To(Equal("Cinema"))
			Expect(entry.Value).To(Equal(90.0))
			Expect(store.Current().IndexOf(4)).To(Equal(3))
		})

		DescribeTable("should keep mode and draft when the draft is rejected",
			func(d session.Draft) {
				controller.Stage(d)
				before := store.Current()

				result, err := controller.Commit(ctx)
				Expect(err).To(HaveOccurred())
				Expect(internal.IsValidation(err)).To(BeTrue())
				Expect(result.State.Mode).To(Equal(session.ModeStaging))
				Expect(result.State.Draft).To(Equal(d))
				Expect(store.Current()).To(Equal(before))
			},
			Entry("missing value", session.Draft{Name: "Gym", Category: "Leisure"}),
			Entry("non numeric value", session.Draft{Name: "Gym", Value: "fifty", Category: "Leisure"}),
			Entry("negative value", session.Draft{Name: "Gym", Value: "-5", Category: "Leisure"}),
			Entry("missing name", session.Draft{Value: "5", Category: "Leisure"}),
			Entry("missing category", session.Draft{Name: "Gym", Value: "5"}),
		)

		It("should keep editing when the target disappeared", func() {
			_, err := controller.BeginEdit(2)
			Expect(err).NotTo(HaveOccurred())
			_, err = store.DeleteExpense(ctx, 2)
			Expect(err).NotTo(HaveOccurred())

			result, err := controller.Commit(ctx)
			Expect(err).To(MatchError(internal.ErrExpenseNotFound))
			Expect(result.State.Mode).To(Equal(session.ModeEditing))
		})

		It("should return to idle when the change could not be persisted", func() {
			store = newLedgerStore(failingSnapshots{})
			controller = session.NewController(store, quietLogger())
			controller.Stage(session.Draft{Name: "Gym", Value: "50", Category: "Leisure"})

			result, err := controller.Commit(ctx)
			Expect(err).To(MatchError(internal.ErrPersistFailed))
			Expect(result.State).To(Equal(session.Idle()))
			Expect(result.Ledger.Expenses).To(HaveLen(5))
		})
	})

	Describe("FormValue", func() {
		It("should decode strings and numbers", func() {
			var d session.Draft
			Expect(json.Unmarshal([]byte(`{"name":"a","value":12.5,"category":"Food"}`), &d)).To(Succeed())
			Expect(d.Value).To(Equal(session.FormValue("12.5")))

			Expect(json.Unmarshal([]byte(`{"value":"7"}`), &d)).To(Succeed())
			Expect(d.Value).To(Equal(session.FormValue("7")))
		})

		It("should reject other JSON types", func() {
			var d session.Draft
			Expect(json.Unmarshal([]byte(`{"value":true}`), &d)).NotTo(Succeed())
		})
	})
})
