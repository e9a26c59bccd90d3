package ledger_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/budget-story/internal/category"
	"github.com/frahmantamala/budget-story/internal/ledger"
	"github.com/frahmantamala/budget-story/internal/storage/memory"
	"github.com/frahmantamala/budget-story/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Ledger Handler", func() {
	var (
		router *chi.Mux
		flaky  *flakyKV
		store  *ledger.Store
	)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decode := func(w *httptest.ResponseRecorder) ledger.MutationResponse {
		var resp ledger.MutationResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		return resp
	}

	BeforeEach(func() {
		catalog, err := category.NewService(category.DefaultCategories(), quietLogger())
		Expect(err).NotTo(HaveOccurred())

		flaky = &flakyKV{inner: memory.NewStore()}
		adapter := ledger.NewSnapshotAdapter(flaky, testStorageConfig(), quietLogger())
		store = ledger.NewStore(adapter, catalog, &sequenceIDs{next: 10}, nil, quietLogger())
		store.Load(context.Background())

		handler := ledger.NewHandler(transport.NewBaseHandler(quietLogger()), store)
		router = chi.NewRouter()
		router.Route("/ledger", func(r chi.Router) {
			r.Get("/", handler.GetLedger)
			r.Post("/reload", handler.Reload)
			r.Put("/income", handler.SetIncome)
			r.Post("/expenses", handler.AddExpense)
			r.Put("/expenses/{id}", handler.UpdateExpense)
			r.Delete("/expenses/{id}", handler.DeleteExpense)
			r.Post("/clear", handler.ClearAll)
		})
	})

	It("should return the current ledger", func() {
		w := do(http.MethodGet, "/ledger/", "")
		Expect(w.Code).To(Equal(http.StatusOK))

		var l ledger.Ledger
		Expect(json.NewDecoder(w.Body).Decode(&l)).To(Succeed())
		Expect(l.IsDemo).To(BeTrue())
		Expect(l.Expenses).To(HaveLen(4))
	})

	It("should add an expense", func() {
		w := do(http.MethodPost, "/ledger/expenses", `{"name":"Gym","value":50,"category":"Leisure"}`)
		Expect(w.Code).To(Equal(http.StatusCreated))

		resp := decode(w)
		Expect(resp.Warning).To(BeEmpty())
		Expect(resp.Ledger.Expenses).To(HaveLen(5))
		Expect(resp.Ledger.Expenses[4].Color).To(Equal("#F59E0B"))
	})

	It("should reject an expense without a value", func() {
		w := do(http.MethodPost, "/ledger/expenses", `{"name":"Gym","category":"Leisure"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("INVALID_VALUE"))
	})

	It("should reject an unknown category", func() {
		w := do(http.MethodPost, "/ledger/expenses", `{"name":"Trip","value":5,"category":"Travel"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("INVALID_CATEGORY"))
		Expect(store.Current().Expenses).To(HaveLen(4))
	})

	It("should reject unknown fields", func() {
		w := do(http.MethodPut, "/ledger/income", `{"income":1,"currency":"EUR"}`)
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should set income", func() {
		w := do(http.MethodPut, "/ledger/income", `{"income":3100}`)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(decode(w).Ledger.Income).To(Equal(3100.0))
	})

	It("should update an expense in place", func() {
		w := do(http.MethodPut, "/ledger/expenses/1", `{"name":"Rent","value":1300,"category":"Housing"}`)
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(decode(w).Ledger.Expenses[0].Value).To(Equal(1300.0))
	})

	It("should answer 404 for updates of unknown ids", func() {
		w := do(http.MethodPut, "/ledger/expenses/77", `{"name":"x","value":1,"category":"Food"}`)
		Expect(w.Code).To(Equal(http.StatusNotFound))
		Expect(w.Body.String()).To(ContainSubstring("EXPENSE_NOT_FOUND"))
	})

	It("should answer 400 for malformed ids", func() {
		w := do(http.MethodDelete, "/ledger/expenses/abc", "")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
	})

	It("should delete idempotently", func() {
		Expect(do(http.MethodDelete, "/ledger/expenses/2", "").Code).To(Equal(http.StatusOK))
		w := do(http.MethodDelete, "/ledger/expenses/2", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(decode(w).Ledger.Expenses).To(HaveLen(3))
	})

	It("should clear and reload the cleared ledger", func() {
		Expect(do(http.MethodPost, "/ledger/clear", "").Code).To(Equal(http.StatusOK))

		w := do(http.MethodPost, "/ledger/reload", "")
		Expect(w.Code).To(Equal(http.StatusOK))

		var l ledger.Ledger
		Expect(json.NewDecoder(w.Body).Decode(&l)).To(Succeed())
		Expect(l.IsDemo).To(BeFalse())
		Expect(l.Expenses).To(BeEmpty())
		Expect(l.Income).To(BeZero())
	})

	It("should surface a persist failure as a warning", func() {
		flaky.failPuts = 1000

		w := do(http.MethodPost, "/ledger/clear", "")
		Expect(w.Code).To(Equal(http.StatusOK))

		resp := decode(w)
		Expect(resp.Warning).NotTo(BeEmpty())
		Expect(resp.Ledger.Expenses).To(BeEmpty())
	})
})
