package session_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/frahmantamala/budget-story/internal/session"
	"github.com/frahmantamala/budget-story/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Session Handler", func() {
	var router *chi.Mux

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		store := newLedgerStore(memorySnapshots())
		handler := session.NewHandler(transport.NewBaseHandler(quietLogger()), session.NewController(store, quietLogger()))

		router = chi.NewRouter()
		router.Route("/session", func(r chi.Router) {
			r.Get("/", handler.GetSession)
			r.Put("/draft", handler.StageDraft)
			r.Post("/edit/{id}", handler.BeginEdit)
			r.Post("/cancel", handler.Cancel)
			r.Post("/reset", handler.Reset)
			r.Post("/commit", handler.Commit)
		})
	})

	It("should walk a draft from staging to commit", func() {
		w := do(http.MethodPut, "/session/draft", `{"name":"Gym","value":"50","category":"Leisure"}`)
		Expect(w.Code).To(Equal(http.StatusOK))

		var state session.State
		Expect(json.NewDecoder(w.Body).Decode(&state)).To(Succeed())
		Expect(state.Mode).To(Equal(session.ModeStaging))

		w = do(http.MethodPost, "/session/commit", "")
		Expect(w.Code).To(Equal(http.StatusOK))

		var resp session.CommitResponse
		Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
		Expect(resp.Session.Mode).To(Equal(session.ModeIdle))
		Expect(resp.Ledger.Expenses).To(HaveLen(5))
	})

	It("should answer 400 when nothing is staged", func() {
		w := do(http.MethodPost, "/session/commit", "")
		Expect(w.Code).To(Equal(http.StatusBadRequest))
		Expect(w.Body.String()).To(ContainSubstring("NOTHING_STAGED"))
	})

	It("should begin and cancel an edit", func() {
		w := do(http.MethodPost, "/session/edit/1", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"mode":"editing"`))

		w = do(http.MethodPost, "/session/cancel", "")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(ContainSubstring(`"mode":"idle"`))
	})

	It("should answer 404 when editing an unknown id", func() {
		Expect(do(http.MethodPost, "/session/edit/999", "").Code).To(Equal(http.StatusNotFound))
	})

	It("should reset a staged draft", func() {
		do(http.MethodPut, "/session/draft", `{"name":"Gym"}`)
		w := do(http.MethodPost, "/session/reset", "")
		Expect(w.Body.String()).To(ContainSubstring(`"mode":"idle"`))
	})
})
